package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

const userColumns = `id, email, password_hash, business_name, phone, business_address, business_logo,
	default_tax_rate, currency, receipt_footer_message, is_active, email_verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.BusinessName, &u.Phone,
		&u.BusinessAddress, &u.BusinessLogo, &u.Settings.DefaultTaxRate, &u.Settings.Currency,
		&u.Settings.ReceiptFooterMessage, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// CreateUser сохраняет нового пользователя. Email должен быть уже нормализован.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, email, password_hash, business_name, phone, business_address,
			      business_logo, default_tax_rate, currency, receipt_footer_message, is_active, email_verified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.BusinessName, user.Phone, user.BusinessAddress,
		user.BusinessLogo, user.Settings.DefaultTaxRate, user.Settings.Currency,
		user.Settings.ReceiptFooterMessage, user.IsActive, user.EmailVerified))
	if err != nil {
		if uniqueConstraint(err) != "" {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByEmail ищет пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile меняет только разрешённые поля профиля и настроек.
func (s *Storage) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	const op = "storage.UpdateProfile"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	settings := patch.Settings
	if settings == nil {
		settings = &models.SettingsPatch{}
	}

	query := `UPDATE users
			  SET business_name = COALESCE($2, business_name),
			      phone = COALESCE($3, phone),
			      business_address = COALESCE($4, business_address),
			      business_logo = COALESCE($5, business_logo),
			      default_tax_rate = COALESCE($6, default_tax_rate),
			      currency = COALESCE($7, currency),
			      receipt_footer_message = COALESCE($8, receipt_footer_message),
			      updated_at = now()
			  WHERE id = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id,
		patch.BusinessName, patch.Phone, patch.BusinessAddress, patch.BusinessLogo,
		settings.DefaultTaxRate, settings.Currency, settings.ReceiptFooterMessage))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword сохраняет новый хэш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const op = "storage.UpdatePassword"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}
	if !validID(id) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	return affectedOne(op, res, err)
}

// Deactivate выключает учётную запись. Данные не удаляются.
func (s *Storage) Deactivate(ctx context.Context, id string) error {
	const op = "storage.Deactivate"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}
	if !validID(id) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	return affectedOne(op, res, err)
}

func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
