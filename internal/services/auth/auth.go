// Package services содержит логику регистрации, входа и управления профилем.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/ereceipt/internal/lib/jwt"
	"github.com/magabrotheeeer/ereceipt/internal/lib/password"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
}

// AuthService отвечает за учётные записи и выпуск токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт учётную запись с настройками по умолчанию и выдаёт пару токенов.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string, profile models.Profile) (*models.User, models.TokenPair, error) {
	const op = "services.auth.Register"
	email = NormalizeEmail(email)

	if len(rawPassword) < password.MinLength {
		return nil, models.TokenPair{}, models.NewValidationError("password", "Password must be at least %d characters", password.MinLength)
	}
	if len(rawPassword) > password.MaxLength {
		return nil, models.TokenPair{}, models.NewValidationError("password", "Password must be at most %d bytes", password.MaxLength)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
	case !errors.Is(err, models.ErrNotFound):
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:           email,
		PasswordHash:    hashed,
		BusinessName:    strings.TrimSpace(profile.BusinessName),
		Phone:           profile.Phone,
		BusinessAddress: profile.BusinessAddress,
		BusinessLogo:    profile.BusinessLogo,
		Settings:        models.DefaultSettings(),
		IsActive:        true,
	})
	if err != nil {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", user.ID))
	return user, tokens, nil
}

// Login проверяет пароль и выдаёт пару токенов. Неизвестный email и неверный
// пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, models.TokenPair, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(user.PasswordHash, rawPassword) {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrAccountInactive)
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, tokens, nil
}

// Refresh выдаёт новый access-токен по действующему refresh-токену.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "services.auth.Refresh"

	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, models.ErrInvalidToken, err)
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return "", fmt.Errorf("%s: %w", op, models.ErrAccountInactive)
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return access, nil
}

// Profile возвращает учётную запись пользователя.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.auth.Profile"
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile меняет только поля профиля и настроек. Пустой патч возвращает
// текущий профиль без записи.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	const op = "services.auth.UpdateProfile"
	if patch.Empty() {
		return s.Profile(ctx, userID)
	}
	if patch.Settings != nil && patch.Settings.DefaultTaxRate != nil {
		if rate := *patch.Settings.DefaultTaxRate; rate < 0 || rate > 100 {
			return nil, models.NewValidationError("settings.default_tax_rate", "Default tax rate must be between 0 and 100")
		}
	}
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	const op = "services.auth.ChangePassword"
	if len(newPassword) < password.MinLength {
		return models.NewValidationError("new_password", "New password must be at least %d characters", password.MinLength)
	}
	if len(newPassword) > password.MaxLength {
		return models.NewValidationError("new_password", "New password must be at most %d bytes", password.MaxLength)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(user.PasswordHash, currentPassword) {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password changed", slog.String("user_id", userID))
	return nil
}

// Deactivate выключает учётную запись без удаления данных.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	const op = "services.auth.Deactivate"
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account deactivated", slog.String("user_id", userID))
	return nil
}

func (s *AuthService) issue(user *models.User) (models.TokenPair, error) {
	access, err := s.jwtMaker.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
