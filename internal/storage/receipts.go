package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

const receiptColumns = `id, user_id, receipt_number, customer_name, customer_email, customer_phone,
	to_char(transaction_date, 'YYYY-MM-DD'), items, subtotal, tax_rate, tax, total, currency,
	payment_method, payment_status, notes, email_sent, email_sent_at, sms_sent, sms_sent_at,
	status, created_at, updated_at`

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	var (
		r           models.Receipt
		items       []byte
		status      string
		emailSentAt sql.NullTime
		smsSentAt   sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.ReceiptNumber, &r.CustomerName, &r.CustomerEmail,
		&r.CustomerPhone, &r.TransactionDate, &items, &r.Subtotal, &r.TaxRate, &r.Tax, &r.Total,
		&r.Currency, &r.PaymentMethod, &r.PaymentStatus, &r.Notes, &r.EmailSent, &emailSentAt,
		&r.SMSSent, &smsSentAt, &status, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &r.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if emailSentAt.Valid {
		r.EmailSentAt = &emailSentAt.Time
	}
	if smsSentAt.Valid {
		r.SMSSentAt = &smsSentAt.Time
	}
	r.Status = delivery.Status(status)
	return &r, nil
}

// CreateReceipt сохраняет чек. Статус доставки всегда начинается с created.
func (s *Storage) CreateReceipt(ctx context.Context, r models.Receipt) (*models.Receipt, error) {
	const op = "storage.CreateReceipt"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	items, err := json.Marshal(r.Items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO receipts (id, user_id, receipt_number, customer_name, customer_email,
			      customer_phone, transaction_date, items, subtotal, tax_rate, tax, total, currency,
			      payment_method, payment_status, notes, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING ` + receiptColumns
	created, err := scanReceipt(s.DB.QueryRowContext(ctx, query,
		r.ID, r.UserID, r.ReceiptNumber, r.CustomerName, r.CustomerEmail, r.CustomerPhone,
		r.TransactionDate, string(items), r.Subtotal, r.TaxRate, r.Tax, r.Total, r.Currency,
		r.PaymentMethod, r.PaymentStatus, r.Notes, string(delivery.StatusCreated)))
	if err != nil {
		if uniqueConstraint(err) != "" {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateReceiptNumber)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetReceipt возвращает чек по id. Если ownerID не пустой, чек другого
// владельца считается несуществующим.
func (s *Storage) GetReceipt(ctx context.Context, id, ownerID string) (*models.Receipt, error) {
	const op = "storage.GetReceipt"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1 AND ($2 = '' OR user_id::text = $2)`
	r, err := scanReceipt(s.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// GetReceiptByNumber работает как GetReceipt, но ищет по номеру чека.
func (s *Storage) GetReceiptByNumber(ctx context.Context, number, ownerID string) (*models.Receipt, error) {
	const op = "storage.GetReceiptByNumber"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_number = $1 AND ($2 = '' OR user_id::text = $2)`
	r, err := scanReceipt(s.DB.QueryRowContext(ctx, query, number, ownerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListReceipts возвращает страницу чеков владельца, новые первыми, и общее
// количество чеков, подходящих под фильтр.
func (s *Storage) ListReceipts(ctx context.Context, f models.ReceiptFilter) (*models.ReceiptPage, error) {
	const op = "storage.ListReceipts"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(f.UserID) {
		return &models.ReceiptPage{Receipts: []models.Receipt{}}, nil
	}

	where := []string{"user_id = $1"}
	args := []any{f.UserID}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(customer_name ILIKE $%[1]d OR receipt_number ILIKE $%[1]d OR customer_email ILIKE $%[1]d)", n))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	pageArgs := append(args, f.PerPage, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM receipts WHERE %s
			  ORDER BY created_at DESC, id DESC
			  LIMIT $%d OFFSET $%d`, receiptColumns, cond, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	receipts := make([]models.Receipt, 0, f.PerPage)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		receipts = append(receipts, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ReceiptPage{Receipts: receipts, Total: total}, nil
}

// UpdateReceipt меняет разрешённые поля чека. Если id и владелец не совпали,
// возвращает models.ErrNotFound.
func (s *Storage) UpdateReceipt(ctx context.Context, id, ownerID string, p models.ReceiptPatch) (*models.Receipt, error) {
	const op = "storage.UpdateReceipt"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(id) || !validID(ownerID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	var items *string
	if p.Items != nil {
		raw, err := json.Marshal(*p.Items)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		str := string(raw)
		items = &str
	}

	query := `UPDATE receipts
			  SET customer_name = COALESCE($3, customer_name),
			      customer_email = COALESCE($4, customer_email),
			      customer_phone = COALESCE($5, customer_phone),
			      transaction_date = COALESCE($6::date, transaction_date),
			      items = COALESCE($7::jsonb, items),
			      subtotal = COALESCE($8, subtotal),
			      tax_rate = COALESCE($9, tax_rate),
			      tax = COALESCE($10, tax),
			      total = COALESCE($11, total),
			      payment_method = COALESCE($12, payment_method),
			      payment_status = COALESCE($13, payment_status),
			      notes = COALESCE($14, notes),
			      updated_at = now()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + receiptColumns
	r, err := scanReceipt(s.DB.QueryRowContext(ctx, query, id, ownerID,
		p.CustomerName, p.CustomerEmail, p.CustomerPhone, p.TransactionDate, items,
		p.Subtotal, p.TaxRate, p.Tax, p.Total, p.PaymentMethod, p.PaymentStatus, p.Notes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// DeleteReceipt удаляет чек владельца безвозвратно.
func (s *Storage) DeleteReceipt(ctx context.Context, id, ownerID string) error {
	const op = "storage.DeleteReceipt"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}
	if !validID(id) || !validID(ownerID) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1 AND user_id = $2`, id, ownerID)
	return affectedOne(op, res, err)
}

// MarkEmailSent отмечает отправку письма и пересчитывает статус тем же UPDATE.
func (s *Storage) MarkEmailSent(ctx context.Context, id string) (delivery.Status, error) {
	return s.markSent(ctx, "storage.MarkEmailSent", id, delivery.ChannelEmail)
}

// MarkSMSSent отмечает отправку SMS и пересчитывает статус тем же UPDATE.
func (s *Storage) MarkSMSSent(ctx context.Context, id string) (delivery.Status, error) {
	return s.markSent(ctx, "storage.MarkSMSSent", id, delivery.ChannelSMS)
}

// markSent is a single statement, so the row lock serializes concurrent marks and
// the CASE sees the flag written by whichever mark committed first.
func (s *Storage) markSent(ctx context.Context, op, id string, ch delivery.Channel) (delivery.Status, error) {
	if err := ctxDone(ctx, op); err != nil {
		return "", err
	}
	if !validID(id) {
		return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	var query string
	switch ch {
	case delivery.ChannelEmail:
		query = `UPDATE receipts
				 SET email_sent = TRUE, email_sent_at = $2, updated_at = $2,
				     status = ` + delivery.StatusExpr("TRUE", "sms_sent") + `
				 WHERE id = $1
				 RETURNING status`
	case delivery.ChannelSMS:
		query = `UPDATE receipts
				 SET sms_sent = TRUE, sms_sent_at = $2, updated_at = $2,
				     status = ` + delivery.StatusExpr("email_sent", "TRUE") + `
				 WHERE id = $1
				 RETURNING status`
	default:
		return "", fmt.Errorf("%s: unknown channel %q", op, ch)
	}

	var status string
	if err := s.DB.QueryRowContext(ctx, query, id, time.Now().UTC()).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return delivery.Status(status), nil
}

// ReceiptStats считает агрегаты по всем чекам владельца. Для пользователя
// без чеков возвращает нули.
func (s *Storage) ReceiptStats(ctx context.Context, ownerID string) (*models.ReceiptStats, error) {
	const op = "storage.ReceiptStats"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(ownerID) {
		return &models.ReceiptStats{}, nil
	}

	query := `SELECT COUNT(*),
			         COALESCE(SUM(total), 0),
			         COALESCE(SUM(tax), 0),
			         COUNT(*) FILTER (WHERE email_sent),
			         COUNT(*) FILTER (WHERE sms_sent)
			  FROM receipts
			  WHERE user_id = $1`
	var st models.ReceiptStats
	if err := s.DB.QueryRowContext(ctx, query, ownerID).Scan(
		&st.TotalReceipts, &st.TotalRevenue, &st.TotalTax, &st.EmailsSent, &st.SMSSent,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
