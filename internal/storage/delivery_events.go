package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// InsertDeliveryEvent записывает попытку отправки в журнал.
func (s *Storage) InsertDeliveryEvent(ctx context.Context, e models.DeliveryEvent) (int64, error) {
	const op = "storage.InsertDeliveryEvent"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO delivery_events (receipt_id, user_id, channel, recipient, sent, message,
			      provider_id, occurred_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, e.ReceiptID, e.UserID, e.Channel, e.Recipient,
		e.Sent, e.Message, e.ProviderID, e.OccurredAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListDeliveryEvents возвращает журнал отправок чека владельца, новые первыми.
func (s *Storage) ListDeliveryEvents(ctx context.Context, receiptID, ownerID string) ([]models.DeliveryEvent, error) {
	const op = "storage.ListDeliveryEvents"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	if !validID(receiptID) || !validID(ownerID) {
		return []models.DeliveryEvent{}, nil
	}

	query := `SELECT id, receipt_id, user_id, channel, recipient, sent, message, provider_id, occurred_at
			  FROM delivery_events
			  WHERE receipt_id = $1 AND user_id = $2
			  ORDER BY occurred_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, receiptID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	events := []models.DeliveryEvent{}
	for rows.Next() {
		var e models.DeliveryEvent
		if err = rows.Scan(&e.ID, &e.ReceiptID, &e.UserID, &e.Channel, &e.Recipient, &e.Sent,
			&e.Message, &e.ProviderID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}
