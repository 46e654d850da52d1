// Package services сохраняет события доставки чеков из очереди в журнал.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

const insertTimeout = 5 * time.Second

// EventWriter сохраняет событие доставки.
type EventWriter interface {
	InsertDeliveryEvent(ctx context.Context, e models.DeliveryEvent) (int64, error)
}

// JournalService разбирает сообщения очереди receipt.delivery.
type JournalService struct {
	repo EventWriter
	log  *slog.Logger
}

// NewJournalService создает новый экземпляр JournalService.
func NewJournalService(repo EventWriter, log *slog.Logger) *JournalService {
	return &JournalService{repo: repo, log: log}
}

// Record сохраняет одно событие. Некорректные сообщения отбрасываются через
// rabbitmq.ErrDiscard, ошибки хранилища возвращают сообщение в очередь.
func (s *JournalService) Record(ctx context.Context, body []byte) error {
	const op = "services.journal.Record"

	var event models.DeliveryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w: %v", op, rabbitmq.ErrDiscard, err)
	}
	if err := validate(event); err != nil {
		return fmt.Errorf("%s: %w: %v", op, rabbitmq.ErrDiscard, err)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	id, err := s.repo.InsertDeliveryEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("delivery event recorded",
		slog.Int64("id", id), slog.String("receipt_id", event.ReceiptID), slog.String("channel", event.Channel))
	return nil
}

func validate(e models.DeliveryEvent) error {
	if err := uuid.Validate(e.ReceiptID); err != nil {
		return fmt.Errorf("receipt_id: %w", err)
	}
	if err := uuid.Validate(e.UserID); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	switch delivery.Channel(e.Channel) {
	case delivery.ChannelEmail, delivery.ChannelSMS:
		return nil
	default:
		return fmt.Errorf("unknown channel %q", e.Channel)
	}
}
