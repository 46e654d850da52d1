package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeliveryPublisher отправляет события доставки в обменник receipts.
type DeliveryPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
}

// NewDeliveryPublisher подключается к брокеру и объявляет топологию журнала.
func NewDeliveryPublisher(url string, retries int, delay time.Duration, log *slog.Logger) (*DeliveryPublisher, error) {
	const op = "rabbitmq.NewDeliveryPublisher"
	conn, err := Connect(url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := SetupChannel(conn, ExchangeReceipts, GetDeliveryQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &DeliveryPublisher{conn: conn, ch: ch, log: log}, nil
}

// Publish sends one delivery event. The context only short-circuits a
// publish that is already cancelled.
func (p *DeliveryPublisher) Publish(ctx context.Context, event models.DeliveryEvent) error {
	const op = "rabbitmq.DeliveryPublisher.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := PublishMessage(p.ch, ExchangeReceipts, RoutingKeyDelivery, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *DeliveryPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.log.Error("failed to close channel", sl.Err(err))
	}
	return p.conn.Close()
}
