// Package journal — фоновый процесс, который пишет события доставки из RabbitMQ в PostgreSQL.
package journal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ereceipt/internal/config"
	"github.com/magabrotheeeer/ereceipt/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/migrations"
	journalservice "github.com/magabrotheeeer/ereceipt/internal/services/journal"
	"github.com/magabrotheeeer/ereceipt/internal/storage"
)

// App потребляет очередь receipt.delivery.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	db      *storage.Storage
	journal *journalservice.JournalService
	logger  *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, errors.New("app.journal.New: rabbitmq url is not set")
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ExchangeReceipts, rabbitmq.GetDeliveryQueues())
	if err != nil {
		conn.Close()
		_ = db.Close()
		return nil, err
	}

	return &App{
		conn:    conn,
		ch:      ch,
		db:      db,
		journal: journalservice.NewJournalService(db, logger),
		logger:  logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueueDelivery, a.journal.Record, a.logger)
	if err != nil {
		a.logger.Error("failed to start delivery consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("delivery journal shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
