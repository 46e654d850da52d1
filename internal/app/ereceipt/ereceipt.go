package ereceipt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/ereceipt/internal/cache"
	"github.com/magabrotheeeer/ereceipt/internal/config"
	"github.com/magabrotheeeer/ereceipt/internal/lib/jwt"
	"github.com/magabrotheeeer/ereceipt/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/lib/smtp"
	"github.com/magabrotheeeer/ereceipt/internal/migrations"
	authservice "github.com/magabrotheeeer/ereceipt/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/ereceipt/internal/services/notification"
	receiptservice "github.com/magabrotheeeer/ereceipt/internal/services/receipt"
	"github.com/magabrotheeeer/ereceipt/internal/smsprovider"
	"github.com/magabrotheeeer/ereceipt/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP API сервиса чеков.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
}

// New подключает хранилище, кеш и провайдеров и собирает роутер.
// Redis, SMTP, Twilio и RabbitMQ необязательны: без настроек соответствующая
// функция отключается.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var receiptCache receiptservice.Cache = cache.Nop{}
	if cfg.RedisConnection.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		receiptCache = redisCache
		app.closers = append(app.closers, redisCache)
	} else {
		logger.Info("redis is not configured, receipt cache disabled")
	}

	var events notificationservice.EventPublisher = notificationservice.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewDeliveryPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay, logger)
		if err != nil {
			app.close()
			return nil, err
		}
		events = publisher
		app.closers = append(app.closers, publisher)
	} else {
		logger.Info("rabbitmq is not configured, delivery journal disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.AccessTTL, cfg.JWTToken.RefreshTTL)
	authService := authservice.NewAuthService(db, jwtMaker, logger)
	receiptService := receiptservice.NewReceiptService(db, db, receiptCache, cfg.RedisConnection.CacheTTL, logger)

	opts := notificationservice.Options{
		DefaultCountryCode:   cfg.Notifications.DefaultCountryCode,
		BusinessFallbackName: cfg.Notifications.BusinessFallbackName,
		TestEmail:            cfg.Notifications.TestEmail,
		TestPhone:            cfg.Notifications.TestPhone,
	}
	var emailSender notificationservice.EmailSender
	if cfg.SMTP.Configured() {
		emailSender = smtp.NewMailer(smtp.NewTransport(cfg.SMTP, logger), cfg.SMTP.Sender(), cfg.SMTP.FromName, logger)
		opts.EmailFrom = cfg.SMTP.Sender()
	} else {
		logger.Warn("smtp credentials are not set, email delivery disabled")
	}
	var smsSender notificationservice.SMSSender
	if cfg.Twilio.Configured() {
		client := smsprovider.NewClient(cfg.Twilio)
		smsSender = client
		opts.SMSFrom = client.From()
	} else {
		logger.Warn("twilio credentials are not set, sms delivery disabled")
	}
	dispatcher := notificationservice.NewDispatcher(receiptService, db, emailSender, smsSender, events, opts, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Auth:       authService,
		Receipts:   receiptService,
		Dispatcher: dispatcher,
		Tokens:     jwtMaker,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("failed to close dependency", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
