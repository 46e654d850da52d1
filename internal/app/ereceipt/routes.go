// Package ereceipt собирает HTTP API сервиса чеков.
package ereceipt

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/ereceipt/internal/config"
	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/account"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/health"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/notification/providers"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/notification/send"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/notification/testsend"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/create"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/deliveries"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/list"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/pdf"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/read"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/remove"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/stats"
	"github.com/magabrotheeeer/ereceipt/internal/http/handlers/receipt/update"
	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/receiptpdf"
	authservice "github.com/magabrotheeeer/ereceipt/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/ereceipt/internal/services/notification"
	receiptservice "github.com/magabrotheeeer/ereceipt/internal/services/receipt"
)

// Services — зависимости обработчиков.
type Services struct {
	Auth       *authservice.AuthService
	Receipts   *receiptservice.ReceiptService
	Dispatcher *notificationservice.Dispatcher
	Tokens     middlewarectx.TokenParser
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.RateLimitMiddleware(cfg.RateLimit, logger),
		response.Details(cfg.Env != config.EnvProd),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, svc.Auth).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(svc.Tokens, logger))
				profileHandler := profile.New(logger, svc.Auth)
				r.Get("/profile", profileHandler.Get)
				r.Put("/profile", profileHandler.Update)
				r.Post("/change-password", password.New(logger, svc.Auth).ServeHTTP)
				r.Delete("/delete-account", account.New(logger, svc.Auth).ServeHTTP)
			})
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Tokens, logger))

			readHandler := read.New(logger, svc.Receipts)
			r.Post("/receipts", create.New(logger, svc.Receipts).ServeHTTP)
			r.Get("/receipts", list.New(logger, svc.Receipts).ServeHTTP)
			r.Get("/receipts/stats", stats.New(logger, svc.Receipts).ServeHTTP)
			r.Get("/receipts/number/{number}", readHandler.ByNumber)
			r.Get("/receipts/{id}", readHandler.ByID)
			r.Put("/receipts/{id}", update.New(logger, svc.Receipts).ServeHTTP)
			r.Delete("/receipts/{id}", remove.New(logger, svc.Receipts).ServeHTTP)
			r.Get("/receipts/{id}/pdf", pdf.New(logger, svc.Receipts, svc.Auth, receiptpdf.Render).ServeHTTP)
			r.Get("/receipts/{id}/deliveries", deliveries.New(logger, svc.Receipts).ServeHTTP)

			r.Post("/notifications/send-email/{id}", send.New(logger, svc.Dispatcher, send.ModeEmail).ServeHTTP)
			r.Post("/notifications/send-sms/{id}", send.New(logger, svc.Dispatcher, send.ModeSMS).ServeHTTP)
			r.Post("/notifications/send-both/{id}", send.New(logger, svc.Dispatcher, send.ModeBoth).ServeHTTP)
			r.Get("/notifications/config", providers.New(logger, svc.Dispatcher).ServeHTTP)
			r.Post("/notifications/test-email", testsend.New(logger, svc.Dispatcher, delivery.ChannelEmail).ServeHTTP)
			r.Post("/notifications/test-sms", testsend.New(logger, svc.Dispatcher, delivery.ChannelSMS).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
