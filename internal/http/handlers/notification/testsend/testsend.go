// Package testsend отправляет образец чека для проверки настроек провайдера.
package testsend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
	services "github.com/magabrotheeeer/ereceipt/internal/services/notification"
)

// Request — адрес для тестовой отправки. Пустое значение берётся из конфига.
type Request struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

// Service отправляет образец чека.
type Service interface {
	TestEmail(ctx context.Context, ownerID, to string) (services.ChannelResult, error)
	TestSMS(ctx context.Context, ownerID, to string) (services.ChannelResult, error)
}

// Handler обрабатывает POST /api/notifications/test-email и test-sms.
type Handler struct {
	log      *slog.Logger
	service  Service
	channel  delivery.Channel
	validate *validator.Validate
}

// New создает Handler для канала.
func New(log *slog.Logger, service Service, channel delivery.Channel) *Handler {
	return &Handler{log: log, service: service, channel: channel, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Тестовая отправка
// @Description Отправляет образец чека TEST-001. Статусы чеков не меняются.
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request false "Адрес получателя"
// @Success 200 {object} services.ChannelResult
// @Failure 400 {object} response.ErrorResponse "Адрес не указан"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /api/notifications/test-email [post]
// @Router /api/notifications/test-sms [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.testsend"

	log := h.log.With(
		slog.String("op", op),
		slog.String("channel", string(h.channel)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.DecodeOptional(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("invalid request", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}
	ownerID := middlewarectx.UserID(r.Context())

	var (
		res services.ChannelResult
		err error
	)
	if h.channel == delivery.ChannelSMS {
		res, err = h.service.TestSMS(r.Context(), ownerID, req.Phone)
	} else {
		res, err = h.service.TestEmail(r.Context(), ownerID, req.Email)
	}
	if err != nil {
		log.Warn("test send rejected", sl.Err(err))
		if errors.Is(err, models.ErrMissingContact) {
			w.WriteHeader(http.StatusBadRequest)
			if h.channel == delivery.ChannelSMS {
				render.JSON(w, r, response.Error("Phone number is required"))
				return
			}
			render.JSON(w, r, response.Error("Email address is required"))
			return
		}
		response.Fail(w, r, err)
		return
	}
	if !res.Sent {
		response.Fail(w, r, res.Failure())
		return
	}
	render.JSON(w, r, res)
}
