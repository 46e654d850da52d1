// Package send реализует HTTP-обработчики отправки чека покупателю.
//
// Один Handler обслуживает три маршрута: email, SMS и оба канала сразу.
// Ошибка провайдера возвращается как 500 с причиной, статус чека при этом
// не меняется. При отправке по обоим каналам ответ 200, если доставлен хотя бы один.
package send

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

// Mode выбирает каналы отправки.
type Mode string

const (
	ModeEmail Mode = Mode(delivery.ChannelEmail)
	ModeSMS   Mode = Mode(delivery.ChannelSMS)
	ModeBoth  Mode = "both"
)

// Request — необязательные адреса, заменяющие контакты покупателя.
type Request struct {
	Email string `json:"email,omitempty" validate:"omitempty,email" example:"override@example.com"`
	Phone string `json:"phone,omitempty" example:"+15551234567"`
}

// Service описывает отправку чеков.
type Service interface {
	SendEmail(ctx context.Context, receiptID, ownerID, override string) (services.ChannelResult, error)
	SendSMS(ctx context.Context, receiptID, ownerID, override string) (services.ChannelResult, error)
	SendBoth(ctx context.Context, receiptID, ownerID, emailOverride, phoneOverride string) (services.BothResult, error)
}

// Handler обрабатывает POST /api/notifications/send-*/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	mode     Mode
	validate *validator.Validate
}

// New создает Handler для указанного режима.
func New(log *slog.Logger, service Service, mode Mode) *Handler {
	return &Handler{log: log, service: service, mode: mode, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Отправка чека
// @Description Отправляет чек по email, SMS или обоим каналам. Тело необязательно и заменяет контакты покупателя.
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Param request body Request false "Адреса для отправки"
// @Success 200 {object} services.ChannelResult "Отправлено"
// @Failure 400 {object} response.ErrorResponse "Нет контакта или неверный номер"
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /api/notifications/send-email/{id} [post]
// @Router /api/notifications/send-sms/{id} [post]
// @Router /api/notifications/send-both/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("mode", string(h.mode)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(r, "id")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Receipt not found"))
		return
	}

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

	if h.mode == ModeBoth {
		res, err := h.service.SendBoth(r.Context(), id, ownerID, req.Email, req.Phone)
		if err != nil {
			log.Error("failed to send receipt", sl.Err(err))
			response.FailResource(w, r, err, "Receipt")
			return
		}
		if !res.Success {
			log.Warn("no channel delivered", slog.String("email", res.Email.Message), slog.String("sms", res.SMS.Message))
			w.WriteHeader(http.StatusInternalServerError)
		}
		render.JSON(w, r, res)
		return
	}

	var (
		res services.ChannelResult
		err error
	)
	if h.mode == ModeSMS {
		res, err = h.service.SendSMS(r.Context(), id, ownerID, req.Phone)
	} else {
		res, err = h.service.SendEmail(r.Context(), id, ownerID, req.Email)
	}
	if err != nil {
		log.Error("failed to send receipt", sl.Err(err))
		if errors.Is(err, models.ErrMissingContact) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(h.missingContact()))
			return
		}
		response.FailResource(w, r, err, "Receipt")
		return
	}
	if !res.Sent {
		log.Warn("provider failed", slog.String("reason", res.Message))
		response.Fail(w, r, res.Failure())
		return
	}

	log.Info("receipt sent", slog.String("receipt_id", id), slog.String("to", res.SentTo))
	render.JSON(w, r, res)
}

func (h *Handler) missingContact() string {
	if h.mode == ModeSMS {
		return "No phone number available for this receipt"
	}
	return "No email address available for this receipt"
}
