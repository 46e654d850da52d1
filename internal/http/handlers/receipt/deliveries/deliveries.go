// Package deliveries отдаёт журнал попыток доставки чека.
package deliveries

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Service описывает чтение журнала доставки.
type Service interface {
	ListDeliveries(ctx context.Context, id, ownerID string) ([]models.DeliveryEvent, error)
}

// Response — события доставки, новые первыми.
type Response struct {
	Deliveries []models.DeliveryEvent `json:"deliveries"`
}

// Handler обрабатывает GET /api/receipts/{id}/deliveries.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал доставки чека
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Success 200 {object} Response
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/{id}/deliveries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.deliveries"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(r, "id")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Receipt not found"))
		return
	}

	events, err := h.service.ListDeliveries(r.Context(), id, middlewarectx.UserID(r.Context()))
	if err != nil {
		log.Error("failed to list deliveries", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}
	if events == nil {
		events = []models.DeliveryEvent{}
	}
	render.JSON(w, r, Response{Deliveries: events})
}
