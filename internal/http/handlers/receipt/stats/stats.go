package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

type Service interface {
	Stats(ctx context.Context, ownerID string) (*models.ReceiptStats, error)
}

// Response — сводные показатели владельца.
type Response struct {
	Stats *models.ReceiptStats `json:"stats"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика чеков
// @Description Количество чеков, выручка, налог и число доставок текущего пользователя.
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/receipts/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Stats(r.Context(), middlewarectx.UserID(r.Context()))
	if err != nil {
		log.Error("failed to compute stats", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, Response{Stats: res})
}
