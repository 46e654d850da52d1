// Package remove реализует HTTP-обработчик удаления чека.
//
// Журнал доставки удалённого чека сохраняется.
package remove

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
)

// Handler обрабатывает запросы на удаление чеков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления чека.
type Service interface {
	Delete(ctx context.Context, id, ownerID string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление чека
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Success 200 {object} response.MessageResponse
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.remove"

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

	if err := h.service.Delete(r.Context(), id, middlewarectx.UserID(r.Context())); err != nil {
		log.Error("failed to delete receipt", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}

	log.Info("receipt deleted", slog.String("id", id))
	render.JSON(w, r, response.MessageResponse{Message: "Receipt deleted successfully"})
}
