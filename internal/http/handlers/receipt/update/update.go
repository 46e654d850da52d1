// Package update реализует HTTP-обработчик изменения чека.
package update

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Service описывает изменение чека.
type Service interface {
	Update(ctx context.Context, id, ownerID string, p models.ReceiptPatch) (*models.Receipt, error)
}

// Response — изменённый чек.
type Response struct {
	Message string          `json:"message" example:"Receipt updated successfully"`
	Receipt *models.Receipt `json:"receipt"`
}

// Handler обрабатывает PUT /api/receipts/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Изменение чека
// @Description Меняет бизнес-поля чека. Номер, владелец и статус доставки не меняются.
// @Tags Receipts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Param request body models.ReceiptPatch true "Изменяемые поля"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.update"

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

	var patch models.ReceiptPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, response.Error("No data provided"))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(patch); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.Update(r.Context(), id, middlewarectx.UserID(r.Context()), patch)
	if err != nil {
		log.Error("failed to update receipt", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}

	log.Info("receipt updated", slog.String("id", id))
	render.JSON(w, r, Response{Message: "Receipt updated successfully", Receipt: res})
}
