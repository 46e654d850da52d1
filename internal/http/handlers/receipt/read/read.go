// Package read реализует HTTP-обработчики получения чека по ID и по номеру.
//
// Чужой или несуществующий чек даёт 404, принадлежность проверяется в сервисе.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Handler обрабатывает запросы на получение чека.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики чеков
}

// Service описывает интерфейс бизнес-логики чтения чека.
type Service interface {
	Get(ctx context.Context, id, ownerID string) (*models.Receipt, error)
	GetByNumber(ctx context.Context, number, ownerID string) (*models.Receipt, error)
}

// Response — один чек.
type Response struct {
	Receipt *models.Receipt `json:"receipt"`
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ByID godoc
// @Summary Чек по ID
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Success 200 {object} Response
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/{id} [get]
func (h *Handler) ByID(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.read.ByID"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := request.ID(r, "id")
	if !ok {
		log.Warn("malformed receipt id", slog.String("id", chi.URLParam(r, "id")))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Receipt not found"))
		return
	}

	res, err := h.service.Get(r.Context(), id, middlewarectx.UserID(r.Context()))
	if err != nil {
		log.Error("failed to read receipt", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}
	render.JSON(w, r, Response{Receipt: res})
}

// ByNumber godoc
// @Summary Чек по номеру
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Param number path string true "Номер чека"
// @Success 200 {object} Response
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/number/{number} [get]
func (h *Handler) ByNumber(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.read.ByNumber"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"), middlewarectx.UserID(r.Context()))
	if err != nil {
		log.Error("failed to read receipt by number", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}
	render.JSON(w, r, Response{Receipt: res})
}
