// Package list реализует HTTP-обработчик постраничного списка чеков.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
	services "github.com/magabrotheeeer/ereceipt/internal/services/receipt"
)

// Service описывает интерфейс бизнес-логики для получения списка чеков.
type Service interface {
	List(ctx context.Context, f models.ReceiptFilter) (*models.ReceiptPage, error)
}

// Pagination описывает страницу выдачи.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// Response — страница чеков.
type Response struct {
	Receipts   []models.Receipt `json:"receipts"`
	Pagination Pagination       `json:"pagination"`
}

// Handler обрабатывает GET /api/receipts.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список чеков
// @Description Возвращает чеки текущего пользователя, новые первыми. Поиск по имени покупателя, номеру и email.
// @Tags Receipts
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param per_page query int false "Размер страницы (1..100)" default(20)
// @Param search query string false "Строка поиска"
// @Param status query string false "Статус доставки" Enums(created, email_sent, sms_sent, both_sent)
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Router /api/receipts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, perPage := services.NormalizePage(
		request.QueryInt(r, "page", 1),
		request.QueryInt(r, "per_page", services.DefaultPerPage),
	)
	q := r.URL.Query()

	res, err := h.service.List(r.Context(), models.ReceiptFilter{
		UserID:  middlewarectx.UserID(r.Context()),
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("search"),
		Status:  delivery.Status(q.Get("status")),
	})
	if err != nil {
		log.Error("failed to list receipts", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	receipts := res.Receipts
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	render.JSON(w, r, Response{
		Receipts: receipts,
		Pagination: Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   res.Total,
			Pages:   (res.Total + perPage - 1) / perPage,
		},
	})
}
