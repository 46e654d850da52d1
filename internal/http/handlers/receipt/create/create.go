// Package create реализует HTTP-обработчик для создания чека.
//
// Handler декодирует JSON, проверяет формат полей (email, дата, код валюты),
// передаёт данные в сервис, который проверяет обязательные поля, подставляет
// настройки владельца и присваивает номер, и возвращает созданный чек.
package create

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
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Response — созданный чек.
type Response struct {
	Message string          `json:"message" example:"Receipt created successfully"`
	Receipt *models.Receipt `json:"receipt"`
}

// Handler обрабатывает HTTP-запросы на создание чеков.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики чеков
	validate *validator.Validate // Валидатор формата полей
}

// Service описывает интерфейс бизнес-логики создания чека.
type Service interface {
	Create(ctx context.Context, ownerID string, in models.ReceiptInput) (*models.Receipt, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Создание чека
// @Description Создаёт чек текущего пользователя. Номер генерируется, если не передан.
// @Tags Receipts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ReceiptInput true "Данные чека"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Номер чека уже занят"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/receipts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var in models.ReceiptInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, response.Error("No data provided"))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(in); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	receipt, err := h.service.Create(r.Context(), middlewarectx.UserID(r.Context()), in)
	if err != nil {
		log.Error("failed to create receipt", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("receipt created", slog.String("id", receipt.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, Response{Message: "Receipt created successfully", Receipt: receipt})
}
