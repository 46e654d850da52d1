// Package profile отдаёт и изменяет профиль текущего пользователя.
package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Service описывает чтение и изменение профиля.
type Service interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

// Response — профиль пользователя.
type Response struct {
	Message string       `json:"message,omitempty" example:"Profile updated successfully"`
	User    *models.User `json:"user"`
}

// Handler обслуживает GET и PUT /api/auth/profile.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Get godoc
// @Summary Профиль текущего пользователя
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /api/auth/profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile.Get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, err := h.service.Profile(r.Context(), middlewarectx.UserID(r.Context()))
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		response.FailResource(w, r, err, "User")
		return
	}
	render.JSON(w, r, Response{User: user})
}

// Update godoc
// @Summary Изменение профиля
// @Description Меняет название, телефон, адрес, логотип и настройки чеков. Отсутствующие поля не меняются.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ProfilePatch true "Изменяемые поля"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /api/auth/profile [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile.Update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var patch models.ProfilePatch
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

	user, err := h.service.UpdateProfile(r.Context(), middlewarectx.UserID(r.Context()), patch)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.FailResource(w, r, err, "User")
		return
	}

	log.Info("profile updated", slog.String("user_id", user.ID))
	render.JSON(w, r, Response{Message: "Profile updated successfully", User: user})
}
