// Package password реализует смену пароля текущего пользователя.
package password

import (
	"context"
	"errors"
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

// Request — текущий и новый пароль.
type Request struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// Service меняет пароль.
type Service interface {
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// Handler обрабатывает POST /api/auth/change-password.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Смена пароля
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Текущий пароль неверен"
// @Router /api/auth/change-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.password"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Current and new passwords are required"))
		return
	}

	err := h.service.ChangePassword(r.Context(), middlewarectx.UserID(r.Context()), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		log.Warn("current password mismatch")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Current password is incorrect"))
		return
	case err != nil:
		log.Error("failed to change password", sl.Err(err))
		response.FailResource(w, r, err, "User")
		return
	}

	log.Info("password changed")
	render.JSON(w, r, response.MessageResponse{Message: "Password changed successfully"})
}
