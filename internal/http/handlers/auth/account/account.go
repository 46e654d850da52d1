package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
)

// Service деактивирует аккаунт.
type Service interface {
	Deactivate(ctx context.Context, userID string) error
}

// Handler обрабатывает DELETE /api/auth/delete-account.
type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Деактивирует аккаунт. Чеки и журнал доставки сохраняются, вход становится невозможен.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/auth/delete-account [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.account"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := middlewarectx.UserID(r.Context())
	if err := h.service.Deactivate(r.Context(), userID); err != nil {
		log.Error("failed to deactivate account", sl.Err(err))
		response.FailResource(w, r, err, "User")
		return
	}

	log.Info("account deactivated", slog.String("user_id", userID))
	render.JSON(w, r, response.MessageResponse{Message: "Account deleted successfully"})
}
