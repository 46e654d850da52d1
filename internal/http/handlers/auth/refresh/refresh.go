// Package refresh выдаёт новый access-токен по refresh-токену из заголовка Authorization.
package refresh

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

// Response содержит новый access-токен.
type Response struct {
	AccessToken string `json:"access_token"`
}

// Service выпускает access-токен по refresh-токену.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Handler обрабатывает обновление токена.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление access-токена
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Отсутствует или недействителен refresh-токен"
// @Router /api/auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := middlewarectx.BearerToken(r)
	if !ok {
		log.Warn("missing refresh token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Missing or invalid authorization header"))
		return
	}

	access, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		log.Warn("refresh failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, Response{AccessToken: access})
}
