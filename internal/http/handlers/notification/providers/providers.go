// Package providers сообщает, какие каналы доставки настроены.
package providers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	services "github.com/magabrotheeeer/ereceipt/internal/services/notification"
)

// Service отдаёт состояние провайдеров.
type Service interface {
	ProviderConfig() services.ProviderStatus
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Настройки каналов доставки
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} services.ProviderStatus
// @Router /api/notifications/config [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.ProviderConfig())
}
