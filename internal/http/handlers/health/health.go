package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "eReceipt API"

// Response — состояние сервиса.
type Response struct {
	Status    string    `json:"status" example:"healthy"`
	Service   string    `json:"service" example:"eReceipt API"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	log *slog.Logger
	now func() time.Time
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
		now: time.Now,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} Response
// @Router /api/health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, Response{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: h.now().UTC(),
	})
}
