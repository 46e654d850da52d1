// Package pdf отдаёт чек в виде PDF-документа.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/http/request"
	"github.com/magabrotheeeer/ereceipt/internal/http/response"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Receipts отдаёт чек владельца.
type Receipts interface {
	Get(ctx context.Context, id, ownerID string) (*models.Receipt, error)
}

// Users отдаёт владельца для оформления документа.
type Users interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// RenderFunc строит PDF чека.
type RenderFunc func(r *models.Receipt, owner *models.User) ([]byte, error)

// Handler обрабатывает GET /api/receipts/{id}/pdf.
type Handler struct {
	log      *slog.Logger
	receipts Receipts
	users    Users
	render   RenderFunc
}

// New создает новый Handler.
func New(log *slog.Logger, receipts Receipts, users Users, render RenderFunc) *Handler {
	return &Handler{log: log, receipts: receipts, users: users, render: render}
}

// ServeHTTP godoc
// @Summary PDF чека
// @Tags Receipts
// @Produce  application/pdf
// @Security BearerAuth
// @Param id path string true "ID чека"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorResponse "Чек не найден"
// @Router /api/receipts/{id}/pdf [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.receipt.pdf"

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
	ownerID := middlewarectx.UserID(r.Context())

	receipt, err := h.receipts.Get(r.Context(), id, ownerID)
	if err != nil {
		log.Error("failed to read receipt", sl.Err(err))
		response.FailResource(w, r, err, "Receipt")
		return
	}

	owner, err := h.users.Profile(r.Context(), ownerID)
	if err != nil {
		log.Warn("owner unavailable, rendering without branding", sl.Err(err))
		owner = nil
	}

	doc, err := h.render(receipt, owner)
	if err != nil {
		log.Error("failed to render pdf", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipt-"+receipt.ReceiptNumber+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		log.Warn("failed to write pdf", sl.Err(err))
	}
}
