package update

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Update(ctx context.Context, id, ownerID string, p models.ReceiptPatch) (*models.Receipt, error) {
	args := m.Called(ctx, id, ownerID, p)
	r, _ := args.Get(0).(*models.Receipt)
	return r, args.Error(1)
}

const receiptID = "0b6e8b9c-3c1f-4c55-9a0e-1f2d3c4b5a69"

func newRequest(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/receipts/"+id, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithUserID(ctx, "owner-1"))
}

func TestUpdateHandler(t *testing.T) {
	notes := "paid by card"

	tests := []struct {
		name       string
		id         string
		body       string
		setup      func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "updated",
			id:   receiptID,
			body: `{"notes":"paid by card"}`,
			setup: func(m *ServiceMock) {
				m.On("Update", mock.Anything, receiptID, "owner-1", models.ReceiptPatch{Notes: &notes}).
					Return(&models.Receipt{ID: receiptID, Notes: notes}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty body",
			id:         receiptID,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"No data provided"}`,
		},
		{
			name:       "bad email",
			id:         receiptID,
			body:       `{"customer_email":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"field customer_email must be a valid email address"}`,
		},
		{
			name: "bad item",
			id:   receiptID,
			body: `{"items":[{"name":"","quantity":1,"price":1}]}`,
			setup: func(m *ServiceMock) {
				m.On("Update", mock.Anything, receiptID, "owner-1", mock.Anything).
					Return(nil, models.NewValidationError("items", "Item 1 is missing name")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Item 1 is missing name"}`,
		},
		{
			name: "not found",
			id:   receiptID,
			body: `{"notes":"paid by card"}`,
			setup: func(m *ServiceMock) {
				m.On("Update", mock.Anything, receiptID, "owner-1", mock.Anything).Return(nil, models.ErrNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Receipt not found"}`,
		},
		{
			name:       "malformed id",
			id:         "xyz",
			body:       `{"notes":"x"}`,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Receipt not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, newRequest(tt.id, tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
