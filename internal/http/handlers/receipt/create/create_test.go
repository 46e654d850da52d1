package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, ownerID string, in models.ReceiptInput) (*models.Receipt, error) {
	args := m.Called(ctx, ownerID, in)
	r, _ := args.Get(0).(*models.Receipt)
	return r, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const validBody = `{"customer_name":"Jane","customer_email":"jane@example.com","items":[{"name":"Coffee","quantity":2,"price":3.5}],"subtotal":7,"tax":0.7,"total":7.7}`

func TestCreateHandler(t *testing.T) {
	created := &models.Receipt{ID: "r1", ReceiptNumber: "REC-20250101-ABCDEF1", CustomerName: "Jane", Status: delivery.StatusCreated}

	tests := []struct {
		name       string
		body       string
		setup      func(m *ServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: validBody,
			setup: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "owner-1", mock.MatchedBy(func(in models.ReceiptInput) bool {
					return in.CustomerName == "Jane" && len(in.Items) == 1 && *in.Total == 7.7
				})).Return(created, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "no body",
			wantStatus: http.StatusBadRequest,
			wantError:  "No data provided",
		},
		{
			name:       "bad email",
			body:       `{"customer_name":"Jane","customer_email":"jane"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "field customer_email must be a valid email address",
		},
		{
			name:       "bad date",
			body:       `{"customer_name":"Jane","transaction_date":"01/02/2025"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "field transaction_date can contain only date in format YYYY-MM-DD",
		},
		{
			name: "missing total",
			body: `{"customer_name":"Jane"}`,
			setup: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "owner-1", mock.Anything).
					Return(nil, models.NewValidationError("total", "Missing required field: total")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required field: total",
		},
		{
			name: "duplicate number",
			body: `{"receipt_number":"R-1","customer_name":"Jane"}`,
			setup: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "owner-1", mock.Anything).
					Return(nil, models.ErrDuplicateReceiptNumber).Once()
			},
			wantStatus: http.StatusConflict,
			wantError:  "Receipt number already exists",
		},
		{
			name: "storage failure",
			body: validBody,
			setup: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "owner-1", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/receipts", bytes.NewBufferString(tt.body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			req = req.WithContext(middlewarectx.WithUserID(ctx, "owner-1"))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "Receipt created successfully", got["message"])
				receipt := got["receipt"].(map[string]any)
				assert.Equal(t, "REC-20250101-ABCDEF1", receipt["receipt_number"])
				assert.Equal(t, "created", receipt["status"])
			}
			svc.AssertExpectations(t)
		})
	}
}
