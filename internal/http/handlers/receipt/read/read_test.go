package read

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, id, ownerID string) (*models.Receipt, error) {
	args := m.Called(ctx, id, ownerID)
	r, _ := args.Get(0).(*models.Receipt)
	return r, args.Error(1)
}

func (m *ServiceMock) GetByNumber(ctx context.Context, number, ownerID string) (*models.Receipt, error) {
	args := m.Called(ctx, number, ownerID)
	r, _ := args.Get(0).(*models.Receipt)
	return r, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(path, key, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithUserID(ctx, "owner-1"))
}

const receiptID = "0b6e8b9c-3c1f-4c55-9a0e-1f2d3c4b5a69"

func TestReadByID(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		mockRes    *models.Receipt
		mockErr    error
		callSvc    bool
		wantStatus int
	}{
		{"found", receiptID, &models.Receipt{ID: receiptID, CustomerName: "Jane"}, nil, true, http.StatusOK},
		{"foreign or missing", receiptID, nil, fmt.Errorf("storage: %w", models.ErrNotFound), true, http.StatusNotFound},
		{"malformed id", "not-a-uuid", nil, nil, false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callSvc {
				svc.On("Get", mock.Anything, tt.id, "owner-1").Return(tt.mockRes, tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ByID(rec, newRequest("/api/receipts/"+tt.id, "id", tt.id))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var got Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, "Jane", got.Receipt.CustomerName)
			} else {
				assert.JSONEq(t, `{"error":"Receipt not found"}`, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReadByNumber(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GetByNumber", mock.Anything, "REC-20250101-ABCDEF1", "owner-1").
		Return(&models.Receipt{ReceiptNumber: "REC-20250101-ABCDEF1"}, nil).Once()
	svc.On("GetByNumber", mock.Anything, "missing", "owner-1").Return(nil, models.ErrNotFound).Once()

	h := New(newNoopLogger(), svc)

	rec := httptest.NewRecorder()
	h.ByNumber(rec, newRequest("/api/receipts/number/REC-20250101-ABCDEF1", "number", "REC-20250101-ABCDEF1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ByNumber(rec, newRequest("/api/receipts/number/missing", "number", "missing"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
}
