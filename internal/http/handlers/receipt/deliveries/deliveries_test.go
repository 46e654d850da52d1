package deliveries

import (
	"context"
	"encoding/json"
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

func (m *ServiceMock) ListDeliveries(ctx context.Context, id, ownerID string) ([]models.DeliveryEvent, error) {
	args := m.Called(ctx, id, ownerID)
	events, _ := args.Get(0).([]models.DeliveryEvent)
	return events, args.Error(1)
}

func TestDeliveriesHandler(t *testing.T) {
	const id = "0b6e8b9c-3c1f-4c55-9a0e-1f2d3c4b5a69"

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/receipts/"+id+"/deliveries", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		return req.WithContext(middlewarectx.WithUserID(ctx, "owner-1"))
	}

	t.Run("listed", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListDeliveries", mock.Anything, id, "owner-1").Return([]models.DeliveryEvent{
			{ReceiptID: id, Channel: "sms", Sent: false, Message: "SMS service not configured"},
			{ReceiptID: id, Channel: "email", Sent: true, Recipient: "jane@example.com"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, newReq())

		assert.Equal(t, http.StatusOK, rec.Code)
		var got Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got.Deliveries, 2)
		assert.Equal(t, "sms", got.Deliveries[0].Channel)
	})

	t.Run("empty journal", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListDeliveries", mock.Anything, id, "owner-1").Return(nil, nil).Once()

		rec := httptest.NewRecorder()
		New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, newReq())

		assert.JSONEq(t, `{"deliveries":[]}`, rec.Body.String())
	})

	t.Run("foreign receipt", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListDeliveries", mock.Anything, id, "owner-1").Return(nil, models.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, newReq())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
