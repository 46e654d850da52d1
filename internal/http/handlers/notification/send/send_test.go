package send

import (
	"bytes"
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

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ereceipt/internal/models"
	services "github.com/magabrotheeeer/ereceipt/internal/services/notification"
)

type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) SendEmail(ctx context.Context, receiptID, ownerID, override string) (services.ChannelResult, error) {
	args := m.Called(ctx, receiptID, ownerID, override)
	return args.Get(0).(services.ChannelResult), args.Error(1)
}

func (m *DispatcherMock) SendSMS(ctx context.Context, receiptID, ownerID, override string) (services.ChannelResult, error) {
	args := m.Called(ctx, receiptID, ownerID, override)
	return args.Get(0).(services.ChannelResult), args.Error(1)
}

func (m *DispatcherMock) SendBoth(ctx context.Context, receiptID, ownerID, emailOverride, phoneOverride string) (services.BothResult, error) {
	args := m.Called(ctx, receiptID, ownerID, emailOverride, phoneOverride)
	return args.Get(0).(services.BothResult), args.Error(1)
}

const receiptID = "0b6e8b9c-3c1f-4c55-9a0e-1f2d3c4b5a69"

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/send/"+receiptID, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", receiptID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithUserID(ctx, "owner-1"))
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSendEmail(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		override   string
		res        services.ChannelResult
		err        error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "sent to customer",
			res:        services.ChannelResult{Channel: delivery.ChannelEmail, Sent: true, Message: "Email sent successfully", SentTo: "jane@example.com", Status: delivery.StatusEmailSent},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"sent": true, "sent_to": "jane@example.com", "status": "email_sent"},
		},
		{
			name:       "override",
			body:       `{"email":"other@example.com"}`,
			override:   "other@example.com",
			res:        services.ChannelResult{Channel: delivery.ChannelEmail, Sent: true, SentTo: "other@example.com"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"sent_to": "other@example.com"},
		},
		{
			name:       "provider failure",
			res:        services.ChannelResult{Channel: delivery.ChannelEmail, Message: "Email sending timed out"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "Failed to send email", "message": "Email sending timed out"},
		},
		{
			name:       "not configured",
			res:        services.ChannelResult{Channel: delivery.ChannelEmail, Message: "Email service not configured"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"message": "Email service not configured"},
		},
		{
			name:       "no email",
			err:        fmt.Errorf("%w: no email address available for this receipt", models.ErrMissingContact),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "No email address available for this receipt"},
		},
		{
			name:       "not found",
			err:        models.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"error": "Receipt not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(DispatcherMock)
			svc.On("SendEmail", mock.Anything, receiptID, "owner-1", tt.override).Return(tt.res, tt.err).Once()

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, ModeEmail).ServeHTTP(rec, newRequest(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, got[k], k)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSendEmail_InvalidOverride(t *testing.T) {
	for _, mode := range []Mode{ModeEmail, ModeBoth} {
		t.Run(string(mode), func(t *testing.T) {
			svc := new(DispatcherMock)

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, mode).ServeHTTP(rec, newRequest(`{"email":"not-an-email"}`))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"field email must be a valid email address"}`, rec.Body.String())
			svc.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "SendBoth", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSendSMS(t *testing.T) {
	t.Run("invalid phone", func(t *testing.T) {
		svc := new(DispatcherMock)
		svc.On("SendSMS", mock.Anything, receiptID, "owner-1", "12345").
			Return(services.ChannelResult{}, fmt.Errorf("%w: too short", models.ErrInvalidContact)).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc, ModeSMS).ServeHTTP(rec, newRequest(`{"phone":"12345"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid phone number format"}`, rec.Body.String())
	})

	t.Run("missing phone", func(t *testing.T) {
		svc := new(DispatcherMock)
		svc.On("SendSMS", mock.Anything, receiptID, "owner-1", "").
			Return(services.ChannelResult{}, models.ErrMissingContact).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc, ModeSMS).ServeHTTP(rec, newRequest(""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"No phone number available for this receipt"}`, rec.Body.String())
	})

	t.Run("sent", func(t *testing.T) {
		svc := new(DispatcherMock)
		svc.On("SendSMS", mock.Anything, receiptID, "owner-1", "").
			Return(services.ChannelResult{Channel: delivery.ChannelSMS, Sent: true, SentTo: "+15551234567", ProviderID: "SM1"}, nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc, ModeSMS).ServeHTTP(rec, newRequest(""))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSendBoth(t *testing.T) {
	tests := []struct {
		name       string
		res        services.BothResult
		wantStatus int
	}{
		{
			name: "one channel delivered",
			res: services.BothResult{
				Success: true,
				Email:   services.ChannelResult{Channel: delivery.ChannelEmail, Sent: true},
				SMS:     services.ChannelResult{Channel: delivery.ChannelSMS, Message: "No phone number provided"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "nothing delivered",
			res: services.BothResult{
				Email: services.ChannelResult{Channel: delivery.ChannelEmail, Message: "Email service not configured"},
				SMS:   services.ChannelResult{Channel: delivery.ChannelSMS, Message: "SMS service not configured"},
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(DispatcherMock)
			svc.On("SendBoth", mock.Anything, receiptID, "owner-1", "a@b.co", "").Return(tt.res, nil).Once()

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, ModeBoth).ServeHTTP(rec, newRequest(`{"email":"a@b.co"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got services.BothResult
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.res.Success, got.Success)
			assert.Equal(t, tt.res.SMS.Message, got.SMS.Message)
		})
	}
}
