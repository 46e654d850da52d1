package login

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

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*models.User, models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Get(1).(models.TokenPair), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	user := &models.User{ID: "u1", Email: "shop@example.com"}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockTokens     models.TokenPair
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "shop@example.com", Password: "password123"},
			mockUser:       user,
			mockTokens:     models.TokenPair{AccessToken: "tok", RefreshToken: "ref"},
			callService:    true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			requestBody:    Request{Email: "shop@example.com"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Email and password are required",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Email: "shop@example.com", Password: "wrong-one"},
			mockErr:        models.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid email or password",
		},
		{
			name:           "deactivated",
			requestBody:    Request{Email: "shop@example.com", Password: "password123"},
			mockErr:        models.ErrAccountInactive,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Account is deactivated",
		},
		{
			name:           "storage failure",
			requestBody:    Request{Email: "shop@example.com", Password: "password123"},
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.callService {
				req := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockUser, tt.mockTokens, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Nil(t, got["error"])
				assert.Equal(t, "tok", got["access_token"])
				assert.Equal(t, "ref", got["refresh_token"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
