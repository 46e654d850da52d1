package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Currency string `json:"currency" validate:"omitempty,len=3"`
		Date     string `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	}

	err := NewValidator().Struct(TestStruct{Email: "nope", Password: "123", Currency: "EURO", Date: "01-02-2024"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Contains(t, resp.Error, "field email must be a valid email address")
	assert.Contains(t, resp.Error, "field password must be at least 6 characters")
	assert.Contains(t, resp.Error, "field currency must be exactly 3 characters")
	assert.Contains(t, resp.Error, "field transaction_date can contain only date in format YYYY-MM-DD")
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Name string `json:"business_name" validate:"required"`
	}
	err := NewValidator().Struct(TestStruct{})
	require.Error(t, err)
	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field business_name is a required field", resp.Error)
}

func TestFail(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		details     bool
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{"validation", models.NewValidationError("items", "Item 2 is missing name"), false, http.StatusBadRequest, "Item 2 is missing name", ""},
		{"credentials", fmt.Errorf("op: %w", models.ErrInvalidCredentials), false, http.StatusUnauthorized, "Invalid email or password", ""},
		{"inactive", models.ErrAccountInactive, false, http.StatusUnauthorized, "Account is deactivated", ""},
		{"token", models.ErrInvalidToken, false, http.StatusUnauthorized, "Invalid or expired token", ""},
		{"not found", fmt.Errorf("storage: %w", models.ErrNotFound), false, http.StatusNotFound, "Resource not found", ""},
		{"duplicate email", models.ErrDuplicateEmail, false, http.StatusConflict, "Email already registered", ""},
		{"duplicate number", models.ErrDuplicateReceiptNumber, false, http.StatusConflict, "Receipt number already exists", ""},
		{"missing contact", models.ErrMissingContact, false, http.StatusBadRequest, "No contact available for this receipt", ""},
		{"invalid contact", models.ErrInvalidContact, false, http.StatusBadRequest, "Invalid phone number format", ""},
		{"provider", &models.ProviderError{Channel: "email", Reason: "Email sending timed out"}, false, http.StatusInternalServerError, "Failed to send email", "Email sending timed out"},
		{"internal hidden", errors.New("pq: connection refused"), false, http.StatusInternalServerError, "internal server error", ""},
		{"internal with details", errors.New("pq: connection refused"), true, http.StatusInternalServerError, "internal server error", "pq: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Details(tt.details)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Fail(w, r, tt.err)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestFailResource(t *testing.T) {
	rec := httptest.NewRecorder()
	FailResource(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("x: %w", models.ErrNotFound), "Receipt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Receipt not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	FailResource(rec, httptest.NewRequest(http.MethodGet, "/", nil), models.ErrInvalidContact, "Receipt")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
