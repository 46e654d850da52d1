// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: конверт ошибки
// {"error", "message"}, сообщения валидации и сопоставление доменных ошибок
// с HTTP‑статусами.
package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// ErrorResponse — конверт ошибки. Используется и в аннотациях @Failure.
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid request body"`
	Message string `json:"message,omitempty" example:"details"`
}

// MessageResponse — простой ответ с сообщением.
type MessageResponse struct {
	Message string `json:"message" example:"Password updated successfully"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// NewValidator возвращает валидатор, который называет поля по json-тегам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationError формирует ErrorResponse на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be exactly %s characters", err.Field(), err.Param()))
		case "datetime":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only date in format YYYY-MM-DD", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return ErrorResponse{Error: strings.Join(errsMsgs, ", ")}
}

// Invalid writes 400 for an error returned by validator.Struct.
func Invalid(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(http.StatusBadRequest)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		render.JSON(w, r, ValidationError(verrs))
		return
	}
	render.JSON(w, r, Error("invalid request"))
}

type detailsKey struct{}

// Details включает подробности внутренних ошибок в поле message.
// В production подробности не показываются.
func Details(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), detailsKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func showDetails(r *http.Request) bool {
	enabled, _ := r.Context().Value(detailsKey{}).(bool)
	return enabled
}

// Status returns the HTTP status and body for err.
func Status(r *http.Request, err error) (int, ErrorResponse) {
	var (
		verr *models.ValidationError
		perr *models.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Error(verr.Reason)
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("Invalid email or password")
	case errors.Is(err, models.ErrAccountInactive):
		return http.StatusUnauthorized, Error("Account is deactivated")
	case errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized, Error("Invalid or expired token")
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("Resource not found")
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict, Error("Email already registered")
	case errors.Is(err, models.ErrDuplicateReceiptNumber):
		return http.StatusConflict, Error("Receipt number already exists")
	case errors.Is(err, models.ErrMissingContact):
		return http.StatusBadRequest, Error("No contact available for this receipt")
	case errors.Is(err, models.ErrInvalidContact):
		return http.StatusBadRequest, Error("Invalid phone number format")
	case errors.As(err, &perr):
		return http.StatusInternalServerError, ErrorResponse{
			Error:   fmt.Sprintf("Failed to send %s", perr.Channel),
			Message: perr.Reason,
		}
	}
	body := Error("internal server error")
	if showDetails(r) {
		body.Message = err.Error()
	}
	return http.StatusInternalServerError, body
}

// FailResource как Fail, но для ErrNotFound называет ресурс: "Receipt not found".
func FailResource(w http.ResponseWriter, r *http.Request, err error, resource string) {
	if errors.Is(err, models.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error(resource+" not found"))
		return
	}
	Fail(w, r, err)
}

// Fail пишет ответ с ошибкой, выбирая статус по типу ошибки.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Status(r, err)
	w.WriteHeader(status)
	render.JSON(w, r, body)
}
