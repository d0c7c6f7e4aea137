package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the JSON envelope for non-collection payloads and errors.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the "error" member of a Response. Clients show Message to
// the shopper as is.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, body ErrorResponse) {
	WriteJSON(w, status, Response{Error: &body})
}

// WriteError writes err as an error envelope. AppErrors keep their status and
// message; bare sentinels get a generic message; anything else is a 500.
// Failures of 500 and above are logged with the request-scoped logger when
// one is set, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	appErr := toAppError(err)

	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeErrorBody(w, appErr.Status, ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NotFoundMessage("resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		return apperrors.Conflict("resource was modified concurrently")
	case errors.Is(err, apperrors.ErrInvalidInput):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.Unauthorized("authentication required")
	}
	return &apperrors.AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  apperrors.HTTPStatus(err),
	}
}

// WriteValidationError writes a 400. A validator.ValidationError is reported
// field by field.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeErrorBody(w, http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		})
		return
	}
	writeErrorBody(w, http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
}

// ParseProductID parses a positive product id. On failure it writes a 400 and
// returns false.
func ParseProductID(w http.ResponseWriter, param string) (int, bool) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		writeErrorBody(w, http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "productId query param required",
		})
		return 0, false
	}
	return id, true
}
