package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// errorEnvelope is the body of a storefront error response. "error" is
// either {"code","message"} or, from older builds, a bare string.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

func (e errorEnvelope) decode() (code, message string, ok bool) {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return "", "", false
	}
	var structured struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Error, &structured) == nil {
		return structured.Code, structured.Message, true
	}
	var text string
	if json.Unmarshal(e.Error, &text) == nil {
		return "", text, true
	}
	return "", "", false
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an error. The body is consumed and closed.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}
	return ParseErrorBody(resp.StatusCode, body, service)
}

// ParseErrorBody is ParseResponseError for a body that was already read,
// such as the one carried by a ServerError.
//
// 404 and 400 keep the server's message verbatim ("Item not in cart",
// "Product not found") so callers can show it as is. Other statuses prefix
// it with the service name.
func ParseErrorBody(status int, body []byte, service string) error {
	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil {
		return fmt.Errorf("%s returned status %d: %s", service, status, string(body))
	}
	code, message, ok := env.decode()
	if !ok {
		return fmt.Errorf("%s returned status %d: %s", service, status, string(body))
	}

	qualified := service + ": " + message
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFoundMessage(message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(code, qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}
