package downstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baechuer/paradies-dashboard/internal/domain"
)

var (
	ErrTimeout      = errors.New("upstream_timeout")
	ErrUnavailable  = errors.New("upstream_unavailable")
	ErrNotFound     = errors.New("resource_not_found")
	ErrUnauthorized = errors.New("unauthorized")
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// StatusError is a non-success response that is not a field-level validation failure.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap lets callers match auth and not-found failures with errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ValidationError is a 422 response carrying field-keyed messages.
type ValidationError struct {
	Fields  domain.ValidationErrors
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upstream validation failed on %d field(s)", len(e.Fields))
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr domain.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Code:       "upstream_error",
			Message:    fmt.Sprintf("unexpected status: %d", resp.StatusCode),
		}
	}

	if resp.StatusCode == http.StatusUnprocessableEntity && len(apiErr.Errors) > 0 {
		return &ValidationError{Fields: apiErr.Errors, Message: apiErr.BestMessage()}
	}

	code := "upstream_error"
	if apiErr.Error != nil && apiErr.Error.Code != "" {
		code = apiErr.Error.Code
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    apiErr.BestMessage(),
	}
}

// UserMessage returns the server-provided message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
