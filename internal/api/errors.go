package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a rejected request from the backend (any 4xx/5xx response that
// carried a body). Transport failures are returned as plain wrapped errors,
// never as *Error.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is an authorization failure from the
// backend. Callers use this to trigger the global logout path.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// ErrorMessage returns the server-provided message carried by err, or
// fallback when err has none (transport failures, empty bodies).
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseError extracts a typed error from a non-2xx response body. The
// backend answers with {"message": ...}; older endpoints use {"error": ...}.
func parseError(statusCode int, body []byte) error {
	var withMessage struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &withMessage); err == nil && withMessage.Message != "" {
		return &Error{StatusCode: statusCode, Message: withMessage.Message}
	}

	var withError struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &withError); err == nil && withError.Error != "" {
		return &Error{StatusCode: statusCode, Message: withError.Error}
	}

	return &Error{StatusCode: statusCode}
}
