package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for API calls.
var (
	ErrUnauthorized  = errors.New("api: unauthorized")
	ErrForbidden     = errors.New("api: forbidden")
	ErrNotFound      = errors.New("api: not found")
	ErrInvalidConfig = errors.New("api: invalid configuration")
	ErrDecode        = errors.New("api: failed to decode response")
)

// Error is an API failure with a status code and, when the server sent one,
// a message meant for users.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// UserMessage returns the server-provided message, if any.
func (e *Error) UserMessage() string {
	return e.Message
}

// Transient reports whether retrying may succeed.
func (e *Error) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Unwrap maps auth and lookup failures to sentinels.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// extractMessage finds error.message, a string error, or message in a JSON
// body, in that order.
func extractMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
		var s string
		if err := json.Unmarshal(payload.Error, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(payload.Message)
}
