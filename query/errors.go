package query

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length of a canonical key.
const MaxKeyLength = 1024

// Sentinel errors for query operations.
var (
	ErrInvalidKey   = errors.New("query: key is invalid")
	ErrKeyTooLong   = errors.New("query: key exceeds max length")
	ErrDisabled     = errors.New("query: query is disabled")
	ErrNilFetch     = errors.New("query: fetch function is nil")
	ErrNilCall      = errors.New("query: mutation call is nil")
	ErrTypeMismatch = errors.New("query: cached value has a different type")
	ErrClosed       = errors.New("query: client is closed")
	ErrValidation   = errors.New("query: validation failed")
)

// ValidateKey checks that a canonical key is usable.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Messager is implemented by errors that carry a message intended for users,
// such as a server-provided error message.
type Messager interface {
	UserMessage() string
}

// UserMessage returns the user-facing message carried by err, or fallback
// when err carries none.
func UserMessage(err error, fallback string) string {
	var m Messager
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
