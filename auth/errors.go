package auth

import "errors"

// Sentinel errors for sessions and authorization.
var (
	// Session errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")

	// ErrInvalidConfig is returned for unusable session or guard settings.
	ErrInvalidConfig = errors.New("auth: invalid config")
)
