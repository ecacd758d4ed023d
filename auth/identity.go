package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how a session was established.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodCookie    AuthMethod = "cookie"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity represents the dashboard user behind a request.
type Identity struct {
	// Principal is the subject claim when the token was verified.
	Principal string

	// Roles holds the session role. Cookie sessions carry at most one.
	Roles []string

	// Method indicates how the identity was derived.
	Method AuthMethod

	// Verified is true only when the token signature was checked.
	Verified bool

	// Claims contains the raw claims of a verified token.
	Claims map[string]any

	// ExpiresAt is when this identity expires.
	ExpiresAt time.Time

	// IssuedAt is when the token was issued.
	IssuedAt time.Time
}

// Role returns the primary role, or "" when none is set.
func (id *Identity) Role() string {
	if id == nil || len(id.Roles) == 0 {
		return ""
	}
	return id.Roles[0]
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether the identity carries no session.
func (id *Identity) IsAnonymous() bool {
	return id == nil || id.Method == AuthMethodAnonymous || id.Method == AuthMethodNone
}

// AnonymousIdentity creates an identity for requests without a session.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}
