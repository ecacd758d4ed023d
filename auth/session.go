package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SessionConfig names the session cookies and optional token verification.
type SessionConfig struct {
	// TokenCookie holds the API token. Default: "token"
	TokenCookie string `mapstructure:"token_cookie"`

	// RoleCookie holds the dashboard role. Default: "role"
	RoleCookie string `mapstructure:"role_cookie"`

	// MaxAge is the lifetime of cookies written by SetSessionCookies.
	MaxAge time.Duration `mapstructure:"max_age"`

	// Secure marks written cookies Secure.
	Secure bool `mapstructure:"secure"`

	// JWT enables signature verification when SigningKey is set.
	JWT JWTConfig `mapstructure:"jwt"`
}

// DefaultSessionConfig returns the cookie names the dashboard uses.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TokenCookie: "token",
		RoleCookie:  "role",
		MaxAge:      7 * 24 * time.Hour,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	d := DefaultSessionConfig()
	if c.TokenCookie == "" {
		c.TokenCookie = d.TokenCookie
	}
	if c.RoleCookie == "" {
		c.RoleCookie = d.RoleCookie
	}
	return c
}

// Sessions reads identities from request cookies.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: ErrMissingCredentials when no token cookie is present; token
//   errors (ErrTokenExpired, ErrTokenMalformed, ErrInvalidCredentials) only
//   when verification is enabled.
type Sessions struct {
	config   SessionConfig
	verifier *TokenVerifier
}

// NewSessions creates a session reader. Verification is enabled when
// config.JWT.SigningKey is set.
func NewSessions(config SessionConfig) (*Sessions, error) {
	config = config.withDefaults()
	s := &Sessions{config: config}
	if config.JWT.SigningKey != "" {
		v, err := NewTokenVerifier(config.JWT)
		if err != nil {
			return nil, err
		}
		s.verifier = v
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Sessions) Config() SessionConfig { return s.config }

// Verifies reports whether tokens are signature-checked.
func (s *Sessions) Verifies() bool { return s.verifier != nil }

// FromRequest returns the identity for r.
func (s *Sessions) FromRequest(r *http.Request) (*Identity, error) {
	token := cookieValue(r, s.config.TokenCookie)
	if token == "" {
		return nil, ErrMissingCredentials
	}
	role := cookieValue(r, s.config.RoleCookie)

	if s.verifier == nil {
		id := &Identity{Method: AuthMethodCookie, Claims: map[string]any{}}
		if role != "" {
			id.Roles = []string{role}
		}
		return id, nil
	}

	id, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	if len(id.Roles) == 0 && role != "" {
		id.Roles = []string{role}
	}
	if id.IsExpired() {
		return nil, ErrTokenExpired
	}
	return id, nil
}

// SessionFromCookies reads the identity for r using cfg.
func SessionFromCookies(r *http.Request, cfg SessionConfig) (*Identity, error) {
	s, err := NewSessions(cfg)
	if err != nil {
		return nil, err
	}
	return s.FromRequest(r)
}

// SetSessionCookies writes the token and role cookies after a login.
func (s *Sessions) SetSessionCookies(w http.ResponseWriter, token, role string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	http.SetCookie(w, s.cookie(s.config.TokenCookie, token, int(s.config.MaxAge.Seconds()), true))
	if role != "" {
		http.SetCookie(w, s.cookie(s.config.RoleCookie, role, int(s.config.MaxAge.Seconds()), false))
	}
	return nil
}

// ClearSessionCookies expires both cookies, e.g. on logout or after a 401.
func (s *Sessions) ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(s.config.TokenCookie, "", -1, true))
	http.SetCookie(w, s.cookie(s.config.RoleCookie, "", -1, false))
}

func (s *Sessions) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
