package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func requestWithCookies(cookies map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/riders", nil)
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

func TestSessionFromCookies_Unverified(t *testing.T) {
	tests := []struct {
		name     string
		cookies  map[string]string
		wantErr  error
		wantRole string
	}{
		{"no cookies", nil, ErrMissingCredentials, ""},
		{"role without token", map[string]string{"role": "admin"}, ErrMissingCredentials, ""},
		{"blank token", map[string]string{"token": "  "}, ErrMissingCredentials, ""},
		{"token and role", map[string]string{"token": "abc", "role": "hub_manager"}, nil, "hub_manager"},
		{"token only", map[string]string{"token": "abc"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := SessionFromCookies(requestWithCookies(tt.cookies), SessionConfig{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SessionFromCookies() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SessionFromCookies() error = %v", err)
			}
			if id.Verified {
				t.Error("Verified = true without a signing key")
			}
			if id.Method != AuthMethodCookie {
				t.Errorf("Method = %v, want cookie", id.Method)
			}
			if id.Role() != tt.wantRole {
				t.Errorf("Role() = %q, want %q", id.Role(), tt.wantRole)
			}
		})
	}
}

func TestSessionFromCookies_CustomNames(t *testing.T) {
	cfg := SessionConfig{TokenCookie: "fs_token", RoleCookie: "fs_role"}
	r := requestWithCookies(map[string]string{"fs_token": "abc", "fs_role": "admin"})
	id, err := SessionFromCookies(r, cfg)
	if err != nil {
		t.Fatalf("SessionFromCookies() error = %v", err)
	}
	if id.Role() != "admin" {
		t.Errorf("Role() = %q, want admin", id.Role())
	}
}

func TestSessionFromCookies_VerifiedRoleClaimOverridesCookie(t *testing.T) {
	cfg := SessionConfig{JWT: JWTConfig{SigningKey: testKey}}
	token := signToken(t, testKey, jwt.MapClaims{"sub": "u-7", "role": "hub_manager"})
	r := requestWithCookies(map[string]string{"token": token, "role": "admin"})

	id, err := SessionFromCookies(r, cfg)
	if err != nil {
		t.Fatalf("SessionFromCookies() error = %v", err)
	}
	if !id.Verified {
		t.Error("Verified = false")
	}
	if id.Role() != "hub_manager" {
		t.Errorf("Role() = %q, want the claim role hub_manager", id.Role())
	}
}

func TestSessionFromCookies_VerifiedWithoutRoleClaim(t *testing.T) {
	cfg := SessionConfig{JWT: JWTConfig{SigningKey: testKey}}
	token := signToken(t, testKey, jwt.MapClaims{"sub": "u-7"})
	r := requestWithCookies(map[string]string{"token": token, "role": "hub_manager"})

	id, err := SessionFromCookies(r, cfg)
	if err != nil {
		t.Fatalf("SessionFromCookies() error = %v", err)
	}
	if id.Role() != "hub_manager" {
		t.Errorf("Role() = %q, want cookie role", id.Role())
	}
}

func TestSessionFromCookies_InvalidToken(t *testing.T) {
	cfg := SessionConfig{JWT: JWTConfig{SigningKey: testKey}}
	expired := signToken(t, testKey, jwt.MapClaims{"sub": "u-7", "exp": time.Now().Add(-time.Minute).Unix()})

	if _, err := SessionFromCookies(requestWithCookies(map[string]string{"token": "opaque"}), cfg); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("opaque token error = %v, want ErrTokenMalformed", err)
	}
	if _, err := SessionFromCookies(requestWithCookies(map[string]string{"token": expired}), cfg); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token error = %v, want ErrTokenExpired", err)
	}
}

func TestSessions_SetAndClearCookies(t *testing.T) {
	s, err := NewSessions(DefaultSessionConfig())
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}
	if s.Verifies() {
		t.Error("Verifies() = true without signing key")
	}

	rec := httptest.NewRecorder()
	if err := s.SetSessionCookies(rec, "abc", "hub_manager"); err != nil {
		t.Fatalf("SetSessionCookies() error = %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	id, err := s.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest() error = %v", err)
	}
	if id.Role() != "hub_manager" {
		t.Errorf("Role() = %q", id.Role())
	}

	rec = httptest.NewRecorder()
	s.ClearSessionCookies(rec)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s MaxAge = %d, want expired", c.Name, c.MaxAge)
		}
	}

	if err := s.SetSessionCookies(httptest.NewRecorder(), "", "admin"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SetSessionCookies(empty) error = %v", err)
	}
}
