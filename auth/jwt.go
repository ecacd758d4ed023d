package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures token verification.
type JWTConfig struct {
	// SigningKey is the HMAC secret. Empty disables verification.
	SigningKey string `mapstructure:"signing_key"`

	// Issuer is the expected token issuer (iss claim).
	Issuer string `mapstructure:"issuer"`

	// PrincipalClaim is the claim containing the user principal.
	// Default: "sub"
	PrincipalClaim string `mapstructure:"principal_claim"`

	// RoleClaim is the claim containing the dashboard role.
	// Default: "role"
	RoleClaim string `mapstructure:"role_claim"`

	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration `mapstructure:"leeway"`
}

// TokenVerifier validates HMAC-signed session tokens.
type TokenVerifier struct {
	config JWTConfig
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier. It fails when no signing key is set.
func NewTokenVerifier(config JWTConfig) (*TokenVerifier, error) {
	if config.SigningKey == "" {
		return nil, fmt.Errorf("%w: signing key is required", ErrInvalidConfig)
	}
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}
	if config.RoleClaim == "" {
		config.RoleClaim = "role"
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(config.Leeway),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &TokenVerifier{config: config, parser: jwt.NewParser(opts...)}, nil
}

// Verify parses and validates token and returns the identity it carries.
func (v *TokenVerifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingCredentials
	}

	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(v.config.SigningKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
	}
	if !parsed.Valid {
		return nil, ErrInvalidCredentials
	}
	return v.buildIdentity(claims), nil
}

func (v *TokenVerifier) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method:   AuthMethodJWT,
		Verified: true,
		Claims:   make(map[string]any, len(claims)),
	}
	for k, val := range claims {
		identity.Claims[k] = val
	}

	if principal, ok := claims[v.config.PrincipalClaim].(string); ok {
		identity.Principal = principal
	}

	// A string or a list of strings; the first entry is the primary role.
	switch roles := claims[v.config.RoleClaim].(type) {
	case string:
		if roles != "" {
			identity.Roles = []string{roles}
		}
	case []any:
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				identity.Roles = append(identity.Roles, s)
			}
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	return identity
}
