package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RefPrefix starts a secret reference: secretref:<provider>:<ref>.
const RefPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// Values with the prefix "secretref:" are resolved via providers.
// Other values are returned after strict environment expansion.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver with the built-in env and file providers
// plus providers. A strict resolver rejects empty resolved secrets.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider), strict: strict}
	r.Register(EnvProvider{})
	r.Register(FileProvider{})
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Resolver) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers[p.Name()] = p
}

// ResolveValue resolves environment variables and secret refs in value.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveSingle(ctx, provider, ref)
	}
	if strings.HasPrefix(expanded, RefPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, expanded)
	}
	return r.resolveInline(ctx, expanded)
}

// ResolveAll resolves each non-empty *value in place. The first failure is
// returned with its field name.
func (r *Resolver) ResolveAll(ctx context.Context, values map[string]*string) error {
	for name, v := range values {
		if v == nil || *v == "" {
			continue
		}
		out, err := r.ResolveValue(ctx, *v)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
		*v = out
	}
	return nil
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolveSingle(ctx context.Context, name, ref string) (string, error) {
	provider, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: provider %q", ErrEmptySecret, name)
	}
	return resolved, nil
}

var inlineRefPattern = regexp.MustCompile(`secretref:([^:\s]+):([^\s]+)`)

// resolveInline replaces references embedded in a longer value, such as
// "Bearer secretref:env:TOKEN".
func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	matches := inlineRefPattern.FindAllStringSubmatchIndex(value, -1)
	out := value
	// Replace from the end so earlier indexes stay valid.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		resolved, err := r.resolveSingle(ctx, out[m[2]:m[3]], out[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		out = out[:m[0]] + resolved + out[m[1]:]
	}
	return out, nil
}
