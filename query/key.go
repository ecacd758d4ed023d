package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Key identifies one query's result set: a domain followed by the scope and
// parameters that affect the response.
//
// Contract:
// - Determinism: parts equal by deep value produce equal keys, regardless of map iteration order.
// - Prefixes: Key.HasPrefix compares whole parts, never substrings of a part.
type Key struct {
	parts []string // canonical JSON per part
}

// NewKey builds a key from a domain and further parts.
func NewKey(domain string, parts ...any) (Key, error) {
	if strings.TrimSpace(domain) == "" {
		return Key{}, ErrInvalidKey
	}
	k, err := Key{}.append(append([]any{domain}, parts...))
	if err != nil {
		return Key{}, err
	}
	if err := ValidateKey(k.String()); err != nil {
		return Key{}, err
	}
	return k, nil
}

// MustKey is like NewKey but panics on error. Intended for keys built from
// plain strings, numbers and Params.
func MustKey(domain string, parts ...any) Key {
	k, err := NewKey(domain, parts...)
	if err != nil {
		panic(err)
	}
	return k
}

// With returns a new key extending k with parts.
func (k Key) With(parts ...any) (Key, error) {
	return k.append(parts)
}

// MustWith is like With but panics on error.
func (k Key) MustWith(parts ...any) Key {
	out, err := k.append(parts)
	if err != nil {
		panic(err)
	}
	return out
}

func (k Key) append(parts []any) (Key, error) {
	out := Key{parts: make([]string, len(k.parts), len(k.parts)+len(parts))}
	copy(out.parts, k.parts)
	for _, p := range parts {
		b, err := canonicalize(p)
		if err != nil {
			return Key{}, fmt.Errorf("query: failed to canonicalize key part: %w", err)
		}
		out.parts = append(out.parts, string(b))
	}
	return out, nil
}

// String returns the canonical form of the key, a JSON array.
func (k Key) String() string {
	return "[" + strings.Join(k.parts, ",") + "]"
}

// Domain returns the first part of the key, or "" for the zero key.
func (k Key) Domain() string {
	if len(k.parts) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(k.parts[0]), &s); err != nil {
		return k.parts[0]
	}
	return s
}

// Scope returns the second part when it is a string (e.g. "list", "stats").
func (k Key) Scope() string {
	if len(k.parts) < 2 {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(k.parts[1]), &s); err != nil {
		return ""
	}
	return s
}

// Len returns the number of parts.
func (k Key) Len() int { return len(k.parts) }

// IsZero reports whether k has no parts.
func (k Key) IsZero() bool { return len(k.parts) == 0 }

// Equal reports whether both keys have identical parts.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether prefix's parts are the leading parts of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.parts) > len(k.parts) {
		return false
	}
	for i, p := range prefix.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}

// Params holds the response-affecting parameters of a query.
type Params map[string]any

// Normalize returns a copy of p without zero values, without values equal to
// their entry in defaults, and with surrounding whitespace trimmed from
// strings. An explicitly passed default and an omitted field therefore yield
// the same key.
func (p Params) Normalize(defaults Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		if isZero(v) {
			continue
		}
		if d, ok := defaults[k]; ok && sameValue(v, d) {
			continue
		}
		out[k] = v
	}
	return out
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

func sameValue(a, b any) bool {
	ab, err := canonicalize(a)
	if err != nil {
		return false
	}
	bb, err := canonicalize(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}

// canonicalize produces a deterministic JSON representation of v.
// Maps are sorted by key.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case Params:
		return canonicalizeMap(val)
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	case Key:
		return []byte(val.String()), nil
	default:
		// encoding/json sorts typed map keys and keeps struct field order.
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}
