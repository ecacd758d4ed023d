package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
)

// DefaultSlowThreshold is the API latency above which the API is degraded.
const DefaultSlowThreshold = 2 * time.Second

// APIChecker probes the admin API with a GET of a cheap endpoint.
type APIChecker struct {
	client *api.Client
	path   string
	slow   time.Duration
}

// APIOption configures an APIChecker.
type APIOption func(*APIChecker)

// WithSlowThreshold sets the latency reported as degraded.
func WithSlowThreshold(d time.Duration) APIOption {
	return func(c *APIChecker) {
		if d > 0 {
			c.slow = d
		}
	}
}

// NewAPIChecker probes path on client.
func NewAPIChecker(client *api.Client, path string, opts ...APIOption) *APIChecker {
	c := &APIChecker{client: client, path: path, slow: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *APIChecker) Name() string { return "api" }

// Check reports unhealthy when the API cannot be reached or fails, and
// degraded when it rejects the credentials or answers slowly.
func (c *APIChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := c.client.Do(ctx, http.MethodGet, c.path, nil, nil, nil)
	latency := time.Since(start)

	details := map[string]any{
		"base_url":   c.client.BaseURL(),
		"path":       c.path,
		"latency_ms": latency.Milliseconds(),
	}

	switch code := api.StatusCode(err); {
	case err == nil:
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		r := Degraded("API reachable but credentials rejected")
		r.Error = err
		return r.WithDetails(details)
	case code != 0:
		details["status_code"] = code
		return Unhealthy(fmt.Sprintf("API returned status %d", code), err).WithDetails(details)
	default:
		return Unhealthy("API unreachable", err).WithDetails(details)
	}

	if latency > c.slow {
		return Degraded(fmt.Sprintf("API slow: %s", latency.Round(time.Millisecond))).WithDetails(details)
	}
	return Healthy("API reachable").WithDetails(details)
}
