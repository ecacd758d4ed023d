package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonwraymond/fleetsync/observe"
)

// GuardConfig configures route guarding.
type GuardConfig struct {
	// LoginPath is where unauthenticated requests are sent. Default: "/login"
	LoginPath string `mapstructure:"login_path"`

	// DashboardPath is the landing page after login. Default: "/dashboard"
	DashboardPath string `mapstructure:"dashboard_path"`

	// PublicPaths are served without a session. A trailing "*" matches a prefix.
	PublicPaths []string `mapstructure:"public_paths"`

	// ReturnParam carries the original path to the login page. Empty disables it.
	ReturnParam string `mapstructure:"return_param"`
}

// DefaultGuardConfig returns the dashboard routes.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LoginPath:     "/login",
		DashboardPath: "/dashboard",
		PublicPaths:   []string{"/forgot-password*", "/static/*", "/favicon.ico"},
		ReturnParam:   "from",
	}
}

// Guard is HTTP middleware reproducing the dashboard route rules:
//
//   - no session on a protected path redirects to the login page
//   - a session on the login page redirects to the dashboard
//   - a section the role may not view redirects to the dashboard
//
// The identity is attached to the request context for the next handler.
type Guard struct {
	config   GuardConfig
	sessions *Sessions
	authz    Authorizer
	logger   observe.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger logs redirects at debug level.
func WithGuardLogger(l observe.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a guard. A nil authz allows every section.
func NewGuard(config GuardConfig, sessions *Sessions, authz Authorizer, opts ...GuardOption) (*Guard, error) {
	if sessions == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("sessions are required"))
	}
	d := DefaultGuardConfig()
	if config.LoginPath == "" {
		config.LoginPath = d.LoginPath
	}
	if config.DashboardPath == "" {
		config.DashboardPath = d.DashboardPath
	}
	if config.LoginPath == config.DashboardPath {
		return nil, errors.Join(ErrInvalidConfig, errors.New("login and dashboard paths must differ"))
	}
	if authz == nil {
		authz = AllowAllAuthorizer{}
	}
	g := &Guard{config: config, sessions: sessions, authz: authz, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Handler wraps next with the route rules.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := cleanPath(r.URL.Path)

		if g.isPublic(path) {
			next.ServeHTTP(w, r)
			return
		}

		id, err := g.sessions.FromRequest(r)
		authenticated := err == nil

		if path == g.config.LoginPath {
			if authenticated {
				g.redirect(w, r, g.config.DashboardPath, "session on login page")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if !authenticated {
			g.redirect(w, r, g.loginTarget(r), "no session", observe.F("reason", err))
			return
		}

		if path == "/" {
			g.redirect(w, r, g.config.DashboardPath, "root")
			return
		}

		section := Section(path)
		authzErr := g.authz.Authorize(r.Context(), &AuthzRequest{Subject: id, Resource: section, Action: ActionView})
		if authzErr != nil {
			if path == g.config.DashboardPath || Section(g.config.DashboardPath) == section {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			g.redirect(w, r, g.config.DashboardPath, "section not permitted",
				observe.F("section", section), observe.F("role", id.Role()))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (g *Guard) loginTarget(r *http.Request) string {
	if g.config.ReturnParam == "" || r.URL.Path == "/" {
		return g.config.LoginPath
	}
	return g.config.LoginPath + "?" + url.Values{g.config.ReturnParam: {r.URL.RequestURI()}}.Encode()
}

func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, target, reason string, fields ...observe.Field) {
	fields = append(fields, observe.F("path", r.URL.Path), observe.F("target", target))
	g.logger.Debug(r.Context(), "guard redirect: "+reason, fields...)
	http.Redirect(w, r, target, http.StatusFound)
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.config.PublicPaths {
		if matchPattern(p, path) {
			return true
		}
	}
	return false
}

// Section returns the first path segment, e.g. "riders" for "/riders/r-1".
func Section(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(cleanPath(path), "/"), "/")
	return seg
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
