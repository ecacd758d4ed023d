// Package config loads fleetsync settings from an optional YAML file and
// the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/auth"
	"github.com/jonwraymond/fleetsync/debounce"
	"github.com/jonwraymond/fleetsync/observe"
	"github.com/jonwraymond/fleetsync/query"
	"github.com/jonwraymond/fleetsync/resilience"
	"github.com/jonwraymond/fleetsync/secret"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLEETSYNC"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config aggregates configuration for the application.
// Each section is owned by its respective package.
type Config struct {
	API        api.Config         `mapstructure:"api"`
	Query      query.Policy       `mapstructure:"query"`
	Search     SearchConfig       `mapstructure:"search"`
	Session    auth.SessionConfig `mapstructure:"session"`
	Guard      auth.GuardConfig   `mapstructure:"guard"`
	RBAC       auth.RBACConfig    `mapstructure:"rbac"`
	Resilience resilience.Config  `mapstructure:"resilience"`
	Observe    observe.Config     `mapstructure:"observe"`
	Health     HealthConfig       `mapstructure:"health"`
}

// SearchConfig configures debounced search inputs.
type SearchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// HealthConfig configures the health command.
type HealthConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	APIPath       string        `mapstructure:"api_path"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		API:        api.DefaultConfig(),
		Query:      query.DefaultPolicy(),
		Search:     SearchConfig{Delay: debounce.DefaultDelay},
		Session:    auth.DefaultSessionConfig(),
		Guard:      auth.DefaultGuardConfig(),
		RBAC:       auth.DefaultRBACConfig(),
		Resilience: resilience.DefaultConfig(),
		Observe:    observe.DefaultConfig(),
		Health:     HealthConfig{Timeout: 10 * time.Second, APIPath: "/profile", SlowThreshold: 2 * time.Second},
	}
}

// Load reads configuration from path, or from fleetsync.yaml in the working
// directory when path is empty, then from environment variables.
// Environment variables use the prefix "FLEETSYNC" and the dot character
// in keys is replaced by an underscore. For example, "api.base_url" becomes
// "FLEETSYNC_API_BASE_URL".
//
// A missing default file is not an error; a missing explicit path is.
// Secret-bearing values (api.token, session.jwt.signing_key) are resolved
// through secret.Resolver after unmarshalling.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fleetsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	// Decoding merges into the default slice element by element.
	if v.IsSet("guard.public_paths") {
		cfg.Guard.PublicPaths = v.GetStringSlice("guard.public_paths")
	}

	resolver := secret.NewResolver(true)
	if err := resolver.ResolveAll(ctx, map[string]*string{
		"api.token":               &cfg.API.Token,
		"session.jwt.signing_key": &cfg.Session.JWT.SigningKey,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid section at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.API.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalidConfig, err))
	}
	if c.Query.StaleTime < 0 || c.Query.MaxStaleTime < 0 || c.Query.RetentionTime < 0 {
		errs = append(errs, fmt.Errorf("%w: query durations must not be negative", ErrInvalidConfig))
	}
	if c.Search.Delay < 0 {
		errs = append(errs, fmt.Errorf("%w: search.delay must not be negative", ErrInvalidConfig))
	}
	for name, p := range map[string]string{
		"guard.login_path":     c.Guard.LoginPath,
		"guard.dashboard_path": c.Guard.DashboardPath,
		"health.api_path":      c.Health.APIPath,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%w: %s %q must start with /", ErrInvalidConfig, name, p))
		}
	}
	if fb := c.RBAC.FallbackRole; fb != "" && len(c.RBAC.Roles) > 0 {
		if _, ok := c.RBAC.Roles[fb]; !ok {
			errs = append(errs, fmt.Errorf("%w: rbac.fallback_role %q is not a configured role", ErrInvalidConfig, fb))
		}
	}
	return errors.Join(errs...)
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
