package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/admin"
	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/config"
	"github.com/jonwraymond/fleetsync/notify"
	"github.com/jonwraymond/fleetsync/observe"
	"github.com/jonwraymond/fleetsync/query"
	"github.com/jonwraymond/fleetsync/resilience"
)

const shutdownTimeout = 5 * time.Second

// app holds what one invocation builds. Connections are created on first
// use so commands like nav run without touching the API.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	baseURL    string
	token      string
	logLevel   string
	output     string

	cfg    *config.Config
	logger observe.Logger

	obs      observe.Observer
	exec     *resilience.Executor
	svc      *admin.Service
	notifier *notify.Dispatcher
}

// run executes one command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: &lockedWriter{w: stderr}}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(a.stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Operate the logistics admin API",
		Long:          `Query hubs, riders and shipments and change rider status through the admin API, with the dashboard's caching and invalidation rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./fleetsync.yaml)")
	flags.StringVar(&a.baseURL, "base-url", "", "admin API base URL (overrides api.base_url)")
	flags.StringVar(&a.token, "token", "", "API bearer token (overrides api.token)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flags.StringVarP(&a.output, "output", "o", outputTable, "output format: table|json")

	root.AddCommand(
		a.hubsCmd(),
		a.ridersCmd(),
		a.shipmentsCmd(),
		a.navCmd(),
		a.healthCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if a.output != outputTable && a.output != outputJSON {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.API.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("token") {
		cfg.API.Token = a.token
	}
	if a.logLevel != "" {
		cfg.Observe.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = observe.NopLogger()
	if cfg.Observe.Logging.Enabled {
		a.logger = observe.NewLoggerWithWriter(cfg.Observe.Logging.Level, a.stderr)
	}
	return nil
}

// connect builds the telemetry, API client, query store and domain services.
func (a *app) connect(ctx context.Context) (*admin.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	obsCfg := a.cfg.Observe
	obsCfg.Logging.Enabled = false
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start telemetry: %w", err)
	}
	a.obs = obs

	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	mw := observe.NewMiddleware(observe.NewTracer(obs.Tracer()), metrics, a.logger)

	a.exec = resilience.NewExecutorFromConfig(a.cfg.Resilience, func(from, to resilience.State) {
		a.logger.Warn(ctx, "circuit breaker state changed",
			observe.F("from", from.String()),
			observe.F("to", to.String()),
		)
	})

	apiClient, err := api.New(a.cfg.API,
		api.WithExecutor(a.exec),
		api.WithMiddleware(mw),
		api.WithUnauthorizedHandler(func(ctx context.Context, err error) {
			a.logger.Warn(ctx, "session rejected, log in again", observe.F("error", err))
		}),
	)
	if err != nil {
		return nil, err
	}

	a.notifier = notify.NewDispatcher(notify.Multi(
		notify.NewLogNotifier(a.logger),
		notify.NotifierFunc(a.printNotification),
	), notify.DefaultBuffer)

	q := query.NewClient(
		query.WithPolicy(a.cfg.Query),
		query.WithMiddleware(mw),
		query.WithNotifier(a.notifier),
	)

	svc, err := admin.New(apiClient, q)
	if err != nil {
		q.Close()
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

// close releases everything connect built, flushing notifications first.
func (a *app) close() {
	if a.svc != nil {
		a.svc.Query.Close()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.obs.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(a.stderr, "telemetry shutdown:", err)
		}
	}
}

func (a *app) printNotification(_ context.Context, n notify.Notification) {
	mark := "ok"
	if n.Level == notify.LevelError {
		mark = "error"
	}
	fmt.Fprintf(a.stderr, "[%s] %s\n", mark, n.Message)
}

// lockedWriter serializes writes from the notification goroutine and the
// command goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
