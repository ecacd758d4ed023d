package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/health"
)

var errUnhealthy = errors.New("unhealthy")

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API, the query store and the circuit breaker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			agg := health.NewAggregator(
				health.WithConfig(health.AggregatorConfig{Timeout: a.cfg.Health.Timeout}),
				health.WithLogger(a.logger),
			)
			agg.Register(health.NewAPIChecker(svc.API, a.cfg.Health.APIPath,
				health.WithSlowThreshold(a.cfg.Health.SlowThreshold)))
			agg.Register(health.NewStoreChecker(svc.Query))
			agg.Register(health.NewBreakerChecker(a.exec.CircuitBreaker()))

			report := agg.Run(cmd.Context())
			if err := a.printReport(report); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
}

func (a *app) printReport(r health.Report) error {
	if a.output == outputJSON {
		return a.printJSON(r)
	}
	rows := make([][]string, len(r.Order))
	for i, name := range r.Order {
		c := r.Checks[name]
		rows[i] = []string{name, c.Status.String(), c.Message, c.Duration.Round(time.Microsecond).String()}
	}
	if err := writeTable(a.stdout, []string{"CHECK", "STATUS", "MESSAGE", "DURATION"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, "overall:", r.Status)
	return err
}
