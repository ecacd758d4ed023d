// Package health reports whether the pieces the dashboard depends on are
// usable: the admin API, the query store and the API circuit breaker.
//
// A Checker returns a Result with a Status of Healthy, Degraded or
// Unhealthy. An Aggregator runs registered checkers in parallel under one
// deadline and folds them into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewAPIChecker(apiClient, "/profile"))
//	agg.Register(health.NewStoreChecker(queryClient))
//	agg.Register(health.NewBreakerChecker(exec.CircuitBreaker()))
//
//	report := agg.Run(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    ...
//	}
//
// The overall status is the worst status of any check.
package health
