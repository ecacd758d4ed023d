package health

import "errors"

var (
	// ErrCheckTimeout indicates a check did not finish before the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrStoreClosed indicates the query store was closed.
	ErrStoreClosed = errors.New("health: query store closed")

	// ErrCircuitOpen indicates the API circuit breaker is rejecting calls.
	ErrCircuitOpen = errors.New("health: circuit open")
)
