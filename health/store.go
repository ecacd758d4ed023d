package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/fleetsync/query"
)

// DefaultErrorRatio is the share of errored entries that degrades the store.
const DefaultErrorRatio = 0.5

// StoreChecker reports on the query store.
type StoreChecker struct {
	client     *query.Client
	errorRatio float64
}

// NewStoreChecker checks client. ratio overrides DefaultErrorRatio when it
// is in (0, 1].
func NewStoreChecker(client *query.Client, ratio ...float64) *StoreChecker {
	c := &StoreChecker{client: client, errorRatio: DefaultErrorRatio}
	if len(ratio) > 0 && ratio[0] > 0 && ratio[0] <= 1 {
		c.errorRatio = ratio[0]
	}
	return c
}

func (c *StoreChecker) Name() string { return "query_store" }

func (c *StoreChecker) Check(_ context.Context) Result {
	s := c.client.Stats()
	details := map[string]any{
		"entries":  s.Entries,
		"observed": s.Observed,
		"fetching": s.Fetching,
		"errored":  s.Errored,
	}

	if s.Closed {
		return Unhealthy("query store closed", ErrStoreClosed).WithDetails(details)
	}
	if s.Entries > 0 && s.Errored > 0 && float64(s.Errored)/float64(s.Entries) >= c.errorRatio {
		return Degraded(fmt.Sprintf("%d of %d queries failed", s.Errored, s.Entries)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d queries cached", s.Entries)).WithDetails(details)
}
