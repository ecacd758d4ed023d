package admin

import (
	"context"
	"net/url"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Ranges accepted by the analytics endpoints.
const (
	Range7Days  = "7d"
	Range30Days = "30d"
	Range90Days = "90d"
	Range1Year  = "1y"
)

// Overview is the dashboard summary.
type Overview struct {
	TotalShipments   int     `json:"totalShipments"`
	DeliveredToday   int     `json:"deliveredToday"`
	ActiveRiders     int     `json:"activeRiders"`
	ActiveHubs       int     `json:"activeHubs"`
	Revenue          float64 `json:"revenue"`
	SuccessRate      float64 `json:"successRate"`
	AvgDeliveryHours float64 `json:"avgDeliveryHours"`
}

// Point is one sample of a time series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AnalyticsService is the read-only analytics domain. Writes in other
// domains invalidate its keys.
type AnalyticsService struct {
	api  *api.Client
	keys Keys
}

func newAnalyticsService(c *api.Client) AnalyticsService {
	return AnalyticsService{api: c, keys: KeysFor(DomainAnalytics)}
}

func normalizeRange(r string) string {
	switch r {
	case Range7Days, Range30Days, Range90Days, Range1Year:
		return r
	}
	return Range30Days
}

// OverviewSpec reads the summary for a range.
func (s AnalyticsService) OverviewSpec(rng string) query.Spec[Overview] {
	rng = normalizeRange(rng)
	return query.Spec[Overview]{
		Key:   s.keys.Sub("overview", rng),
		Name:  "overview",
		Fetch: getData[Overview](s.api, "/analytics/overview", url.Values{"range": {rng}}),
	}
}

// SeriesSpec reads one metric series, e.g. "revenue" or "deliveries".
func (s AnalyticsService) SeriesSpec(metric, rng string) query.Spec[[]Point] {
	rng = normalizeRange(rng)
	return query.Spec[[]Point]{
		Key:          s.keys.Sub("series", metric, rng),
		Name:         "series",
		KeepPrevious: true,
		Enabled:      func() bool { return metric != "" },
		Fetch: getData[[]Point](s.api, "/analytics/series",
			url.Values{"metric": {metric}, "range": {rng}}),
	}
}

// Overview fetches or serves the summary.
func (s AnalyticsService) Overview(ctx context.Context, q *query.Client, rng string) (Overview, error) {
	return query.Get(ctx, q, s.OverviewSpec(rng))
}
