package admin

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

const testDelay = 60 * time.Millisecond

func searches(h *harness, path string) []string {
	var out []string
	for _, r := range h.srv.Requests(http.MethodGet, path) {
		if s := r.Query.Get("search"); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestListController_DebouncedSearchIssuesOneQuery(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Hubs.ListSpec, ListParams{}, testDelay)
	require.NoError(t, err)
	defer lc.Close()
	waitFor(t, lc, settled[api.Page[Hub]])

	for _, prefix := range []string{"l", "la", "lah", "laho", "lahor", "lahore"} {
		lc.SetSearch(prefix)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, "lahore", lc.SearchInput())
	assert.Empty(t, lc.Params().Search, "search applies only after typing pauses")

	r := waitFor(t, lc, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && lc.Params().Search == "lahore"
	})
	assert.Len(t, r.Data.Items, 2)

	time.Sleep(2 * testDelay)
	assert.Equal(t, []string{"lahore"}, searches(h, "/hubs"))
}

func TestListController_KeepsPreviousPageAsPlaceholder(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Riders.ListSpec, ListParams{Limit: 2}, testDelay)
	require.NoError(t, err)
	defer lc.Close()
	first := waitFor(t, lc, settled[api.Page[Rider]])
	require.True(t, first.Data.Pagination.HasNext())

	h.srv.SetLatency(50 * time.Millisecond)
	require.NoError(t, lc.NextPage())

	r := lc.Result()
	assert.True(t, r.IsPlaceholder)
	assert.True(t, r.HasData)
	assert.False(t, r.IsLoading, "placeholder data means not loading")
	assert.Equal(t, first.Data.Items, r.Data.Items)

	next := waitFor(t, lc, settled[api.Page[Rider]])
	assert.Equal(t, 2, next.Data.Pagination.Page)
	assert.Len(t, next.Data.Items, 1)
}

func TestListController_FilterResetsPage(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Riders.ListSpec, ListParams{Page: 2, Limit: 1}, testDelay)
	require.NoError(t, err)
	defer lc.Close()

	require.NoError(t, lc.SetFilter("hubId", "hub-1"))
	assert.Equal(t, 1, lc.Params().Page)

	r := waitFor(t, lc, func(r query.Result[api.Page[Rider]]) bool {
		return settled(r) && r.Data.Pagination.Total == 2
	})
	assert.Equal(t, "rider-1", r.Data.Items[0].ID)

	require.NoError(t, lc.SetStatus(RiderInactive))
	waitFor(t, lc, func(r query.Result[api.Page[Rider]]) bool {
		return settled(r) && r.Data.Pagination.Total == 0
	})
}

func TestListController_CloseStopsPendingSearch(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Hubs.ListSpec, ListParams{}, testDelay)
	require.NoError(t, err)
	waitFor(t, lc, settled[api.Page[Hub]])

	lc.SetSearch("karachi")
	lc.Close()
	time.Sleep(2 * testDelay)

	assert.Empty(t, searches(h, "/hubs"))
	assert.ErrorIs(t, lc.SetPage(2), query.ErrClosed)
}

func TestListController_RejectsReservedFilter(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Riders.ListSpec, ListParams{Status: RiderActive}, testDelay)
	require.NoError(t, err)
	defer lc.Close()

	assert.ErrorIs(t, lc.SetFilter("status", RiderSuspended), ErrReservedFilter)
	assert.Equal(t, RiderActive, lc.Params().Status)
}

func TestListController_FailedSearchIsReported(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Hubs.ListSpec, ListParams{}, time.Hour)
	require.NoError(t, err)
	defer lc.Close()
	waitFor(t, lc, settled[api.Page[Hub]])

	lc.SetSearch(strings.Repeat("x", query.MaxKeyLength))
	lc.FlushSearch()

	r := lc.Result()
	require.ErrorIs(t, r.Err, query.ErrInvalidKey)
	assert.True(t, r.HasData, "the last page stays visible")
	assert.Empty(t, lc.Params().Search)

	lc.SetSearch("karachi")
	lc.FlushSearch()
	waitFor(t, lc, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && lc.Params().Search == "karachi"
	})
	assert.NoError(t, lc.Result().Err)
}

func TestListController_FlushSearch(t *testing.T) {
	h := newHarness(t)

	lc, err := NewListController(h.q, h.svc.Hubs.ListSpec, ListParams{}, time.Hour)
	require.NoError(t, err)
	defer lc.Close()

	lc.SetSearch("karachi")
	lc.FlushSearch()
	r := waitFor(t, lc, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && lc.Params().Search == "karachi"
	})
	require.Len(t, r.Data.Items, 1)
	assert.Equal(t, "hub-3", r.Data.Items[0].ID)
}
