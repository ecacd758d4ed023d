package admin

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/notify"
	"github.com/jonwraymond/fleetsync/query"
)

func hubID(h Hub) string { return h.ID }

func TestNew_RequiresClients(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestCreateHub_RefreshesListAndStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list := observe(t, h, h.svc.Hubs.ListSpec(ListParams{}))
	stats := observe(t, h, h.svc.Hubs.StatsSpec())
	require.Equal(t, 3, stats.Result().Data.Total)
	require.Len(t, list.Result().Data.Items, 3)

	hub, err := h.svc.Hubs.Create().Do(ctx, h.q, CreateHubInput{
		Name: "Islamabad North", Code: "ISB01", City: "Islamabad", Address: "Blue Area",
	})
	require.NoError(t, err)
	require.NotEmpty(t, hub.ID)

	waitFor(t, list, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && slices.Contains(ids(r.Data.Items, hubID), hub.ID)
	})
	waitFor(t, stats, func(r query.Result[HubStats]) bool {
		return settled(r) && r.Data.Total == 4
	})

	last, ok := h.rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelSuccess, last.Level)
	assert.Equal(t, "Hub created successfully", last.Message)
	assert.Equal(t, 1, h.rec.Count(notify.LevelSuccess))
}

func riderID(r Rider) string { return r.ID }

func TestDeleteRider_DecrementsStats(t *testing.T) {
	h := newHarness(t)

	list := observe(t, h, h.svc.Riders.ListSpec(ListParams{}))
	stats := observe(t, h, h.svc.Riders.StatsSpec())
	hubStats := observe(t, h, h.svc.Hubs.StatsSpec())
	require.Equal(t, 3, stats.Result().Data.Total)
	require.Contains(t, ids(list.Result().Data.Items, riderID), "rider-2")
	require.Equal(t, 3, hubStats.Result().Data.TotalRiders)

	_, err := h.svc.Riders.Delete().Do(context.Background(), h.q, "rider-2")
	require.NoError(t, err)

	waitFor(t, list, func(r query.Result[api.Page[Rider]]) bool {
		return settled(r) && !slices.Contains(ids(r.Data.Items, riderID), "rider-2")
	})
	waitFor(t, stats, func(r query.Result[RiderStats]) bool {
		return settled(r) && r.Data.Total == 2 && r.Data.Active == 1
	})
	waitFor(t, hubStats, func(r query.Result[HubStats]) bool {
		return settled(r) && r.Data.TotalRiders == 2
	})
}

func TestRiderWrites_RefreshHubRiderCounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	riderCount := func(items []Hub, id string) int {
		for _, hub := range items {
			if hub.ID == id {
				return hub.RiderCount
			}
		}
		return -1
	}

	list := observe(t, h, h.svc.Hubs.ListSpec(ListParams{}))
	detail := observe(t, h, h.svc.Hubs.DetailSpec("hub-2"))
	require.Equal(t, 2, riderCount(list.Result().Data.Items, "hub-1"))
	require.Equal(t, 0, detail.Result().Data.RiderCount)

	_, err := h.svc.Riders.Delete().Do(ctx, h.q, "rider-2")
	require.NoError(t, err)
	waitFor(t, list, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && riderCount(r.Data.Items, "hub-1") == 1
	})

	_, err = h.svc.Riders.Create().Do(ctx, h.q, CreateRiderInput{
		Name: "Zain Ahmed", Email: "zain@example.com", Phone: "+923001234570", HubID: "hub-2",
	})
	require.NoError(t, err)
	waitFor(t, list, func(r query.Result[api.Page[Hub]]) bool {
		return settled(r) && riderCount(r.Data.Items, "hub-2") == 1
	})
	waitFor(t, detail, func(r query.Result[Hub]) bool {
		return settled(r) && r.Data.RiderCount == 1
	})

	_, err = h.svc.Riders.Update().Do(ctx, h.q, UpdateRiderInput{ID: "rider-1", HubID: "hub-2"})
	require.NoError(t, err)
	waitFor(t, detail, func(r query.Result[Hub]) bool {
		return settled(r) && r.Data.RiderCount == 2
	})
}

func TestRiderStatus_ActiveToSuspended(t *testing.T) {
	h := newHarness(t)

	detail := observe(t, h, h.svc.Riders.DetailSpec("rider-1"))
	active := observe(t, h, h.svc.Riders.ListSpec(ListParams{Status: RiderActive}))
	stats := observe(t, h, h.svc.Riders.StatsSpec())
	require.Equal(t, RiderActive, detail.Result().Data.Status)
	require.Len(t, active.Result().Data.Items, 2)

	_, err := h.svc.Riders.SetStatus().Do(context.Background(), h.q, RiderStatusInput{ID: "rider-1", Status: RiderSuspended})
	require.NoError(t, err)

	waitFor(t, detail, func(r query.Result[Rider]) bool {
		return settled(r) && r.Data.Status == RiderSuspended
	})
	waitFor(t, active, func(r query.Result[api.Page[Rider]]) bool {
		return settled(r) && len(r.Data.Items) == 1
	})
	waitFor(t, stats, func(r query.Result[RiderStats]) bool {
		return settled(r) && r.Data.Suspended == 1 && r.Data.Active == 1
	})

	last, _ := h.rec.Last()
	assert.Equal(t, "Rider status updated to suspended", last.Message)
}

func TestMutationFailure_InvalidatesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list := observe(t, h, h.svc.Hubs.ListSpec(ListParams{}))
	before := list.Result().Data
	listCalls := h.srv.Count(http.MethodGet, "/hubs")

	h.srv.Fail(http.MethodPost, "/hubs", http.StatusConflict, "Hub code already exists", 1)
	_, err := h.svc.Hubs.Create().Do(ctx, h.q, CreateHubInput{Name: "Duplicate", Code: "LHR01", City: "Lahore", Address: "Mall Road"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))

	require.Equal(t, 1, h.rec.Count(notify.LevelError))
	assert.Equal(t, 0, h.rec.Count(notify.LevelSuccess))
	last, _ := h.rec.Last()
	assert.Equal(t, "Hub code already exists", last.Message)

	info, ok := h.q.Snapshot(h.svc.Hubs.Keys().List(ListParams{}))
	require.True(t, ok)
	assert.False(t, info.Stale)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, listCalls, h.srv.Count(http.MethodGet, "/hubs"))
	assert.Equal(t, before, list.Result().Data)
}

func TestMutationFailure_FallbackMessage(t *testing.T) {
	h := newHarness(t)

	h.srv.Fail(http.MethodDelete, "/hubs/hub-1", http.StatusInternalServerError, "", 1)
	_, err := h.svc.Hubs.Delete().Do(context.Background(), h.q, "hub-1")
	require.Error(t, err)

	last, ok := h.rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Failed to delete hub", last.Message)
	assert.Equal(t, 1, h.srv.Count(http.MethodDelete, "/hubs/hub-1"), "writes are not retried")
}

func TestMutationValidation_NeverCallsAPI(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Riders.Create().Do(context.Background(), h.q, CreateRiderInput{
		Name: "Al", Email: "not-an-email", HubID: "hub-1",
	})
	var verr *query.ValidationError
	require.ErrorAs(t, err, &verr)

	msg, ok := verr.Field("email")
	require.True(t, ok)
	assert.Equal(t, "email must be a valid email address", msg)
	msg, _ = verr.Field("name")
	assert.Equal(t, "name must be at least 3 characters", msg)
	msg, _ = verr.Field("phone")
	assert.Equal(t, "phone is required", msg)

	assert.Zero(t, h.srv.Count(http.MethodPost, "/riders"))
	assert.Empty(t, h.rec.All())
}

func TestDelete_RequiresID(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Merchants.Delete().Do(context.Background(), h.q, " ")
	assert.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, 1, h.rec.Count(notify.LevelError))
}

func TestGet_DeduplicatesConcurrentReads(t *testing.T) {
	h := newHarness(t)
	h.srv.SetLatency(50 * time.Millisecond)

	var wg sync.WaitGroup
	results := make([]ShipmentStats, 10)
	errs := make([]error, 10)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = h.svc.Shipments.Stats(context.Background(), h.q)
		}()
	}
	wg.Wait()

	for i := range 10 {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, h.srv.Count(http.MethodGet, "/shipments/stats"))
	assert.Equal(t, 1, results[0].InTransit)

	_, err := h.svc.Shipments.Stats(context.Background(), h.q)
	require.NoError(t, err)
	assert.Equal(t, 1, h.srv.Count(http.MethodGet, "/shipments/stats"), "fresh data is served from cache")
}

func TestDetailSpec_DisabledWithoutID(t *testing.T) {
	h := newHarness(t)

	o := query.NewObserver[Rider](h.q)
	defer o.Close()
	require.NoError(t, o.Observe(h.svc.Riders.DetailSpec("")))

	r := o.Result()
	assert.False(t, r.IsLoading)
	assert.False(t, r.IsFetching)
	assert.False(t, r.HasData)

	_, err := h.svc.Riders.Get(context.Background(), h.q, "")
	assert.ErrorIs(t, err, query.ErrDisabled)
	assert.Zero(t, h.srv.Count(http.MethodGet, "/riders/"))
}

func TestAssignRider_RefreshesRiderDetail(t *testing.T) {
	h := newHarness(t)

	rider := observe(t, h, h.svc.Riders.DetailSpec("rider-2"))
	calls := h.srv.Count(http.MethodGet, "/riders/rider-2")

	shipment, err := h.svc.Shipments.AssignRider().Do(context.Background(), h.q, AssignRiderInput{ShipmentID: "shipment-1", RiderID: "rider-2"})
	require.NoError(t, err)
	assert.Equal(t, "rider-2", shipment.RiderID)

	waitFor(t, rider, func(r query.Result[Rider]) bool { return settled(r) })
	assert.Eventually(t, func() bool {
		return h.srv.Count(http.MethodGet, "/riders/rider-2") == calls+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWalletAdjust_RefreshesTransactions(t *testing.T) {
	h := newHarness(t)

	txns := observe(t, h, h.svc.Wallets.TransactionsSpec("wallet-1", ListParams{}))
	require.Len(t, txns.Result().Data.Items, 1)
	calls := h.srv.Count(http.MethodGet, "/wallets/wallet-1/transactions")

	_, err := h.svc.Wallets.Adjust().Do(context.Background(), h.q, AdjustWalletInput{
		WalletID: "wallet-1", Type: "credit", Amount: 250, Description: "Bonus",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return h.srv.Count(http.MethodGet, "/wallets/wallet-1/transactions") == calls+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCMS_ListsByType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	faqs, err := query.Get(ctx, h.q, h.svc.CMS.ListOf("faq", ListParams{}))
	require.NoError(t, err)
	require.Len(t, faqs.Items, 1)
	assert.Equal(t, "content-1", faqs.Items[0].ID)

	all, err := query.Get(ctx, h.q, h.svc.CMS.ListOf("", ListParams{}))
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	banners := observe(t, h, h.svc.CMS.ListOf("banner", ListParams{}))
	_, err = h.svc.CMS.Create().Do(ctx, h.q, CreateContentInput{Type: "banner", Title: "Winter", Slug: "winter", Body: "Sale"})
	require.NoError(t, err)
	waitFor(t, banners, func(r query.Result[api.Page[Content]]) bool {
		return settled(r) && len(r.Data.Items) == 2
	})
}

func TestSettingsAndProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	settings := observe(t, h, h.svc.Settings.Spec())
	assert.Equal(t, "FleetSync", settings.Result().Data.CompanyName)

	_, err := h.svc.Settings.Update().Do(ctx, h.q, UpdateSettingsInput{
		CompanyName: "FleetSync PK", SupportEmail: "help@example.com", Currency: "PKR",
	})
	require.NoError(t, err)
	waitFor(t, settings, func(r query.Result[Settings]) bool {
		return settled(r) && r.Data.CompanyName == "FleetSync PK"
	})

	profile, err := h.svc.Profile.Get(ctx, h.q)
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Role)

	_, err = h.svc.Profile.ChangePassword().Do(ctx, h.q, ChangePasswordInput{
		CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "different",
	})
	var verr *query.ValidationError
	require.ErrorAs(t, err, &verr)
	_, ok := verr.Field("confirmPassword")
	assert.True(t, ok)
}

func TestAnalytics_InvalidatedByShipments(t *testing.T) {
	h := newHarness(t)

	overview := observe(t, h, h.svc.Analytics.OverviewSpec(""))
	assert.Equal(t, 2, overview.Result().Data.ActiveHubs)
	calls := h.srv.Count(http.MethodGet, "/analytics/overview")
	assert.Equal(t, []string{Range30Days}, h.srv.Requests(http.MethodGet, "/analytics/overview")[0].Query["range"])

	_, err := h.svc.Shipments.UpdateStatus().Do(context.Background(), h.q, ShipmentStatusInput{ID: "shipment-1", Status: "delivered"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return h.srv.Count(http.MethodGet, "/analytics/overview") == calls+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestUnauthorized_CallsHandler(t *testing.T) {
	var got error
	var mu sync.Mutex
	h := newHarness(t, api.WithUnauthorizedHandler(func(_ context.Context, err error) {
		mu.Lock()
		defer mu.Unlock()
		got = err
	}))
	h.srv.RequireToken("expected")

	_, err := h.svc.Hubs.List(context.Background(), h.q, ListParams{})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, errors.Is(got, api.ErrUnauthorized))
}
