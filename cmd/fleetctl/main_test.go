package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetsync/admin"
	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/internal/fakeapi"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func newServer(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FLEETSYNC_RESILIENCE_RETRY_MAX_ATTEMPTS", "1")
	t.Setenv("FLEETSYNC_OBSERVE_LOGGING_LEVEL", "error")

	srv := fakeapi.Seeded()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL + fakeapi.Prefix
}

func fleetctl(t *testing.T, baseURL string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if baseURL != "" {
		args = append([]string{"--base-url", baseURL}, args...)
	}
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestHubsList_Search(t *testing.T) {
	_, base := newServer(t)

	res := fleetctl(t, base, "hubs", "list", "--search", "lahore")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "hub-1")
	assert.Contains(t, res.stdout, "hub-2")
	assert.NotContains(t, res.stdout, "hub-3")
	assert.Contains(t, res.stdout, "page 1/1, 2 total")
}

func TestHubsStats_JSON(t *testing.T) {
	_, base := newServer(t)

	res := fleetctl(t, base, "-o", "json", "hubs", "stats")
	require.Equal(t, 0, res.code, res.stderr)

	var stats admin.HubStats
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &stats))
	assert.Equal(t, admin.HubStats{Total: 3, Active: 2, Inactive: 1, TotalRiders: 3}, stats)
}

func TestRidersList_HubFilter(t *testing.T) {
	srv, base := newServer(t)

	res := fleetctl(t, base, "-o", "json", "riders", "list", "--hub", "hub-1", "--status", "active")
	require.Equal(t, 0, res.code, res.stderr)

	var page api.Page[admin.Rider]
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "rider-1", page.Items[0].ID)
	assert.Equal(t, "rider-2", page.Items[1].ID)

	reqs := srv.Requests(http.MethodGet, "/riders")
	require.Len(t, reqs, 1)
	assert.Equal(t, "hub-1", reqs[0].Query.Get("hubId"))
	assert.Equal(t, "active", reqs[0].Query.Get("status"))
}

func TestRidersGet(t *testing.T) {
	_, base := newServer(t)

	res := fleetctl(t, base, "riders", "get", "rider-3")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Sana Iqbal")
	assert.Contains(t, res.stdout, "inactive")

	res = fleetctl(t, base, "riders", "get", "rider-404")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Record not found")
}

func TestRidersSetStatus(t *testing.T) {
	srv, base := newServer(t)

	res := fleetctl(t, base, "riders", "set-status", "rider-1", admin.RiderSuspended, "--reason", "late deliveries")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "[ok] Rider status updated to suspended")
	assert.Contains(t, res.stdout, "suspended")

	reqs := srv.Requests(http.MethodPatch, "/riders/rider-1/status")
	require.Len(t, reqs, 1)
	for _, r := range srv.Records("/riders") {
		if r["id"] == "rider-1" {
			assert.Equal(t, admin.RiderSuspended, r["status"])
			assert.Equal(t, "late deliveries", r["reason"])
		}
	}
}

func TestRidersSetStatus_Failures(t *testing.T) {
	srv, base := newServer(t)

	res := fleetctl(t, base, "riders", "set-status", "rider-1", "fired")
	assert.Equal(t, 1, res.code)
	assert.Zero(t, srv.Count(http.MethodPatch, "/riders/rider-1/status"), "invalid input reached the API")
	assert.NotContains(t, res.stderr, "[error]")

	srv.Fail(http.MethodPatch, "/riders/rider-1/status", http.StatusConflict, "Rider has open shipments", 1)
	res = fleetctl(t, base, "riders", "set-status", "rider-1", admin.RiderInactive)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "[error] Rider has open shipments")
}

func TestShipmentsList(t *testing.T) {
	_, base := newServer(t)

	res := fleetctl(t, base, "shipments", "list", "--status", "in_transit")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "FS-1002")
	assert.NotContains(t, res.stdout, "FS-1001")
}

func TestShipmentsList_ReservedFilter(t *testing.T) {
	srv, base := newServer(t)

	res := fleetctl(t, base, "shipments", "list", "--filter", "status=pending")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "use --status instead")
	assert.Zero(t, srv.Count(http.MethodGet, "/shipments"))
}

func TestNav(t *testing.T) {
	newServer(t)

	res := fleetctl(t, "", "nav", "--role", "hub_manager")
	require.Equal(t, 0, res.code, res.stderr)
	for _, path := range []string{"/dashboard", "/riders", "/shipments", "/support", "/settings", "/profile"} {
		assert.Contains(t, res.stdout, path)
	}
	for _, path := range []string{"/hubs", "/merchants", "/payments", "/wallets", "/cms", "/analytics"} {
		assert.NotContains(t, res.stdout, path)
	}

	res = fleetctl(t, "", "-o", "json", "nav", "--role", "someone")
	require.Equal(t, 0, res.code, res.stderr)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &items))
	assert.Len(t, items, 12)
}

func TestHealth(t *testing.T) {
	srv, base := newServer(t)

	res := fleetctl(t, base, "health")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "overall: healthy")

	srv.Fail(http.MethodGet, "/profile", http.StatusServiceUnavailable, "maintenance", 0)
	res = fleetctl(t, base, "health")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "overall: unhealthy")
	assert.Contains(t, res.stderr, "unhealthy")
}

func TestUnknownOutputFormat(t *testing.T) {
	newServer(t)

	res := fleetctl(t, "", "-o", "yaml", "nav")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `unknown output format "yaml"`)
}
