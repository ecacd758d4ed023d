// Package admin binds the dashboard's API domains to the query layer.
//
// Each domain exposes query specs for its reads (list, stats, detail) and
// mutation descriptors for its writes. A mutation names every cache key it
// makes stale, so after a successful write each mounted view of an affected
// list, counter or detail refetches without any direct cache write:
//
//	svc := admin.New(apiClient, queryClient)
//	hub, err := svc.Hubs.Create().Do(ctx, queryClient, admin.CreateHubInput{...})
//
// ListController pairs a debounced search box with a paginated list observer.
package admin
