package nav

import (
	"context"

	"github.com/jonwraymond/fleetsync/auth"
)

// Item is one navigation entry.
type Item struct {
	// Section is the authorization resource, the first path segment.
	Section string `json:"section"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	Icon    string `json:"icon,omitempty"`
}

var menu = []Item{
	{Section: "dashboard", Label: "Dashboard", Path: "/dashboard", Icon: "layout-dashboard"},
	{Section: "hubs", Label: "Hubs", Path: "/hubs", Icon: "warehouse"},
	{Section: "riders", Label: "Riders", Path: "/riders", Icon: "bike"},
	{Section: "merchants", Label: "Merchants", Path: "/merchants", Icon: "store"},
	{Section: "shipments", Label: "Shipments", Path: "/shipments", Icon: "package"},
	{Section: "payments", Label: "Payments", Path: "/payments", Icon: "credit-card"},
	{Section: "wallets", Label: "Wallets", Path: "/wallets", Icon: "wallet"},
	{Section: "support", Label: "Support", Path: "/support", Icon: "life-buoy"},
	{Section: "cms", Label: "CMS", Path: "/cms", Icon: "file-text"},
	{Section: "analytics", Label: "Analytics", Path: "/analytics", Icon: "bar-chart"},
	{Section: "settings", Label: "Settings", Path: "/settings", Icon: "settings"},
	{Section: "profile", Label: "Profile", Path: "/profile", Icon: "user"},
}

var defaultAuthorizer = auth.NewRBACAuthorizer(auth.DefaultRBACConfig())

// Menu returns a copy of the static menu in display order.
func Menu() []Item {
	return append([]Item(nil), menu...)
}

// Filter returns the items role may view, in their original order.
// "hub_manager" sees a fixed subset; every other role sees everything.
func Filter(role string, items []Item) []Item {
	return FilterWith(context.Background(), defaultAuthorizer, role, items)
}

// FilterWith is Filter with a custom authorizer.
func FilterWith(ctx context.Context, authz auth.Authorizer, role string, items []Item) []Item {
	subject := &auth.Identity{}
	if role != "" {
		subject.Roles = []string{role}
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		err := authz.Authorize(ctx, &auth.AuthzRequest{
			Subject:  subject,
			Resource: item.Section,
			Action:   auth.ActionView,
		})
		if err == nil {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the item whose section matches the first segment of path.
func Find(items []Item, path string) (Item, bool) {
	section := auth.Section(path)
	for _, item := range items {
		if item.Section == section {
			return item, true
		}
	}
	return Item{}, false
}
