package nav

import (
	"context"
	"testing"

	"github.com/jonwraymond/fleetsync/auth"
)

func sections(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Section
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	all := sections(Menu())

	tests := []struct {
		role string
		want []string
	}{
		{"hub_manager", []string{"dashboard", "riders", "shipments", "support", "settings", "profile"}},
		{"admin", all},
		{"", all},
		{"super_admin", all},
		{"Hub_Manager", all},
	}

	for _, tt := range tests {
		t.Run("role="+tt.role, func(t *testing.T) {
			got := sections(Filter(tt.role, Menu()))
			if !equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	items := []Item{
		{Section: "support"}, {Section: "payments"}, {Section: "dashboard"}, {Section: "riders"},
	}
	got := sections(Filter("hub_manager", items))
	want := []string{"support", "dashboard", "riders"}
	if !equal(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestMenu_ReturnsCopy(t *testing.T) {
	m := Menu()
	m[0].Label = "changed"
	if Menu()[0].Label == "changed" {
		t.Error("Menu() exposes the package menu")
	}
}

func TestFilterWith(t *testing.T) {
	authz := auth.NewRBACAuthorizer(auth.RBACConfig{
		Roles: map[string]auth.RoleConfig{"finance": {Allowed: []string{"payments", "wallets"}}},
	})
	got := sections(FilterWith(context.Background(), authz, "finance", Menu()))
	if !equal(got, []string{"payments", "wallets"}) {
		t.Errorf("FilterWith() = %v", got)
	}
	if got := FilterWith(context.Background(), auth.AllowAllAuthorizer{}, "anyone", Menu()); len(got) != len(Menu()) {
		t.Errorf("AllowAll kept %d of %d items", len(got), len(Menu()))
	}
}

func TestFind(t *testing.T) {
	item, ok := Find(Menu(), "/riders/r-1")
	if !ok || item.Label != "Riders" {
		t.Errorf("Find() = %+v, %v", item, ok)
	}
	if _, ok := Find(Menu(), "/unknown"); ok {
		t.Error("Find() matched an unknown section")
	}
}
