package main

import (
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/admin"
)

// listOptions are the flags shared by list commands.
type listOptions struct {
	page    int
	limit   int
	search  string
	status  string
	filters map[string]string
}

func addListFlags(cmd *cobra.Command, o *listOptions) {
	f := cmd.Flags()
	f.IntVar(&o.page, "page", 1, "page number")
	f.IntVar(&o.limit, "limit", admin.DefaultPageSize, "page size")
	f.StringVar(&o.search, "search", "", "search text")
	f.StringVar(&o.status, "status", admin.StatusAll, "status filter")
	f.StringToStringVar(&o.filters, "filter", nil, "extra filters, e.g. --filter hubId=hub-1")
}

func (o listOptions) params() (admin.ListParams, error) {
	for k := range o.filters {
		if admin.IsReservedFilter(k) {
			return admin.ListParams{}, fmt.Errorf("%w: use --%s instead of --filter %s=...", admin.ErrReservedFilter, k, k)
		}
	}
	return admin.ListParams{
		Page:    o.page,
		Limit:   o.limit,
		Search:  o.search,
		Status:  o.status,
		Filters: maps.Clone(o.filters),
	}.Normalize(), nil
}
