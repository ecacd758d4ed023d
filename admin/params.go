package admin

import (
	"maps"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jonwraymond/fleetsync/query"
)

// Page size bounds for list requests.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// StatusAll is the status filter that matches every record.
const StatusAll = "all"

// ListParams is the filter and pagination state of a list view. It is a
// value; the With methods return modified copies.
type ListParams struct {
	// Page is 1-based.
	Page  int
	Limit int

	Search string
	Status string

	// Filters holds further categorical filters, e.g. "hubId" or "type".
	Filters map[string]string
}

// Normalize clamps paging and drops empty, "all" and reserved filters.
func (p ListParams) Normalize() ListParams {
	out := ListParams{
		Page:   p.Page,
		Limit:  p.Limit,
		Search: strings.TrimSpace(p.Search),
		Status: strings.TrimSpace(p.Status),
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit <= 0 {
		out.Limit = DefaultPageSize
	}
	if out.Limit > MaxPageSize {
		out.Limit = MaxPageSize
	}
	if out.Status == "" {
		out.Status = StatusAll
	}
	for k, v := range p.Filters {
		v = strings.TrimSpace(v)
		if k == "" || v == "" || v == StatusAll || IsReservedFilter(k) {
			continue
		}
		if out.Filters == nil {
			out.Filters = make(map[string]string, len(p.Filters))
		}
		out.Filters[k] = v
	}
	return out
}

// reservedFilters are the parameters carried by ListParams fields.
var reservedFilters = map[string]bool{"page": true, "limit": true, "search": true, "status": true}

// IsReservedFilter reports whether k names a typed ListParams field and so
// cannot be used as a filter.
func IsReservedFilter(k string) bool { return reservedFilters[k] }

var paramDefaults = query.Params{"page": 1, "limit": DefaultPageSize, "status": StatusAll}

// KeyParams returns the cache-key form: every response-affecting parameter,
// with defaults omitted.
func (p ListParams) KeyParams() query.Params {
	n := p.Normalize()
	raw := query.Params{
		"page":   n.Page,
		"limit":  n.Limit,
		"search": n.Search,
		"status": n.Status,
	}
	for k, v := range n.Filters {
		raw[k] = v
	}
	return raw.Normalize(paramDefaults)
}

// Values returns the request query string.
func (p ListParams) Values() url.Values {
	n := p.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(n.Page))
	v.Set("limit", strconv.Itoa(n.Limit))
	if n.Search != "" {
		v.Set("search", n.Search)
	}
	if n.Status != StatusAll {
		v.Set("status", n.Status)
	}
	keys := make([]string, 0, len(n.Filters))
	for k := range n.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, n.Filters[k])
	}
	return v
}

// WithSearch returns p with a new search term, back on the first page.
func (p ListParams) WithSearch(s string) ListParams {
	p.Search = s
	p.Page = 1
	p.Filters = maps.Clone(p.Filters)
	return p
}

// WithStatus returns p with a new status filter, back on the first page.
func (p ListParams) WithStatus(s string) ListParams {
	p.Status = s
	p.Page = 1
	p.Filters = maps.Clone(p.Filters)
	return p
}

// WithFilter returns p with filter k set to v, back on the first page.
func (p ListParams) WithFilter(k, v string) ListParams {
	f := maps.Clone(p.Filters)
	if f == nil {
		f = map[string]string{}
	}
	f[k] = v
	p.Filters = f
	p.Page = 1
	return p
}

// WithPage returns p on page n.
func (p ListParams) WithPage(n int) ListParams {
	p.Page = n
	p.Filters = maps.Clone(p.Filters)
	return p
}
