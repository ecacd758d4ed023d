package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Ack is the result of a write whose response carries no record.
type Ack struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Resource is a REST collection with list, stats and detail reads.
// T is the record type and S the stats type.
type Resource[T, S any] struct {
	keys Keys
	path string
	api  *api.Client
}

func newResource[T, S any](c *api.Client, domain, path string) Resource[T, S] {
	return Resource[T, S]{keys: KeysFor(domain), path: path, api: c}
}

// Keys returns the domain's key builder.
func (r Resource[T, S]) Keys() Keys { return r.keys }

// Path returns the collection path, e.g. "/hubs".
func (r Resource[T, S]) Path() string { return r.path }

// ListSpec reads one page. The previous page stays visible as placeholder
// while the next one loads.
func (r Resource[T, S]) ListSpec(p ListParams) query.Spec[api.Page[T]] {
	p = p.Normalize()
	return query.Spec[api.Page[T]]{
		Key:          r.keys.List(p),
		Name:         scopeList,
		KeepPrevious: true,
		Fetch: func(ctx context.Context) (api.Page[T], error) {
			return api.List[T](ctx, r.api, r.path, p.Values())
		},
	}
}

// StatsSpec reads the domain counters.
func (r Resource[T, S]) StatsSpec() query.Spec[S] {
	return query.Spec[S]{
		Key:   r.keys.Stats(),
		Name:  scopeStats,
		Fetch: getData[S](r.api, r.path+"/stats", nil),
	}
}

// DetailSpec reads one record. It stays disabled while id is empty.
func (r Resource[T, S]) DetailSpec(id string) query.Spec[T] {
	id = strings.TrimSpace(id)
	return query.Spec[T]{
		Key:     r.keys.Detail(id),
		Name:    scopeDetail,
		Enabled: func() bool { return id != "" },
		Fetch:   getData[T](r.api, r.itemPath(id), nil),
	}
}

// List fetches or serves one page.
func (r Resource[T, S]) List(ctx context.Context, q *query.Client, p ListParams) (api.Page[T], error) {
	return query.Get(ctx, q, r.ListSpec(p))
}

// Stats fetches or serves the counters.
func (r Resource[T, S]) Stats(ctx context.Context, q *query.Client) (S, error) {
	return query.Get(ctx, q, r.StatsSpec())
}

// Get fetches or serves one record.
func (r Resource[T, S]) Get(ctx context.Context, q *query.Client, id string) (T, error) {
	return query.Get(ctx, q, r.DetailSpec(id))
}

func (r Resource[T, S]) itemPath(id string, rest ...string) string {
	p := r.path + "/" + url.PathEscape(id)
	for _, s := range rest {
		p += "/" + s
	}
	return p
}

// createCall posts the input to the collection.
func createCall[In, T any](c *api.Client, path string) func(context.Context, In) (T, error) {
	return func(ctx context.Context, in In) (T, error) {
		env, err := api.Send[T](ctx, c, http.MethodPost, path, in)
		return env.Data, err
	}
}

// sendCall issues method against path(in) with the input as body.
func sendCall[In, T any](c *api.Client, method string, path func(In) string) func(context.Context, In) (T, error) {
	return func(ctx context.Context, in In) (T, error) {
		env, err := api.Send[T](ctx, c, method, path(in), in)
		return env.Data, err
	}
}

// deleteCall deletes path(id).
func deleteCall(c *api.Client, path func(string) string) func(context.Context, string) (Ack, error) {
	return func(ctx context.Context, id string) (Ack, error) {
		if strings.TrimSpace(id) == "" {
			return Ack{}, ErrMissingID
		}
		env, err := api.Send[json.RawMessage](ctx, c, http.MethodDelete, path(id), nil)
		return Ack{Message: env.Message, Data: env.Data}, err
	}
}

func getData[T any](c *api.Client, path string, q url.Values) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		env, err := api.Get[T](ctx, c, path, q)
		return env.Data, err
	}
}
