// Package fakeapi is an in-memory admin API for tests. It serves the
// response envelope of the real API over gorilla/mux routes and records
// every request it receives.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Prefix is the path prefix of every route.
const Prefix = "/api"

// Record is one stored entity.
type Record = map[string]any

// Request is one received request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

type failure struct {
	status  int
	message string
	times   int
}

type collection struct {
	prefix    string
	records   []Record
	relations []relation
}

// relation derives a count of related records, e.g. riders per hub.
type relation struct {
	field      string
	from       string
	foreignKey string
	total      string
}

// Server is the fake API. Collections and documents must be added before
// the handler serves its first request.
type Server struct {
	router *mux.Router

	mu          sync.Mutex
	collections map[string]*collection
	documents   map[string]Record
	requests    []Request
	failures    map[string]*failure
	latency     time.Duration
	token       string
	nextID      int
}

// New creates an empty server.
func New() *Server {
	s := &Server{
		router:      mux.NewRouter(),
		collections: make(map[string]*collection),
		documents:   make(map[string]Record),
		failures:    make(map[string]*failure),
		nextID:      1000,
	}
	s.router.Use(s.record, s.authenticate, s.inject)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// AddCollection serves a REST collection at path, e.g. "/hubs". New records
// get ids of the form prefix-N.
func (s *Server) AddCollection(path, idPrefix string, records ...Record) *Server {
	c := &collection{prefix: idPrefix}
	for _, r := range records {
		c.records = append(c.records, clone(r))
	}

	s.mu.Lock()
	s.collections[path] = c
	s.mu.Unlock()

	base := Prefix + path
	s.router.HandleFunc(base, s.list(c)).Methods(http.MethodGet)
	s.router.HandleFunc(base, s.create(c)).Methods(http.MethodPost)
	s.router.HandleFunc(base+"/stats", s.stats(c)).Methods(http.MethodGet)
	s.router.HandleFunc(base+"/{id}", s.get(c)).Methods(http.MethodGet)
	s.router.HandleFunc(base+"/{id}", s.update(c)).Methods(http.MethodPut, http.MethodPatch)
	s.router.HandleFunc(base+"/{id}", s.remove(c)).Methods(http.MethodDelete)
	s.router.HandleFunc(base+"/{id}/{action}", s.update(c)).Methods(http.MethodPost, http.MethodPut, http.MethodPatch)
	s.router.HandleFunc(base+"/{id}/{sub}", s.nested(c)).Methods(http.MethodGet)
	return s
}

// CountRelated adds field to every record of path, counting the records of
// from whose foreignKey equals the record id. When total is not empty, the
// stats of path report the sum under that name.
func (s *Server) CountRelated(path, field, from, foreignKey, total string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[path]; ok {
		c.relations = append(c.relations, relation{field: field, from: from, foreignKey: foreignKey, total: total})
	}
	return s
}

// view returns a copy of rec with derived fields. Callers hold s.mu.
func (s *Server) view(c *collection, rec Record) Record {
	out := clone(rec)
	for _, rel := range c.relations {
		n := 0
		if from, ok := s.collections[rel.from]; ok {
			for _, r := range from.records {
				if r[rel.foreignKey] == rec["id"] {
					n++
				}
			}
		}
		out[rel.field] = n
	}
	return out
}

// AddDocument serves a single document at path, e.g. "/settings".
func (s *Server) AddDocument(path string, doc Record) *Server {
	s.mu.Lock()
	s.documents[path] = clone(doc)
	s.mu.Unlock()

	s.router.HandleFunc(Prefix+path, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r.Method != http.MethodGet {
			body, err := decode(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			for k, v := range body {
				s.documents[path][k] = v
			}
		}
		writeData(w, http.StatusOK, clone(s.documents[path]), nil)
	}).Methods(http.MethodGet, http.MethodPut, http.MethodPatch)
	return s
}

// Fail makes the next times requests to method and path fail with status
// and message. times <= 0 fails until Reset.
func (s *Server) Fail(method, path string, status int, message string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+Prefix+path] = &failure{status: status, message: message, times: times}
}

// RequireToken rejects requests without this bearer token with 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetLatency delays every response.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Requests returns received requests matching method and path (without
// Prefix). An empty method matches any.
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && r.Path == Prefix+path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of matching requests.
func (s *Server) Count(method, path string) int {
	return len(s.Requests(method, path))
}

// Records returns a copy of a collection.
func (s *Server) Records(path string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[path]
	if !ok {
		return nil
	}
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = clone(r)
	}
	return out
}

// Reset forgets recorded requests and injected failures.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.failures = make(map[string]*failure)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		key := r.Method + " " + r.URL.Path
		f, ok := s.failures[key]
		if ok && f.times > 0 {
			f.times--
			if f.times == 0 {
				delete(s.failures, key)
			}
		}
		s.mu.Unlock()

		if ok {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoi(q.Get("page"), 1)
		limit := atoi(q.Get("limit"), 10)
		search := strings.ToLower(q.Get("search"))

		s.mu.Lock()
		var matched []Record
		for _, rec := range c.records {
			if v := s.view(c, rec); matches(v, q, search) {
				matched = append(matched, v)
			}
		}
		s.mu.Unlock()

		writePage(w, matched, page, limit)
	}
}

func (s *Server) stats(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := Record{"total": len(c.records)}
		for _, rec := range c.records {
			if status, ok := rec["status"].(string); ok && status != "" {
				k := camel(status)
				n, _ := out[k].(int)
				out[k] = n + 1
			}
			for _, rel := range c.relations {
				if rel.total != "" {
					n, _ := out[rel.total].(int)
					out[rel.total] = n + s.view(c, rec)[rel.field].(int)
				}
			}
		}
		s.mu.Unlock()
		writeData(w, http.StatusOK, out, nil)
	}
}

func (s *Server) get(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(mux.Vars(r)["id"])
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		writeData(w, http.StatusOK, s.view(c, c.records[i]), nil)
	}
}

func (s *Server) create(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextID++
		body["id"] = fmt.Sprintf("%s-%d", c.prefix, s.nextID)
		if _, ok := body["status"]; !ok {
			body["status"] = "active"
		}
		body["createdAt"] = time.Now().UTC().Format(time.RFC3339)
		c.records = append(c.records, body)
		writeData(w, http.StatusCreated, s.view(c, body), nil)
	}
}

func (s *Server) update(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(mux.Vars(r)["id"])
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		for k, v := range body {
			if k != "id" {
				c.records[i][k] = v
			}
		}
		writeData(w, http.StatusOK, s.view(c, c.records[i]), nil)
	}
}

func (s *Server) remove(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := c.find(mux.Vars(r)["id"])
		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		c.records = slices.Delete(c.records, i, i+1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Deleted"})
	}
}

// nested serves sub-collections such as wallet transactions as empty pages
// unless the record carries them.
func (s *Server) nested(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		s.mu.Lock()
		i := c.find(vars["id"])
		var items []Record
		if i >= 0 {
			if sub, ok := c.records[i][vars["sub"]].([]any); ok {
				for _, it := range sub {
					if m, ok := it.(map[string]any); ok {
						items = append(items, clone(m))
					}
				}
			}
		}
		s.mu.Unlock()

		if i < 0 {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		q := r.URL.Query()
		writePage(w, items, atoi(q.Get("page"), 1), atoi(q.Get("limit"), 10))
	}
}

func (c *collection) find(id string) int {
	return slices.IndexFunc(c.records, func(r Record) bool { return r["id"] == id })
}

// matches applies search across string fields and exact-match filters for
// every other query parameter.
func matches(rec Record, q url.Values, search string) bool {
	for k, vs := range q {
		switch k {
		case "page", "limit", "search":
			continue
		}
		if fmt.Sprint(rec[k]) != vs[0] {
			return false
		}
	}
	if search == "" {
		return true
	}
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func writePage(w http.ResponseWriter, all []Record, page, limit int) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	items := all[start:end]
	if items == nil {
		items = []Record{}
	}
	writeData(w, http.StatusOK, items, map[string]int{
		"page":       page,
		"limit":      limit,
		"total":      len(all),
		"totalPages": int(math.Ceil(float64(len(all)) / float64(limit))),
	})
}

func writeData(w http.ResponseWriter, status int, data any, pagination map[string]int) {
	body := map[string]any{"success": true, "data": data}
	if pagination != nil {
		body["pagination"] = pagination
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"message": message},
	})
}

func decode(r *http.Request) (Record, error) {
	body := Record{}
	if r.ContentLength == 0 {
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// camel turns "in_transit" into "inTransit".
func camel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func clone(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
