package query

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/fleetsync/notify"
)

type serverError struct{ msg string }

func (e *serverError) Error() string       { return "server: " + e.msg }
func (e *serverError) UserMessage() string { return e.msg }

// hubStore is an in-memory stand-in for the hubs API.
type hubStore struct {
	mu    sync.Mutex
	hubs  []string
	calls int
	fail  error
}

func (s *hubStore) list(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.hubs), nil
}

func (s *hubStore) create(_ context.Context, in hubInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return "", s.fail
	}
	s.hubs = append(s.hubs, in.Name)
	return in.Name, nil
}

type hubInput struct {
	Name string `json:"name" validate:"required,min=3"`
	City string `json:"city" validate:"required"`
}

func createHub(s *hubStore) Mutation[hubInput, string] {
	return Mutation[hubInput, string]{
		Domain:      "hubs",
		Name:        "create",
		Call:        s.create,
		Invalidates: []Key{MustKey("hubs", "list"), MustKey("hubs", "stats")},
		Success:     "Hub created successfully",
		Failure:     "Failed to create hub",
		Validate:    true,
	}
}

func TestMutation_SuccessInvalidatesAndRefetches(t *testing.T) {
	rec := notify.NewRecorder()
	c := newTestClient(t, WithNotifier(rec), WithPolicy(Policy{StaleTime: time.Hour}))
	store := &hubStore{hubs: []string{"Lahore Central"}}

	o := NewObserver[[]string](c)
	defer o.Close()
	if err := o.Observe(Spec[[]string]{Key: MustKey("hubs", "list", Params{"page": 2}), Fetch: store.list}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, o, settled[[]string])

	out, err := createHub(store).Do(context.Background(), c, hubInput{Name: "Karachi East", City: "Karachi"})
	if err != nil || out != "Karachi East" {
		t.Fatalf("Do() = (%q, %v)", out, err)
	}

	waitFor(t, o, func(r Result[[]string]) bool {
		return settled(r) && slices.Contains(r.Data, "Karachi East")
	})
	if got := rec.Count(notify.LevelSuccess); got != 1 {
		t.Errorf("success notifications = %d, want 1", got)
	}
	if last, _ := rec.Last(); last.Message != "Hub created successfully" || last.Domain != "hubs" {
		t.Errorf("notification = %+v", last)
	}
}

func TestMutation_FailureLeavesCacheUntouched(t *testing.T) {
	rec := notify.NewRecorder()
	c := newTestClient(t, WithNotifier(rec), WithPolicy(Policy{StaleTime: time.Hour}))
	store := &hubStore{hubs: []string{"Lahore Central"}}

	listKey := MustKey("hubs", "list")
	if _, err := Get(context.Background(), c, Spec[[]string]{Key: listKey, Fetch: store.list}); err != nil {
		t.Fatal(err)
	}
	before, _ := c.Snapshot(listKey)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &serverError{msg: "Hub name already exists"}, "Hub name already exists"},
		{"no message", errors.New("connection reset"), "Failed to create hub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Reset()
			store.fail = tt.err

			_, err := createHub(store).Do(context.Background(), c, hubInput{Name: "Quetta", City: "Quetta"})
			if !errors.Is(err, tt.err) {
				t.Fatalf("Do() error = %v, want %v", err, tt.err)
			}

			after, _ := c.Snapshot(listKey)
			if !reflect.DeepEqual(before.Data, after.Data) || after.Stale != before.Stale || !after.UpdatedAt.Equal(before.UpdatedAt) {
				t.Errorf("cache changed after failure: before %+v after %+v", before, after)
			}
			all := rec.All()
			if len(all) != 1 || all[0].Level != notify.LevelError || all[0].Message != tt.want {
				t.Errorf("notifications = %+v, want one error %q", all, tt.want)
			}
		})
	}
}

func TestMutation_ValidationBlocksCall(t *testing.T) {
	rec := notify.NewRecorder()
	c := newTestClient(t, WithNotifier(rec))
	store := &hubStore{}

	_, err := createHub(store).Do(context.Background(), c, hubInput{Name: "ab"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Do() error = %v, want ErrValidation", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if msg, ok := verr.Field("city"); !ok || msg != "city is required" {
		t.Errorf("city message = %q, %v", msg, ok)
	}
	if msg, ok := verr.Field("name"); !ok || msg != "name must be at least 3 characters" {
		t.Errorf("name message = %q, %v", msg, ok)
	}
	if store.calls != 0 {
		t.Error("API was called with invalid input")
	}
	if n := len(rec.All()); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
}

func TestMutation_KeysDeduplicated(t *testing.T) {
	m := Mutation[string, string]{
		Invalidates: []Key{MustKey("riders", "list"), MustKey("riders", "stats")},
		InvalidatesFor: func(id, _ string) []Key {
			return []Key{MustKey("riders", "detail", id), MustKey("riders", "list"), {}}
		},
	}
	got := m.Keys("r-1", "")
	want := []string{`["riders","list"]`, `["riders","stats"]`, `["riders","detail","r-1"]`}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v", got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("Keys()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMutation_NilCall(t *testing.T) {
	c := newTestClient(t)
	if _, err := (Mutation[int, int]{}).Do(context.Background(), c, 1); !errors.Is(err, ErrNilCall) {
		t.Errorf("Do() error = %v, want ErrNilCall", err)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(&serverError{msg: "  "}, "fallback"); got != "fallback" {
		t.Errorf("blank server message: got %q", got)
	}
	wrapped := errors.Join(errors.New("ctx"), &serverError{msg: "Rider not found"})
	if got := UserMessage(wrapped, "fallback"); got != "Rider not found" {
		t.Errorf("wrapped server message: got %q", got)
	}
	if got := UserMessage(nil, "fallback"); got != "fallback" {
		t.Errorf("nil error: got %q", got)
	}
}
