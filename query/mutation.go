package query

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jonwraymond/fleetsync/notify"
	"github.com/jonwraymond/fleetsync/observe"
)

// DefaultFailureMessage is shown when neither the server nor the mutation
// provides a message.
const DefaultFailureMessage = "Something went wrong"

// Mutation describes a write against the API and the cache keys it affects.
//
// Contract:
//   - Ordering: invalidation happens only after Call returned successfully.
//   - Failure: no key is invalidated and exactly one error notification is sent.
//   - Validation: invalid input never reaches Call and sends no notification.
type Mutation[In, Out any] struct {
	Domain string
	Name   string

	// Call performs the API request.
	Call func(ctx context.Context, in In) (Out, error)

	// Invalidates lists key prefixes marked stale after every success.
	Invalidates []Key

	// InvalidatesFor adds prefixes that depend on the input or response,
	// such as the detail key of the updated entity.
	InvalidatesFor func(in In, out Out) []Key

	// Success is the notification sent after a success. Empty sends none.
	Success string

	// SuccessFunc overrides Success when set.
	SuccessFunc func(in In, out Out) string

	// Failure is used when the server error carries no message.
	Failure string

	// Validate checks In against its `validate` struct tags first.
	Validate bool
}

// Do runs the mutation on c.
func (m Mutation[In, Out]) Do(ctx context.Context, c *Client, in In) (Out, error) {
	var out Out
	if m.Call == nil {
		return out, ErrNilCall
	}
	if m.Validate {
		if err := ValidateStruct(ctx, c.validate, in); err != nil {
			return out, err
		}
	}

	meta := observe.OpMeta{Domain: m.Domain, Name: m.Name, Kind: observe.KindMutation}
	err := c.mw.Run(ctx, meta, func(ctx context.Context) error {
		var cerr error
		out, cerr = m.Call(ctx, in)
		return cerr
	})
	if err != nil {
		c.notifier.Notify(ctx, notify.Notification{
			Level:     notify.LevelError,
			Message:   UserMessage(err, m.failure()),
			Domain:    m.Domain,
			Operation: m.Name,
		})
		return out, err
	}

	c.Invalidate(ctx, m.Keys(in, out)...)

	if msg := m.successMessage(in, out); msg != "" {
		c.notifier.Notify(ctx, notify.Notification{
			Level:     notify.LevelSuccess,
			Message:   msg,
			Domain:    m.Domain,
			Operation: m.Name,
		})
	}
	return out, nil
}

// Keys returns the de-duplicated invalidation prefixes for one success,
// static prefixes first.
func (m Mutation[In, Out]) Keys(in In, out Out) []Key {
	all := append([]Key(nil), m.Invalidates...)
	if m.InvalidatesFor != nil {
		all = append(all, m.InvalidatesFor(in, out)...)
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	keys := make([]Key, 0, len(all))
	for _, k := range all {
		if k.IsZero() || !seen.Add(k.String()) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (m Mutation[In, Out]) failure() string {
	if m.Failure != "" {
		return m.Failure
	}
	return DefaultFailureMessage
}

func (m Mutation[In, Out]) successMessage(in In, out Out) string {
	if m.SuccessFunc != nil {
		return m.SuccessFunc(in, out)
	}
	return m.Success
}
