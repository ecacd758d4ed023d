package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/fleetsync/observe"
)

// Level is the severity of a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is one toast.
type Notification struct {
	Level     Level
	Message   string
	Domain    string
	Operation string
	At        time.Time
}

// Success builds a success notification.
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg, At: time.Now()}
}

// Failure builds an error notification.
func Failure(msg string) Notification {
	return Notification{Level: LevelError, Message: msg, At: time.Now()}
}

// Notifier delivers notifications.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Blocking: Notify must return promptly and must not panic.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Nop returns a Notifier that discards everything.
func Nop() Notifier {
	return NotifierFunc(func(context.Context, Notification) {})
}

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	list := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			list = append(list, n)
		}
	}
	return NotifierFunc(func(ctx context.Context, n Notification) {
		for _, target := range list {
			target.Notify(ctx, n)
		}
	})
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger observe.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger observe.Logger) *LogNotifier {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs errors at warn and everything else at info.
func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	fields := []observe.Field{
		observe.F("notification.level", n.Level.String()),
		observe.F("notification.domain", n.Domain),
		observe.F("notification.operation", n.Operation),
	}
	if n.Level == LevelError {
		l.logger.Warn(ctx, n.Message, fields...)
		return
	}
	l.logger.Info(ctx, n.Message, fields...)
}

// Recorder keeps every notification it receives. Useful in tests and for
// rendering a notification history.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many notifications of level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Level == level {
			n++
		}
	}
	return n
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

var (
	_ Notifier = NotifierFunc(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
)
