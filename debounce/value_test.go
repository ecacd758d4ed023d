package debounce

import (
	"sync"
	"testing"
	"time"
)

type settleLog struct {
	mu     sync.Mutex
	values []string
	times  []time.Time
}

func (l *settleLog) record(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, v)
	l.times = append(l.times, time.Now())
}

func (l *settleLog) snapshot() ([]string, []time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.values...), append([]time.Time(nil), l.times...)
}

func TestValue_BurstSettlesOnLastValueOnly(t *testing.T) {
	const delay = 100 * time.Millisecond
	log := &settleLog{}
	v := NewValue("", delay, OnSettle(log.record))
	defer v.Close()

	var lastSet time.Time
	for _, s := range []string{"l", "la", "lah", "laho", "lahor", "lahore"} {
		v.Set(s)
		lastSet = time.Now()
		time.Sleep(10 * time.Millisecond)
	}
	if got := v.Settled(); got != "" {
		t.Errorf("Settled() during burst = %q, want initial value", got)
	}

	time.Sleep(3 * delay)

	values, times := log.snapshot()
	if len(values) != 1 || values[0] != "lahore" {
		t.Fatalf("settled values = %v, want [lahore]", values)
	}
	if elapsed := times[0].Sub(lastSet); elapsed < delay {
		t.Errorf("settled %v after the last update, want at least %v", elapsed, delay)
	}
	if got := <-v.Changes(); got != "lahore" {
		t.Errorf("Changes() = %q, want lahore", got)
	}
}

func TestValue_ReturnToSettledCancels(t *testing.T) {
	log := &settleLog{}
	v := NewValue("all", 30*time.Millisecond, OnSettle(log.record))
	defer v.Close()

	v.Set("active")
	v.Set("all")
	time.Sleep(100 * time.Millisecond)

	if values, _ := log.snapshot(); len(values) != 0 {
		t.Errorf("settled values = %v, want none", values)
	}
	if v.Source() != "all" || v.Settled() != "all" {
		t.Errorf("source=%q settled=%q", v.Source(), v.Settled())
	}
}

func TestValue_CloseDropsPendingValue(t *testing.T) {
	log := &settleLog{}
	v := NewValue(0, 20*time.Millisecond, OnSettle(func(n int) { log.record("fired") }))

	v.Set(1)
	v.Close()
	v.Set(2)
	time.Sleep(80 * time.Millisecond)

	if values, _ := log.snapshot(); len(values) != 0 {
		t.Errorf("published after Close: %v", values)
	}
	if _, ok := <-v.Changes(); ok {
		t.Error("Changes() should be closed")
	}
	if v.Settled() != 0 {
		t.Errorf("Settled() = %d, want 0", v.Settled())
	}
}

func TestValue_Flush(t *testing.T) {
	v := NewValue("", time.Hour)
	defer v.Close()

	v.Set("karachi")
	v.Flush()

	if got := v.Settled(); got != "karachi" {
		t.Errorf("Settled() after Flush = %q, want karachi", got)
	}
}

func TestValue_SettledEventuallyEqualsSource(t *testing.T) {
	v := NewValue(0, 15*time.Millisecond)
	defer v.Close()

	for i := 1; i <= 20; i++ {
		v.Set(i)
		if i%5 == 0 {
			time.Sleep(30 * time.Millisecond)
		}
	}
	time.Sleep(60 * time.Millisecond)

	if v.Settled() != v.Source() || v.Settled() != 20 {
		t.Errorf("settled=%d source=%d, want 20", v.Settled(), v.Source())
	}
}

func TestValue_FiringForSupersededSetIsDropped(t *testing.T) {
	log := &settleLog{}
	v := NewValue("", time.Hour, OnSettle(log.record))
	defer v.Close()

	v.Set("laho")
	v.mu.Lock()
	stale := v.seq
	v.mu.Unlock()

	// A timer that already fired for "laho" runs after "lahore" arrived.
	v.Set("lahore")
	v.publish(stale)

	if got := v.Settled(); got != "" {
		t.Errorf("Settled() = %q, want the initial value until the window passes", got)
	}
	if values, _ := log.snapshot(); len(values) != 0 {
		t.Errorf("settled values = %v, want none", values)
	}

	v.Flush()
	if got := v.Settled(); got != "lahore" {
		t.Errorf("Settled() after Flush = %q, want lahore", got)
	}
}

func TestValue_SettleCallbacksInOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		settled []int
	)
	v := NewValue(0, 5*time.Millisecond, OnSettle(func(n int) {
		mu.Lock()
		settled = append(settled, n)
		mu.Unlock()
	}))
	defer v.Close()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		v.Set(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Flush()
		}()
		time.Sleep(time.Millisecond)
	}
	wg.Wait()
	v.Flush()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(settled); i++ {
		if settled[i] <= settled[i-1] {
			t.Fatalf("settle callbacks out of order: %v", settled)
		}
	}
	if got := v.Settled(); got != 50 {
		t.Errorf("Settled() = %d, want 50", got)
	}
}
