package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_RunsOnceAfterBurst(t *testing.T) {
	d := New(50 * time.Millisecond)
	var count atomic.Int32

	for i := 0; i < 10; i++ {
		d.Trigger(func() { count.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	if count.Load() != 0 {
		t.Error("function ran before the quiet window elapsed")
	}

	time.Sleep(150 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after the function ran")
	}
}

func TestDebouncer_RunsLatestFunction(t *testing.T) {
	d := New(30 * time.Millisecond)
	var got atomic.Int32

	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })
	time.Sleep(100 * time.Millisecond)

	if got.Load() != 2 {
		t.Errorf("ran function %d, want 2", got.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(30 * time.Millisecond)
	var count atomic.Int32

	d.Trigger(func() { count.Add(1) })
	if !d.Pending() {
		t.Error("Pending() = false after Trigger")
	}
	d.Cancel()
	time.Sleep(80 * time.Millisecond)

	if count.Load() != 0 {
		t.Error("cancelled function ran")
	}
}

func TestDebouncer_Immediate(t *testing.T) {
	d := New(30 * time.Millisecond)
	var pending, now atomic.Int32

	d.Trigger(func() { pending.Add(1) })
	d.Immediate(func() { now.Add(1) })
	time.Sleep(80 * time.Millisecond)

	if now.Load() != 1 || pending.Load() != 0 {
		t.Errorf("immediate=%d pending=%d, want 1 and 0", now.Load(), pending.Load())
	}
}

func TestDebouncer_CloseIgnoresTriggers(t *testing.T) {
	d := New(10 * time.Millisecond)
	var count atomic.Int32

	d.Trigger(func() { count.Add(1) })
	d.Close()
	d.Trigger(func() { count.Add(1) })
	time.Sleep(50 * time.Millisecond)

	if count.Load() != 0 {
		t.Errorf("calls after Close = %d, want 0", count.Load())
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	if got := New(0).Delay(); got != DefaultDelay {
		t.Errorf("Delay() = %v, want %v", got, DefaultDelay)
	}
}

func TestDebouncer_ConcurrentTriggers(t *testing.T) {
	d := New(20 * time.Millisecond)
	var count atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Trigger(func() { count.Add(1) })
		}()
	}
	wg.Wait()
	time.Sleep(80 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}
