package engine

import (
	"testing"
	"time"
)

func TestDebouncer_FiresOnceAfterLastTrigger(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	if d.timerC() != nil || d.pending() {
		t.Fatal("idle debouncer has a timer")
	}

	start := time.Now()
	for i := 0; i < 5; i++ {
		d.trigger()
		time.Sleep(10 * time.Millisecond)
	}
	<-d.timerC()
	d.fired()

	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Fatalf("fired after %v, before the last window ended", elapsed)
	}
	if d.pending() || d.timerC() != nil {
		t.Fatal("slot not cleared after fired")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	d.trigger()
	d.stop()
	if d.pending() {
		t.Fatal("pending after stop")
	}
	select {
	case <-d.timerC(): // nil channel: blocks
		t.Fatal("stopped debouncer fired")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestScheduler_PostsAndCoalesces(t *testing.T) {
	s := newScheduler()
	ch := make(chan struct{}, 1)

	s.after(5*time.Millisecond, ch)
	s.after(5*time.Millisecond, ch)
	time.Sleep(50 * time.Millisecond)

	if s.len() != 0 {
		t.Fatalf("pending after firing: %d", s.len())
	}
	select {
	case <-ch:
	default:
		t.Fatal("no wake-up")
	}
	select {
	case <-ch:
		t.Fatal("second wake-up not coalesced")
	default:
	}
}

func TestScheduler_Stop(t *testing.T) {
	s := newScheduler()
	ch := make(chan struct{}, 1)

	s.after(20*time.Millisecond, ch)
	s.stop()
	s.after(time.Millisecond, ch)

	if s.len() != 0 {
		t.Fatalf("pending after stop: %d", s.len())
	}
	select {
	case <-ch:
		t.Fatal("stopped scheduler posted")
	case <-time.After(50 * time.Millisecond):
	}
}
