package engine

import "time"

// debouncer is a single-slot delayed trigger: every trigger restarts the
// window, and the channel fires once after the last trigger in a burst.
// It is owned by the event loop goroutine.
type debouncer struct {
	window  time.Duration
	timer   *time.Timer
	timerCh <-chan time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

// trigger (re)starts the window.
func (d *debouncer) trigger() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.NewTimer(d.window)
	d.timerCh = d.timer.C
}

// timerC fires when the window expires. Nil while idle.
func (d *debouncer) timerC() <-chan time.Time {
	return d.timerCh
}

// fired clears the slot after timerC delivered.
func (d *debouncer) fired() {
	d.timer = nil
	d.timerCh = nil
}

func (d *debouncer) pending() bool { return d.timer != nil }

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.fired()
}
