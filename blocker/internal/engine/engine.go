// Package engine is the detection-and-suppression engine. It hides page
// content linking to blocked channels and shows a warning over blocked
// channel pages, reacting to DOM mutations and single-page navigation.
//
// An Engine is bound to one dom.Document. All document access and state
// changes happen on the goroutine running Run; timers and host listeners
// only post wake-ups to it.
package engine

import (
	"context"
	"log/slog"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// Engine holds the per-document state: navigation cursor, overlay state,
// debounce slot, link record and pending timers.
type Engine struct {
	cfg    Config
	doc    dom.Document
	logger *slog.Logger

	scanner  *scanner
	overlay  *overlayController
	cursor   cursor
	debounce *debouncer
	sched    *scheduler

	rescanCh chan struct{}
	frameCh  chan struct{}

	active bool
}

// New creates an Engine for doc. Call Run to start it.
func New(doc dom.Document, cfg Config) *Engine {
	cfg.defaults()

	e := &Engine{
		cfg:      cfg,
		doc:      doc,
		logger:   cfg.Logger,
		debounce: newDebouncer(cfg.Debounce),
		sched:    newScheduler(),
		rescanCh: make(chan struct{}, 1),
		frameCh:  make(chan struct{}, 1),
	}
	e.scanner = &scanner{
		doc:    doc,
		bl:     cfg.Blocklist,
		loc:    newLocator(cfg.Locator),
		record: newLinkRecord(),
		logger: cfg.Logger,
	}
	var deferred bool
	if fd, ok := doc.(dom.FrameDeferrer); ok {
		deferred = fd.DefersToFrame()
	}
	e.overlay = &overlayController{
		doc:      doc,
		bl:       cfg.Blocklist,
		logger:   cfg.Logger,
		deferred: deferred,
		requestFrame: func() {
			e.sched.after(cfg.FrameInterval, e.frameCh)
		},
	}
	return e
}

// Run processes host events until ctx is cancelled or the event channel
// closes. The current document is treated as freshly loaded.
func (e *Engine) Run(ctx context.Context) error {
	defer e.sched.stop()
	defer e.debounce.stop()

	e.startDocument()

	events := e.doc.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.handle(ev)

		case <-e.debounce.timerC():
			e.debounce.fired()
			e.scan("mutation")

		case <-e.rescanCh:
			e.scan("rescan")

		case <-e.frameCh:
			e.overlay.onFrame()
		}
	}
}

// Pass resets per-document state, checks the page and scans once, without
// scheduling follow-up work. Used for static snapshots.
func (e *Engine) Pass() (ScanResult, error) {
	e.resetDocument()
	if !e.active {
		return ScanResult{}, nil
	}
	e.overlay.check(e.cursor.url)
	return e.scanner.scan()
}

// Overlay reports the channel whose warning is currently shown.
func (e *Engine) Overlay() (channel.ID, bool) {
	return e.overlay.state()
}

func (e *Engine) handle(ev dom.Event) {
	switch ev.Kind {
	case dom.EventDocument:
		e.startDocument()
	case dom.EventMutation:
		if e.active {
			e.debounce.trigger()
		}
	case dom.EventNavigate:
		e.handleNavigate()
	case dom.EventProceed:
		e.overlay.proceed()
	case dom.EventBack:
		if err := e.doc.Back(); err != nil {
			e.logger.Warn("engine: go back", "error", err)
		}
	}
}

func (e *Engine) startDocument() {
	e.resetDocument()
	if !e.active {
		e.logger.Debug("engine: out of scope", "url", e.cursor.url)
		return
	}
	e.overlay.check(e.cursor.url)
	e.scan("initial")
	for _, d := range e.cfg.StartupScans {
		e.sched.after(d, e.rescanCh)
	}
}

func (e *Engine) resetDocument() {
	e.debounce.stop()
	e.scanner.record.reset()
	e.overlay.forget()

	loc, err := e.doc.Location()
	if err != nil {
		e.logger.Warn("engine: read location", "error", err)
	}
	e.cursor.url = loc
	e.active = err == nil && e.inScope(loc)
}

func (e *Engine) scan(reason string) {
	if !e.active {
		return
	}
	res, err := e.scanner.scan()
	if err != nil {
		e.logger.Warn("engine: scan", "reason", reason, "error", err)
		return
	}
	if res.Evaluated > 0 {
		e.logger.Debug("engine: scan",
			"reason", reason,
			"links", res.Links,
			"evaluated", res.Evaluated,
			"matched", res.Matched,
			"suppressed", res.Suppressed)
	}
}

func (e *Engine) inScope(url string) bool {
	return e.cfg.Scope == nil || e.cfg.Scope(url)
}
