package engine

// cursor is the last observed full URL. Navigation events that leave it
// unchanged are ignored.
type cursor struct {
	url string
}

// advance moves the cursor to url and reports whether it changed.
func (c *cursor) advance(url string) bool {
	if url == c.url {
		return false
	}
	c.url = url
	return true
}

// handleNavigate runs for both intercepted history calls and back/forward.
// State transitions complete before any rescan is scheduled.
func (e *Engine) handleNavigate() {
	loc, err := e.doc.Location()
	if err != nil {
		e.logger.Warn("engine: read location", "error", err)
		return
	}
	if !e.cursor.advance(loc) {
		return
	}
	e.logger.Debug("engine: navigation", "url", loc)

	e.active = e.inScope(loc)
	e.overlay.reset()
	if !e.active {
		return
	}
	e.overlay.check(loc)

	for _, d := range e.cfg.RescanDelays {
		e.sched.after(d, e.rescanCh)
	}
}
