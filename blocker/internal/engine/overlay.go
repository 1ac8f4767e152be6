package engine

import (
	"log/slog"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// overlayController owns the page-level warning. It is either absent or
// shown for one channel; while absent it may be waiting for the body to
// exist before injecting.
type overlayController struct {
	doc    dom.Document
	bl     Matcher
	logger *slog.Logger

	shown   channel.ID
	pending channel.ID

	// deferred is set for hosts that wait for the body on their own frames.
	deferred bool
	// requestFrame schedules onFrame after one frame interval. Only used
	// for hosts without frames.
	requestFrame func()
}

// check shows the overlay when url is a blocked channel page and removes
// it otherwise.
func (o *overlayController) check(url string) {
	id, ok := channel.FromURL(url)
	if ok && o.bl.Contains(id) {
		o.show(id)
		return
	}
	o.reset()
}

func (o *overlayController) show(id channel.ID) {
	if o.shown != "" {
		return
	}
	if o.doc.HasOverlay(dom.OverlayID) {
		o.shown = id
		return
	}
	if !o.deferred && !o.doc.BodyReady() {
		o.pending = id
		o.requestFrame()
		return
	}
	o.pending = ""
	if err := o.doc.ShowOverlay(dom.NewOverlay(string(id))); err != nil {
		o.logger.Warn("engine: show overlay", "channel", id, "error", err)
		return
	}
	o.shown = id
	o.logger.Info("engine: overlay shown", "channel", id)
}

// onFrame retries a deferred injection.
func (o *overlayController) onFrame() {
	if o.pending == "" {
		return
	}
	o.show(o.pending)
}

// reset removes the overlay, if any, and cancels a deferred injection.
func (o *overlayController) reset() {
	o.pending = ""
	if o.doc.HasOverlay(dom.OverlayID) {
		if err := o.doc.RemoveOverlay(dom.OverlayID); err != nil {
			o.logger.Warn("engine: remove overlay", "error", err)
			return
		}
	}
	o.shown = ""
}

// proceed is the user override: the overlay goes away for this page view.
func (o *overlayController) proceed() {
	if o.shown == "" {
		return
	}
	o.logger.Info("engine: overlay dismissed", "channel", o.shown)
	o.reset()
}

// forget drops state without touching the document, for a document that
// was replaced wholesale.
func (o *overlayController) forget() {
	o.shown = ""
	o.pending = ""
}

func (o *overlayController) state() (channel.ID, bool) {
	return o.shown, o.shown != ""
}
