// Package cdpdom implements the engine's document surface over a live
// Chrome tab. The DOM tree is mirrored locally from CDP DOM events; history
// interception and the overlay live in an injected script that reports back
// through a Runtime binding.
package cdpdom

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// Page is a dom.Document backed by a rod page.
type Page struct {
	page   *rod.Page
	logger *slog.Logger
	mirror *mirror

	events chan dom.Event
	expand chan proto.DOMNodeID
	resync chan bool // true: a new document replaced the old one

	ctx          context.Context
	cancel       context.CancelFunc
	removeScript func() error
	done         chan struct{}
	closeOnce    sync.Once
	closeErr     error
}

// Attach installs the hooks on rp, builds the node mirror and starts
// listening. The returned Page stops when ctx is cancelled, the page goes
// away, or Close is called.
func Attach(ctx context.Context, rp *rod.Page, logger *slog.Logger) (*Page, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Page{
		page:   rp.Context(ctx),
		logger: logger,
		mirror: newMirror(),
		events: make(chan dom.Event, 256),
		expand: make(chan proto.DOMNodeID, 1024),
		resync: make(chan bool, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if err := (proto.DOMEnable{}).Call(p.page); err != nil {
		cancel()
		return nil, fmt.Errorf("cdpdom: DOM.enable: %w", err)
	}
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(p.page); err != nil {
		logger.Warn("cdpdom: addBinding failed (may already exist)", "error", err)
	}
	// Registered on rp so removal still works after ctx is done.
	remove, err := rp.EvalOnNewDocument("(" + hooksJS + ")()")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cdpdom: install hooks: %w", err)
	}
	p.removeScript = remove

	wait := p.listen()

	if err := p.rebuild(); err != nil {
		abortAttach(cancel, remove)
		return nil, err
	}
	if _, err := p.page.Eval(hooksJS); err != nil {
		logger.Warn("cdpdom: inject hooks into current document", "error", err)
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		p.work()
	}()
	go func() {
		wait()
		p.cancel()
		<-workerDone
		close(p.events)
		close(p.done)
	}()

	logger.Info("cdpdom: attached", "nodes", p.mirror.len())
	return p, nil
}

// abortAttach undoes a partial Attach so the tab is left without hooks.
func abortAttach(cancel context.CancelFunc, remove func() error) {
	cancel()
	if remove != nil {
		_ = remove()
	}
}

// Close stops listening and removes the new-document hook.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done
		if err := p.removeScript(); err != nil {
			p.closeErr = fmt.Errorf("cdpdom: remove hooks: %w", err)
		}
	})
	return p.closeErr
}

// Done is closed once the page stops delivering events.
func (p *Page) Done() <-chan struct{} { return p.done }

// listen subscribes to DOM and binding events. Handlers only touch the
// mirror and post to channels.
func (p *Page) listen() func() {
	return p.page.EachEvent(
		func(e *proto.DOMChildNodeInserted) {
			p.queue(p.mirror.insert(e.ParentNodeID, e.PreviousNodeID, e.Node))
			p.mutated()
		},
		func(e *proto.DOMChildNodeRemoved) {
			p.mirror.remove(e.NodeID)
			p.mutated()
		},
		func(e *proto.DOMSetChildNodes) {
			p.queue(p.mirror.setChildren(e.ParentID, e.Nodes))
			p.mutated()
		},
		func(e *proto.DOMAttributeModified) {
			p.mirror.setAttr(e.NodeID, e.Name, e.Value)
		},
		func(e *proto.DOMAttributeRemoved) {
			p.mirror.removeAttr(e.NodeID, e.Name)
		},
		func(e *proto.DOMDocumentUpdated) {
			p.requestResync(true)
		},
		func(e *proto.RuntimeBindingCalled) {
			if e.Name != BindingName {
				return
			}
			ev, ok := parseBinding(e.Payload)
			if !ok {
				p.logger.Warn("cdpdom: bad binding payload", "payload", e.Payload)
				return
			}
			p.send(ev)
		},
	)
}

// work performs the CDP calls the listener must not make itself.
func (p *Page) work() {
	depth := -1
	for {
		select {
		case <-p.ctx.Done():
			return

		case id := <-p.expand:
			err := proto.DOMRequestChildNodes{NodeID: id, Depth: &depth}.Call(p.page)
			if err != nil {
				p.logger.Debug("cdpdom: request child nodes", "node", id, "error", err)
			}

		case newDoc := <-p.resync:
			if err := p.rebuild(); err != nil {
				p.logger.Warn("cdpdom: rebuild mirror", "error", err)
				continue
			}
			if newDoc {
				if _, err := p.page.Eval(hooksJS); err != nil {
					p.logger.Debug("cdpdom: reinject hooks", "error", err)
				}
				p.logger.Debug("cdpdom: document replaced", "nodes", p.mirror.len())
				p.send(dom.Event{Kind: dom.EventDocument})
			} else {
				p.mutated()
			}
		}
	}
}

// rebuild reloads the whole tree. DOM.getDocument with depth -1 makes every
// node trackable; without it mutations on deep nodes are not reported.
func (p *Page) rebuild() error {
	depth := -1
	doc, err := proto.DOMGetDocument{Depth: &depth, Pierce: true}.Call(p.page)
	if err != nil {
		return fmt.Errorf("cdpdom: DOM.getDocument: %w", err)
	}
	p.queue(p.mirror.build(doc.Root))
	return nil
}

func (p *Page) queue(ids []proto.DOMNodeID) {
	for _, id := range ids {
		select {
		case p.expand <- id:
		default:
			p.requestResync(false)
			return
		}
	}
}

func (p *Page) requestResync(newDoc bool) {
	select {
	case p.resync <- newDoc:
	default:
		if newDoc {
			// Upgrade a pending plain resync.
			select {
			case <-p.resync:
			default:
			}
			select {
			case p.resync <- true:
			default:
			}
		}
	}
}

func (p *Page) mutated() {
	select {
	case p.events <- dom.Event{Kind: dom.EventMutation}:
	default:
	}
}

func (p *Page) send(ev dom.Event) {
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// Events implements dom.Document.
func (p *Page) Events() <-chan dom.Event { return p.events }

// Links implements dom.Document.
func (p *Page) Links() ([]dom.Element, error) {
	ids := p.mirror.links()
	out := make([]dom.Element, len(ids))
	for i, id := range ids {
		out[i] = &element{p: p, id: id}
	}
	return out, nil
}

// Location implements dom.Document.
func (p *Page) Location() (string, error) {
	res, err := p.page.Eval(`() => location.href`)
	if err != nil {
		return "", fmt.Errorf("cdpdom: location: %w", err)
	}
	return res.Value.Str(), nil
}

// BodyReady implements dom.Document.
func (p *Page) BodyReady() bool { return p.mirror.hasBody() }

// DefersToFrame implements dom.FrameDeferrer: the injected hooks wait for
// the body on animation frames.
func (p *Page) DefersToFrame() bool { return true }

// HasOverlay implements dom.Document. A pending injection counts as shown.
func (p *Page) HasOverlay(id string) bool {
	res, err := p.page.Eval(hasOverlayJS, id)
	if err != nil {
		p.logger.Debug("cdpdom: has overlay", "error", err)
		return false
	}
	return res.Value.Bool()
}

// ShowOverlay implements dom.Document. Before the body exists the hooks
// keep retrying on animation frames and ShowOverlay returns nil.
func (p *Page) ShowOverlay(ov dom.Overlay) error {
	res, err := p.page.Eval(showOverlayJS, newOverlayPayload(ov))
	if err != nil {
		return fmt.Errorf("cdpdom: show overlay: %w", err)
	}
	switch state := res.Value.Str(); state {
	case overlayShown:
	case overlayPending:
		p.logger.Debug("cdpdom: overlay waiting for body", "id", ov.ID)
	default:
		return fmt.Errorf("cdpdom: show overlay: unexpected state %q", state)
	}
	return nil
}

// RemoveOverlay implements dom.Document. It also cancels a pending
// injection.
func (p *Page) RemoveOverlay(id string) error {
	if _, err := p.page.Eval(removeOverlayJS, id); err != nil {
		return fmt.Errorf("cdpdom: remove overlay: %w", err)
	}
	return nil
}

// Back implements dom.Document.
func (p *Page) Back() error {
	if err := p.page.NavigateBack(); err != nil {
		return fmt.Errorf("cdpdom: back: %w", err)
	}
	return nil
}
