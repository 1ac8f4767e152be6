// Package htmldom implements the engine's document surface over an
// in-memory tree parsed with golang.org/x/net/html. It backs snapshot
// filtering and the engine tests.
package htmldom

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// eventBuffer bounds queued host events. Mutation events are dropped when
// the queue is full (one pending mutation already triggers a scan); other
// events block until the engine drains the queue.
const eventBuffer = 256

// Document is a parsed page plus a simulated session history.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	entries []string
	pos     int

	events  chan dom.Event
	history dom.History
}

// Parse reads an HTML document located at location.
func Parse(r io.Reader, location string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	return New(root, location), nil
}

// New wraps an existing tree.
func New(root *html.Node, location string) *Document {
	d := &Document{
		root:    root,
		entries: []string{location},
		events:  make(chan dom.Event, eventBuffer),
	}
	d.history = dom.InterceptHistory(sessionHistory{d}, func(dom.NavKind) {
		d.emit(dom.Event{Kind: dom.EventNavigate, URL: d.currentLocation()})
	})
	return d
}

// History returns the page's programmatic navigation entry points. Calls
// change the location and then emit a navigate event.
func (d *Document) History() dom.History { return d.history }

// Events implements dom.Document.
func (d *Document) Events() <-chan dom.Event { return d.events }

// Location implements dom.Document.
func (d *Document) Location() (string, error) { return d.currentLocation(), nil }

func (d *Document) currentLocation() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[d.pos]
}

// Back implements dom.Document. It moves one entry back in the session
// history and fires the back/forward signal. At the first entry it is a
// no-op.
func (d *Document) Back() error {
	d.mu.Lock()
	if d.pos == 0 {
		d.mu.Unlock()
		return nil
	}
	d.pos--
	loc := d.entries[d.pos]
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventNavigate, URL: loc})
	return nil
}

// Forward moves one entry forward and fires the back/forward signal.
func (d *Document) Forward() {
	d.mu.Lock()
	if d.pos >= len(d.entries)-1 {
		d.mu.Unlock()
		return
	}
	d.pos++
	loc := d.entries[d.pos]
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventNavigate, URL: loc})
}

// Reload replaces the whole document, as a full page load would, and
// emits a document event.
func (d *Document) Reload(r io.Reader, location string) error {
	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("htmldom: parse: %w", err)
	}
	d.mu.Lock()
	d.root = root
	d.entries = []string{location}
	d.pos = 0
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventDocument, URL: location})
	return nil
}

// Mutate runs fn against the tree and reports one mutation batch.
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	fn(d.root)
	d.mu.Unlock()
	d.emit(dom.Event{Kind: dom.EventMutation})
}

// AppendHTML parses fragment in the context of the element with the given
// id and appends the resulting nodes to it.
func (d *Document) AppendHTML(parentID, fragment string) error {
	d.mu.Lock()
	parent := findByID(d.root, parentID)
	if parent == nil {
		d.mu.Unlock()
		return fmt.Errorf("htmldom: no element with id %q", parentID)
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("htmldom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventMutation})
	return nil
}

// Click activates the overlay button carrying action. It reports false when
// no such button is in the document.
func (d *Document) Click(action string) bool {
	d.mu.Lock()
	btn := findFirst(d.root, func(n *html.Node) bool {
		v, ok := attr(n, dom.ActionAttr)
		return ok && v == action
	})
	d.mu.Unlock()
	if btn == nil {
		return false
	}

	switch action {
	case dom.ActionBack:
		d.emit(dom.Event{Kind: dom.EventBack})
	case dom.ActionProceed:
		d.emit(dom.Event{Kind: dom.EventProceed})
	default:
		return false
	}
	return true
}

// Links implements dom.Document.
func (d *Document) Links() ([]dom.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var links []dom.Element
	walk(d.root, func(n *html.Node) {
		if n.DataAtom != atom.A {
			return
		}
		if _, ok := attr(n, "href"); ok {
			links = append(links, &element{doc: d, n: n})
		}
	})
	return links, nil
}

// BodyReady implements dom.Document.
func (d *Document) BodyReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findBody(d.root) != nil
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := findByID(d.root, id); n != nil {
		return &element{doc: d, n: n}
	}
	return nil
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) emit(ev dom.Event) {
	if ev.Kind == dom.EventMutation {
		select {
		case d.events <- ev:
		default:
		}
		return
	}
	d.events <- ev
}

// sessionHistory is the un-intercepted history of a Document.
type sessionHistory struct{ d *Document }

func (h sessionHistory) PushState(target string) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries[:d.pos+1], resolve(d.entries[d.pos], target))
	d.pos++
}

func (h sessionHistory) ReplaceState(target string) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[d.pos] = resolve(d.entries[d.pos], target)
}

// resolve resolves target against base the way a browser resolves a
// history URL argument.
func resolve(base, target string) string {
	b, err := url.Parse(base)
	if err != nil {
		return target
	}
	t, err := url.Parse(target)
	if err != nil {
		return target
	}
	return b.ResolveReference(t).String()
}
