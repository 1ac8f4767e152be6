// Package dom defines the host document surface the suppression engine
// reads and writes. Two hosts implement it: htmldom (a parsed snapshot) and
// cdpdom (a live Chrome tab).
package dom

// Key identifies an element without keeping it alive. Implementations use
// comparable values such as weak pointers or CDP node ids.
type Key any

// Element is one element node of the host document.
type Element interface {
	Key() Key
	// TagName returns the lowercase tag name.
	TagName() string
	Attr(name string) (string, bool)
	// Parent returns the parent element, or nil at the top of the tree.
	Parent() Element
	SetAttr(name, value string) error
	// SetImportantStyle sets an inline style property with !important
	// priority so page stylesheets cannot override it.
	SetImportantStyle(prop, value string) error
}

// Document is the page the engine runs against. All methods are called
// from the engine's event loop.
type Document interface {
	// Links returns every a[href] element in document order.
	Links() ([]Element, error)
	// Location returns the current full URL.
	Location() (string, error)
	// BodyReady reports whether document.body exists.
	BodyReady() bool

	HasOverlay(id string) bool
	ShowOverlay(ov Overlay) error
	RemoveOverlay(id string) error

	// Back performs browser back navigation.
	Back() error

	// Events delivers host signals to the engine.
	Events() <-chan Event
}

// FrameDeferrer is implemented by hosts that render frames. Their
// ShowOverlay, called before the body exists, keeps retrying on animation
// frames inside the page and reports success; HasOverlay is true while the
// injection is pending and RemoveOverlay cancels it.
type FrameDeferrer interface {
	DefersToFrame() bool
}

// EventKind classifies host signals.
type EventKind int

const (
	// EventDocument signals that a new document started (initial load or
	// full reload). All per-document engine state is discarded.
	EventDocument EventKind = iota
	// EventMutation is one batch of child-list changes under the root.
	EventMutation
	// EventNavigate is a history call or a back/forward signal.
	EventNavigate
	// EventProceed is the overlay's "proceed anyway" action.
	EventProceed
	// EventBack is the overlay's "go back" action.
	EventBack
)

func (k EventKind) String() string {
	switch k {
	case EventDocument:
		return "document"
	case EventMutation:
		return "mutation"
	case EventNavigate:
		return "navigate"
	case EventProceed:
		return "proceed"
	case EventBack:
		return "back"
	}
	return "unknown"
}

// Event is a host signal. URL is informational; handlers re-read
// Document.Location.
type Event struct {
	Kind EventKind
	URL  string
}
