package htmldom

import (
	"errors"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// ErrNoBody is returned when an overlay is shown before the body exists.
var ErrNoBody = errors.New("htmldom: document has no body")

// HasOverlay implements dom.Document.
func (d *Document) HasOverlay(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findByID(d.root, id) != nil
}

// ShowOverlay appends the overlay subtree to the body. An existing element
// with the same id is left in place.
func (d *Document) ShowOverlay(ov dom.Overlay) error {
	d.mu.Lock()
	if findByID(d.root, ov.ID) != nil {
		d.mu.Unlock()
		return nil
	}
	body := findBody(d.root)
	if body == nil {
		d.mu.Unlock()
		return ErrNoBody
	}
	body.AppendChild(buildOverlay(ov))
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventMutation})
	return nil
}

// RemoveOverlay implements dom.Document.
func (d *Document) RemoveOverlay(id string) error {
	d.mu.Lock()
	n := findByID(d.root, id)
	if n == nil || n.Parent == nil {
		d.mu.Unlock()
		return nil
	}
	n.Parent.RemoveChild(n)
	d.mu.Unlock()

	d.emit(dom.Event{Kind: dom.EventMutation})
	return nil
}

func buildOverlay(ov dom.Overlay) *html.Node {
	root := newElem(atom.Div, "root", "")
	root.Attr = append(root.Attr, html.Attribute{Key: "id", Val: ov.ID})

	root.AppendChild(newElem(atom.Div, "icon", ov.Icon))
	root.AppendChild(newElem(atom.H1, "headline", ov.Headline))
	root.AppendChild(newElem(atom.P, "message", ov.Message))
	root.AppendChild(newElem(atom.P, "aside", ov.Aside))

	row := newElem(atom.Div, "buttons", "")
	back := newElem(atom.Button, "back", ov.BackLabel)
	back.Attr = append(back.Attr, html.Attribute{Key: dom.ActionAttr, Val: dom.ActionBack})
	proceed := newElem(atom.Button, "proceed", ov.ProceedLabel)
	proceed.Attr = append(proceed.Attr, html.Attribute{Key: dom.ActionAttr, Val: dom.ActionProceed})
	row.AppendChild(back)
	row.AppendChild(proceed)
	root.AppendChild(row)

	return root
}

func newElem(a atom.Atom, part, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     []html.Attribute{{Key: "style", Val: dom.OverlayStyles[part].Inline()}},
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}
