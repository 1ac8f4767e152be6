package htmldom

import (
	"strings"
	"weak"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// element is a dom.Element over an html.Node. Reads and writes take the
// owning document's lock.
type element struct {
	doc *Document
	n   *html.Node
}

// Key returns a weak pointer to the node, so engine bookkeeping never keeps
// a detached node reachable.
func (e *element) Key() dom.Key { return weak.Make(e.n) }

func (e *element) TagName() string { return strings.ToLower(e.n.Data) }

func (e *element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.n, name)
}

func (e *element) Parent() dom.Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return &element{doc: e.doc, n: p}
}

func (e *element) SetAttr(name, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.n, name, value)
	return nil
}

func (e *element) SetImportantStyle(prop, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	style, _ := attr(e.n, "style")
	setAttr(e.n, "style", setDecl(style, prop, value+" !important"))
	return nil
}

// setDecl replaces (or appends) one declaration in an inline style string.
func setDecl(style, prop, value string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			continue
		}
		kept = append(kept, decl)
	}
	kept = append(kept, prop+": "+value)
	return strings.Join(kept, "; ")
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var visit func(*html.Node) bool
	visit = func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if visit(c) {
				return true
			}
		}
		return false
	}
	visit(root)
	return found
}

func findByID(root *html.Node, id string) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
}

func findBody(root *html.Node) *html.Node {
	return findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
}
