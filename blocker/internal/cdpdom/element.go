package cdpdom

import (
	"fmt"

	"github.com/go-rod/rod/lib/proto"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// element is a mirrored node. Reads come from the mirror; writes go to the
// page and are reflected in the mirror immediately.
type element struct {
	p  *Page
	id proto.DOMNodeID
}

func (e *element) Key() dom.Key { return e.id }

func (e *element) TagName() string { return e.p.mirror.tag(e.id) }

func (e *element) Attr(name string) (string, bool) { return e.p.mirror.attr(e.id, name) }

func (e *element) Parent() dom.Element {
	pid, ok := e.p.mirror.parentElement(e.id)
	if !ok {
		return nil
	}
	return &element{p: e.p, id: pid}
}

func (e *element) SetAttr(name, value string) error {
	err := proto.DOMSetAttributeValue{NodeID: e.id, Name: name, Value: value}.Call(e.p.page)
	if err != nil {
		return fmt.Errorf("cdpdom: set attribute %s: %w", name, err)
	}
	e.p.mirror.setAttr(e.id, name, value)
	return nil
}

func (e *element) SetImportantStyle(prop, value string) error {
	obj, err := proto.DOMResolveNode{NodeID: e.id}.Call(e.p.page)
	if err != nil {
		return fmt.Errorf("cdpdom: resolve node: %w", err)
	}
	el, err := e.p.page.ElementFromObject(obj.Object)
	if err != nil {
		return fmt.Errorf("cdpdom: element from object: %w", err)
	}
	defer el.Release()

	_, err = el.Eval(`function (prop, value) { this.style.setProperty(prop, value, "important"); }`, prop, value)
	if err != nil {
		return fmt.Errorf("cdpdom: set style %s: %w", prop, err)
	}
	return nil
}
