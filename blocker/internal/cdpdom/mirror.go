package cdpdom

import (
	"strings"
	"sync"

	"github.com/go-rod/rod/lib/proto"
)

// nodeElement is the CDP node type of elements.
const nodeElement = 1

type mirrorNode struct {
	typ      int
	tag      string
	parent   proto.DOMNodeID
	children []proto.DOMNodeID
	attrs    map[string]string
}

// mirror is a local copy of the main document tree, keyed by CDP node id.
// It is fed by DOM domain events on the listener goroutine and read by the
// engine loop. Shadow roots and frame documents are not mirrored.
type mirror struct {
	mu    sync.RWMutex
	root  proto.DOMNodeID
	nodes map[proto.DOMNodeID]*mirrorNode
}

func newMirror() *mirror {
	return &mirror{nodes: make(map[proto.DOMNodeID]*mirrorNode)}
}

// build replaces the mirror with the tree under root. It returns the ids of
// nodes whose children were not delivered.
func (m *mirror) build(root *proto.DOMNode) []proto.DOMNodeID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[proto.DOMNodeID]*mirrorNode)
	m.root = 0
	if root == nil {
		return nil
	}
	m.root = root.NodeID
	var pending []proto.DOMNodeID
	m.addLocked(0, root, &pending)
	return pending
}

func (m *mirror) addLocked(parent proto.DOMNodeID, n *proto.DOMNode, pending *[]proto.DOMNodeID) {
	mn := &mirrorNode{
		typ:    n.NodeType,
		tag:    strings.ToLower(n.LocalName),
		parent: parent,
	}
	if mn.tag == "" && n.NodeType == nodeElement {
		mn.tag = strings.ToLower(n.NodeName)
	}
	if len(n.Attributes) > 0 {
		mn.attrs = make(map[string]string, len(n.Attributes)/2)
		for i := 0; i+1 < len(n.Attributes); i += 2 {
			mn.attrs[n.Attributes[i]] = n.Attributes[i+1]
		}
	}
	m.nodes[n.NodeID] = mn

	for _, c := range n.Children {
		mn.children = append(mn.children, c.NodeID)
		m.addLocked(n.NodeID, c, pending)
	}
	if len(n.Children) == 0 && n.ChildNodeCount != nil && *n.ChildNodeCount > 0 {
		*pending = append(*pending, n.NodeID)
	}
}

// insert adds n under parent, after prev (0 for first child). Nodes under
// an unknown parent are ignored.
func (m *mirror) insert(parent, prev proto.DOMNodeID, n *proto.DOMNode) []proto.DOMNodeID {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.nodes[parent]
	if !ok || n == nil {
		return nil
	}
	if _, dup := m.nodes[n.NodeID]; dup {
		m.removeLocked(n.NodeID)
	}

	at := 0
	if prev != 0 {
		at = len(p.children)
		for i, id := range p.children {
			if id == prev {
				at = i + 1
				break
			}
		}
	}
	p.children = append(p.children, 0)
	copy(p.children[at+1:], p.children[at:])
	p.children[at] = n.NodeID

	var pending []proto.DOMNodeID
	m.addLocked(parent, n, &pending)
	return pending
}

// setChildren replaces the children of parent, as delivered by
// DOM.setChildNodes.
func (m *mirror) setChildren(parent proto.DOMNodeID, nodes []*proto.DOMNode) []proto.DOMNodeID {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.nodes[parent]
	if !ok {
		return nil
	}
	for _, id := range append([]proto.DOMNodeID(nil), p.children...) {
		m.removeLocked(id)
	}
	var pending []proto.DOMNodeID
	for _, n := range nodes {
		p.children = append(p.children, n.NodeID)
		m.addLocked(parent, n, &pending)
	}
	return pending
}

func (m *mirror) remove(id proto.DOMNodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *mirror) removeLocked(id proto.DOMNodeID) {
	n, ok := m.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		m.removeLocked(c)
	}
	if p, ok := m.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(m.nodes, id)
}

func (m *mirror) setAttr(id proto.DOMNodeID, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

func (m *mirror) removeAttr(id proto.DOMNodeID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[id]; ok {
		delete(n.attrs, name)
	}
}

func (m *mirror) tag(id proto.DOMNodeID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n, ok := m.nodes[id]; ok {
		return n.tag
	}
	return ""
}

func (m *mirror) attr(id proto.DOMNodeID, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return "", false
	}
	v, ok := n.attrs[name]
	return v, ok
}

// parentElement returns the parent of id when it is an element.
func (m *mirror) parentElement(id proto.DOMNodeID) (proto.DOMNodeID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return 0, false
	}
	p, ok := m.nodes[n.parent]
	if !ok || p.typ != nodeElement {
		return 0, false
	}
	return n.parent, true
}

// links returns every a element with an href attribute, in document order.
func (m *mirror) links() []proto.DOMNodeID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []proto.DOMNodeID
	var walk func(id proto.DOMNodeID)
	walk = func(id proto.DOMNodeID) {
		n, ok := m.nodes[id]
		if !ok {
			return
		}
		if n.typ == nodeElement && n.tag == "a" {
			if _, ok := n.attrs["href"]; ok {
				out = append(out, id)
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	return out
}

// hasBody reports whether html > body exists.
func (m *mirror) hasBody() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.nodes[m.root]
	if !ok {
		return false
	}
	for _, h := range doc.children {
		hn := m.nodes[h]
		if hn == nil || hn.tag != "html" {
			continue
		}
		for _, b := range hn.children {
			if bn := m.nodes[b]; bn != nil && bn.tag == "body" {
				return true
			}
		}
	}
	return false
}

func (m *mirror) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}
