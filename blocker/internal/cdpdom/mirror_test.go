package cdpdom

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func elem(id proto.DOMNodeID, tag string, attrs []string, children ...*proto.DOMNode) *proto.DOMNode {
	return &proto.DOMNode{
		NodeID:     id,
		NodeType:   nodeElement,
		NodeName:   tag,
		LocalName:  tag,
		Attributes: attrs,
		Children:   children,
	}
}

func text(id proto.DOMNodeID) *proto.DOMNode {
	return &proto.DOMNode{NodeID: id, NodeType: 3, NodeName: "#text", NodeValue: "x"}
}

// sample: document > html > (head, body > (main > (article#10 > a#11), a#12, span#13 > text))
func sample() *proto.DOMNode {
	return &proto.DOMNode{
		NodeID:   1,
		NodeType: 9,
		NodeName: "#document",
		Children: []*proto.DOMNode{
			elem(2, "HTML", nil,
				elem(3, "HEAD", nil),
				elem(4, "BODY", nil,
					elem(5, "MAIN", nil,
						elem(10, "ARTICLE", []string{"class", "card"},
							elem(11, "A", []string{"href", "/trainwreckstv"}),
						),
					),
					elem(12, "A", []string{"href", "/someoneelse", "class", "x"}),
					elem(13, "SPAN", nil, text(14)),
				),
			),
		},
	}
}

func ids(got []proto.DOMNodeID) []int {
	out := make([]int, len(got))
	for i, id := range got {
		out[i] = int(id)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMirror_Build(t *testing.T) {
	m := newMirror()
	if pending := m.build(sample()); len(pending) != 0 {
		t.Fatalf("pending: got %v, want none", pending)
	}
	if m.len() != 10 {
		t.Fatalf("len: got %d, want 10", m.len())
	}
	if got := ids(m.links()); !equalInts(got, []int{11, 12}) {
		t.Fatalf("links: got %v", got)
	}
	if !m.hasBody() {
		t.Fatal("hasBody: got false")
	}
	if tag := m.tag(10); tag != "article" {
		t.Fatalf("tag: got %q, want lowercase", tag)
	}
	if v, ok := m.attr(12, "class"); !ok || v != "x" {
		t.Fatalf("attr: got (%q, %v)", v, ok)
	}
}

func TestMirror_ParentElement(t *testing.T) {
	m := newMirror()
	m.build(sample())

	p, ok := m.parentElement(11)
	if !ok || p != 10 {
		t.Fatalf("parent of 11: got (%d, %v)", p, ok)
	}
	if _, ok := m.parentElement(2); ok {
		t.Fatal("html element has an element parent")
	}
	if _, ok := m.parentElement(99); ok {
		t.Fatal("unknown node has a parent")
	}
}

func TestMirror_InsertOrder(t *testing.T) {
	m := newMirror()
	m.build(sample())

	m.insert(5, 0, elem(20, "A", []string{"href", "/first"}))
	m.insert(5, 10, elem(21, "A", []string{"href", "/after-card"}))

	if got := ids(m.links()); !equalInts(got, []int{20, 11, 21, 12}) {
		t.Fatalf("links after insert: got %v", got)
	}
}

func TestMirror_InsertUnknownParent(t *testing.T) {
	m := newMirror()
	m.build(sample())
	before := m.len()
	m.insert(999, 0, elem(30, "A", []string{"href", "/x"}))
	if m.len() != before {
		t.Fatal("node under unknown parent was mirrored")
	}
}

func TestMirror_InsertReportsUnexpanded(t *testing.T) {
	m := newMirror()
	m.build(sample())

	count := 4
	n := elem(40, "DIV", nil)
	n.ChildNodeCount = &count
	pending := m.insert(5, 0, n)
	if !equalInts(ids(pending), []int{40}) {
		t.Fatalf("pending: got %v, want [40]", pending)
	}

	m.setChildren(40, []*proto.DOMNode{
		elem(41, "A", []string{"href", "/late"}),
	})
	if got := ids(m.links()); !equalInts(got, []int{41, 11, 12}) {
		t.Fatalf("links after setChildNodes: got %v", got)
	}
}

func TestMirror_RemoveSubtree(t *testing.T) {
	m := newMirror()
	m.build(sample())

	m.remove(5)
	if got := ids(m.links()); !equalInts(got, []int{12}) {
		t.Fatalf("links after remove: got %v", got)
	}
	for _, id := range []proto.DOMNodeID{5, 10, 11} {
		if m.tag(id) != "" {
			t.Errorf("node %d still mirrored", id)
		}
	}
	m.remove(5) // unknown: no-op
}

func TestMirror_Attributes(t *testing.T) {
	m := newMirror()
	m.build(sample())

	m.setAttr(11, "data-gambleblock", "hidden")
	if v, ok := m.attr(11, "data-gambleblock"); !ok || v != "hidden" {
		t.Fatalf("setAttr: got (%q, %v)", v, ok)
	}
	m.removeAttr(12, "href")
	if got := ids(m.links()); !equalInts(got, []int{11}) {
		t.Fatalf("links after href removal: got %v", got)
	}
	m.setAttr(13, "href", "/not-a-link")
	if got := ids(m.links()); !equalInts(got, []int{11}) {
		t.Fatalf("span with href counted as link: %v", got)
	}
}

func TestMirror_RebuildDropsOldNodes(t *testing.T) {
	m := newMirror()
	m.build(sample())
	m.build(&proto.DOMNode{NodeID: 100, NodeType: 9, Children: []*proto.DOMNode{
		elem(101, "HTML", nil),
	}})
	if m.hasBody() {
		t.Fatal("hasBody: got true for a document without body")
	}
	if m.tag(11) != "" {
		t.Fatal("node from previous document survived rebuild")
	}
	if m.build(nil) != nil || m.len() != 0 {
		t.Fatal("nil root should empty the mirror")
	}
}
