package htmldom

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

const page = `<!DOCTYPE html><html><body>
<nav id="side"><a href="/trainwreckstv">tw</a><a>no href</a></nav>
<main id="grid"><article><a href="/someoneelse/videos">x</a></article></main>
</body></html>`

func mustParse(t *testing.T, src, loc string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(src), loc)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func nextEvent(t *testing.T, d *Document) dom.Event {
	t.Helper()
	select {
	case ev := <-d.Events():
		return ev
	default:
		t.Fatal("no event queued")
	}
	return dom.Event{}
}

func TestLinks_OnlyWithHref(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/directory")
	links, err := d.Links()
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("Links: got %d, want 2", len(links))
	}
	if href, _ := links[0].Attr("href"); href != "/trainwreckstv" {
		t.Errorf("links[0] href: got %q", href)
	}
	if href, _ := links[1].Attr("href"); href != "/someoneelse/videos" {
		t.Errorf("links[1] href: got %q", href)
	}
}

func TestElement_ParentChain(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	links, _ := d.Links()

	var tags []string
	for el := links[1].Parent(); el != nil; el = el.Parent() {
		tags = append(tags, el.TagName())
	}
	want := []string{"article", "main", "body", "html"}
	if strings.Join(tags, ",") != strings.Join(want, ",") {
		t.Fatalf("parent chain: got %v, want %v", tags, want)
	}
}

func TestElement_KeyIdentity(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	a, _ := d.Links()
	b, _ := d.Links()
	if a[0].Key() != b[0].Key() {
		t.Error("same node produced different keys")
	}
	if a[0].Key() == a[1].Key() {
		t.Error("different nodes produced equal keys")
	}
}

func TestSetImportantStyle(t *testing.T) {
	d := mustParse(t, `<div id="x" style="color: red; display:block">x</div>`, "https://www.twitch.tv/")
	el := d.ElementByID("x")
	if err := el.SetImportantStyle("display", "none"); err != nil {
		t.Fatal(err)
	}
	got, _ := el.Attr("style")
	if got != "color: red; display: none !important" {
		t.Fatalf("style: got %q", got)
	}
}

func TestSetDecl_Empty(t *testing.T) {
	if got := setDecl("", "display", "none !important"); got != "display: none !important" {
		t.Fatalf("setDecl: got %q", got)
	}
}

func TestHistory_PushReplaceBack(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/directory")
	h := d.History()

	h.PushState("/trainwreckstv")
	ev := nextEvent(t, d)
	if ev.Kind != dom.EventNavigate || ev.URL != "https://www.twitch.tv/trainwreckstv" {
		t.Fatalf("push event: got %+v", ev)
	}

	h.ReplaceState("/trainwreckstv/clips")
	ev = nextEvent(t, d)
	if ev.URL != "https://www.twitch.tv/trainwreckstv/clips" {
		t.Fatalf("replace event: got %+v", ev)
	}

	if err := d.Back(); err != nil {
		t.Fatal(err)
	}
	ev = nextEvent(t, d)
	if ev.Kind != dom.EventNavigate || ev.URL != "https://www.twitch.tv/directory" {
		t.Fatalf("back event: got %+v", ev)
	}
	if loc, _ := d.Location(); loc != "https://www.twitch.tv/directory" {
		t.Fatalf("Location after back: got %q", loc)
	}

	d.Forward()
	ev = nextEvent(t, d)
	if ev.URL != "https://www.twitch.tv/trainwreckstv/clips" {
		t.Fatalf("forward event: got %+v", ev)
	}
}

func TestBack_AtFirstEntry(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	if err := d.Back(); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-d.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestAppendHTML(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	if err := d.AppendHTML("grid", `<article><a href="/roshtein">r</a></article>`); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, d); ev.Kind != dom.EventMutation {
		t.Fatalf("event: got %v", ev.Kind)
	}
	links, _ := d.Links()
	if len(links) != 3 {
		t.Fatalf("Links after append: got %d, want 3", len(links))
	}
	if err := d.AppendHTML("missing", "<p></p>"); err == nil {
		t.Fatal("AppendHTML to missing id: expected error")
	}
}

func TestMutationEventsCoalesceWhenFull(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	for i := 0; i < eventBuffer+10; i++ {
		d.Mutate(func(*html.Node) {})
	}
	if got := len(d.Events()); got != eventBuffer {
		t.Fatalf("queued events: got %d, want %d", got, eventBuffer)
	}
}

func TestOverlay_ShowClickRemove(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/trainwreckstv")
	ov := dom.NewOverlay("trainwreckstv")

	if err := d.ShowOverlay(ov); err != nil {
		t.Fatal(err)
	}
	if err := d.ShowOverlay(ov); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	d.Render(&buf)
	if n := strings.Count(buf.String(), `id="`+dom.OverlayID+`"`); n != 1 {
		t.Fatalf("overlay instances: got %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "trainwreckstv has been flagged") {
		t.Error("overlay message does not name the channel")
	}

	for len(d.Events()) > 0 {
		<-d.Events()
	}
	if !d.Click(dom.ActionProceed) {
		t.Fatal("Click(proceed): button not found")
	}
	if ev := nextEvent(t, d); ev.Kind != dom.EventProceed {
		t.Fatalf("click event: got %v", ev.Kind)
	}

	if err := d.RemoveOverlay(ov.ID); err != nil {
		t.Fatal(err)
	}
	if d.HasOverlay(ov.ID) {
		t.Fatal("overlay still present after remove")
	}
	if d.Click(dom.ActionBack) {
		t.Fatal("Click(back) succeeded without overlay")
	}
}

func TestShowOverlay_NoBody(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/trainwreckstv")
	d.Mutate(func(root *html.Node) {
		body := findBody(root)
		body.Parent.RemoveChild(body)
	})
	if d.BodyReady() {
		t.Fatal("BodyReady: got true after removing body")
	}
	if err := d.ShowOverlay(dom.NewOverlay("trainwreckstv")); err != ErrNoBody {
		t.Fatalf("ShowOverlay: got %v, want ErrNoBody", err)
	}
}

func TestReload(t *testing.T) {
	d := mustParse(t, page, "https://www.twitch.tv/")
	if err := d.Reload(strings.NewReader(`<html><body></body></html>`), "https://www.twitch.tv/roshtein"); err != nil {
		t.Fatal(err)
	}
	ev := nextEvent(t, d)
	if ev.Kind != dom.EventDocument {
		t.Fatalf("event: got %v, want document", ev.Kind)
	}
	links, _ := d.Links()
	if len(links) != 0 {
		t.Fatalf("Links after reload: got %d", len(links))
	}
}
