package cdpdom

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

func TestParseBinding(t *testing.T) {
	tests := []struct {
		payload string
		kind    dom.EventKind
		ok      bool
	}{
		{`{"kind":"navigate","url":"https://www.twitch.tv/x"}`, dom.EventNavigate, true},
		{`{"kind":"proceed"}`, dom.EventProceed, true},
		{`{"kind":"back"}`, dom.EventBack, true},
		{`{"kind":"other"}`, 0, false},
		{`not json`, 0, false},
	}
	for _, tt := range tests {
		ev, ok := parseBinding(tt.payload)
		if ok != tt.ok {
			t.Errorf("parseBinding(%s): ok got %v, want %v", tt.payload, ok, tt.ok)
			continue
		}
		if ok && ev.Kind != tt.kind {
			t.Errorf("parseBinding(%s): kind got %v, want %v", tt.payload, ev.Kind, tt.kind)
		}
	}
}

func TestOverlayPayload(t *testing.T) {
	p := newOverlayPayload(dom.NewOverlay("roshtein"))
	if p.ID != dom.OverlayID {
		t.Fatalf("id: got %q", p.ID)
	}
	if !strings.Contains(p.Message, "roshtein") {
		t.Fatalf("message does not name the channel: %q", p.Message)
	}
	for _, part := range []string{"root", "buttons", p.BackAction, p.ProceedAction} {
		if p.Styles[part] == "" {
			t.Errorf("style for %q missing", part)
		}
	}
}

func TestHooksScript(t *testing.T) {
	if !strings.HasPrefix(strings.TrimSpace(hooksJS), "() =>") {
		t.Fatal("hooks script must be a function expression")
	}
	for _, want := range []string{"window." + BindingName + "(", "pushState", "replaceState", "popstate"} {
		if !strings.Contains(hooksJS, want) {
			t.Errorf("hooks script lacks %q", want)
		}
	}
}

var _ dom.FrameDeferrer = (*Page)(nil)

func TestHooksScript_OverlayRetriesOnFrames(t *testing.T) {
	for _, want := range []string{
		"requestAnimationFrame(",
		"cancelAnimationFrame(",
		`"` + overlayShown + `"`,
		`"` + overlayPending + `"`,
	} {
		if !strings.Contains(hooksJS, want) {
			t.Errorf("hooks script lacks %q", want)
		}
	}
	if !(&Page{}).DefersToFrame() {
		t.Fatal("live pages must wait for the body on their own frames")
	}
}

func TestHooksScript_DefinesCalledMethods(t *testing.T) {
	tests := []struct {
		call   string
		method string
	}{
		{hasOverlayJS, "has(id)"},
		{showOverlayJS, "show(ov)"},
		{removeOverlayJS, "remove(id)"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.call, ".__gambleblockHooks."+tt.method) {
			t.Errorf("call %q does not invoke %s", tt.call, tt.method)
		}
		if !strings.Contains(hooksJS, "    "+tt.method+" {") {
			t.Errorf("hooks script does not define %s", tt.method)
		}
	}
}

func TestAbortAttach_RemovesHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	removed := false
	abortAttach(cancel, func() error {
		removed = true
		return errors.New("target closed")
	})
	if ctx.Err() == nil {
		t.Fatal("context not cancelled")
	}
	if !removed {
		t.Fatal("new-document hook left installed")
	}
}
