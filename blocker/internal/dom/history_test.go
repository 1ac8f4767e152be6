package dom

import "testing"

type recordingHistory struct {
	calls []string
	url   string
}

func (r *recordingHistory) PushState(url string) {
	r.calls = append(r.calls, "push")
	r.url = url
}

func (r *recordingHistory) ReplaceState(url string) {
	r.calls = append(r.calls, "replace")
	r.url = url
}

func TestInterceptHistory_DelegatesBeforeNotify(t *testing.T) {
	base := &recordingHistory{}
	var seen []string
	h := InterceptHistory(base, func(k NavKind) {
		// The original call must already have happened.
		seen = append(seen, base.url)
		if k == NavPush && base.calls[len(base.calls)-1] != "push" {
			t.Errorf("notify before delegate: calls=%v", base.calls)
		}
	})

	h.PushState("/a")
	h.ReplaceState("/b")

	if len(base.calls) != 2 || base.calls[0] != "push" || base.calls[1] != "replace" {
		t.Fatalf("calls: got %v", base.calls)
	}
	if len(seen) != 2 || seen[0] != "/a" || seen[1] != "/b" {
		t.Fatalf("notified urls: got %v, want [/a /b]", seen)
	}
}

func TestEventKindString(t *testing.T) {
	kinds := map[EventKind]string{
		EventDocument: "document",
		EventMutation: "mutation",
		EventNavigate: "navigate",
		EventProceed:  "proceed",
		EventBack:     "back",
		EventKind(99): "unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("EventKind(%d).String(): got %q, want %q", k, got, want)
		}
	}
}
