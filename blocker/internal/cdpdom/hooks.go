package cdpdom

import (
	_ "embed"
	"encoding/json"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// hooksJS is a function expression installing history interception and the
// overlay renderer as window.__gambleblockHooks.
//
//go:embed hooks.js
var hooksJS string

// BindingName is the Runtime binding the in-page hooks post to.
const BindingName = "__gambleblock"

// Calls into the installed hooks object.
const (
	hasOverlayJS    = `(id) => window.__gambleblockHooks.has(id)`
	showOverlayJS   = `(ov) => window.__gambleblockHooks.show(ov)`
	removeOverlayJS = `(id) => window.__gambleblockHooks.remove(id)`
)

// Results of __gambleblockHooks.show.
const (
	overlayShown   = "shown"
	overlayPending = "pending"
)

// bindingMessage is the JSON payload of one binding call.
type bindingMessage struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// parseBinding maps a binding payload to an engine event.
func parseBinding(payload string) (dom.Event, bool) {
	var msg bindingMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return dom.Event{}, false
	}
	ev := dom.Event{URL: msg.URL}
	switch msg.Kind {
	case "navigate":
		ev.Kind = dom.EventNavigate
	case dom.ActionProceed:
		ev.Kind = dom.EventProceed
	case dom.ActionBack:
		ev.Kind = dom.EventBack
	default:
		return dom.Event{}, false
	}
	return ev, true
}

// overlayPayload is the argument of __gambleblockHooks.show.
type overlayPayload struct {
	ID            string            `json:"id"`
	Icon          string            `json:"icon"`
	Headline      string            `json:"headline"`
	Message       string            `json:"message"`
	Aside         string            `json:"aside"`
	BackLabel     string            `json:"backLabel"`
	ProceedLabel  string            `json:"proceedLabel"`
	BackAction    string            `json:"backAction"`
	ProceedAction string            `json:"proceedAction"`
	ActionAttr    string            `json:"actionAttr"`
	Styles        map[string]string `json:"styles"`
}

func newOverlayPayload(ov dom.Overlay) overlayPayload {
	styles := make(map[string]string, len(dom.OverlayStyles))
	for part, s := range dom.OverlayStyles {
		styles[part] = s.Inline()
	}
	return overlayPayload{
		ID:            ov.ID,
		Icon:          ov.Icon,
		Headline:      ov.Headline,
		Message:       ov.Message,
		Aside:         ov.Aside,
		BackLabel:     ov.BackLabel,
		ProceedLabel:  ov.ProceedLabel,
		BackAction:    dom.ActionBack,
		ProceedAction: dom.ActionProceed,
		ActionAttr:    dom.ActionAttr,
		Styles:        styles,
	}
}
