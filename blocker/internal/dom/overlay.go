package dom

import (
	"fmt"
	"strings"
)

// OverlayID is the fixed element id of the warning overlay. At most one
// element with this id exists per document.
const OverlayID = "gambleblock-overlay"

// ActionAttr marks the overlay buttons. Hosts route clicks on elements with
// this attribute to EventBack / EventProceed.
const ActionAttr = "data-gambleblock-action"

// Overlay actions.
const (
	ActionBack    = "back"
	ActionProceed = "proceed"
)

// Overlay is the content of the full-viewport warning shown on a blocked
// channel page.
type Overlay struct {
	ID           string
	Channel      string
	Icon         string
	Headline     string
	Message      string
	Aside        string
	BackLabel    string
	ProceedLabel string
}

// NewOverlay returns the warning for channel.
func NewOverlay(channel string) Overlay {
	return Overlay{
		ID:       OverlayID,
		Channel:  channel,
		Icon:     "⚠️",
		Headline: "Gambling Content Warning",
		Message: fmt.Sprintf("%s has been flagged for promoting gambling on stream. "+
			"Viewing this content may expose you to gambling promotion.", channel),
		Aside:        "💡 Did you know? Investing 800 kr/month for 10 years at 7% avg return = ~138,000 kr.",
		BackLabel:    "← Go Back",
		ProceedLabel: "Proceed Anyway",
	}
}

// Decl is one CSS declaration.
type Decl struct {
	Prop  string
	Value string
}

// Style is an ordered declaration list.
type Style []Decl

// Inline renders the declarations as a style attribute value.
func (s Style) Inline() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Prop+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// OverlayStyles holds the inline styles of each overlay part, keyed by part
// name: root, icon, headline, message, aside, buttons, back, proceed.
var OverlayStyles = map[string]Style{
	"root": {
		{"position", "fixed"},
		{"inset", "0"},
		{"z-index", "999999"},
		{"background", "rgba(10, 10, 20, 0.97)"},
		{"display", "flex"},
		{"flex-direction", "column"},
		{"align-items", "center"},
		{"justify-content", "center"},
		{"font-family", "'Roobert', Inter, 'Helvetica Neue', Arial, sans-serif"},
		{"color", "#EFEFF1"},
		{"text-align", "center"},
		{"padding", "40px"},
		{"box-sizing", "border-box"},
	},
	"icon": {
		{"font-size", "64px"},
		{"margin-bottom", "24px"},
	},
	"headline": {
		{"font-size", "28px"},
		{"font-weight", "700"},
		{"margin", "0 0 16px 0"},
		{"color", "#FFCA28"},
	},
	"message": {
		{"font-size", "16px"},
		{"max-width", "480px"},
		{"line-height", "1.6"},
		{"margin", "0 0 32px 0"},
		{"color", "#ADADB8"},
	},
	"aside": {
		{"font-size", "14px"},
		{"max-width", "480px"},
		{"line-height", "1.6"},
		{"margin", "0 0 40px 0"},
		{"padding", "16px 20px"},
		{"background", "rgba(255, 255, 255, 0.05)"},
		{"border-radius", "8px"},
		{"color", "#ADADB8"},
	},
	"buttons": {
		{"display", "flex"},
		{"gap", "12px"},
		{"flex-wrap", "wrap"},
		{"justify-content", "center"},
	},
	"back": {
		{"padding", "12px 28px"},
		{"background", "#9147FF"},
		{"color", "#fff"},
		{"border", "none"},
		{"border-radius", "6px"},
		{"font-size", "15px"},
		{"font-weight", "600"},
		{"cursor", "pointer"},
	},
	"proceed": {
		{"padding", "12px 28px"},
		{"background", "transparent"},
		{"color", "#ADADB8"},
		{"border", "1px solid #3D3D3F"},
		{"border-radius", "6px"},
		{"font-size", "15px"},
		{"cursor", "pointer"},
	},
}
