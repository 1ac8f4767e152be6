package engine

import (
	"fmt"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// Suppression marker set on hidden containers.
const (
	MarkerAttr  = "data-gambleblock"
	MarkerValue = "hidden"
)

// hide marks el and forces display:none. It reports false when el already
// carries the marker. There is no inverse.
func hide(el dom.Element) (bool, error) {
	if v, ok := el.Attr(MarkerAttr); ok && v == MarkerValue {
		return false, nil
	}
	if err := el.SetAttr(MarkerAttr, MarkerValue); err != nil {
		return false, fmt.Errorf("engine: mark: %w", err)
	}
	if err := el.SetImportantStyle("display", "none"); err != nil {
		return false, fmt.Errorf("engine: hide: %w", err)
	}
	return true, nil
}

// Hidden reports whether el carries the suppression marker.
func Hidden(el dom.Element) bool {
	v, ok := el.Attr(MarkerAttr)
	return ok && v == MarkerValue
}
