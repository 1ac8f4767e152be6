package engine

import (
	"log/slog"
	"time"

	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// Matcher is the blocklist as the engine sees it.
type Matcher interface {
	Contains(id channel.ID) bool
}

// Config configures an Engine.
type Config struct {
	Blocklist Matcher
	Locator   LocatorConfig

	// Debounce is the quiet period after the last mutation batch before a
	// scan runs. Default: 150ms.
	Debounce time.Duration
	// RescanDelays are the re-scans scheduled after an SPA navigation.
	// Default: 500ms, 1500ms.
	RescanDelays []time.Duration
	// StartupScans are extra scans after a new document. Default: 1s, 3s.
	StartupScans []time.Duration
	// FrameInterval is the retry period while waiting for the body on
	// hosts without frames (see dom.FrameDeferrer). Default: 16ms (one
	// animation frame at 60Hz).
	FrameInterval time.Duration

	// Scope limits the engine to matching page URLs. Nil matches all.
	Scope func(url string) bool

	Logger *slog.Logger
}

// LocatorConfig holds the hide-target walk parameters. The values are tuned
// against the site's current markup.
type LocatorConfig struct {
	// MaxSteps bounds the upward walk looking for a card. Default: 7.
	MaxSteps int
	// FallbackLevels is how far the fallback climbs from the link. Default: 3.
	FallbackLevels int
	// CardTags end the walk with a match. Default: article, li.
	CardTags []string
	// LandmarkTags end the walk without a match and are never hidden.
	// Default: main, nav, aside, body, html.
	LandmarkTags []string
}

func (c *Config) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = 150 * time.Millisecond
	}
	if c.RescanDelays == nil {
		c.RescanDelays = []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond}
	}
	if c.StartupScans == nil {
		c.StartupScans = []time.Duration{time.Second, 3 * time.Second}
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = 16 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Locator.defaults()
}

func (lc *LocatorConfig) defaults() {
	if lc.MaxSteps <= 0 {
		lc.MaxSteps = 7
	}
	if lc.FallbackLevels <= 0 {
		lc.FallbackLevels = 3
	}
	if len(lc.CardTags) == 0 {
		lc.CardTags = []string{"article", "li"}
	}
	if len(lc.LandmarkTags) == 0 {
		lc.LandmarkTags = []string{"main", "nav", "aside", "body", "html"}
	}
}
