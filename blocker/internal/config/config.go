// Package config handles gambleblock configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOrigin is the site the engine acts on.
const DefaultOrigin = "https://www.twitch.tv"

// Config is the top-level gambleblock configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Site      SiteConfig      `yaml:"site"`
	Pages     []PageConfig    `yaml:"pages"`
	Blocklist BlocklistConfig `yaml:"blocklist"`
	Engine    EngineConfig    `yaml:"engine"`
}

// BrowserConfig controls the Chrome instance.
type BrowserConfig struct {
	Remote         string `yaml:"remote"`
	Mode           string `yaml:"mode"` // headless | headful
	Bin            string `yaml:"bin"`
	DisableStealth bool   `yaml:"disable_stealth"`
	// IgnoreNewTabs stops the blocker from attaching to tabs opened after
	// start (by the user or by the site).
	IgnoreNewTabs bool `yaml:"ignore_new_tabs"`
}

// SiteConfig scopes the engine to one origin.
type SiteConfig struct {
	Origin string `yaml:"origin"`
}

// InScope reports whether url belongs to the configured origin.
func (s SiteConfig) InScope(url string) bool {
	origin := strings.TrimSuffix(s.Origin, "/")
	return url == origin || strings.HasPrefix(url, origin+"/")
}

// PageConfig is a tab opened at start.
type PageConfig struct {
	URL string `yaml:"url"`
}

// BlocklistConfig lists the blocklist sources. All sources are merged.
type BlocklistConfig struct {
	// NoDefaults drops the built-in list.
	NoDefaults bool     `yaml:"no_defaults"`
	Channels   []string `yaml:"channels"`
	File       string   `yaml:"file"`
	DB         string   `yaml:"db"`
}

// EngineConfig holds the engine timings and locator constants.
type EngineConfig struct {
	Debounce      time.Duration   `yaml:"debounce"`
	RescanDelays  []time.Duration `yaml:"rescan_delays"`
	StartupScans  []time.Duration `yaml:"startup_scans"`
	FrameInterval time.Duration   `yaml:"frame_interval"`
	Locator       LocatorConfig   `yaml:"locator"`
}

// LocatorConfig controls the hide-target walk.
type LocatorConfig struct {
	MaxSteps       int      `yaml:"max_steps"`
	FallbackLevels int      `yaml:"fallback_levels"`
	CardTags       []string `yaml:"card_tags"`
	LandmarkTags   []string `yaml:"landmark_tags"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.Mode == "" {
		c.Browser.Mode = "headless"
	}
	if c.Site.Origin == "" {
		c.Site.Origin = DefaultOrigin
	}
	c.Site.Origin = strings.TrimSuffix(c.Site.Origin, "/")
	if len(c.Pages) == 0 {
		c.Pages = []PageConfig{{URL: c.Site.Origin + "/"}}
	}

	e := &c.Engine
	if e.Debounce <= 0 {
		e.Debounce = 150 * time.Millisecond
	}
	// nil means unset; an explicit empty list disables the extra scans.
	if e.RescanDelays == nil {
		e.RescanDelays = []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond}
	}
	if e.StartupScans == nil {
		e.StartupScans = []time.Duration{time.Second, 3 * time.Second}
	}
	if e.FrameInterval <= 0 {
		e.FrameInterval = 16 * time.Millisecond
	}

	l := &e.Locator
	if l.MaxSteps <= 0 {
		l.MaxSteps = 7
	}
	if l.FallbackLevels <= 0 {
		l.FallbackLevels = 3
	}
	if len(l.CardTags) == 0 {
		l.CardTags = []string{"article", "li"}
	}
	if len(l.LandmarkTags) == 0 {
		l.LandmarkTags = []string{"main", "nav", "aside", "body", "html"}
	}
}

// Headful reports whether the browser window is shown.
func (b BrowserConfig) Headful() bool { return b.Mode == "headful" }
