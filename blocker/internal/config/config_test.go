package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gambleblock.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Browser.Mode != "headless" || cfg.Browser.Headful() {
		t.Errorf("browser mode: got %q", cfg.Browser.Mode)
	}
	if cfg.Site.Origin != DefaultOrigin {
		t.Errorf("origin: got %q", cfg.Site.Origin)
	}
	if len(cfg.Pages) != 1 || cfg.Pages[0].URL != "https://www.twitch.tv/" {
		t.Errorf("pages: got %+v", cfg.Pages)
	}
	e := cfg.Engine
	if e.Debounce != 150*time.Millisecond {
		t.Errorf("debounce: got %v", e.Debounce)
	}
	if len(e.RescanDelays) != 2 || e.RescanDelays[0] != 500*time.Millisecond || e.RescanDelays[1] != 1500*time.Millisecond {
		t.Errorf("rescan delays: got %v", e.RescanDelays)
	}
	if len(e.StartupScans) != 2 || e.StartupScans[1] != 3*time.Second {
		t.Errorf("startup scans: got %v", e.StartupScans)
	}
	if e.FrameInterval != 16*time.Millisecond {
		t.Errorf("frame interval: got %v", e.FrameInterval)
	}
	if e.Locator.MaxSteps != 7 || e.Locator.FallbackLevels != 3 {
		t.Errorf("locator: got %+v", e.Locator)
	}
	if len(e.Locator.LandmarkTags) != 5 {
		t.Errorf("landmarks: got %v", e.Locator.LandmarkTags)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
browser:
  remote: ws://127.0.0.1:9222/devtools/browser/abc
  mode: headful
site:
  origin: https://www.twitch.tv/
pages:
  - url: https://www.twitch.tv/directory
blocklist:
  no_defaults: true
  channels: [roshtein, xposed]
  file: /etc/gambleblock/channels.txt
engine:
  debounce: 300ms
  rescan_delays: []
  startup_scans: [2s]
  locator:
    max_steps: 9
    card_tags: [article, li, section]
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !cfg.Browser.Headful() || cfg.Browser.Remote == "" {
		t.Errorf("browser: got %+v", cfg.Browser)
	}
	if cfg.Site.Origin != "https://www.twitch.tv" {
		t.Errorf("origin not normalised: %q", cfg.Site.Origin)
	}
	if len(cfg.Pages) != 1 || cfg.Pages[0].URL != "https://www.twitch.tv/directory" {
		t.Errorf("pages: got %+v", cfg.Pages)
	}
	if !cfg.Blocklist.NoDefaults || len(cfg.Blocklist.Channels) != 2 {
		t.Errorf("blocklist: got %+v", cfg.Blocklist)
	}
	e := cfg.Engine
	if e.Debounce != 300*time.Millisecond {
		t.Errorf("debounce: got %v", e.Debounce)
	}
	if e.RescanDelays == nil || len(e.RescanDelays) != 0 {
		t.Errorf("explicit empty rescan delays: got %v", e.RescanDelays)
	}
	if len(e.StartupScans) != 1 || e.StartupScans[0] != 2*time.Second {
		t.Errorf("startup scans: got %v", e.StartupScans)
	}
	if e.Locator.MaxSteps != 9 || e.Locator.FallbackLevels != 3 {
		t.Errorf("locator: got %+v", e.Locator)
	}
	if len(e.Locator.CardTags) != 3 {
		t.Errorf("card tags: got %v", e.Locator.CardTags)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := LoadFile(writeFile(t, "engine: [not, a, map]")); err == nil {
		t.Error("bad yaml: expected error")
	}
	if _, err := LoadFile(writeFile(t, "engine:\n  debounce: soon\n")); err == nil {
		t.Error("bad duration: expected error")
	}
}

func TestInScope(t *testing.T) {
	s := SiteConfig{Origin: "https://www.twitch.tv"}
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.twitch.tv", true},
		{"https://www.twitch.tv/", true},
		{"https://www.twitch.tv/roshtein", true},
		{"https://www.twitch.tv.evil.com/roshtein", false},
		{"https://clips.twitch.tv/roshtein", false},
		{"about:blank", false},
	}
	for _, tt := range tests {
		if got := s.InScope(tt.url); got != tt.want {
			t.Errorf("InScope(%q): got %v, want %v", tt.url, got, tt.want)
		}
	}
}
