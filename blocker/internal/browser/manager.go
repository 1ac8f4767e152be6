// Package browser manages the Chrome instance gambleblock attaches to: a
// local headless or headful launch, or an existing remote instance.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headful shows the browser window. Ignored for remote instances.
	Headful bool

	// Bin is the Chrome binary. Empty = launcher lookup/download.
	Bin string

	// Stealth applies go-rod/stealth to tabs opened by OpenTab.
	Stealth bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome connection.
type Manager struct {
	cfg     Config
	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Call Start to launch or connect.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to the remote instance).
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	wsURL, err := m.controlURL()
	if err != nil {
		return nil, err
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.cleanupLocked()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

func (m *Manager) controlURL() (string, error) {
	log := m.cfg.Logger

	if m.cfg.RemoteURL != "" {
		log.Info("browser: connecting to remote", "url", m.cfg.RemoteURL)
		return m.cfg.RemoteURL, nil
	}

	l := launcher.New().Headless(!m.cfg.Headful)
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	l = l.Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("browser: launch: %w", err)
	}
	m.lnch = l
	log.Info("browser: launched local chrome", "url", u, "headful", m.cfg.Headful)
	return u, nil
}

// Browser returns the current browser handle, or nil before Start.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser
}

// Pages returns the page targets that already exist.
func (m *Manager) Pages() ([]*rod.Page, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("browser: list pages: %w", err)
	}
	return pages, nil
}

// WatchPages calls fn for every page target created after the call until
// ctx is done. fn runs on its own goroutine.
func (m *Manager) WatchPages(ctx context.Context, fn func(*rod.Page)) error {
	b := m.Browser()
	if b == nil {
		return fmt.Errorf("browser: no active browser")
	}
	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(b); err != nil {
		return fmt.Errorf("browser: discover targets: %w", err)
	}

	wait := b.Context(ctx).EachEvent(func(e *proto.TargetTargetCreated) {
		if string(e.TargetInfo.Type) != "page" {
			return
		}
		id := e.TargetInfo.TargetID
		go func() {
			p, err := b.PageFromTarget(id)
			if err != nil {
				m.cfg.Logger.Warn("browser: attach new target", "target", id, "error", err)
				return
			}
			fn(p)
		}()
	})
	go wait()
	return nil
}

// Close disconnects and, for a local launch, kills Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanupLocked()
}

func (m *Manager) cleanupLocked() error {
	var err error
	if m.browser != nil {
		if m.lnch != nil {
			err = m.browser.Close()
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	if err != nil {
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}
