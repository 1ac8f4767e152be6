// Package blocker hides content linking to gambling-promoting channels on
// the streaming site and warns before showing such a channel's page.
//
// A Blocker drives a Chrome instance and runs one engine per tab. FilterHTML
// runs the same engine once over a saved page.
package blocker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/browser"
	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/cdpdom"
	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/engine"
	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/htmldom"
	"github.com/JonasBogvad/better-twitch-tv-extension/blocklist"
)

// ScanResult summarises one scan pass.
type ScanResult = engine.ScanResult

// Blocker is the top-level orchestrator. It owns the browser and one engine
// per attached tab.
type Blocker struct {
	cfg    *Config
	bl     *blocklist.Blocklist
	mgr    *browser.Manager
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	tabs   map[proto.TargetTargetID]*tab
	wg     sync.WaitGroup
}

type tab struct {
	session string
	cancel  context.CancelFunc
}

// New creates a Blocker. The browser is not started until Start.
func New(cfg *Config, bl *blocklist.Blocklist, logger *slog.Logger) *Blocker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL: cfg.Browser.Remote,
		Headful:   cfg.Browser.Headful(),
		Bin:       cfg.Browser.Bin,
		Stealth:   !cfg.Browser.DisableStealth,
		Logger:    logger,
	})

	return &Blocker{
		cfg:    cfg,
		bl:     bl,
		mgr:    mgr,
		logger: logger,
		tabs:   make(map[proto.TargetTargetID]*tab),
	}
}

// Start launches the browser, attaches to existing tabs, opens the
// configured pages and, unless disabled, follows tabs opened later.
func (b *Blocker) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.ctx != nil {
		b.mu.Unlock()
		return fmt.Errorf("blocker: already started")
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	if _, err := b.mgr.Start(b.ctx); err != nil {
		return fmt.Errorf("blocker: start browser: %w", err)
	}

	if b.cfg.Browser.Remote != "" {
		pages, err := b.mgr.Pages()
		if err != nil {
			return fmt.Errorf("blocker: %w", err)
		}
		for _, p := range pages {
			if err := b.AttachPage(p); err != nil {
				b.logger.Warn("blocker: attach existing tab", "target", p.TargetID, "error", err)
			}
		}
	}

	for _, pc := range b.cfg.Pages {
		p, err := browser.OpenTab(b.ctx, b.mgr, pc.URL)
		if err != nil {
			b.logger.Error("blocker: failed to open page", "url", pc.URL, "error", err)
			continue
		}
		if err := b.AttachPage(p); err != nil {
			b.logger.Error("blocker: failed to attach page", "url", pc.URL, "error", err)
		}
	}

	if !b.cfg.Browser.IgnoreNewTabs {
		err := b.mgr.WatchPages(b.ctx, func(p *rod.Page) {
			if err := b.AttachPage(p); err != nil {
				b.logger.Warn("blocker: attach new tab", "target", p.TargetID, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("blocker: %w", err)
		}
	}
	return nil
}

// AttachPage starts an engine on p. Attaching the same target twice is a
// no-op.
func (b *Blocker) AttachPage(p *rod.Page) error {
	b.mu.Lock()
	if b.ctx == nil {
		b.mu.Unlock()
		return fmt.Errorf("blocker: not started")
	}
	if _, ok := b.tabs[p.TargetID]; ok {
		b.mu.Unlock()
		return nil
	}
	session := uuid.Must(uuid.NewV7()).String()
	tctx, cancel := context.WithCancel(b.ctx)
	t := &tab{session: session, cancel: cancel}
	b.tabs[p.TargetID] = t
	b.wg.Add(1)
	b.mu.Unlock()

	logger := b.logger.With("tab", session)
	doc, err := cdpdom.Attach(tctx, p, logger)
	if err != nil {
		b.detach(p.TargetID, t)
		b.wg.Done()
		return fmt.Errorf("blocker: %w", err)
	}

	eng := engine.New(doc, b.engineConfig(logger))
	go func() {
		defer b.wg.Done()
		defer b.detach(p.TargetID, t)

		if err := eng.Run(tctx); err != nil && tctx.Err() == nil {
			logger.Warn("blocker: engine stopped", "error", err)
		}
		if err := doc.Close(); err != nil {
			logger.Debug("blocker: close page", "error", err)
		}
		logger.Info("blocker: tab detached")
	}()

	logger.Info("blocker: tab attached", "target", p.TargetID)
	return nil
}

func (b *Blocker) detach(id proto.TargetTargetID, t *tab) {
	t.cancel()
	b.mu.Lock()
	if b.tabs[id] == t {
		delete(b.tabs, id)
	}
	b.mu.Unlock()
}

// Tabs returns the number of tabs with a running engine.
func (b *Blocker) Tabs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tabs)
}

// Stop detaches every tab and shuts the browser down.
func (b *Blocker) Stop() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	b.wg.Wait()
	if err := b.mgr.Close(); err != nil {
		b.logger.Warn("blocker: close browser", "error", err)
	}
}

// FilterHTML parses a saved page, runs one suppression pass as if it were
// loaded at pageURL, and writes the result to w. A blocked channel page
// gets the warning overlay.
func (b *Blocker) FilterHTML(r io.Reader, pageURL string, w io.Writer) (ScanResult, error) {
	doc, err := htmldom.Parse(r, pageURL)
	if err != nil {
		return ScanResult{}, fmt.Errorf("blocker: %w", err)
	}

	eng := engine.New(doc, b.engineConfig(b.logger))
	res, err := eng.Pass()
	if err != nil {
		return res, fmt.Errorf("blocker: %w", err)
	}
	if id, shown := eng.Overlay(); shown {
		b.logger.Info("blocker: overlay added", "channel", id)
	}

	if err := doc.Render(w); err != nil {
		return res, fmt.Errorf("blocker: render: %w", err)
	}
	return res, nil
}

func (b *Blocker) engineConfig(logger *slog.Logger) engine.Config {
	e := b.cfg.Engine
	return engine.Config{
		Blocklist:     b.bl,
		Debounce:      e.Debounce,
		RescanDelays:  e.RescanDelays,
		StartupScans:  e.StartupScans,
		FrameInterval: e.FrameInterval,
		Locator: engine.LocatorConfig{
			MaxSteps:       e.Locator.MaxSteps,
			FallbackLevels: e.Locator.FallbackLevels,
			CardTags:       e.Locator.CardTags,
			LandmarkTags:   e.Locator.LandmarkTags,
		},
		Scope:  b.cfg.Site.InScope,
		Logger: logger,
	}
}
