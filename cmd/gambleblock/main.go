// Command gambleblock hides gambling-promoting channels on the streaming
// site in a Chrome instance, or filters a saved page.
//
// Usage:
//
//	gambleblock                                   # launch Chrome on the site
//	gambleblock -config gambleblock.yaml          # pages, blocklist, timings from YAML
//	gambleblock -remote ws://127.0.0.1:9222/...   # attach to a running Chrome
//	gambleblock -filter page.html -page-url https://www.twitch.tv/directory
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker"
)

type options struct {
	configPath  string
	url         string
	remote      string
	filter      string
	pageURL     string
	blocklist   string
	blocklistDB string
	headful     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to gambleblock.yaml config file")
	flag.StringVar(&opts.url, "url", "", "open this URL instead of the configured pages")
	flag.StringVar(&opts.remote, "remote", "", "DevTools WebSocket URL of a running Chrome")
	flag.StringVar(&opts.filter, "filter", "", "filter a saved HTML page (- for stdin) and print it")
	flag.StringVar(&opts.pageURL, "page-url", "", "URL the filtered page was loaded from")
	flag.StringVar(&opts.blocklist, "blocklist", "", "plain-text blocklist file (one channel per line)")
	flag.StringVar(&opts.blocklistDB, "blocklist-db", "", "SQLite blocklist database")
	flag.BoolVar(&opts.headful, "headful", false, "show the browser window")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("gambleblock: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	bl, err := blocker.LoadBlocklist(ctx, cfg.Blocklist, logger)
	if err != nil {
		return fmt.Errorf("load blocklist: %w", err)
	}
	logger.Info("gambleblock: blocklist ready", "channels", bl.Len())

	b := blocker.New(cfg, bl, logger)

	if opts.filter != "" {
		return runFilter(b, logger, opts.filter, opts.pageURL)
	}
	return runBrowser(ctx, b)
}

func loadConfig(opts options) (*blocker.Config, error) {
	cfg := blocker.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = blocker.LoadConfigFile(opts.configPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if opts.url != "" {
		cfg.Pages = []blocker.PageConfig{{URL: opts.url}}
	}
	if opts.remote != "" {
		cfg.Browser.Remote = opts.remote
	}
	if opts.headful {
		cfg.Browser.Mode = "headful"
	}
	if opts.blocklist != "" {
		cfg.Blocklist.File = opts.blocklist
	}
	if opts.blocklistDB != "" {
		cfg.Blocklist.DB = opts.blocklistDB
	}
	return cfg, nil
}

func runFilter(b *blocker.Blocker, logger *slog.Logger, path, pageURL string) error {
	if pageURL == "" {
		return fmt.Errorf("-filter requires -page-url")
	}

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	res, err := b.FilterHTML(in, pageURL, os.Stdout)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	logger.Info("gambleblock: page filtered",
		"links", res.Links,
		"matched", res.Matched,
		"suppressed", res.Suppressed)
	return nil
}

func runBrowser(ctx context.Context, b *blocker.Blocker) error {
	if err := b.Start(ctx); err != nil {
		b.Stop()
		return fmt.Errorf("start: %w", err)
	}

	<-ctx.Done()
	b.Stop()
	return nil
}
