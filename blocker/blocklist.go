package blocker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocklist"
)

// LoadBlocklist merges the configured sources into one Blocklist: the
// built-in names (unless disabled), inline channels, the list file and the
// SQLite table. Sources are read once.
func LoadBlocklist(ctx context.Context, cfg BlocklistConfig, logger *slog.Logger) (*blocklist.Blocklist, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var names []string
	if !cfg.NoDefaults {
		names = append(names, blocklist.Default()...)
	}
	names = append(names, cfg.Channels...)

	if cfg.File != "" {
		fromFile, err := blocklist.LoadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("blocker: %w", err)
		}
		logger.Info("blocker: blocklist file loaded", "path", cfg.File, "names", len(fromFile))
		names = append(names, fromFile...)
	}

	if cfg.DB != "" {
		db, err := blocklist.OpenDB(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("blocker: %w", err)
		}
		defer db.Close()

		fromDB, err := blocklist.LoadDB(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("blocker: %w", err)
		}
		logger.Info("blocker: blocklist db loaded", "path", cfg.DB, "names", len(fromDB))
		names = append(names, fromDB...)
	}

	bl := blocklist.New(names...)
	if bl.Len() == 0 {
		logger.Warn("blocker: blocklist is empty")
	}
	return bl, nil
}
