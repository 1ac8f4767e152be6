package blocker

import (
	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/config"
)

// Config is the top-level gambleblock configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls the Chrome instance.
type BrowserConfig = config.BrowserConfig

// PageConfig is a tab opened at start.
type PageConfig = config.PageConfig

// BlocklistConfig lists the blocklist sources.
type BlocklistConfig = config.BlocklistConfig

// EngineConfig holds the engine timings and locator constants.
type EngineConfig = config.EngineConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.Default()
}
