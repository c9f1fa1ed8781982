// Package config loads mzview settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ChrisMcGann/mzview/pkg/filter"
)

// Environment variables consulted by Load.
const (
	EnvConfig = "MZVIEW_CONFIG"
	EnvLog    = "MZVIEW_LOG"
)

// Config is the complete mzview configuration.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Export  ExportConfig  `toml:"export"`
	Log     LogConfig     `toml:"log"`
}

// DisplayConfig selects the peak filters applied before a spectrum is drawn.
type DisplayConfig struct {
	Centroid      bool    `toml:"centroid"`
	RemoveZero    bool    `toml:"remove_zero"`
	TopN          int     `toml:"top_n"`
	CutoffPercent float64 `toml:"cutoff_percent"`
}

// ExportConfig controls image and JSON export.
type ExportConfig struct {
	Dir    string `toml:"dir"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// LogConfig names the debug log file. Empty disables logging.
type LogConfig struct {
	File string `toml:"file"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Centroid: true,
		},
		Export: ExportConfig{
			Dir:    ".",
			Width:  1024,
			Height: 600,
		},
	}
}

// Path returns the config file location: $MZVIEW_CONFIG, or
// ~/.config/mzview/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mzview", "config.toml"), nil
}

// Load reads the config file if it exists and falls back to defaults otherwise.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
		}
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.Validate()
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.Validate()
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if logFile := os.Getenv(EnvLog); logFile != "" {
		c.Log.File = logFile
	}
}

// Validate clamps out-of-range values.
func (c *Config) Validate() {
	if c.Display.TopN < 0 {
		c.Display.TopN = 0
	}
	if c.Display.CutoffPercent < 0 {
		c.Display.CutoffPercent = 0
	}
	if c.Display.CutoffPercent > 100 {
		c.Display.CutoffPercent = 100
	}

	defaults := Default()
	if c.Export.Dir == "" {
		c.Export.Dir = defaults.Export.Dir
	}
	if c.Export.Width <= 0 {
		c.Export.Width = defaults.Export.Width
	}
	if c.Export.Height <= 0 {
		c.Export.Height = defaults.Export.Height
	}
}

// Filter returns the peak filter configuration for the display section.
func (c *Config) Filter() filter.Config {
	return filter.Config{
		Centroid:        c.Display.Centroid,
		RemoveZero:      c.Display.RemoveZero,
		IntensityCutoff: c.Display.CutoffPercent,
		TopN:            c.Display.TopN,
	}
}
