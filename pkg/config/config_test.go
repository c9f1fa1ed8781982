package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv(EnvLog, "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[display]
centroid = false
remove_zero = true
top_n = 50
cutoff_percent = 2.5

[export]
dir = "/tmp/plots"
`)
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvLog, "")

	cfg, err := Load()
	require.NoError(t, err)

	require.False(t, cfg.Display.Centroid)
	require.True(t, cfg.Display.RemoveZero)
	require.Equal(t, 50, cfg.Display.TopN)
	require.Equal(t, 2.5, cfg.Display.CutoffPercent)
	require.Equal(t, "/tmp/plots", cfg.Export.Dir)
	// unspecified keys keep their defaults
	require.Equal(t, 1024, cfg.Export.Width)
	require.Equal(t, 600, cfg.Export.Height)

	f := cfg.Filter()
	require.True(t, f.RemoveZero)
	require.Equal(t, 50, f.TopN)
	require.Equal(t, 2.5, f.IntensityCutoff)
}

func TestLoadMalformed(t *testing.T) {
	t.Setenv(EnvConfig, writeConfig(t, "[display\ncentroid = "))

	_, err := Load()
	require.Error(t, err)
}

func TestEnvLogOverride(t *testing.T) {
	t.Setenv(EnvConfig, writeConfig(t, "[log]\nfile = \"a.log\"\n"))
	t.Setenv(EnvLog, "b.log")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "b.log", cfg.Log.File)
}

func TestValidateClamps(t *testing.T) {
	cfg := &Config{
		Display: DisplayConfig{TopN: -3, CutoffPercent: 250},
		Export:  ExportConfig{Width: -1},
	}
	cfg.Validate()

	require.Equal(t, 0, cfg.Display.TopN)
	require.Equal(t, 100.0, cfg.Display.CutoffPercent)
	require.Equal(t, ".", cfg.Export.Dir)
	require.Equal(t, 1024, cfg.Export.Width)
	require.Equal(t, 600, cfg.Export.Height)
}
