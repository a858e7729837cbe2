package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig.Windows.IntervalMs, cfg.Windows.IntervalMs)
	assert.Equal(t, "medium", cfg.Tiles.DefaultSize)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[windows]
interval_ms = 5000
helper = "my-helper"

[[toggles]]
name = "pavucontrol"
fallback = "/usr/bin/pavucontrol"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Windows.IntervalMs)
	assert.Equal(t, "my-helper", cfg.Windows.Helper)
	assert.Equal(t, DefaultConfig.Windows.WarmupMs, cfg.Windows.WarmupMs)

	names := make([]string, 0, len(cfg.Toggles))
	for _, tg := range cfg.Toggles {
		names = append(names, tg.Name)
	}
	assert.Equal(t, []string{"pavucontrol"}, names)
	assert.Equal(t, DefaultConfig.Menu.ApplicationDirs, cfg.Menu.ApplicationDirs)
	assert.Len(t, DefaultConfig.Toggles, 3, "defaults must not be mutated by a load")
}

func TestLoadConfigDefaultToggleNotDuplicated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	first := DefaultConfig.Toggles[0]
	data := "[[toggles]]\nname = \"" + first.Name + "\"\nfallback = \"/opt/other\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadAndValidateConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Toggles, 1)
	assert.Equal(t, "/opt/other", cfg.Toggles[0].Fallback)
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[windows\ninterval_ms ="), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidateRanges(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"interval too small", func(c *Config) { c.Windows.IntervalMs = 10 }},
		{"empty helper", func(c *Config) { c.Windows.Helper = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"theme size", func(c *Config) { c.Icons.ThemeSize = 4 }},
		{"duplicate toggle", func(c *Config) {
			c.Toggles = []ToggleConfig{{Name: "a"}, {Name: "a"}}
		}},
		{"empty default size", func(c *Config) { c.Tiles.DefaultSize = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig
			cfg.Toggles = append([]ToggleConfig(nil), DefaultConfig.Toggles...)
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HEXPANEL_LOG_LEVEL", "debug")
	t.Setenv("HEXPANEL_SOCKET", "/tmp/test.sock")
	t.Setenv("HEXPANEL_DEV", "true")

	env, err := LoadEnv()
	require.NoError(t, err)

	cfg := DefaultConfig
	cfg.ApplyEnv(env)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/test.sock", cfg.SocketPath)
	assert.True(t, cfg.Log.Development)
}

func TestWindowsDurations(t *testing.T) {
	w := WindowsConfig{IntervalMs: 2000, WarmupMs: 300, FollowUpMs: 120}
	assert.Equal(t, "2s", w.Interval().String())
	assert.Equal(t, "300ms", w.Warmup().String())
	assert.Equal(t, "120ms", w.FollowUp().String())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig.clone()
	cfg.Windows.IntervalMs = 4000
	cfg.Menu.HistoryPath = "/tmp/hexpanel-history.json"
	require.NoError(t, SaveConfig(&cfg, path))

	loaded, err := LoadAndValidateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, loaded.Windows.IntervalMs)
	assert.Equal(t, "/tmp/hexpanel-history.json", loaded.Menu.HistoryPath)
	assert.Len(t, loaded.Toggles, len(DefaultConfig.Toggles))
}
