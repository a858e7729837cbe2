package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "~/.config/hexpanel/config.toml"

type Config struct {
	SocketPath string         `toml:"socket_path"`
	PidFile    string         `toml:"pid_file"`
	CacheDir   string         `toml:"cache_dir"`
	Log        LogConfig      `toml:"log"`
	Catalog    CatalogConfig  `toml:"catalog"`
	Tiles      TilesConfig    `toml:"tiles"`
	Menu       MenuConfig     `toml:"menu"`
	Windows    WindowsConfig  `toml:"windows"`
	Icons      IconsConfig    `toml:"icons"`
	Toggles    []ToggleConfig `toml:"toggles"`
	OSD        OSDConfig      `toml:"osd"`
}

type LogConfig struct {
	Level       string   `toml:"level"`
	Development bool     `toml:"development"`
	OutputPaths []string `toml:"output_paths"`
}

type CatalogConfig struct {
	Path string `toml:"path"`
}

type TilesConfig struct {
	Path        string `toml:"path"`
	DefaultSize string `toml:"default_size"`
}

type MenuConfig struct {
	ApplicationDirs []string `toml:"application_dirs"`
	MaxResults      int      `toml:"max_results"`
	ParseWorkers    int      `toml:"parse_workers"`
	HistoryPath     string   `toml:"history_path"`
}

type WindowsConfig struct {
	SnapshotPath    string   `toml:"snapshot_path"`
	Helper          string   `toml:"helper"`
	IntervalMs      int      `toml:"interval_ms"`
	WarmupMs        int      `toml:"warmup_ms"`
	FollowUpMs      int      `toml:"follow_up_ms"`
	WatchSnapshot   bool     `toml:"watch_snapshot"`
	ApplicationDirs []string `toml:"application_dirs"`
	IconCacheSize   int      `toml:"icon_cache_size"`
}

type IconsConfig struct {
	ThemeDirs     []string `toml:"theme_dirs"`
	ThemeSize     int      `toml:"theme_size"`
	UseTheme      bool     `toml:"use_theme"`
	MemoCacheSize int      `toml:"memo_cache_size"`
}

type ToggleConfig struct {
	Name     string `toml:"name"`
	Fallback string `toml:"fallback"`
}

type OSDConfig struct {
	Client string `toml:"client"`
}

// Env holds overrides read from HEXPANEL_* environment variables.
type Env struct {
	Config   string `envconfig:"CONFIG"`
	LogLevel string `envconfig:"LOG_LEVEL"`
	Socket   string `envconfig:"SOCKET"`
	Dev      bool   `envconfig:"DEV"`
}

var DefaultConfig = Config{
	SocketPath: defaultSocketPath(),
	PidFile:    "/tmp/hexpanel.pid",
	CacheDir:   filepath.Join(xdg.CacheHome, "hexpanel"),
	Log: LogConfig{
		Level:       "info",
		OutputPaths: []string{"stderr"},
	},
	Catalog: CatalogConfig{
		Path: filepath.Join(xdg.ConfigHome, "bottompanel", "apps.json"),
	},
	Tiles: TilesConfig{
		Path:        filepath.Join(xdg.ConfigHome, "hexlauncher", "launcher_tiles.json"),
		DefaultSize: "medium",
	},
	Menu: MenuConfig{
		ApplicationDirs: []string{
			"/usr/share/applications",
			filepath.Join(xdg.DataHome, "applications"),
		},
		MaxResults:   50,
		ParseWorkers: 10,
		HistoryPath:  filepath.Join(xdg.DataHome, "hexpanel", "frecency.json"),
	},
	Windows: WindowsConfig{
		SnapshotPath:  filepath.Join(xdg.ConfigHome, "hexlauncher", "windows.ini"),
		Helper:        "list-windows",
		IntervalMs:    2000,
		WarmupMs:      300,
		FollowUpMs:    120,
		WatchSnapshot: true,
		ApplicationDirs: []string{
			filepath.Join(xdg.DataHome, "applications"),
			"/usr/share/applications",
			"/usr/local/share/applications",
		},
		IconCacheSize: 256,
	},
	Icons: IconsConfig{
		ThemeDirs: []string{
			"/usr/share/icons/hicolor/256x256/apps",
			"/usr/share/icons/hicolor/128x128/apps",
			"/usr/share/icons/hicolor/64x64/apps",
			"/usr/share/icons/hicolor/48x48/apps",
			"/usr/share/icons/hicolor/scalable/apps",
			"/usr/share/pixmaps",
			"~/.local/share/icons/hicolor/256x256/apps",
		},
		ThemeSize:     64,
		UseTheme:      true,
		MemoCacheSize: 500,
	},
	Toggles: []ToggleConfig{
		{Name: "Win10Menu", Fallback: "/usr/bin/Win10Menu"},
		{Name: "nmqt", Fallback: "/usr/bin/nmqt"},
		{Name: "blueman-manager", Fallback: "/usr/bin/blueman-manager"},
	},
	OSD: OSDConfig{
		Client: "osd-client",
	},
}

func defaultSocketPath() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, "hexpanel.sock")
	}
	return "/tmp/hexpanel.sock"
}

// Interval returns the window poll period.
func (c WindowsConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Warmup returns the delay of the first one-shot refresh after start.
func (c WindowsConfig) Warmup() time.Duration {
	return time.Duration(c.WarmupMs) * time.Millisecond
}

// FollowUp returns the delay of the refresh scheduled after activate/close.
func (c WindowsConfig) FollowUp() time.Duration {
	return time.Duration(c.FollowUpMs) * time.Millisecond
}

// LoadConfig reads a TOML file on top of DefaultConfig. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	expandedPath := expandPath(path)

	cfg := DefaultConfig.clone()
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg.expandPaths()
		return &cfg, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	// go-toml decodes arrays into the existing slices. Lists present in the
	// file replace the defaults.
	cfg.clearLists()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", expandedPath, err)
	}
	cfg.defaultLists(DefaultConfig.clone())

	cfg.expandPaths()
	return &cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadEnv reads HEXPANEL_* overrides.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("hexpanel", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// ApplyEnv copies non-empty overrides onto c.
func (c *Config) ApplyEnv(env Env) {
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.Socket != "" {
		c.SocketPath = expandPath(env.Socket)
	}
	if env.Dev {
		c.Log.Development = true
	}
}

// clone copies c so slices in DefaultConfig are never shared with a loaded
// config.
func (c Config) clone() Config {
	c.Log.OutputPaths = append([]string(nil), c.Log.OutputPaths...)
	c.Menu.ApplicationDirs = append([]string(nil), c.Menu.ApplicationDirs...)
	c.Windows.ApplicationDirs = append([]string(nil), c.Windows.ApplicationDirs...)
	c.Icons.ThemeDirs = append([]string(nil), c.Icons.ThemeDirs...)
	c.Toggles = append([]ToggleConfig(nil), c.Toggles...)
	return c
}

func (c *Config) clearLists() {
	c.Log.OutputPaths = nil
	c.Menu.ApplicationDirs = nil
	c.Windows.ApplicationDirs = nil
	c.Icons.ThemeDirs = nil
	c.Toggles = nil
}

// defaultLists restores every list the decoded file did not set.
func (c *Config) defaultLists(d Config) {
	if c.Log.OutputPaths == nil {
		c.Log.OutputPaths = d.Log.OutputPaths
	}
	if c.Menu.ApplicationDirs == nil {
		c.Menu.ApplicationDirs = d.Menu.ApplicationDirs
	}
	if c.Windows.ApplicationDirs == nil {
		c.Windows.ApplicationDirs = d.Windows.ApplicationDirs
	}
	if c.Icons.ThemeDirs == nil {
		c.Icons.ThemeDirs = d.Icons.ThemeDirs
	}
	if c.Toggles == nil {
		c.Toggles = d.Toggles
	}
}

func (c *Config) expandPaths() {
	c.SocketPath = expandPath(c.SocketPath)
	c.PidFile = expandPath(c.PidFile)
	c.CacheDir = expandPath(c.CacheDir)
	c.Catalog.Path = expandPath(c.Catalog.Path)
	c.Tiles.Path = expandPath(c.Tiles.Path)
	c.Menu.HistoryPath = expandPath(c.Menu.HistoryPath)
	c.Windows.SnapshotPath = expandPath(c.Windows.SnapshotPath)
	c.Menu.ApplicationDirs = expandAll(c.Menu.ApplicationDirs)
	c.Windows.ApplicationDirs = expandAll(c.Windows.ApplicationDirs)
	c.Icons.ThemeDirs = expandAll(c.Icons.ThemeDirs)
	for i := range c.Toggles {
		c.Toggles[i].Fallback = expandPath(c.Toggles[i].Fallback)
	}
}

func expandAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = expandPath(p)
	}
	return out
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWindows(); err != nil {
		return err
	}
	if err := c.validateIcons(); err != nil {
		return err
	}
	if err := c.validateMenu(); err != nil {
		return err
	}
	if err := c.validateToggles(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %q (must be debug, info, warn or error)", c.Log.Level)
}

func (c *Config) validatePaths() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path must not be empty")
	}
	if c.Tiles.Path == "" {
		return fmt.Errorf("tiles.path must not be empty")
	}
	if c.Tiles.DefaultSize == "" {
		return fmt.Errorf("tiles.default_size must not be empty")
	}
	return nil
}

func (c *Config) validateWindows() error {
	w := c.Windows
	if w.SnapshotPath == "" {
		return fmt.Errorf("windows.snapshot_path must not be empty")
	}
	if w.Helper == "" {
		return fmt.Errorf("windows.helper must not be empty")
	}
	if w.IntervalMs < 100 || w.IntervalMs > 60000 {
		return fmt.Errorf("invalid interval_ms: %d (must be 100-60000)", w.IntervalMs)
	}
	if w.WarmupMs < 0 || w.WarmupMs > 10000 {
		return fmt.Errorf("invalid warmup_ms: %d (must be 0-10000)", w.WarmupMs)
	}
	if w.FollowUpMs < 0 || w.FollowUpMs > 5000 {
		return fmt.Errorf("invalid follow_up_ms: %d (must be 0-5000)", w.FollowUpMs)
	}
	if w.IconCacheSize < 1 || w.IconCacheSize > 10000 {
		return fmt.Errorf("invalid icon_cache_size: %d (must be 1-10000)", w.IconCacheSize)
	}
	return nil
}

func (c *Config) validateIcons() error {
	i := c.Icons
	if i.ThemeSize < 16 || i.ThemeSize > 512 {
		return fmt.Errorf("invalid theme_size: %d (must be 16-512)", i.ThemeSize)
	}
	if i.MemoCacheSize < 10 || i.MemoCacheSize > 10000 {
		return fmt.Errorf("invalid memo_cache_size: %d (must be 10-10000)", i.MemoCacheSize)
	}
	return nil
}

func (c *Config) validateMenu() error {
	m := c.Menu
	if m.MaxResults < 1 || m.MaxResults > 1000 {
		return fmt.Errorf("invalid max_results: %d (must be 1-1000)", m.MaxResults)
	}
	if m.ParseWorkers < 1 || m.ParseWorkers > 64 {
		return fmt.Errorf("invalid parse_workers: %d (must be 1-64)", m.ParseWorkers)
	}
	return nil
}

func (c *Config) validateToggles() error {
	seen := make(map[string]bool)
	for _, t := range c.Toggles {
		if t.Name == "" {
			return fmt.Errorf("toggle with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate toggle: %s", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

func ValidateConfig(path string) error {
	_, err := LoadAndValidateConfig(path)
	return err
}
