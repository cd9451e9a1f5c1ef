// Package config loads and saves ccmonitor's TOML configuration and
// validates user preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// Environment overrides.
const (
	EnvSnapshot = "CCMONITOR_SNAPSHOT"
	EnvURL      = "CCMONITOR_URL"
	EnvToken    = "CCMONITOR_TOKEN"
)

// Config holds all ccmonitor configuration.
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Preferences PreferencesConfig `toml:"preferences"`
	Thresholds  ThresholdsConfig  `toml:"thresholds"`
	TUI         TUIConfig         `toml:"tui"`
	Appearance  AppearanceConfig  `toml:"appearance"`
}

// GeneralConfig holds source and runtime settings.
type GeneralConfig struct {
	SnapshotPath string `toml:"snapshot_path,omitempty"`
	SourceURL    string `toml:"source_url,omitempty"`
	Token        string `toml:"token,omitempty"`
	LogLevel     string `toml:"log_level,omitempty"`
	UseCache     bool   `toml:"use_cache"`
	DaemonAddr   string `toml:"daemon_addr,omitempty"`
}

// PreferencesConfig is the on-disk form of Preferences. Values are
// validated by Config.Prefs.
type PreferencesConfig struct {
	Timezone           string `toml:"timezone,omitempty"`
	ResetHour          int    `toml:"reset_hour"`
	Plan               string `toml:"plan"`
	CustomTokenLimit   int64  `toml:"custom_token_limit,omitempty"`
	MenuBarDisplayMode string `toml:"menu_bar_display_mode"`
	MenuBarCostSource  string `toml:"menu_bar_cost_source"`
}

// ThresholdsConfig holds the per-view status thresholds. Each view keeps
// its own pair.
type ThresholdsConfig struct {
	DashboardWarning  float64 `toml:"dashboard_warning"`
	DashboardCritical float64 `toml:"dashboard_critical"`
	LiveWarning       float64 `toml:"live_warning"`
	LiveCritical      float64 `toml:"live_critical"`
	NarrationWarning  float64 `toml:"narration_warning"`
	NarrationCritical float64 `toml:"narration_critical"`
	BurnModerate      float64 `toml:"burn_moderate"`
	BurnHigh          float64 `toml:"burn_high"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh     bool `toml:"auto_refresh"`
	RefreshInterval int  `toml:"refresh_interval_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	prefs := DefaultPreferences()
	return Config{
		General: GeneralConfig{
			SnapshotPath: DefaultSnapshotPath(),
			LogLevel:     "warn",
			UseCache:     true,
			DaemonAddr:   "127.0.0.1:8787",
		},
		Preferences: PreferencesConfig{
			Plan:               string(prefs.Plan),
			MenuBarDisplayMode: string(prefs.MenuBarDisplayMode),
			MenuBarCostSource:  string(prefs.MenuBarCostSource),
		},
		Thresholds: ThresholdsConfig{
			DashboardWarning:  pipeline.DashboardThresholds.Warning,
			DashboardCritical: pipeline.DashboardThresholds.Critical,
			LiveWarning:       pipeline.LiveThresholds.Warning,
			LiveCritical:      pipeline.LiveThresholds.Critical,
			NarrationWarning:  80,
			NarrationCritical: 95,
			BurnModerate:      pipeline.DefaultBurnTiers.Moderate,
			BurnHigh:          pipeline.DefaultBurnTiers.High,
		},
		TUI: TUIConfig{
			AutoRefresh:     true,
			RefreshInterval: 3,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// DefaultSnapshotPath is where the collector writes its snapshot.
func DefaultSnapshotPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "usage-snapshot.json")
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccmonitor")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccmonitor")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path with owner-only permissions.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// ApplyEnv overrides source settings from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvSnapshot); v != "" {
		cfg.General.SnapshotPath = v
	}
	if v := os.Getenv(EnvURL); v != "" {
		cfg.General.SourceURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.General.Token = v
	}
}

// Prefs validates the stored preferences. Invalid values fall back to their
// defaults and are reported in the error.
func (c Config) Prefs() (Preferences, error) {
	p := c.Preferences
	raw := map[string]any{
		KeyResetHour:        p.ResetHour,
		KeyCustomTokenLimit: p.CustomTokenLimit,
	}
	if p.Timezone != "" {
		raw[KeyTimezone] = p.Timezone
	}
	if p.Plan != "" {
		raw[KeyPlan] = p.Plan
	}
	if p.MenuBarDisplayMode != "" {
		raw[KeyMenuBarDisplayMode] = p.MenuBarDisplayMode
	}
	if p.MenuBarCostSource != "" {
		raw[KeyMenuBarCostSource] = p.MenuBarCostSource
	}
	return ParsePreferences(raw)
}

// SetPrefs stores validated preferences.
func (c *Config) SetPrefs(p Preferences) {
	c.Preferences = PreferencesConfig{
		Timezone:           p.Timezone,
		ResetHour:          p.ResetHour,
		Plan:               string(p.Plan),
		CustomTokenLimit:   p.CustomTokenLimit,
		MenuBarDisplayMode: string(p.MenuBarDisplayMode),
		MenuBarCostSource:  string(p.MenuBarCostSource),
	}
}

// Dashboard returns the dashboard status thresholds.
func (t ThresholdsConfig) Dashboard() pipeline.Thresholds {
	return pipeline.Thresholds{Warning: t.DashboardWarning, Critical: t.DashboardCritical}
}

// Live returns the live status card thresholds.
func (t ThresholdsConfig) Live() pipeline.Thresholds {
	return pipeline.Thresholds{Warning: t.LiveWarning, Critical: t.LiveCritical}
}

// Narration returns the thresholds that trigger live log entries.
func (t ThresholdsConfig) Narration() pipeline.Thresholds {
	return pipeline.Thresholds{Warning: t.NarrationWarning, Critical: t.NarrationCritical}
}

// Burn returns the burn rate tiers.
func (t ThresholdsConfig) Burn() pipeline.BurnTiers {
	return pipeline.BurnTiers{Moderate: t.BurnModerate, High: t.BurnHigh}
}

// RefreshEvery returns the TUI refresh interval, at least one second.
func (t TUIConfig) RefreshEvery() time.Duration {
	if t.RefreshInterval < 1 {
		return 3 * time.Second
	}
	return time.Duration(t.RefreshInterval) * time.Second
}

// setters maps settable keys to their parsers. Preference keys go through
// ParsePreferences so the same validation applies everywhere.
var setters = map[string]func(c *Config, v string) error{
	"snapshot_path": func(c *Config, v string) error { c.General.SnapshotPath = v; return nil },
	"source_url":    func(c *Config, v string) error { c.General.SourceURL = v; return nil },
	"token":         func(c *Config, v string) error { c.General.Token = v; return nil },
	"log_level":     func(c *Config, v string) error { c.General.LogLevel = v; return nil },
	"daemon_addr":   func(c *Config, v string) error { c.General.DaemonAddr = v; return nil },
	"use_cache":     boolSetter(func(c *Config) *bool { return &c.General.UseCache }),
	"auto_refresh":  boolSetter(func(c *Config) *bool { return &c.TUI.AutoRefresh }),
	"refresh_interval_sec": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("refresh_interval_sec must be a positive integer")
		}
		c.TUI.RefreshInterval = n
		return nil
	},
	"theme": func(c *Config, v string) error { c.Appearance.Theme = v; return nil },
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false: %w", err)
		}
		*field(c) = b
		return nil
	}
}

// SettableKeys lists every key Set accepts.
func SettableKeys() []string {
	keys := make([]string, 0, len(setters)+len(PreferenceKeys))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append(append([]string{}, PreferenceKeys...), keys...)
}

// Set updates one key from its string form.
func (c *Config) Set(key, value string) error {
	for _, k := range PreferenceKeys {
		if strings.EqualFold(key, k) {
			prefs, _ := c.Prefs()
			raw := prefs.Map()
			raw[k] = value
			next, err := ParsePreferences(raw)
			if err != nil {
				return err
			}
			c.SetPrefs(next)
			return nil
		}
	}
	if set, ok := setters[strings.ToLower(key)]; ok {
		return set(c, value)
	}
	return fmt.Errorf("unknown config key %q", key)
}
