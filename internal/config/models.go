package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LauncherStartMenu binds an app to the shared start-menu launch point
// instead of its own dock control.
const LauncherStartMenu = "start-menu"

// StartButton is the control the start menu and its launch point hang off
const StartButton = "start-button"

// AppConfig declares one application slot of the shell
type AppConfig struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Launcher    string `json:"launcher" yaml:"launcher"`
	OffsetX     int    `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetY     int    `json:"offset_y,omitempty" yaml:"offset_y,omitempty"`
	OpenAtStart bool   `json:"open_at_start,omitempty" yaml:"open_at_start,omitempty"`
	InMenu      bool   `json:"in_menu,omitempty" yaml:"in_menu,omitempty"`
}

// SizeConfig is a width/height pair in logical pixels
type SizeConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// AnimationConfig controls how open/close animations complete. With Auto
// set the server finishes them itself after the given durations instead
// of waiting for the client to report them.
type AnimationConfig struct {
	OpenMS  int  `json:"open_ms" yaml:"open_ms"`
	CloseMS int  `json:"close_ms" yaml:"close_ms"`
	Auto    bool `json:"auto" yaml:"auto"`
}

// StreamConfig controls the rendered layout preview stream
type StreamConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	FPS     int  `json:"fps" yaml:"fps"`
	Quality int  `json:"quality" yaml:"quality"`
}

// Config represents the application configuration
type Config struct {
	ServerPort int    `json:"server_port" yaml:"server_port"`
	LogLevel   string `json:"log_level" yaml:"log_level"`

	Viewport  SizeConfig      `json:"viewport" yaml:"viewport"`
	Pane      SizeConfig      `json:"pane" yaml:"pane"`
	BaseZ     int             `json:"base_z" yaml:"base_z"`
	MenuLift  int             `json:"menu_lift" yaml:"menu_lift"`
	Animation AnimationConfig `json:"animation" yaml:"animation"`
	Stream    StreamConfig    `json:"stream" yaml:"stream"`

	Apps []AppConfig `json:"apps" yaml:"apps"`
}

// Validate checks the configuration for values the shell cannot run with
func (c *Config) Validate() error {
	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}
	if c.Pane.Width <= 0 || c.Pane.Height <= 0 {
		return fmt.Errorf("invalid pane size: %dx%d", c.Pane.Width, c.Pane.Height)
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("invalid viewport size: %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Animation.OpenMS < 0 || c.Animation.CloseMS < 0 {
		return fmt.Errorf("animation durations must not be negative")
	}
	if c.Stream.FPS < 0 {
		return fmt.Errorf("invalid stream fps: %d", c.Stream.FPS)
	}
	if c.Stream.Quality < 0 || c.Stream.Quality > 100 {
		return fmt.Errorf("invalid stream quality: %d", c.Stream.Quality)
	}
	if len(c.Apps) == 0 {
		return fmt.Errorf("no apps configured")
	}

	seen := make(map[string]bool, len(c.Apps))
	for _, app := range c.Apps {
		if app.ID == "" {
			return fmt.Errorf("app with empty id")
		}
		if seen[app.ID] {
			return fmt.Errorf("app %q declared twice", app.ID)
		}
		seen[app.ID] = true
		if app.Launcher == "" {
			return fmt.Errorf("app %q has no launcher", app.ID)
		}
	}
	return nil
}

// Controls returns the distinct launcher controls the apps refer to, plus
// the start button
func (c *Config) Controls() []string {
	names := []string{StartButton}
	seen := map[string]bool{StartButton: true}
	for _, app := range c.Apps {
		if app.Launcher == LauncherStartMenu || seen[app.Launcher] {
			continue
		}
		seen[app.Launcher] = true
		names = append(names, app.Launcher)
	}
	return names
}

// Defaults returns the stock configuration: the nine applications of the
// desktop with settings open at start-up
func Defaults() *Config {
	return &Config{
		ServerPort: 8080,
		LogLevel:   "info",
		Viewport:   SizeConfig{Width: 1920, Height: 1080},
		Pane:       SizeConfig{Width: 950, Height: 600},
		BaseZ:      50,
		MenuLift:   50,
		Animation: AnimationConfig{
			OpenMS:  600,
			CloseMS: 500,
			Auto:    true,
		},
		Stream: StreamConfig{
			Enabled: true,
			FPS:     10,
			Quality: 90,
		},
		Apps: []AppConfig{
			{ID: "settings", Title: "Settings", Launcher: "settings-button", OpenAtStart: true, InMenu: true},
			{ID: "music", Title: "Music Player", Launcher: "music-dock"},
			{ID: "gallery", Title: "Wallpaper Library", Launcher: LauncherStartMenu, InMenu: true},
			{ID: "recorder", Title: "Screen Recorder", Launcher: LauncherStartMenu, InMenu: true},
			{ID: "terminal", Title: "Terminal", Launcher: LauncherStartMenu, OffsetX: 50, OffsetY: 50, InMenu: true},
			{ID: "browser", Title: "Browser", Launcher: LauncherStartMenu, InMenu: true},
			{ID: "files", Title: "File Explorer", Launcher: LauncherStartMenu, InMenu: true},
			{ID: "ai", Title: "Liminal AI // CLASSIFIED", Launcher: LauncherStartMenu},
			{ID: "snake", Title: "ZImGame // Arcade", Launcher: LauncherStartMenu},
		},
	}
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/webdesk/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "webdesk", "config.yaml"), nil
}

// NewManager creates a new configuration manager. A missing file is
// created with defaults.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = p
	}

	if err := os.MkdirAll(filepath.Dir(actualConfigPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Info().
			Str("path", m.configPath).
			Msg("Config file not found, creating new config")
		m.config = Defaults()
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Int("apps", len(m.config.Apps)).
		Msg("Config loaded")

	return m, nil
}

// load reads the configuration from disk, filling unset fields from the
// defaults
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	cfg.Apps = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Apps) == 0 {
		cfg.Apps = Defaults().Apps
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}

	cfg := *m.config
	cfg.Apps = append([]AppConfig(nil), m.config.Apps...)
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Update replaces the configuration and saves it
func (m *Manager) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// AddApp appends an application to the catalogue and saves it
func (m *Manager) AddApp(app AppConfig) error {
	cfg := m.Get()
	for _, a := range cfg.Apps {
		if a.ID == app.ID {
			return fmt.Errorf("app %q already exists", app.ID)
		}
	}
	cfg.Apps = append(cfg.Apps, app)
	return m.Update(cfg)
}

// RemoveApp drops an application from the catalogue and saves it
func (m *Manager) RemoveApp(id string) error {
	cfg := m.Get()
	for i, a := range cfg.Apps {
		if a.ID == id {
			cfg.Apps = append(cfg.Apps[:i], cfg.Apps[i+1:]...)
			return m.Update(cfg)
		}
	}
	return fmt.Errorf("app %q not found", id)
}

// SetPort sets the server port in memory. Used for flag overrides, so it
// is not saved.
func (m *Manager) SetPort(port int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ServerPort = port
}

// GetPort returns the server port
func (m *Manager) GetPort() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ServerPort
}

// SetLogLevel sets the log level in memory
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogLevel = level
}

// GetLogLevel returns the log level
func (m *Manager) GetLogLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.LogLevel
}

// GetConfigPath returns the config file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetConfigDir returns the directory holding the config file
func (m *Manager) GetConfigDir() string {
	return filepath.Dir(m.configPath)
}

// GetViper returns a viper instance reading the saved config file, for
// dotted-key access from the command line
func (m *Manager) GetViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(m.configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.configPath, err)
	}
	return v, nil
}

// GetValue returns the value stored under a dotted key such as
// "animation.open_ms"
func (m *Manager) GetValue(key string) (interface{}, error) {
	v, err := m.GetViper()
	if err != nil {
		return nil, err
	}
	if !v.IsSet(key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}
	return v.Get(key), nil
}

// SetValue parses raw according to the existing value under key, stores
// it and saves the file
func (m *Manager) SetValue(key, raw string) error {
	v, err := m.GetViper()
	if err != nil {
		return err
	}

	value, err := parseValue(v.Get(key), raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	v.Set(key, value)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	cfg := Defaults()
	cfg.Apps = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to apply %s: %w", key, err)
	}
	if key == "log_level" && !logger.ValidLevel(raw) {
		return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", raw)
	}

	return m.Update(cfg)
}

// parseValue converts raw to the type of the current value
func parseValue(current interface{}, raw string) (interface{}, error) {
	switch current.(type) {
	case int, int64, float64:
		return strconv.Atoi(raw)
	case bool:
		return strconv.ParseBool(raw)
	case []interface{}, map[string]interface{}:
		return nil, fmt.Errorf("cannot set a list or section from the command line")
	default:
		return strings.TrimSpace(raw), nil
	}
}
