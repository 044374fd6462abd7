package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "webdesk", "config.yaml"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Apps) != 9 {
		t.Errorf("expected 9 apps, got %d", len(cfg.Apps))
	}

	var openAtStart []string
	for _, app := range cfg.Apps {
		if app.OpenAtStart {
			openAtStart = append(openAtStart, app.ID)
		}
	}
	if len(openAtStart) != 1 || openAtStart[0] != "settings" {
		t.Errorf("expected only settings open at start, got %v", openAtStart)
	}
}

func TestControls(t *testing.T) {
	got := Defaults().Controls()
	want := []string{StartButton, "settings-button", "music-dock"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Controls() = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.ServerPort = 70000 }},
		{"zero pane", func(c *Config) { c.Pane.Width = 0 }},
		{"negative animation", func(c *Config) { c.Animation.CloseMS = -1 }},
		{"no apps", func(c *Config) { c.Apps = nil }},
		{"duplicate app", func(c *Config) { c.Apps = append(c.Apps, c.Apps[0]) }},
		{"empty id", func(c *Config) { c.Apps[0].ID = "" }},
		{"no launcher", func(c *Config) { c.Apps[0].Launcher = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewManagerCreatesDefaults(t *testing.T) {
	m := newTestManager(t)

	if _, err := os.Stat(m.GetConfigPath()); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if m.GetPort() != 8080 {
		t.Errorf("expected port 8080, got %d", m.GetPort())
	}

	reloaded, err := NewManager(m.GetConfigPath())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(reloaded.Get().Apps); got != 9 {
		t.Errorf("expected 9 apps after reload, got %d", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "server_port: 9090\nanimation:\n  auto: false\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := m.Get()
	if cfg.ServerPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.ServerPort)
	}
	if cfg.Animation.Auto {
		t.Error("expected auto animation disabled")
	}
	if cfg.Animation.OpenMS != 600 {
		t.Errorf("expected default open duration, got %d", cfg.Animation.OpenMS)
	}
	if len(cfg.Apps) != 9 {
		t.Errorf("expected default apps, got %d", len(cfg.Apps))
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pane:\n  width: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(path); err == nil {
		t.Fatal("expected error for invalid pane size")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := newTestManager(t)
	cfg := m.Get()
	cfg.Apps[0].Title = "changed"
	cfg.ServerPort = 1

	if m.Get().Apps[0].Title != "Settings" {
		t.Error("Get leaked app slice")
	}
	if m.GetPort() != 8080 {
		t.Error("Get leaked config struct")
	}
}

func TestGetSetValue(t *testing.T) {
	m := newTestManager(t)

	v, err := m.GetValue("animation.open_ms")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if v != 600 {
		t.Errorf("expected 600, got %v (%T)", v, v)
	}

	if err := m.SetValue("animation.open_ms", "250"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if got := m.Get().Animation.OpenMS; got != 250 {
		t.Errorf("expected 250, got %d", got)
	}

	if err := m.SetValue("stream.enabled", "false"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if m.Get().Stream.Enabled {
		t.Error("expected stream disabled")
	}

	if err := m.SetValue("log_level", "loud"); err == nil {
		t.Error("expected error for invalid log level")
	}
	if err := m.SetValue("server_port", "abc"); err == nil {
		t.Error("expected error for non-numeric port")
	}
	if _, err := m.GetValue("nope"); err == nil {
		t.Error("expected error for unknown key")
	}

	reloaded, err := NewManager(m.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Get().Animation.OpenMS; got != 250 {
		t.Errorf("SetValue not persisted: got %d", got)
	}
}

func TestAddRemoveApp(t *testing.T) {
	m := newTestManager(t)

	notes := AppConfig{ID: "notes", Title: "Notes", Launcher: LauncherStartMenu, InMenu: true}
	if err := m.AddApp(notes); err != nil {
		t.Fatalf("AddApp: %v", err)
	}
	if err := m.AddApp(notes); err == nil {
		t.Error("expected error adding a duplicate app")
	}
	if err := m.AddApp(AppConfig{ID: "bad", Title: "Bad"}); err == nil {
		t.Error("expected error adding an app without a launcher")
	}

	reloaded, err := NewManager(m.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	apps := reloaded.Get().Apps
	if last := apps[len(apps)-1]; last != notes {
		t.Errorf("expected notes persisted last, got %+v", last)
	}

	if err := m.RemoveApp("notes"); err != nil {
		t.Fatalf("RemoveApp: %v", err)
	}
	if err := m.RemoveApp("notes"); err == nil {
		t.Error("expected error removing a missing app")
	}
	if got := len(m.Get().Apps); got != len(Defaults().Apps) {
		t.Errorf("expected %d apps after remove, got %d", len(Defaults().Apps), got)
	}
}
