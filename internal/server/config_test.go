package server

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSettingsMergesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:9000"

[editor]
snap_distance = 4.0
mesh_cells = 64
`)
	got, err := loadSettingsFromFile(path, DefaultSettings())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultSettings()
	if got.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr from file, got %q", got.Addr)
	}
	if got.SnapDistance != 4.0 || got.MeshCells != 64 {
		t.Errorf("expected snap 4 and cells 64, got %v and %d", got.SnapDistance, got.MeshCells)
	}
	if got.RoadsDir != def.RoadsDir || got.SimHz != def.SimHz {
		t.Errorf("expected unset fields to keep defaults, got %+v", got)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	got, err := loadSettingsFromFile(filepath.Join(t.TempDir(), "nope.toml"), DefaultSettings())
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestLoadSettingsInvalidFile(t *testing.T) {
	path := writeConfig(t, "[editor\nsnap_distance = ")
	got, err := loadSettingsFromFile(path, DefaultSettings())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got != DefaultSettings() {
		t.Errorf("expected defaults on error, got %+v", got)
	}
}

func TestSettingsOverridesWin(t *testing.T) {
	path := writeConfig(t, `
[editor]
snap_distance = 4.0
sim_hz = 60.0
`)
	snap := 1.5
	roads := "/tmp/roads"
	cfg := AppConfig{
		ConfigPath: path,
		Overrides:  SettingsOverrides{SnapDistance: &snap, RoadsDir: &roads},
	}
	got := resolveSettings(cfg)
	if got.SnapDistance != 1.5 {
		t.Errorf("expected override snap 1.5, got %v", got.SnapDistance)
	}
	if got.SimHz != 60 {
		t.Errorf("expected file sim_hz 60, got %v", got.SimHz)
	}
	if got.RoadsDir != roads {
		t.Errorf("expected override roads dir, got %q", got.RoadsDir)
	}
}

func TestSanitizeSettings(t *testing.T) {
	got := SanitizeSettings(Settings{SimHz: 20, UpdateRateHz: 50, SnapDistance: -1, MeshCells: 2})
	def := DefaultSettings()
	if got.UpdateRateHz != def.UpdateRateHz {
		t.Errorf("expected push rate %v, got %v", def.UpdateRateHz, got.UpdateRateHz)
	}
	if got.SnapDistance != def.SnapDistance || got.MeshCells != def.MeshCells {
		t.Errorf("expected snap and cells reset, got %+v", got)
	}
	if got.Addr != def.Addr || got.RoadsDir != def.RoadsDir || got.DefaultRoad != def.DefaultRoad {
		t.Errorf("expected empty strings replaced, got %+v", got)
	}
}
