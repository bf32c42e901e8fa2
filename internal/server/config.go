package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "RoadEditor/internal/editor"

	"github.com/BurntSushi/toml"
)

// Settings are the resolved runtime parameters of the editor server.
type Settings struct {
	Addr         string
	RoadsDir     string
	DefaultRoad  string
	SimHz        float64
	UpdateRateHz float64
	SnapDistance float64
	MeshCells    int
}

func DefaultSettings() Settings {
	return Settings{
		Addr:         ":8080",
		RoadsDir:     "roads",
		DefaultRoad:  "default",
		SimHz:        SimHz,
		UpdateRateHz: UpdateRateHz,
		SnapDistance: SnapDistance,
		MeshCells:    96,
	}
}

// SanitizeSettings replaces unusable values with defaults.
func SanitizeSettings(s Settings) Settings {
	def := DefaultSettings()
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = def.Addr
	}
	if strings.TrimSpace(s.RoadsDir) == "" {
		s.RoadsDir = def.RoadsDir
	}
	if strings.TrimSpace(s.DefaultRoad) == "" {
		s.DefaultRoad = def.DefaultRoad
	}
	if s.SimHz <= 0 || s.SimHz > 240 {
		s.SimHz = def.SimHz
	}
	if s.UpdateRateHz <= 0 || s.UpdateRateHz > s.SimHz {
		s.UpdateRateHz = min(def.UpdateRateHz, s.SimHz)
	}
	if s.SnapDistance <= 0 {
		s.SnapDistance = def.SnapDistance
	}
	if s.MeshCells < 8 {
		s.MeshCells = def.MeshCells
	}
	return s
}

type serverConfig struct {
	Addr         *string  `toml:"addr"`
	RoadsDir     *string  `toml:"roads_dir"`
	UpdateRateHz *float64 `toml:"update_rate_hz"`
}

type editorConfig struct {
	DefaultRoad  *string  `toml:"default_road"`
	SimHz        *float64 `toml:"sim_hz"`
	SnapDistance *float64 `toml:"snap_distance"`
	MeshCells    *int     `toml:"mesh_cells"`
}

type fileConfig struct {
	Server *serverConfig `toml:"server"`
	Editor *editorConfig `toml:"editor"`
}

// SettingsOverrides represents optional command-line overrides.
type SettingsOverrides struct {
	Addr         *string
	RoadsDir     *string
	DefaultRoad  *string
	SimHz        *float64
	UpdateRateHz *float64
	SnapDistance *float64
	MeshCells    *int
}

func (o SettingsOverrides) apply(base Settings) Settings {
	if o.Addr != nil {
		base.Addr = *o.Addr
	}
	if o.RoadsDir != nil {
		base.RoadsDir = *o.RoadsDir
	}
	if o.DefaultRoad != nil {
		base.DefaultRoad = *o.DefaultRoad
	}
	if o.SimHz != nil {
		base.SimHz = *o.SimHz
	}
	if o.UpdateRateHz != nil {
		base.UpdateRateHz = *o.UpdateRateHz
	}
	if o.SnapDistance != nil {
		base.SnapDistance = *o.SnapDistance
	}
	if o.MeshCells != nil {
		base.MeshCells = *o.MeshCells
	}
	return SanitizeSettings(base)
}

func mergeFileConfig(base Settings, cfg fileConfig) Settings {
	if s := cfg.Server; s != nil {
		if s.Addr != nil {
			base.Addr = *s.Addr
		}
		if s.RoadsDir != nil {
			base.RoadsDir = *s.RoadsDir
		}
		if s.UpdateRateHz != nil {
			base.UpdateRateHz = *s.UpdateRateHz
		}
	}
	if e := cfg.Editor; e != nil {
		if e.DefaultRoad != nil {
			base.DefaultRoad = *e.DefaultRoad
		}
		if e.SimHz != nil {
			base.SimHz = *e.SimHz
		}
		if e.SnapDistance != nil {
			base.SnapDistance = *e.SnapDistance
		}
		if e.MeshCells != nil {
			base.MeshCells = *e.MeshCells
		}
	}
	return SanitizeSettings(base)
}

// loadSettingsFromFile merges the TOML file at path over base. A missing
// file is not an error.
func loadSettingsFromFile(path string, base Settings) (Settings, error) {
	if path == "" {
		return SanitizeSettings(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeSettings(base), nil
		}
		return SanitizeSettings(base), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return SanitizeSettings(base), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	return mergeFileConfig(base, cfg), nil
}
