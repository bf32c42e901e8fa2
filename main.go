package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"

	"RoadEditor/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/editor.toml", "path to editor TOML config")
	addr := flag.String("addr", "", "override address to listen on (e.g., 127.0.0.1:8080)")
	roadsDir := flag.String("roads", "", "override directory holding road YAML files")
	defaultRoad := flag.String("default-road", "", "override road selected for new editors")
	simHz := flag.Float64("sim-hz", math.NaN(), "override room tick rate")
	updateHz := flag.Float64("update-hz", math.NaN(), "override per-client state push rate")
	snap := flag.Float64("snap", math.NaN(), "override node snap distance")
	meshCells := flag.Int("mesh-cells", -1, "override marching cubes resolution for STL export")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath

	var overrides server.SettingsOverrides

	if *addr != "" {
		val := *addr
		overrides.Addr = &val
	}
	if *roadsDir != "" {
		val := *roadsDir
		overrides.RoadsDir = &val
	}
	if *defaultRoad != "" {
		val := *defaultRoad
		overrides.DefaultRoad = &val
	}
	if !math.IsNaN(*simHz) {
		val := *simHz
		overrides.SimHz = &val
	}
	if !math.IsNaN(*updateHz) {
		val := *updateHz
		overrides.UpdateRateHz = &val
	}
	if !math.IsNaN(*snap) {
		val := *snap
		overrides.SnapDistance = &val
	}
	if *meshCells >= 0 {
		val := *meshCells
		overrides.MeshCells = &val
	}

	cfg.Overrides = overrides

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	server.StartApp(ctx, cfg)
}
