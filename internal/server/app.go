package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	. "RoadEditor/internal/editor"
	"RoadEditor/internal/road"
)

type AppConfig struct {
	ConfigPath string
	Overrides  SettingsOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath: "configs/editor.toml",
	}
}

func resolveSettings(cfg AppConfig) Settings {
	settings := DefaultSettings()
	loaded, err := loadSettingsFromFile(cfg.ConfigPath, settings)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	} else {
		settings = loaded
	}
	return cfg.Overrides.apply(settings)
}

// App wires the room hub, the road store and the HTTP handlers together.
type App struct {
	Settings Settings
	Hub      *Hub
	Roads    *road.Store

	// roadsMu serialises writes to the road store.
	roadsMu sync.Mutex
}

func NewApp(settings Settings) (*App, error) {
	settings = SanitizeSettings(settings)
	app := &App{
		Settings: settings,
		Hub:      NewHub(settings.SnapDistance),
		Roads:    road.NewStore(settings.RoadsDir),
	}
	if err := app.ensureDefaultRoad(); err != nil {
		return nil, err
	}
	return app, nil
}

// ensureDefaultRoad seeds the store with the built-in cross-section so new
// editors always have a road selected.
func (a *App) ensureDefaultRoad() error {
	if _, err := a.Roads.Load(a.Settings.DefaultRoad); err == nil {
		return nil
	} else if !errors.Is(err, road.ErrRoadNotFound) {
		return fmt.Errorf("load default road: %w", err)
	}
	rd := road.Default()
	rd.Name = a.Settings.DefaultRoad
	if err := a.Roads.Save(rd); err != nil {
		return fmt.Errorf("seed default road: %w", err)
	}
	log.Printf("seeded road %q in %s", rd.Name, a.Roads.Dir)
	return nil
}

// defaultRoad loads the configured road, falling back to the built-in one.
func (a *App) defaultRoad() *road.RoadData {
	rd, err := a.Roads.Load(a.Settings.DefaultRoad)
	if err != nil {
		log.Printf("default road: %v (using built-in)", err)
		return road.Default()
	}
	return rd
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.Hub.Run(ctx, a.Settings.SimHz)

	// Periodic cleanup of empty rooms (every 60 seconds)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Hub.CleanupEmptyRooms()
			}
		}
	}()

	srv := &http.Server{Addr: a.Settings.Addr, Handler: a.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("starting road editor on %s (tick %.0f Hz, push %.0f Hz, snap %.2f, roads %s)",
		a.Settings.Addr, a.Settings.SimHz, a.Settings.UpdateRateHz, a.Settings.SnapDistance, a.Settings.RoadsDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func StartApp(ctx context.Context, cfg AppConfig) {
	settings := resolveSettings(cfg)
	app, err := NewApp(settings)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
