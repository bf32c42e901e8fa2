package server

import (
	"context"
	"net/http/httptest"
	"testing"
)

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	settings := DefaultSettings()
	settings.RoadsDir = t.TempDir()
	settings.SimHz = 100
	settings.UpdateRateHz = 50
	settings.MeshCells = 32
	app, err := NewApp(settings)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go app.Hub.Run(ctx, app.Settings.SimHz)
	srv := httptest.NewServer(app.Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return app, srv
}
