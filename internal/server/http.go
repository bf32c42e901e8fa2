package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	. "RoadEditor/internal/editor"
	"RoadEditor/internal/geom"
	"RoadEditor/internal/mesh"
	"RoadEditor/internal/road"

	"github.com/deadsy/sdfx/sdf"
)

const maxRoadBody = 1 << 20

/* ------------------------------- HTTP ------------------------------- */

// Routes returns the editor's HTTP surface.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.serveWS)
	mux.HandleFunc("GET /api/roads", a.listRoads)
	mux.HandleFunc("GET /api/roads/{name}", a.getRoad)
	mux.HandleFunc("PUT /api/roads/{name}", a.putRoad)
	mux.HandleFunc("DELETE /api/roads/{name}", a.deleteRoad)
	mux.HandleFunc("POST /api/roads/{name}/components", a.addComponent)
	mux.HandleFunc("PUT /api/roads/{name}/components/{index}", a.replaceComponent)
	mux.HandleFunc("DELETE /api/roads/{name}/components/{index}", a.deleteComponent)
	mux.HandleFunc("POST /api/roads/{name}/components/{index}/move", a.moveComponent)
	mux.HandleFunc("POST /api/roads/{name}/markings", a.addMarking)
	mux.HandleFunc("DELETE /api/roads/{name}/markings/{index}", a.deleteMarking)
	mux.HandleFunc("GET /api/roads/{name}/preview.stl", a.previewRoadSTL)
	mux.HandleFunc("GET /api/roads/{name}/preview.json", a.previewRoadMesh)
	mux.HandleFunc("GET /api/rooms", a.listRooms)
	mux.HandleFunc("GET /api/rooms/{room}/export.stl", a.exportRoomSTL)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, road.ErrRoadNotFound):
		status = http.StatusNotFound
	case errors.Is(err, road.ErrInvalidRoad), errors.Is(err, road.ErrIndexOutOfRange), errors.Is(err, mesh.ErrEmptyRoad):
		status = http.StatusBadRequest
	case errors.Is(err, errNoSections):
		status = http.StatusConflict
	case errors.Is(err, mesh.ErrEmptyMesh):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorDTO{Message: err.Error()})
}

var errNoSections = errors.New("room has no sections")

func stlName(name string) string {
	return strings.TrimSuffix(road.FileName(name), ".yaml") + ".stl"
}

func (a *App) listRoads(w http.ResponseWriter, r *http.Request) {
	names, err := a.Roads.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (a *App) getRoad(w http.ResponseWriter, r *http.Request) {
	rd, err := a.Roads.Load(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

func (a *App) putRoad(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRoadBody))
	if err != nil {
		writeError(w, err)
		return
	}
	var rd road.RoadData
	if err := json.Unmarshal(body, &rd); err != nil {
		writeError(w, fmt.Errorf("%w: %v", road.ErrInvalidRoad, err))
		return
	}
	rd.Name = r.PathValue("name")
	a.roadsMu.Lock()
	err = a.Roads.Save(&rd)
	a.roadsMu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("saved road %q", rd.Name)
	writeJSON(w, http.StatusOK, &rd)
}

func (a *App) deleteRoad(w http.ResponseWriter, r *http.Request) {
	a.roadsMu.Lock()
	err := a.Roads.Delete(r.PathValue("name"))
	a.roadsMu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// previewSolid is a straight stretch of the named road running along -Z.
func (a *App) previewSolid(r *http.Request) (sdf.SDF3, error) {
	rd, err := a.Roads.Load(r.PathValue("name"))
	if err != nil {
		return nil, err
	}
	length := 10.0
	if raw := r.URL.Query().Get("length"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1000 {
			length = v
		}
	}
	return mesh.Straight(rd, geom.Vec3{}, geom.Vec3{0, 0, -length})
}

func (a *App) previewRoadMesh(w http.ResponseWriter, r *http.Request) {
	solid, err := a.previewSolid(r)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := mesh.ToMesh(solid, a.Settings.MeshCells)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) previewRoadSTL(w http.ResponseWriter, r *http.Request) {
	solid, err := a.previewSolid(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.serveSTL(w, r, solid, stlName(r.PathValue("name")))
}

type roomDTO struct {
	ID       string `json:"id"`
	Editors  int    `json:"editors"`
	Sections int    `json:"sections"`
}

func (a *App) listRooms(w http.ResponseWriter, r *http.Request) {
	a.Hub.Mu.Lock()
	rooms := make([]*Room, 0, len(a.Hub.Rooms))
	for _, room := range a.Hub.Rooms {
		rooms = append(rooms, room)
	}
	a.Hub.Mu.Unlock()

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		room.Mu.Lock()
		out = append(out, roomDTO{ID: room.ID, Editors: len(room.Editors), Sections: len(room.Network.Sections())})
		room.Mu.Unlock()
	}
	slices.SortFunc(out, func(x, y roomDTO) int { return strings.Compare(x.ID, y.ID) })
	writeJSON(w, http.StatusOK, out)
}

// roomSolids builds one solid per committed section. Sections that cannot
// be meshed are logged and skipped.
func roomSolids(room *Room) []sdf.SDF3 {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	var solids []sdf.SDF3
	for _, id := range room.Network.Sections() {
		s := room.World.Section(id)
		rd := s.Road
		if rd == nil {
			rd = road.Default()
		}
		var solid sdf.SDF3
		var err error
		if s.Shape.Variant == Curved && s.Shape.Arc != nil {
			solid, err = mesh.Curved(rd, *s.Shape.Arc)
		} else {
			start, end := room.World.Node(s.Start), room.World.Node(s.End)
			solid, err = mesh.Straight(rd, start.Position, end.Position)
		}
		if err != nil {
			log.Printf("room %s: mesh section %d: %v", room.ID, id, err)
			continue
		}
		solids = append(solids, solid)
	}
	return solids
}

func (a *App) exportRoomSTL(w http.ResponseWriter, r *http.Request) {
	room, ok := a.Hub.LookupRoom(r.PathValue("room"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorDTO{Message: "room not found"})
		return
	}
	solids := roomSolids(room)
	if len(solids) == 0 {
		writeError(w, errNoSections)
		return
	}
	a.serveSTL(w, r, mesh.Union(solids...), stlName(room.ID))
}

// serveSTL renders solid into a temporary file and streams it back.
func (a *App) serveSTL(w http.ResponseWriter, r *http.Request, solid sdf.SDF3, name string) {
	dir, err := os.MkdirTemp("", "road-stl-")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, name)
	if err := mesh.WriteSTL(solid, path, a.Settings.MeshCells); err != nil {
		log.Printf("stl %s: %v", name, err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
