package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"RoadEditor/internal/road"
)

// editRoad loads the named road, applies fn and saves the result. Edits go
// through Store.Save, so a change that leaves the road invalid is rejected
// and the file on disk stays as it was.
func (a *App) editRoad(w http.ResponseWriter, r *http.Request, fn func(rd *road.RoadData) error) {
	a.roadsMu.Lock()
	defer a.roadsMu.Unlock()

	name := r.PathValue("name")
	rd, err := a.Roads.Load(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fn(rd); err != nil {
		writeError(w, err)
		return
	}
	if err := a.Roads.Save(rd); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("edited road %q", rd.Name)
	writeJSON(w, http.StatusOK, rd)
}

func pathIndex(r *http.Request, key string) (int, error) {
	raw := r.PathValue(key)
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", road.ErrIndexOutOfRange, raw)
	}
	return i, nil
}

func decodeBody[T any](r *http.Request) (T, error) {
	var v T
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRoadBody))
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %v", road.ErrInvalidRoad, err)
	}
	return v, nil
}

func (a *App) addComponent(w http.ResponseWriter, r *http.Request) {
	c, err := decodeBody[road.RoadComponent](r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		rd.AddComponent(c)
		return nil
	})
}

func (a *App) replaceComponent(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := decodeBody[road.RoadComponent](r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		return rd.ReplaceComponent(i, c)
	})
}

func (a *App) deleteComponent(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		return rd.DeleteComponent(i)
	})
}

// moveComponent handles POST .../components/{index}/move?to=j.
func (a *App) moveComponent(w http.ResponseWriter, r *http.Request) {
	from, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	raw := r.URL.Query().Get("to")
	to, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, fmt.Errorf("%w: to=%q", road.ErrIndexOutOfRange, raw))
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		return rd.ReorderComponent(from, to)
	})
}

func (a *App) addMarking(w http.ResponseWriter, r *http.Request) {
	m, err := decodeBody[road.RoadMarking](r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		rd.AddMarking(m)
		return nil
	})
}

func (a *App) deleteMarking(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	a.editRoad(w, r, func(rd *road.RoadData) error {
		return rd.DeleteMarking(i)
	})
}
