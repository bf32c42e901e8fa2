package editor

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"RoadEditor/internal/road"

	"github.com/google/uuid"
)

// Editor is one connected user of a room.
type Editor struct {
	ID      string
	Name    string
	Session *DrawingSession
	Built   int

	joined int
	inbox  []Event
}

type Room struct {
	ID      string
	Now     float64
	World   *World
	Network *Network
	Editors map[string]*Editor
	History *EditHistory
	Mu      sync.Mutex

	snapDistance float64
	joins        int
}

func newRoom(id string, snapDistance float64) *Room {
	w := newWorld()
	return &Room{
		ID:           id,
		World:        w,
		Network:      NewNetwork(w),
		Editors:      map[string]*Editor{},
		History:      newEditHistory(HistoryLimit),
		snapDistance: snapDistance,
	}
}

// AddEditor joins a new editor with r preselected.
func (r *Room) AddEditor(name string, rd *road.RoadData) *Editor {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.joins++
	ed := &Editor{
		ID:      uuid.NewString(),
		Name:    name,
		Session: NewDrawingSession(r.snapDistance),
		joined:  r.joins,
	}
	ed.Session.Road = rd
	r.Editors[ed.ID] = ed
	return ed
}

func (r *Room) RemoveEditor(id string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	delete(r.Editors, id)
}

// QueueInput appends ev to the editor's inbox for the next tick.
func (r *Room) QueueInput(editorID string, ev Event) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	ed, ok := r.Editors[editorID]
	if !ok {
		return false
	}
	ed.inbox = append(ed.inbox, ev)
	return true
}

func (r *Room) editorOrderLocked() []*Editor {
	eds := make([]*Editor, 0, len(r.Editors))
	for _, ed := range r.Editors {
		eds = append(eds, ed)
	}
	slices.SortFunc(eds, func(a, b *Editor) int { return a.joined - b.joined })
	return eds
}

// Tick advances the room by one frame. Each editor's queued input is
// applied in join order and the sections it commits are built before the
// next editor runs.
func (r *Room) Tick() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Now += Dt

	for _, ed := range r.editorOrderLocked() {
		events := ed.inbox
		ed.inbox = nil
		if len(events) == 0 {
			continue
		}
		for _, req := range ed.Session.Update(events, r.Network) {
			r.buildLocked(ed, req)
		}
	}
}

func (r *Room) buildLocked(ed *Editor, req BuildSectionRequest) {
	id, err := r.Network.BuildSection(req, ed.Session.Road)
	if err != nil {
		log.Printf("room %s: build section for %s: %v", r.ID, ed.ID, err)
		return
	}
	ed.Built++
	s := r.World.Section(id)
	r.History.push(EditRecord{T: r.Now, Editor: ed.ID, Kind: EditBuild, Section: id, Start: s.Start, End: s.End})
}

// DeleteSection removes a committed section on behalf of an editor.
func (r *Room) DeleteSection(editorID string, id EntityID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	s := r.World.Section(id)
	if s == nil {
		return fmt.Errorf("%w: %d", ErrSectionNotFound, id)
	}
	start, end := s.Start, s.End
	if err := r.Network.DeleteSection(id); err != nil {
		return err
	}
	r.History.push(EditRecord{T: r.Now, Editor: editorID, Kind: EditDelete, Section: id, Start: start, End: end})
	return nil
}

type Hub struct {
	Rooms map[string]*Room
	Mu    sync.Mutex

	SnapDistance float64
}

func NewHub(snapDistance float64) *Hub {
	if snapDistance <= 0 {
		snapDistance = SnapDistance
	}
	return &Hub{Rooms: map[string]*Room{}, SnapDistance: snapDistance}
}

func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return h.roomLocked(id)
}

func (h *Hub) roomLocked(id string) *Room {
	r, ok := h.Rooms[id]
	if !ok {
		r = newRoom(id, h.SnapDistance)
		h.Rooms[id] = r
	}
	return r
}

// Join adds an editor to the named room, creating the room if needed. The
// hub stays locked throughout so cleanup cannot drop the room in between.
func (h *Hub) Join(roomID, name string, rd *road.RoadData) (*Room, *Editor) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r := h.roomLocked(roomID)
	return r, r.AddEditor(name, rd)
}

// LookupRoom returns an existing room without creating one.
func (h *Hub) LookupRoom(id string) (*Room, bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r, ok := h.Rooms[id]
	return r, ok
}

func (h *Hub) rooms() []*Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	out := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		out = append(out, r)
	}
	return out
}

// CleanupEmptyRooms drops rooms with no editors and an empty network.
func (h *Hub) CleanupEmptyRooms() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	removed := 0
	for id, r := range h.Rooms {
		r.Mu.Lock()
		empty := len(r.Editors) == 0 && len(r.Network.Sections()) == 0
		r.Mu.Unlock()
		if empty {
			delete(h.Rooms, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("cleaned up %d empty rooms", removed)
	}
	return removed
}

// Run ticks every room at hz until ctx is done.
func (h *Hub) Run(ctx context.Context, hz float64) {
	if hz <= 0 {
		hz = SimHz
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, r := range h.rooms() {
				r.Tick()
			}
		}
	}
}
