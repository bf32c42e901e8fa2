package editor

import (
	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"
)

type EntityID int64

type ComponentKey string

type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

// RoadNode is a point of the network where sections meet or end. Its
// position never changes once placed.
type RoadNode struct {
	Position geom.Vec3
}

// RoadSection joins two distinct nodes. Directions are outward at both
// ends: away from the section at the start, along travel at the end.
type RoadSection struct {
	Start          EntityID
	End            EntityID
	Shape          Shape
	StartDirection geom.Vec3
	EndDirection   geom.Vec3
	Road           *road.RoadData
}

const (
	CompNode    ComponentKey = "node"
	CompSection ComponentKey = "section"
)

func (w *World) Node(id EntityID) *RoadNode {
	if v, ok := w.GetComponent(id, CompNode); ok {
		if n, ok := v.(*RoadNode); ok {
			return n
		}
	}
	return nil
}

func (w *World) Section(id EntityID) *RoadSection {
	if v, ok := w.GetComponent(id, CompSection); ok {
		if s, ok := v.(*RoadSection); ok {
			return s
		}
	}
	return nil
}

func newWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) NewEntity() EntityID {
	w.nextEntity++
	return w.nextEntity
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}


func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}


func (w *World) RemoveEntity(id EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

// ForEach visits every entity carrying all required components. Visit
// order is unspecified.
func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}
