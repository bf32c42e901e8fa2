package editor

import (
	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"
)

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

type ButtonPhase int

const (
	PhaseStarted ButtonPhase = iota
	PhaseHeld
	PhaseReleased
)

// Event is a typed input message for a drawing session.
type Event interface {
	isEvent()
}

// InteractionEvent is a pointer button transition. Events raised while the
// pointer is over UI chrome carry OverUI and are ignored.
type InteractionEvent struct {
	Button Button
	Phase  ButtonPhase
	OverUI bool
}

// TargetEvent reports the world point under the pointer; Point is nil when
// the pointer is not over the scene.
type TargetEvent struct {
	Point *geom.Vec3
}

// ToolEvent enters or leaves the drawing tool.
type ToolEvent struct {
	Active bool
}

type VariantEvent struct {
	Variant Variant
}

// RoadSelectedEvent picks the cross-section new sections are built with.
type RoadSelectedEvent struct {
	Road *road.RoadData
}

func (InteractionEvent) isEvent()  {}
func (TargetEvent) isEvent()       {}
func (ToolEvent) isEvent()         {}
func (VariantEvent) isEvent()      {}
func (RoadSelectedEvent) isEvent() {}

func Target(p geom.Vec3) TargetEvent { return TargetEvent{Point: &p} }

func Click(b Button) InteractionEvent {
	return InteractionEvent{Button: b, Phase: PhaseStarted}
}
