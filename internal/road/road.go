// Package road describes road cross-sections: the ordered lanes, sidewalks
// and medians a road is built from, plus the line markings painted on it.
package road

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRoad is returned when a road definition fails validation.
	ErrInvalidRoad = errors.New("road: invalid road")
	// ErrIndexOutOfRange is returned when a component or marking index does not exist.
	ErrIndexOutOfRange = errors.New("road: index out of range")
)

// ComponentType categorises a cross-section component.
type ComponentType string

const (
	ComponentLane     ComponentType = "lane"
	ComponentSidewalk ComponentType = "sidewalk"
	ComponentMedian   ComponentType = "median"
	ComponentShoulder ComponentType = "shoulder"
)

// Color is an sRGB color with alpha, each channel in [0, 1].
type Color struct {
	R float64 `yaml:"r" json:"r"`
	G float64 `yaml:"g" json:"g"`
	B float64 `yaml:"b" json:"b"`
	A float64 `yaml:"a" json:"a"`
}

// RoadComponent is one strip of the cross-section, left to right.
type RoadComponent struct {
	Name   string        `yaml:"name" json:"name"`
	Type   ComponentType `yaml:"type" json:"type"`
	Width  float64       `yaml:"width" json:"width"`
	Height float64       `yaml:"height" json:"height"`
	Color  Color         `yaml:"color" json:"color"`
}

// RoadMarking is a painted line. XPosition is measured from the road's
// centerline, positive to the right of the direction of travel.
type RoadMarking struct {
	Color        Color   `yaml:"color" json:"color"`
	SegmentWidth float64 `yaml:"segment_width" json:"segment_width"`
	XPosition    float64 `yaml:"x_position" json:"x_position"`
}

// RoadData is a named road cross-section.
type RoadData struct {
	Name       string          `yaml:"name" json:"name"`
	Components []RoadComponent `yaml:"components" json:"components"`
	Markings   []RoadMarking   `yaml:"markings,omitempty" json:"markings,omitempty"`
}

var (
	asphalt  = Color{R: 0.2, G: 0.2, B: 0.22, A: 1}
	concrete = Color{R: 0.65, G: 0.65, B: 0.62, A: 1}
	white    = Color{R: 0.95, G: 0.95, B: 0.95, A: 1}
)

// Default returns a two-lane road with sidewalks and a dashed center line.
func Default() *RoadData {
	return &RoadData{
		Name: "Default",
		Components: []RoadComponent{
			{Name: "Sidewalk", Type: ComponentSidewalk, Width: 2, Height: 0.2, Color: concrete},
			{Name: "Lane", Type: ComponentLane, Width: 3.5, Height: 0.1, Color: asphalt},
			{Name: "Lane", Type: ComponentLane, Width: 3.5, Height: 0.1, Color: asphalt},
			{Name: "Sidewalk", Type: ComponentSidewalk, Width: 2, Height: 0.2, Color: concrete},
		},
		Markings: []RoadMarking{
			{Color: white, SegmentWidth: 0.15, XPosition: 0},
		},
	}
}

// Clone returns a deep copy of r.
func (r *RoadData) Clone() *RoadData {
	if r == nil {
		return nil
	}
	c := &RoadData{Name: r.Name}
	c.Components = append([]RoadComponent(nil), r.Components...)
	c.Markings = append([]RoadMarking(nil), r.Markings...)
	return c
}

// TotalWidth is the summed width of all components.
func (r *RoadData) TotalWidth() float64 {
	var w float64
	for _, c := range r.Components {
		w += c.Width
	}
	return w
}

// ComponentOffsets returns the lateral center of every component relative to
// the road's centerline, left to right.
func (r *RoadData) ComponentOffsets() []float64 {
	offsets := make([]float64, len(r.Components))
	x := -r.TotalWidth() / 2
	for i, c := range r.Components {
		offsets[i] = x + c.Width/2
		x += c.Width
	}
	return offsets
}

func (r *RoadData) AddComponent(c RoadComponent) {
	r.Components = append(r.Components, c)
}

func (r *RoadData) ReplaceComponent(index int, c RoadComponent) error {
	if index < 0 || index >= len(r.Components) {
		return fmt.Errorf("%w: component %d", ErrIndexOutOfRange, index)
	}
	r.Components[index] = c
	return nil
}

func (r *RoadData) DeleteComponent(index int) error {
	if index < 0 || index >= len(r.Components) {
		return fmt.Errorf("%w: component %d", ErrIndexOutOfRange, index)
	}
	r.Components = append(r.Components[:index], r.Components[index+1:]...)
	return nil
}

// ReorderComponent moves the component at from so that it ends up at to,
// shifting the ones in between.
func (r *RoadData) ReorderComponent(from, to int) error {
	n := len(r.Components)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: component %d", ErrIndexOutOfRange, from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: component %d", ErrIndexOutOfRange, to)
	}
	if from == to {
		return nil
	}
	moved := r.Components[from]
	if from < to {
		copy(r.Components[from:to], r.Components[from+1:to+1])
	} else {
		copy(r.Components[to+1:from+1], r.Components[to:from])
	}
	r.Components[to] = moved
	return nil
}

func (r *RoadData) AddMarking(m RoadMarking) {
	r.Markings = append(r.Markings, m)
}

func (r *RoadData) DeleteMarking(index int) error {
	if index < 0 || index >= len(r.Markings) {
		return fmt.Errorf("%w: marking %d", ErrIndexOutOfRange, index)
	}
	r.Markings = append(r.Markings[:index], r.Markings[index+1:]...)
	return nil
}

// Validate checks that the road can be stored and meshed.
func (r *RoadData) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRoad)
	}
	if len(r.Components) == 0 {
		return fmt.Errorf("%w: %q has no components", ErrInvalidRoad, r.Name)
	}
	for i, c := range r.Components {
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: %q component %d has size %.2fx%.2f", ErrInvalidRoad, r.Name, i, c.Width, c.Height)
		}
	}
	half := r.TotalWidth() / 2
	for i, m := range r.Markings {
		if m.SegmentWidth <= 0 {
			return fmt.Errorf("%w: %q marking %d has width %.2f", ErrInvalidRoad, r.Name, i, m.SegmentWidth)
		}
		if m.XPosition < -half || m.XPosition > half {
			return fmt.Errorf("%w: %q marking %d lies outside the road", ErrInvalidRoad, r.Name, i)
		}
	}
	return nil
}
