package road

import (
	"errors"
	"math"
	"testing"
)

func names(r *RoadData) []string {
	out := make([]string, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.Name
	}
	return out
}

func abcd() *RoadData {
	return &RoadData{
		Name: "abcd",
		Components: []RoadComponent{
			{Name: "a", Width: 1, Height: 0.1},
			{Name: "b", Width: 2, Height: 0.1},
			{Name: "c", Width: 3, Height: 0.1},
			{Name: "d", Width: 4, Height: 0.1},
		},
	}
}

func TestReorderComponent(t *testing.T) {
	cases := []struct {
		from, to int
		want     string
	}{
		{0, 3, "bcda"},
		{3, 0, "dabc"},
		{1, 2, "acbd"},
		{2, 2, "abcd"},
	}
	for _, tc := range cases {
		r := abcd()
		if err := r.ReorderComponent(tc.from, tc.to); err != nil {
			t.Fatalf("reorder %d->%d: %v", tc.from, tc.to, err)
		}
		got := ""
		for _, n := range names(r) {
			got += n
		}
		if got != tc.want {
			t.Errorf("reorder %d->%d: got %s, expected %s", tc.from, tc.to, got, tc.want)
		}
	}

	r := abcd()
	if err := r.ReorderComponent(0, 4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := r.ReorderComponent(-1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestComponentEditing(t *testing.T) {
	r := abcd()
	r.AddComponent(RoadComponent{Name: "e", Width: 1, Height: 0.1})
	if err := r.ReplaceComponent(0, RoadComponent{Name: "z", Width: 1, Height: 0.1}); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteComponent(2); err != nil {
		t.Fatal(err)
	}
	got := names(r)
	want := []string{"z", "b", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, expected %v", got, want)
		}
	}
	if err := r.DeleteComponent(10); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestComponentOffsets(t *testing.T) {
	r := abcd()
	if w := r.TotalWidth(); w != 10 {
		t.Fatalf("expected total width 10, got %v", w)
	}
	want := []float64{-4.5, -3, -0.5, 3}
	for i, off := range r.ComponentOffsets() {
		if math.Abs(off-want[i]) > 1e-12 {
			t.Errorf("component %d: offset %v, expected %v", i, off, want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default road should validate: %v", err)
	}
	bad := []*RoadData{
		{Name: " ", Components: Default().Components},
		{Name: "empty"},
		{Name: "flat", Components: []RoadComponent{{Name: "x", Width: 2, Height: 0}}},
		{Name: "mark", Components: []RoadComponent{{Name: "x", Width: 2, Height: 1}}, Markings: []RoadMarking{{SegmentWidth: 0.1, XPosition: 5}}},
	}
	for _, r := range bad {
		if err := r.Validate(); !errors.Is(err, ErrInvalidRoad) {
			t.Errorf("road %q: expected ErrInvalidRoad, got %v", r.Name, err)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := Default()
	c := r.Clone()
	c.Components[0].Width = 99
	c.Markings = nil
	if r.Components[0].Width == 99 || len(r.Markings) == 0 {
		t.Error("clone should not share state with the original")
	}
}
