package server

import (
	"cmp"
	"slices"

	. "RoadEditor/internal/editor"
	"RoadEditor/internal/geom"

	"github.com/samber/lo"
)

// arcSamples is how many points of each curve are sent to clients.
const arcSamples = 17

type vec3DTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVec3DTO(v geom.Vec3) vec3DTO { return vec3DTO{X: v.X(), Y: v.Y(), Z: v.Z()} }

func (v vec3DTO) vec() geom.Vec3 { return geom.Vec3{v.X, v.Y, v.Z} }

type nodeDTO struct {
	ID       int64   `json:"id"`
	Position vec3DTO `json:"position"`
}

type arcDTO struct {
	Center     vec3DTO   `json:"center"`
	StartAngle float64   `json:"start_angle"`
	DeltaAngle float64   `json:"delta_angle"`
	Radius     float64   `json:"radius"`
	Direction  string    `json:"direction"`
	Length     float64   `json:"length"`
	Points     []vec3DTO `json:"points"`
}

type sectionDTO struct {
	ID             int64   `json:"id"`
	Start          int64   `json:"start"`
	End            int64   `json:"end"`
	Variant        string  `json:"variant"`
	Road           string  `json:"road,omitempty"`
	Width          float64 `json:"width"`
	StartDirection vec3DTO `json:"start_direction"`
	EndDirection   vec3DTO `json:"end_direction"`
	Arc            *arcDTO `json:"arc,omitempty"`
}

type endDTO struct {
	Position  vec3DTO  `json:"position"`
	Snapped   vec3DTO  `json:"snapped"`
	Direction *vec3DTO `json:"direction,omitempty"`
	Node      *int64   `json:"node,omitempty"`
}

type sessionDTO struct {
	Phase   string  `json:"phase"`
	Variant string  `json:"variant"`
	Tool    bool    `json:"tool"`
	Road    string  `json:"road,omitempty"`
	Start   *endDTO `json:"start,omitempty"`
	End     *endDTO `json:"end,omitempty"`
	Arc     *arcDTO `json:"arc,omitempty"`
}

type editDTO struct {
	T       float64 `json:"t"`
	Editor  string  `json:"editor"`
	Kind    string  `json:"kind"`
	Section int64   `json:"section"`
}

type editorDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Self  bool   `json:"self"`
	Built int    `json:"built"`
}

type stateDTO struct {
	Room     string       `json:"room"`
	Now      float64      `json:"now"`
	Editors  []editorDTO  `json:"editors"`
	Nodes    []nodeDTO    `json:"nodes"`
	Sections []sectionDTO `json:"sections"`
	Session  *sessionDTO  `json:"session,omitempty"`
	Edits    []editDTO    `json:"edits"`
}

func toArcDTO(a *geom.CircularArc) *arcDTO {
	if a == nil {
		return nil
	}
	dto := &arcDTO{
		Center:     toVec3DTO(a.Center),
		StartAngle: a.StartAngle,
		DeltaAngle: a.DeltaAngle,
		Radius:     a.Radius,
		Direction:  a.CurveDirection().String(),
		Length:     a.Length(),
		Points:     make([]vec3DTO, 0, arcSamples),
	}
	for _, tr := range a.TransformsAlongArc(arcSamples, geom.FacingTravel) {
		dto.Points = append(dto.Points, toVec3DTO(tr.Translation))
	}
	return dto
}

func toEndDTO(e SectionEndBeingDrawn) *endDTO {
	dto := &endDTO{
		Position: toVec3DTO(e.Position),
		Snapped:  toVec3DTO(e.SnappedPosition()),
	}
	if e.Direction != nil {
		d := toVec3DTO(*e.Direction)
		dto.Direction = &d
	}
	if e.Node != nil {
		id := int64(e.Node.ID)
		dto.Node = &id
	}
	return dto
}

func toSessionDTO(s *DrawingSession) *sessionDTO {
	if s == nil {
		return nil
	}
	dto := &sessionDTO{
		Phase:   s.Phase().String(),
		Variant: s.Variant.String(),
		Tool:    s.ToolActive,
	}
	if s.Road != nil {
		dto.Road = s.Road.Name
	}
	if d := s.Drawing; d != nil {
		dto.Start = toEndDTO(d.Start)
		dto.End = toEndDTO(d.End)
		dto.Arc = toArcDTO(d.Shape.Arc)
	}
	return dto
}

func toSectionDTO(w *World, id EntityID) sectionDTO {
	s := w.Section(id)
	dto := sectionDTO{
		ID:             int64(id),
		Start:          int64(s.Start),
		End:            int64(s.End),
		Variant:        s.Shape.Variant.String(),
		StartDirection: toVec3DTO(s.StartDirection),
		EndDirection:   toVec3DTO(s.EndDirection),
		Arc:            toArcDTO(s.Shape.Arc),
	}
	if s.Road != nil {
		dto.Road = s.Road.Name
		dto.Width = s.Road.TotalWidth()
	}
	return dto
}

// buildStateLocked snapshots room for one editor. The caller holds
// room.Mu.
func buildStateLocked(room *Room, editorID string) stateDTO {
	editors := lo.MapToSlice(room.Editors, func(id string, ed *Editor) editorDTO {
		return editorDTO{ID: id, Name: ed.Name, Self: id == editorID, Built: ed.Built}
	})
	slices.SortFunc(editors, func(a, b editorDTO) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	state := stateDTO{
		Room:    room.ID,
		Now:     room.Now,
		Editors: editors,
		Nodes: lo.Map(room.Network.Nodes(), func(n NodeRef, _ int) nodeDTO {
			return nodeDTO{ID: int64(n.ID), Position: toVec3DTO(n.Position)}
		}),
		Sections: lo.Map(room.Network.Sections(), func(id EntityID, _ int) sectionDTO {
			return toSectionDTO(room.World, id)
		}),
		Edits: lo.Map(room.History.Recent(20), func(r EditRecord, _ int) editDTO {
			return editDTO{T: r.T, Editor: r.Editor, Kind: string(r.Kind), Section: int64(r.Section)}
		}),
	}
	if ed, ok := room.Editors[editorID]; ok {
		state.Session = toSessionDTO(ed.Session)
	}
	return state
}
