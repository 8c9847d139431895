package physics

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

// BodyState is the frozen view of a body inside a Snapshot.
type BodyState struct {
	ID       int
	Label    string
	Tag      Tag
	Static   bool
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Heading  float64
	Shape    geometry.Shape
}

// Intersection is one body crossed by a raycast, at its entry point.
type Intersection struct {
	Point    geometry.Vector2D
	Distance float64 // from the ray origin
	Body     BodyState
}

// Snapshot is the read-only world as of the end of the previous tick.
// Body states are copied when the snapshot is taken, so whatever the drivers
// write onto their live bodies during the tick (velocity, heading) is not
// seen by the other drivers. Raycasts run against the space geometry, which
// only changes on World.Step: a snapshot is valid until the next Step.
type Snapshot struct {
	space  *cp.Space
	states []BodyState
	byID   map[int]int
}

func newSnapshot(w *World) *Snapshot {
	s := &Snapshot{
		space:  w.space,
		states: make([]BodyState, 0, len(w.bodies)),
		byID:   make(map[int]int, len(w.bodies)),
	}
	for _, b := range w.bodies {
		if b.shape == nil {
			continue
		}
		s.byID[b.id] = len(s.states)
		s.states = append(s.states, BodyState{
			ID:       b.id,
			Label:    b.Label,
			Tag:      b.Tag,
			Static:   b.Static,
			Position: b.Position(),
			Velocity: b.Velocity(),
			Heading:  b.heading,
			Shape:    b.Shape,
		})
	}
	return s
}

// Len returns the number of bodies in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.states)
}

// Body returns the frozen state of the body with the given id.
func (s *Snapshot) Body(id int) (BodyState, bool) {
	i, ok := s.byID[id]
	if !ok {
		return BodyState{}, false
	}
	return s.states[i], true
}

// Raycast returns every body whose outline the segment origin->end enters,
// sensors included: filtering is up to the caller. A body containing origin
// is not entered and is not reported. Results are ordered by body
// registration, so iteration order is stable across calls.
func (s *Snapshot) Raycast(origin, end geometry.Vector2D) []Intersection {
	length := origin.DistanceTo(end)
	if length < geometry.Epsilon || len(s.states) == 0 {
		return nil
	}
	var hits []Intersection
	s.space.SegmentQuery(toCP(origin), toCP(end), 0, cp.SHAPE_FILTER_ALL,
		func(shape *cp.Shape, point, _ cp.Vector, alpha float64, _ interface{}) {
			b, ok := shape.Body().UserData.(*Body)
			if !ok {
				return
			}
			i, ok := s.byID[b.id]
			if !ok {
				// registered after the snapshot
				return
			}
			st := s.states[i]
			if tag, ok := shape.UserData.(Tag); ok {
				st.Tag = tag
			}
			hits = append(hits, Intersection{
				Point:    fromCP(point),
				Distance: alpha * length,
				Body:     st,
			})
		}, nil)
	slices.SortFunc(hits, func(x, y Intersection) int {
		return cmp.Compare(x.Body.ID, y.Body.ID)
	})
	return hits
}
