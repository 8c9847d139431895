// Package perception turns raycasts against the world snapshot into one
// classified obstacle hit per steering ray.
package perception

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
)

// DefaultUrgentSpeed is the speed under which another car counts as stopped.
const DefaultUrgentSpeed = 0.5

// HitKind classifies the nearest qualifying body on a ray.
type HitKind uint8

const (
	HitNone HitKind = iota
	HitWall
	HitAgent
)

func (k HitKind) String() string {
	switch k {
	case HitNone:
		return "none"
	case HitWall:
		return "wall"
	case HitAgent:
		return "agent"
	default:
		return fmt.Sprintf("HitKind(%d)", uint8(k))
	}
}

// ObstacleHit is the per-ray result of a Sample. Kind is HitNone when
// nothing qualifying lies within the ray length.
type ObstacleHit struct {
	Kind     HitKind
	Distance float64
	Point    geometry.Vector2D
	BodyID   int
	Agent    string // other car id, HitAgent only
	Urgent   bool   // other car slower than the urgent speed
}

// Present reports whether the ray hit something.
func (h ObstacleHit) Present() bool {
	return h.Kind != HitNone
}

// Raycaster is the spatial query surface perception reads from.
// physics.Snapshot implements it.
type Raycaster interface {
	Raycast(origin, end geometry.Vector2D) []physics.Intersection
}

// Self identifies the casting car so its own body is never reported.
type Self struct {
	BodyID int
	Agent  string
}

// Sampler casts rays on behalf of one car.
type Sampler struct {
	Self        Self
	UrgentSpeed float64
}

// NewSampler creates a sampler for the given car.
func NewSampler(self Self, urgentSpeed float64) *Sampler {
	return &Sampler{Self: self, UrgentSpeed: urgentSpeed}
}

// Sample casts one ray of rayLength from origin along each direction and
// returns the nearest qualifying hit per ray, index aligned with dirs.
// dst is reused when large enough.
func (s *Sampler) Sample(q Raycaster, origin geometry.Vector2D, dirs []geometry.Vector2D, rayLength float64, dst []ObstacleHit) []ObstacleHit {
	if cap(dst) < len(dirs) {
		dst = make([]ObstacleHit, len(dirs))
	}
	dst = dst[:len(dirs)]
	for i, dir := range dirs {
		dst[i] = ObstacleHit{}
		if q == nil || rayLength <= 0 {
			continue
		}
		end := origin.Add(dir.Mul(rayLength))
		dst[i] = s.nearest(q.Raycast(origin, end))
	}
	return dst
}

// nearest keeps the closest qualifying intersection; on equal distances the
// first one in query order wins.
func (s *Sampler) nearest(hits []physics.Intersection) ObstacleHit {
	best := ObstacleHit{}
	for _, h := range hits {
		kind, ok := s.classify(h.Body)
		if !ok {
			continue
		}
		if best.Present() && h.Distance >= best.Distance {
			continue
		}
		best = ObstacleHit{
			Kind:     kind,
			Distance: h.Distance,
			Point:    h.Point,
			BodyID:   h.Body.ID,
		}
		if kind == HitAgent {
			best.Agent = h.Body.Tag.Agent
			best.Urgent = h.Body.Velocity.Len() < s.UrgentSpeed
		}
	}
	return best
}

func (s *Sampler) classify(b physics.BodyState) (HitKind, bool) {
	if b.ID == s.Self.BodyID {
		return HitNone, false
	}
	switch b.Tag.Kind {
	case physics.KindAgent:
		if b.Tag.Agent == s.Self.Agent {
			return HitNone, false
		}
		return HitAgent, true
	case physics.KindWall:
		return HitWall, true
	default:
		return HitNone, false
	}
}
