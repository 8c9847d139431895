package driver

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/perception"
)

// DebugSnapshot is a copy of the context fields of the last tick, for the
// viewer overlay. Changing it has no effect on the driver.
type DebugSnapshot struct {
	Agent      string
	Origin     geometry.Vector2D
	RayLength  float64
	Directions []geometry.Vector2D
	Interest   []float64
	Danger     []float64
	Hits       []perception.ObstacleHit
	Chosen     geometry.Vector2D
	Goal       geometry.Vector2D // normalized
	Target     geometry.Vector2D // active waypoint
	HasTarget  bool
	Braking    bool
}

// Debug returns the diagnostic snapshot, false when debug is off or the
// driver has not ticked yet.
func (d *Driver) Debug() (DebugSnapshot, bool) {
	if !d.debug || d.ticks == 0 {
		return DebugSnapshot{}, false
	}
	snap := DebugSnapshot{
		Agent:      d.agent,
		Origin:     d.origin,
		RayLength:  d.settings.RayLength,
		Directions: slices.Clone(d.dirs),
		Interest:   slices.Clone(d.engine.Interest()),
		Danger:     slices.Clone(d.engine.Danger()),
		Hits:       slices.Clone(d.hits),
		Chosen:     d.engine.Chosen(),
		Goal:       d.engine.Goal(),
		Braking:    d.braking,
	}
	snap.Target, snap.HasTarget = d.tracker.Target()
	return snap, true
}
