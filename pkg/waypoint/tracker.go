// Package waypoint follows a cyclic sequence of track checkpoints.
package waypoint

import (
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

// DefaultThreshold is the distance under which a waypoint counts as reached.
const DefaultThreshold = 50.0

// Tracker holds the index of the waypoint a car is heading to.
// The waypoint list is shared and never modified.
type Tracker struct {
	points    []geometry.Vector2D
	threshold float64
	index     int
	passed    int
}

// NewTracker starts at waypoint 0. A threshold <= 0 uses DefaultThreshold.
func NewTracker(points []geometry.Vector2D, threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{points: points, threshold: threshold}
}

// Len returns the number of waypoints.
func (t *Tracker) Len() int { return len(t.points) }

// Index returns the index of the active waypoint.
func (t *Tracker) Index() int { return t.index }

// Passed returns how many waypoints were reached since the last Reset.
func (t *Tracker) Passed() int { return t.passed }

// Threshold returns the reach distance.
func (t *Tracker) Threshold() float64 { return t.threshold }

// Target returns the active waypoint, false when there is none.
func (t *Tracker) Target() (geometry.Vector2D, bool) {
	if len(t.points) == 0 {
		return geometry.Zero, false
	}
	return t.points[t.index], true
}

// Check advances to the next waypoint, wrapping, when pos is within the
// threshold of the active one. It advances at most one index per call, so a
// car jumping past several waypoints still visits each of them in order.
func (t *Tracker) Check(pos geometry.Vector2D) bool {
	target, ok := t.Target()
	if !ok || !pos.IsFinite() {
		return false
	}
	if pos.DistanceSquaredTo(target) >= t.threshold*t.threshold {
		return false
	}
	t.index = (t.index + 1) % len(t.points)
	t.passed++
	return true
}

// Goal returns the vector from pos to the active waypoint, false when there
// is no waypoint.
func (t *Tracker) Goal(pos geometry.Vector2D) (geometry.Vector2D, bool) {
	target, ok := t.Target()
	if !ok {
		return geometry.Zero, false
	}
	return target.Sub(pos), true
}

// Reset returns to waypoint 0.
func (t *Tracker) Reset() {
	t.index = 0
	t.passed = 0
}
