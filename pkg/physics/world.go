package physics

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// World owns the bodies of a race on top of a chipmunk space without gravity.
// Walls and bumpers are static shapes, cars are dynamic circles and the lap
// line is a sensor.
type World struct {
	space  *cp.Space
	bodies []*Body
	nextID int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &World{space: space}
}

// Add registers b and assigns its id. Ids grow in registration order.
func (w *World) Add(b *Body) *Body {
	b.id = w.nextID
	w.nextID++
	b.world = w
	w.space.AddBody(b.body)
	if b.shape != nil {
		w.space.AddShape(b.shape)
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Remove unregisters b. It reports whether b was registered.
func (w *World) Remove(b *Body) bool {
	i := slices.Index(w.bodies, b)
	if i < 0 {
		return false
	}
	if b.shape != nil {
		w.space.RemoveShape(b.shape)
	}
	w.space.RemoveBody(b.body)
	b.world = nil
	w.bodies = slices.Delete(w.bodies, i, i+1)
	return true
}

// Bodies returns the registered bodies in registration order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Snapshot freezes the current state of every body for this tick's queries.
func (w *World) Snapshot() *Snapshot {
	return newSnapshot(w)
}

// substeps splits every Step. Drivers set velocities once per tick: the
// contacts of the first substep cancel what pushes into a wall and the
// following ones only correct the overlap.
const substeps = 4

// Step advances the space by dt seconds: dynamic bodies move, then contacts
// push them apart. A non-positive dt does nothing.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	h := dt / substeps
	for i := 0; i < substeps; i++ {
		w.space.Step(h)
	}
}
