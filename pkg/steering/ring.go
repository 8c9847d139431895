package steering

import (
	"math"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

// DefaultRays is the size of the reference ray ring.
const DefaultRays = 16

// Ring is the fixed set of steering directions of a driver.
// It never changes after construction; only the frame it is read in does.
type Ring struct {
	dirs     []geometry.Vector2D
	relative bool
}

// NewRing returns n unit directions evenly spaced over a full turn, starting
// at angle 0, expressed in the world frame.
func NewRing(n int) Ring {
	dirs := make([]geometry.Vector2D, n)
	for i := range dirs {
		dirs[i] = geometry.FromAngle(float64(i) * 2 * math.Pi / float64(n))
	}
	return Ring{dirs: dirs}
}

// NewCone returns directions at the given angles (degrees) relative to the
// car heading: 0 is straight ahead, negative is to the left on screen.
func NewCone(anglesDeg ...float64) Ring {
	dirs := make([]geometry.Vector2D, len(anglesDeg))
	for i, a := range anglesDeg {
		dirs[i] = geometry.FromAngle(geometry.DegToRad(a))
	}
	return Ring{dirs: dirs, relative: true}
}

// LegacyCone is the seven-ray forward cone of the first driver iteration.
func LegacyCone() Ring {
	return NewCone(-90, -60, -30, 0, 30, 60, 90)
}

// Len returns the number of rays.
func (r Ring) Len() int {
	return len(r.dirs)
}

// Relative reports whether directions rotate with the car heading.
func (r Ring) Relative() bool {
	return r.relative
}

// Directions writes the world-frame directions for a car facing heading into
// dst (reused when large enough) and returns it.
func (r Ring) Directions(heading float64, dst []geometry.Vector2D) []geometry.Vector2D {
	if cap(dst) < len(r.dirs) {
		dst = make([]geometry.Vector2D, len(r.dirs))
	}
	dst = dst[:len(r.dirs)]
	if !r.relative {
		copy(dst, r.dirs)
		return dst
	}
	for i, d := range r.dirs {
		dst[i] = d.Rotate(heading)
	}
	return dst
}
