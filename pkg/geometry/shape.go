package geometry

import "math"

// Shape is a collision outline in its body's local frame, centered on the
// body position and unrotated. The physics engine builds its own shape from
// it; here it only describes size for layout and drawing.
type Shape interface {
	// Extent returns the distance from the center to the farthest point of
	// the outline, the radius swept by the shape at any rotation.
	Extent() float64
}

// Circle is a disc centered on the local origin.
type Circle struct {
	Radius float64
}

var _ Shape = Circle{}

func (c Circle) Extent() float64 { return c.Radius }

// Rect is a W x H box centered on the local origin.
type Rect struct {
	W, H float64
}

var _ Shape = Rect{}

// NewRect returns the w x h rectangle centered on the local origin.
func NewRect(w, h float64) Rect {
	return Rect{W: w, H: h}
}

func (r Rect) Extent() float64 { return math.Hypot(r.W/2, r.H/2) }

// Vertices returns the corners counter-clockwise, starting bottom left.
func (r Rect) Vertices() []Vector2D {
	hw, hh := r.W/2, r.H/2
	return []Vector2D{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
}
