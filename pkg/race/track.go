package race

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
)

// Obstacle is one static piece of track geometry.
type Obstacle struct {
	Label   string
	Pos     geometry.Vector2D
	Heading float64
	Shape   geometry.Shape
}

// Track is the static layout of a circuit: checkpoints, walls and the lap line.
type Track struct {
	Waypoints []geometry.Vector2D
	Obstacles []Obstacle
	LapLine   Obstacle
}

// GridSlot is a starting position.
type GridSlot struct {
	Label   string
	Pos     geometry.Vector2D
	Heading float64
}

const (
	poleX    = 630.0
	insideY  = 95.0
	outsideY = 70.0
	gridGap  = 40.0
)

// gridSlots is the two-row starting grid, every car facing left.
var gridSlots = func() []GridSlot {
	slots := make([]GridSlot, 0, 11)
	slots = append(slots, GridSlot{Label: "car1", Pos: geometry.NewVector(poleX, outsideY), Heading: math.Pi})
	for row := 1; row <= 5; row++ {
		x := poleX + gridGap*float64(row)
		slots = append(slots,
			GridSlot{Label: fmt.Sprintf("car%d", 2*row), Pos: geometry.NewVector(x, insideY), Heading: math.Pi},
			GridSlot{Label: fmt.Sprintf("car%d", 2*row+1), Pos: geometry.NewVector(x, outsideY), Heading: math.Pi},
		)
	}
	return slots
}()

// Grid returns the first n starting slots.
func Grid(n int) []GridSlot {
	n = max(0, min(n, len(gridSlots)))
	return append([]GridSlot(nil), gridSlots[:n]...)
}

// DefaultTrack is the reference oval: outer walls, a divider down the middle,
// a row of bumpers under the start straight and an arc of bumpers in the top
// right corner. Cars run it anticlockwise on screen, crossing the lap line
// right to left.
func DefaultTrack() *Track {
	t := &Track{
		Waypoints: []geometry.Vector2D{
			{X: 250, Y: 250},
			{X: 190, Y: 322},
			{X: 234, Y: 400},
			{X: 900, Y: 450},
			{X: 1280, Y: 423},
			{X: 1310, Y: 325},
			{X: 1280, Y: 150},
			{X: 600, Y: 90},
		},
		LapLine: Obstacle{
			Label: "lapLine",
			Pos:   geometry.NewVector(600, 87),
			Shape: geometry.NewRect(8, 74),
		},
	}

	// Top bumpers, under the start straight
	t.Obstacles = append(t.Obstacles, lineLayout("bumper", geometry.NewVector(600, 145), 500, 20, 20)...)
	// Top right corner
	t.Obstacles = append(t.Obstacles, arcLayout("bumper", geometry.NewVector(1100, 145), geometry.NewVector(1250, 320), 120, 15, 20)...)
	// Middle divider
	for i := range 20 {
		t.Obstacles = append(t.Obstacles, Obstacle{
			Label: "bumper",
			Pos:   geometry.NewVector(275+50*float64(i), 325),
			Shape: geometry.NewRect(40, 40),
		})
	}
	// Outer walls
	for i := range 15 {
		off := 50 + 100*float64(i)
		t.Obstacles = append(t.Obstacles,
			Obstacle{Label: "wall", Pos: geometry.NewVector(off, 25), Shape: geometry.NewRect(100, 50)},
			Obstacle{Label: "wall", Pos: geometry.NewVector(off, 625), Shape: geometry.NewRect(100, 50)},
			Obstacle{Label: "wall", Pos: geometry.NewVector(25, off), Shape: geometry.NewRect(50, 100)},
			Obstacle{Label: "wall", Pos: geometry.NewVector(1475, off), Shape: geometry.NewRect(50, 100)},
		)
	}
	return t
}

// lineLayout places count squares of the given size evenly from start along
// +x over length.
func lineLayout(label string, start geometry.Vector2D, length float64, count int, size float64) []Obstacle {
	out := make([]Obstacle, 0, count)
	step := 0.0
	if count > 1 {
		step = length / float64(count-1)
	}
	for i := range count {
		out = append(out, Obstacle{
			Label: label,
			Pos:   start.Add(geometry.NewVector(step*float64(i), 0)),
			Shape: geometry.NewRect(size, size),
		})
	}
	return out
}

// arcLayout places count squares on the circular arc from a to b whose
// center sits arcHeight away from the chord midpoint, each square turned to
// follow the arc.
func arcLayout(label string, a, b geometry.Vector2D, arcHeight float64, count int, size float64) []Obstacle {
	chord := b.Sub(a)
	perp := chord.Perp().Normalize()
	center := a.Add(b).Mul(0.5).Add(perp.Mul(arcHeight))
	radius := center.DistanceTo(a)
	from := center.AngleTo(a)
	delta := geometry.AngleDiff(from, center.AngleTo(b))

	out := make([]Obstacle, 0, count)
	for i := range count {
		t := 0.5
		if count > 1 {
			t = float64(i) / float64(count-1)
		}
		angle := from + delta*t
		out = append(out, Obstacle{
			Label:   label,
			Pos:     center.Add(geometry.NewVectorPolar(radius, angle)),
			Heading: angle + math.Pi/2,
			Shape:   geometry.NewRect(size, size),
		})
	}
	return out
}

// Build registers the track in w as static bodies and returns the lap line
// sensor.
func (t *Track) Build(w *physics.World) *physics.Body {
	for _, o := range t.Obstacles {
		b := physics.NewBody(o.Label, physics.WallTag(), o.Shape, o.Pos, true)
		b.SetHeading(o.Heading)
		w.Add(b)
	}
	return w.Add(physics.NewBody(t.LapLine.Label, physics.SensorTag(), t.LapLine.Shape, t.LapLine.Pos, true))
}
