package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

// BodyKind classifies what a body is for the drivers perceiving it.
type BodyKind uint8

const (
	// KindWall is immovable track geometry (walls, bumpers).
	KindWall BodyKind = iota
	// KindAgent is a vehicle; Tag.Agent carries its identity.
	KindAgent
	// KindSensor is a non-colliding trigger region such as the lap line.
	KindSensor
)

func (k BodyKind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindAgent:
		return "agent"
	case KindSensor:
		return "sensor"
	default:
		return fmt.Sprintf("BodyKind(%d)", uint8(k))
	}
}

// Tag is attached to every body at registration time.
type Tag struct {
	Kind  BodyKind
	Agent string // set only for KindAgent
}

// WallTag tags static track geometry.
func WallTag() Tag { return Tag{Kind: KindWall} }

// AgentTag tags the body driven by the agent id.
func AgentTag(id string) Tag { return Tag{Kind: KindAgent, Agent: id} }

// SensorTag tags a trigger region.
func SensorTag() Tag { return Tag{Kind: KindSensor} }

// agentMass is the same for every car, so collisions split evenly.
const agentMass = 1.0

// Body is a rigid body registered in a World, backed by a chipmunk body and
// its single shape. Static bodies never move; sensors never collide.
type Body struct {
	id     int
	Label  string
	Tag    Tag
	Shape  geometry.Shape
	Static bool

	body    *cp.Body
	shape   *cp.Shape
	heading float64
	world   *World
}

// NewBody creates an unregistered body at pos.
func NewBody(label string, tag Tag, shape geometry.Shape, pos geometry.Vector2D, static bool) *Body {
	b := &Body{
		id:     -1,
		Label:  label,
		Tag:    tag,
		Shape:  shape,
		Static: static,
	}
	if static {
		b.body = cp.NewStaticBody()
	} else {
		// infinite moment: cars slide, they never spin
		b.body = cp.NewBody(agentMass, math.Inf(1))
	}
	b.body.UserData = b
	b.body.SetPosition(toCP(pos))
	b.shape = newShape(b.body, shape)
	if b.shape != nil {
		b.shape.UserData = tag
		b.shape.SetSensor(tag.Kind == KindSensor)
		b.shape.SetFriction(0)
		b.shape.SetElasticity(0)
	}
	return b
}

func newShape(body *cp.Body, s geometry.Shape) *cp.Shape {
	switch s := s.(type) {
	case geometry.Circle:
		return cp.NewCircle(body, s.Radius, cp.Vector{})
	case geometry.Rect:
		return cp.NewBox(body, s.W, s.H, 0)
	default:
		return nil
	}
}

func toCP(v geometry.Vector2D) cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

func fromCP(v cp.Vector) geometry.Vector2D { return geometry.Vector2D{X: v.X, Y: v.Y} }

// ID is the registration sequence number assigned by the World (-1 before Add).
func (b *Body) ID() int { return b.id }

func (b *Body) Position() geometry.Vector2D { return fromCP(b.body.Position()) }

func (b *Body) Velocity() geometry.Vector2D { return fromCP(b.body.Velocity()) }

// Heading is the body rotation in radians.
func (b *Body) Heading() float64 { return b.heading }

// SetVelocity sets the velocity in world units per second.
// Static bodies and non-finite velocities are ignored.
func (b *Body) SetVelocity(v geometry.Vector2D) {
	if b.Static || !v.IsFinite() {
		return
	}
	b.body.SetVelocity(v.X, v.Y)
}

// SetHeading sets the body rotation in radians. Only static outlines turn
// with it; a car heading is a facing, its circle does not rotate.
func (b *Body) SetHeading(angle float64) {
	b.heading = geometry.WrapAngle(angle)
	if b.Static {
		b.body.SetAngle(b.heading)
		b.reindex()
	}
}

// SetPosition teleports the body.
func (b *Body) SetPosition(p geometry.Vector2D) {
	b.body.SetPosition(toCP(p))
	b.reindex()
}

func (b *Body) reindex() {
	if b.world != nil && b.shape != nil {
		b.world.space.ReindexShapesForBody(b.body)
	}
}

// Speed returns the magnitude of the velocity.
func (b *Body) Speed() float64 {
	return b.Velocity().Len()
}

// Entered reports whether the move from->to enters the outline of b. A move
// starting inside does not count, so a body crossing b is reported once.
func (b *Body) Entered(from, to geometry.Vector2D) bool {
	if b.world == nil || b.shape == nil {
		return false
	}
	var info cp.SegmentQueryInfo
	return b.shape.SegmentQuery(toCP(from), toCP(to), 0, &info)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s#%d[%s] at %s", b.Label, b.id, b.Tag.Kind, b.Position())
}
