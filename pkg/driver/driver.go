// Package driver runs the context-steering pipeline for one car: waypoint
// check, interest, perception and danger, resolution, integration and the
// write back onto the car body.
package driver

import (
	"errors"
	"reflect"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/perception"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/steering"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/waypoint"
)

// ErrNoBody is returned by Update when no body is bound to the driver.
var ErrNoBody = errors.New("driver: no physics body bound")

// Body is the car state a driver reads and commands. *physics.Body
// implements it.
type Body interface {
	ID() int
	Position() geometry.Vector2D
	Velocity() geometry.Vector2D
	Heading() float64
	SetVelocity(v geometry.Vector2D)
	SetHeading(angle float64)
}

// Settings is the per-driver tuning.
type Settings struct {
	Rays              int
	Cone              bool // use the legacy forward cone instead of the full ring
	RayLength         float64
	MaxSpeed          float64
	SteerGain         float64
	BrakeFactor       float64
	UrgentSpeed       float64
	WaypointThreshold float64
	Fallback          geometry.Vector2D
	Brake             steering.BrakeFunc
}

// DefaultSettings returns the reference tuning.
func DefaultSettings() Settings {
	return Settings{
		Rays:              steering.DefaultRays,
		RayLength:         150,
		MaxSpeed:          steering.DefaultMaxSpeed,
		SteerGain:         steering.DefaultSteerGain,
		BrakeFactor:       steering.DefaultBrakeFactor,
		UrgentSpeed:       perception.DefaultUrgentSpeed,
		WaypointThreshold: waypoint.DefaultThreshold,
		Fallback:          steering.DefaultFallbackHeading,
		Brake:             steering.NeverBrake,
	}
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger, log.DiscardLogger by default.
func WithLogger(l log.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDebug enables the diagnostic snapshot.
func WithDebug(enabled bool) Option {
	return func(d *Driver) { d.debug = enabled }
}

// Driver steers one car. It is not safe for concurrent use; a race updates
// its drivers one after the other.
type Driver struct {
	agent    string
	body     Body
	settings Settings

	ring       steering.Ring
	engine     *steering.Engine
	sampler    *perception.Sampler
	tracker    *waypoint.Tracker
	integrator steering.Integrator

	origin  geometry.Vector2D
	dirs    []geometry.Vector2D
	hits    []perception.ObstacleHit
	braking bool
	ticks   int

	debug  bool
	logger log.Logger
}

// New creates the driver of agent following track. body may be nil and bound
// later with Bind.
func New(agent string, body Body, track []geometry.Vector2D, s Settings, opts ...Option) *Driver {
	if s.Rays <= 0 {
		s.Rays = steering.DefaultRays
	}
	if s.Brake == nil {
		s.Brake = steering.NeverBrake
	}
	ring := steering.NewRing(s.Rays)
	if s.Cone {
		ring = steering.LegacyCone()
	}
	d := &Driver{
		agent:    agent,
		settings: s,
		ring:     ring,
		engine:   steering.NewEngine(ring.Len(), s.Fallback),
		sampler:  perception.NewSampler(perception.Self{BodyID: -1, Agent: agent}, s.UrgentSpeed),
		tracker:  waypoint.NewTracker(track, s.WaypointThreshold),
		integrator: steering.Integrator{
			MaxSpeed:    s.MaxSpeed,
			SteerGain:   s.SteerGain,
			BrakeFactor: s.BrakeFactor,
		},
		dirs:   make([]geometry.Vector2D, ring.Len()),
		hits:   make([]perception.ObstacleHit, ring.Len()),
		logger: log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Bind(body)
	return d
}

// Bind attaches the driver to a body; nil detaches it, typed nil pointers
// included.
func (d *Driver) Bind(body Body) {
	if isNilBody(body) {
		body = nil
	}
	d.body = body
	d.sampler.Self.BodyID = -1
	if body != nil {
		d.sampler.Self.BodyID = body.ID()
	}
}

// isNilBody also catches a nil *physics.Body stored in the interface.
func isNilBody(b Body) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// Update runs one tick against q, the frozen world of the previous tick.
// Without a body it does nothing and returns ErrNoBody.
func (d *Driver) Update(q perception.Raycaster, dt float64) error {
	if d.body == nil {
		d.logger.Warnf("driver %s: no body bound, skipping tick", d.agent)
		return ErrNoBody
	}
	d.ticks++
	pos := d.body.Position()
	heading := d.body.Heading()
	d.origin = pos

	if d.tracker.Check(pos) {
		d.logger.Debugf("driver %s: reached waypoint, heading to #%d", d.agent, d.tracker.Index())
	}
	goal, hasGoal := d.tracker.Goal(pos)

	d.dirs = d.ring.Directions(heading, d.dirs)
	d.engine.SetInterest(goal, hasGoal, d.dirs)

	d.hits = d.sampler.Sample(q, pos, d.dirs, d.settings.RayLength, d.hits)
	d.engine.SetDanger(d.hits, d.settings.RayLength)

	chosen := d.engine.Resolve(d.dirs)

	braking := d.settings.Brake(steering.BrakeInput{
		Directions: d.dirs,
		Chosen:     chosen,
		Hits:       d.hits,
		Danger:     d.engine.Danger(),
	})
	if braking && !d.braking {
		d.logger.Debugf("driver %s: braking", d.agent)
	}
	d.braking = braking

	vel, newHeading := d.integrator.Integrate(chosen, d.body.Velocity(), heading, dt, braking)
	d.body.SetVelocity(vel)
	d.body.SetHeading(newHeading)
	return nil
}

// Reset returns the driver to its starting state: first waypoint, fallback
// direction. The bound body is kept.
func (d *Driver) Reset() {
	d.tracker.Reset()
	d.engine = steering.NewEngine(d.ring.Len(), d.settings.Fallback)
	d.braking = false
	d.ticks = 0
	for i := range d.hits {
		d.hits[i] = perception.ObstacleHit{}
	}
}

// Agent returns the car id.
func (d *Driver) Agent() string { return d.agent }

// Body returns the bound body, nil when detached.
func (d *Driver) Body() Body { return d.body }

// Settings returns the current tuning.
func (d *Driver) Settings() Settings { return d.settings }

// Waypoint returns the index of the active waypoint.
func (d *Driver) Waypoint() int { return d.tracker.Index() }

// WaypointsPassed returns the number of waypoints reached since the start.
func (d *Driver) WaypointsPassed() int { return d.tracker.Passed() }

// Chosen returns the direction resolved at the last tick.
func (d *Driver) Chosen() geometry.Vector2D { return d.engine.Chosen() }

// Braking reports whether the brake predicate fired at the last tick.
func (d *Driver) Braking() bool { return d.braking }

// SetMaxSpeed changes the top speed from the next tick on.
func (d *Driver) SetMaxSpeed(v float64) {
	d.settings.MaxSpeed = v
	d.integrator.MaxSpeed = v
}

// SetSteerGain changes the smoothing gain from the next tick on.
func (d *Driver) SetSteerGain(v float64) {
	d.settings.SteerGain = v
	d.integrator.SteerGain = v
}

// SetRayLength changes the perception range from the next tick on.
func (d *Driver) SetRayLength(v float64) {
	d.settings.RayLength = v
}

// SetBrake replaces the brake predicate; nil restores NeverBrake.
func (d *Driver) SetBrake(f steering.BrakeFunc) {
	if f == nil {
		f = steering.NeverBrake
	}
	d.settings.Brake = f
}

// SetDebug toggles the diagnostic snapshot.
func (d *Driver) SetDebug(enabled bool) { d.debug = enabled }

// DebugEnabled reports whether Debug returns data.
func (d *Driver) DebugEnabled() bool { return d.debug }
