package steering

import (
	"math"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

const (
	DefaultMaxSpeed    = 450.0
	DefaultSteerGain   = 0.08
	DefaultBrakeFactor = 0.2
	// MinHeadingSpeed is the speed a car must exceed for its heading to follow
	// its velocity; slower cars keep their previous heading.
	MinHeadingSpeed = 1.0
)

// Integrator turns a chosen direction into a velocity command by smoothing
// the current velocity toward chosen*MaxSpeed.
type Integrator struct {
	MaxSpeed    float64
	SteerGain   float64 // fraction of the gap closed per tick, in [0, 1]
	BrakeFactor float64 // desired speed multiplier while braking
}

// DefaultIntegrator returns the reference tuning.
func DefaultIntegrator() Integrator {
	return Integrator{
		MaxSpeed:    DefaultMaxSpeed,
		SteerGain:   DefaultSteerGain,
		BrakeFactor: DefaultBrakeFactor,
	}
}

// Integrate returns the new velocity and heading. The gain is applied once
// per call regardless of dt, so the response depends on the tick rate.
//
// The returned speed never exceeds MaxSpeed and the result is always finite:
// a non-finite previous velocity restarts from rest.
func (in Integrator) Integrate(chosen, prevVel geometry.Vector2D, prevHeading, dt float64, brake bool) (geometry.Vector2D, float64) {
	maxSpeed := math.Max(0, in.MaxSpeed)
	if !prevVel.IsFinite() {
		prevVel = geometry.Zero
	}
	if !chosen.IsFinite() {
		chosen = geometry.Zero
	}
	desired := chosen.Mul(maxSpeed)
	if brake {
		desired = desired.Mul(clamp01(in.BrakeFactor))
	}
	vel := prevVel.Lerp(desired, clamp01(in.SteerGain)).ClampLen(maxSpeed)

	heading := prevHeading
	if vel.Len() > MinHeadingSpeed {
		heading = vel.Angle()
	}
	return vel, heading
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
