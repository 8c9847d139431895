package steering

import (
	"fmt"
	"math"
	"strings"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/perception"
)

// Brake modes accepted by BrakeByName.
const (
	BrakeNever  = "never"
	BrakeUrgent = "urgent"
	BrakeDanger = "danger"
)

// aheadCos bounds the rays considered in front of the chosen direction (45 degrees).
var aheadCos = math.Cos(math.Pi / 4)

// BrakeInput is what a brake predicate may look at after resolution.
type BrakeInput struct {
	Directions []geometry.Vector2D
	Chosen     geometry.Vector2D
	Hits       []perception.ObstacleHit
	Danger     []float64
}

// ahead calls fn with the index of every ray within 45 degrees of Chosen
// until fn returns true.
func (in BrakeInput) ahead(fn func(i int) bool) bool {
	for i, d := range in.Directions {
		if d.Dot(in.Chosen) < aheadCos {
			continue
		}
		if fn(i) {
			return true
		}
	}
	return false
}

// BrakeFunc decides whether the driver slows down this tick.
type BrakeFunc func(BrakeInput) bool

// NeverBrake is the default predicate: full speed at all times.
func NeverBrake(BrakeInput) bool { return false }

// BrakeOnUrgent brakes when a stopped car lies ahead.
func BrakeOnUrgent(in BrakeInput) bool {
	return in.ahead(func(i int) bool {
		return i < len(in.Hits) && in.Hits[i].Kind == perception.HitAgent && in.Hits[i].Urgent
	})
}

// BrakeOnDanger brakes when any ray ahead reaches threshold.
func BrakeOnDanger(threshold float64) BrakeFunc {
	return func(in BrakeInput) bool {
		return in.ahead(func(i int) bool {
			return i < len(in.Danger) && in.Danger[i] >= threshold
		})
	}
}

// BrakeByName maps a configured mode to its predicate.
func BrakeByName(mode string, threshold float64) (BrakeFunc, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", BrakeNever:
		return NeverBrake, nil
	case BrakeUrgent:
		return BrakeOnUrgent, nil
	case BrakeDanger:
		return BrakeOnDanger(threshold), nil
	default:
		return nil, fmt.Errorf("unknown brake mode %q", mode)
	}
}
