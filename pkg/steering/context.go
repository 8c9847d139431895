// Package steering implements context steering: per-ray interest toward the
// goal, per-ray danger from perceived obstacles, a hard veto between the two
// and the resolution of what is left into one heading, plus the motion
// integrator turning that heading into a velocity command.
package steering

import (
	"math"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/perception"
)

const (
	// MinGoalLen is the goal vector length under which the fallback heading is used.
	MinGoalLen = 0.01
	// MinChosenLen is the summed interest length under which the previous
	// chosen direction is kept.
	MinChosenLen = 0.01

	// AgentDanger is the danger of a ray whose nearest hit is another car.
	AgentDanger = 1.0
	// WallDangerFloor is the wall danger at the end of the ray.
	WallDangerFloor = 0.1
	// WallDangerSpan is added to the floor as the wall gets closer (0.5 at contact).
	WallDangerSpan = 0.4
)

// DefaultFallbackHeading is used when there is no goal; cars start the race
// facing left.
var DefaultFallbackHeading = geometry.Vector2D{X: -1, Y: 0}

// GoalDirection normalizes goal, substituting fallback when goal is degenerate.
func GoalDirection(goal, fallback geometry.Vector2D) geometry.Vector2D {
	if g, ok := goal.TryNormalize(MinGoalLen); ok {
		return g
	}
	if f, ok := fallback.TryNormalize(geometry.Epsilon); ok {
		return f
	}
	return DefaultFallbackHeading
}

// InterestOf returns max(0, dir . goal)^2 for unit dir and goal.
func InterestOf(dir, goal geometry.Vector2D) float64 {
	d := math.Max(0, dir.Dot(goal))
	return d * d
}

// Interest fills dst with the interest of every direction toward goal
// (already normalized, see GoalDirection).
func Interest(goal geometry.Vector2D, dirs []geometry.Vector2D, dst []float64) []float64 {
	dst = resize(dst, len(dirs))
	for i, dir := range dirs {
		dst[i] = InterestOf(dir, goal)
	}
	return dst
}

// DangerOf scores a single ray hit. Another car always scores AgentDanger;
// a wall scores between WallDangerFloor (at rayLength) and
// WallDangerFloor+WallDangerSpan (at contact).
func DangerOf(hit perception.ObstacleHit, rayLength float64) float64 {
	switch hit.Kind {
	case perception.HitAgent:
		return AgentDanger
	case perception.HitWall:
		closeness := 0.0
		if rayLength > 0 {
			closeness = math.Max(0, 1-hit.Distance/rayLength)
		}
		return WallDangerFloor + WallDangerSpan*math.Min(1, closeness)
	default:
		return 0
	}
}

// Danger fills dst with the danger of every ray hit.
func Danger(hits []perception.ObstacleHit, rayLength float64, dst []float64) []float64 {
	dst = resize(dst, len(hits))
	for i, h := range hits {
		dst[i] = DangerOf(h, rayLength)
	}
	return dst
}

// Veto zeroes interest on every ray carrying any danger.
func Veto(interest, danger []float64) {
	for i := range interest {
		if i < len(danger) && danger[i] > 0 {
			interest[i] = 0
		}
	}
}

// Resolve vetoes interest in place, sums the directions weighted by what
// interest survives and returns the normalized sum. When the sum is shorter
// than MinChosenLen it returns previous and false.
func Resolve(dirs []geometry.Vector2D, interest, danger []float64, previous geometry.Vector2D) (geometry.Vector2D, bool) {
	Veto(interest, danger)
	var sum geometry.Vector2D
	for i, dir := range dirs {
		if i >= len(interest) {
			break
		}
		sum = sum.Add(dir.Mul(interest[i]))
	}
	if chosen, ok := sum.TryNormalize(MinChosenLen); ok {
		return chosen, true
	}
	return previous, false
}

// Engine keeps the per-driver context fields. Interest and danger are
// recomputed from scratch every tick; only the chosen direction carries over,
// as the fallback when nothing survives the veto.
type Engine struct {
	interest []float64
	danger   []float64
	goal     geometry.Vector2D
	chosen   geometry.Vector2D
	fallback geometry.Vector2D
	resolved bool
}

// NewEngine creates an engine for n rays. fallback is both the heading used
// without a goal and the initial chosen direction.
func NewEngine(n int, fallback geometry.Vector2D) *Engine {
	fb := GoalDirection(fallback, DefaultFallbackHeading)
	return &Engine{
		interest: make([]float64, n),
		danger:   make([]float64, n),
		goal:     fb,
		chosen:   fb,
		fallback: fb,
	}
}

// SetInterest recomputes interest toward goal. A goal shorter than
// MinGoalLen (or no goal, hasGoal false) falls back to the fallback heading.
func (e *Engine) SetInterest(goal geometry.Vector2D, hasGoal bool, dirs []geometry.Vector2D) {
	if !hasGoal {
		goal = geometry.Zero
	}
	e.goal = GoalDirection(goal, e.fallback)
	e.interest = Interest(e.goal, dirs, e.interest)
}

// SetDanger recomputes danger from this tick's hits.
func (e *Engine) SetDanger(hits []perception.ObstacleHit, rayLength float64) {
	e.danger = Danger(hits, rayLength, e.danger)
}

// Resolve combines interest and danger into the chosen direction.
func (e *Engine) Resolve(dirs []geometry.Vector2D) geometry.Vector2D {
	e.chosen, e.resolved = Resolve(dirs, e.interest, e.danger, e.chosen)
	return e.chosen
}

// Chosen returns the last resolved direction.
func (e *Engine) Chosen() geometry.Vector2D { return e.chosen }

// Goal returns the normalized goal direction of the last SetInterest.
func (e *Engine) Goal() geometry.Vector2D { return e.goal }

// Resolved reports whether the last Resolve found surviving interest.
func (e *Engine) Resolved() bool { return e.resolved }

// Interest returns the current interest field (after the veto once resolved).
// The slice belongs to the engine.
func (e *Engine) Interest() []float64 { return e.interest }

// Danger returns the current danger field. The slice belongs to the engine.
func (e *Engine) Danger() []float64 { return e.danger }

func resize(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}
