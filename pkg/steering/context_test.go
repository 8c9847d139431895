package steering

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/perception"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestOf(t *testing.T) {
	tests := []struct {
		name string
		dir  geometry.Vector2D
		goal geometry.Vector2D
		want float64
	}{
		{"aligned", geometry.NewVector(1, 0), geometry.NewVector(1, 0), 1},
		{"opposite", geometry.NewVector(-1, 0), geometry.NewVector(1, 0), 0},
		{"perpendicular", geometry.NewVector(0, 1), geometry.NewVector(1, 0), 0},
		{"diagonal", geometry.FromAngle(math.Pi / 4), geometry.NewVector(1, 0), 0.5},
		{"60 degrees", geometry.FromAngle(math.Pi / 3), geometry.NewVector(1, 0), 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, InterestOf(tt.dir, tt.goal), 1e-9)
		})
	}
}

func TestInterestOf_RotationSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 200 {
		d := geometry.FromAngle(rng.Float64() * 2 * math.Pi)
		g := geometry.FromAngle(rng.Float64() * 2 * math.Pi)
		rot := rng.Float64() * 2 * math.Pi
		assert.InDelta(t, InterestOf(d, g), InterestOf(d.Rotate(rot), g.Rotate(rot)), 1e-9)
	}
}

func TestGoalDirection(t *testing.T) {
	fb := DefaultFallbackHeading
	assert.Equal(t, geometry.NewVector(0, 1), GoalDirection(geometry.NewVector(0, 30), fb))
	assert.Equal(t, fb, GoalDirection(geometry.NewVector(0.001, 0.002), fb), "goal under 0.01 uses the fallback")
	assert.Equal(t, fb, GoalDirection(geometry.NewVector(math.NaN(), 1), fb))
	assert.Equal(t, DefaultFallbackHeading, GoalDirection(geometry.Zero, geometry.Zero))
}

func TestDangerOf(t *testing.T) {
	tests := []struct {
		name string
		hit  perception.ObstacleHit
		want float64
	}{
		{"no hit", perception.ObstacleHit{}, 0},
		{"wall at 10", perception.ObstacleHit{Kind: perception.HitWall, Distance: 10}, 0.1 + 0.4*(1-10.0/150)},
		{"wall at contact", perception.ObstacleHit{Kind: perception.HitWall, Distance: 0}, 0.5},
		{"wall at ray end", perception.ObstacleHit{Kind: perception.HitWall, Distance: 150}, 0.1},
		{"wall past ray end", perception.ObstacleHit{Kind: perception.HitWall, Distance: 400}, 0.1},
		{"agent near", perception.ObstacleHit{Kind: perception.HitAgent, Distance: 1}, 1},
		{"agent far", perception.ObstacleHit{Kind: perception.HitAgent, Distance: 149}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DangerOf(tt.hit, 150), 1e-9)
		})
	}
	assert.InDelta(t, 0.473, DangerOf(perception.ObstacleHit{Kind: perception.HitWall, Distance: 10}, 150), 1e-3)
}

func TestDangerOf_AgentDominatesWall(t *testing.T) {
	for d := 0.0; d <= 150; d += 7.5 {
		wall := DangerOf(perception.ObstacleHit{Kind: perception.HitWall, Distance: d}, 150)
		agent := DangerOf(perception.ObstacleHit{Kind: perception.HitAgent, Distance: d}, 150)
		assert.LessOrEqual(t, wall, 0.5)
		assert.Greater(t, agent, wall)
	}
}

func TestEngine_GoalAheadNoObstacles(t *testing.T) {
	dirs := NewRing(DefaultRays).Directions(0, nil)
	e := NewEngine(len(dirs), DefaultFallbackHeading)

	e.SetInterest(geometry.NewVector(1, 0), true, dirs)
	e.SetDanger(make([]perception.ObstacleHit, len(dirs)), 150)
	chosen := e.Resolve(dirs)

	assert.True(t, chosen.EqWithin(geometry.NewVector(1, 0), 1e-9), "got %v", chosen)
	assert.True(t, e.Resolved())
	for _, d := range e.Danger() {
		assert.Zero(t, d)
	}
}

func TestEngine_WallAheadIsVetoed(t *testing.T) {
	dirs := NewRing(DefaultRays).Directions(0, nil)
	e := NewEngine(len(dirs), DefaultFallbackHeading)
	hits := make([]perception.ObstacleHit, len(dirs))
	hits[0] = perception.ObstacleHit{Kind: perception.HitWall, Distance: 10}

	e.SetInterest(geometry.NewVector(1, 0), true, dirs)
	require.InDelta(t, 1, e.Interest()[0], 1e-9)
	e.SetDanger(hits, 150)
	chosen := e.Resolve(dirs)

	assert.InDelta(t, 0.473, e.Danger()[0], 1e-3)
	assert.Zero(t, e.Interest()[0])
	// the neighbours are symmetric so the car still heads along +x
	assert.True(t, chosen.EqWithin(geometry.NewVector(1, 0), 1e-9), "got %v", chosen)
}

func TestEngine_StoppedCarAhead(t *testing.T) {
	dirs := NewRing(DefaultRays).Directions(0, nil)
	e := NewEngine(len(dirs), DefaultFallbackHeading)
	hits := make([]perception.ObstacleHit, len(dirs))
	hits[0] = perception.ObstacleHit{Kind: perception.HitAgent, Distance: 140, Urgent: true}
	hits[1] = perception.ObstacleHit{Kind: perception.HitWall, Distance: 20}

	e.SetInterest(geometry.NewVector(1, 0), true, dirs)
	e.SetDanger(hits, 150)
	chosen := e.Resolve(dirs)

	assert.Equal(t, 1.0, e.Danger()[0])
	assert.Greater(t, e.Danger()[0], e.Danger()[1])
	assert.Zero(t, e.Interest()[0])
	assert.Zero(t, e.Interest()[1])
	assert.InDelta(t, 1, chosen.Len(), 1e-9)
	assert.Less(t, chosen.Y, 0.0, "escapes toward the free side")
}

func TestEngine_EverythingVetoedKeepsPrevious(t *testing.T) {
	dirs := NewRing(DefaultRays).Directions(0, nil)
	e := NewEngine(len(dirs), DefaultFallbackHeading)
	open := make([]perception.ObstacleHit, len(dirs))

	e.SetInterest(geometry.NewVector(0, 1), true, dirs)
	e.SetDanger(open, 150)
	prev := e.Resolve(dirs)

	blocked := make([]perception.ObstacleHit, len(dirs))
	for i := range blocked {
		blocked[i] = perception.ObstacleHit{Kind: perception.HitWall, Distance: 50}
	}
	e.SetInterest(geometry.NewVector(1, 0), true, dirs)
	e.SetDanger(blocked, 150)
	got := e.Resolve(dirs)

	assert.False(t, e.Resolved())
	assert.Equal(t, prev, got)
}

func TestEngine_InitialChosenIsFallback(t *testing.T) {
	e := NewEngine(DefaultRays, geometry.NewVector(-3, 0))
	assert.Equal(t, geometry.NewVector(-1, 0), e.Chosen())

	dirs := NewRing(DefaultRays).Directions(0, nil)
	e.SetInterest(geometry.Zero, false, dirs)
	assert.Equal(t, geometry.NewVector(-1, 0), e.Goal())
	assert.InDelta(t, 1, e.Interest()[8], 1e-9, "ray 8 points at pi")
}

func TestResolve_ChosenIsUnitOrPrevious(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dirs := NewRing(DefaultRays).Directions(0, nil)
	prev := geometry.NewVector(0, -1)

	for range 500 {
		goal := geometry.FromAngle(rng.Float64() * 2 * math.Pi)
		interest := Interest(goal, dirs, nil)
		danger := make([]float64, len(dirs))
		for i := range danger {
			if rng.Intn(3) == 0 {
				danger[i] = 0.1 + rng.Float64()*0.9
			}
		}

		chosen, ok := Resolve(dirs, interest, danger, prev)
		for i := range danger {
			if danger[i] > 0 {
				require.Zero(t, interest[i])
			}
		}
		if ok {
			assert.InDelta(t, 1, chosen.Len(), 1e-3)
			prev = chosen
		} else {
			assert.Equal(t, prev, chosen)
		}
	}
}

func TestDanger_IsPureFunctionOfSnapshot(t *testing.T) {
	ring := NewRing(DefaultRays)
	dirs := ring.Directions(0, nil)

	empty := physics.NewWorld()
	me := empty.Add(physics.NewBody("car1", physics.AgentTag("car1"), geometry.Circle{Radius: 10}, geometry.Zero, false))
	s := perception.NewSampler(perception.Self{BodyID: me.ID(), Agent: "car1"}, perception.DefaultUrgentSpeed)

	open := Danger(s.Sample(empty.Snapshot(), geometry.Zero, dirs, 150, nil), 150, nil)
	for _, d := range open {
		assert.Zero(t, d)
	}

	w := physics.NewWorld()
	me = w.Add(physics.NewBody("car1", physics.AgentTag("car1"), geometry.Circle{Radius: 10}, geometry.Zero, false))
	w.Add(physics.NewBody("wall", physics.WallTag(), geometry.NewRect(20, 300), geometry.NewVector(40, 0), true))
	w.Add(physics.NewBody("car2", physics.AgentTag("car2"), geometry.Circle{Radius: 10}, geometry.NewVector(-60, 0), false))
	s = perception.NewSampler(perception.Self{BodyID: me.ID(), Agent: "car1"}, perception.DefaultUrgentSpeed)

	snap := w.Snapshot()
	first := Danger(s.Sample(snap, geometry.Zero, dirs, 150, nil), 150, nil)
	second := Danger(s.Sample(snap, geometry.Zero, dirs, 150, nil), 150, nil)
	assert.Equal(t, first, second)
	assert.InDelta(t, 0.1+0.4*(1-30.0/150), first[0], 1e-9)
	assert.Equal(t, 1.0, first[8])
}
