package physics

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 1.0 / 60

func wall(x, y, w, h float64) *Body {
	return NewBody("wall", WallTag(), geometry.NewRect(w, h), geometry.NewVector(x, y), true)
}

func car(id string, x, y float64) *Body {
	return NewBody(id, AgentTag(id), geometry.Circle{Radius: 10}, geometry.NewVector(x, y), false)
}

func steps(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Step(tick)
	}
}

func TestWorld_AddAssignsSequentialIDs(t *testing.T) {
	w := NewWorld()
	a := w.Add(wall(0, 0, 10, 10))
	b := w.Add(car("car-01", 50, 50))

	assert.Equal(t, 0, a.ID())
	assert.Equal(t, 1, b.ID())
	assert.Equal(t, 2, w.Len())

	assert.True(t, w.Remove(a))
	assert.False(t, w.Remove(a))
	assert.Equal(t, []*Body{b}, w.Bodies())
	assert.Empty(t, w.Snapshot().Raycast(geometry.NewVector(-20, 0), geometry.NewVector(20, 0)), "removed bodies leave the space")
}

func TestSnapshot_Raycast(t *testing.T) {
	w := NewWorld()
	w.Add(car("car-01", 0, 0))
	near := w.Add(wall(50, 0, 20, 100)) // face at x=40
	far := w.Add(wall(120, 0, 20, 100)) // face at x=110
	w.Add(wall(0, 300, 20, 20))         // nowhere near the ray

	snap := w.Snapshot()
	hits := snap.Raycast(geometry.NewVector(0, 0), geometry.NewVector(150, 0))

	require.Len(t, hits, 2, "the caster contains the origin and is not entered")
	assert.Equal(t, []int{near.ID(), far.ID()}, []int{hits[0].Body.ID, hits[1].Body.ID}, "hits are ordered by registration")
	assert.InDelta(t, 40, hits[0].Distance, 1e-9)
	assert.InDelta(t, 110, hits[1].Distance, 1e-9)
	assert.True(t, hits[0].Point.EqWithin(geometry.NewVector(40, 0), 1e-9))
	assert.Equal(t, KindWall, hits[0].Body.Tag.Kind)
}

func TestSnapshot_RaycastAgents(t *testing.T) {
	w := NewWorld()
	other := w.Add(car("car-02", 60, 0))
	other.SetVelocity(geometry.NewVector(-5, 0))

	hits := w.Snapshot().Raycast(geometry.NewVector(0, 0), geometry.NewVector(150, 0))
	require.Len(t, hits, 1)
	assert.InDelta(t, 50, hits[0].Distance, 1e-9)
	assert.Equal(t, AgentTag("car-02"), hits[0].Body.Tag)
	assert.Equal(t, geometry.NewVector(-5, 0), hits[0].Body.Velocity)
}

func TestSnapshot_RaycastRotatedBody(t *testing.T) {
	w := NewWorld()
	// a 100x10 bar rotated upright blocks the horizontal ray
	bar := wall(60, 0, 100, 10)
	bar.SetHeading(geometry.DegToRad(90))
	w.Add(bar)

	hits := w.Snapshot().Raycast(geometry.NewVector(0, 0), geometry.NewVector(100, 0))
	require.Len(t, hits, 1)
	assert.InDelta(t, 55, hits[0].Distance, 1e-6)
}

func TestSnapshot_IsFrozen(t *testing.T) {
	w := NewWorld()
	other := w.Add(car("car-02", 50, 0))
	snap := w.Snapshot()

	// what a driver writes during a tick
	other.SetVelocity(geometry.NewVector(3, 4))
	other.SetHeading(1)

	st, ok := snap.Body(other.ID())
	require.True(t, ok)
	assert.Equal(t, geometry.NewVector(50, 0), st.Position)
	assert.Equal(t, geometry.Zero, st.Velocity)
	assert.Zero(t, st.Heading)

	hits := snap.Raycast(geometry.NewVector(0, 0), geometry.NewVector(100, 0))
	require.Len(t, hits, 1)
	assert.Equal(t, geometry.Zero, hits[0].Body.Velocity, "raycasts return the frozen state")
	assert.Equal(t, geometry.NewVector(3, 4), other.Velocity())
}

func TestSnapshot_IgnoresLateBodies(t *testing.T) {
	w := NewWorld()
	snap := w.Snapshot()
	w.Add(wall(50, 0, 20, 100))
	assert.Empty(t, snap.Raycast(geometry.NewVector(0, 0), geometry.NewVector(150, 0)))
}

func TestSnapshot_RaycastEmptyWorld(t *testing.T) {
	snap := NewWorld().Snapshot()
	assert.Empty(t, snap.Raycast(geometry.NewVector(0, 0), geometry.NewVector(0, 150)))
	_, ok := snap.Body(3)
	assert.False(t, ok)
}

func TestBody_Entered(t *testing.T) {
	w := NewWorld()
	line := w.Add(NewBody("lapLine", SensorTag(), geometry.NewRect(8, 100), geometry.NewVector(0, 0), true))

	assert.True(t, line.Entered(geometry.NewVector(10, 0), geometry.NewVector(-10, 0)), "crossing")
	assert.True(t, line.Entered(geometry.NewVector(10, 0), geometry.NewVector(2, 0)), "stopping on the line")
	assert.False(t, line.Entered(geometry.NewVector(2, 0), geometry.NewVector(-10, 0)), "leaving the line")
	assert.False(t, line.Entered(geometry.NewVector(10, 80), geometry.NewVector(-10, 80)), "passing beyond its end")

	detached := NewBody("lapLine", SensorTag(), geometry.NewRect(8, 100), geometry.NewVector(0, 0), true)
	assert.False(t, detached.Entered(geometry.NewVector(10, 0), geometry.NewVector(-10, 0)))
}

func TestWorld_Step(t *testing.T) {
	t.Run("Integrates velocity", func(t *testing.T) {
		w := NewWorld()
		c := w.Add(car("car-01", 0, 0))
		c.SetVelocity(geometry.NewVector(60, -30))
		w.Step(0.5)
		assert.True(t, c.Position().EqWithin(geometry.NewVector(30, -15), 1e-9))
		assert.True(t, c.Velocity().EqWithin(geometry.NewVector(60, -30), 1e-9))
	})

	t.Run("Static bodies do not move", func(t *testing.T) {
		w := NewWorld()
		s := w.Add(wall(0, 0, 10, 10))
		s.SetVelocity(geometry.NewVector(10, 0))
		w.Step(1)
		assert.Equal(t, geometry.NewVector(0, 0), s.Position())
		assert.Equal(t, geometry.Zero, s.Velocity())
	})

	t.Run("Ignores non-finite velocity", func(t *testing.T) {
		w := NewWorld()
		c := w.Add(car("car-01", 0, 0))
		c.SetVelocity(geometry.NewVector(1, 0))
		c.SetVelocity(geometry.Vector2D{X: math.NaN()})
		assert.Equal(t, geometry.NewVector(1, 0), c.Velocity())
	})

	t.Run("Pushes cars out of walls", func(t *testing.T) {
		w := NewWorld()
		w.Add(wall(0, 0, 100, 20)) // bottom face at y=10
		c := w.Add(car("car-01", 0, 15))
		steps(w, 120)
		assert.InDelta(t, 20, c.Position().Y, 0.25)
		assert.InDelta(t, 0, c.Position().X, 1e-6)
	})

	t.Run("Walls stop cars", func(t *testing.T) {
		w := NewWorld()
		w.Add(wall(0, 0, 100, 20))
		c := w.Add(car("car-01", 0, 60))
		c.SetVelocity(geometry.NewVector(0, -200))
		steps(w, 120)
		assert.Greater(t, c.Position().Y, 19.0)
		assert.InDelta(t, 0, c.Velocity().Y, 1, "the inelastic contact kills the normal speed")
	})

	t.Run("Separates overlapping cars", func(t *testing.T) {
		w := NewWorld()
		a := w.Add(car("car-01", 0, 0))
		b := w.Add(car("car-02", 15, 0))
		steps(w, 120)
		assert.InDelta(t, 20, a.Position().DistanceTo(b.Position()), 0.25)
		assert.InDelta(t, 7.5, a.Position().Add(b.Position()).X/2, 1e-3, "equal masses share the push")
	})

	t.Run("Sensors never collide", func(t *testing.T) {
		w := NewWorld()
		w.Add(NewBody("lapLine", SensorTag(), geometry.NewRect(4, 100), geometry.NewVector(0, 0), true))
		c := w.Add(car("car-01", 1, 0))
		steps(w, 10)
		assert.True(t, c.Position().EqWithin(geometry.NewVector(1, 0), 1e-9))
	})

	t.Run("Zero dt is a no-op", func(t *testing.T) {
		w := NewWorld()
		c := w.Add(car("car-01", 0, 0))
		c.SetVelocity(geometry.NewVector(10, 0))
		w.Step(0)
		assert.Equal(t, geometry.Zero, c.Position())
	})
}

func BenchmarkSnapshot_Raycast(b *testing.B) {
	w := NewWorld()
	for i := 0; i < 200; i++ {
		w.Add(wall(float64(i%20)*50, float64(i/20)*50, 40, 10))
	}
	snap := w.Snapshot()
	origin := geometry.NewVector(500, 250)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap.Raycast(origin, origin.Add(geometry.FromAngle(float64(i)).Mul(150)))
	}
}
