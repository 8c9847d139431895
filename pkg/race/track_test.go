package race

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
)

func TestDefaultTrack_Layout(t *testing.T) {
	tr := DefaultTrack()
	assert.Len(t, tr.Waypoints, 8)
	// 20 top bumpers, 15 on the corner arc, 20 on the divider, 60 outer walls
	assert.Len(t, tr.Obstacles, 115)
	assert.Equal(t, geometry.NewVector(600, 90), tr.Waypoints[7])
}

func TestArcLayout_Ends(t *testing.T) {
	a, b := geometry.NewVector(1100, 145), geometry.NewVector(1250, 320)
	out := arcLayout("bumper", a, b, 120, 15, 20)
	require.Len(t, out, 15)
	assert.True(t, out[0].Pos.EqWithin(a, 1e-6), "first square at %v", out[0].Pos)
	assert.True(t, out[14].Pos.EqWithin(b, 1e-6), "last square at %v", out[14].Pos)
}

func TestGrid(t *testing.T) {
	g := Grid(11)
	require.Len(t, g, 11)
	assert.Equal(t, "car1", g[0].Label)
	assert.Equal(t, geometry.NewVector(630, 70), g[0].Pos)
	assert.Equal(t, "car2", g[1].Label)
	assert.Equal(t, geometry.NewVector(670, 95), g[1].Pos)
	assert.Equal(t, "car3", g[2].Label)
	assert.Equal(t, geometry.NewVector(670, 70), g[2].Pos)
	assert.Equal(t, "car11", g[10].Label)
	assert.Equal(t, geometry.NewVector(830, 70), g[10].Pos)
	for _, s := range g {
		assert.Equal(t, math.Pi, s.Heading, s.Label)
	}

	assert.Len(t, Grid(20), 11)
	assert.Empty(t, Grid(-1))

	// a copy, the package grid stays intact
	g[0].Label = "changed"
	assert.Equal(t, "car1", Grid(1)[0].Label)
}

func TestTrack_Build(t *testing.T) {
	w := physics.NewWorld()
	sensor := DefaultTrack().Build(w)

	assert.Equal(t, 116, w.Len())
	assert.Equal(t, physics.KindSensor, sensor.Tag.Kind)
	assert.True(t, sensor.Static)
	assert.True(t, sensor.Entered(geometry.NewVector(610, 87), geometry.NewVector(590, 87)))
	assert.False(t, sensor.Entered(geometry.NewVector(610, 140), geometry.NewVector(590, 140)), "below the line")
	for _, b := range w.Bodies()[:115] {
		assert.Equal(t, physics.KindWall, b.Tag.Kind)
		assert.True(t, b.Static)
	}
}
