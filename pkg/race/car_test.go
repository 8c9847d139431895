package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

func TestSpeedMPH(t *testing.T) {
	assert.Zero(t, SpeedMPH(0))
	// 450 units/s is the default top speed, a bit over 200 mph
	assert.InDelta(t, 207.36, SpeedMPH(450), 0.01)
	assert.Zero(t, (&Car{}).SpeedMPH())
}

func TestCarState_Proto(t *testing.T) {
	in := CarState{
		ID:       "car4",
		Pos:      geometry.NewVector(630, 70),
		Vel:      geometry.NewVector(-36, 0),
		Heading:  3.14,
		SpeedMPH: 16.6,
		Waypoint: 2,
		Laps:     1,
		Started:  true,
		Braking:  true,
	}
	out, err := CarStateFromProto(in.ToProto())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = CarStateFromProto(&structpb.Struct{})
	assert.Error(t, err)
}
