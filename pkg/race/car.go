package race

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/driver"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
)

const (
	metersPerUnit = 0.206
	mpsToMPH      = 2.23694
)

// Car is one race entrant: its physics body and the driver steering it.
type Car struct {
	ID     string
	Body   *physics.Body
	Driver *driver.Driver
	Start  GridSlot
}

// SpeedMPH converts the body speed (units/s) to miles per hour.
func (c *Car) SpeedMPH() float64 {
	if c.Body == nil {
		return 0
	}
	return SpeedMPH(c.Body.Speed())
}

// SpeedMPH converts a speed in world units per second to miles per hour.
func SpeedMPH(unitsPerSecond float64) float64 {
	return unitsPerSecond * metersPerUnit * mpsToMPH
}

// CarState is the read-only view of a car handed to the viewer and to
// actor clients.
type CarState struct {
	ID       string
	Pos      geometry.Vector2D
	Vel      geometry.Vector2D
	Heading  float64
	SpeedMPH float64
	Waypoint int
	Laps     int
	Started  bool
	Finished bool
	Braking  bool
	Debug    *driver.DebugSnapshot
}

// State captures the car at the end of a tick.
func (c *Car) State(laps LapState) CarState {
	s := CarState{
		ID:       c.ID,
		SpeedMPH: c.SpeedMPH(),
		Waypoint: c.Driver.Waypoint(),
		Laps:     laps.Laps,
		Started:  laps.Started,
		Finished: laps.Finished,
		Braking:  c.Driver.Braking(),
	}
	if c.Body != nil {
		s.Pos = c.Body.Position()
		s.Vel = c.Body.Velocity()
		s.Heading = c.Body.Heading()
	}
	if dbg, ok := c.Driver.Debug(); ok {
		s.Debug = &dbg
	}
	return s
}

// ToProto converts the state into the Protobuf "Envelope" sent to actor
// clients. Debug fields are not exported.
func (s CarState) ToProto() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(s.ID),
		"x":        structpb.NewNumberValue(s.Pos.X),
		"y":        structpb.NewNumberValue(s.Pos.Y),
		"vx":       structpb.NewNumberValue(s.Vel.X),
		"vy":       structpb.NewNumberValue(s.Vel.Y),
		"heading":  structpb.NewNumberValue(s.Heading),
		"mph":      structpb.NewNumberValue(s.SpeedMPH),
		"waypoint": structpb.NewNumberValue(float64(s.Waypoint)),
		"laps":     structpb.NewNumberValue(float64(s.Laps)),
		"started":  structpb.NewBoolValue(s.Started),
		"finished": structpb.NewBoolValue(s.Finished),
		"braking":  structpb.NewBoolValue(s.Braking),
	}}
}

// CarStateFromProto converts a message built by ToProto back.
func CarStateFromProto(p *structpb.Struct) (CarState, error) {
	f := p.GetFields()
	id, ok := f["id"]
	if !ok {
		return CarState{}, fmt.Errorf("car state: missing id")
	}
	return CarState{
		ID:       id.GetStringValue(),
		Pos:      geometry.NewVector(f["x"].GetNumberValue(), f["y"].GetNumberValue()),
		Vel:      geometry.NewVector(f["vx"].GetNumberValue(), f["vy"].GetNumberValue()),
		Heading:  f["heading"].GetNumberValue(),
		SpeedMPH: f["mph"].GetNumberValue(),
		Waypoint: int(f["waypoint"].GetNumberValue()),
		Laps:     int(f["laps"].GetNumberValue()),
		Started:  f["started"].GetBoolValue(),
		Finished: f["finished"].GetBoolValue(),
		Braking:  f["braking"].GetBoolValue(),
	}, nil
}
