package race

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Commands understood by the RaceActor as a wrapperspb.StringValue.
const (
	CmdReset = "reset"
)

// Tuning field names in the structpb message.
const (
	fieldMaxSpeed  = "maxSpeed"
	fieldSteerGain = "steerGain"
	fieldRayLength = "rayLength"
	fieldDebug     = "debug"
)

// ResetCommand builds the message restarting the race.
func ResetCommand() *wrapperspb.StringValue {
	return wrapperspb.String(CmdReset)
}

// ToProto converts the tuning for the actor mailbox.
func (t Tuning) ToProto() *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if t.MaxSpeed != nil {
		s.Fields[fieldMaxSpeed] = structpb.NewNumberValue(*t.MaxSpeed)
	}
	if t.SteerGain != nil {
		s.Fields[fieldSteerGain] = structpb.NewNumberValue(*t.SteerGain)
	}
	if t.RayLength != nil {
		s.Fields[fieldRayLength] = structpb.NewNumberValue(*t.RayLength)
	}
	if t.Debug != nil {
		s.Fields[fieldDebug] = structpb.NewBoolValue(*t.Debug)
	}
	return s
}

// TuningFromProto reads a tuning message; unknown fields are rejected.
func TuningFromProto(s *structpb.Struct) (Tuning, error) {
	var t Tuning
	for name, v := range s.GetFields() {
		switch name {
		case fieldMaxSpeed, fieldSteerGain, fieldRayLength:
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return Tuning{}, fmt.Errorf("tuning: %s must be a number", name)
			}
			val := n.NumberValue
			switch name {
			case fieldMaxSpeed:
				t.MaxSpeed = &val
			case fieldSteerGain:
				t.SteerGain = &val
			default:
				t.RayLength = &val
			}
		case fieldDebug:
			b, ok := v.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return Tuning{}, fmt.Errorf("tuning: %s must be a boolean", name)
			}
			val := b.BoolValue
			t.Debug = &val
		default:
			return Tuning{}, fmt.Errorf("tuning: unknown field %q", name)
		}
	}
	return t, t.Validate()
}

// Report is the reply to a standings request.
type Report struct {
	Tick      int
	Over      bool
	RaceTime  time.Duration
	Standings []Standing
	Cars      []CarState // grid order, without debug snapshots
}

// StandingsToProto builds the reply to a standings request. Gaps and the race
// time travel in seconds; a car off the leader's lap has no gap field.
func StandingsToProto(rep Report) *structpb.Struct {
	list := make([]*structpb.Value, 0, len(rep.Standings))
	for _, s := range rep.Standings {
		e := &structpb.Struct{Fields: map[string]*structpb.Value{
			"position": structpb.NewNumberValue(float64(s.Position)),
			"id":       structpb.NewStringValue(s.ID),
			"laps":     structpb.NewNumberValue(float64(s.Laps)),
			"waypoint": structpb.NewNumberValue(float64(s.Waypoint)),
			"passed":   structpb.NewNumberValue(float64(s.Passed)),
			"finished": structpb.NewBoolValue(s.Finished),
		}}
		if s.Gap != NoGap {
			e.Fields["gap"] = structpb.NewNumberValue(s.Gap.Seconds())
		}
		list = append(list, structpb.NewStructValue(e))
	}
	cars := make([]*structpb.Value, 0, len(rep.Cars))
	for _, c := range rep.Cars {
		cars = append(cars, structpb.NewStructValue(c.ToProto()))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":      structpb.NewNumberValue(float64(rep.Tick)),
		"over":      structpb.NewBoolValue(rep.Over),
		"raceTime":  structpb.NewNumberValue(rep.RaceTime.Seconds()),
		"standings": structpb.NewListValue(&structpb.ListValue{Values: list}),
		"cars":      structpb.NewListValue(&structpb.ListValue{Values: cars}),
	}}
}

// StandingsFromProto reads a standings reply.
func StandingsFromProto(s *structpb.Struct) (Report, error) {
	f := s.GetFields()
	list, ok := f["standings"].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return Report{}, fmt.Errorf("standings: missing list")
	}
	rep := Report{
		Tick:     int(f["tick"].GetNumberValue()),
		Over:     f["over"].GetBoolValue(),
		RaceTime: seconds(f["raceTime"].GetNumberValue()),
	}
	for _, v := range list.ListValue.GetValues() {
		e := v.GetStructValue().GetFields()
		st := Standing{
			Position: int(e["position"].GetNumberValue()),
			ID:       e["id"].GetStringValue(),
			Laps:     int(e["laps"].GetNumberValue()),
			Waypoint: int(e["waypoint"].GetNumberValue()),
			Passed:   int(e["passed"].GetNumberValue()),
			Finished: e["finished"].GetBoolValue(),
			Gap:      NoGap,
		}
		if g, ok := e["gap"]; ok {
			st.Gap = seconds(g.GetNumberValue())
		}
		rep.Standings = append(rep.Standings, st)
	}
	for _, v := range f["cars"].GetListValue().GetValues() {
		c, err := CarStateFromProto(v.GetStructValue())
		if err != nil {
			return Report{}, fmt.Errorf("standings: %w", err)
		}
		rep.Cars = append(rep.Cars, c)
	}
	return rep, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
