package race

import (
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RaceActor owns the authoritative Race. Its mailbox serializes everything
// touching it: ticks from the game loop, tuning from the sliders, the debug
// toggle, restarts and standings queries.
//
// Messages:
//   - *durationpb.Duration: run one tick of that length (zero uses the configured tick rate)
//   - *wrapperspb.BoolValue: debug overlay on/off
//   - *structpb.Struct: tuning update (maxSpeed, steerGain, rayLength, debug)
//   - *wrapperspb.StringValue "reset": put the cars back on the grid
//   - *emptypb.Empty: replies with the standings as a *structpb.Struct
type RaceActor struct {
	cfg   *Config
	track *Track
	race  *Race
	// Communication with UI
	snapshotCh chan<- *Frame

	// --- Benchmark Stats ---
	ticks       int
	lastLogTime time.Time
}

var _ actor.Actor = (*RaceActor)(nil)

// NewRaceActor creates the race logic unit. snapshotCh may be nil when no
// viewer is attached.
func NewRaceActor(cfg *Config, track *Track, snapshotCh chan<- *Frame) *RaceActor {
	return &RaceActor{
		cfg:         cfg,
		track:       track,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (a *RaceActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Race is setting up the grid...")
	r, err := NewRace(a.cfg, a.track, ctx.ActorSystem().Logger())
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}
	a.race = r
	return nil
}

func (a *RaceActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Infof("Race started with %d cars", len(a.race.Cars()))
		a.pushSnapshot()

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		a.race.Step(msg.AsDuration().Seconds())
		a.ticks++
		a.logBenchmarks(ctx)
		a.pushSnapshot()

	case *wrapperspb.BoolValue:
		a.race.SetDebug(msg.GetValue())
		ctx.Logger().Debugf("debug overlay: %v", msg.GetValue())

	// Handle dynamic slider updates from UI
	case *structpb.Struct:
		t, err := TuningFromProto(msg)
		if err != nil {
			ctx.Logger().Warnf("ignoring tuning update: %v", err)
			return
		}
		if err := a.race.Tune(t); err != nil {
			ctx.Logger().Warnf("ignoring tuning update: %v", err)
		}

	case *wrapperspb.StringValue:
		switch msg.GetValue() {
		case CmdReset:
			if err := a.race.Reset(); err != nil {
				ctx.Logger().Errorf("failed to reset race: %v", err)
				return
			}
			a.pushSnapshot()
		default:
			ctx.Unhandled()
		}

	case *emptypb.Empty:
		ctx.Response(StandingsToProto(a.race.Report()))

	default:
		ctx.Unhandled()
	}
}

func (a *RaceActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(a.lastLogTime) >= time.Second {
		ctx.Logger().Debugf("TICK RATE: %d/sec | tick %d | cars %d", a.ticks, a.race.Tick(), len(a.race.Cars()))
		a.ticks = 0
		a.lastLogTime = time.Now()
	}
}

func (a *RaceActor) pushSnapshot() {
	if a.snapshotCh == nil {
		return
	}
	select {
	case a.snapshotCh <- a.race.Frame():
	default:
		// UI busy, skip frame
	}
}

func (a *RaceActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Race is shutdown...")
	return nil
}
