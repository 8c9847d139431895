package race

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/driver"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/physics"
)

// NoGap marks a car that is not on the leader's lap.
const NoGap time.Duration = -1

// Standing is one line of the leaderboard.
type Standing struct {
	Position int
	ID       string
	Laps     int
	Waypoint int
	Passed   int
	Finished bool
	// Gap is how long after the leader the car completed the leader's
	// current lap: zero for the leader, NoGap when the car is a lap down or
	// nobody completed a lap yet.
	Gap time.Duration
}

// Frame is what the viewer draws: the race as of the end of a tick.
type Frame struct {
	Tick      int
	RaceTime  time.Duration
	Cars      []CarState
	Standings []Standing
	Debug     bool
	Over      bool
	Winner    string
}

// Race owns the world, the track and every car, and advances them one fixed
// tick at a time. It is not safe for concurrent use; the RaceActor mailbox
// serializes access.
type Race struct {
	cfg    Config
	track  *Track
	world  *physics.World
	laps   *LapCounter
	cars   []*Car
	tick   int
	over   bool
	logger log.Logger
}

// NewRace validates cfg and lays out the track and the starting grid.
func NewRace(cfg *Config, track *Track, logger log.Logger) (*Race, error) {
	if cfg == nil {
		return nil, errors.New("race: nil config")
	}
	if track == nil {
		track = DefaultTrack()
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Race{cfg: *cfg, track: track, logger: logger}
	if err := r.setup(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Race) setup() error {
	settings, err := r.cfg.DriverSettings()
	if err != nil {
		return fmt.Errorf("race: driver settings: %w", err)
	}
	r.world = physics.NewWorld()
	r.laps = NewLapCounter(r.track.Build(r.world), r.cfg.TotalLaps)
	r.cars = nil
	r.tick = 0
	r.over = false

	for _, slot := range Grid(r.cfg.NumCars) {
		body := physics.NewBody(slot.Label, physics.AgentTag(slot.Label), geometry.Circle{Radius: r.cfg.CarRadius}, slot.Pos, false)
		body.SetHeading(slot.Heading)
		r.world.Add(body)
		d := driver.New(slot.Label, body, r.track.Waypoints, settings,
			driver.WithLogger(r.logger),
			driver.WithDebug(r.cfg.Debug),
		)
		r.cars = append(r.cars, &Car{ID: slot.Label, Body: body, Driver: d, Start: slot})
	}
	r.logger.Infof("race: %d cars on the grid, %d laps", len(r.cars), r.cfg.TotalLaps)
	return nil
}

// Step advances the race by dt seconds:
//  1. freeze the world of the previous tick,
//  2. let every driver steer against that frozen view,
//  3. move the bodies,
//  4. count lap line crossings.
func (r *Race) Step(dt float64) {
	if r.over {
		return
	}
	if dt <= 0 {
		dt = r.cfg.TickDuration()
	}
	r.tick++

	snap := r.world.Snapshot()
	prev := make([]geometry.Vector2D, len(r.cars))
	for i, c := range r.cars {
		prev[i] = c.Body.Position()
		// a driver without body is skipped with a warning, the others keep racing
		_ = c.Driver.Update(snap, dt)
	}

	r.world.Step(dt)

	for i, c := range r.cars {
		switch r.laps.Observe(c.ID, prev[i], c.Body.Position(), r.tick) {
		case LapStarted:
			r.logger.Debugf("race: %s started", c.ID)
		case LapCompleted:
			r.logger.Infof("race: %s completed lap %d/%d", c.ID, r.laps.State(c.ID).Laps, r.cfg.TotalLaps)
		case LapFinished:
			r.logger.Infof("race: %s finished in position %d at tick %d", c.ID, len(r.laps.FinishOrder()), r.tick)
		}
	}

	if len(r.cars) > 0 && len(r.laps.FinishOrder()) == len(r.cars) {
		r.over = true
		r.logger.Infof("race: over after %d ticks, winner %s", r.tick, r.laps.FinishOrder()[0])
	}
}

// Reset puts every car back on the grid, keeping the current tuning.
func (r *Race) Reset() error {
	r.logger.Info("race: restarting")
	return r.setup()
}

// Tuning is a partial update of the driver tuning; nil fields are left
// unchanged.
type Tuning struct {
	MaxSpeed  *float64
	SteerGain *float64
	RayLength *float64
	Debug     *bool
}

// Validate rejects values the drivers cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	if t.MaxSpeed != nil && *t.MaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("maxSpeed must not be negative, got %v", *t.MaxSpeed))
	}
	if t.SteerGain != nil && (*t.SteerGain <= 0 || *t.SteerGain > 1) {
		errs = append(errs, fmt.Errorf("steerGain must be in (0,1], got %v", *t.SteerGain))
	}
	if t.RayLength != nil && *t.RayLength <= 0 {
		errs = append(errs, fmt.Errorf("rayLength must be positive, got %v", *t.RayLength))
	}
	return errors.Join(errs...)
}

// Tune applies t to the config and to every driver from the next tick on.
func (r *Race) Tune(t Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("race: tuning: %w", err)
	}
	for _, c := range r.cars {
		if t.MaxSpeed != nil {
			c.Driver.SetMaxSpeed(*t.MaxSpeed)
		}
		if t.SteerGain != nil {
			c.Driver.SetSteerGain(*t.SteerGain)
		}
		if t.RayLength != nil {
			c.Driver.SetRayLength(*t.RayLength)
		}
	}
	if t.MaxSpeed != nil {
		r.cfg.Driver.MaxSpeed = *t.MaxSpeed
	}
	if t.SteerGain != nil {
		r.cfg.Driver.SteerGain = *t.SteerGain
	}
	if t.RayLength != nil {
		r.cfg.Driver.RayLength = *t.RayLength
	}
	if t.Debug != nil {
		r.SetDebug(*t.Debug)
	}
	return nil
}

// SetDebug toggles the diagnostic snapshot of every driver.
func (r *Race) SetDebug(enabled bool) {
	r.cfg.Debug = enabled
	for _, c := range r.cars {
		c.Driver.SetDebug(enabled)
	}
}

// Standings orders cars by finish position, then laps, then waypoints passed.
func (r *Race) Standings() []Standing {
	finishPos := make(map[string]int)
	for i, id := range r.laps.FinishOrder() {
		finishPos[id] = i
	}
	out := make([]Standing, 0, len(r.cars))
	for _, c := range r.cars {
		st := r.laps.State(c.ID)
		out = append(out, Standing{
			ID:       c.ID,
			Laps:     st.Laps,
			Waypoint: c.Driver.Waypoint(),
			Passed:   c.Driver.WaypointsPassed(),
			Finished: st.Finished,
		})
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		switch {
		case a.Finished && b.Finished:
			return finishPos[a.ID] - finishPos[b.ID]
		case a.Finished:
			return -1
		case b.Finished:
			return 1
		case a.Laps != b.Laps:
			return b.Laps - a.Laps
		default:
			return b.Passed - a.Passed
		}
	})
	for i := range out {
		out[i].Position = i + 1
		out[i].Gap = NoGap
	}
	if len(out) == 0 || out[0].Laps == 0 {
		return out
	}
	lap := out[0].Laps
	lead, _ := r.laps.LapTick(out[0].ID, lap)
	for i := range out {
		if out[i].Laps != lap {
			continue
		}
		if at, ok := r.laps.LapTick(out[i].ID, lap); ok {
			out[i].Gap = r.ticksToDuration(max(0, at-lead))
		}
	}
	return out
}

// RaceTime is the time since the start, frozen when the winner finishes.
func (r *Race) RaceTime() time.Duration {
	ticks := r.tick
	if order := r.laps.FinishOrder(); len(order) > 0 {
		ticks = r.laps.State(order[0]).FinishTick
	}
	return r.ticksToDuration(ticks)
}

// FormatRaceTime renders d as m:ss.xx.
func FormatRaceTime(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	m := d / time.Minute
	sec := (d - m*time.Minute).Seconds()
	return fmt.Sprintf("%d:%05.2f", m, sec)
}

// FormatGap renders a leaderboard gap as -s.xxs, or --- off the leader's lap.
func FormatGap(d time.Duration) string {
	if d == NoGap {
		return "---"
	}
	return fmt.Sprintf("-%.2fs", d.Seconds())
}

func (r *Race) ticksToDuration(ticks int) time.Duration {
	return time.Duration(float64(ticks) * r.cfg.TickDuration() * float64(time.Second))
}

// CarStates captures every car in grid order.
func (r *Race) CarStates() []CarState {
	out := make([]CarState, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c.State(r.laps.State(c.ID)))
	}
	return out
}

// Report is the race summary handed to actor clients.
func (r *Race) Report() Report {
	return Report{
		Tick:      r.tick,
		Over:      r.over,
		RaceTime:  r.RaceTime(),
		Standings: r.Standings(),
		Cars:      r.CarStates(),
	}
}

// Frame captures the race for the viewer.
func (r *Race) Frame() *Frame {
	f := &Frame{
		Tick:      r.tick,
		RaceTime:  r.RaceTime(),
		Cars:      r.CarStates(),
		Standings: r.Standings(),
		Debug:     r.cfg.Debug,
		Over:      r.over,
	}
	if order := r.laps.FinishOrder(); len(order) > 0 {
		f.Winner = order[0]
	}
	return f
}

// Over reports whether every car finished.
func (r *Race) Over() bool { return r.over }

// Tick returns the number of ticks run since the start.
func (r *Race) Tick() int { return r.tick }

// Cars returns the entrants in grid order.
func (r *Race) Cars() []*Car { return r.cars }

// Track returns the circuit.
func (r *Race) Track() *Track { return r.track }

// World returns the physics world.
func (r *Race) World() *physics.World { return r.world }

// Laps returns the lap counter.
func (r *Race) Laps() *LapCounter { return r.laps }

// Config returns the current configuration, tuning included.
func (r *Race) Config() Config { return r.cfg }
