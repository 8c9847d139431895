package race

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
)

// LapEvent is what a lap line crossing meant for a car.
type LapEvent uint8

const (
	LapNone LapEvent = iota
	LapStarted
	LapCompleted
	LapFinished
)

func (e LapEvent) String() string {
	switch e {
	case LapStarted:
		return "started"
	case LapCompleted:
		return "lap"
	case LapFinished:
		return "finished"
	default:
		return "none"
	}
}

// LapState is the race progress of one car.
type LapState struct {
	Started    bool
	Laps       int
	Finished   bool
	FinishTick int
	LapTicks   []int // tick of every completed lap
}

// LapLine is the trigger region cars cross; *physics.Body implements it for
// the lap line sensor of a track.
type LapLine interface {
	Entered(from, to geometry.Vector2D) bool
}

// LapCounter counts crossings of the lap line. A crossing counts only when the
// car moves right to left; the first one starts the car's race, the
// following ones complete laps.
type LapCounter struct {
	line   LapLine
	total  int
	states map[string]*LapState
	order  []string
}

// NewLapCounter counts laps over line for a race of totalLaps.
func NewLapCounter(line LapLine, totalLaps int) *LapCounter {
	return &LapCounter{
		line:   line,
		total:  max(1, totalLaps),
		states: make(map[string]*LapState),
	}
}

// Observe checks the move prev->cur of car id at tick.
func (l *LapCounter) Observe(id string, prev, cur geometry.Vector2D, tick int) LapEvent {
	st := l.state(id)
	if st.Finished || prev.X <= cur.X {
		return LapNone
	}
	if !l.line.Entered(prev, cur) {
		return LapNone
	}
	if !st.Started {
		st.Started = true
		return LapStarted
	}
	st.Laps++
	st.LapTicks = append(st.LapTicks, tick)
	if st.Laps < l.total {
		return LapCompleted
	}
	st.Finished = true
	st.FinishTick = tick
	l.order = append(l.order, id)
	return LapFinished
}

// State returns a copy of the progress of car id.
func (l *LapCounter) State(id string) LapState {
	st, ok := l.states[id]
	if !ok {
		return LapState{}
	}
	out := *st
	out.LapTicks = slices.Clone(st.LapTicks)
	return out
}

// LapTick returns the tick at which car id completed lap n (1-based).
func (l *LapCounter) LapTick(id string, n int) (int, bool) {
	st, ok := l.states[id]
	if !ok || n < 1 || n > len(st.LapTicks) {
		return 0, false
	}
	return st.LapTicks[n-1], true
}

// FinishOrder returns the finished cars, winner first.
func (l *LapCounter) FinishOrder() []string {
	return slices.Clone(l.order)
}

// TotalLaps returns the race length.
func (l *LapCounter) TotalLaps() int { return l.total }

// Reset forgets every car.
func (l *LapCounter) Reset() {
	clear(l.states)
	l.order = nil
}

func (l *LapCounter) state(id string) *LapState {
	st, ok := l.states[id]
	if !ok {
		st = &LapState{}
		l.states[id] = st
	}
	return st
}
