package viewer

import (
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/race"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/ui"
)

func TestGame_TuningSendsOnlyChanges(t *testing.T) {
	g := &Game{
		widgetMaxSpeed:  ui.NewSlider(0, 0, 100, "Max Speed", 50, 900, 450),
		widgetSteerGain: ui.NewSlider(0, 0, 100, "Steer Gain", 0.01, 1, 0.08),
		widgetRayLength: ui.NewSlider(0, 0, 100, "Ray Length", 20, 400, 150),
		sentMaxSpeed:    450,
		sentSteerGain:   0.08,
		sentRayLength:   150,
	}

	if _, changed := g.tuning(); changed {
		t.Fatal("untouched sliders reported a change")
	}

	g.widgetRayLength.Set(200)
	tu, changed := g.tuning()
	if !changed {
		t.Fatal("moved slider not reported")
	}
	if tu.RayLength == nil || *tu.RayLength != 200 {
		t.Errorf("RayLength = %v, want 200", tu.RayLength)
	}
	if tu.MaxSpeed != nil || tu.SteerGain != nil {
		t.Errorf("unchanged sliders sent: %+v", tu)
	}

	if _, changed := g.tuning(); changed {
		t.Error("the same value was sent twice")
	}
}

func TestCarSprites(t *testing.T) {
	if len(carSprites) != len(teamColors) {
		t.Fatalf("got %d sprites, want %d", len(carSprites), len(teamColors))
	}
	w, h := carSprites[0].Bounds().Dx(), carSprites[0].Bounds().Dy()
	if w != len(carDesign[0]) || h != len(carDesign) {
		t.Errorf("sprite is %dx%d", w, h)
	}
}

func TestLeaderboard(t *testing.T) {
	f := &race.Frame{
		RaceTime: 83456 * time.Millisecond,
		Cars: []race.CarState{
			{ID: "car3", SpeedMPH: 180.4},
			{ID: "car5", SpeedMPH: 99.6},
			{ID: "car1", SpeedMPH: 12},
		},
		Standings: []race.Standing{
			{Position: 1, ID: "car3", Laps: 2},
			{Position: 2, ID: "car5", Laps: 2, Gap: 1250 * time.Millisecond},
			{Position: 3, ID: "car1", Laps: 1, Gap: race.NoGap},
		},
	}
	want := []string{
		"Time 1:23.46  Laps 3",
		" 1. car3   lap 2  180 mph  1:23.46",
		" 2. car5   lap 2  100 mph  -1.25s",
		" 3. car1   lap 1   12 mph  ---",
	}
	got := leaderboard(f, 3)
	if len(got) != len(want) {
		t.Fatalf("leaderboard = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	f.Standings[0].Finished = true
	if got := leaderboard(f, 3)[1]; got != " 1. car3   lap 2  FINISHED  1:23.46" {
		t.Errorf("finished line = %q", got)
	}
}
