// Package viewer draws a running race with Ebiten and forwards the tuning
// panel to the race actor.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/driver"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/race"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/ui"
)

// SidebarWidth is the strip right of the track holding the panel and the
// leaderboard.
const SidebarWidth = 280

var (
	trackColor    = color.RGBA{R: 30, G: 34, B: 38, A: 255}
	wallColor     = color.RGBA{R: 150, G: 150, B: 160, A: 255}
	bumperColor   = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	lapLineColor  = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	waypointColor = color.RGBA{R: 255, G: 200, B: 0, A: 160}
	dangerColor   = color.RGBA{R: 255, G: 40, B: 40, A: 200}
	interestColor = color.RGBA{R: 40, G: 220, B: 80, A: 200}
	chosenColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	goalColor     = color.RGBA{R: 60, G: 120, B: 255, A: 255}
)

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	racePID    *actor.PID
	snapshotCh chan *race.Frame
	lastFrame  *race.Frame

	cfg   *race.Config
	track *race.Track

	// UI Controls
	panel           *ui.Panel
	widgetMaxSpeed  *ui.Slider
	widgetSteerGain *ui.Slider
	widgetRayLength *ui.Slider
	widgetDebug     *ui.Checkbox

	// Last values sent to the race, to only send changes
	sentMaxSpeed, sentSteerGain, sentRayLength float64
	sentDebug                                  bool
	restart                                    bool

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // Rolling average in ms
	drawAvg            float64 // Rolling average in ms
}

// GetNewGame spawns the race actor in system and builds the viewer around it.
// A nil track runs the default circuit.
func GetNewGame(ctx context.Context, cfg *race.Config, track *race.Track, system actor.ActorSystem) (*Game, error) {
	if track == nil {
		track = race.DefaultTrack()
	}
	// Buffer to avoid blocking the actor
	snapshotCh := make(chan *race.Frame, 10)

	racePID, err := system.Spawn(ctx, "race", race.NewRaceActor(cfg, track, snapshotCh))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn race: %w", err)
	}

	g := &Game{
		ctx:           ctx,
		System:        system,
		racePID:       racePID,
		snapshotCh:    snapshotCh,
		lastFrame:     &race.Frame{}, // Avoid nil pointer
		cfg:           cfg,
		track:         track,
		sentMaxSpeed:  cfg.Driver.MaxSpeed,
		sentSteerGain: cfg.Driver.SteerGain,
		sentRayLength: cfg.Driver.RayLength,
		sentDebug:     cfg.Debug,
	}

	g.panel = ui.NewPanel("Race Tuning", cfg.WorldWidth+10, 10, SidebarWidth-20)
	g.panel.AddHeading("Driver")
	g.widgetMaxSpeed = g.panel.AddSlider("Max Speed", 50, 900, cfg.Driver.MaxSpeed)
	g.widgetSteerGain = g.panel.AddSlider("Steer Gain", 0.01, 1, cfg.Driver.SteerGain)
	g.widgetRayLength = g.panel.AddSlider("Ray Length", 20, 400, cfg.Driver.RayLength)
	g.panel.AddHeading("Race")
	g.widgetDebug = g.panel.AddCheckbox("Show Rays", cfg.Debug)
	g.panel.AddButton("Restart", func() { g.restart = true })

	return g, nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	// 1. Update UI Panel
	g.panel.Update()

	// 2. Keep the latest frame (non-blocking)
	for drained := false; !drained; {
		select {
		case f := <-g.snapshotCh:
			g.lastFrame = f
		default:
			drained = true
		}
	}

	// 3. Forward the panel to the race
	if g.restart {
		g.restart = false
		if err := actor.Tell(g.ctx, g.racePID, race.ResetCommand()); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
	}
	if t, changed := g.tuning(); changed {
		if err := actor.Tell(g.ctx, g.racePID, t.ToProto()); err != nil {
			return fmt.Errorf("tuning: %w", err)
		}
	}
	if g.widgetDebug.On != g.sentDebug {
		g.sentDebug = g.widgetDebug.On
		if err := actor.Tell(g.ctx, g.racePID, wrapperspb.Bool(g.sentDebug)); err != nil {
			return fmt.Errorf("debug toggle: %w", err)
		}
	}

	// ONLY send a Tick while the race is running, the last frame stays on screen.
	if !g.lastFrame.Over {
		if err := actor.Tell(g.ctx, g.racePID, durationpb.New(0)); err != nil {
			return fmt.Errorf("tick: %w", err)
		}
	}
	return nil
}

// tuning returns the slider values that moved since the last update.
func (g *Game) tuning() (race.Tuning, bool) {
	var t race.Tuning
	changed := false
	if v := g.widgetMaxSpeed.Value; v != g.sentMaxSpeed {
		g.sentMaxSpeed, t.MaxSpeed, changed = v, &v, true
	}
	if v := g.widgetSteerGain.Value; v != g.sentSteerGain {
		g.sentSteerGain, t.SteerGain, changed = v, &v, true
	}
	if v := g.widgetRayLength.Value; v != g.sentRayLength {
		g.sentRayLength, t.RayLength, changed = v, &v, true
	}
	return t, changed
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.Black)
	vector.FillRect(screen, 0, 0, float32(g.cfg.WorldWidth), float32(g.cfg.WorldHeight), trackColor, false)

	// 1. Track
	for _, o := range g.track.Obstacles {
		clr := bumperColor
		if o.Label == "wall" {
			clr = wallColor
		}
		drawObstacle(screen, o, clr)
	}
	drawObstacle(screen, g.track.LapLine, lapLineColor)
	if g.lastFrame.Debug {
		for i, wp := range g.track.Waypoints {
			vector.StrokeCircle(screen, float32(wp.X), float32(wp.Y), float32(g.cfg.Driver.WaypointThreshold), 1, waypointColor, true)
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", i), int(wp.X)-3, int(wp.Y)-8)
		}
	}

	// 2. Cars, with their perception on top when debugging
	for i, c := range g.lastFrame.Cars {
		if c.Debug != nil {
			drawDebug(screen, c.Debug)
		}
		sprite := carSprites[i%len(carSprites)]
		op := &ebiten.DrawImageOptions{}
		// Center the origin of the image
		w, h := sprite.Bounds().Dx(), sprite.Bounds().Dy()
		op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
		// The sprite is drawn facing "Right" (0 radians)
		op.GeoM.Rotate(c.Heading)
		op.GeoM.Translate(c.Pos.X, c.Pos.Y)
		screen.DrawImage(sprite, op)
	}

	// 3. Sidebar
	g.panel.Draw(screen)
	g.drawLeaderboard(screen, int(g.cfg.WorldWidth)+10, int(g.panel.Y+g.panel.Height())+20)

	if g.lastFrame.Over {
		msg := fmt.Sprintf("RACE OVER\n%s is the WINNER !", g.lastFrame.Winner)
		ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth/2-50), int(g.cfg.WorldHeight/2))
	}

	// Display performance stats
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)+10, int(g.cfg.WorldHeight)-90)
}

func (g *Game) drawLeaderboard(screen *ebiten.Image, x, y int) {
	for i, line := range leaderboard(g.lastFrame, g.cfg.TotalLaps) {
		dy := 20 + 16*(i-1)
		if i == 0 {
			dy = 0
		}
		ebitenutil.DebugPrintAt(screen, line, x, y+dy)
	}
}

// leaderboard renders the race clock then one line per car. The leader shows
// the race time, the others their gap on the leader's lap.
func leaderboard(f *race.Frame, totalLaps int) []string {
	mph := make(map[string]float64, len(f.Cars))
	for _, c := range f.Cars {
		mph[c.ID] = c.SpeedMPH
	}
	lines := make([]string, 0, len(f.Standings)+1)
	lines = append(lines, fmt.Sprintf("Time %s  Laps %d", race.FormatRaceTime(f.RaceTime), totalLaps))
	for i, s := range f.Standings {
		gap := race.FormatGap(s.Gap)
		if i == 0 {
			gap = race.FormatRaceTime(f.RaceTime)
		}
		status := fmt.Sprintf("%3.0f mph", mph[s.ID])
		if s.Finished {
			status = "FINISHED"
		}
		lines = append(lines, fmt.Sprintf("%2d. %-6s lap %d  %s  %s", s.Position, s.ID, s.Laps, status, gap))
	}
	return lines
}

// drawDebug shows one car's ray ring: red rays stop at what they hit, green
// rays grow with interest. The chosen direction is white and the goal blue.
func drawDebug(screen *ebiten.Image, d *driver.DebugSnapshot) {
	o := d.Origin
	for i, dir := range d.Directions {
		var end geometry.Vector2D
		clr := interestColor
		switch {
		case d.Danger[i] > 0 && d.Hits[i].Present():
			end, clr = d.Hits[i].Point, dangerColor
		case d.Danger[i] > 0:
			end, clr = o.Add(dir.Mul(d.RayLength)), dangerColor
		default:
			end = o.Add(dir.Mul(d.RayLength * d.Interest[i]))
		}
		vector.StrokeLine(screen, float32(o.X), float32(o.Y), float32(end.X), float32(end.Y), 1, clr, true)
	}
	if d.HasTarget {
		vector.StrokeLine(screen, float32(o.X), float32(o.Y), float32(d.Target.X), float32(d.Target.Y), 1, goalColor, true)
	}
	c := o.Add(d.Chosen.Mul(40))
	vector.StrokeLine(screen, float32(o.X), float32(o.Y), float32(c.X), float32(c.Y), 2, chosenColor, true)
}

// drawObstacle fills a polygon or a circle placed in the world.
func drawObstacle(screen *ebiten.Image, o race.Obstacle, clr color.RGBA) {
	switch s := o.Shape.(type) {
	case geometry.Circle:
		vector.FillCircle(screen, float32(o.Pos.X), float32(o.Pos.Y), float32(s.Radius), clr, true)
	case geometry.Rect:
		drawPolygon(screen, s.Vertices(), o.Pos, o.Heading, clr)
	}
}

// drawPolygon fills a convex polygon as a triangle fan.
func drawPolygon(screen *ebiten.Image, verts []geometry.Vector2D, pos geometry.Vector2D, heading float64, clr color.RGBA) {
	if len(verts) < 3 {
		return
	}
	r, gr, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	vertices := make([]ebiten.Vertex, 0, len(verts))
	for _, v := range verts {
		w := pos.Add(v.Rotate(heading))
		vertices = append(vertices, ebiten.Vertex{
			DstX: float32(w.X), DstY: float32(w.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: a,
		})
	}
	indices := make([]uint16, 0, 3*(len(vertices)-2))
	for i := 1; i < len(vertices)-1; i++ {
		indices = append(indices, 0, uint16(i), uint16(i+1))
	}
	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) Layout(w, h int) (int, int) {
	return int(g.cfg.WorldWidth) + SidebarWidth, int(g.cfg.WorldHeight)
}
