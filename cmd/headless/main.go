// Command headless runs a race without a window and prints the standings.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/race"
)

func main() {
	configFile := flag.String("config", "", "JSON race configuration (defaults when empty)")
	maxTicks := flag.Int("ticks", 20000, "stop after this many ticks even if the race is not over")
	flag.Parse()

	cfg := race.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = race.LoadConfig(*configFile); err != nil {
			stdlog.Fatal(err)
		}
	}

	ctx := context.Background()
	logger := log.New(cfg.Level(), os.Stdout)
	system, err := actor.NewActorSystem("RaceHeadless", actor.WithLogger(logger))
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		stdlog.Fatal(err)
	}
	defer system.Stop(ctx)

	pid, err := system.Spawn(ctx, "race", race.NewRaceActor(cfg, nil, nil))
	if err != nil {
		logger.Errorf("failed to spawn race: %v", err)
		return
	}

	start := time.Now()
	var rep race.Report
	// Ask every second of race time so the loop can stop once everyone is home.
	for rep.Tick < *maxTicks && !rep.Over {
		for range cfg.TickRate {
			if err := actor.Tell(ctx, pid, durationpb.New(0)); err != nil {
				logger.Errorf("tick: %v", err)
				return
			}
		}
		resp, err := actor.Ask(ctx, pid, &emptypb.Empty{}, 10*time.Second)
		if err != nil {
			logger.Errorf("standings: %v", err)
			return
		}
		s, ok := resp.(*structpb.Struct)
		if !ok {
			logger.Errorf("standings: unexpected reply %T", resp)
			return
		}
		if rep, err = race.StandingsFromProto(s); err != nil {
			logger.Errorf("standings: %v", err)
			return
		}
	}

	logger.Infof("race over=%v after %d ticks (race time %s) in %v", rep.Over, rep.Tick, race.FormatRaceTime(rep.RaceTime), time.Since(start))
	mph := make(map[string]float64, len(rep.Cars))
	for _, c := range rep.Cars {
		mph[c.ID] = c.SpeedMPH
	}
	for _, s := range rep.Standings {
		status := ""
		if s.Finished {
			status = " finished"
		}
		logger.Infof("%2d. %-6s laps %d waypoint %d passed %d %5.1f mph %8s%s",
			s.Position, s.ID, s.Laps, s.Waypoint, s.Passed, mph[s.ID], race.FormatGap(s.Gap), status)
	}
}
