package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-race-steering/pkg/race"
	"github.com/lao-tseu-is-alive/go-race-steering/pkg/viewer"
)

func main() {
	configFile := flag.String("config", "", "JSON race configuration (defaults when empty)")
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
	system, err := actor.NewActorSystem("RaceSteering",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		stdlog.Fatal(err)
	}
	defer system.Stop(ctx)

	game, err := viewer.GetNewGame(ctx, cfg, nil, system)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth)+viewer.SidebarWidth, int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Context Steering Race")
	ebiten.SetTPS(cfg.TickRate)
	if err := ebiten.RunGame(game); err != nil {
		logger.Errorf("%v", err)
	}
}
