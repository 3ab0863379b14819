package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/sightgrid/server"
	"github.com/lixenwraith/sightgrid/service"
	"github.com/lixenwraith/sightgrid/world"
)

var (
	debugFlag = flag.Bool("debug", false, "Write logs to logs/navserver.log")
	sceneFlag = flag.String("scene", "", "Scene YAML file (overrides SIGHTGRID_SCENE)")
	watchFlag = flag.Bool("watch", false, "Rebuild when the scene file changes (or SIGHTGRID_WATCH=true)")
)

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	cfg := server.LoadConfig()
	if *sceneFlag != "" {
		cfg.ScenePath = *sceneFlag
	}
	if *watchFlag {
		cfg.Watch = true
	}
	if cfg.ScenePath == "" {
		fmt.Fprintln(os.Stderr, "navserver: no scene; pass -scene or set SIGHTGRID_SCENE")
		os.Exit(2)
	}

	hub := service.NewHub()
	for _, svc := range []service.Service{
		world.NewService(cfg.ScenePath, cfg.Watch),
		server.NewService(cfg),
	} {
		if err := hub.Register(svc); err != nil {
			fmt.Fprintf(os.Stderr, "navserver: %v\n", err)
			os.Exit(1)
		}
	}

	if err := hub.InitAll(hub); err != nil {
		fmt.Fprintf(os.Stderr, "navserver: %v\n", err)
		os.Exit(1)
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "navserver: %v\n", err)
		os.Exit(1)
	}

	httpSvc := service.MustGet[*server.Service](hub, server.ServiceName)
	fmt.Printf("navserver: serving %s on %s\n", cfg.ScenePath, httpSvc.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Printf("navserver: received %v, shutting down", s)

	hub.StopAll()
}
