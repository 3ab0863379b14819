package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sightgrid/world"
)

var (
	sceneFlag = flag.String("scene", "", "Scene YAML file to explore")
	soundFlag = flag.Bool("sound", false, "Chime on path results")
	logFlag   = flag.String("log", "", "Append logs to this file (default: discard)")
)

func main() {
	flag.Parse()
	if *sceneFlag == "" {
		fmt.Fprintln(os.Stderr, "nav-sandbox: -scene is required")
		os.Exit(2)
	}

	// Logging to the terminal would corrupt the view
	log.SetOutput(io.Discard)
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nav-sandbox: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	svc := world.NewService(*sceneFlag, true)
	if err := svc.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "nav-sandbox: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nav-sandbox: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "nav-sandbox: %v\n", err)
		os.Exit(1)
	}
	// Terminal is restored before any crash report so it stays readable
	defer func() {
		r := recover()
		screen.Fini()
		if r != nil {
			fmt.Fprintf(os.Stderr, "nav-sandbox crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	sb := newSandbox(svc)
	if *soundFlag {
		chime, closeSound, err := initSound()
		if err != nil {
			log.Printf("nav-sandbox: audio unavailable: %v", err)
		} else {
			sb.chime = chime
			defer closeSound()
		}
	}

	// Reloads arrive on the watcher goroutine; hand them to the event loop
	svc.OnReload(func(w *world.World) {
		_ = screen.PostEvent(tcell.NewEventInterrupt(w))
	})
	if err := svc.Start(); err != nil {
		log.Printf("nav-sandbox: watch disabled: %v", err)
	}
	defer svc.Stop()

	run(screen, sb)
}

// run is the event loop; it returns when the user quits
func run(screen tcell.Screen, sb *sandbox) {
	sb.draw(screen)
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if !sb.handleKey(ev) {
				return
			}
		case *tcell.EventInterrupt:
			sb.status = "scene reloaded"
			sb.recompute()
		case *tcell.EventResize:
			screen.Sync()
		}
		sb.draw(screen)
	}
}
