// Command impact-tui plays the impact demo in a terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-kit/log/level"

	"github.com/iburimskiy/impact-visualization/internal/app"
	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

func main() {
	var (
		configPath = flag.String("config", "", "settings file (toml, yaml or json)")
		logPath    = flag.String("log", "", "write logs to this file")
		planetName = flag.String("planet", "earth", "planet type: earth, rocky, gaseous, icy or lava")
		colorHex   = flag.String("color", "", "planet colour as #rrggbb (default: the type's preset)")
		diameter   = flag.Float64("diameter", 12742, "planet diameter in km")
		atmosphere = flag.Float64("atmosphere", 50, "atmosphere density, 0-100")
		size       = flag.Float64("size", config.SizeDefault, "impactor size in metres")
		speed      = flag.Float64("speed", config.SpeedDefault, "impactor speed in km/s")
		angle      = flag.Float64("angle", config.AngleDefault, "entry angle in degrees")
		auto       = flag.Bool("auto", false, "launch immediately and replay after each restart")
	)
	flag.Parse()

	planet, err := planetFromFlags(*planetName, *colorHex, *diameter, *atmosphere)
	if err != nil {
		fatal(err)
	}
	impactor := sim.ImpactorConfig{SizeMeters: *size, SpeedKmPerSec: *speed, AngleDegrees: *angle}
	if err := impactor.Validate(); err != nil {
		fatal(err)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	var w io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}
	logger, err := logging.New(w, settings.LogLevel)
	if err != nil {
		fatal(err)
	}

	a := app.New(settings, logger, rand.New(rand.NewSource(time.Now().UnixNano())))

	screen, err := tcell.NewScreen()
	if err != nil {
		fatal(err)
	}
	if err := screen.Init(); err != nil {
		fatal(err)
	}
	defer screen.Fini()

	h := newHost(screen, a, planet, impactor, *auto, logger)
	h.run()
	level.Info(logger).Log("msg", "bye")
}

func planetFromFlags(name, hex string, diameter, atmosphere float64) (sim.PlanetConfig, error) {
	t, err := sim.ParsePlanetType(name)
	if err != nil {
		return sim.PlanetConfig{}, err
	}
	if t == sim.PlanetEarth {
		return sim.DefaultEarth(), nil
	}
	p := sim.PlanetConfig{Type: t, Color: app.PresetColor(t), Diameter: diameter, Atmosphere: atmosphere}
	if hex != "" {
		if p.Color, err = sim.ParseRGB(hex); err != nil {
			return sim.PlanetConfig{}, err
		}
	}
	return p, p.Validate()
}

func (h *host) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !h.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				h.screen.Sync()
			}
		case <-ticker.C:
			h.step(frameInterval)
			h.draw()
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "impact-tui: %v\n", err)
	os.Exit(1)
}
