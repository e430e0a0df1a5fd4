package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iburimskiy/impact-visualization/internal/app"
	"github.com/iburimskiy/impact-visualization/internal/audio"
	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/designer"
	"github.com/iburimskiy/impact-visualization/internal/game"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "settings file (toml, yaml or json)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := time.Now().UnixNano()
	a := app.New(settings, logger, rand.New(rand.NewSource(seed)))

	engine := newAudio(settings, logger)
	a.Router().Register(engine)

	if settings.TelemetryListen != "" {
		startTelemetry(ctx, a, settings, logger)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Planet Impact - Enter: confirm/launch, R: restart, Esc: Quit")

	g := game.New(a, engine, designer.Native(), logger, seed)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		level.Error(logger).Log("msg", "game loop", "err", err)
		os.Exit(1)
	}
}

func newAudio(settings config.Settings, logger log.Logger) *audio.Engine {
	if !settings.AudioEnabled {
		return audio.NewSilent(logger)
	}
	rate := beep.SampleRate(settings.SampleRate)
	var sample *beep.Buffer
	if settings.ImpactSample != "" {
		buf, err := audio.LoadSample(settings.ImpactSample, rate)
		if err != nil {
			level.Warn(logger).Log("msg", "impact sample not loaded, using synthesized thump", "path", settings.ImpactSample, "err", err)
		} else {
			sample = buf
		}
	}
	return audio.New(logger, audio.Speaker{}, rate, sample)
}

func startTelemetry(ctx context.Context, a *app.App, settings config.Settings, logger log.Logger) {
	hub := telemetry.NewHub(logger, settings.TelemetryRate, settings.TelemetryBurst)
	a.Router().Register(hub)
	a.Router().Register(telemetry.NewMetrics(prometheus.DefaultRegisterer))
	a.OnRestart(hub.Reset)

	srv := telemetry.NewServer(hub, prometheus.DefaultGatherer, logger)
	go func() {
		if err := srv.ListenAndServe(ctx, settings.TelemetryListen); err != nil {
			level.Error(logger).Log("msg", "telemetry server", "err", err)
		}
	}()
}
