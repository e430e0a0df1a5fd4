package app

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const frame = time.Second / 60

type eventLog struct {
	types []sim.EventType
}

func (l *eventLog) HandleEvent(ev sim.Event) { l.types = append(l.types, ev.Type) }

func (l *eventLog) EventTypes() []sim.EventType {
	return []sim.EventType{sim.EventEntry, sim.EventImpact, sim.EventRestartReady}
}

func newTestApp(t *testing.T) (*App, *eventLog) {
	t.Helper()
	a := New(config.Default(), log.NewNopLogger(), rand.New(rand.NewSource(3)))
	l := &eventLog{}
	a.Router().Register(l)
	return a, l
}

func tickFor(a *App, d time.Duration) {
	start := a.Scheduler().Now()
	for a.Scheduler().Now()-start < d {
		a.Tick(frame)
	}
}

func TestViewFlow(t *testing.T) {
	a, events := newTestApp(t)
	if a.View() != ViewDesigner {
		t.Fatalf("initial view = %v", a.View())
	}

	if err := a.Dispatch(UseDefaultEarth{}); err != nil {
		t.Fatal(err)
	}
	if a.View() != ViewTransition || a.TargetName() != "Default Earth" || a.Body() == nil {
		t.Fatalf("after confirm: view=%v target=%q", a.View(), a.TargetName())
	}
	tickFor(a, 500*time.Millisecond)
	if a.View() != ViewSetup {
		t.Fatalf("view after transition = %v", a.View())
	}

	if err := a.Dispatch(StartImpact{Impactor: sim.ImpactorConfig{SizeMeters: 50, SpeedKmPerSec: 72, AngleDegrees: 45}}); err != nil {
		t.Fatal(err)
	}
	if a.Session() == nil || a.Session().Stage() != sim.StageIdle {
		t.Fatal("session should exist and wait for the transition")
	}
	tickFor(a, 500*time.Millisecond)
	if a.View() != ViewSimulation || a.Session().Stage() == sim.StageIdle {
		t.Fatalf("view=%v stage=%v", a.View(), a.Session().Stage())
	}

	for i := 0; i < 10000 && a.Session().Stage() != sim.StageImpact; i++ {
		a.Tick(frame)
	}
	if a.Session().Stage() != sim.StageImpact {
		t.Fatal("no impact")
	}
	if a.RestartVisible() {
		t.Fatal("restart visible right at impact")
	}
	if err := a.Dispatch(Restart{}); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("early restart: err = %v", err)
	}

	tickFor(a, 3*time.Second)
	if !a.RestartVisible() {
		t.Fatal("restart never revealed")
	}
	want := []sim.EventType{sim.EventEntry, sim.EventImpact, sim.EventRestartReady}
	if len(events.types) != len(want) {
		t.Fatalf("events = %v, want %v", events.types, want)
	}
	for i := range want {
		if events.types[i] != want[i] {
			t.Fatalf("events = %v, want %v", events.types, want)
		}
	}

	if !a.HUD().RestartReady() || a.HUD().ReportLines() == nil {
		t.Fatal("HUD missed the impact")
	}

	restarted := 0
	a.OnRestart(func() { restarted++ })
	if err := a.Dispatch(Restart{}); err != nil {
		t.Fatal(err)
	}
	if restarted != 1 || a.HUD().RestartReady() {
		t.Fatalf("restart hooks ran %d times", restarted)
	}
	if a.View() != ViewDesigner || a.Session() != nil || a.Body() != nil || a.TargetName() != "" {
		t.Fatal("restart did not reset the app")
	}
	if a.Camera().Position.X != config.CameraX {
		t.Fatal("camera not reset")
	}
}

func TestCommandsRejectedInWrongView(t *testing.T) {
	a, _ := newTestApp(t)
	impactor := sim.ImpactorConfig{SizeMeters: 50, SpeedKmPerSec: 20, AngleDegrees: 45}
	if err := a.Dispatch(StartImpact{Impactor: impactor}); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("start in designer: err = %v", err)
	}
	if err := a.Dispatch(Restart{}); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("restart in designer: err = %v", err)
	}
	if err := a.Dispatch(nil); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("nil command: err = %v", err)
	}
	if err := a.Dispatch(ConfirmPlanet{Planet: sim.PlanetConfig{Type: sim.PlanetLava, Color: sim.RGB{R: 200}}}); err != nil {
		t.Fatal(err)
	}
	if a.TargetName() != "Custom Lava Planet" {
		t.Fatalf("target = %q", a.TargetName())
	}
	if err := a.Dispatch(UseDefaultEarth{}); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("second confirm: err = %v", err)
	}
}

func TestInvalidImpactorKeepsSetupView(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Dispatch(UseDefaultEarth{}); err != nil {
		t.Fatal(err)
	}
	tickFor(a, time.Second)
	err := a.Dispatch(StartImpact{Impactor: sim.ImpactorConfig{SizeMeters: 0, SpeedKmPerSec: 20, AngleDegrees: 45}})
	if !errors.Is(err, sim.ErrInvalidConfiguration) {
		t.Fatalf("err = %v", err)
	}
	if a.View() != ViewSetup || a.Session() != nil {
		t.Fatalf("view=%v session=%v", a.View(), a.Session())
	}
}

func TestInvalidPlanetRejected(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Dispatch(ConfirmPlanet{Planet: sim.PlanetConfig{Type: sim.PlanetRocky, Diameter: -3}})
	if !errors.Is(err, sim.ErrInvalidConfiguration) {
		t.Fatalf("err = %v", err)
	}
	if a.View() != ViewDesigner {
		t.Fatalf("view = %v", a.View())
	}
}

func TestCameraShakesAfterImpact(t *testing.T) {
	a, _ := newTestApp(t)
	a.Dispatch(UseDefaultEarth{})
	tickFor(a, time.Second)
	a.Dispatch(StartImpact{Impactor: sim.ImpactorConfig{SizeMeters: 1000, SpeedKmPerSec: 72, AngleDegrees: 90}})
	before := a.Camera().Position
	for i := 0; i < 10000 && (a.Session() == nil || a.Session().Stage() != sim.StageImpact); i++ {
		a.Tick(frame)
	}
	if a.Camera().Position == before {
		t.Fatal("camera did not move at impact")
	}
}

func TestCommandsLoggedUnderAppSubsystem(t *testing.T) {
	var buf bytes.Buffer
	a := New(config.Default(), log.NewLogfmtLogger(&buf), rand.New(rand.NewSource(1)))
	if err := a.Dispatch(UseDefaultEarth{}); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "subsys=app") || !strings.Contains(out, "command=default_earth") {
		t.Fatalf("log = %q", out)
	}
}
