// Package app drives one impact demo: it owns the view flow, the frame
// scheduler and the current session, and fans simulation events out to the
// audio, scene and presentation collaborators.
package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/scene"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// ErrInvalidCommand is returned when a command is dispatched in a view that
// does not accept it.
var ErrInvalidCommand = errors.New("invalid command")

// View is the screen currently shown.
type View int

const (
	ViewDesigner View = iota
	ViewSetup
	// ViewTransition is shown while one view fades into the next.
	ViewTransition
	ViewSimulation
)

func (v View) String() string {
	switch v {
	case ViewDesigner:
		return "designer"
	case ViewSetup:
		return "setup"
	case ViewTransition:
		return "transition"
	case ViewSimulation:
		return "simulation"
	}
	return "unknown"
}

// Command is a discrete user action.
type Command interface {
	command() string
}

// ConfirmPlanet accepts a custom planet design.
type ConfirmPlanet struct {
	Planet sim.PlanetConfig
}

// UseDefaultEarth skips the designer with the stock Earth.
type UseDefaultEarth struct{}

// StartImpact launches the impactor at the confirmed planet.
type StartImpact struct {
	Impactor sim.ImpactorConfig
}

// Restart discards the run and returns to the designer.
type Restart struct{}

func (ConfirmPlanet) command() string   { return "confirm_planet" }
func (UseDefaultEarth) command() string { return "default_earth" }
func (StartImpact) command() string     { return "start_impact" }
func (Restart) command() string         { return "restart" }

// App is the session holder driven by a host loop.
type App struct {
	settings  config.Settings
	logger    log.Logger
	rng       *rand.Rand
	router    *Router
	scheduler *Scheduler
	hud       *HUD
	onRestart []func()

	view           View
	planet         *sim.PlanetConfig
	body           *scene.Body
	camera         scene.Camera
	session        *sim.Session
	restartVisible bool
	restartTask    *Deferred
	transition     *Deferred
}

// New creates an app in the designer view. Collaborators register on Router()
// before the first tick.
func New(settings config.Settings, logger log.Logger, rng *rand.Rand) *App {
	a := &App{
		settings:  settings,
		logger:    logging.Subsystem(logger, "app"),
		rng:       rng,
		router:    NewRouter(),
		scheduler: NewScheduler(),
		hud:       &HUD{},
	}
	a.resetCamera()
	a.router.Register(a.hud)
	a.router.Register(HandlerFunc(a.onImpact, sim.EventImpact))
	a.router.Register(HandlerFunc(a.onEntry, sim.EventEntry))
	a.scheduler.OnTick(a.step)
	return a
}

func (a *App) Router() *Router           { return a.router }
func (a *App) Scheduler() *Scheduler     { return a.scheduler }
func (a *App) Settings() config.Settings { return a.settings }
func (a *App) View() View                { return a.view }
func (a *App) Body() *scene.Body         { return a.body }
func (a *App) Camera() scene.Camera      { return a.camera }
func (a *App) Session() *sim.Session     { return a.session }
func (a *App) RestartVisible() bool      { return a.restartVisible }
func (a *App) HUD() *HUD                 { return a.hud }

// OnRestart registers fn to run after a restart has reset the app.
func (a *App) OnRestart(fn func()) {
	a.onRestart = append(a.onRestart, fn)
}

// Planet returns the confirmed planet, if any.
func (a *App) Planet() (sim.PlanetConfig, bool) {
	if a.planet == nil {
		return sim.PlanetConfig{}, false
	}
	return *a.planet, true
}

// TargetName is the label of the confirmed planet, or "" before confirmation.
func (a *App) TargetName() string {
	if a.planet == nil {
		return ""
	}
	return a.planet.Name()
}

// Tick runs one frame of dt.
func (a *App) Tick(dt time.Duration) {
	a.scheduler.Tick(dt)
}

func (a *App) step(uint64) {
	if a.body != nil {
		a.body.Spin(config.PlanetSpin, config.CloudSpin)
	}
	if a.session == nil {
		return
	}
	a.session.Tick()
	if off := a.session.ShakeOffset(); off != (r3.Vec{}) {
		a.camera.Nudge(off)
	}
}

// Dispatch applies a user command.
func (a *App) Dispatch(cmd Command) error {
	var err error
	switch c := cmd.(type) {
	case UseDefaultEarth:
		err = a.confirmPlanet(sim.DefaultEarth())
	case ConfirmPlanet:
		err = a.confirmPlanet(c.Planet)
	case StartImpact:
		err = a.startImpact(c.Impactor)
	case Restart:
		err = a.restart()
	default:
		err = fmt.Errorf("unknown command %T: %w", cmd, ErrInvalidCommand)
	}
	if err != nil {
		level.Warn(a.logger).Log("command", commandName(cmd), "view", a.view, "err", err)
		return err
	}
	level.Info(a.logger).Log("command", commandName(cmd), "view", a.view)
	return nil
}

func commandName(cmd Command) string {
	if cmd == nil {
		return "nil"
	}
	return cmd.command()
}

func (a *App) confirmPlanet(p sim.PlanetConfig) error {
	if a.view != ViewDesigner {
		return fmt.Errorf("planet already confirmed: %w", ErrInvalidCommand)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	a.planet = &p
	a.body = scene.NewBody(p, a.settings.Simulation.PlanetRadius)
	a.transitionTo(ViewSetup, nil)
	return nil
}

func (a *App) startImpact(c sim.ImpactorConfig) error {
	if a.view != ViewSetup || a.planet == nil {
		return fmt.Errorf("start from %s view: %w", a.view, ErrInvalidCommand)
	}
	s, err := sim.NewSession(*a.planet, c, a.settings.Simulation, a.rng, a.router)
	if err != nil {
		return err
	}
	a.session = s
	a.transitionTo(ViewSimulation, func() {
		s.Start()
		level.Info(a.logger).Log("stage", s.Stage(), "size_m", c.SizeMeters, "speed_kms", c.SpeedKmPerSec, "angle_deg", c.AngleDegrees)
	})
	return nil
}

func (a *App) restart() error {
	if a.view != ViewSimulation || !a.restartVisible {
		return fmt.Errorf("restart before impact: %w", ErrInvalidCommand)
	}
	if a.restartTask != nil {
		a.restartTask.Cancel()
	}
	if a.transition != nil {
		a.transition.Cancel()
	}
	a.session = nil
	a.planet = nil
	a.body = nil
	a.restartVisible = false
	a.restartTask = nil
	a.transition = nil
	a.view = ViewDesigner
	a.resetCamera()
	a.hud.Reset()
	for _, fn := range a.onRestart {
		fn()
	}
	return nil
}

// transitionTo hides the current view and shows next after the transition delay.
func (a *App) transitionTo(next View, then func()) {
	a.view = ViewTransition
	a.transition = a.scheduler.After(a.settings.TransitionDelay, func() {
		a.view = next
		a.transition = nil
		if then != nil {
			then()
		}
	})
}

func (a *App) onEntry(ev sim.Event) {
	level.Info(a.logger).Log("stage", ev.Stage, "frame", ev.Frame, "altitude_km", fmt.Sprintf("%.0f", ev.Altitude))
}

func (a *App) onImpact(ev sim.Event) {
	if ev.Report != nil {
		level.Info(a.logger).Log("stage", ev.Stage, "frame", ev.Frame,
			"energy_j", ev.Report.EnergyJoulesText(), "megatons", ev.Report.MegatonsText(), "crater", ev.Report.CraterText())
	}
	frame := ev.Frame
	a.restartTask = a.scheduler.After(a.settings.RestartDelay, func() {
		a.restartVisible = true
		a.router.Publish(sim.Event{Type: sim.EventRestartReady, Frame: frame, Stage: sim.StageImpact, Report: ev.Report})
	})
}

func (a *App) resetCamera() {
	a.camera = scene.Camera{
		Position: r3.Vec{X: config.CameraX, Y: config.CameraY, Z: config.CameraZ},
		FOV:      config.CameraFOV,
	}
}
