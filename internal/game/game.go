// Package game is the desktop host: an ebiten window that drives the app one
// frame per tick and draws the planet, the impactor and the readouts.
package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/impact-visualization/internal/app"
	"github.com/iburimskiy/impact-visualization/internal/audio"
	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/designer"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

type star struct {
	x, y  float32
	size  float32
	phase float64
}

// dialogResult carries the answer of a dialog that ran off the game thread.
type dialogResult struct {
	planet   *sim.PlanetConfig
	impactor *sim.ImpactorConfig
	sample   string
	err      error
}

// Game implements ebiten.Game.
type Game struct {
	app     *app.App
	audio   *audio.Engine
	dialogs designer.Dialogs
	logger  log.Logger

	draft   *app.PlanetDraft
	sliders *app.ImpactorSliders
	focus   int

	stars []star
	time  float64
	level float64

	lastView  app.View
	viewSince time.Duration
	impactAt  time.Duration

	dialogOpen bool
	results    chan dialogResult

	primary   *button
	secondary *button
	dragging  *app.Slider

	status  string
	lastErr error
}

// New creates the desktop host around a.
func New(a *app.App, engine *audio.Engine, dialogs designer.Dialogs, logger log.Logger, seed int64) *Game {
	g := &Game{
		app:       a,
		audio:     engine,
		dialogs:   dialogs,
		logger:    logging.Subsystem(logger, "game"),
		draft:     app.NewPlanetDraft(),
		sliders:   app.NewImpactorSliders(),
		stars:     newStarfield(rand.New(rand.NewSource(seed)), config.StarCount),
		results:   make(chan dialogResult, 1),
		primary:   &button{x: config.ButtonX, y: config.ButtonY, w: config.ButtonWidth, h: config.ButtonHeight},
		secondary: &button{x: config.ButtonX - config.ButtonWidth - 20, y: config.ButtonY, w: config.ButtonWidth, h: config.ButtonHeight},
	}
	a.OnRestart(func() {
		g.draft = app.NewPlanetDraft()
		g.audio.Reset()
	})
	return g
}

func newStarfield(rng *rand.Rand, n int) []star {
	stars := make([]star, n)
	for i := range stars {
		stars[i] = star{
			x:     float32(rng.Float64() * config.WindowWidth),
			y:     float32(rng.Float64() * config.WindowHeight),
			size:  float32(0.5 + rng.Float64()*1.2),
			phase: rng.Float64() * 6.283,
		}
	}
	return stars
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.collectDialog()

	mx, my := ebiten.CursorPosition()
	if !g.dialogOpen {
		switch g.app.View() {
		case app.ViewDesigner:
			g.updateDesigner(mx, my)
		case app.ViewSetup:
			g.updateSetup(mx, my)
		case app.ViewSimulation:
			g.updateSimulation(mx, my)
		}
	}

	g.app.Tick(time.Second / time.Duration(ebiten.TPS()))
	g.time += 1.0 / float64(ebiten.TPS())
	g.level = g.audio.Level()
	g.trackView()
	return nil
}

func (g *Game) trackView() {
	now := g.app.Scheduler().Now()
	if v := g.app.View(); v != g.lastView {
		g.lastView = v
		g.viewSince = now
	}
	if s := g.app.Session(); s != nil && s.Stage() == sim.StageImpact && g.impactAt == 0 {
		g.impactAt = now
	}
	if g.app.Session() == nil {
		g.impactAt = 0
	}
}

func (g *Game) dispatch(cmd app.Command) {
	if err := g.app.Dispatch(cmd); err != nil {
		g.lastErr = err
		return
	}
	g.lastErr = nil
}

func (g *Game) updateDesigner(mx, my int) {
	g.primary.label, g.secondary.label = "Confirm", "Default Earth"
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.draft.CycleType(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.draft.CycleType(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.draft.Atmosphere.Nudge(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.draft.Atmosphere.Nudge(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.draft.Diameter.Nudge(100)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.draft.Diameter.Nudge(-100)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		cur := g.draft.Config()
		g.openDialog(func() dialogResult {
			p, err := g.dialogs.PromptPlanet(cur)
			return dialogResult{planet: &p, err: err}
		})
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.dispatch(app.UseDefaultEarth{})
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.dispatch(app.ConfirmPlanet{Planet: g.draft.Config()})
		return
	}
	if g.primary.update(mx, my) {
		g.dispatch(app.ConfirmPlanet{Planet: g.draft.Config()})
	} else if g.secondary.update(mx, my) {
		g.dispatch(app.UseDefaultEarth{})
	}
}

func (g *Game) updateSetup(mx, my int) {
	g.primary.label, g.secondary.label = "Launch", "Sound..."
	all := g.sliders.All()
	step := 1
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = 10
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.focus = (g.focus + len(all) - 1) % len(all)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.focus = (g.focus + 1) % len(all)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		all[g.focus].Nudge(-step)
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		all[g.focus].Nudge(step)
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		cur := g.sliders.Config()
		g.openDialog(func() dialogResult {
			c, err := g.dialogs.PromptImpactor(cur)
			return dialogResult{impactor: &c, err: err}
		})
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.openSampleDialog()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.dispatch(app.StartImpact{Impactor: g.sliders.Config()})
		return
	}

	g.updateSliderDrag(mx, my)
	if g.primary.update(mx, my) {
		g.dispatch(app.StartImpact{Impactor: g.sliders.Config()})
	} else if g.secondary.update(mx, my) {
		g.openSampleDialog()
	}
}

// updateSliderDrag lets the mouse set a slider by clicking or dragging on its bar.
func (g *Game) updateSliderDrag(mx, my int) {
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = nil
	}
	for i, s := range g.sliders.All() {
		r := sliderRect(i)
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && r.contains(mx, my) {
			g.dragging = s
			g.focus = i
		}
		if g.dragging == s {
			f := clamp01(float64(mx-r.x) / float64(r.w))
			s.Set(s.Min + f*(s.Max-s.Min))
		}
	}
}

func (g *Game) updateSimulation(mx, my int) {
	if !g.app.RestartVisible() {
		return
	}
	g.primary.label = "Restart"
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || g.primary.update(mx, my) {
		g.dispatch(app.Restart{})
	}
}

func (g *Game) openSampleDialog() {
	g.openDialog(func() dialogResult {
		path, err := g.dialogs.PromptSample(audio.SampleFilters)
		return dialogResult{sample: path, err: err}
	})
}

// openDialog runs fn on its own goroutine so the window keeps rendering while
// the native dialog is up.
func (g *Game) openDialog(fn func() dialogResult) {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	go func() { g.results <- fn() }()
}

func (g *Game) collectDialog() {
	select {
	case res := <-g.results:
		g.dialogOpen = false
		g.applyDialog(res)
	default:
	}
}

func (g *Game) applyDialog(res dialogResult) {
	if errors.Is(res.err, designer.ErrCanceled) {
		return
	}
	if res.err != nil {
		level.Warn(g.logger).Log("msg", "dialog", "err", res.err)
		g.lastErr = res.err
		return
	}
	g.lastErr = nil
	switch {
	case res.planet != nil:
		g.draft.SetType(res.planet.Type)
		g.draft.Color = res.planet.Color
		g.draft.Diameter.Set(res.planet.Diameter)
		g.draft.Atmosphere.Set(res.planet.Atmosphere)
	case res.impactor != nil:
		g.sliders.Load(*res.impactor)
	case res.sample != "" && g.audio.Silent():
		g.status = "Audio is disabled; impact sound ignored"
	case res.sample != "":
		buf, err := audio.LoadSample(res.sample, g.audio.Rate())
		if err != nil {
			g.lastErr = err
			return
		}
		g.audio.SetSample(buf)
		g.status = "Impact sound: " + res.sample
		level.Info(g.logger).Log("msg", "impact sample loaded", "path", res.sample, "samples", buf.Len())
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}
