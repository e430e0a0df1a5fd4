package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iburimskiy/impact-visualization/internal/app"
	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/scene"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// cellAspect is the width of a terminal cell relative to its height.
const cellAspect = 0.5

const shades = " .:-=+*#%@"

// host drives the app from a tcell screen.
type host struct {
	screen tcell.Screen
	app    *app.App
	logger log.Logger

	draft   *app.PlanetDraft
	sliders *app.ImpactorSliders
	focus   int
	earth   bool
	auto    bool

	lastErr error
}

func newHost(screen tcell.Screen, a *app.App, planet sim.PlanetConfig, impactor sim.ImpactorConfig, auto bool, logger log.Logger) *host {
	h := &host{
		screen:  screen,
		app:     a,
		logger:  logging.Subsystem(logger, "tui"),
		draft:   app.NewPlanetDraft(),
		sliders: app.NewImpactorSliders(),
		earth:   planet.Type == sim.PlanetEarth,
		auto:    auto,
	}
	if !h.earth {
		h.draft.SetType(planet.Type)
		h.draft.Color = planet.Color
		h.draft.Diameter.Set(planet.Diameter)
		h.draft.Atmosphere.Set(planet.Atmosphere)
	}
	h.sliders.Load(impactor)
	return h
}

func (h *host) dispatch(cmd app.Command) {
	if err := h.app.Dispatch(cmd); err != nil {
		h.lastErr = err
		return
	}
	h.lastErr = nil
}

func (h *host) confirm() {
	if h.earth {
		h.dispatch(app.UseDefaultEarth{})
		return
	}
	h.dispatch(app.ConfirmPlanet{Planet: h.draft.Config()})
}

// step advances one frame. In auto mode it confirms and launches without input.
func (h *host) step(dt time.Duration) {
	if h.auto {
		switch h.app.View() {
		case app.ViewDesigner:
			h.confirm()
		case app.ViewSetup:
			h.dispatch(app.StartImpact{Impactor: h.sliders.Config()})
		}
	}
	h.app.Tick(dt)
}

// handleKey reports false when the user asked to quit.
func (h *host) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
		return false
	}

	switch h.app.View() {
	case app.ViewDesigner:
		switch {
		case ev.Key() == tcell.KeyLeft:
			h.earth = false
			h.draft.CycleType(-1)
		case ev.Key() == tcell.KeyRight:
			h.earth = false
			h.draft.CycleType(1)
		case ev.Key() == tcell.KeyUp:
			h.draft.Atmosphere.Nudge(1)
		case ev.Key() == tcell.KeyDown:
			h.draft.Atmosphere.Nudge(-1)
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'd':
			h.earth = true
			h.confirm()
		case ev.Key() == tcell.KeyEnter:
			h.confirm()
		}
	case app.ViewSetup:
		all := h.sliders.All()
		switch ev.Key() {
		case tcell.KeyUp:
			h.focus = (h.focus + len(all) - 1) % len(all)
		case tcell.KeyDown:
			h.focus = (h.focus + 1) % len(all)
		case tcell.KeyLeft:
			all[h.focus].Nudge(-1)
		case tcell.KeyRight:
			all[h.focus].Nudge(1)
		case tcell.KeyEnter:
			h.dispatch(app.StartImpact{Impactor: h.sliders.Config()})
		}
	case app.ViewSimulation:
		if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == 'r') {
			h.dispatch(app.Restart{})
			if h.lastErr != nil {
				level.Debug(h.logger).Log("msg", "restart ignored", "err", h.lastErr)
				h.lastErr = nil
			}
		}
	}
	return true
}

func (h *host) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func rgbStyle(c sim.RGB) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func (h *host) draw() {
	h.screen.Clear()
	w, ht := h.screen.Size()
	cam := h.app.Camera()

	switch h.app.View() {
	case app.ViewDesigner:
		preview := scene.NewBody(h.draft.Config(), h.app.Settings().Simulation.PlanetRadius)
		if h.earth {
			preview = scene.NewBody(sim.DefaultEarth(), h.app.Settings().Simulation.PlanetRadius)
		}
		h.drawBody(cam, preview, w, ht)
		h.drawDesigner()
	case app.ViewSetup:
		h.drawBody(cam, h.app.Body(), w, ht)
		h.drawSetup()
	case app.ViewTransition:
		h.text(1, 0, "...", tcell.StyleDefault)
	case app.ViewSimulation:
		h.drawBody(cam, h.app.Body(), w, ht)
		h.drawSimulation(cam, w, ht)
	}

	status := "q/Esc: quit"
	if h.lastErr != nil {
		status = "Error: " + h.lastErr.Error()
	}
	h.text(1, ht-1, status, tcell.StyleDefault.Foreground(tcell.ColorGray))
	h.screen.Show()
}

// drawBody shades the planet disc cell by cell, lit from the upper left.
func (h *host) drawBody(cam scene.Camera, b *scene.Body, w, ht int) {
	if b == nil {
		return
	}
	c, ok := cam.Project(r3.Vec{}, float64(w), float64(ht), cellAspect)
	if !ok {
		return
	}
	r := cam.ProjectRadius(r3.Vec{}, b.Radius, float64(ht))
	ar := 0.0
	if b.Atmosphere > 0 {
		ar = cam.ProjectRadius(r3.Vec{}, b.Atmosphere, float64(ht))
	}
	surface := b.Surface()
	atmo := rgbStyle(b.AtmosphereColor)

	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - c.X) * cellAspect
			dy := float64(y) + 0.5 - c.Y
			d := math.Hypot(dx, dy)
			switch {
			case d <= r:
				nz := math.Sqrt(1 - (d*d)/(r*r))
				light := clamp01(0.2 + 0.8*(nz*0.6-dx/r*0.4-dy/r*0.4))
				col := scene.Scale(surface, 0.4+0.8*light)
				if b.Banded && int(math.Floor(dy/r*6))%2 == 0 {
					col = scene.Scale(col, 0.75)
				}
				i := int(light * float64(len(shades)-1))
				h.screen.SetContent(x, y, rune(shades[i]), nil, rgbStyle(col))
			case ar > 0 && d <= ar:
				h.screen.SetContent(x, y, '·', nil, atmo)
			}
		}
	}
}

func (h *host) drawDesigner() {
	d := h.draft
	name := d.Type.Title()
	if h.earth {
		name = "Earth (default)"
	}
	h.text(1, 0, "Design your planet", tcell.StyleDefault.Bold(true))
	h.text(1, 1, "Type: "+name, tcell.StyleDefault)
	h.text(1, 2, "Colour: "+d.Color.Hex(), rgbStyle(d.Color))
	h.text(1, 3, "Diameter: "+d.Diameter.Label(), tcell.StyleDefault)
	h.text(1, 4, "Atmosphere: "+d.Atmosphere.Label(), tcell.StyleDefault)
	h.text(1, 5, "Left/Right type, Up/Down atmosphere, d default Earth, Enter confirm", tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func (h *host) drawSetup() {
	h.text(1, 0, "Target: "+h.app.TargetName(), tcell.StyleDefault.Bold(true))
	for i, s := range h.sliders.All() {
		style := tcell.StyleDefault
		marker := "  "
		if i == h.focus {
			style = style.Reverse(true)
			marker = "> "
		}
		h.text(1, 2+i, marker+s.Name+": "+s.Label(), style)
	}
	h.text(1, 6, "Up/Down select, Left/Right adjust, Enter launch", tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func (h *host) drawSimulation(cam scene.Camera, w, ht int) {
	s := h.app.Session()
	if s == nil {
		return
	}
	fw, fh := float64(w), float64(ht)
	radius := s.Tuning().PlanetRadius

	path := s.Trajectory().Sample(config.TrajectorySamples)
	for i, p := range path {
		if float64(i)/float64(len(path)-1) < s.State().Progress || !cam.Visible(p, radius) {
			continue
		}
		if sp, ok := cam.Project(p, fw, fh, cellAspect); ok {
			h.screen.SetContent(int(sp.X), int(sp.Y), '.', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
		}
	}

	if s.MeteorVisible() && cam.Visible(s.Position(), radius) {
		if sp, ok := cam.Project(s.Position(), fw, fh, cellAspect); ok {
			x, y := int(sp.X), int(sp.Y)
			if op := s.PlasmaOpacity(); op > 0 {
				glow := tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, int32(160+80*op), int32(60*op)))
				tail := r3.Sub(s.Position(), r3.Scale(2, s.Heading()))
				if tp, ok := cam.Project(tail, fw, fh, cellAspect); ok {
					h.screen.SetContent(int(tp.X), int(tp.Y), '~', nil, glow)
				}
				h.screen.SetContent(x-1, y, '(', nil, glow)
				h.screen.SetContent(x+1, y, ')', nil, glow)
			}
			h.screen.SetContent(x, y, '@', nil, tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x99, 0x88, 0x77)))
		}
	}

	if s.Stage() == sim.StageImpact {
		if tp, ok := cam.Project(s.Trajectory().Target(), fw, fh, cellAspect); ok {
			h.screen.SetContent(int(tp.X), int(tp.Y), '*', nil, tcell.StyleDefault.Foreground(tcell.ColorOrangeRed).Bold(true))
		}
	}

	hud := h.app.HUD()
	h.text(1, 0, "Target: "+h.app.TargetName(), tcell.StyleDefault.Bold(true))
	h.text(1, 1, hud.AltitudeText(), tcell.StyleDefault)
	h.text(1, 2, hud.SpeedText(), tcell.StyleDefault)
	h.text(1, 3, fmt.Sprintf("Stage: %s", s.Stage()), tcell.StyleDefault)

	lines := hud.ReportLines()
	for i, l := range lines {
		h.text(w-40, 1+i, l, tcell.StyleDefault.Foreground(tcell.ColorOrange))
	}
	if h.app.RestartVisible() {
		h.text(w-40, 2+len(lines), "[Enter] Restart", tcell.StyleDefault.Reverse(true))
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
