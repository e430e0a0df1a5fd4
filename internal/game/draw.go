package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iburimskiy/impact-visualization/internal/app"
	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/scene"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const (
	sliderX     = 60
	sliderY     = 420
	sliderW     = 360
	sliderH     = 14
	sliderGap   = 34
	panelX      = config.WindowWidth - 300
	panelY      = 20
	panelW      = 280
	surfaceRows = 9
	surfaceCols = 18
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

func sliderRect(i int) rect {
	return rect{x: sliderX, y: sliderY + i*sliderGap, w: sliderW, h: sliderH}
}

// button is a clickable box that fires on release over itself.
type button struct {
	x, y, w, h int
	label      string

	hovered bool
	pressed bool
}

// update tracks hover and press state and reports a completed click.
func (b *button) update(mx, my int) bool {
	b.hovered = rect{b.x, b.y, b.w, b.h}.contains(mx, my)
	if b.hovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		b.pressed = true
	}
	clicked := false
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		clicked = b.pressed && b.hovered
		b.pressed = false
	}
	return clicked
}

func (b *button) draw(screen *ebiten.Image) {
	var bgColor color.Color
	if b.pressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if b.hovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), bgColor, false)
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	textWidth := len(b.label) * 6 // debug font glyph width
	ebitenutil.DebugPrintAt(screen, b.label, b.x+(b.w-textWidth)/2, b.y+(b.h-16)/2)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawBackground(screen)

	cam := g.app.Camera()
	switch g.app.View() {
	case app.ViewDesigner:
		preview := scene.NewBody(g.draft.Config(), g.app.Settings().Simulation.PlanetRadius)
		preview.Rotation = g.time * 0.3
		g.drawBody(screen, cam, preview)
		g.drawDesigner(screen)
	case app.ViewSetup:
		g.drawBody(screen, cam, g.app.Body())
		g.drawSetup(screen)
	case app.ViewTransition:
		g.drawBody(screen, cam, g.app.Body())
		g.drawFade(screen)
	case app.ViewSimulation:
		g.drawBody(screen, cam, g.app.Body())
		g.drawSimulation(screen, cam)
	}

	g.drawLevelMeter(screen)
	status := g.status
	if g.dialogOpen {
		status = "Waiting for dialog..."
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, config.WindowHeight-20)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	for y := 0; y < config.WindowHeight; y += 2 {
		ratio := float64(y) / float64(config.WindowHeight)
		r := uint8(2 + 6*ratio)
		gv := uint8(3 + 8*ratio + 3*math.Sin(g.time*0.2+ratio*math.Pi))
		b := uint8(10 + 22*ratio)
		vector.DrawFilledRect(screen, 0, float32(y), config.WindowWidth, 2, color.RGBA{R: r, G: gv, B: b, A: 255}, false)
	}
	for _, s := range g.stars {
		a := 0.55 + 0.45*math.Sin(g.time*1.5+s.phase)
		vector.DrawFilledCircle(screen, s.x, s.y, s.size, color.RGBA{R: uint8(230 * a), G: uint8(235 * a), B: uint8(255 * a), A: uint8(255 * a)}, false)
	}
}

// surfacePoint is a point on a sphere of radius r at latitude lat and
// longitude lon, spun by rot about the vertical axis.
func surfacePoint(r, lat, lon, rot float64) r3.Vec {
	return r3.Vec{
		X: r * math.Cos(lat) * math.Cos(lon+rot),
		Y: r * math.Sin(lat),
		Z: r * math.Cos(lat) * math.Sin(lon+rot),
	}
}

func (g *Game) project(cam scene.Camera, p r3.Vec) (scene.Point, bool) {
	return cam.Project(p, config.WindowWidth, config.WindowHeight, 1)
}

func (g *Game) drawBody(screen *ebiten.Image, cam scene.Camera, b *scene.Body) {
	if b == nil {
		return
	}
	c, ok := g.project(cam, r3.Vec{})
	if !ok {
		return
	}
	r := cam.ProjectRadius(r3.Vec{}, b.Radius, config.WindowHeight)
	cx, cy := float32(c.X), float32(c.Y)

	if b.Atmosphere > 0 {
		ar := cam.ProjectRadius(r3.Vec{}, b.Atmosphere, config.WindowHeight)
		for i := 0; i < 4; i++ {
			f := float64(i) / 4
			vector.DrawFilledCircle(screen, cx, cy, float32(ar-(ar-r)*f), rgba(b.AtmosphereColor, b.AtmosphereAlpha*0.35), true)
		}
	}

	surface := b.Surface()
	vector.DrawFilledCircle(screen, cx, cy, float32(r), rgba(scene.Scale(surface, 0.25), 1), true)
	// Light comes from the upper left.
	for i := 0; i < 8; i++ {
		f := float64(i) / 8
		shift := float32(r * f * 0.35)
		vector.DrawFilledCircle(screen, cx-shift, cy-shift, float32(r*(1-f*0.8)), rgba(scene.Scale(surface, 0.35+0.9*f), 1), true)
	}

	g.drawSurface(screen, cam, b)

	if b.EmissiveStrength >= 0.5 {
		vector.StrokeCircle(screen, cx, cy, float32(r)+2, 4, rgba(b.Emissive, 0.35), true)
	}
	if b.Glossy {
		vector.DrawFilledCircle(screen, cx-float32(r*0.45), cy-float32(r*0.45), float32(r*0.12), color.RGBA{R: 90, G: 90, B: 90, A: 90}, true)
	}
}

// drawSurface marks spinning surface features so the rotation is visible.
func (g *Game) drawSurface(screen *ebiten.Image, cam scene.Camera, b *scene.Body) {
	dot := float32(math.Max(1, cam.ProjectRadius(r3.Vec{}, b.Radius, config.WindowHeight)/40))
	for i := 1; i < surfaceRows; i++ {
		lat := math.Pi * (float64(i)/surfaceRows - 0.5)
		for j := 0; j < surfaceCols; j++ {
			lon := 2 * math.Pi * float64(j) / surfaceCols
			p := surfacePoint(b.Radius, lat, lon, b.Rotation)
			if !cam.Visible(p, b.Radius) {
				continue
			}
			sp, ok := g.project(cam, p)
			if !ok {
				continue
			}
			var c color.RGBA
			switch {
			case b.Banded:
				c = rgba(scene.Scale(b.Surface(), 0.6+0.5*float64(i%2)), 0.8)
			case b.EmissiveStrength > 0:
				if (i+j)%3 != 0 {
					continue
				}
				c = rgba(b.Emissive, 0.7)
			default:
				c = rgba(scene.Scale(b.Base, 0.7), 0.6)
			}
			vector.DrawFilledCircle(screen, float32(sp.X), float32(sp.Y), dot, c, true)
		}
	}

	if b.Clouds == 0 {
		return
	}
	for i := 0; i < 40; i++ {
		lat := math.Asin(math.Sin(float64(i)*2.399)) * 0.8
		lon := float64(i) * 0.97
		p := surfacePoint(b.Clouds, lat, lon, b.CloudRotation)
		if !cam.Visible(p, b.Radius) {
			continue
		}
		if sp, ok := g.project(cam, p); ok {
			vector.DrawFilledCircle(screen, float32(sp.X), float32(sp.Y), dot*2.5, color.RGBA{R: 180, G: 180, B: 180, A: 180}, true)
		}
	}
}

func (g *Game) drawDesigner(screen *ebiten.Image) {
	d := g.draft
	lines := []string{
		"Design your planet",
		"",
		fmt.Sprintf("Type:       %s   (Left/Right)", d.Type.Title()),
		fmt.Sprintf("Colour:     %s", d.Color.Hex()),
		fmt.Sprintf("Diameter:   %s   (PgUp/PgDn)", d.Diameter.Label()),
		fmt.Sprintf("Atmosphere: %s   (Up/Down)", d.Atmosphere.Label()),
		"",
		"C: full designer dialog   D: default Earth   Enter: confirm   Esc: quit",
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 20, 20+i*16)
	}
	vector.DrawFilledRect(screen, 120, 52, 14, 14, rgba(d.Color, 1), false)
	g.primary.draw(screen)
	g.secondary.draw(screen)
}

func (g *Game) drawSetup(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Target: "+g.app.TargetName(), 20, 20)
	ebitenutil.DebugPrintAt(screen, "Up/Down select, Left/Right adjust (Shift x10), I: dialog, O: impact sound, Enter: launch", 20, 36)

	for i, s := range g.sliders.All() {
		g.drawSlider(screen, sliderRect(i), s, i == g.focus)
	}
	g.primary.draw(screen)
	g.secondary.draw(screen)
}

func (g *Game) drawSlider(screen *ebiten.Image, r rect, s *app.Slider, focused bool) {
	progress := 0.0
	if s.Max > s.Min {
		progress = (s.Value() - s.Min) / (s.Max - s.Min)
	}
	border := color.RGBA{R: 70, G: 80, B: 100, A: 255}
	if focused {
		border = color.RGBA{R: 150, G: 170, B: 200, A: 255}
	}
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, border, false)

	hr, hg, hb := hsvToRgb(200-160*progress, 0.8, 0.9)
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(progress*float64(r.w)), float32(r.h), color.RGBA{R: hr, G: hg, B: hb, A: 180}, false)

	ix := float32(float64(r.x) + progress*float64(r.w))
	iy := float32(r.y + r.h/2)
	vector.DrawFilledCircle(screen, ix, iy, 8, color.White, true)
	vector.StrokeCircle(screen, ix, iy, 8, 2, color.RGBA{R: 100, G: 110, B: 130, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, s.Name+": "+s.Label(), r.x, r.y-16)
}

func (g *Game) drawFade(screen *ebiten.Image) {
	delay := g.app.Settings().TransitionDelay
	a := 1.0
	if delay > 0 {
		a = clamp01(float64(g.app.Scheduler().Now()-g.viewSince) / float64(delay))
	}
	vector.DrawFilledRect(screen, 0, 0, config.WindowWidth, config.WindowHeight, color.RGBA{A: uint8(200 * a)}, false)
}

func (g *Game) drawSimulation(screen *ebiten.Image, cam scene.Camera) {
	s := g.app.Session()
	if s == nil {
		return
	}
	radius := s.Tuning().PlanetRadius

	// Path ahead of the impactor.
	path := s.Trajectory().Sample(config.TrajectorySamples)
	for i := 1; i < len(path); i++ {
		if float64(i)/float64(len(path)-1) < s.State().Progress {
			continue
		}
		a, okA := g.project(cam, path[i-1])
		b, okB := g.project(cam, path[i])
		if !okA || !okB || !cam.Visible(path[i], radius) || i%2 == 0 {
			continue
		}
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, color.RGBA{R: 120, G: 120, B: 140, A: 120}, true)
	}

	if s.MeteorVisible() && cam.Visible(s.Position(), radius) {
		g.drawMeteor(screen, cam, s)
	}

	if s.Stage() == sim.StageImpact {
		g.drawImpactFlash(screen, cam, s)
	}

	hud := g.app.HUD()
	ebitenutil.DebugPrintAt(screen, "Target: "+g.app.TargetName(), 20, 20)
	ebitenutil.DebugPrintAt(screen, hud.AltitudeText(), 20, 36)
	ebitenutil.DebugPrintAt(screen, hud.SpeedText(), 20, 52)
	ebitenutil.DebugPrintAt(screen, formatElapsed(g.app.Scheduler().Now()-g.viewSince), 20, 68)

	if lines := hud.ReportLines(); lines != nil {
		h := len(lines)*18 + 16
		vector.DrawFilledRect(screen, panelX, panelY, panelW, float32(h), color.RGBA{R: 10, G: 12, B: 20, A: 210}, false)
		vector.StrokeRect(screen, panelX, panelY, panelW, float32(h), 2, color.RGBA{R: 200, G: 90, B: 40, A: 255}, false)
		for i, l := range lines {
			ebitenutil.DebugPrintAt(screen, l, panelX+10, panelY+8+i*18)
		}
	}
	if g.app.RestartVisible() {
		g.primary.draw(screen)
	}
}

func (g *Game) drawMeteor(screen *ebiten.Image, cam scene.Camera, s *sim.Session) {
	pos := s.Position()
	p, ok := g.project(cam, pos)
	if !ok {
		return
	}
	r := math.Max(2, cam.ProjectRadius(pos, s.MeteorScale(), config.WindowHeight))

	if op := s.PlasmaOpacity(); op > 0 {
		tail := r3.Sub(pos, r3.Scale(1.5*s.PlasmaScale(), s.Heading()))
		if t, ok := g.project(cam, tail); ok {
			vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(t.X), float32(t.Y), float32(r*1.5), plasmaColor(op*0.6), true)
		}
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(r*2*s.PlasmaScale()), plasmaColor(op), true)
	}
	vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(r), color.RGBA{R: 0x66, G: 0x55, B: 0x44, A: 255}, true)
}

func (g *Game) drawImpactFlash(screen *ebiten.Image, cam scene.Camera, s *sim.Session) {
	report := s.Report()
	if report == nil {
		return
	}
	p, ok := g.project(cam, s.Trajectory().Target())
	if !ok || !cam.Visible(s.Trajectory().Target(), s.Tuning().PlanetRadius) {
		return
	}
	age := (g.app.Scheduler().Now() - g.impactAt).Seconds()
	fade := clamp01(1 - age/2)
	if fade == 0 {
		return
	}
	base := cam.ProjectRadius(s.Trajectory().Target(), 0.5+math.Log10(report.MegatonsTNT+1), config.WindowHeight)
	ring := float32(base * (0.5 + 2*age))
	vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), ring*0.6, plasmaColor(fade), true)
	vector.StrokeCircle(screen, float32(p.X), float32(p.Y), ring, 3, color.RGBA{R: uint8(255 * fade), G: uint8(200 * fade), B: uint8(120 * fade), A: uint8(255 * fade)}, true)
}

// drawLevelMeter shows the loudness of what the speaker is playing.
func (g *Game) drawLevelMeter(screen *ebiten.Image) {
	const w, h = 120, 8
	x, y := float32(config.WindowWidth-w-12), float32(config.WindowHeight-18)
	vector.DrawFilledRect(screen, x, y, w, h, color.RGBA{R: 20, G: 25, B: 35, A: 200}, false)
	r, gv, b := hsvToRgb(120-120*g.level, 0.8, 0.9)
	vector.DrawFilledRect(screen, x, y, float32(w*g.level), h, color.RGBA{R: r, G: gv, B: b, A: 220}, false)
	vector.StrokeRect(screen, x, y, w, h, 1, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)
}
