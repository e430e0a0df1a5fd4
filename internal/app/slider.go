package app

import (
	"fmt"
	"math"

	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// Slider is a bounded, stepped numeric control.
type Slider struct {
	Name           string
	Min, Max, Step float64
	value          float64
	format         func(float64) string
}

func NewSlider(name string, min, max, step, value float64, format func(float64) string) *Slider {
	s := &Slider{Name: name, Min: min, Max: max, Step: step, format: format}
	s.Set(value)
	return s
}

func (s *Slider) Value() float64 { return s.value }

// Set clamps v into [Min, Max] and snaps it to the step grid.
func (s *Slider) Set(v float64) {
	if math.IsNaN(v) {
		v = s.Min
	}
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	s.value = math.Max(s.Min, math.Min(s.Max, v))
}

// Nudge moves the slider by n steps.
func (s *Slider) Nudge(n int) {
	s.Set(s.value + float64(n)*s.Step)
}

// Label is the value as shown next to the slider.
func (s *Slider) Label() string {
	if s.format == nil {
		return fmt.Sprintf("%g", s.value)
	}
	return s.format(s.value)
}

func SizeLabel(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.1f km", m/1000)
}

func SpeedLabel(v float64) string { return fmt.Sprintf("%.0f km/s", v) }
func AngleLabel(v float64) string { return fmt.Sprintf("%.0f°", v) }

// ImpactorSliders are the controls of the impact setup view.
type ImpactorSliders struct {
	Size, Speed, Angle *Slider
}

func NewImpactorSliders() *ImpactorSliders {
	return &ImpactorSliders{
		Size:  NewSlider("Size", config.SizeMin, config.SizeMax, config.SizeStep, config.SizeDefault, SizeLabel),
		Speed: NewSlider("Speed", config.SpeedMin, config.SpeedMax, config.SpeedStep, config.SpeedDefault, SpeedLabel),
		Angle: NewSlider("Angle", config.AngleMin, config.AngleMax, config.AngleStep, config.AngleDefault, AngleLabel),
	}
}

// All returns the sliders in display order.
func (s *ImpactorSliders) All() []*Slider {
	return []*Slider{s.Size, s.Speed, s.Angle}
}

func (s *ImpactorSliders) Config() sim.ImpactorConfig {
	return sim.ImpactorConfig{
		SizeMeters:    s.Size.Value(),
		SpeedKmPerSec: s.Speed.Value(),
		AngleDegrees:  s.Angle.Value(),
	}
}

// Load moves the sliders to c, clamped to their bounds.
func (s *ImpactorSliders) Load(c sim.ImpactorConfig) {
	s.Size.Set(c.SizeMeters)
	s.Speed.Set(c.SpeedKmPerSec)
	s.Angle.Set(c.AngleDegrees)
}

// PresetColor is the starting color offered for each planet type.
func PresetColor(t sim.PlanetType) sim.RGB {
	switch t {
	case sim.PlanetRocky:
		return sim.RGB{R: 0x8b, G: 0x5a, B: 0x2b}
	case sim.PlanetGaseous:
		return sim.RGB{R: 0xd8, G: 0xa6, B: 0x57}
	case sim.PlanetIcy:
		return sim.RGB{R: 0xcf, G: 0xef, B: 0xff}
	case sim.PlanetLava:
		return sim.RGB{R: 0xff, G: 0x45, B: 0x00}
	}
	return sim.DefaultEarth().Color
}

// PlanetDraft is the in-progress planet design of the designer view.
type PlanetDraft struct {
	Type       sim.PlanetType
	Color      sim.RGB
	Diameter   *Slider
	Atmosphere *Slider
}

func NewPlanetDraft() *PlanetDraft {
	d := &PlanetDraft{
		Diameter: NewSlider("Diameter", 1000, 150000, 1, 12742, func(v float64) string {
			return fmt.Sprintf("%.0f km", v)
		}),
		Atmosphere: NewSlider("Atmosphere", 0, 100, 5, 50, func(v float64) string {
			return fmt.Sprintf("%.0f%%", v)
		}),
	}
	d.SetType(sim.PlanetRocky)
	return d
}

// SetType selects a preset and resets the color to its preset color.
func (d *PlanetDraft) SetType(t sim.PlanetType) {
	d.Type = t
	d.Color = PresetColor(t)
}

// CycleType steps through the custom presets, skipping Earth.
func (d *PlanetDraft) CycleType(n int) {
	custom := []sim.PlanetType{sim.PlanetRocky, sim.PlanetGaseous, sim.PlanetIcy, sim.PlanetLava}
	idx := 0
	for i, t := range custom {
		if t == d.Type {
			idx = i
		}
	}
	idx = ((idx+n)%len(custom) + len(custom)) % len(custom)
	d.SetType(custom[idx])
}

func (d *PlanetDraft) Config() sim.PlanetConfig {
	return sim.PlanetConfig{
		Type:       d.Type,
		Color:      d.Color,
		Diameter:   d.Diameter.Value(),
		Atmosphere: d.Atmosphere.Value(),
	}
}
