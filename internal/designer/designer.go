// Package designer asks the user for planet and impactor settings through
// native dialogs.
package designer

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// ErrCanceled is returned when the user dismisses a dialog. The caller keeps
// its current view.
var ErrCanceled = errors.New("dialog canceled")

// ErrInvalidInput is returned when a typed value cannot be used.
var ErrInvalidInput = errors.New("invalid input")

// Dialogs is the subset of zenity the designer uses.
type Dialogs struct {
	List        func(text string, items []string, options ...zenity.Option) (string, error)
	SelectColor func(options ...zenity.Option) (color.Color, error)
	Entry       func(text string, options ...zenity.Option) (string, error)
	SelectFile  func(options ...zenity.Option) (string, error)
}

// Native returns dialogs backed by the desktop's zenity implementation.
func Native() Dialogs {
	return Dialogs{
		List:        zenity.List,
		SelectColor: zenity.SelectColor,
		Entry:       zenity.Entry,
		SelectFile:  zenity.SelectFile,
	}
}

func canceled(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return ErrCanceled
	}
	return err
}

// PromptPlanet walks the user through type, colour, diameter and atmosphere,
// starting from cur.
func (d Dialogs) PromptPlanet(cur sim.PlanetConfig) (sim.PlanetConfig, error) {
	var titles []string
	for _, t := range sim.PlanetTypes() {
		if t != sim.PlanetEarth {
			titles = append(titles, t.Title())
		}
	}
	choice, err := d.List("Planet type", titles,
		zenity.Title("Design a planet"),
		zenity.DefaultItems(cur.Type.Title()),
	)
	if err != nil {
		return cur, canceled(err)
	}
	typ, err := sim.ParsePlanetType(choice)
	if err != nil {
		return cur, fmt.Errorf("planet type %q: %w", choice, ErrInvalidInput)
	}

	c, err := d.SelectColor(
		zenity.Title("Planet colour"),
		zenity.Color(color.RGBA{R: cur.Color.R, G: cur.Color.G, B: cur.Color.B, A: 255}),
	)
	if err != nil {
		return cur, canceled(err)
	}

	diameter, err := d.number("Diameter (km)", cur.Diameter, 1000, 150000)
	if err != nil {
		return cur, err
	}
	atmosphere, err := d.number("Atmosphere (0-100)", cur.Atmosphere, 0, 100)
	if err != nil {
		return cur, err
	}

	p := sim.PlanetConfig{Type: typ, Color: toRGB(c), Diameter: diameter, Atmosphere: atmosphere}
	return p, p.Validate()
}

// PromptImpactor asks for size, speed and angle, starting from cur.
func (d Dialogs) PromptImpactor(cur sim.ImpactorConfig) (sim.ImpactorConfig, error) {
	size, err := d.number("Impactor size (m)", cur.SizeMeters, config.SizeMin, config.SizeMax)
	if err != nil {
		return cur, err
	}
	speed, err := d.number("Speed (km/s)", cur.SpeedKmPerSec, config.SpeedMin, config.SpeedMax)
	if err != nil {
		return cur, err
	}
	angle, err := d.number("Entry angle (deg)", cur.AngleDegrees, config.AngleMin, config.AngleMax)
	if err != nil {
		return cur, err
	}
	c := sim.ImpactorConfig{SizeMeters: size, SpeedKmPerSec: speed, AngleDegrees: angle}
	return c, c.Validate()
}

// PromptSample asks for an audio file to play at impact.
func (d Dialogs) PromptSample(filters []string) (string, error) {
	path, err := d.SelectFile(
		zenity.Title("Impact sound"),
		zenity.FileFilters{{Name: "Audio", Patterns: filters}},
	)
	if err != nil {
		return "", canceled(err)
	}
	return path, nil
}

func (d Dialogs) number(prompt string, cur, min, max float64) (float64, error) {
	text, err := d.Entry(prompt,
		zenity.Title("Impact setup"),
		zenity.EntryText(strconv.FormatFloat(cur, 'f', -1, 64)),
	)
	if err != nil {
		return cur, canceled(err)
	}
	return parseBounded(text, prompt, min, max)
}

// parseBounded parses text as a number inside [min, max].
func parseBounded(text, name string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number: %w", name, text, ErrInvalidInput)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s: %g outside [%g, %g]: %w", name, v, min, max, ErrInvalidInput)
	}
	return v, nil
}

func toRGB(c color.Color) sim.RGB {
	r, g, b, _ := c.RGBA()
	return sim.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}
