package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// hsvToRgb converts HSV to RGB (hue: 0-360, saturation: 0-1, value: 0-1)
func hsvToRgb(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return channel(r + m), channel(g + m), channel(b + m)
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// rgba converts a scene color to a premultiplied color with opacity a.
func rgba(c sim.RGB, a float64) color.RGBA {
	a = clamp01(a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: channel(a),
	}
}

// plasmaColor shifts from orange to white-hot as the glow strengthens.
func plasmaColor(opacity float64) color.RGBA {
	r, g, b := hsvToRgb(30+30*opacity, 1-0.6*opacity, 1)
	return rgba(sim.RGB{R: r, G: g, B: b}, opacity)
}

// formatElapsed formats a duration as T+MM:SS
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("T+%02d:%02d", minutes, seconds)
}
