// Package scene describes what the hosts draw: the target body built from a
// planet design and the perspective camera looking at it.
package scene

import (
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// Body is the renderable description of the target planet.
type Body struct {
	Type   sim.PlanetType
	Radius float64

	Base             sim.RGB
	Emissive         sim.RGB
	EmissiveStrength float64
	Glossy           bool
	Banded           bool // gaseous and lava bodies draw surface bands

	// Atmosphere is the shell radius, or 0 for none.
	Atmosphere      float64
	AtmosphereColor sim.RGB
	AtmosphereAlpha float64
	// Clouds is the cloud shell radius, or 0 for none.
	Clouds float64

	Rotation      float64
	CloudRotation float64
}

// NewBody derives the look of a planet from its design.
func NewBody(cfg sim.PlanetConfig, radius float64) *Body {
	b := &Body{Type: cfg.Type, Radius: radius}

	if cfg.Type == sim.PlanetEarth {
		b.Base = sim.RGB{R: 0x2a, G: 0x6f, B: 0xd6}
		b.Emissive = sim.RGB{R: 0x3f, G: 0x9b, B: 0x4f} // land
		b.EmissiveStrength = 0.35
		b.Glossy = true
		b.Atmosphere = radius + 0.25
		b.AtmosphereColor = sim.RGB{R: 0x80, G: 0xb3, B: 0xff}
		b.AtmosphereAlpha = 0.35
		b.Clouds = radius + 0.05
		return b
	}

	b.Base = cfg.Color
	switch cfg.Type {
	case sim.PlanetRocky:
		b.Base = multiply(cfg.Color, sim.RGB{R: 0x44, G: 0x44, B: 0x44})
	case sim.PlanetGaseous:
		b.Banded = true
		b.Emissive = cfg.Color
		b.EmissiveStrength = 0.2
	case sim.PlanetIcy:
		b.Glossy = true
		b.Emissive = sim.RGB{R: 0xaa, G: 0xee, B: 0xff}
		b.EmissiveStrength = 0.15
	case sim.PlanetLava:
		b.Banded = true
		b.Emissive = sim.RGB{R: 0xff, G: 0x45, B: 0x00}
		b.EmissiveStrength = 0.8
	}

	if cfg.Atmosphere > 0 {
		b.Atmosphere = radius * (1 + cfg.Atmosphere/200)
		b.AtmosphereColor = sim.RGB{R: 0x00, G: 0xaa, B: 0xff}
		b.AtmosphereAlpha = 0.2
	}
	return b
}

// Spin advances the body and cloud rotation by one tick.
func (b *Body) Spin(body, clouds float64) {
	b.Rotation += body
	if b.Clouds > 0 {
		b.CloudRotation += clouds
	}
}

// Surface returns the lit surface color: base plus the emissive tint.
func (b *Body) Surface() sim.RGB {
	return Blend(b.Base, b.Emissive, b.EmissiveStrength)
}

func multiply(a, b sim.RGB) sim.RGB {
	return sim.RGB{
		R: uint8(uint16(a.R) * uint16(b.R) / 255),
		G: uint8(uint16(a.G) * uint16(b.G) / 255),
		B: uint8(uint16(a.B) * uint16(b.B) / 255),
	}
}

// Blend mixes b into a by f in [0,1].
func Blend(a, b sim.RGB, f float64) sim.RGB {
	if f <= 0 {
		return a
	}
	if f > 1 {
		f = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-f) + float64(y)*f + 0.5)
	}
	return sim.RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// Scale darkens or brightens c by f, clamped to the channel range.
func Scale(c sim.RGB, f float64) sim.RGB {
	ch := func(x uint8) uint8 {
		v := float64(x) * f
		if v > 255 {
			return 255
		}
		if v < 0 {
			return 0
		}
		return uint8(v)
	}
	return sim.RGB{R: ch(c.R), G: ch(c.G), B: ch(c.B)}
}
