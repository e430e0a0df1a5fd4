package sim

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned for impactor or planet values outside their domain.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDegenerateGeometry is returned when a trajectory cannot be built from the target.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// PlanetType selects one of the planet presets.
type PlanetType int

const (
	PlanetEarth PlanetType = iota
	PlanetRocky
	PlanetGaseous
	PlanetIcy
	PlanetLava
)

var planetTypeNames = [...]string{"earth", "rocky", "gaseous", "icy", "lava"}

// PlanetTypes lists every preset in display order.
func PlanetTypes() []PlanetType {
	return []PlanetType{PlanetEarth, PlanetRocky, PlanetGaseous, PlanetIcy, PlanetLava}
}

func (p PlanetType) String() string {
	if p < 0 || int(p) >= len(planetTypeNames) {
		return "unknown"
	}
	return planetTypeNames[p]
}

// Title returns the capitalized type name, e.g. "Gaseous".
func (p PlanetType) Title() string {
	s := p.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePlanetType maps a preset name to its type.
func ParsePlanetType(s string) (PlanetType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range planetTypeNames {
		if n == name {
			return PlanetType(i), nil
		}
	}
	return 0, fmt.Errorf("planet type %q: %w", s, ErrInvalidConfiguration)
}

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses #rrggbb or rrggbb.
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("color %q: %w", s, ErrInvalidConfiguration)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, ErrInvalidConfiguration)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// PlanetConfig is the confirmed planet design. Diameter is shown to the user
// only; the scene always uses a fixed radius.
type PlanetConfig struct {
	Type       PlanetType
	Color      RGB
	Diameter   float64 // km
	Atmosphere float64 // 0-100
}

// DefaultEarth is the planet used by the "default Earth" shortcut.
func DefaultEarth() PlanetConfig {
	return PlanetConfig{
		Type:     PlanetEarth,
		Color:    RGB{R: 0x2a, G: 0x6f, B: 0xd6},
		Diameter: 12742,
	}
}

// Name is the label shown on the impact setup view.
func (p PlanetConfig) Name() string {
	if p.Type == PlanetEarth {
		return "Default Earth"
	}
	return fmt.Sprintf("Custom %s Planet", p.Type.Title())
}

func (p PlanetConfig) Validate() error {
	if p.Type < PlanetEarth || p.Type > PlanetLava {
		return fmt.Errorf("planet type %d: %w", int(p.Type), ErrInvalidConfiguration)
	}
	if !finite(p.Diameter) || p.Diameter < 0 {
		return fmt.Errorf("planet diameter %v: %w", p.Diameter, ErrInvalidConfiguration)
	}
	if !finite(p.Atmosphere) || p.Atmosphere < 0 {
		return fmt.Errorf("planet atmosphere %v: %w", p.Atmosphere, ErrInvalidConfiguration)
	}
	return nil
}

// ImpactorConfig describes the incoming body.
type ImpactorConfig struct {
	SizeMeters    float64
	SpeedKmPerSec float64
	AngleDegrees  float64 // 0 grazing, 90 vertical
}

// Validate rejects values that would make the impact analysis non-finite or
// the trajectory undefined.
func (c ImpactorConfig) Validate() error {
	if !finite(c.SizeMeters) || c.SizeMeters <= 0 {
		return fmt.Errorf("impactor size %v m: %w", c.SizeMeters, ErrInvalidConfiguration)
	}
	if !finite(c.SpeedKmPerSec) || c.SpeedKmPerSec <= 0 {
		return fmt.Errorf("impactor speed %v km/s: %w", c.SpeedKmPerSec, ErrInvalidConfiguration)
	}
	if err := validateAngle(c.AngleDegrees); err != nil {
		return err
	}
	return nil
}

func validateAngle(deg float64) error {
	if !finite(deg) || deg < 0 || deg > 90 {
		return fmt.Errorf("entry angle %v°: %w", deg, ErrInvalidConfiguration)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
