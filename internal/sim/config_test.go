package sim

import (
	"errors"
	"math"
	"testing"
)

func TestPlanetTypeRoundTrip(t *testing.T) {
	for _, p := range PlanetTypes() {
		got, err := ParsePlanetType(" " + p.Title() + " ")
		if err != nil {
			t.Fatalf("%v: %s", p, err)
		}
		if got != p {
			t.Fatalf("parsed %v, want %v", got, p)
		}
	}
	if _, err := ParsePlanetType("comet"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("comet: err = %v", err)
	}
	if s := PlanetType(42).String(); s != "unknown" {
		t.Fatalf("out of range type = %q", s)
	}
}

func TestPlanetName(t *testing.T) {
	if n := DefaultEarth().Name(); n != "Default Earth" {
		t.Errorf("earth name = %q", n)
	}
	if n := (PlanetConfig{Type: PlanetGaseous}).Name(); n != "Custom Gaseous Planet" {
		t.Errorf("gaseous name = %q", n)
	}
}

func TestParseRGB(t *testing.T) {
	c, err := ParseRGB("#ff4500")
	if err != nil {
		t.Fatal(err)
	}
	if c != (RGB{R: 0xff, G: 0x45, B: 0x00}) {
		t.Fatalf("parsed %+v", c)
	}
	if c.Hex() != "#ff4500" {
		t.Fatalf("hex = %q", c.Hex())
	}
	for _, bad := range []string{"", "#fff", "#gg0000", "1234567"} {
		if _, err := ParseRGB(bad); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%q: err = %v", bad, err)
		}
	}
}

func TestPlanetValidate(t *testing.T) {
	if err := DefaultEarth().Validate(); err != nil {
		t.Fatal(err)
	}
	bad := []PlanetConfig{
		{Type: PlanetType(-1)},
		{Type: PlanetType(9)},
		{Type: PlanetRocky, Diameter: -1},
		{Type: PlanetIcy, Atmosphere: math.Inf(1)},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%+v: err = %v", p, err)
		}
	}
}

func TestImpactorValidate(t *testing.T) {
	good := []ImpactorConfig{
		{SizeMeters: 10, SpeedKmPerSec: 11, AngleDegrees: 0},
		{SizeMeters: 10000, SpeedKmPerSec: 72, AngleDegrees: 90},
	}
	for _, c := range good {
		if err := c.Validate(); err != nil {
			t.Errorf("%+v: %s", c, err)
		}
	}
	bad := []ImpactorConfig{
		{SizeMeters: 0, SpeedKmPerSec: 20, AngleDegrees: 45},
		{SizeMeters: -5, SpeedKmPerSec: 20, AngleDegrees: 45},
		{SizeMeters: 50, SpeedKmPerSec: 0, AngleDegrees: 45},
		{SizeMeters: math.NaN(), SpeedKmPerSec: 20, AngleDegrees: 45},
		{SizeMeters: 50, SpeedKmPerSec: 20, AngleDegrees: -0.1},
		{SizeMeters: 50, SpeedKmPerSec: 20, AngleDegrees: 90.1},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%+v: err = %v", c, err)
		}
	}
}
