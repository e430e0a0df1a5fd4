package scene

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

func TestEarthBody(t *testing.T) {
	b := NewBody(sim.DefaultEarth(), 10)
	if !scalar.EqualWithinAbs(b.Atmosphere, 10.25, 1e-12) || !scalar.EqualWithinAbs(b.Clouds, 10.05, 1e-12) {
		t.Fatalf("earth shells = %v / %v", b.Atmosphere, b.Clouds)
	}
}

func TestCustomBodies(t *testing.T) {
	red := sim.RGB{R: 255}
	cases := []struct {
		typ      sim.PlanetType
		base     sim.RGB
		emissive float64
	}{
		{sim.PlanetRocky, sim.RGB{R: 0x44}, 0},
		{sim.PlanetGaseous, red, 0.2},
		{sim.PlanetIcy, red, 0.15},
		{sim.PlanetLava, red, 0.8},
	}
	for _, c := range cases {
		b := NewBody(sim.PlanetConfig{Type: c.typ, Color: red}, 10)
		if b.Base != c.base {
			t.Errorf("%v: base = %+v, want %+v", c.typ, b.Base, c.base)
		}
		if b.EmissiveStrength != c.emissive {
			t.Errorf("%v: emissive = %v", c.typ, b.EmissiveStrength)
		}
		if b.Atmosphere != 0 || b.Clouds != 0 {
			t.Errorf("%v: shells without atmosphere", c.typ)
		}
	}
}

func TestCustomAtmosphere(t *testing.T) {
	b := NewBody(sim.PlanetConfig{Type: sim.PlanetIcy, Atmosphere: 50}, 10)
	if !scalar.EqualWithinAbs(b.Atmosphere, 12.5, 1e-12) {
		t.Fatalf("atmosphere radius = %v", b.Atmosphere)
	}
}

func TestSpin(t *testing.T) {
	b := NewBody(sim.PlanetConfig{Type: sim.PlanetRocky}, 10)
	b.Spin(0.0005, 0.0007)
	if b.Rotation != 0.0005 || b.CloudRotation != 0 {
		t.Fatalf("rotation = %v / %v", b.Rotation, b.CloudRotation)
	}
	e := NewBody(sim.DefaultEarth(), 10)
	e.Spin(0.0005, 0.0007)
	if e.CloudRotation != 0.0007 {
		t.Fatalf("cloud rotation = %v", e.CloudRotation)
	}
}

func TestBlendAndScale(t *testing.T) {
	a, b := sim.RGB{}, sim.RGB{R: 200, G: 100, B: 50}
	if got := Blend(a, b, 0.5); got != (sim.RGB{R: 100, G: 50, B: 25}) {
		t.Errorf("blend = %+v", got)
	}
	if got := Blend(a, b, 0); got != a {
		t.Errorf("zero blend = %+v", got)
	}
	if got := Scale(b, 2); got != (sim.RGB{R: 255, G: 200, B: 100}) {
		t.Errorf("scale = %+v", got)
	}
}

func TestProjectCentre(t *testing.T) {
	c := Camera{Position: r3.Vec{X: -30, Y: 20, Z: 50}, FOV: 45}
	p, ok := c.Project(r3.Vec{}, 800, 600, 1)
	if !ok {
		t.Fatal("target not visible")
	}
	if !scalar.EqualWithinAbs(p.X, 400, 1e-9) || !scalar.EqualWithinAbs(p.Y, 300, 1e-9) {
		t.Fatalf("target projected to %+v", p)
	}
	if !scalar.EqualWithinAbs(p.Depth, r3.Norm(c.Position), 1e-9) {
		t.Fatalf("depth = %v", p.Depth)
	}
	if _, ok := c.Project(r3.Vec{X: -60, Y: 40, Z: 100}, 800, 600, 1); ok {
		t.Fatal("point behind the camera projected")
	}
}

func TestProjectRadius(t *testing.T) {
	c := Camera{Position: r3.Vec{Z: 50}, FOV: 90}
	// tan(45°) = 1, so the focal length is half the height.
	if r := c.ProjectRadius(r3.Vec{}, 10, 600); !scalar.EqualWithinAbs(r, 60, 1e-9) {
		t.Fatalf("radius = %v", r)
	}
}

func TestVisible(t *testing.T) {
	c := Camera{Position: r3.Vec{Z: 50}, FOV: 45}
	if !c.Visible(r3.Vec{Z: 10}, 10) {
		t.Error("near-side surface point hidden")
	}
	if c.Visible(r3.Vec{Z: -10}, 10) {
		t.Error("far-side surface point visible")
	}
	if c.Visible(r3.Vec{Z: -20}, 10) {
		t.Error("point behind the planet visible")
	}
	if !c.Visible(r3.Vec{X: 20, Z: -20}, 10) {
		t.Error("point beside the planet hidden")
	}
}
