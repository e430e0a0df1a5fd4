package sim

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// CameraShake is a geometrically decaying jitter started at impact.
type CameraShake struct {
	active    bool
	intensity float64
	decay     float64
	threshold float64
}

func NewCameraShake(decay, threshold float64) *CameraShake {
	return &CameraShake{decay: decay, threshold: threshold}
}

// Trigger (re)starts the shake at the given intensity.
func (c *CameraShake) Trigger(intensity float64) {
	c.intensity = intensity
	c.active = intensity >= c.threshold
}

func (c *CameraShake) Active() bool       { return c.active }
func (c *CameraShake) Intensity() float64 { return c.intensity }

// Step returns this tick's camera offset and decays the intensity. An
// inactive shake returns the zero vector.
func (c *CameraShake) Step(rng *rand.Rand) r3.Vec {
	if !c.active {
		return r3.Vec{}
	}
	i := c.intensity
	off := r3.Vec{
		X: (rng.Float64() - 0.5) * i,
		Y: (rng.Float64() - 0.5) * i,
		Z: (rng.Float64() - 0.5) * i,
	}
	c.intensity *= c.decay
	if c.intensity < c.threshold {
		c.active = false
	}
	return off
}
