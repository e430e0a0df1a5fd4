package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// geometryEpsilon is the length below which a direction is treated as zero.
const geometryEpsilon = 1e-9

// Up is the fixed axis used to build the tangent at the impact point.
var Up = r3.Vec{Y: 1}

// TrajectoryParams are the inputs of NewTrajectory. Azimuth is in radians.
type TrajectoryParams struct {
	Target        r3.Vec
	AngleDegrees  float64
	StartDistance float64
	BowOffset     float64
	Azimuth       float64
}

// Trajectory is a quadratic Bézier from a distant start point to the impact target.
type Trajectory struct {
	start, control, target r3.Vec
}

// RandomAzimuth draws the entry azimuth uniformly from [0, 2π).
func RandomAzimuth(rng *rand.Rand) float64 {
	return 2 * math.Pi * rng.Float64()
}

// NewTrajectory builds the approach curve. The start point lies StartDistance
// from the target along the entry direction; the control point is pulled
// BowOffset towards the planet centre so the path arcs in.
func NewTrajectory(p TrajectoryParams) (*Trajectory, error) {
	if err := validateAngle(p.AngleDegrees); err != nil {
		return nil, err
	}
	if !finite(p.StartDistance) || p.StartDistance <= 0 {
		return nil, fmt.Errorf("start distance %v: %w", p.StartDistance, ErrInvalidConfiguration)
	}
	if r3.Norm(p.Target) < geometryEpsilon {
		return nil, fmt.Errorf("impact target at origin: %w", ErrDegenerateGeometry)
	}

	normal := r3.Unit(p.Target)
	cross := r3.Cross(normal, Up)
	if r3.Norm(cross) < geometryEpsilon {
		return nil, fmt.Errorf("impact target %v parallel to up axis: %w", p.Target, ErrDegenerateGeometry)
	}
	tangent := r3.Unit(cross)

	theta := p.AngleDegrees * math.Pi / 180
	rotated := r3.Rotate(tangent, p.Azimuth, normal)
	dir := r3.Add(r3.Scale(math.Cos(theta), rotated), r3.Scale(-math.Sin(theta), normal))

	start := r3.Sub(p.Target, r3.Scale(p.StartDistance, dir))
	mid := r3.Scale(0.5, r3.Add(start, p.Target))
	if r3.Norm(mid) < geometryEpsilon {
		return nil, fmt.Errorf("trajectory midpoint at origin: %w", ErrDegenerateGeometry)
	}
	control := r3.Sub(mid, r3.Scale(p.BowOffset, r3.Unit(mid)))

	return &Trajectory{start: start, control: control, target: p.Target}, nil
}

func (tr *Trajectory) Start() r3.Vec   { return tr.start }
func (tr *Trajectory) Control() r3.Vec { return tr.control }
func (tr *Trajectory) Target() r3.Vec  { return tr.target }

// Position evaluates the curve at t, clamped to [0,1].
func (tr *Trajectory) Position(t float64) r3.Vec {
	t = clamp01(t)
	if t == 1 {
		return tr.target
	}
	u := 1 - t
	p := r3.Scale(u*u, tr.start)
	p = r3.Add(p, r3.Scale(2*u*t, tr.control))
	return r3.Add(p, r3.Scale(t*t, tr.target))
}

// Tangent returns the unit direction of travel at t. Where the derivative
// vanishes the chord direction is returned instead.
func (tr *Trajectory) Tangent(t float64) r3.Vec {
	t = clamp01(t)
	d := r3.Add(
		r3.Scale(2*(1-t), r3.Sub(tr.control, tr.start)),
		r3.Scale(2*t, r3.Sub(tr.target, tr.control)),
	)
	if r3.Norm(d) < geometryEpsilon {
		return r3.Unit(r3.Sub(tr.target, tr.start))
	}
	return r3.Unit(d)
}

// Sample returns n+1 evenly spaced points along the curve, for drawing.
func (tr *Trajectory) Sample(n int) []r3.Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]r3.Vec, n+1)
	for i := range pts {
		pts[i] = tr.Position(float64(i) / float64(n))
	}
	return pts
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
