package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const nearPlane = 0.1

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	FOV      float64 // vertical, degrees
}

// Point is a projected screen position. Depth is the distance along the view axis.
type Point struct {
	X, Y  float64
	Depth float64
}

// Nudge moves the camera position by off, keeping the target.
func (c *Camera) Nudge(off r3.Vec) {
	c.Position = r3.Add(c.Position, off)
}

func (c Camera) basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position))
	right = r3.Cross(forward, r3.Vec{Y: 1})
	if r3.Norm(right) < 1e-9 {
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up = r3.Cross(right, forward)
	return right, up, forward
}

func (c Camera) focal(h float64) float64 {
	return h / 2 / math.Tan(c.FOV*math.Pi/360)
}

// Project maps p onto a w×h viewport with y pointing down. It reports false
// for points behind the near plane. aspect is the width of one viewport unit
// relative to its height (1 for pixels, about 0.5 for terminal cells).
func (c Camera) Project(p r3.Vec, w, h, aspect float64) (Point, bool) {
	right, up, forward := c.basis()
	d := r3.Sub(p, c.Position)
	z := r3.Dot(d, forward)
	if z < nearPlane {
		return Point{}, false
	}
	f := c.focal(h)
	return Point{
		X:     w/2 + r3.Dot(d, right)/z*f/aspect,
		Y:     h/2 - r3.Dot(d, up)/z*f,
		Depth: z,
	}, true
}

// ProjectRadius returns the on-screen radius, in vertical units, of a sphere
// of radius r centred at p.
func (c Camera) ProjectRadius(p r3.Vec, r, h float64) float64 {
	_, _, forward := c.basis()
	z := r3.Dot(r3.Sub(p, c.Position), forward)
	if z < nearPlane {
		return 0
	}
	return r / z * c.focal(h)
}

// Visible reports whether p is on the near side of a sphere of the given
// radius at the origin, as seen from the camera.
func (c Camera) Visible(p r3.Vec, radius float64) bool {
	toCam := r3.Sub(c.Position, p)
	dist := r3.Norm(toCam)
	if dist == 0 {
		return true
	}
	dir := r3.Scale(1/dist, toCam)
	// Ray p + t·dir against |x| = radius.
	b := r3.Dot(p, dir)
	cc := r3.Dot(p, p) - radius*radius
	disc := b*b - cc
	if disc < 0 {
		return true
	}
	sq := math.Sqrt(disc)
	near, far := -b-sq, -b+sq
	return !(far > 1e-6 && near > -1e-6)
}
