// Package geometry contains the pure 2D math used by the whiteboard engine:
// points, bounding boxes, rotation, hit-testing and intersections.
//
// Nothing in this package holds state. Coordinates are float64 document units
// unless a function says otherwise.
package geometry

import "math"

const (
	// Epsilon is the tolerance used when comparing coordinates.
	Epsilon = 1e-6

	// MinSize is the smallest extent a shape may have on either axis.
	MinSize = 1.0
)

// Point is a 2D vector. It marshals as a two element JSON array.
type Point [2]float64

// Pt builds a Point.
func Pt(x, y float64) Point {
	return Point{x, y}
}

// X returns the horizontal component.
func (p Point) X() float64 { return p[0] }

// Y returns the vertical component.
func (p Point) Y() float64 { return p[1] }

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1]}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1]}
}

// Mul scales p by k.
func (p Point) Mul(k float64) Point {
	return Point{p[0] * k, p[1] * k}
}

// Div divides p by k.
func (p Point) Div(k float64) Point {
	return Point{p[0] / k, p[1] / k}
}

// MulV multiplies component-wise.
func (p Point) MulV(q Point) Point {
	return Point{p[0] * q[0], p[1] * q[1]}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{-p[0], -p[1]}
}

// Len returns the Euclidean length of p.
func (p Point) Len() float64 {
	return math.Hypot(p[0], p[1])
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Len()
}

// Dot returns the dot product.
func (p Point) Dot(q Point) float64 {
	return p[0]*q[0] + p[1]*q[1]
}

// Cross returns the z component of the 3D cross product.
func (p Point) Cross(q Point) float64 {
	return p[0]*q[1] - p[1]*q[0]
}

// Per returns p rotated 90 degrees clockwise.
func (p Point) Per() Point {
	return Point{p[1], -p[0]}
}

// Uni returns the unit vector of p. A zero vector stays zero.
func (p Point) Uni() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{}
	}
	return p.Div(l)
}

// Rot rotates p by r radians around the origin.
func (p Point) Rot(r float64) Point {
	s, c := math.Sincos(r)
	return Point{p[0]*c - p[1]*s, p[0]*s + p[1]*c}
}

// RotWith rotates p by r radians around center.
func (p Point) RotWith(center Point, r float64) Point {
	if r == 0 {
		return p
	}
	return p.Sub(center).Rot(r).Add(center)
}

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return p.Add(q.Sub(p).Mul(t))
}

// Med returns the midpoint of p and q.
func (p Point) Med(q Point) Point {
	return p.Lerp(q, 0.5)
}

// IsEqual reports whether p and q are within Epsilon of each other.
func (p Point) IsEqual(q Point) bool {
	return math.Abs(p[0]-q[0]) < Epsilon && math.Abs(p[1]-q[1]) < Epsilon
}

// IsFinite reports whether both components are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// Angle returns the angle of the vector from p to q.
func (p Point) Angle(q Point) float64 {
	return math.Atan2(q[1]-p[1], q[0]-p[0])
}

// Min returns the component-wise minimum.
func (p Point) Min(q Point) Point {
	return Point{math.Min(p[0], q[0]), math.Min(p[1], q[1])}
}

// Max returns the component-wise maximum.
func (p Point) Max(q Point) Point {
	return Point{math.Max(p[0], q[0]), math.Max(p[1], q[1])}
}

// Abs returns the component-wise absolute value.
func (p Point) Abs() Point {
	return Point{math.Abs(p[0]), math.Abs(p[1])}
}

// ClampSize forces both components to at least MinSize.
func ClampSize(size Point) Point {
	return Point{math.Max(MinSize, size[0]), math.Max(MinSize, size[1])}
}

// ClampRadians normalises r into [0, 2π).
func ClampRadians(r float64) float64 {
	r = math.Mod(r, math.Pi*2)
	if r < 0 {
		r += math.Pi * 2
	}
	return r
}

// SnapAngle snaps r to the nearest of segments equal divisions of the circle.
func SnapAngle(r float64, segments int) float64 {
	if segments <= 0 {
		return r
	}
	seg := math.Pi * 2 / float64(segments)
	return math.Round(r/seg) * seg
}
