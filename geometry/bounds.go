package geometry

import "math"

// Bounds is an axis-aligned bounding box. Rotation is informational: it
// records the rotation of the box the bounds were taken from.
type Bounds struct {
	MinX     float64 `json:"minX"`
	MinY     float64 `json:"minY"`
	MaxX     float64 `json:"maxX"`
	MaxY     float64 `json:"maxY"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// NewBounds builds bounds from a min corner and a size.
func NewBounds(point, size Point) Bounds {
	return Bounds{
		MinX:   point[0],
		MinY:   point[1],
		MaxX:   point[0] + size[0],
		MaxY:   point[1] + size[1],
		Width:  size[0],
		Height: size[1],
	}
}

// FromPoints returns the bounds enclosing every point.
func FromPoints(points ...Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, Width: maxX - minX, Height: maxY - minY}
}

// Common returns the union of all bounds.
func Common(bounds ...Bounds) Bounds {
	if len(bounds) == 0 {
		return Bounds{}
	}
	out := bounds[0]
	out.Rotation = 0
	for _, b := range bounds[1:] {
		out.MinX = math.Min(out.MinX, b.MinX)
		out.MinY = math.Min(out.MinY, b.MinY)
		out.MaxX = math.Max(out.MaxX, b.MaxX)
		out.MaxY = math.Max(out.MaxY, b.MaxY)
	}
	out.Width = out.MaxX - out.MinX
	out.Height = out.MaxY - out.MinY
	return out
}

// Min returns the top-left corner.
func (b Bounds) Min() Point { return Point{b.MinX, b.MinY} }

// Max returns the bottom-right corner.
func (b Bounds) Max() Point { return Point{b.MaxX, b.MaxY} }

// Size returns the extent.
func (b Bounds) Size() Point { return Point{b.Width, b.Height} }

// Center returns the midpoint.
func (b Bounds) Center() Point {
	return Point{b.MinX + b.Width/2, b.MinY + b.Height/2}
}

// Corners returns the four corners clockwise from the top-left.
func (b Bounds) Corners() [4]Point {
	return [4]Point{
		{b.MinX, b.MinY},
		{b.MaxX, b.MinY},
		{b.MaxX, b.MaxY},
		{b.MinX, b.MaxY},
	}
}

// Edges returns the four edges as point pairs.
func (b Bounds) Edges() [4][2]Point {
	c := b.Corners()
	return [4][2]Point{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
}

// Translate moves the bounds by delta.
func (b Bounds) Translate(delta Point) Bounds {
	b.MinX += delta[0]
	b.MaxX += delta[0]
	b.MinY += delta[1]
	b.MaxY += delta[1]
	return b
}

// Expand grows the bounds by n on every side.
func (b Bounds) Expand(n float64) Bounds {
	return Bounds{
		MinX:     b.MinX - n,
		MinY:     b.MinY - n,
		MaxX:     b.MaxX + n,
		MaxY:     b.MaxY + n,
		Width:    b.Width + n*2,
		Height:   b.Height + n*2,
		Rotation: b.Rotation,
	}
}

// Rotated returns the axis-aligned bounds of b after rotating it by r around
// its center. With r == 0 the result equals b.
func (b Bounds) Rotated(r float64) Bounds {
	if r == 0 {
		return b
	}
	center := b.Center()
	corners := b.Corners()
	pts := make([]Point, 0, 4)
	for _, c := range corners {
		pts = append(pts, c.RotWith(center, r))
	}
	out := FromPoints(pts...)
	out.Rotation = r
	return out
}

// ContainsPoint reports whether p lies inside or on the edge of b.
func (b Bounds) ContainsPoint(p Point) bool {
	return p[0] >= b.MinX && p[0] <= b.MaxX && p[1] >= b.MinY && p[1] <= b.MaxY
}

// Contains reports whether other lies entirely inside b.
func (b Bounds) Contains(other Bounds) bool {
	return other.MinX >= b.MinX && other.MaxX <= b.MaxX &&
		other.MinY >= b.MinY && other.MaxY <= b.MaxY
}

// Collides reports whether b and other overlap or touch.
func (b Bounds) Collides(other Bounds) bool {
	return !(b.MaxX < other.MinX || b.MinX > other.MaxX ||
		b.MaxY < other.MinY || b.MinY > other.MaxY)
}

// IsEqual compares the extents of two bounds within Epsilon.
func (b Bounds) IsEqual(other Bounds) bool {
	return math.Abs(b.MinX-other.MinX) < Epsilon &&
		math.Abs(b.MinY-other.MinY) < Epsilon &&
		math.Abs(b.MaxX-other.MaxX) < Epsilon &&
		math.Abs(b.MaxY-other.MaxY) < Epsilon
}

// Normalize fixes inverted extents produced by a flip.
func (b Bounds) Normalize() Bounds {
	if b.MinX > b.MaxX {
		b.MinX, b.MaxX = b.MaxX, b.MinX
	}
	if b.MinY > b.MaxY {
		b.MinY, b.MaxY = b.MaxY, b.MinY
	}
	b.Width = b.MaxX - b.MinX
	b.Height = b.MaxY - b.MinY
	return b
}

// FromDrag returns the bounds spanned by a drag from origin to current.
// With lockAspect the shorter side is extended to match the longer one.
// With fromCenter origin becomes the center instead of a corner.
func FromDrag(origin, current Point, lockAspect, fromCenter bool) Bounds {
	d := current.Sub(origin)
	if lockAspect {
		m := math.Max(math.Abs(d[0]), math.Abs(d[1]))
		d = Point{math.Copysign(m, d[0]), math.Copysign(m, d[1])}
	}
	if fromCenter {
		return FromPoints(origin.Sub(d), origin.Add(d))
	}
	return FromPoints(origin, origin.Add(d))
}
