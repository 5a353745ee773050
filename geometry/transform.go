package geometry

import "math"

// Handle names a resize or rotate affordance on a bounding box.
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "top_left"
	HandleTop         Handle = "top"
	HandleTopRight    Handle = "top_right"
	HandleRight       Handle = "right"
	HandleBottomRight Handle = "bottom_right"
	HandleBottom      Handle = "bottom"
	HandleBottomLeft  Handle = "bottom_left"
	HandleLeft        Handle = "left"
	HandleRotate      Handle = "rotate"
)

// ResizeHandles lists the eight resize handles clockwise from the top-left.
var ResizeHandles = []Handle{
	HandleTopLeft, HandleTop, HandleTopRight, HandleRight,
	HandleBottomRight, HandleBottom, HandleBottomLeft, HandleLeft,
}

// IsCorner reports whether h is a corner handle.
func (h Handle) IsCorner() bool {
	switch h {
	case HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft:
		return true
	}
	return false
}

// Position returns where the handle sits on unrotated bounds b.
func (h Handle) Position(b Bounds) Point {
	c := b.Center()
	switch h {
	case HandleTopLeft:
		return Point{b.MinX, b.MinY}
	case HandleTop:
		return Point{c[0], b.MinY}
	case HandleTopRight:
		return Point{b.MaxX, b.MinY}
	case HandleRight:
		return Point{b.MaxX, c[1]}
	case HandleBottomRight:
		return Point{b.MaxX, b.MaxY}
	case HandleBottom:
		return Point{c[0], b.MaxY}
	case HandleBottomLeft:
		return Point{b.MinX, b.MaxY}
	case HandleLeft:
		return Point{b.MinX, c[1]}
	}
	return c
}

// Transform is the result of dragging a resize handle.
type Transform struct {
	Bounds Bounds
	// Scale is the signed ratio between the new and initial extents. A
	// negative component means the box was flipped on that axis.
	Scale Point
}

// TransformBounds resizes b (a box rotated by rotation around its center) by
// dragging handle h by delta, in document space. The edge or corner opposite
// to the handle stays fixed on the page. With lockAspect the initial aspect
// ratio is kept.
func TransformBounds(b Bounds, h Handle, delta Point, rotation float64, lockAspect bool) Transform {
	d := delta.Rot(-rotation)
	minX, minY, maxX, maxY := b.MinX, b.MinY, b.MaxX, b.MaxY

	switch h {
	case HandleTopLeft:
		minX += d[0]
		minY += d[1]
	case HandleTop:
		minY += d[1]
	case HandleTopRight:
		maxX += d[0]
		minY += d[1]
	case HandleRight:
		maxX += d[0]
	case HandleBottomRight:
		maxX += d[0]
		maxY += d[1]
	case HandleBottom:
		maxY += d[1]
	case HandleBottomLeft:
		minX += d[0]
		maxY += d[1]
	case HandleLeft:
		minX += d[0]
	}

	sx := safeRatio(maxX-minX, b.Width)
	sy := safeRatio(maxY-minY, b.Height)

	if lockAspect {
		switch h {
		case HandleLeft, HandleRight:
			sy = math.Copysign(math.Abs(sx), sy)
			half := b.Height * math.Abs(sy) / 2
			cy := b.Center()[1]
			minY, maxY = cy-half, cy+half
		case HandleTop, HandleBottom:
			sx = math.Copysign(math.Abs(sy), sx)
			half := b.Width * math.Abs(sx) / 2
			cx := b.Center()[0]
			minX, maxX = cx-half, cx+half
		default:
			s := math.Max(math.Abs(sx), math.Abs(sy))
			sx = math.Copysign(s, sx)
			sy = math.Copysign(s, sy)
			w := b.Width * sx
			hh := b.Height * sy
			switch h {
			case HandleTopLeft:
				minX, minY = maxX-w, maxY-hh
			case HandleTopRight:
				maxX, minY = minX+w, maxY-hh
			case HandleBottomRight:
				maxX, maxY = minX+w, minY+hh
			case HandleBottomLeft:
				minX, maxY = maxX-w, minY+hh
			}
		}
	}

	next := Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}.Normalize()
	if next.Width < MinSize {
		next.MaxX = next.MinX + MinSize
		next.Width = MinSize
	}
	if next.Height < MinSize {
		next.MaxY = next.MinY + MinSize
		next.Height = MinSize
	}

	if rotation != 0 {
		// The box rotates about its own center, so only the center moves:
		// place it where the rotated local center lands on the page.
		pageCenter := next.Center().RotWith(b.Center(), rotation)
		next = next.Translate(pageCenter.Sub(next.Center()))
	}
	next.Rotation = rotation

	return Transform{Bounds: next, Scale: Point{sx, sy}}
}

// ScaleBoundsWithin maps child bounds inside initial onto next, preserving
// relative placement. It is used when resizing a multi-shape selection.
func ScaleBoundsWithin(child, initial, next Bounds, scale Point) Bounds {
	var rx, ry float64
	if initial.Width > Epsilon {
		rx = (child.MinX - initial.MinX) / initial.Width
	}
	if initial.Height > Epsilon {
		ry = (child.MinY - initial.MinY) / initial.Height
	}
	w := child.Width * math.Abs(scale[0])
	h := child.Height * math.Abs(scale[1])
	minX := next.MinX + rx*next.Width
	minY := next.MinY + ry*next.Height
	if scale[0] < 0 {
		minX = next.MaxX - rx*next.Width - w
	}
	if scale[1] < 0 {
		minY = next.MaxY - ry*next.Height - h
	}
	return NewBounds(Point{minX, minY}, Point{w, h})
}

func safeRatio(a, b float64) float64 {
	if math.Abs(b) < Epsilon {
		return 1
	}
	return a / b
}
