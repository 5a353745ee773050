package shape

import (
	"whiteboard/geometry"
)

// Shape pairs props with the variant that interprets them.
type Shape struct {
	props   Props
	variant *Variant
	version uint64
}

func (s *Shape) ID() string { return s.props.ID }

func (s *Shape) Type() Type { return s.props.Type }

// Props returns a copy of the current props.
func (s *Shape) Props() Props { return s.props.Clone() }

func (s *Shape) Variant() *Variant { return s.variant }

func (s *Shape) Caps() Capabilities { return s.variant.Caps }

// Version increases on every effective update.
func (s *Shape) Version() uint64 { return s.version }

// IsAspectRatioLocked reports whether resizing must keep the ratio, either
// because the variant requires it or the user locked it.
func (s *Shape) IsAspectRatioLocked() bool {
	return s.variant.Caps.IsAspectRatioLocked || s.props.IsAspectRatioLocked
}

// Bounds returns the unrotated page bounds.
func (s *Shape) Bounds() geometry.Bounds {
	b := s.variant.Bounds(s.props)
	b.Rotation = s.props.Rotation
	return b
}

// RotatedBounds returns the axis-aligned bounds after rotation.
func (s *Shape) RotatedBounds() geometry.Bounds {
	b := s.variant.Bounds(s.props)
	return b.Rotated(s.props.Rotation)
}

func (s *Shape) Center() geometry.Point {
	return s.variant.Bounds(s.props).Center()
}

func (s *Shape) localOutline() []geometry.Point {
	if s.variant.Outline != nil {
		return s.variant.Outline(s.props)
	}
	c := s.variant.Bounds(s.props).Corners()
	return c[:]
}

// Outline returns the outline in page space with rotation applied.
func (s *Shape) Outline() []geometry.Point {
	return geometry.Rotate(s.localOutline(), s.Center(), s.props.Rotation)
}

// toLocal maps a page point into the shape's unrotated frame.
func (s *Shape) toLocal(p geometry.Point) geometry.Point {
	return p.RotWith(s.Center(), -s.props.Rotation)
}

func (s *Shape) HitTestPoint(p geometry.Point) bool {
	lp := s.toLocal(p)
	if s.variant.HitTestPoint != nil {
		return s.variant.HitTestPoint(s.props, lp)
	}
	return geometry.PointInPolygon(lp, s.localOutline())
}

func (s *Shape) HitTestLineSegment(a, b geometry.Point) bool {
	la, lb := s.toLocal(a), s.toLocal(b)
	if s.variant.HitTestSegment != nil {
		return s.variant.HitTestSegment(s.props, la, lb)
	}
	return geometry.SegmentIntersectsPolygon(la, lb, s.localOutline())
}

// ContainedBy reports whether the rotated bounds lie inside b.
func (s *Shape) ContainedBy(b geometry.Bounds) bool {
	return b.Contains(s.RotatedBounds())
}

// HitTestBounds reports whether the shape is inside b or crosses one of its
// edges.
func (s *Shape) HitTestBounds(b geometry.Bounds) bool {
	if s.ContainedBy(b) {
		return true
	}
	if !b.Collides(s.RotatedBounds()) {
		return false
	}
	for _, e := range b.Edges() {
		if s.HitTestLineSegment(e[0], e[1]) {
			return true
		}
	}
	return false
}

// Resize returns the validated patch that fits the shape to info.
func (s *Shape) Resize(initial Props, info ResizeInfo) Patch {
	if s.variant.Resize == nil {
		return Patch{}
	}
	return s.ValidateProps(s.variant.Resize(initial, info))
}

// ValidateProps corrects a proposed patch against the current props.
func (s *Shape) ValidateProps(patch Patch) Patch {
	patch = validateCommon(s.props, patch)
	if s.variant.Validate != nil {
		patch = s.variant.Validate(s.props, patch)
	}
	return patch
}

// Update validates and merges patch. It returns s for chaining.
func (s *Shape) Update(patch Patch) *Shape {
	patch = s.ValidateProps(patch)
	if patch.IsEmpty() {
		return s
	}
	id, t := s.props.ID, s.props.Type
	next := patch.Apply(s.props)
	next.ID, next.Type = id, t
	if Diff(s.props, next).IsEmpty() {
		return s
	}
	s.props = next
	s.version++
	return s
}

// Clone returns an independent copy with the same id.
func (s *Shape) Clone() *Shape {
	return &Shape{props: s.props.Clone(), variant: s.variant, version: s.version}
}

// Translate returns the patch that moves the shape by delta.
func (s *Shape) Translate(delta geometry.Point) Patch {
	return Patch{Point: Ptr(s.props.Point.Add(delta))}
}

// Flip returns the patch that mirrors the shape across the center line of
// common. Variants that cannot flip return an empty patch.
func (s *Shape) Flip(common geometry.Bounds, horizontal bool) Patch {
	if !s.variant.Caps.CanFlip {
		return Patch{}
	}
	c := s.Center()
	mc := common.Center()
	target := c
	if horizontal {
		target[0] = mc[0]*2 - c[0]
	} else {
		target[1] = mc[1]*2 - c[1]
	}
	moved := s.props.Clone()
	moved.Point = moved.Point.Add(target.Sub(c))
	if s.variant.Flip != nil {
		moved = s.variant.Flip(moved, common, horizontal).Apply(moved)
	}
	return s.ValidateProps(Diff(s.props, moved))
}

// Intersect returns where the ray from origin along direction crosses the
// outline grown by expand, in page space.
func (s *Shape) Intersect(origin, direction geometry.Point, expand float64) []geometry.Point {
	c := s.Center()
	r := s.props.Rotation
	lo := origin.RotWith(c, -r)
	ld := direction.Rot(-r)
	var pts []geometry.Point
	if s.variant.Intersect != nil {
		pts = s.variant.Intersect(s.props, lo, ld, expand)
	} else {
		pts = geometry.RayPolygonIntersections(lo, ld, expandOutline(s.localOutline(), s.variant.Bounds(s.props), expand))
	}
	return geometry.Rotate(pts, c, r)
}

// expandOutline scales an outline about the bounds center so its bounds
// grow by n on every side.
func expandOutline(pts []geometry.Point, b geometry.Bounds, n float64) []geometry.Point {
	if n == 0 {
		return pts
	}
	c := b.Center()
	sx := (b.Width + n*2) / max(b.Width, geometry.Epsilon)
	sy := (b.Height + n*2) / max(b.Height, geometry.Epsilon)
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Sub(c).MulV(geometry.Pt(sx, sy)).Add(c)
	}
	return out
}
