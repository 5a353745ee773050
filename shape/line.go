package shape

import (
	"maps"
	"math"

	"whiteboard/geometry"
)

// hitTolerance is added to half the stroke width when hit-testing strokes.
const hitTolerance = 4

// DotVariant is a filled circle positioned by its top-left corner.
func DotVariant() *Variant {
	return &Variant{
		Type: TypeDot,
		Caps: Capabilities{
			CanBind:             true,
			CanFlip:             true,
			IsAspectRatioLocked: true,
			HideResizeHandles:   true,
			HideRotateHandle:    true,
		},
		Defaults: func() Props {
			p := boxDefaults(geometry.Point{})
			p.Radius = 4
			p.Fill = p.Stroke
			return p
		},
		Bounds: func(p Props) geometry.Bounds {
			return geometry.NewBounds(p.Point, geometry.Pt(p.Radius*2, p.Radius*2))
		},
		HitTestPoint: func(p Props, pt geometry.Point) bool {
			return pt.Dist(dotCenter(p)) <= p.Radius
		},
		HitTestSegment: func(p Props, a, b geometry.Point) bool {
			return geometry.DistanceToSegment(dotCenter(p), a, b) <= p.Radius
		},
		Intersect: func(p Props, origin, direction geometry.Point, expand float64) []geometry.Point {
			r := p.Radius + expand
			return geometry.RayEllipseIntersections(origin, direction, dotCenter(p), r, r, 0)
		},
		Resize: func(_ Props, info ResizeInfo) Patch {
			b := info.Bounds
			return Patch{
				Point:  Ptr(b.Min()),
				Radius: Ptr(math.Min(b.Width, b.Height) / 2),
			}
		},
		Validate: func(_ Props, patch Patch) Patch {
			if patch.Radius != nil {
				patch.Radius = Ptr(math.Max(geometry.MinSize, *patch.Radius))
			}
			patch.Size = nil
			return patch
		},
	}
}

func dotCenter(p Props) geometry.Point {
	return p.Point.Add(geometry.Pt(p.Radius, p.Radius))
}

// LineVariant is a connector between a start and an end handle. Handles are
// relative to point and the smaller handle coordinates are always zero.
func LineVariant() *Variant {
	return &Variant{
		Type: TypeLine,
		Caps: Capabilities{
			CanEdit:             true,
			CanFlip:             true,
			HideSelectionDetail: true,
			HideResizeHandles:   true,
			HideRotateHandle:    true,
		},
		Defaults: func() Props {
			p := boxDefaults(geometry.Point{})
			p.Size = geometry.Point{}
			p.Fill = ""
			p.NoFill = true
			p.Handles = map[string]LineHandle{
				HandleStart: {ID: HandleStart, Point: geometry.Pt(0, 0), CanBind: true},
				HandleEnd:   {ID: HandleEnd, Point: geometry.Pt(1, 1), CanBind: true},
			}
			p.Decorations = &Decorations{End: DecorationArrow}
			return p
		},
		Bounds: lineBounds,
		Outline: func(p Props) []geometry.Point {
			s, e := lineEnds(p)
			return []geometry.Point{s, e}
		},
		HitTestPoint: func(p Props, pt geometry.Point) bool {
			s, e := lineEnds(p)
			return geometry.DistanceToSegment(pt, s, e) <= p.StrokeWidth/2+hitTolerance
		},
		HitTestSegment: func(p Props, a, b geometry.Point) bool {
			s, e := lineEnds(p)
			_, ok := geometry.SegmentsIntersect(a, b, s, e)
			return ok
		},
		Resize: func(initial Props, info ResizeInfo) Patch {
			from := lineBounds(initial)
			handles := maps.Clone(initial.Handles)
			for id, h := range handles {
				h.Point = scaleInto(initial.Point.Add(h.Point), from, info).Sub(info.Bounds.Min())
				handles[id] = h
			}
			return Patch{Point: Ptr(info.Bounds.Min()), Handles: handles}
		},
		Validate: validateLine,
		Flip: func(p Props, _ geometry.Bounds, horizontal bool) Patch {
			ext := handleExtent(p.Handles)
			handles := maps.Clone(p.Handles)
			for id, h := range handles {
				h.Point = mirror(h.Point, ext, horizontal)
				handles[id] = h
			}
			return Patch{Handles: handles, Rotation: Ptr(-p.Rotation)}
		},
	}
}

func lineEnds(p Props) (geometry.Point, geometry.Point) {
	s, _ := p.Handle(HandleStart)
	e, _ := p.Handle(HandleEnd)
	return s, e
}

func lineBounds(p Props) geometry.Bounds {
	pts := make([]geometry.Point, 0, len(p.Handles))
	for _, h := range p.Handles {
		pts = append(pts, p.Point.Add(h.Point))
	}
	return clampBounds(p.Point, pts)
}

// clampBounds returns the bounds of pts, grown to MinSize. With no points
// it is a MinSize square at origin.
func clampBounds(origin geometry.Point, pts []geometry.Point) geometry.Bounds {
	if len(pts) == 0 {
		return geometry.NewBounds(origin, geometry.Pt(geometry.MinSize, geometry.MinSize))
	}
	b := geometry.FromPoints(pts...)
	return geometry.NewBounds(b.Min(), geometry.ClampSize(b.Size()))
}

func handleExtent(handles map[string]LineHandle) geometry.Point {
	var ext geometry.Point
	for _, h := range handles {
		ext = ext.Max(h.Point)
	}
	return ext
}

func mirror(p, ext geometry.Point, horizontal bool) geometry.Point {
	if horizontal {
		return geometry.Pt(ext[0]-p[0], p[1])
	}
	return geometry.Pt(p[0], ext[1]-p[1])
}

// scaleInto maps a page point inside from onto the resize target, following
// flips.
func scaleInto(p geometry.Point, from geometry.Bounds, info ResizeInfo) geometry.Point {
	rx := ratio(p[0]-from.MinX, from.Width)
	ry := ratio(p[1]-from.MinY, from.Height)
	if info.Scale[0] < 0 {
		rx = 1 - rx
	}
	if info.Scale[1] < 0 {
		ry = 1 - ry
	}
	to := info.Bounds
	return geometry.Pt(to.MinX+rx*to.Width, to.MinY+ry*to.Height)
}

func ratio(a, b float64) float64 {
	if b < geometry.Epsilon {
		return 0
	}
	return a / b
}

// validateLine rejects updates that would make the ends coincide and rebases
// handles so the smaller coordinates are zero.
func validateLine(current Props, patch Patch) Patch {
	patch.Size = nil
	if patch.Handles == nil {
		return patch
	}
	next := patch.Apply(current)
	s, okS := next.Handles[HandleStart]
	e, okE := next.Handles[HandleEnd]
	if !okS || !okE || s.Point.IsEqual(e.Point) || !s.Point.IsFinite() || !e.Point.IsFinite() {
		patch.Handles = nil
		patch.Point = nil
		return patch
	}
	offset := s.Point.Min(e.Point)
	if offset == (geometry.Point{}) {
		return patch
	}
	handles := maps.Clone(next.Handles)
	for id, h := range handles {
		h.Point = h.Point.Sub(offset)
		handles[id] = h
	}
	patch.Handles = handles
	patch.Point = Ptr(next.Point.Add(offset))
	return patch
}
