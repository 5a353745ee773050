package shape

import (
	"slices"

	"whiteboard/geometry"
)

// PencilVariant is a freehand stroke. Points are relative to point.
func PencilVariant() *Variant {
	return drawVariant(TypePencil, func() Props {
		p := boxDefaults(geometry.Point{})
		p.Fill = ""
		p.NoFill = true
		p.Points = []geometry.Point{{0, 0}}
		return p
	})
}

// HighlighterVariant is a wide translucent freehand stroke.
func HighlighterVariant() *Variant {
	return drawVariant(TypeHighlighter, func() Props {
		p := boxDefaults(geometry.Point{})
		p.Stroke = "#ffd400"
		p.Fill = ""
		p.NoFill = true
		p.StrokeWidth = 20
		p.Opacity = 0.5
		p.Points = []geometry.Point{{0, 0}}
		return p
	})
}

func drawVariant(t Type, defaults func() Props) *Variant {
	return &Variant{
		Type:     t,
		Caps:     Capabilities{CanFlip: true},
		Defaults: defaults,
		Bounds: func(p Props) geometry.Bounds {
			return clampBounds(p.Point, geometry.Translate(p.Points, p.Point))
		},
		Outline: func(p Props) []geometry.Point {
			return geometry.Translate(p.Points, p.Point)
		},
		HitTestPoint: func(p Props, pt geometry.Point) bool {
			line := geometry.Translate(p.Points, p.Point)
			return geometry.DistanceToPolyline(pt, line) <= p.StrokeWidth/2+hitTolerance
		},
		HitTestSegment: func(p Props, a, b geometry.Point) bool {
			line := geometry.Translate(p.Points, p.Point)
			if len(line) == 1 {
				return geometry.DistanceToSegment(line[0], a, b) <= p.StrokeWidth/2+hitTolerance
			}
			return geometry.SegmentIntersectsPolyline(a, b, line)
		},
		Resize: func(initial Props, info ResizeInfo) Patch {
			from := clampBounds(initial.Point, geometry.Translate(initial.Points, initial.Point))
			pts := make([]geometry.Point, len(initial.Points))
			for i, pt := range initial.Points {
				pts[i] = scaleInto(initial.Point.Add(pt), from, info).Sub(info.Bounds.Min())
			}
			return Patch{Point: Ptr(info.Bounds.Min()), Points: pts}
		},
		Validate: validateDraw,
		Flip: func(p Props, _ geometry.Bounds, horizontal bool) Patch {
			var ext geometry.Point
			for _, pt := range p.Points {
				ext = ext.Max(pt)
			}
			pts := make([]geometry.Point, len(p.Points))
			for i, pt := range p.Points {
				pts[i] = mirror(pt, ext, horizontal)
			}
			return Patch{Points: pts, Rotation: Ptr(-p.Rotation)}
		},
	}
}

// validateDraw drops non-finite points and rebases the rest so the smaller
// coordinates are zero.
func validateDraw(current Props, patch Patch) Patch {
	patch.Size = nil
	if patch.Points == nil {
		return patch
	}
	pts := slices.DeleteFunc(slices.Clone(patch.Points), func(p geometry.Point) bool {
		return !p.IsFinite()
	})
	if len(pts) == 0 {
		patch.Points = nil
		return patch
	}
	offset := geometry.FromPoints(pts...).Min()
	if offset != (geometry.Point{}) {
		pts = geometry.Translate(pts, offset.Neg())
		point := current.Point
		if patch.Point != nil {
			point = *patch.Point
		}
		patch.Point = Ptr(point.Add(offset))
	}
	patch.Points = pts
	return patch
}
