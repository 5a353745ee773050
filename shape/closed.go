package shape

import (
	"math"

	"whiteboard/geometry"
)

// BoxVariant is a rectangle with an optional corner radius.
func BoxVariant() *Variant {
	return &Variant{
		Type: TypeBox,
		Caps: Capabilities{CanBind: true, CanEdit: true, CanFlip: true},
		Defaults: func() Props {
			return boxDefaults(geometry.Pt(100, 100))
		},
		Bounds: rectBounds,
		Resize: resizeRect,
		Flip:   flipRect,
	}
}

// EllipseVariant is an ellipse inscribed in its bounds.
func EllipseVariant() *Variant {
	return &Variant{
		Type: TypeEllipse,
		Caps: Capabilities{CanBind: true, CanEdit: true, CanFlip: true},
		Defaults: func() Props {
			return boxDefaults(geometry.Pt(100, 100))
		},
		Bounds:  rectBounds,
		Outline: ellipseOutline,
		HitTestPoint: func(p Props, pt geometry.Point) bool {
			c, rx, ry := ellipseOf(p)
			return geometry.PointInEllipse(pt, c, rx, ry, 0)
		},
		HitTestSegment: func(p Props, a, b geometry.Point) bool {
			c, rx, ry := ellipseOf(p)
			return geometry.SegmentIntersectsEllipse(a, b, c, rx, ry, 0)
		},
		Intersect: func(p Props, origin, direction geometry.Point, expand float64) []geometry.Point {
			c, rx, ry := ellipseOf(p)
			return geometry.RayEllipseIntersections(origin, direction, c, rx+expand, ry+expand, 0)
		},
		Resize: resizeRect,
		Flip:   flipRect,
	}
}

func ellipseOf(p Props) (geometry.Point, float64, float64) {
	return p.Point.Add(p.Size.Div(2)), p.Size[0] / 2, p.Size[1] / 2
}

// ellipseOutline approximates the ellipse with a polygon for exporters and
// selection outlines.
func ellipseOutline(p Props) []geometry.Point {
	return geometry.Translate(geometry.PolygonPoints(p.Size, 48), p.Point)
}

// PolygonVariant is a regular polygon, or a star when IsStarShape is set.
func PolygonVariant() *Variant {
	return &Variant{
		Type: TypePolygon,
		Caps: Capabilities{CanBind: true, CanEdit: true, CanFlip: true},
		Defaults: func() Props {
			p := boxDefaults(geometry.Pt(100, 100))
			p.Sides = 5
			p.Ratio = 1
			return p
		},
		Bounds:  rectBounds,
		Outline: polygonOutline,
		Resize:  resizeRect,
		Validate: func(_ Props, patch Patch) Patch {
			if patch.Sides != nil {
				patch.Sides = Ptr(min(max(*patch.Sides, 3), 100))
			}
			if patch.Ratio != nil {
				patch.Ratio = Ptr(min(max(*patch.Ratio, 0.01), 1))
			}
			return patch
		},
		Flip: func(p Props, b geometry.Bounds, horizontal bool) Patch {
			if horizontal {
				return flipRect(p, b, horizontal)
			}
			// The outline is symmetric about its vertical axis, so a vertical
			// mirror is a half turn.
			return Patch{Rotation: Ptr(math.Pi - p.Rotation)}
		},
	}
}

func polygonOutline(p Props) []geometry.Point {
	var pts []geometry.Point
	if p.IsStarShape {
		pts = geometry.StarPoints(p.Size, p.Sides, starRatio(p))
	} else {
		pts = geometry.PolygonPoints(p.Size, p.Sides)
	}
	return geometry.Translate(pts, p.Point)
}

func starRatio(p Props) float64 {
	if p.Ratio <= 0 || p.Ratio >= 1 {
		return 0.5
	}
	return p.Ratio
}
