package geometry

import (
	"math"
	"sort"
)

// SegmentsIntersect returns the intersection point of segments a1-a2 and b1-b2.
func SegmentsIntersect(a1, a2, b1, b2 Point) (Point, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	qp := b1.Sub(a1)
	if math.Abs(denom) < Epsilon {
		// Parallel. Collinear overlap counts as an intersection at the first shared point.
		if math.Abs(qp.Cross(r)) > Epsilon {
			return Point{}, false
		}
		for _, p := range []Point{b1, b2} {
			if onSegment(p, a1, a2) {
				return p, true
			}
		}
		for _, p := range []Point{a1, a2} {
			if onSegment(p, b1, b2) {
				return p, true
			}
		}
		return Point{}, false
	}
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return Point{}, false
	}
	return a1.Add(r.Mul(t)), true
}

func onSegment(p, a, b Point) bool {
	return p[0] >= math.Min(a[0], b[0])-Epsilon && p[0] <= math.Max(a[0], b[0])+Epsilon &&
		p[1] >= math.Min(a[1], b[1])-Epsilon && p[1] <= math.Max(a[1], b[1])+Epsilon
}

// SegmentIntersectsBounds reports whether segment a-b touches b.
func SegmentIntersectsBounds(a, b Point, bounds Bounds) bool {
	if bounds.ContainsPoint(a) || bounds.ContainsPoint(b) {
		return true
	}
	for _, e := range bounds.Edges() {
		if _, ok := SegmentsIntersect(a, b, e[0], e[1]); ok {
			return true
		}
	}
	return false
}

// SegmentIntersectsPolygon reports whether segment a-b crosses any polygon edge
// or lies inside the polygon.
func SegmentIntersectsPolygon(a, b Point, poly []Point) bool {
	if len(poly) < 2 {
		return false
	}
	for i := range poly {
		j := (i + 1) % len(poly)
		if _, ok := SegmentsIntersect(a, b, poly[i], poly[j]); ok {
			return true
		}
	}
	return PointInPolygon(a, poly)
}

// SegmentIntersectsPolyline reports whether segment a-b crosses an open polyline.
func SegmentIntersectsPolyline(a, b Point, line []Point) bool {
	for i := 0; i+1 < len(line); i++ {
		if _, ok := SegmentsIntersect(a, b, line[i], line[i+1]); ok {
			return true
		}
	}
	return false
}

// SegmentIntersectsEllipse reports whether segment a-b touches the ellipse
// with the given center, radii and rotation (boundary or interior).
func SegmentIntersectsEllipse(a, b, center Point, rx, ry, rotation float64) bool {
	if PointInEllipse(a, center, rx, ry, rotation) || PointInEllipse(b, center, rx, ry, rotation) {
		return true
	}
	pts := LineEllipseIntersections(a, b, center, rx, ry, rotation)
	for _, p := range pts {
		if onSegment(p, a, b) {
			return true
		}
	}
	return false
}

// LineEllipseIntersections returns where the infinite line through a and b
// crosses the ellipse, ordered by distance from a.
func LineEllipseIntersections(a, b, center Point, rx, ry, rotation float64) []Point {
	if rx < Epsilon || ry < Epsilon {
		return nil
	}
	la := a.Sub(center).Rot(-rotation)
	lb := b.Sub(center).Rot(-rotation)
	d := lb.Sub(la)
	A := d[0]*d[0]/(rx*rx) + d[1]*d[1]/(ry*ry)
	B := 2 * (la[0]*d[0]/(rx*rx) + la[1]*d[1]/(ry*ry))
	C := la[0]*la[0]/(rx*rx) + la[1]*la[1]/(ry*ry) - 1
	if A < Epsilon {
		return nil
	}
	disc := B*B - 4*A*C
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	ts := []float64{(-B - sq) / (2 * A), (-B + sq) / (2 * A)}
	out := make([]Point, 0, 2)
	for _, t := range ts {
		p := la.Add(d.Mul(t)).Rot(rotation).Add(center)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dist(a) < out[j].Dist(a) })
	return out
}

// RayPolygonIntersections returns where the ray from origin along direction
// crosses the polygon, ordered by distance from origin.
func RayPolygonIntersections(origin, direction Point, poly []Point) []Point {
	dir := direction.Uni()
	if dir.Len() == 0 || len(poly) < 2 {
		return nil
	}
	var out []Point
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		s := b.Sub(a)
		denom := dir.Cross(s)
		if math.Abs(denom) < Epsilon {
			continue
		}
		qp := a.Sub(origin)
		t := qp.Cross(s) / denom
		u := qp.Cross(dir) / denom
		if t >= -Epsilon && u >= -Epsilon && u <= 1+Epsilon {
			out = append(out, origin.Add(dir.Mul(t)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dist(origin) < out[j].Dist(origin) })
	return out
}

// RayEllipseIntersections returns where the ray from origin along direction
// crosses the ellipse, ordered by distance from origin.
func RayEllipseIntersections(origin, direction, center Point, rx, ry, rotation float64) []Point {
	dir := direction.Uni()
	if dir.Len() == 0 {
		return nil
	}
	var out []Point
	for _, p := range LineEllipseIntersections(origin, origin.Add(dir), center, rx, ry, rotation) {
		if p.Sub(origin).Dot(dir) >= -Epsilon {
			out = append(out, p)
		}
	}
	return out
}

// PointInEllipse reports whether p is inside the rotated ellipse.
func PointInEllipse(p, center Point, rx, ry, rotation float64) bool {
	if rx < Epsilon || ry < Epsilon {
		return false
	}
	l := p.Sub(center).Rot(-rotation)
	return (l[0]*l[0])/(rx*rx)+(l[1]*l[1])/(ry*ry) <= 1+Epsilon
}

// PointInPolygon uses ray casting to test membership.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			inside = !inside
		}
	}
	return inside
}

// NearestPointOnSegment returns the point on a-b closest to p.
func NearestPointOnSegment(p, a, b Point) Point {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon {
		return a
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return a.Add(ab.Mul(t))
}

// DistanceToSegment returns the distance from p to segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	return p.Dist(NearestPointOnSegment(p, a, b))
}

// DistanceToPolyline returns the distance from p to the nearest segment.
func DistanceToPolyline(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Dist(line[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(line); i++ {
		best = math.Min(best, DistanceToSegment(p, line[i], line[i+1]))
	}
	return best
}

// PolygonPoints returns a regular polygon with the given number of sides
// inscribed in a box of the given size, starting at the top.
func PolygonPoints(size Point, sides int) []Point {
	if sides < 3 {
		sides = 3
	}
	center := size.Div(2)
	pts := make([]Point, sides)
	for i := range pts {
		a := -math.Pi/2 + float64(i)*math.Pi*2/float64(sides)
		pts[i] = Point{center[0] + math.Cos(a)*size[0]/2, center[1] + math.Sin(a)*size[1]/2}
	}
	return pts
}

// StarPoints returns a star with the given number of points. ratio is the
// inner radius as a fraction of the outer radius.
func StarPoints(size Point, points int, ratio float64) []Point {
	if points < 3 {
		points = 3
	}
	center := size.Div(2)
	n := points * 2
	pts := make([]Point, n)
	for i := range pts {
		a := -math.Pi/2 + float64(i)*math.Pi*2/float64(n)
		r := 1.0
		if i%2 == 1 {
			r = ratio
		}
		pts[i] = Point{center[0] + math.Cos(a)*size[0]/2*r, center[1] + math.Sin(a)*size[1]/2*r}
	}
	return pts
}

// Translate returns pts offset by delta.
func Translate(pts []Point, delta Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(delta)
	}
	return out
}

// Rotate returns pts rotated by r around center.
func Rotate(pts []Point, center Point, r float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = p.RotWith(center, r)
	}
	return out
}
