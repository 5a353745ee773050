package shape

import (
	"math"

	"github.com/google/uuid"

	"whiteboard/geometry"
)

// BindingDistance is how far outside a shape a handle may be dropped and
// still bind to it.
const BindingDistance = 16

// NewID returns a fresh unique identifier for shapes, bindings, pages and
// assets.
func NewID() string {
	return uuid.New().String()
}

// Binding ties a line handle (FromID, HandleID) to a target shape (ToID).
// Point is the anchor, normalised within the target bounds expanded by
// Distance.
type Binding struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	FromID   string         `json:"fromId"`
	ToID     string         `json:"toId"`
	HandleID string         `json:"handleId"`
	Point    geometry.Point `json:"point"`
	Distance float64        `json:"distance"`
}

// BindingTypeLine tags bindings owned by line shapes.
const BindingTypeLine = "line"

// BindingPoint is where a handle attaches to a shape.
type BindingPoint struct {
	// Point is normalised to [0,1] on both axes.
	Point    geometry.Point
	Distance float64
}

// BindingPoint computes where a handle at point, travelling along direction
// from origin, would attach. It reports false when the shape cannot bind or
// point is too far away.
func (s *Shape) BindingPoint(point, origin, direction geometry.Point, bindAnywhere bool, distance float64) (BindingPoint, bool) {
	if !s.variant.Caps.CanBind {
		return BindingPoint{}, false
	}
	bounds := s.variant.Bounds(s.props)
	expanded := bounds.Expand(distance)
	center := bounds.Center()
	lp := s.toLocal(point)
	if !expanded.ContainsPoint(lp) {
		return BindingPoint{}, false
	}
	lo := s.toLocal(origin)
	ld := direction.Rot(-s.props.Rotation)
	corners := expanded.Corners()
	hits := geometry.RayPolygonIntersections(lo, ld, corners[:])
	if len(hits) == 0 {
		return BindingPoint{}, false
	}
	intersection := hits[len(hits)-1]
	middle := lp.Med(intersection)

	var anchor geometry.Point
	var dist float64
	if bindAnywhere {
		anchor = lp
		if lp.Dist(center) < distance/2 {
			anchor = center
		}
	} else {
		anchor = middle
		if geometry.DistanceToSegment(lp, middle, center) < distance/2 {
			anchor = center
		}
		dist = distance
		if !bounds.ContainsPoint(lp) {
			dist = math.Max(distance, distanceToEdge(lp, bounds))
		}
	}
	n := geometry.Pt(
		clamp01(ratio(anchor[0]-expanded.MinX, expanded.Width)),
		clamp01(ratio(anchor[1]-expanded.MinY, expanded.Height)),
	)
	return BindingPoint{Point: n, Distance: dist}, true
}

func distanceToEdge(p geometry.Point, b geometry.Bounds) float64 {
	best := math.Inf(1)
	for _, e := range b.Edges() {
		best = math.Min(best, geometry.DistanceToSegment(p, e[0], e[1]))
	}
	return best
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Anchor returns the page position of a binding anchor on s.
func (s *Shape) Anchor(b Binding) geometry.Point {
	bounds := s.variant.Bounds(s.props)
	expanded := bounds.Expand(b.Distance)
	local := expanded.Min().Add(b.Point.MulV(expanded.Size()))
	return local.RotWith(bounds.Center(), s.props.Rotation)
}

// BoundHandlePoint returns where a handle bound by b should sit, given the
// page position of the line's other end. The handle lands where the segment
// from other toward the anchor first meets the outline grown by the binding
// distance. A zero distance pins it to the anchor itself.
func (s *Shape) BoundHandlePoint(b Binding, other geometry.Point) geometry.Point {
	anchor := s.Anchor(b)
	if b.Distance == 0 {
		return anchor
	}
	dir := anchor.Sub(other)
	if dir.Len() < geometry.Epsilon {
		return anchor
	}
	hits := s.Intersect(other, dir, b.Distance)
	if len(hits) == 0 {
		return anchor
	}
	return hits[0]
}

// Connector is a line with both ends bound.
type Connector struct {
	Line     Props
	Bindings [2]Binding
}

// NewLineBinding builds a line from the center of source to the center of
// target, bound at both ends. It returns nil when either shape refuses the
// binding or the ends would coincide.
func NewLineBinding(reg *Registry, source, target *Shape) *Connector {
	cs, ct := source.Center(), target.Center()
	if cs.IsEqual(ct) {
		return nil
	}
	line, err := reg.Defaults(TypeLine)
	if err != nil {
		return nil
	}
	line.ParentID = source.props.ParentID

	start, ok := source.BindingPoint(cs, cs, ct.Sub(cs).Uni(), false, BindingDistance)
	if !ok {
		return nil
	}
	end, ok := target.BindingPoint(ct, ct, cs.Sub(ct).Uni(), false, BindingDistance)
	if !ok {
		return nil
	}
	bs := Binding{
		ID: NewID(), Type: BindingTypeLine, FromID: line.ID, ToID: source.ID(),
		HandleID: HandleStart, Point: start.Point, Distance: start.Distance,
	}
	be := Binding{
		ID: NewID(), Type: BindingTypeLine, FromID: line.ID, ToID: target.ID(),
		HandleID: HandleEnd, Point: end.Point, Distance: end.Distance,
	}

	ps := source.BoundHandlePoint(bs, ct)
	pe := target.BoundHandlePoint(be, ps)
	if ps.IsEqual(pe) {
		ps, pe = cs, ct
	}
	origin := ps.Min(pe)
	line.Point = origin
	line.Handles = map[string]LineHandle{
		HandleStart: {ID: HandleStart, Point: ps.Sub(origin), CanBind: true, BindingID: bs.ID},
		HandleEnd:   {ID: HandleEnd, Point: pe.Sub(origin), CanBind: true, BindingID: be.ID},
	}
	return &Connector{Line: line, Bindings: [2]Binding{bs, be}}
}
