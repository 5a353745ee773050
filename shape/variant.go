package shape

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"whiteboard/geometry"
)

// ErrUnknownType is returned when props name a type the registry lacks.
var ErrUnknownType = errors.New("unknown shape type")

// Capabilities are the static flags the selection, tool and rendering
// layers query instead of inspecting the type.
type Capabilities struct {
	CanBind             bool
	CanEdit             bool
	CanFlip             bool
	CanActivate         bool
	IsAspectRatioLocked bool
	HideSelectionDetail bool
	HideResizeHandles   bool
	HideRotateHandle    bool
	HideContextBar      bool
}

// ResizeInfo describes a resize target for a single shape.
type ResizeInfo struct {
	// Bounds are the new unrotated page bounds.
	Bounds   geometry.Bounds
	Rotation float64
	// Scale is the signed per-axis scale from the initial bounds.
	Scale  geometry.Point
	Handle geometry.Handle
}

// Variant is the descriptor of one shape type. Geometry functions receive
// props in unrotated page space; Shape applies rotation around them.
type Variant struct {
	Type     Type
	Caps     Capabilities
	Defaults func() Props

	Bounds func(p Props) geometry.Bounds
	// Outline returns the closed outline in unrotated page space. Nil means
	// the bounds rectangle.
	Outline func(p Props) []geometry.Point
	// HitTestPoint and HitTestSegment override the outline based tests.
	HitTestPoint   func(p Props, pt geometry.Point) bool
	HitTestSegment func(p Props, a, b geometry.Point) bool
	// Intersect returns where a ray crosses the outline grown by expand.
	Intersect func(p Props, origin, direction geometry.Point, expand float64) []geometry.Point

	Resize   func(initial Props, info ResizeInfo) Patch
	Validate func(current Props, patch Patch) Patch
	Flip     func(p Props, bounds geometry.Bounds, horizontal bool) Patch
}

// Registry holds the variants an app knows about.
type Registry struct {
	variants map[Type]*Variant
	order    []Type
}

// NewRegistry builds a registry from variants. A later variant with the same
// type replaces an earlier one.
func NewRegistry(variants ...*Variant) *Registry {
	r := &Registry{variants: make(map[Type]*Variant)}
	for _, v := range variants {
		r.Register(v)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in variant.
func DefaultRegistry() *Registry {
	return NewRegistry(
		BoxVariant(),
		EllipseVariant(),
		DotVariant(),
		LineVariant(),
		PolygonVariant(),
		TextVariant(),
		GroupVariant(),
		PortalVariant(),
		ImageVariant(),
		YouTubeVariant(),
		PencilVariant(),
		HighlighterVariant(),
	)
}

// Register adds or replaces a variant.
func (r *Registry) Register(v *Variant) {
	if _, ok := r.variants[v.Type]; !ok {
		r.order = append(r.order, v.Type)
	}
	r.variants[v.Type] = v
}

// Get looks up a variant.
func (r *Registry) Get(t Type) (*Variant, bool) {
	v, ok := r.variants[t]
	return v, ok
}

// Types lists registered types in registration order.
func (r *Registry) Types() []Type {
	return slices.Clone(r.order)
}

// Defaults returns the default props of a type with a fresh id.
func (r *Registry) Defaults(t Type) (Props, error) {
	v, ok := r.variants[t]
	if !ok {
		return Props{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	p := v.Defaults()
	p.Type = t
	p.ID = NewID()
	return p, nil
}

// New builds a new shape from props. Zero fields are filled from the
// variant defaults, a missing id is generated and the result is validated.
func (r *Registry) New(p Props) (*Shape, error) {
	return r.build(p, true)
}

// Restore rebuilds a shape from stored props, as loaded, undone or pasted
// shapes are. The props are validated but zero fields stay zero.
func (r *Registry) Restore(p Props) (*Shape, error) {
	return r.build(p, false)
}

func (r *Registry) build(p Props, defaults bool) (*Shape, error) {
	v, ok := r.variants[p.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
	}
	props := p.Clone()
	if defaults {
		props = withDefaults(props, v.Defaults())
	}
	if props.ID == "" {
		props.ID = NewID()
	}
	s := &Shape{props: props, variant: v}
	s.props = s.ValidateProps(Diff(Props{}, props)).Apply(s.props)
	s.props.ID = props.ID
	s.props.Type = props.Type
	return s, nil
}

func withDefaults(p, d Props) Props {
	if p.Size == (geometry.Point{}) {
		p.Size = d.Size
	}
	if p.Radius == 0 {
		p.Radius = d.Radius
	}
	if p.Sides == 0 {
		p.Sides = d.Sides
	}
	if p.Ratio == 0 {
		p.Ratio = d.Ratio
	}
	if p.Handles == nil {
		p.Handles = d.Handles
	}
	if p.Decorations == nil {
		p.Decorations = d.Decorations
	}
	if p.FontSize == 0 {
		p.FontSize = d.FontSize
	}
	if p.LineHeight == 0 {
		p.LineHeight = d.LineHeight
	}
	if p.Padding == 0 {
		p.Padding = d.Padding
	}
	if p.ObjectFit == "" {
		p.ObjectFit = d.ObjectFit
	}
	if p.Stroke == "" {
		p.Stroke = d.Stroke
	}
	if p.Fill == "" {
		p.Fill = d.Fill
	}
	if p.StrokeWidth == 0 {
		p.StrokeWidth = d.StrokeWidth
	}
	if p.StrokeType == "" {
		p.StrokeType = d.StrokeType
	}
	if p.Opacity == 0 {
		p.Opacity = d.Opacity
	}
	return p
}

// boxDefaults are the style defaults shared by the closed shapes.
func boxDefaults(size geometry.Point) Props {
	return Props{
		Size:        size,
		Stroke:      "#000000",
		Fill:        "#ffffff",
		StrokeWidth: 2,
		StrokeType:  "line",
		Opacity:     1,
	}
}

func rectBounds(p Props) geometry.Bounds {
	return geometry.NewBounds(p.Point, p.Size)
}

// resizeRect is the resize used by every variant positioned by point+size.
func resizeRect(_ Props, info ResizeInfo) Patch {
	b := info.Bounds
	return Patch{
		Point: Ptr(b.Min()),
		Size:  Ptr(b.Size()),
	}
}

// validateCommon corrects the fields every variant shares.
func validateCommon(_ Props, patch Patch) Patch {
	if patch.Size != nil {
		patch.Size = Ptr(geometry.ClampSize(*patch.Size))
	}
	if patch.Point != nil && !patch.Point.IsFinite() {
		patch.Point = nil
	}
	if patch.Rotation != nil {
		if math.IsNaN(*patch.Rotation) || math.IsInf(*patch.Rotation, 0) {
			patch.Rotation = nil
		} else {
			patch.Rotation = Ptr(normalizeRotation(*patch.Rotation))
		}
	}
	if patch.Opacity != nil {
		patch.Opacity = Ptr(math.Max(0, math.Min(1, *patch.Opacity)))
	}
	if patch.StrokeWidth != nil {
		patch.StrokeWidth = Ptr(math.Max(0, *patch.StrokeWidth))
	}
	return patch
}

// normalizeRotation keeps rotation in [0, 2π) while leaving 0 exactly 0.
func normalizeRotation(r float64) float64 {
	r = geometry.ClampRadians(r)
	if math.Abs(r-math.Pi*2) < geometry.Epsilon || math.Abs(r) < geometry.Epsilon {
		return 0
	}
	return r
}

// flipRect mirrors nothing beyond position; rotation is negated so the
// mirrored shape keeps its visual orientation.
func flipRect(p Props, _ geometry.Bounds, _ bool) Patch {
	if p.Rotation == 0 {
		return Patch{}
	}
	return Patch{Rotation: Ptr(-p.Rotation)}
}
