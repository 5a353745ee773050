// Package shape implements the whiteboard's drawable entities.
//
// Shapes are a closed set of variants identified by Type. Each variant is
// described once by a Variant: its capability flags and the geometry
// functions (bounds, hit-testing, resizing, validation) that operate on plain
// Props. A Shape pairs a Props value with its Variant; all mutation goes
// through Shape.Update, which validates a Patch before merging it.
package shape

import (
	"maps"
	"slices"

	"whiteboard/geometry"
)

// Type tags a shape variant.
type Type string

const (
	TypeBox         Type = "box"
	TypeEllipse     Type = "ellipse"
	TypeDot         Type = "dot"
	TypeLine        Type = "line"
	TypePolygon     Type = "polygon"
	TypeText        Type = "text"
	TypeGroup       Type = "group"
	TypePortal      Type = "portal"
	TypeImage       Type = "image"
	TypeYouTube     Type = "youtube"
	TypePencil      Type = "pencil"
	TypeHighlighter Type = "highlighter"
)

// Line handle ids.
const (
	HandleStart = "start"
	HandleEnd   = "end"
)

// LineHandle is a draggable point of a line, relative to the line's point.
type LineHandle struct {
	ID        string         `json:"id"`
	Point     geometry.Point `json:"point"`
	CanBind   bool           `json:"canBind,omitempty"`
	BindingID string         `json:"bindingId,omitempty"`
}

// Decorations are the end caps drawn on a line.
type Decorations struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// DecorationArrow is the only decoration renderers are expected to draw.
const DecorationArrow = "arrow"

// Props is the complete serialisable state of a shape. Fields that do not
// apply to a variant stay at their zero value and are omitted on the wire.
type Props struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	ParentID string         `json:"parentId"`
	Name     string         `json:"name,omitempty"`
	Point    geometry.Point `json:"point"`
	Size     geometry.Point `json:"size,omitzero"`
	Rotation float64        `json:"rotation,omitempty"`

	// Radius is the dot radius, or the corner radius of a box.
	Radius      float64 `json:"radius,omitempty"`
	Sides       int     `json:"sides,omitempty"`
	Ratio       float64 `json:"ratio,omitempty"`
	IsStarShape bool    `json:"isStarShape,omitempty"`

	Handles     map[string]LineHandle `json:"handles,omitempty"`
	Decorations *Decorations          `json:"decorations,omitempty"`
	Points      []geometry.Point      `json:"points,omitempty"`

	Text           string  `json:"text,omitempty"`
	Label          string  `json:"label,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	LineHeight     float64 `json:"lineHeight,omitempty"`
	Padding        float64 `json:"padding,omitempty"`
	IsAutoResizing bool    `json:"isAutoResizing,omitempty"`

	URL       string `json:"url,omitempty"`
	PageID    string `json:"pageId,omitempty"`
	Collapsed bool   `json:"collapsed,omitempty"`
	AssetID   string `json:"assetId,omitempty"`
	ObjectFit string `json:"objectFit,omitempty"`

	Children []string `json:"children,omitempty"`

	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	StrokeType  string  `json:"strokeType,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	NoFill      bool    `json:"noFill,omitempty"`

	IsLocked            bool `json:"isLocked,omitempty"`
	IsAspectRatioLocked bool `json:"isAspectRatioLocked,omitempty"`
}

// Clone returns a deep copy.
func (p Props) Clone() Props {
	out := p
	out.Handles = maps.Clone(p.Handles)
	out.Points = slices.Clone(p.Points)
	out.Children = slices.Clone(p.Children)
	if p.Decorations != nil {
		d := *p.Decorations
		out.Decorations = &d
	}
	return out
}

// Handle returns the named line handle in page space.
func (p Props) Handle(id string) (geometry.Point, bool) {
	h, ok := p.Handles[id]
	if !ok {
		return geometry.Point{}, false
	}
	return p.Point.Add(h.Point), true
}

// Ptr returns a pointer to v. It keeps Patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	ParentID    *string               `json:"parentId,omitempty"`
	Name        *string               `json:"name,omitempty"`
	Point       *geometry.Point       `json:"point,omitempty"`
	Size        *geometry.Point       `json:"size,omitempty"`
	Rotation    *float64              `json:"rotation,omitempty"`
	Radius      *float64              `json:"radius,omitempty"`
	Sides       *int                  `json:"sides,omitempty"`
	Ratio       *float64              `json:"ratio,omitempty"`
	IsStarShape *bool                 `json:"isStarShape,omitempty"`
	Handles     map[string]LineHandle `json:"handles,omitempty"`
	Decorations *Decorations          `json:"decorations,omitempty"`
	Points      []geometry.Point      `json:"points,omitempty"`

	Text           *string  `json:"text,omitempty"`
	Label          *string  `json:"label,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	IsAutoResizing *bool    `json:"isAutoResizing,omitempty"`

	URL       *string   `json:"url,omitempty"`
	PageID    *string   `json:"pageId,omitempty"`
	Collapsed *bool     `json:"collapsed,omitempty"`
	AssetID   *string   `json:"assetId,omitempty"`
	Children  *[]string `json:"children,omitempty"`

	Stroke      *string  `json:"stroke,omitempty"`
	Fill        *string  `json:"fill,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	NoFill      *bool    `json:"noFill,omitempty"`

	IsLocked            *bool `json:"isLocked,omitempty"`
	IsAspectRatioLocked *bool `json:"isAspectRatioLocked,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.ParentID == nil && p.Name == nil && p.Point == nil && p.Size == nil &&
		p.Rotation == nil && p.Radius == nil && p.Sides == nil && p.Ratio == nil &&
		p.IsStarShape == nil && p.Handles == nil && p.Decorations == nil && p.Points == nil &&
		p.Text == nil && p.Label == nil && p.FontSize == nil && p.IsAutoResizing == nil &&
		p.URL == nil && p.PageID == nil && p.Collapsed == nil && p.AssetID == nil &&
		p.Children == nil && p.Stroke == nil && p.Fill == nil && p.StrokeWidth == nil &&
		p.Opacity == nil && p.NoFill == nil && p.IsLocked == nil && p.IsAspectRatioLocked == nil
}

// Apply merges the patch into props and returns the result. Handles are
// merged by id; every other field is replaced.
func (p Patch) Apply(props Props) Props {
	out := props.Clone()
	set(&out.ParentID, p.ParentID)
	set(&out.Name, p.Name)
	set(&out.Point, p.Point)
	set(&out.Size, p.Size)
	set(&out.Rotation, p.Rotation)
	set(&out.Radius, p.Radius)
	set(&out.Sides, p.Sides)
	set(&out.Ratio, p.Ratio)
	set(&out.IsStarShape, p.IsStarShape)
	if p.Handles != nil {
		if out.Handles == nil {
			out.Handles = make(map[string]LineHandle, len(p.Handles))
		}
		for id, h := range p.Handles {
			out.Handles[id] = h
		}
	}
	if p.Decorations != nil {
		d := *p.Decorations
		out.Decorations = &d
	}
	if p.Points != nil {
		out.Points = slices.Clone(p.Points)
	}
	set(&out.Text, p.Text)
	set(&out.Label, p.Label)
	set(&out.FontSize, p.FontSize)
	set(&out.IsAutoResizing, p.IsAutoResizing)
	set(&out.URL, p.URL)
	set(&out.PageID, p.PageID)
	set(&out.Collapsed, p.Collapsed)
	set(&out.AssetID, p.AssetID)
	if p.Children != nil {
		out.Children = slices.Clone(*p.Children)
	}
	set(&out.Stroke, p.Stroke)
	set(&out.Fill, p.Fill)
	set(&out.StrokeWidth, p.StrokeWidth)
	set(&out.Opacity, p.Opacity)
	set(&out.NoFill, p.NoFill)
	set(&out.IsLocked, p.IsLocked)
	set(&out.IsAspectRatioLocked, p.IsAspectRatioLocked)
	return out
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Diff returns the patch that turns from into to. Only fields a Patch can
// carry are compared.
func Diff(from, to Props) Patch {
	var p Patch
	if from.ParentID != to.ParentID {
		p.ParentID = Ptr(to.ParentID)
	}
	if from.Name != to.Name {
		p.Name = Ptr(to.Name)
	}
	if from.Point != to.Point {
		p.Point = Ptr(to.Point)
	}
	if from.Size != to.Size {
		p.Size = Ptr(to.Size)
	}
	if from.Rotation != to.Rotation {
		p.Rotation = Ptr(to.Rotation)
	}
	if from.Radius != to.Radius {
		p.Radius = Ptr(to.Radius)
	}
	if from.Sides != to.Sides {
		p.Sides = Ptr(to.Sides)
	}
	if from.Ratio != to.Ratio {
		p.Ratio = Ptr(to.Ratio)
	}
	if from.IsStarShape != to.IsStarShape {
		p.IsStarShape = Ptr(to.IsStarShape)
	}
	if !maps.Equal(from.Handles, to.Handles) {
		p.Handles = maps.Clone(to.Handles)
	}
	if to.Decorations != nil && (from.Decorations == nil || *from.Decorations != *to.Decorations) {
		d := *to.Decorations
		p.Decorations = &d
	}
	if !slices.Equal(from.Points, to.Points) {
		p.Points = slices.Clone(to.Points)
	}
	if from.Text != to.Text {
		p.Text = Ptr(to.Text)
	}
	if from.Label != to.Label {
		p.Label = Ptr(to.Label)
	}
	if from.FontSize != to.FontSize {
		p.FontSize = Ptr(to.FontSize)
	}
	if from.IsAutoResizing != to.IsAutoResizing {
		p.IsAutoResizing = Ptr(to.IsAutoResizing)
	}
	if from.URL != to.URL {
		p.URL = Ptr(to.URL)
	}
	if from.PageID != to.PageID {
		p.PageID = Ptr(to.PageID)
	}
	if from.Collapsed != to.Collapsed {
		p.Collapsed = Ptr(to.Collapsed)
	}
	if from.AssetID != to.AssetID {
		p.AssetID = Ptr(to.AssetID)
	}
	if !slices.Equal(from.Children, to.Children) {
		c := slices.Clone(to.Children)
		p.Children = &c
	}
	if from.Stroke != to.Stroke {
		p.Stroke = Ptr(to.Stroke)
	}
	if from.Fill != to.Fill {
		p.Fill = Ptr(to.Fill)
	}
	if from.StrokeWidth != to.StrokeWidth {
		p.StrokeWidth = Ptr(to.StrokeWidth)
	}
	if from.Opacity != to.Opacity {
		p.Opacity = Ptr(to.Opacity)
	}
	if from.NoFill != to.NoFill {
		p.NoFill = Ptr(to.NoFill)
	}
	if from.IsLocked != to.IsLocked {
		p.IsLocked = Ptr(to.IsLocked)
	}
	if from.IsAspectRatioLocked != to.IsAspectRatioLocked {
		p.IsAspectRatioLocked = Ptr(to.IsAspectRatioLocked)
	}
	return p
}
