package tool

import (
	"slices"

	"whiteboard/camera"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/internal/logger"
	"whiteboard/shape"
)

// Tool ids.
const (
	Select      = "select"
	Move        = "move"
	Box         = "box"
	Ellipse     = "ellipse"
	Dot         = "dot"
	Line        = "line"
	Polygon     = "polygon"
	Text        = "text"
	Pencil      = "pencil"
	Highlighter = "highlighter"
	Erase       = "erase"
	Portal      = "portal"
	Image       = "image"
	YouTube     = "youtube"
)

// Settings are the tunables tools read from their host.
type Settings struct {
	// DeadZone is the document distance a pointer must travel before a
	// pointing gesture becomes a drag.
	DeadZone        float64
	BindingDistance float64
	// ToolLocked keeps creation tools active after a shape is made.
	ToolLocked bool
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings {
	return Settings{
		DeadZone:        input.DefaultDeadZone,
		BindingDistance: shape.BindingDistance,
	}
}

// Host is what a tool needs from the app that owns it.
type Host interface {
	Document() *document.Document
	Inputs() *input.Inputs
	Viewport() *camera.Viewport
	Settings() Settings
	Logger() *logger.Logger
	// SelectTool deactivates the current tool and activates id with payload.
	SelectTool(id string, payload any)
	// SetBrush shows or, with nil, hides the selection brush.
	SetBrush(b *geometry.Bounds)
}

// Edit is the select tool payload that starts editing a shape. Created
// marks a shape made for this edit; Mark is the history length before it
// was made, and the steps after Mark are forgotten if it is left empty.
type Edit struct {
	ShapeID string
	Created bool
	Mark    int
}

// Place is the image tool payload naming the asset to place.
type Place struct {
	AssetID string
}

// Factory builds the state tree of a tool bound to t.
type Factory func(t *Tool) *State

// Registry maps tool ids to factories.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in tool.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Select, SelectTool)
	r.Register(Move, MoveTool)
	r.Register(Box, ShapeTool(shape.TypeBox))
	r.Register(Ellipse, ShapeTool(shape.TypeEllipse))
	r.Register(Dot, DotTool)
	r.Register(Line, LineTool)
	r.Register(Polygon, ShapeTool(shape.TypePolygon))
	r.Register(Text, TextTool)
	r.Register(Pencil, DrawTool(shape.TypePencil))
	r.Register(Highlighter, DrawTool(shape.TypeHighlighter))
	r.Register(Erase, EraseTool)
	r.Register(Portal, ShapeTool(shape.TypePortal))
	r.Register(Image, ImageTool)
	r.Register(YouTube, ShapeTool(shape.TypeYouTube))
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(id string, f Factory) {
	if _, ok := r.factories[id]; !ok {
		r.order = append(r.order, id)
	}
	r.factories[id] = f
}

// Get looks up a factory.
func (r *Registry) Get(id string) (Factory, bool) {
	f, ok := r.factories[id]
	return f, ok
}

// IDs lists tool ids in registration order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.order)
}

// Graph describes every registered tool's states.
func (r *Registry) Graph() []Node {
	var out []Node
	for _, id := range r.order {
		out = append(out, New(id, nil, r.factories[id]).Graph()...)
	}
	return out
}

// done ends a creation gesture: locked tools go back to idle, the rest hand
// over to the select tool.
func done(t *Tool) {
	if t.Host().Settings().ToolLocked {
		t.Transition("idle", nil)
		return
	}
	t.Host().SelectTool(Select, nil)
}

func isDrag(h Host) bool {
	return h.Inputs().IsDrag(h.Settings().DeadZone)
}

func isEscape(e input.KeyEvent) bool {
	return e.Key == input.KeyEscape
}

// closeStep commits an undo step left open by a gesture that was
// interrupted.
func closeStep(doc *document.Document) {
	if doc.InProgress() {
		doc.Commit()
	}
}

// outermost returns the top-level ancestor of id on page p, so clicking a
// grouped shape picks its group.
func outermost(p *document.Page, id string) string {
	for {
		s := p.Shape(id)
		if s == nil {
			return id
		}
		parent := p.Shape(s.Props().ParentID)
		if parent == nil || parent.Type() != shape.TypeGroup {
			return id
		}
		id = parent.ID()
	}
}
