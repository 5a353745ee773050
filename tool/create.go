package tool

import (
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/shape"
)

// creator drags out a box-like shape: the shape is added on pointer down
// and spans the drag once the pointer leaves the dead zone. A click without
// a drag leaves a shape of the default size centered on the pointer.
type creator struct {
	t   *Tool
	typ shape.Type
	// prepare adjusts the new shape's props. Returning false aborts.
	prepare func(p *shape.Props) bool

	id          string
	initial     shape.Props
	defaultSize geometry.Point
	dragging    bool
}

// ShapeTool returns the factory of a tool that drags out shapes of type typ.
func ShapeTool(typ shape.Type) Factory {
	return func(t *Tool) *State {
		c := &creator{t: t, typ: typ}
		return c.states(string(typ), Handlers{})
	}
}

func (c *creator) states(id string, root Handlers) *State {
	return &State{
		ID:       id,
		Initial:  "idle",
		Handlers: root,
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: func(e input.PointerEvent) {
					if e.Button == input.ButtonPrimary {
						c.t.Transition("creating", e)
					}
				},
			}},
			{ID: "creating", Handlers: Handlers{
				Enter:       c.begin,
				Exit:        c.exit,
				PointerMove: c.drag,
				PointerUp:   c.finish,
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						c.cancel()
					}
				},
			}},
		},
	}
}

func (c *creator) begin(any) {
	h := c.t.Host()
	doc := h.Document()
	p, err := doc.Registry().Defaults(c.typ)
	if err != nil {
		c.t.log.Error("create %s: %v", c.typ, err)
		c.t.Transition("idle", nil)
		return
	}
	c.defaultSize = p.Size
	p.Point = h.Inputs().OriginPoint
	p.Size = geometry.Pt(geometry.MinSize, geometry.MinSize)
	if c.prepare != nil && !c.prepare(&p) {
		c.t.Transition("idle", nil)
		return
	}

	doc.Begin("create " + string(c.typ))
	shapes, err := doc.AddShapes(p)
	if err != nil || len(shapes) == 0 {
		doc.Cancel()
		c.t.Transition("idle", nil)
		return
	}
	c.id = shapes[0].ID()
	c.initial = shapes[0].Props()
	c.dragging = false
	doc.SetSelectedShapes(c.id)
}

func (c *creator) drag(input.PointerEvent) {
	h := c.t.Host()
	in := h.Inputs()
	if !c.dragging {
		if !isDrag(h) {
			return
		}
		c.dragging = true
	}
	doc := h.Document()
	s := doc.Shape(c.id)
	if s == nil {
		return
	}
	lock := in.Modifiers.Shift || s.IsAspectRatioLocked()
	b := geometry.FromDrag(in.OriginPoint, in.CurrentPoint, lock, in.Modifiers.Alt)
	off := in.Offset()
	scale := geometry.Pt(1, 1)
	if off.X() < 0 {
		scale[0] = -1
	}
	if off.Y() < 0 {
		scale[1] = -1
	}
	patch := s.Resize(c.initial, shape.ResizeInfo{
		Bounds: b,
		Scale:  scale,
		Handle: geometry.HandleBottomRight,
	})
	doc.UpdateShapes(document.Update{ID: c.id, Patch: patch})
}

func (c *creator) finish(input.PointerEvent) {
	doc := c.t.Host().Document()
	if !c.dragging && c.defaultSize != (geometry.Point{}) {
		origin := c.t.Host().Inputs().OriginPoint
		doc.UpdateShapes(document.Update{ID: c.id, Patch: shape.Patch{
			Point: shape.Ptr(origin.Sub(c.defaultSize.Div(2))),
			Size:  shape.Ptr(c.defaultSize),
		}})
	}
	doc.Commit()
	c.id = ""
	done(c.t)
}

func (c *creator) cancel() {
	c.t.Host().Document().Cancel()
	c.id = ""
	c.t.Transition("idle", nil)
}

func (c *creator) exit() {
	if c.id == "" {
		return
	}
	closeStep(c.t.Host().Document())
	c.id = ""
}

// ImageTool places an image asset. The asset comes from the Place payload
// or is the most recently added image asset; without one the tool hands
// back to select.
func ImageTool(t *Tool) *State {
	var assetID string
	c := &creator{t: t, typ: shape.TypeImage}
	c.prepare = func(p *shape.Props) bool {
		a, ok := t.Host().Document().Asset(assetID)
		if !ok {
			return false
		}
		p.AssetID = a.ID
		if a.Size[0] > 0 && a.Size[1] > 0 {
			c.defaultSize = a.Size
		}
		return true
	}
	return c.states(Image, Handlers{
		Enter: func(payload any) {
			assetID = ""
			if pl, ok := payload.(Place); ok {
				assetID = pl.AssetID
			} else {
				assets := t.Host().Document().Assets()
				for i := len(assets) - 1; i >= 0; i-- {
					if assets[i].Type == "image" {
						assetID = assets[i].ID
						break
					}
				}
			}
			if _, ok := t.Host().Document().Asset(assetID); !ok {
				t.log.Debug("image: no asset to place")
				t.Host().SelectTool(Select, nil)
			}
		},
	})
}

// DotTool places a dot centered on the pointer and lets it follow the
// pointer until release.
func DotTool(t *Tool) *State {
	var (
		id     string
		offset geometry.Point
	)
	cancel := func() {
		t.Host().Document().Cancel()
		id = ""
		t.Transition("idle", nil)
	}
	return &State{
		ID:      Dot,
		Initial: "idle",
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: func(e input.PointerEvent) {
					if e.Button == input.ButtonPrimary {
						t.Transition("creating", e)
					}
				},
			}},
			{ID: "creating", Handlers: Handlers{
				Enter: func(any) {
					h := t.Host()
					doc := h.Document()
					p, err := doc.Registry().Defaults(shape.TypeDot)
					if err != nil {
						t.Transition("idle", nil)
						return
					}
					offset = geometry.Pt(p.Radius, p.Radius)
					p.Point = h.Inputs().OriginPoint.Sub(offset)
					doc.Begin("create dot")
					shapes, err := doc.AddShapes(p)
					if err != nil || len(shapes) == 0 {
						doc.Cancel()
						t.Transition("idle", nil)
						return
					}
					id = shapes[0].ID()
					doc.SetSelectedShapes(id)
				},
				Exit: func() {
					if id != "" {
						closeStep(t.Host().Document())
						id = ""
					}
				},
				PointerMove: func(input.PointerEvent) {
					h := t.Host()
					h.Document().UpdateShapes(document.Update{ID: id, Patch: shape.Patch{
						Point: shape.Ptr(h.Inputs().CurrentPoint.Sub(offset)),
					}})
				},
				PointerUp: func(input.PointerEvent) {
					t.Host().Document().Commit()
					id = ""
					done(t)
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						cancel()
					}
				},
			}},
		},
	}
}

// TextTool adds a text shape where the pointer goes down and starts editing
// it in the select tool.
func TextTool(t *Tool) *State {
	return &State{
		ID:      Text,
		Initial: "idle",
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: func(e input.PointerEvent) {
					if e.Button != input.ButtonPrimary {
						return
					}
					mark := t.Host().Document().Steps()
					id, ok := createText(t, e.Point)
					if !ok {
						return
					}
					t.Host().SelectTool(Select, Edit{ShapeID: id, Created: true, Mark: mark})
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Host().SelectTool(Select, nil)
					}
				},
			}},
		},
	}
}

func createText(t *Tool, at geometry.Point) (string, bool) {
	doc := t.Host().Document()
	p, err := doc.Registry().Defaults(shape.TypeText)
	if err != nil {
		t.log.Error("create text: %v", err)
		return "", false
	}
	p.Point = at
	shapes, err := doc.AddShapes(p)
	if err != nil || len(shapes) == 0 {
		return "", false
	}
	return shapes[0].ID(), true
}
