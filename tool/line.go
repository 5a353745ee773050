package tool

import (
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/shape"
)

// LineTool drags out a line from the pointer down point. The start binds to
// the shape it began on and the end to whatever bindable shape it is
// released over. Holding Ctrl disables binding. A click without a drag
// creates nothing.
func LineTool(t *Tool) *State {
	var (
		id       string
		startOn  string
		dragging bool
	)
	cancel := func() {
		t.Host().Document().Cancel()
		id = ""
		t.Transition("idle", nil)
	}
	return &State{
		ID:      Line,
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
				Enter: func(payload any) {
					h := t.Host()
					doc := h.Document()
					startOn = ""
					if e, ok := payload.(input.PointerEvent); ok && e.Target.Kind == input.TargetShape {
						startOn = e.Target.ShapeID
					}
					p, err := doc.Registry().Defaults(shape.TypeLine)
					if err != nil {
						t.Transition("idle", nil)
						return
					}
					p.Point = h.Inputs().OriginPoint
					doc.Begin("create line")
					shapes, err := doc.AddShapes(p)
					if err != nil || len(shapes) == 0 {
						doc.Cancel()
						t.Transition("idle", nil)
						return
					}
					id = shapes[0].ID()
					dragging = false
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
					in := h.Inputs()
					if !dragging {
						if !isDrag(h) {
							return
						}
						dragging = true
						if !in.Modifiers.Ctrl && startOn != "" {
							bindStart(h, id, startOn)
						}
					}
					dragHandle(h, id, shape.HandleEnd, in.CurrentPoint, in.Modifiers)
				},
				PointerUp: func(input.PointerEvent) {
					doc := t.Host().Document()
					if dragging {
						doc.Commit()
					} else {
						doc.Cancel()
					}
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

// bindStart binds the start handle of a new line to the shape it was drawn
// from, anchored where the pointer went down.
func bindStart(h Host, lineID, targetID string) {
	doc := h.Document()
	page := doc.CurrentPage()
	line, target := page.Shape(lineID), page.Shape(targetID)
	if line == nil || target == nil {
		return
	}
	start, _ := line.Props().Handle(shape.HandleStart)
	end := h.Inputs().CurrentPoint
	bp, ok := target.BindingPoint(start, end, start.Sub(end).Uni(), true, h.Settings().BindingDistance)
	if !ok {
		return
	}
	doc.AddBindings(shape.Binding{
		Type:     shape.BindingTypeLine,
		FromID:   lineID,
		ToID:     targetID,
		HandleID: shape.HandleStart,
		Point:    bp.Point,
		Distance: bp.Distance,
	})
}

// dragHandle moves a line handle to point and rebinds it to the top-most
// bindable shape under it. A move onto the other handle is ignored.
func dragHandle(h Host, lineID, handleID string, point geometry.Point, mods input.Modifiers) {
	doc := h.Document()
	page := doc.CurrentPage()
	line := page.Shape(lineID)
	if line == nil || !point.IsFinite() {
		return
	}
	props := line.Props()
	handle, ok := props.Handles[handleID]
	if !ok {
		return
	}
	otherID := shape.HandleEnd
	if handleID == shape.HandleEnd {
		otherID = shape.HandleStart
	}
	other, _ := props.Handle(otherID)
	if point.IsEqual(other) {
		return
	}

	var binding *shape.Binding
	if handle.CanBind && !mods.Ctrl {
		binding = findBinding(h, page, lineID, handleID, point, other, mods.Meta)
	}
	if handle.BindingID != "" {
		if old, ok := page.Binding(handle.BindingID); ok && binding != nil && old.ToID == binding.ToID {
			binding.ID = old.ID
		}
		doc.DeleteBindings(handle.BindingID)
		handle.BindingID = ""
	}
	handle.Point = point.Sub(props.Point)
	doc.UpdateShapes(document.Update{ID: lineID, Patch: shape.Patch{
		Handles: map[string]shape.LineHandle{handleID: handle},
	}})
	if binding != nil {
		doc.AddBindings(*binding)
	}
}

func findBinding(h Host, page *document.Page, lineID, handleID string, point, other geometry.Point, anywhere bool) *shape.Binding {
	dir := point.Sub(other).Uni()
	dist := h.Settings().BindingDistance
	shapes := page.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		s := shapes[i]
		if s.ID() == lineID || !s.Caps().CanBind {
			continue
		}
		bp, ok := s.BindingPoint(point, other, dir, anywhere, dist)
		if !ok {
			continue
		}
		return &shape.Binding{
			ID:       shape.NewID(),
			Type:     shape.BindingTypeLine,
			FromID:   lineID,
			ToID:     s.ID(),
			HandleID: handleID,
			Point:    bp.Point,
			Distance: bp.Distance,
		}
	}
	return nil
}
