package app

import (
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/shape"
)

const (
	// handleRadius is how close, in screen units, a pointer must be to a
	// handle to grab it.
	handleRadius = 8
	// rotateOffset is the screen distance of the rotate handle above the
	// selection.
	rotateOffset = 24
)

// Selection is the frame drawn around the selected shapes.
type Selection struct {
	// Bounds are unrotated. Rotation is set when one rotated shape is
	// selected, and the frame turns about the bounds center.
	Bounds             geometry.Bounds
	HideResizeHandles  bool
	HideRotateHandle   bool
	HideSelectionFrame bool
}

// Selection returns the selection frame, or false when nothing is selected.
func (a *App) Selection() (Selection, bool) {
	sel := a.doc.SelectedShapes()
	if len(sel) == 0 {
		return Selection{}, false
	}
	var s Selection
	if len(sel) == 1 {
		s.Bounds = sel[0].Bounds()
	} else {
		bounds := make([]geometry.Bounds, len(sel))
		for i, sh := range sel {
			bounds[i] = sh.RotatedBounds()
		}
		s.Bounds = geometry.Common(bounds...)
		s.Bounds.Rotation = 0
	}
	for _, sh := range sel {
		caps := sh.Caps()
		s.HideResizeHandles = s.HideResizeHandles || caps.HideResizeHandles || sh.Props().IsLocked
		s.HideRotateHandle = s.HideRotateHandle || caps.HideRotateHandle || sh.Props().IsLocked
		s.HideSelectionFrame = s.HideSelectionFrame || caps.HideSelectionDetail
	}
	return s, true
}

// RotateHandle returns the rotate handle position in unrotated space for
// the selection s at zoom.
func RotateHandle(s Selection, zoom float64) geometry.Point {
	return geometry.Pt(s.Bounds.Center().X(), s.Bounds.MinY-rotateOffset/zoom)
}

// TargetAt resolves the single thing under a screen point, in priority
// order: the handles of a selected line, the rotate handle, the resize
// handles, the selection frame, shapes top-down, then the canvas. Inside
// the selection frame a selected shape is still reported as a shape.
func (a *App) TargetAt(screen geometry.Point) input.Target {
	p := a.viewport.ScreenToDocument(screen)
	zoom := a.viewport.Camera().Zoom
	r := handleRadius / zoom
	page := a.doc.CurrentPage()
	sel := page.SelectedShapes()

	if len(sel) == 1 && sel[0].Type() == shape.TypeLine {
		props := sel[0].Props()
		for _, id := range []string{shape.HandleEnd, shape.HandleStart} {
			if hp, ok := props.Handle(id); ok && hp.Dist(p) <= r {
				return input.Target{Kind: input.TargetHandle, ShapeID: sel[0].ID(), HandleID: id}
			}
		}
	}

	if s, ok := a.Selection(); ok {
		b := s.Bounds
		local := p.RotWith(b.Center(), -b.Rotation)
		if !s.HideRotateHandle && RotateHandle(s, zoom).Dist(local) <= r {
			return input.Target{Kind: input.TargetRotateHandle}
		}
		if !s.HideResizeHandles {
			for _, h := range geometry.ResizeHandles {
				if h.Position(b).Dist(local) <= r {
					return input.Target{Kind: input.TargetResizeHandle, Resize: h}
				}
			}
		}
		if !s.HideSelectionFrame && b.ContainsPoint(local) {
			for i := len(sel) - 1; i >= 0; i-- {
				if id, ok := a.hitShape(sel[i].ID(), p); ok {
					return input.Target{Kind: input.TargetShape, ShapeID: id}
				}
			}
			return input.Target{Kind: input.TargetSelection}
		}
	}

	shapes := page.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		s := shapes[i]
		if s.Type() == shape.TypeGroup {
			continue
		}
		if s.HitTestPoint(p) {
			return input.Target{Kind: input.TargetShape, ShapeID: s.ID()}
		}
	}
	return input.Target{Kind: input.TargetCanvas}
}

// hitShape tests id, or for a group the topmost leaf under it, against p.
func (a *App) hitShape(id string, p geometry.Point) (string, bool) {
	page := a.doc.CurrentPage()
	ids := page.Descendants(id)
	for i := len(ids) - 1; i >= 0; i-- {
		s := page.Shape(ids[i])
		if s == nil || s.Type() == shape.TypeGroup {
			continue
		}
		if s.HitTestPoint(p) {
			return s.ID(), true
		}
	}
	return "", false
}
