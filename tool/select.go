package tool

import (
	"math"
	"slices"

	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/shape"
)

// selector holds the state shared by the select tool's sub-states.
type selector struct {
	t *Tool

	pointed string
	target  input.Target

	// brushing
	initialSelection []string

	// translating
	moving  []string
	applied geometry.Point

	// resizing and rotating
	handle   geometry.Handle
	bounds   geometry.Bounds
	single   bool
	leaves   []string
	initial  map[string]shape.Props
	initialB map[string]geometry.Bounds
	center   geometry.Point
	angle    float64

	editing   string
	created   bool
	mark      int
	startZoom float64
}

// SelectTool selects, moves, resizes, rotates and edits shapes, and
// brushes over the canvas to select several at once.
func SelectTool(t *Tool) *State {
	s := &selector{t: t}
	to := func(id string) func(input.KeyEvent) {
		return func(e input.KeyEvent) {
			if isEscape(e) {
				t.Transition(id, nil)
			}
		}
	}
	// dragTo leaves a pointing state for id once the pointer has left the
	// dead zone.
	dragTo := func(id string) func(input.PointerEvent) {
		return func(input.PointerEvent) {
			if isDrag(t.Host()) {
				t.Transition(id, s.target)
			}
		}
	}
	idle := func(input.PointerEvent) { t.Transition("idle", nil) }

	return &State{
		ID:      Select,
		Initial: "idle",
		Handlers: Handlers{
			Enter: func(payload any) {
				if e, ok := payload.(Edit); ok {
					t.Transition("editingShape", e)
				}
			},
			Exit: func() { t.Host().SetBrush(nil) },
			PinchStart: func(e input.PinchEvent) {
				t.Transition("pinching", e)
			},
		},
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: s.pointerDown,
				DoubleClick: s.doubleClick,
				KeyDown:     s.keyDown,
			}},
			{ID: "pointingCanvas", Handlers: Handlers{
				Enter: func(any) {
					h := t.Host()
					if !h.Inputs().Modifiers.Shift {
						h.Document().SetSelectedShapes()
					}
				},
				PointerMove: dragTo("brushing"),
				PointerUp:   idle,
				KeyDown:     to("idle"),
			}},
			{ID: "pointingShape", Handlers: Handlers{
				Enter: func(payload any) {
					s.point(payload)
					h := t.Host()
					doc := h.Document()
					if h.Inputs().Modifiers.Shift {
						doc.SetSelectedShapes(append(doc.SelectedIDs(), s.pointed)...)
					} else {
						doc.SetSelectedShapes(s.pointed)
					}
				},
				PointerMove: dragTo("translating"),
				PointerUp:   idle,
				KeyDown:     to("idle"),
			}},
			{ID: "pointingSelectedShape", Handlers: Handlers{
				Enter:       s.point,
				PointerMove: dragTo("translating"),
				PointerUp: func(input.PointerEvent) {
					h := t.Host()
					doc := h.Document()
					if h.Inputs().Modifiers.Shift {
						doc.SetSelectedShapes(without(doc.SelectedIDs(), s.pointed)...)
					} else {
						doc.SetSelectedShapes(s.pointed)
					}
					t.Transition("idle", nil)
				},
				KeyDown: to("idle"),
			}},
			{ID: "pointingBoundsBackground", Handlers: Handlers{
				Enter:       s.point,
				PointerMove: dragTo("translating"),
				PointerUp: func(input.PointerEvent) {
					t.Host().Document().SetSelectedShapes()
					t.Transition("idle", nil)
				},
				KeyDown: to("idle"),
			}},
			{ID: "pointingResizeHandle", Handlers: Handlers{
				Enter:       s.point,
				PointerMove: dragTo("resizing"),
				PointerUp:   idle,
				KeyDown:     to("idle"),
			}},
			{ID: "pointingRotateHandle", Handlers: Handlers{
				Enter:       s.point,
				PointerMove: dragTo("rotating"),
				PointerUp:   idle,
				KeyDown:     to("idle"),
			}},
			{ID: "pointingHandle", Handlers: Handlers{
				Enter:       s.point,
				PointerMove: dragTo("translatingHandle"),
				PointerUp:   idle,
				KeyDown:     to("idle"),
			}},
			{ID: "brushing", Handlers: Handlers{
				Enter: func(any) {
					h := t.Host()
					s.initialSelection = nil
					if h.Inputs().Modifiers.Shift {
						s.initialSelection = h.Document().SelectedIDs()
					}
					s.brush()
				},
				Exit:        func() { t.Host().SetBrush(nil) },
				PointerMove: func(input.PointerEvent) { s.brush() },
				PointerUp:   idle,
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Host().Document().SetSelectedShapes(s.initialSelection...)
						t.Transition("idle", nil)
					}
				},
			}},
			{ID: "translating", Handlers: Handlers{
				Enter:       s.startTranslate,
				Exit:        s.endGesture,
				PointerMove: func(input.PointerEvent) { s.translate() },
				PointerUp:   s.commit,
				KeyDown:     s.cancelOnEscape,
			}},
			{ID: "translatingHandle", Handlers: Handlers{
				Enter: func(any) {
					t.Host().Document().Begin("translate handle")
					s.dragHandle()
				},
				Exit:        s.endGesture,
				PointerMove: func(input.PointerEvent) { s.dragHandle() },
				PointerUp:   s.commit,
				KeyDown:     s.cancelOnEscape,
			}},
			{ID: "resizing", Handlers: Handlers{
				Enter:       s.startResize,
				Exit:        s.endGesture,
				PointerMove: func(input.PointerEvent) { s.resize() },
				PointerUp:   s.commit,
				KeyDown:     s.cancelOnEscape,
			}},
			{ID: "rotating", Handlers: Handlers{
				Enter:       s.startRotate,
				Exit:        s.endGesture,
				PointerMove: func(input.PointerEvent) { s.rotate() },
				PointerUp:   s.commit,
				KeyDown:     s.cancelOnEscape,
			}},
			{ID: "editingShape", Handlers: Handlers{
				Enter: s.startEditing,
				Exit:  s.stopEditing,
				PointerDown: func(e input.PointerEvent) {
					if e.Target.Kind == input.TargetShape && e.Target.ShapeID == s.editing {
						return
					}
					t.Transition("idle", nil)
					t.PointerDown(e)
				},
				KeyDown: to("idle"),
			}},
			{ID: "pinching", Handlers: Handlers{
				Enter: func(any) {
					s.startZoom = t.Host().Viewport().Camera().Zoom
				},
				Pinch: func(e input.PinchEvent) {
					v := t.Host().Viewport()
					zoom := v.Camera().Zoom
					if e.Scale > 0 {
						zoom = s.startZoom * e.Scale
					}
					v.PinchZoom(e.ScreenPoint.Sub(e.Delta), e.Delta, zoom)
				},
				PinchEnd: func(input.PinchEvent) { t.Transition("idle", nil) },
			}},
			{ID: "contextMenu", Handlers: Handlers{
				Enter: func(payload any) {
					s.point(payload)
					if s.target.Kind != input.TargetShape {
						return
					}
					doc := t.Host().Document()
					if !doc.CurrentPage().IsSelected(s.pointed) {
						doc.SetSelectedShapes(s.pointed)
					}
				},
				PointerDown: idle,
				KeyDown:     to("idle"),
			}},
		},
	}
}

// point records the target a pointing state was entered with.
func (s *selector) point(payload any) {
	switch p := payload.(type) {
	case input.Target:
		s.target = p
	case input.PointerEvent:
		s.target = p.Target
	default:
		return
	}
	s.pointed = ""
	if s.target.ShapeID != "" {
		s.pointed = outermost(s.t.Host().Document().CurrentPage(), s.target.ShapeID)
	}
}

func (s *selector) pointerDown(e input.PointerEvent) {
	t := s.t
	if e.Button == input.ButtonSecondary {
		t.Transition("contextMenu", e.Target)
		return
	}
	if e.Button != input.ButtonPrimary {
		return
	}
	switch e.Target.Kind {
	case input.TargetShape:
		page := t.Host().Document().CurrentPage()
		if page.IsSelected(outermost(page, e.Target.ShapeID)) {
			t.Transition("pointingSelectedShape", e.Target)
		} else {
			t.Transition("pointingShape", e.Target)
		}
	case input.TargetSelection:
		t.Transition("pointingBoundsBackground", e.Target)
	case input.TargetHandle:
		t.Transition("pointingHandle", e.Target)
	case input.TargetResizeHandle:
		t.Transition("pointingResizeHandle", e.Target)
	case input.TargetRotateHandle:
		t.Transition("pointingRotateHandle", e.Target)
	default:
		t.Transition("pointingCanvas", e.Target)
	}
}

func (s *selector) doubleClick(e input.PointerEvent) {
	t := s.t
	switch e.Target.Kind {
	case input.TargetShape, input.TargetSelection:
		id := e.Target.ShapeID
		doc := t.Host().Document()
		if id == "" {
			sel := doc.SelectedIDs()
			if len(sel) != 1 {
				return
			}
			id = sel[0]
		}
		if sh := doc.Shape(id); sh != nil && sh.Caps().CanEdit {
			t.Transition("editingShape", id)
		}
	case input.TargetCanvas:
		if id, ok := createText(t, e.Point); ok {
			t.Transition("editingShape", id)
		}
	}
}

func (s *selector) keyDown(e input.KeyEvent) {
	doc := s.t.Host().Document()
	switch e.Key {
	case input.KeyDelete, input.KeyBackspace:
		doc.DeleteShapes(doc.SelectedIDs()...)
	case input.KeyEscape:
		doc.SetSelectedShapes()
	case input.KeyEnter:
		sel := doc.SelectedShapes()
		if len(sel) == 1 && sel[0].Caps().CanEdit {
			s.t.Transition("editingShape", sel[0].ID())
		}
	}
}

// brush selects the top-level shapes the brush touches, or with Ctrl only
// those it fully contains, on top of the selection the brush started from.
func (s *selector) brush() {
	h := s.t.Host()
	in := h.Inputs()
	doc := h.Document()
	page := doc.CurrentPage()
	b := geometry.FromPoints(in.OriginPoint, in.CurrentPoint)
	ids := slices.Clone(s.initialSelection)
	for _, sh := range page.Shapes() {
		if sh.Props().ParentID != page.ID || slices.Contains(ids, sh.ID()) {
			continue
		}
		hit := sh.HitTestBounds(b)
		if in.Modifiers.Ctrl {
			hit = sh.ContainedBy(b)
		}
		if hit {
			ids = append(ids, sh.ID())
		}
	}
	doc.SetSelectedShapes(ids...)
	h.SetBrush(&b)
}

func (s *selector) startTranslate(any) {
	doc := s.t.Host().Document()
	doc.Begin("translate")
	s.moving = s.moving[:0]
	for _, sh := range doc.SelectedShapes() {
		if !sh.Props().IsLocked {
			s.moving = append(s.moving, sh.ID())
		}
	}
	s.applied = geometry.Point{}
	s.translate()
}

// translate moves the selection to the pointer offset. Shift keeps the
// move on the dominant axis.
func (s *selector) translate() {
	h := s.t.Host()
	in := h.Inputs()
	off := in.Offset()
	if in.Modifiers.Shift {
		if math.Abs(off.X()) > math.Abs(off.Y()) {
			off[1] = 0
		} else {
			off[0] = 0
		}
	}
	h.Document().MoveShapes(s.moving, off.Sub(s.applied))
	s.applied = off
}

func (s *selector) dragHandle() {
	h := s.t.Host()
	in := h.Inputs()
	dragHandle(h, s.target.ShapeID, s.target.HandleID, in.CurrentPoint, in.Modifiers)
}

func (s *selector) startResize(any) {
	h := s.t.Host()
	doc := h.Document()
	page := doc.CurrentPage()
	sel := doc.SelectedShapes()
	if len(sel) == 0 {
		s.t.Transition("idle", nil)
		return
	}
	doc.Begin("resize")
	s.handle = s.target.Resize
	s.single = len(sel) == 1 && sel[0].Type() != shape.TypeGroup
	if s.single {
		s.bounds = sel[0].Bounds()
	} else {
		bounds := make([]geometry.Bounds, len(sel))
		for i, sh := range sel {
			bounds[i] = sh.RotatedBounds()
		}
		s.bounds = geometry.Common(bounds...)
	}
	s.capture(page, sel)
	s.resize()
}

// capture records the leaf shapes under the selection as they were when
// the gesture started.
func (s *selector) capture(page *document.Page, sel []*shape.Shape) {
	ids := make([]string, len(sel))
	for i, sh := range sel {
		ids[i] = sh.ID()
	}
	s.leaves = s.leaves[:0]
	s.initial = make(map[string]shape.Props)
	s.initialB = make(map[string]geometry.Bounds)
	for _, id := range page.Descendants(ids...) {
		sh := page.Shape(id)
		if sh == nil || sh.Type() == shape.TypeGroup || sh.Props().IsLocked {
			continue
		}
		s.leaves = append(s.leaves, id)
		s.initial[id] = sh.Props()
		s.initialB[id] = sh.Bounds()
	}
}

// resize maps the selection onto the bounds dragged by the handle. Shift,
// or an aspect locked shape, keeps the aspect ratio and Alt resizes about
// the center.
func (s *selector) resize() {
	h := s.t.Host()
	in := h.Inputs()
	doc := h.Document()
	page := doc.CurrentPage()

	lock := in.Modifiers.Shift
	for _, id := range s.leaves {
		if sh := page.Shape(id); sh != nil && sh.IsAspectRatioLocked() {
			lock = true
		}
	}
	delta := in.Offset()
	if in.Modifiers.Alt {
		delta = delta.Mul(2)
	}
	tr := geometry.TransformBounds(s.bounds, s.handle, delta, s.bounds.Rotation, lock)
	next := tr.Bounds
	if in.Modifiers.Alt {
		next = next.Translate(s.bounds.Center().Sub(next.Center()))
	}

	updates := make([]document.Update, 0, len(s.leaves))
	for _, id := range s.leaves {
		sh := page.Shape(id)
		if sh == nil {
			continue
		}
		info := shape.ResizeInfo{Bounds: next, Rotation: next.Rotation, Scale: tr.Scale, Handle: s.handle}
		if !s.single {
			info.Bounds = geometry.ScaleBoundsWithin(s.initialB[id], s.bounds, next, tr.Scale)
			info.Rotation = s.initial[id].Rotation
		}
		updates = append(updates, document.Update{ID: id, Patch: sh.Resize(s.initial[id], info)})
	}
	doc.UpdateShapes(updates...)
}

func (s *selector) startRotate(any) {
	h := s.t.Host()
	doc := h.Document()
	sel := doc.SelectedShapes()
	if len(sel) == 0 {
		s.t.Transition("idle", nil)
		return
	}
	doc.Begin("rotate")
	bounds := make([]geometry.Bounds, len(sel))
	for i, sh := range sel {
		bounds[i] = sh.RotatedBounds()
	}
	s.center = geometry.Common(bounds...).Center()
	s.angle = s.center.Angle(h.Inputs().OriginPoint)
	s.capture(doc.CurrentPage(), sel)
	s.rotate()
}

// rotate turns every leaf about the selection center by the angle the
// pointer swept. Shift snaps to 15 degree steps.
func (s *selector) rotate() {
	h := s.t.Host()
	in := h.Inputs()
	a := s.center.Angle(in.CurrentPoint) - s.angle
	if in.Modifiers.Shift {
		a = geometry.SnapAngle(a, 24)
	}
	updates := make([]document.Update, 0, len(s.leaves))
	for _, id := range s.leaves {
		p := s.initial[id]
		c := s.initialB[id].Center()
		moved := c.RotWith(s.center, a).Sub(c)
		updates = append(updates, document.Update{ID: id, Patch: shape.Patch{
			Point:    shape.Ptr(p.Point.Add(moved)),
			Rotation: shape.Ptr(p.Rotation + a),
		}})
	}
	h.Document().UpdateShapes(updates...)
}

func (s *selector) commit(input.PointerEvent) {
	s.t.Host().Document().Commit()
	s.t.Transition("idle", nil)
}

func (s *selector) cancelOnEscape(e input.KeyEvent) {
	if !isEscape(e) {
		return
	}
	s.t.Host().Document().Cancel()
	s.t.Transition("idle", nil)
}

func (s *selector) endGesture() {
	closeStep(s.t.Host().Document())
}

func (s *selector) startEditing(payload any) {
	var edit Edit
	switch p := payload.(type) {
	case Edit:
		edit = p
	case string:
		edit.ShapeID = p
	}
	id := edit.ShapeID
	doc := s.t.Host().Document()
	sh := doc.Shape(id)
	if sh == nil || !sh.Caps().CanEdit {
		s.t.Transition("idle", nil)
		return
	}
	s.editing, s.created, s.mark = id, edit.Created, edit.Mark
	doc.SetSelectedShapes(id)
	doc.SetEditingShape(id)
}

// stopEditing leaves edit mode. A text shape left empty is removed; when it
// was created for the edit, its steps are dropped from the history too.
func (s *selector) stopEditing() {
	doc := s.t.Host().Document()
	doc.SetEditingShape("")
	if sh := doc.Shape(s.editing); sh != nil && sh.Type() == shape.TypeText && sh.Props().Text == "" {
		if s.created {
			doc.Forget(s.mark, s.editing)
		}
		if doc.Shape(s.editing) != nil {
			doc.DeleteShapes(s.editing)
		}
	}
	s.editing, s.created = "", false
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
}
