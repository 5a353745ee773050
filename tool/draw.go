package tool

import (
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/shape"
)

// DrawTool records a freehand stroke of type typ while the pointer is down.
func DrawTool(typ shape.Type) Factory {
	return func(t *Tool) *State {
		var (
			id     string
			points []geometry.Point
		)
		return &State{
			ID:      string(typ),
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
						p, err := doc.Registry().Defaults(typ)
						if err != nil {
							t.Transition("idle", nil)
							return
						}
						origin := h.Inputs().OriginPoint
						p.Point = origin
						p.Points = []geometry.Point{{0, 0}}
						doc.Begin("draw")
						shapes, err := doc.AddShapes(p)
						if err != nil || len(shapes) == 0 {
							doc.Cancel()
							t.Transition("idle", nil)
							return
						}
						id = shapes[0].ID()
						points = []geometry.Point{origin}
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
						cur := h.Inputs().CurrentPoint
						if id == "" || cur.IsEqual(points[len(points)-1]) {
							return
						}
						points = append(points, cur)
						origin := points[0]
						rel := make([]geometry.Point, len(points))
						for i, p := range points {
							rel[i] = p.Sub(origin)
						}
						h.Document().UpdateShapes(document.Update{ID: id, Patch: shape.Patch{
							Point:  shape.Ptr(origin),
							Points: rel,
						}})
					},
					PointerUp: func(input.PointerEvent) {
						t.Host().Document().Commit()
						id = ""
						done(t)
					},
					KeyDown: func(e input.KeyEvent) {
						if isEscape(e) {
							t.Host().Document().Cancel()
							id = ""
							t.Transition("idle", nil)
						}
					},
				}},
			},
		}
	}
}

// EraseTool deletes every unlocked shape the pointer passes over while it
// is down. Escape restores what the gesture erased.
func EraseTool(t *Tool) *State {
	erase := func(a, b geometry.Point) {
		doc := t.Host().Document()
		var hit []string
		for _, s := range doc.CurrentPage().Shapes() {
			if s.Props().IsLocked || s.Type() == shape.TypeGroup {
				continue
			}
			if s.HitTestPoint(b) || (!a.IsEqual(b) && s.HitTestLineSegment(a, b)) {
				hit = append(hit, s.ID())
			}
		}
		if len(hit) > 0 {
			doc.DeleteShapes(hit...)
		}
	}
	return &State{
		ID:      Erase,
		Initial: "idle",
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: func(e input.PointerEvent) {
					if e.Button == input.ButtonPrimary {
						t.Transition("erasing", e)
					}
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Host().SelectTool(Select, nil)
					}
				},
			}},
			{ID: "erasing", Handlers: Handlers{
				Enter: func(any) {
					h := t.Host()
					h.Document().Begin("erase")
					p := h.Inputs().OriginPoint
					erase(p, p)
				},
				Exit: func() {
					closeStep(t.Host().Document())
				},
				PointerMove: func(input.PointerEvent) {
					in := t.Host().Inputs()
					erase(in.PreviousPoint, in.CurrentPoint)
				},
				PointerUp: func(input.PointerEvent) {
					t.Host().Document().Commit()
					t.Transition("idle", nil)
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Host().Document().Cancel()
						t.Transition("idle", nil)
					}
				},
			}},
		},
	}
}

// MoveTool pans the camera while the pointer is down.
func MoveTool(t *Tool) *State {
	return &State{
		ID:      Move,
		Initial: "idle",
		Children: []*State{
			{ID: "idle", Handlers: Handlers{
				PointerDown: func(input.PointerEvent) {
					t.Transition("panning", nil)
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Host().SelectTool(Select, nil)
					}
				},
			}},
			{ID: "panning", Handlers: Handlers{
				PointerMove: func(input.PointerEvent) {
					in := t.Host().Inputs()
					t.Host().Viewport().Pan(in.CurrentScreenPoint.Sub(in.PreviousScreenPoint))
				},
				PointerUp: func(input.PointerEvent) {
					t.Transition("idle", nil)
				},
				KeyDown: func(e input.KeyEvent) {
					if isEscape(e) {
						t.Transition("idle", nil)
					}
				},
			}},
		},
	}
}
