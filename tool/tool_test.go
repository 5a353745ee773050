package tool

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/camera"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/internal/logger"
	"whiteboard/shape"
)

type testHost struct {
	doc      *document.Document
	in       *input.Inputs
	vp       *camera.Viewport
	settings Settings
	tools    map[string]*Tool
	current  *Tool
	brush    *geometry.Bounds
}

func newHost(t *testing.T) *testHost {
	t.Helper()
	h := &testHost{
		doc:      document.New(shape.DefaultRegistry()),
		in:       input.New(),
		vp:       camera.New(camera.DefaultOptions()),
		settings: DefaultSettings(),
		tools:    make(map[string]*Tool),
	}
	reg := DefaultRegistry()
	for _, id := range reg.IDs() {
		f, ok := reg.Get(id)
		require.True(t, ok)
		h.tools[id] = New(id, h, f)
	}
	h.SelectTool(Select, nil)
	return h
}

func (h *testHost) Document() *document.Document { return h.doc }
func (h *testHost) Inputs() *input.Inputs          { return h.in }
func (h *testHost) Viewport() *camera.Viewport     { return h.vp }
func (h *testHost) Settings() Settings             { return h.settings }
func (h *testHost) Logger() *logger.Logger         { return logger.Discard() }
func (h *testHost) SetBrush(b *geometry.Bounds)    { h.brush = b }

func (h *testHost) SelectTool(id string, payload any) {
	if h.current != nil {
		h.current.Deactivate()
	}
	h.current = h.tools[id]
	h.current.Activate(payload)
}

func pointer(x, y float64, target input.Target, mods input.Modifiers) input.PointerEvent {
	p := geometry.Pt(x, y)
	return input.PointerEvent{Target: target, ScreenPoint: p, Point: p, Modifiers: mods}
}

func (h *testHost) down(x, y float64, target input.Target, mods ...input.Modifiers) {
	e := pointer(x, y, target, firstOf(mods))
	h.in.PointerDown(e)
	h.current.PointerDown(e)
}

func (h *testHost) move(x, y float64, mods ...input.Modifiers) {
	e := pointer(x, y, input.Target{}, firstOf(mods))
	h.in.PointerMove(e)
	h.current.PointerMove(e)
}

func (h *testHost) up(mods ...input.Modifiers) {
	e := pointer(h.in.CurrentPoint.X(), h.in.CurrentPoint.Y(), input.Target{}, firstOf(mods))
	h.in.PointerUp(e)
	h.current.PointerUp(e)
}

func (h *testHost) key(k string) {
	e := input.KeyEvent{Key: k}
	h.in.KeyDown(e)
	h.current.KeyDown(e)
	h.in.KeyUp(e)
	h.current.KeyUp(e)
}

func firstOf(mods []input.Modifiers) input.Modifiers {
	if len(mods) == 0 {
		return input.Modifiers{}
	}
	return mods[0]
}

func (h *testHost) addBox(t *testing.T, x, y, w, hh float64) string {
	t.Helper()
	shapes, err := h.doc.AddShapes(shape.Props{
		Type:  shape.TypeBox,
		Point: geometry.Pt(x, y),
		Size:  geometry.Pt(w, hh),
	})
	require.NoError(t, err)
	return shapes[0].ID()
}

func onShape(id string) input.Target {
	return input.Target{Kind: input.TargetShape, ShapeID: id}
}

var canvas = input.Target{Kind: input.TargetCanvas}

func TestTransitionExitsAndEntersInOrder(t *testing.T) {
	var log []string
	state := func(id, initial string, children ...*State) *State {
		return &State{
			ID:      id,
			Initial: initial,
			Handlers: Handlers{
				Enter: func(p any) { log = append(log, fmt.Sprintf("enter %s %v", id, p)) },
				Exit:  func() { log = append(log, "exit "+id) },
			},
			Children: children,
		}
	}
	m := New("test", nil, func(*Tool) *State {
		return state("root", "a", state("a", ""), state("b", "b1", state("b1", "")))
	})

	m.Activate(nil)
	assert.Equal(t, []string{"root", "a"}, m.Path())
	assert.Equal(t, []string{"enter root <nil>", "enter a <nil>"}, log)

	log = nil
	require.True(t, m.Transition("b1", 7))
	assert.Equal(t, []string{"root", "b", "b1"}, m.Path())
	assert.Equal(t, []string{"exit a", "enter b <nil>", "enter b1 7"}, log)

	log = nil
	require.True(t, m.Transition("b", nil))
	assert.Equal(t, []string{"exit b1", "exit b", "enter b <nil>", "enter b1 <nil>"}, log)

	assert.False(t, m.Transition("missing", nil))
	assert.Equal(t, "b1", m.State())

	log = nil
	m.Deactivate()
	assert.Equal(t, []string{"exit b1", "exit b", "exit root"}, log)
	assert.False(t, m.Active())
}

func TestDispatchStopsAfterTransition(t *testing.T) {
	var calls []string
	m := New("test", nil, func(tt *Tool) *State {
		return &State{
			ID:      "root",
			Initial: "a",
			Handlers: Handlers{PointerDown: func(input.PointerEvent) {
				calls = append(calls, "root")
				tt.Transition("b", nil)
			}},
			Children: []*State{
				{ID: "a", Handlers: Handlers{PointerDown: func(input.PointerEvent) { calls = append(calls, "a") }}},
				{ID: "b", Handlers: Handlers{PointerDown: func(input.PointerEvent) { calls = append(calls, "b") }}},
			},
		}
	})
	m.Activate(nil)
	m.PointerDown(input.PointerEvent{})
	assert.Equal(t, []string{"root"}, calls)
	assert.Equal(t, "b", m.State())
}

func TestGraphListsEveryTool(t *testing.T) {
	nodes := DefaultRegistry().Graph()
	tools := map[string]bool{}
	selectStates := map[string]bool{}
	for _, n := range nodes {
		if n.Parent == "" {
			tools[n.Tool] = true
		}
		if n.Tool == Select && n.Parent == Select {
			selectStates[n.State] = true
		}
	}
	assert.Len(t, tools, 14)
	for _, id := range []string{
		"idle", "pointingCanvas", "pointingShape", "pointingSelectedShape",
		"pointingBoundsBackground", "pointingResizeHandle", "pointingRotateHandle",
		"pointingHandle", "brushing", "translating", "translatingHandle", "resizing",
		"rotating", "editingShape", "pinching", "contextMenu",
	} {
		assert.True(t, selectStates[id], id)
	}
}

func TestDotToolScenario(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Dot, nil)
	h.down(100, 100, canvas)

	shapes := h.doc.CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	b := shapes[0].Bounds()
	assert.Equal(t, geometry.Pt(96, 96), b.Min())
	assert.True(t, b.Center().IsEqual(geometry.Pt(100, 100)))

	h.up()
	assert.Equal(t, Select, h.current.ID())
	assert.Equal(t, []string{shapes[0].ID()}, h.doc.SelectedIDs())
}

func TestBoxToolScenario(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Box, nil)
	h.down(100, 100, canvas)
	h.move(200, 150)

	shapes := h.doc.CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	b := shapes[0].Bounds()
	assert.Equal(t, 100.0, b.MinX)
	assert.Equal(t, 100.0, b.MinY)
	assert.Equal(t, 200.0, b.MaxX)
	assert.Equal(t, 150.0, b.MaxY)
	assert.Equal(t, 100.0, b.Width)
	assert.Equal(t, 50.0, b.Height)

	h.up()
	assert.Equal(t, Select, h.current.ID())
	require.True(t, h.doc.Undo())
	assert.Zero(t, h.doc.CurrentPage().Len())
}

func TestBoxToolClickUsesDefaultSize(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Box, nil)
	h.down(100, 100, canvas)
	h.up()
	shapes := h.doc.CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	assert.True(t, shapes[0].Center().IsEqual(geometry.Pt(100, 100)))
	assert.Greater(t, shapes[0].Bounds().Width, 1.0)
}

func TestShiftLocksAspectOnCreate(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Ellipse, nil)
	shift := input.Modifiers{Shift: true}
	h.down(0, 0, canvas, shift)
	h.move(100, 40, shift)
	b := h.doc.CurrentPage().Shapes()[0].Bounds()
	assert.Equal(t, b.Width, b.Height)
}

func TestEscapeCancelsCreation(t *testing.T) {
	for _, id := range []string{Box, Ellipse, Dot, Line, Polygon, Pencil, Highlighter, Portal, YouTube} {
		t.Run(id, func(t *testing.T) {
			h := newHost(t)
			h.addBox(t, 500, 500, 10, 10)
			h.SelectTool(id, nil)
			h.down(100, 100, canvas)
			h.move(200, 150)
			h.key(input.KeyEscape)

			assert.Equal(t, 1, h.doc.CurrentPage().Len())
			assert.Equal(t, id, h.current.ID())
			assert.Equal(t, "idle", h.current.State())
			assert.False(t, h.doc.InProgress())
		})
	}
}

func TestLockedToolStaysActive(t *testing.T) {
	h := newHost(t)
	h.settings.ToolLocked = true
	h.SelectTool(Box, nil)
	h.down(0, 0, canvas)
	h.move(50, 50)
	h.up()
	assert.Equal(t, Box, h.current.ID())
	assert.Equal(t, "idle", h.current.State())
}

func TestDeadZone(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.down(50, 50, onShape(id))
	assert.Equal(t, "pointingShape", h.current.State())

	h.move(53, 53)
	assert.Equal(t, "pointingShape", h.current.State())

	h.move(60, 60)
	assert.Equal(t, "translating", h.current.State())
}

func TestClickSelectsAndCanvasClears(t *testing.T) {
	h := newHost(t)
	a := h.addBox(t, 0, 0, 100, 100)
	b := h.addBox(t, 200, 0, 100, 100)

	h.down(50, 50, onShape(a))
	h.up()
	assert.Equal(t, []string{a}, h.doc.SelectedIDs())

	h.down(250, 50, onShape(b), input.Modifiers{Shift: true})
	h.up()
	assert.ElementsMatch(t, []string{a, b}, h.doc.SelectedIDs())

	h.down(250, 50, onShape(b), input.Modifiers{Shift: true})
	h.up(input.Modifiers{Shift: true})
	assert.Equal(t, []string{a}, h.doc.SelectedIDs())

	h.down(500, 500, canvas)
	h.up()
	assert.Empty(t, h.doc.SelectedIDs())
	assert.Equal(t, "idle", h.current.State())
}

func TestTranslateIsOneUndoStep(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.doc.ClearHistory()

	h.down(50, 50, onShape(id))
	h.move(60, 60)
	h.move(80, 70)
	assert.Equal(t, geometry.Pt(30, 20), h.doc.Shape(id).Props().Point)
	h.up()

	require.True(t, h.doc.Undo())
	assert.Equal(t, geometry.Pt(0, 0), h.doc.Shape(id).Props().Point)
	assert.False(t, h.doc.CanUndo())
}

func TestEscapeCancelsTranslate(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.down(50, 50, onShape(id))
	h.move(90, 90)
	h.key(input.KeyEscape)
	assert.Equal(t, geometry.Pt(0, 0), h.doc.Shape(id).Props().Point)
	assert.Equal(t, "idle", h.current.State())
}

func TestBrushSelects(t *testing.T) {
	h := newHost(t)
	a := h.addBox(t, 0, 0, 100, 100)
	h.addBox(t, 200, 0, 100, 100)

	h.down(-10, -10, canvas)
	h.move(50, 50)
	assert.Equal(t, "brushing", h.current.State())
	assert.NotNil(t, h.brush)
	assert.Equal(t, []string{a}, h.doc.SelectedIDs())
	h.up()
	assert.Nil(t, h.brush)

	ctrl := input.Modifiers{Ctrl: true}
	h.down(-10, -10, canvas, ctrl)
	h.move(50, 50, ctrl)
	assert.Empty(t, h.doc.SelectedIDs())
	h.move(150, 150, ctrl)
	assert.Equal(t, []string{a}, h.doc.SelectedIDs())
	h.up(ctrl)
}

func TestResizeHandle(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.doc.SetSelectedShapes(id)

	h.down(100, 100, input.Target{Kind: input.TargetResizeHandle, Resize: geometry.HandleBottomRight})
	h.move(150, 120)
	assert.Equal(t, "resizing", h.current.State())
	b := h.doc.Shape(id).Bounds()
	assert.Equal(t, geometry.Pt(0, 0), b.Min())
	assert.Equal(t, geometry.Pt(150, 120), b.Size())

	h.move(150, 120, input.Modifiers{Shift: true})
	b = h.doc.Shape(id).Bounds()
	assert.InDelta(t, b.Width, b.Height, 1e-9)

	h.key(input.KeyEscape)
	assert.Equal(t, geometry.Pt(100, 100), h.doc.Shape(id).Bounds().Size())
}

func TestResizeFromCenterWithAlt(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.doc.SetSelectedShapes(id)
	alt := input.Modifiers{Alt: true}
	h.down(100, 50, input.Target{Kind: input.TargetResizeHandle, Resize: geometry.HandleRight}, alt)
	h.move(110, 50, alt)
	b := h.doc.Shape(id).Bounds()
	assert.InDelta(t, -10, b.MinX, 1e-9)
	assert.InDelta(t, 110, b.MaxX, 1e-9)
}

func TestRotateHandle(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.doc.SetSelectedShapes(id)

	h.down(50, -30, input.Target{Kind: input.TargetRotateHandle})
	h.move(130, 50)
	assert.Equal(t, "rotating", h.current.State())
	p := h.doc.Shape(id).Props()
	assert.InDelta(t, math.Pi/2, p.Rotation, 1e-9)
	assert.True(t, p.Point.IsEqual(geometry.Pt(0, 0)))
	h.up()
	assert.Equal(t, "idle", h.current.State())
}

func createLine(t *testing.T, h *testHost, from, to geometry.Point, target input.Target, mods ...input.Modifiers) *shape.Shape {
	t.Helper()
	h.SelectTool(Line, nil)
	h.down(from.X(), from.Y(), target, mods...)
	h.move(to.X(), to.Y(), mods...)
	h.up(mods...)
	for _, s := range h.doc.CurrentPage().Shapes() {
		if s.Type() == shape.TypeLine {
			return s
		}
	}
	require.Fail(t, "no line created")
	return nil
}

func TestLineRejectsDegenerateHandleDrag(t *testing.T) {
	h := newHost(t)
	line := createLine(t, h, geometry.Pt(100, 100), geometry.Pt(200, 150), canvas)
	before := line.Props().Handles
	end, _ := line.Props().Handle(shape.HandleEnd)
	start, _ := line.Props().Handle(shape.HandleStart)
	assert.Equal(t, geometry.Pt(200, 150), end)

	h.down(end.X(), end.Y(), input.Target{Kind: input.TargetHandle, ShapeID: line.ID(), HandleID: shape.HandleEnd})
	h.move(start.X(), start.Y())
	assert.Equal(t, "translatingHandle", h.current.State())
	h.up()

	after := h.doc.Shape(line.ID()).Props()
	assert.Equal(t, before, after.Handles)
	for _, hd := range after.Handles {
		assert.True(t, hd.Point.IsFinite())
	}
}

func TestLineClickCreatesNothing(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Line, nil)
	h.down(10, 10, canvas)
	h.up()
	assert.Zero(t, h.doc.CurrentPage().Len())
	assert.Equal(t, Select, h.current.ID())
}

func TestLineBindsToShapeUnderEnd(t *testing.T) {
	h := newHost(t)
	box := h.addBox(t, 300, 0, 100, 100)
	line := createLine(t, h, geometry.Pt(0, 50), geometry.Pt(350, 50), canvas)

	bindings := h.doc.CurrentPage().BindingsFrom(line.ID())
	require.Len(t, bindings, 1)
	assert.Equal(t, box, bindings[0].ToID)
	assert.Equal(t, shape.HandleEnd, bindings[0].HandleID)

	end, _ := h.doc.Shape(line.ID()).Props().Handle(shape.HandleEnd)
	assert.InDelta(t, 300-shape.BindingDistance, end.X(), 1e-6)
	assert.InDelta(t, 50, end.Y(), 1e-6)
}

func TestLineCtrlDisablesBinding(t *testing.T) {
	h := newHost(t)
	h.addBox(t, 300, 0, 100, 100)
	ctrl := input.Modifiers{Ctrl: true}
	line := createLine(t, h, geometry.Pt(0, 50), geometry.Pt(350, 50), canvas, ctrl)
	assert.Empty(t, h.doc.CurrentPage().BindingsFrom(line.ID()))
}

func TestLineBindsBothEnds(t *testing.T) {
	h := newHost(t)
	a := h.addBox(t, 0, 0, 100, 100)
	b := h.addBox(t, 300, 0, 100, 100)
	line := createLine(t, h, geometry.Pt(50, 50), geometry.Pt(350, 50), onShape(a))

	to := map[string]string{}
	for _, bd := range h.doc.CurrentPage().BindingsFrom(line.ID()) {
		to[bd.HandleID] = bd.ToID
	}
	assert.Equal(t, map[string]string{shape.HandleStart: a, shape.HandleEnd: b}, to)
}

func TestEditingText(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Text, nil)
	h.down(10, 10, canvas)
	assert.Equal(t, Select, h.current.ID())
	assert.Equal(t, "editingShape", h.current.State())
	id := h.doc.Session().EditingID
	require.NotEmpty(t, id)

	h.doc.UpdateShapes(document.Update{ID: id, Patch: shape.Patch{Text: shape.Ptr("hello")}})
	h.key(input.KeyEscape)
	assert.Equal(t, "idle", h.current.State())
	assert.Empty(t, h.doc.Session().EditingID)
	assert.NotNil(t, h.doc.Shape(id))
}

func TestEmptyTextIsRemovedAfterEditing(t *testing.T) {
	h := newHost(t)
	box := h.addBox(t, 100, 100, 10, 10)
	steps := h.doc.Steps()

	h.SelectTool(Text, nil)
	h.down(10, 10, canvas)
	require.Equal(t, 2, h.doc.CurrentPage().Len())
	id := h.doc.Session().EditingID
	h.doc.UpdateShapes(document.Update{ID: id, Patch: shape.Patch{Text: shape.Ptr("x")}})
	h.doc.UpdateShapes(document.Update{ID: id, Patch: shape.Patch{Text: shape.Ptr("")}})
	h.key(input.KeyEscape)

	assert.Equal(t, []string{box}, h.doc.CurrentPage().Order())
	assert.Equal(t, steps, h.doc.Steps(), "an abandoned text leaves no history")
	require.True(t, h.doc.Undo())
	assert.Zero(t, h.doc.CurrentPage().Len())
}

func TestClearingExistingTextDeletesIt(t *testing.T) {
	h := newHost(t)
	shapes, err := h.doc.AddShapes(shape.Props{Type: shape.TypeText, Text: "hi", Point: geometry.Pt(50, 50)})
	require.NoError(t, err)
	id := shapes[0].ID()
	h.current.DoubleClick(pointer(55, 55, onShape(id), input.Modifiers{}))
	require.Equal(t, "editingShape", h.current.State())

	h.doc.UpdateShapes(document.Update{ID: id, Patch: shape.Patch{Text: shape.Ptr("")}})
	h.key(input.KeyEscape)
	assert.Nil(t, h.doc.Shape(id))

	require.True(t, h.doc.Undo())
	require.NotNil(t, h.doc.Shape(id))
	assert.Empty(t, h.doc.Shape(id).Props().Text)
	require.True(t, h.doc.Undo())
	assert.Equal(t, "hi", h.doc.Shape(id).Props().Text)
}

func TestDoubleClickEditsEditableShape(t *testing.T) {
	h := newHost(t)
	stroke, err := h.doc.AddShapes(shape.Props{
		Type:   shape.TypePencil,
		Points: []geometry.Point{{0, 0}, {10, 10}},
	})
	require.NoError(t, err)
	h.current.DoubleClick(pointer(5, 5, onShape(stroke[0].ID()), input.Modifiers{}))
	assert.Equal(t, "idle", h.current.State())

	shapes, err := h.doc.AddShapes(shape.Props{Type: shape.TypeText, Text: "hi", Point: geometry.Pt(50, 50)})
	require.NoError(t, err)
	h.current.DoubleClick(pointer(55, 55, onShape(shapes[0].ID()), input.Modifiers{}))
	assert.Equal(t, "editingShape", h.current.State())
	assert.Equal(t, shapes[0].ID(), h.doc.Session().EditingID)
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 10, 10)
	h.doc.SetSelectedShapes(id)
	h.key(input.KeyDelete)
	assert.Nil(t, h.doc.Shape(id))
}

func TestEraseAndRestore(t *testing.T) {
	h := newHost(t)
	a := h.addBox(t, 0, 0, 100, 100)
	b := h.addBox(t, 200, 0, 100, 100)
	h.SelectTool(Erase, nil)

	h.down(50, 50, canvas)
	assert.Nil(t, h.doc.Shape(a))
	h.move(250, 50)
	assert.Nil(t, h.doc.Shape(b))

	h.key(input.KeyEscape)
	assert.NotNil(t, h.doc.Shape(a))
	assert.NotNil(t, h.doc.Shape(b))
	assert.Equal(t, Erase, h.current.ID())
}

func TestPencilRecordsStroke(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Pencil, nil)
	h.down(10, 10, canvas)
	h.move(20, 20)
	h.move(30, 0)
	h.up()

	shapes := h.doc.CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	p := shapes[0].Props()
	assert.Equal(t, geometry.Pt(10, 0), p.Point)
	assert.Equal(t, []geometry.Point{{0, 10}, {10, 20}, {20, 0}}, p.Points)
}

func TestImageToolNeedsAsset(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Image, nil)
	assert.Equal(t, Select, h.current.ID())

	assets := h.doc.AddAssets(document.Asset{Type: "image", Src: "data:", Size: geometry.Pt(40, 20)})
	require.Len(t, assets, 1)
	h.SelectTool(Image, nil)
	require.Equal(t, Image, h.current.ID())
	h.down(100, 100, canvas)
	h.up()

	shapes := h.doc.CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, assets[0].ID, shapes[0].Props().AssetID)
	assert.Equal(t, geometry.Pt(40, 20), shapes[0].Props().Size)
}

func TestMoveToolPans(t *testing.T) {
	h := newHost(t)
	h.SelectTool(Move, nil)
	h.down(0, 0, canvas)
	h.move(10, 5)
	h.up()
	assert.Equal(t, geometry.Pt(10, 5), h.vp.Camera().Point)
}

func TestPinchPreemptsPointing(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	h.down(50, 50, onShape(id))
	require.Equal(t, "pointingShape", h.current.State())

	h.current.PinchStart(input.PinchEvent{ScreenPoint: geometry.Pt(50, 50), Scale: 1})
	assert.Equal(t, "pinching", h.current.State())
	h.current.Pinch(input.PinchEvent{ScreenPoint: geometry.Pt(50, 50), Scale: 2})
	assert.Equal(t, 2.0, h.vp.Camera().Zoom)
	h.current.PinchEnd(input.PinchEvent{})
	assert.Equal(t, "idle", h.current.State())
}

func TestContextMenuSelectsTarget(t *testing.T) {
	h := newHost(t)
	id := h.addBox(t, 0, 0, 100, 100)
	e := pointer(50, 50, onShape(id), input.Modifiers{})
	e.Button = input.ButtonSecondary
	h.in.PointerDown(e)
	h.current.PointerDown(e)
	assert.Equal(t, "contextMenu", h.current.State())
	assert.Equal(t, []string{id}, h.doc.SelectedIDs())
	h.key(input.KeyEscape)
	assert.Equal(t, "idle", h.current.State())
}
