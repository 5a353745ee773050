package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/geometry"
	"whiteboard/shape"
)

func newDoc(t *testing.T, opts ...Option) *Document {
	t.Helper()
	return New(shape.DefaultRegistry(), opts...)
}

func addBox(t *testing.T, d *Document, x, y, w, h float64) string {
	t.Helper()
	shapes, err := d.AddShapes(shape.Props{
		Type:  shape.TypeBox,
		Point: geometry.Pt(x, y),
		Size:  geometry.Pt(w, h),
	})
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	return shapes[0].ID()
}

func connect(t *testing.T, d *Document, from, to string) *shape.Connector {
	t.Helper()
	c := shape.NewLineBinding(d.Registry(), d.Shape(from), d.Shape(to))
	require.NotNil(t, c)
	_, err := d.AddShapes(c.Line)
	require.NoError(t, err)
	d.AddBindings(c.Bindings[:]...)
	return c
}

func TestAddShapesAppendsOnTop(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 0, 0, 10, 10)
	assert.Equal(t, []string{a, b}, d.CurrentPage().Order())
	assert.Equal(t, d.CurrentPageID(), d.Shape(a).Props().ParentID)
}

func TestAddShapesUnknownTypeAddsNothing(t *testing.T) {
	d := newDoc(t)
	_, err := d.AddShapes(
		shape.Props{Type: shape.TypeBox},
		shape.Props{Type: "cloud"},
	)
	assert.ErrorIs(t, err, shape.ErrUnknownType)
	assert.Zero(t, d.CurrentPage().Len())
}

func TestStaleIDsAreNoOps(t *testing.T) {
	d := newDoc(t)
	assert.NotPanics(t, func() {
		d.UpdateShapes(Update{ID: "missing", Patch: shape.Patch{Point: shape.Ptr(geometry.Pt(1, 1))}})
		d.DeleteShapes("missing")
		d.BringToFront("missing")
		d.FlipHorizontal("missing")
	})
	d.SetSelectedShapes("missing")
	assert.Empty(t, d.SelectedIDs())
	assert.False(t, d.CanUndo())
}

func TestDeleteCascadesToBindings(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 300, 0, 100, 100)
	c := connect(t, d, a, b)
	require.Len(t, d.CurrentPage().Bindings(), 2)

	d.SetSelectedShapes(b, c.Line.ID)
	d.DeleteShapes(b)

	p := d.CurrentPage()
	for _, bnd := range p.Bindings() {
		assert.NotEqual(t, b, bnd.ToID)
		assert.NotEqual(t, b, bnd.FromID)
	}
	assert.Len(t, p.Bindings(), 1)
	assert.Equal(t, []string{c.Line.ID}, d.SelectedIDs())
	assert.Empty(t, d.Shape(c.Line.ID).Props().Handles[shape.HandleEnd].BindingID)
}

func TestDeleteClearsSession(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	d.SetHoveredShape(a)
	d.SetEditingShape(a)
	d.SetActivatedShapes(a)
	d.DeleteShapes(a)
	assert.Equal(t, Session{ActivatedIDs: []string{}}, d.Session())
}

func TestBoundLineFollowsTarget(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 300, 0, 100, 100)
	c := connect(t, d, a, b)

	d.MoveShapes([]string{b}, geometry.Pt(0, 200))

	end, ok := d.Shape(c.Line.ID).Props().Handle(shape.HandleEnd)
	require.True(t, ok)
	target := d.Shape(b).Bounds().Expand(shape.BindingDistance)
	assert.True(t, target.ContainsPoint(end), "end %v outside %v", end, target)
	assert.Greater(t, end[1], 100.0)
}

func TestMovingLineAloneDropsBindings(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 300, 0, 100, 100)
	c := connect(t, d, a, b)

	d.MoveShapes([]string{c.Line.ID}, geometry.Pt(0, 500))
	assert.Empty(t, d.CurrentPage().Bindings())
}

func TestSendToBack(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 10, 10, 100, 100)
	c := addBox(t, d, 20, 20, 100, 100)

	d.SendToBack(c)
	assert.Equal(t, []string{c, a, b}, d.CurrentPage().Order())

	d.BringToFront(c)
	assert.Equal(t, []string{a, b, c}, d.CurrentPage().Order())
}

func TestBringForwardSkipsNonOverlapping(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	far := addBox(t, d, 500, 500, 10, 10)
	b := addBox(t, d, 5, 5, 10, 10)

	d.BringForward(a)
	assert.Equal(t, []string{far, b, a}, d.CurrentPage().Order())

	d.SendBackward(a)
	assert.Equal(t, []string{far, a, b}, d.CurrentPage().Order())
}

func TestBringForwardFallsBackToNextShape(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 500, 500, 10, 10)
	c := addBox(t, d, 900, 900, 10, 10)

	d.BringForward(a)
	assert.Equal(t, []string{b, a, c}, d.CurrentPage().Order())
}

func TestFlipSkipsTextButKeepsSelection(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	shapes, err := d.AddShapes(shape.Props{Type: shape.TypeText, Point: geometry.Pt(300, 0), Text: "hi"})
	require.NoError(t, err)
	txt := shapes[0].ID()
	before := d.Shape(txt).Props().Point

	d.SetSelectedShapes(a, txt)
	d.FlipHorizontal(a, txt)

	assert.Equal(t, before, d.Shape(txt).Props().Point)
	assert.Greater(t, d.Shape(a).Props().Point[0], 200.0)
	assert.ElementsMatch(t, []string{a, txt}, d.SelectedIDs())
}

func TestFlipVerticalMirrorsPositions(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 0, 90, 10, 10)
	d.FlipVertical(a, b)
	assert.Equal(t, geometry.Pt(0, 90), d.Shape(a).Props().Point)
	assert.Equal(t, geometry.Pt(0, 0), d.Shape(b).Props().Point)
}

func TestUndoRedo(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	d.UpdateShapes(Update{ID: a, Patch: shape.Patch{Point: shape.Ptr(geometry.Pt(50, 50))}})

	require.True(t, d.Undo())
	assert.Equal(t, geometry.Pt(0, 0), d.Shape(a).Props().Point)
	require.True(t, d.Undo())
	assert.Nil(t, d.Shape(a))
	assert.False(t, d.Undo())

	require.True(t, d.Redo())
	require.True(t, d.Redo())
	assert.Equal(t, geometry.Pt(50, 50), d.Shape(a).Props().Point)
	assert.False(t, d.Redo())
}

func TestUndoRestoresDeletedBindings(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 300, 0, 100, 100)
	connect(t, d, a, b)
	before := d.Serialize()

	d.DeleteShapes(b)
	require.True(t, d.Undo())
	assert.Equal(t, before, d.Serialize())
}

func TestGestureIsOneUndoStep(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)

	d.Begin("drag")
	for i := 1; i <= 5; i++ {
		d.MoveShapes([]string{a}, geometry.Pt(1, 0))
	}
	d.Commit()

	assert.Equal(t, geometry.Pt(5, 0), d.Shape(a).Props().Point)
	d.Undo()
	assert.Equal(t, geometry.Pt(0, 0), d.Shape(a).Props().Point)
}

func TestCancelRevertsPendingStep(t *testing.T) {
	d := newDoc(t)
	d.Begin("create")
	addBox(t, d, 0, 0, 10, 10)
	require.Equal(t, 1, d.CurrentPage().Len())
	d.Cancel()

	assert.Zero(t, d.CurrentPage().Len())
	assert.False(t, d.CanUndo())
	assert.False(t, d.InProgress())
}

func TestSelectionAloneIsNotUndoable(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	d.ClearHistory()
	d.SetSelectedShapes(a)
	assert.False(t, d.CanUndo())
}

func TestHistoryLimit(t *testing.T) {
	d := newDoc(t, WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		addBox(t, d, 0, 0, 10, 10)
	}
	assert.True(t, d.Undo())
	assert.True(t, d.Undo())
	assert.False(t, d.Undo())
	assert.Equal(t, 3, d.CurrentPage().Len())
}

func TestGroupBoundsFollowChildren(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 90, 90, 10, 10)

	g, err := d.GroupShapes(a, b)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []string{g.ID()}, d.SelectedIDs())
	assert.True(t, g.Bounds().IsEqual(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(100, 100))))
	assert.Equal(t, 0, d.CurrentPage().Index(g.ID()))

	d.MoveShapes([]string{b}, geometry.Pt(100, 0))
	assert.InDelta(t, 200, d.Shape(g.ID()).Bounds().Width, 1e-9)

	d.DeleteShapes(a)
	require.NotNil(t, d.Shape(g.ID()))
	d.DeleteShapes(b)
	assert.Nil(t, d.Shape(g.ID()))
}

func TestDeleteGroupDeletesChildren(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 90, 90, 10, 10)
	g, err := d.GroupShapes(a, b)
	require.NoError(t, err)

	d.DeleteShapes(g.ID())
	assert.Zero(t, d.CurrentPage().Len())
}

func TestUngroup(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 10, 10)
	b := addBox(t, d, 90, 90, 10, 10)
	g, err := d.GroupShapes(a, b)
	require.NoError(t, err)

	d.Ungroup(g.ID())
	assert.Nil(t, d.Shape(g.ID()))
	assert.Equal(t, d.CurrentPageID(), d.Shape(a).Props().ParentID)
	assert.ElementsMatch(t, []string{a, b}, d.SelectedIDs())
}

func TestSerializeRoundTrip(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 300, 0, 100, 100)
	connect(t, d, a, b)
	_, err := d.AddShapes(
		shape.Props{Type: shape.TypeEllipse, Point: geometry.Pt(5, 400), Rotation: 0.5},
		shape.Props{Type: shape.TypePencil, Points: []geometry.Point{{0, 0}, {10, 4}}},
		shape.Props{Type: shape.TypeImage, AssetID: "img"},
	)
	require.NoError(t, err)
	d.AddAssets(Asset{ID: "img", Type: "image", Src: "data:image/png;base64,AA==", Size: geometry.Pt(20, 10)})
	d.SetSelectedShapes(a)
	d.AddPage("Second")

	first := d.Serialize()
	raw, err := json.Marshal(first)
	require.NoError(t, err)

	var m Model
	require.NoError(t, json.Unmarshal(raw, &m))
	other := newDoc(t)
	require.NoError(t, other.Load(m))
	assert.Equal(t, first, other.Serialize())

	again, err := json.Marshal(other.Serialize())
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestLoadDropsDanglingReferences(t *testing.T) {
	d := newDoc(t)
	err := d.Load(Model{
		CurrentPageID: "p1",
		SelectedIDs:   []string{"a", "ghost"},
		Pages: []PageModel{{
			ID:     "p1",
			Name:   "One",
			Shapes: []shape.Props{{ID: "a", Type: shape.TypeBox}},
			Bindings: []shape.Binding{
				{ID: "b1", FromID: "line", ToID: "a", HandleID: shape.HandleStart},
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, d.SelectedIDs())
	assert.Empty(t, d.CurrentPage().Bindings())
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	d := newDoc(t)
	before := d.Serialize()
	assert.ErrorIs(t, d.Load(Model{}), ErrInvalidModel)
	err := d.Load(Model{Pages: []PageModel{{ID: "p", Shapes: []shape.Props{{Type: "cloud"}}}}})
	assert.ErrorIs(t, err, shape.ErrUnknownType)
	assert.Equal(t, before, d.Serialize())
}

func TestChangeStream(t *testing.T) {
	d := newDoc(t)
	var kinds []ChangeKind
	stop := d.OnChange(func(c Change) { kinds = append(kinds, c.Kind) })

	a := addBox(t, d, 0, 0, 10, 10)
	d.SetSelectedShapes(a)
	stop()
	d.DeleteShapes(a)

	assert.Equal(t, []ChangeKind{ChangeShapesAdded, ChangeSelection}, kinds)
}

func TestPages(t *testing.T) {
	d := newDoc(t)
	p := d.AddPage("")
	assert.Equal(t, "Page 2", p.Name)
	require.NoError(t, d.SetCurrentPage(p.ID))
	assert.Equal(t, p.ID, d.CurrentPageID())
	assert.ErrorIs(t, d.SetCurrentPage("nope"), ErrNotFound)

	d.Undo()
	assert.Len(t, d.Pages(), 1)
	assert.NotEqual(t, p.ID, d.CurrentPageID())
}

func TestZeroStyleSurvivesLoadAndUndo(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	d.UpdateShapes(Update{ID: a, Patch: shape.Patch{
		Opacity:     shape.Ptr(0.0),
		StrokeWidth: shape.Ptr(0.0),
	}})
	require.Zero(t, d.CurrentPage().Shape(a).Props().Opacity)

	before := d.Serialize()
	other := newDoc(t)
	require.NoError(t, other.Load(before))
	assert.Equal(t, before, other.Serialize())
	p := other.CurrentPage().Shape(a).Props()
	assert.Zero(t, p.Opacity)
	assert.Zero(t, p.StrokeWidth)

	d.DeleteShapes(a)
	require.True(t, d.Undo())
	p = d.CurrentPage().Shape(a).Props()
	assert.Zero(t, p.Opacity)
	assert.Zero(t, p.StrokeWidth)
}

func TestArrangeMovesGroupWithChildren(t *testing.T) {
	d := newDoc(t)
	a := addBox(t, d, 0, 0, 100, 100)
	b := addBox(t, d, 10, 10, 100, 100)
	c := addBox(t, d, 20, 20, 100, 100)
	g, err := d.GroupShapes(a, b)
	require.NoError(t, err)
	page := d.CurrentPage()

	d.BringToFront(g.ID())
	assert.Equal(t, []string{c, g.ID(), a, b}, page.Order())

	d.SendToBack(g.ID())
	assert.Equal(t, []string{g.ID(), a, b, c}, page.Order())

	d.BringForward(g.ID())
	assert.Equal(t, []string{c, g.ID(), a, b}, page.Order())

	d.SendBackward(g.ID())
	assert.Equal(t, []string{g.ID(), a, b, c}, page.Order())
}
