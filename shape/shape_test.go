package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/geometry"
)

func newShape(t *testing.T, reg *Registry, p Props) *Shape {
	t.Helper()
	s, err := reg.New(p)
	require.NoError(t, err)
	return s
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := DefaultRegistry().New(Props{Type: "cloud"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistryFillsDefaults(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox, Point: geometry.Pt(10, 10)})
	p := s.Props()
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, geometry.Pt(100, 100), p.Size)
	assert.Equal(t, 1.0, p.Opacity)
}

func TestRotatedBoundsIdentityForEveryVariant(t *testing.T) {
	reg := DefaultRegistry()
	for _, typ := range reg.Types() {
		t.Run(string(typ), func(t *testing.T) {
			s := newShape(t, reg, Props{Type: typ, Point: geometry.Pt(7, 9)})
			b := s.Bounds()
			assert.Equal(t, b, s.RotatedBounds())
		})
	}
}

func TestUpdateKeepsMinimumSize(t *testing.T) {
	reg := DefaultRegistry()
	for _, typ := range []Type{TypeBox, TypeEllipse, TypePolygon, TypeText, TypePortal, TypeImage} {
		t.Run(string(typ), func(t *testing.T) {
			s := newShape(t, reg, Props{Type: typ})
			s.Update(Patch{Size: Ptr(geometry.Pt(-5, 0))})
			b := s.Bounds()
			assert.GreaterOrEqual(t, b.Width, geometry.MinSize)
			assert.GreaterOrEqual(t, b.Height, geometry.MinSize)
		})
	}
}

func TestUpdateBumpsVersionOnlyOnChange(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox})
	v := s.Version()
	s.Update(Patch{Point: Ptr(geometry.Pt(0, 0))})
	assert.Equal(t, v, s.Version())
	s.Update(Patch{Point: Ptr(geometry.Pt(5, 0))})
	assert.Equal(t, v+1, s.Version())
}

func TestUpdateClampsOpacityAndStroke(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox})
	s.Update(Patch{Opacity: Ptr(3.0), StrokeWidth: Ptr(-2.0)})
	assert.Equal(t, 1.0, s.Props().Opacity)
	assert.Equal(t, 0.0, s.Props().StrokeWidth)
}

func TestEllipseHitTest(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeEllipse, Size: geometry.Pt(100, 50)})
	assert.True(t, s.HitTestPoint(geometry.Pt(50, 25)))
	assert.False(t, s.HitTestPoint(geometry.Pt(2, 2)))
}

func TestRotatedBoxHitTest(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox, Size: geometry.Pt(100, 10), Rotation: math.Pi / 2})
	// Rotated a quarter turn the box stands upright around (50,5).
	assert.True(t, s.HitTestPoint(geometry.Pt(50, 40)))
	assert.False(t, s.HitTestPoint(geometry.Pt(90, 5)))
}

func TestHitTestBounds(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox, Point: geometry.Pt(10, 10), Size: geometry.Pt(20, 20)})
	assert.True(t, s.HitTestBounds(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(100, 100))))
	assert.True(t, s.HitTestBounds(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(15, 15))))
	assert.False(t, s.HitTestBounds(geometry.NewBounds(geometry.Pt(50, 50), geometry.Pt(5, 5))))
	assert.False(t, s.ContainedBy(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(15, 15))))
}

func newLine(t *testing.T, start, end geometry.Point) *Shape {
	t.Helper()
	return newShape(t, DefaultRegistry(), Props{
		Type: TypeLine,
		Handles: map[string]LineHandle{
			HandleStart: {ID: HandleStart, Point: start, CanBind: true},
			HandleEnd:   {ID: HandleEnd, Point: end, CanBind: true},
		},
	})
}

func TestLineRejectsCoincidentHandles(t *testing.T) {
	s := newLine(t, geometry.Pt(0, 0), geometry.Pt(100, 0))
	before := s.Props()

	s.Update(Patch{Handles: map[string]LineHandle{
		HandleEnd: {ID: HandleEnd, Point: geometry.Pt(0, 0), CanBind: true},
	}})

	after := s.Props()
	assert.Equal(t, before.Handles, after.Handles)
	assert.Equal(t, before.Point, after.Point)
	for _, h := range after.Handles {
		assert.True(t, h.Point.IsFinite())
	}
}

func TestLineRebasesHandles(t *testing.T) {
	s := newLine(t, geometry.Pt(0, 0), geometry.Pt(100, 0))
	s.Update(Patch{Handles: map[string]LineHandle{
		HandleEnd: {ID: HandleEnd, Point: geometry.Pt(-50, 20)},
	}})
	p := s.Props()
	assert.Equal(t, geometry.Pt(-50, 0), p.Point)
	assert.Equal(t, geometry.Pt(50, 0), p.Handles[HandleStart].Point)
	assert.Equal(t, geometry.Pt(0, 20), p.Handles[HandleEnd].Point)
}

func TestLineBoundsHaveMinimumHeight(t *testing.T) {
	s := newLine(t, geometry.Pt(0, 0), geometry.Pt(100, 0))
	b := s.Bounds()
	assert.Equal(t, 100.0, b.Width)
	assert.Equal(t, geometry.MinSize, b.Height)
}

func TestLineResizeScalesHandles(t *testing.T) {
	s := newLine(t, geometry.Pt(0, 0), geometry.Pt(100, 50))
	initial := s.Props()
	s.Update(s.Resize(initial, ResizeInfo{
		Bounds: geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(200, 100)),
		Scale:  geometry.Pt(2, 2),
	}))
	assert.Equal(t, geometry.Pt(200, 100), s.Props().Handles[HandleEnd].Point)
}

func TestLineFlipHorizontal(t *testing.T) {
	s := newLine(t, geometry.Pt(0, 0), geometry.Pt(100, 50))
	s.Update(s.Flip(s.Bounds(), true))
	p := s.Props()
	assert.Equal(t, geometry.Pt(100, 0), p.Handles[HandleStart].Point)
	assert.Equal(t, geometry.Pt(0, 50), p.Handles[HandleEnd].Point)
}

func TestTextAutoResize(t *testing.T) {
	reg := DefaultRegistry()
	p, err := reg.Defaults(TypeText)
	require.NoError(t, err)
	s := newShape(t, reg, p)

	s.Update(Patch{Text: Ptr("hello\nhi")})
	assert.InDelta(t, 5*20*0.6+8, s.Props().Size[0], 1e-9)
	assert.InDelta(t, 2*20*1.2+8, s.Props().Size[1], 1e-9)

	s.Update(s.Resize(s.Props(), ResizeInfo{Bounds: geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(300, 300))}))
	assert.False(t, s.Props().IsAutoResizing)
	s.Update(Patch{Text: Ptr("x")})
	assert.Equal(t, geometry.Pt(300, 300), s.Props().Size)
}

func TestTextCannotFlip(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeText, Point: geometry.Pt(10, 0)})
	assert.True(t, s.Flip(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(500, 500)), true).IsEmpty())
}

func TestDotResizeKeepsCircle(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeDot})
	s.Update(s.Resize(s.Props(), ResizeInfo{Bounds: geometry.NewBounds(geometry.Pt(10, 10), geometry.Pt(40, 20))}))
	assert.Equal(t, 10.0, s.Props().Radius)
	assert.Equal(t, geometry.Pt(10, 10), s.Props().Point)
	s.Update(Patch{Radius: Ptr(0.0)})
	assert.Equal(t, geometry.MinSize, s.Props().Radius)
}

func TestPolygonSidesClamped(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypePolygon})
	s.Update(Patch{Sides: Ptr(1)})
	assert.Equal(t, 3, s.Props().Sides)
	s.Update(Patch{Sides: Ptr(1000)})
	assert.Equal(t, 100, s.Props().Sides)
}

func TestYouTubeKeepsRatio(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeYouTube})
	s.Update(Patch{Size: Ptr(geometry.Pt(160, 10))})
	assert.Equal(t, geometry.Pt(160, 90), s.Props().Size)
}

func TestPencilRebasesPoints(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypePencil, Point: geometry.Pt(100, 100)})
	s.Update(Patch{Points: []geometry.Point{{0, 0}, {-10, 5}, {20, math.NaN()}, {20, 20}}})
	p := s.Props()
	assert.Equal(t, geometry.Pt(90, 100), p.Point)
	assert.Equal(t, []geometry.Point{{10, 0}, {0, 5}, {30, 20}}, p.Points)
	assert.True(t, s.HitTestPoint(geometry.Pt(100, 100)))
}

func TestBindingPoint(t *testing.T) {
	s := newShape(t, DefaultRegistry(), Props{Type: TypeBox, Size: geometry.Pt(100, 100)})
	c := s.Center()

	bp, ok := s.BindingPoint(c, geometry.Pt(-50, 50), geometry.Pt(1, 0), false, BindingDistance)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(0.5, 0.5), bp.Point)
	assert.Equal(t, float64(BindingDistance), bp.Distance)

	_, ok = s.BindingPoint(geometry.Pt(500, 500), geometry.Pt(0, 0), geometry.Pt(1, 1), false, BindingDistance)
	assert.False(t, ok)
}

func TestNewLineBinding(t *testing.T) {
	reg := DefaultRegistry()
	a := newShape(t, reg, Props{Type: TypeBox, Size: geometry.Pt(100, 100)})
	b := newShape(t, reg, Props{Type: TypeBox, Point: geometry.Pt(300, 0), Size: geometry.Pt(100, 100)})

	c := NewLineBinding(reg, a, b)
	require.NotNil(t, c)
	assert.Equal(t, a.ID(), c.Bindings[0].ToID)
	assert.Equal(t, b.ID(), c.Bindings[1].ToID)
	assert.Equal(t, c.Line.ID, c.Bindings[0].FromID)
	assert.Equal(t, c.Bindings[0].ID, c.Line.Handles[HandleStart].BindingID)

	start, _ := c.Line.Handle(HandleStart)
	end, _ := c.Line.Handle(HandleEnd)
	assert.InDelta(t, 116, start[0], 1e-6)
	assert.InDelta(t, 284, end[0], 1e-6)
	assert.InDelta(t, 50, end[1], 1e-6)
}

func TestNewLineBindingRefused(t *testing.T) {
	reg := DefaultRegistry()
	a := newShape(t, reg, Props{Type: TypeBox})
	l := newLine(t, geometry.Pt(300, 300), geometry.Pt(400, 400))
	assert.Nil(t, NewLineBinding(reg, a, l))
	assert.Nil(t, NewLineBinding(reg, a, a))
}
