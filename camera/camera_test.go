package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whiteboard/geometry"
)

func newViewport() *Viewport {
	v := New(DefaultOptions())
	v.Resize(geometry.NewBounds(geometry.Pt(10, 20), geometry.Pt(800, 600)))
	return v
}

func TestScreenDocumentRoundTrip(t *testing.T) {
	v := newViewport()
	v.SetCamera(geometry.Pt(-40, 15), 2)

	pts := []geometry.Point{{0, 0}, {123.5, -7}, {810, 620}}
	for _, p := range pts {
		assert.True(t, v.DocumentToScreen(v.ScreenToDocument(p)).IsEqual(p))
	}
	// screen = (doc + point) * zoom + min
	assert.Equal(t, geometry.Pt(30, 70), v.DocumentToScreen(geometry.Pt(50, 10)))
}

func TestSetCameraClampsZoom(t *testing.T) {
	v := newViewport()
	v.SetCamera(geometry.Point{}, 100)
	assert.Equal(t, 8.0, v.Camera().Zoom)
	v.SetCamera(geometry.Point{}, 0.001)
	assert.Equal(t, 0.1, v.Camera().Zoom)
	v.SetCamera(geometry.Point{}, -1)
	assert.Equal(t, 0.1, v.Camera().Zoom)
}

func TestZoomStepsKeepCenter(t *testing.T) {
	v := newViewport()
	center := v.Bounds().Center()
	before := v.ScreenToDocument(center)

	v.ZoomIn()
	assert.Equal(t, 1.25, v.Camera().Zoom)
	assert.True(t, v.ScreenToDocument(center).IsEqual(before))

	v.ZoomOut()
	v.ZoomOut()
	assert.Equal(t, 0.75, v.Camera().Zoom)

	v.ResetZoom()
	assert.Equal(t, 1.0, v.Camera().Zoom)
	assert.True(t, v.ScreenToDocument(center).IsEqual(before))
}

func TestZoomToFitCentersBounds(t *testing.T) {
	v := newViewport()
	b := geometry.NewBounds(geometry.Pt(1000, 1000), geometry.Pt(350, 250))
	v.ZoomToFit(b)

	assert.InDelta(t, 2.0, v.Camera().Zoom, 1e-9)
	assert.True(t, v.DocumentToScreen(b.Center()).IsEqual(v.Bounds().Center()))
	view := v.CurrentView()
	assert.True(t, view.Contains(b))
}

func TestZoomToBoundsNeverZoomsPastOne(t *testing.T) {
	v := newViewport()
	v.ZoomToBounds(geometry.NewBounds(geometry.Pt(0, 0), geometry.Pt(10, 10)))
	assert.Equal(t, 1.0, v.Camera().Zoom)
}

func TestPinchKeepsFocalPoint(t *testing.T) {
	v := newViewport()
	origin := geometry.Pt(300, 200)
	doc := v.ScreenToDocument(origin)

	v.PinchZoom(origin, geometry.Point{}, 3)
	assert.Equal(t, 3.0, v.Camera().Zoom)
	assert.True(t, v.DocumentToScreen(doc).IsEqual(origin))

	v.PinchZoom(origin, geometry.Pt(20, 0), 3)
	assert.True(t, v.DocumentToScreen(doc).IsEqual(geometry.Pt(320, 200)))
}

func TestPanFollowsDelta(t *testing.T) {
	v := newViewport()
	v.SetCamera(geometry.Point{}, 2)
	doc := geometry.Pt(5, 5)
	s := v.DocumentToScreen(doc)
	v.Pan(geometry.Pt(10, -4))
	assert.True(t, v.DocumentToScreen(doc).IsEqual(s.Add(geometry.Pt(10, -4))))
}
