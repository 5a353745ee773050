// Package camera maps between screen space and document space.
//
// A point on screen is (doc + camera.Point) * camera.Zoom + viewport.Min.
package camera

import (
	"math"

	"whiteboard/geometry"
)

// Camera is the pan offset and zoom factor.
type Camera struct {
	Point geometry.Point `json:"point"`
	Zoom  float64        `json:"zoom"`
}

// Options are the zoom limits and steps.
type Options struct {
	MinZoom float64
	MaxZoom float64
	// ZoomStep is the increment used by ZoomIn and ZoomOut.
	ZoomStep float64
	// FitPadding is the screen space kept free around fitted bounds, split
	// evenly between both sides.
	FitPadding float64
}

// DefaultOptions returns the stock zoom limits.
func DefaultOptions() Options {
	return Options{
		MinZoom:    0.1,
		MaxZoom:    8,
		ZoomStep:   0.25,
		FitPadding: 100,
	}
}

func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = math.Max(d.MaxZoom, o.MinZoom)
	}
	if o.ZoomStep <= 0 {
		o.ZoomStep = d.ZoomStep
	}
	if o.FitPadding < 0 {
		o.FitPadding = 0
	}
	return o
}

// Viewport is the screen rectangle the document is drawn into together with
// the camera looking at it.
type Viewport struct {
	bounds geometry.Bounds
	camera Camera
	opts   Options
}

// New creates a viewport at zoom 1 with an empty screen rectangle. Invalid
// options fall back to the defaults.
func New(opts Options) *Viewport {
	return &Viewport{
		camera: Camera{Zoom: 1},
		opts:   opts.normalize(),
	}
}

func (v *Viewport) Camera() Camera { return v.camera }

func (v *Viewport) Options() Options { return v.opts }

// Bounds returns the screen rectangle.
func (v *Viewport) Bounds() geometry.Bounds { return v.bounds }

// Resize sets the screen rectangle. The camera is unchanged.
func (v *Viewport) Resize(b geometry.Bounds) {
	v.bounds = b.Normalize()
}

// ClampZoom restricts zoom to the configured range.
func (v *Viewport) ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom <= 0 {
		return v.camera.Zoom
	}
	return math.Max(v.opts.MinZoom, math.Min(v.opts.MaxZoom, zoom))
}

// SetCamera moves the camera. Zoom is clamped.
func (v *Viewport) SetCamera(point geometry.Point, zoom float64) {
	if !point.IsFinite() {
		point = v.camera.Point
	}
	v.camera = Camera{Point: point, Zoom: v.ClampZoom(zoom)}
}

// ScreenToDocument converts a screen point to document space.
func (v *Viewport) ScreenToDocument(p geometry.Point) geometry.Point {
	return p.Sub(v.bounds.Min()).Div(v.camera.Zoom).Sub(v.camera.Point)
}

// DocumentToScreen converts a document point to screen space.
func (v *Viewport) DocumentToScreen(p geometry.Point) geometry.Point {
	return p.Add(v.camera.Point).Mul(v.camera.Zoom).Add(v.bounds.Min())
}

// CurrentView returns the visible document area.
func (v *Viewport) CurrentView() geometry.Bounds {
	return geometry.FromPoints(
		v.ScreenToDocument(v.bounds.Min()),
		v.ScreenToDocument(v.bounds.Max()),
	)
}

// Pan moves the content by a screen space delta.
func (v *Viewport) Pan(delta geometry.Point) {
	v.camera.Point = v.camera.Point.Add(delta.Div(v.camera.Zoom))
}

// ZoomAt changes the zoom keeping the document point under the screen
// point at in place.
func (v *Viewport) ZoomAt(zoom float64, at geometry.Point) {
	doc := v.ScreenToDocument(at)
	zoom = v.ClampZoom(zoom)
	v.camera = Camera{
		Point: at.Sub(v.bounds.Min()).Div(zoom).Sub(doc),
		Zoom:  zoom,
	}
}

func (v *Viewport) screenCenter() geometry.Point {
	return v.bounds.Center()
}

// ZoomIn zooms to the next step around the center of the screen.
func (v *Viewport) ZoomIn() {
	step := v.opts.ZoomStep
	i := math.Round(v.camera.Zoom / step)
	v.ZoomAt((i+1)*step, v.screenCenter())
}

// ZoomOut zooms to the previous step around the center of the screen.
func (v *Viewport) ZoomOut() {
	step := v.opts.ZoomStep
	i := math.Round(v.camera.Zoom / step)
	v.ZoomAt((i-1)*step, v.screenCenter())
}

// ResetZoom returns to zoom 1 around the center of the screen.
func (v *Viewport) ResetZoom() {
	v.ZoomAt(1, v.screenCenter())
}

// ZoomToFit centers b and zooms so it fills the screen minus the padding.
func (v *Viewport) ZoomToFit(b geometry.Bounds) {
	v.fit(b, v.opts.MaxZoom)
}

// ZoomToBounds centers b and zooms so it fits, never zooming in past 1.
func (v *Viewport) ZoomToBounds(b geometry.Bounds) {
	v.fit(b, 1)
}

func (v *Viewport) fit(b geometry.Bounds, maxZoom float64) {
	if v.bounds.Width <= 0 || v.bounds.Height <= 0 {
		return
	}
	pad := v.opts.FitPadding
	w := math.Max(b.Width, geometry.MinSize)
	h := math.Max(b.Height, geometry.MinSize)
	zoom := math.Min(
		math.Max(v.bounds.Width-pad, geometry.MinSize)/w,
		math.Max(v.bounds.Height-pad, geometry.MinSize)/h,
	)
	zoom = v.ClampZoom(math.Min(zoom, maxZoom))
	half := geometry.Pt(v.bounds.Width/2, v.bounds.Height/2)
	v.camera = Camera{
		Point: half.Div(zoom).Sub(b.Center()),
		Zoom:  zoom,
	}
}

// PinchZoom applies a pinch: the document point that was under origin at
// the start of the step ends up under origin+delta at the new zoom.
func (v *Viewport) PinchZoom(origin, delta geometry.Point, zoom float64) {
	doc := v.ScreenToDocument(origin)
	zoom = v.ClampZoom(zoom)
	v.camera = Camera{
		Point: origin.Add(delta).Sub(v.bounds.Min()).Div(zoom).Sub(doc),
		Zoom:  zoom,
	}
}
