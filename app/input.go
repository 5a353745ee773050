package app

import (
	"math"
	"strings"

	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/tool"
)

// Hosts send pointer events with ScreenPoint set. The app fills in the
// document point and resolves the target once, so each physical event is
// handled by exactly one target.

// normalize fills in the document point and, when resolve is set, the
// target of e.
func (a *App) normalize(e *input.PointerEvent, resolve bool) {
	e.Point = a.viewport.ScreenToDocument(e.ScreenPoint)
	if resolve {
		e.Target = a.TargetAt(e.ScreenPoint)
	}
}

func (a *App) PointerDown(e input.PointerEvent) {
	a.normalize(&e, true)
	if !a.inputs.Claim(&e) {
		return
	}
	a.inputs.PointerDown(e)
	a.current.PointerDown(e)
	a.settle()
}

func (a *App) PointerMove(e input.PointerEvent) {
	idle := a.inputs.State == input.StateIdle
	a.normalize(&e, idle)
	if !a.inputs.Claim(&e) {
		return
	}
	a.inputs.PointerMove(e)
	if idle {
		a.doc.SetHoveredShape(e.Target.ShapeID)
	}
	a.current.PointerMove(e)
	a.settle()
}

func (a *App) PointerUp(e input.PointerEvent) {
	a.normalize(&e, true)
	if !a.inputs.Claim(&e) {
		return
	}
	a.inputs.PointerUp(e)
	a.current.PointerUp(e)
	a.settle()
}

func (a *App) PointerEnter(e input.PointerEvent) {
	a.normalize(&e, true)
	if !a.inputs.Claim(&e) {
		return
	}
	if e.Target.Kind == input.TargetShape {
		a.doc.SetHoveredShape(e.Target.ShapeID)
	}
	a.current.PointerEnter(e)
}

// PointerLeave clears the hover when the pointer leaves the canvas.
func (a *App) PointerLeave(e input.PointerEvent) {
	a.normalize(&e, false)
	if !a.inputs.Claim(&e) {
		return
	}
	a.doc.SetHoveredShape("")
	a.current.PointerLeave(e)
}

func (a *App) DoubleClick(e input.PointerEvent) {
	a.normalize(&e, true)
	if !a.inputs.Claim(&e) {
		return
	}
	a.current.DoubleClick(e)
	a.settle()
}

// KeyDown handles the app shortcuts and passes every other key to the
// tool. Shortcuts only apply between gestures and outside text editing.
func (a *App) KeyDown(e input.KeyEvent) {
	a.inputs.KeyDown(e)
	if a.shortcut(e) {
		a.settle()
		return
	}
	a.current.KeyDown(e)
	a.settle()
}

func (a *App) KeyUp(e input.KeyEvent) {
	a.inputs.KeyUp(e)
	a.current.KeyUp(e)
}

// toolKeys are the single key tool shortcuts.
var toolKeys = map[string]string{
	"v": tool.Select,
	"h": tool.Move,
	"r": tool.Box,
	"e": tool.Ellipse,
	"d": tool.Dot,
	"l": tool.Line,
	"s": tool.Polygon,
	"t": tool.Text,
	"p": tool.Pencil,
	"m": tool.Highlighter,
	"x": tool.Erase,
}

func (a *App) shortcut(e input.KeyEvent) bool {
	if a.inputs.State != input.StateIdle || a.doc.Session().EditingID != "" || a.doc.InProgress() {
		return false
	}
	key := strings.ToLower(e.Key)
	mods := e.Modifiers
	if mods.Ctrl || mods.Meta {
		switch {
		case key == "z" && mods.Shift, key == "y":
			a.Redo()
		case key == "z":
			a.Undo()
		case key == "a":
			a.SelectAll()
		case key == "g" && mods.Shift:
			a.Ungroup()
		case key == "g":
			a.Group()
		case key == "s" && mods.Shift:
			a.SaveAs("")
		case key == "s":
			a.Save()
		case key == "d":
			a.Clone(DirectionRight)
		case key == "]":
			a.BringToFront()
		case key == "[":
			a.SendToBack()
		default:
			return false
		}
		return true
	}
	if mods.Alt {
		return false
	}
	switch key {
	case "]":
		a.BringForward()
		return true
	case "[":
		a.SendBackward()
		return true
	}
	if id, ok := toolKeys[key]; ok && a.current.ID() != id && a.current.State() == "idle" {
		a.SelectTool(id, nil)
		return true
	}
	return false
}

// PinchStart is ignored unless no other interaction is under way.
func (a *App) PinchStart(e input.PinchEvent) {
	e.Point = a.viewport.ScreenToDocument(e.ScreenPoint)
	if !a.inputs.PinchStart(e) {
		return
	}
	a.current.PinchStart(e)
}

func (a *App) Pinch(e input.PinchEvent) {
	e.Point = a.viewport.ScreenToDocument(e.ScreenPoint)
	if !a.inputs.Pinch(e) {
		return
	}
	a.current.Pinch(e)
}

func (a *App) PinchEnd(e input.PinchEvent) {
	e.Point = a.viewport.ScreenToDocument(e.ScreenPoint)
	if !a.inputs.PinchEnd(e) {
		return
	}
	a.current.PinchEnd(e)
	a.settle()
}

// wheelZoomRate converts wheel distance into a zoom factor exponent.
const wheelZoomRate = 0.01

// Wheel pans the camera, or zooms about the pointer when Ctrl is held.
func (a *App) Wheel(e input.WheelEvent) {
	e.Point = a.viewport.ScreenToDocument(e.ScreenPoint)
	a.inputs.Wheel(e)
	if e.Modifiers.Ctrl {
		zoom := a.viewport.Camera().Zoom * math.Exp(-e.Delta.Y()*wheelZoomRate)
		a.viewport.ZoomAt(zoom, e.ScreenPoint)
	} else {
		a.viewport.Pan(e.Delta.Neg())
	}
	a.current.Wheel(e)
}

// ScreenToDocument converts a screen point with the current camera.
func (a *App) ScreenToDocument(p geometry.Point) geometry.Point {
	return a.viewport.ScreenToDocument(p)
}
