// Package input normalises platform pointer, keyboard, pinch and wheel
// events into one event shape and tracks the input device state shared by
// every tool.
package input

import (
	"whiteboard/geometry"
)

// TargetKind says what a pointer event landed on.
type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetShape
	TargetSelection
	TargetHandle
	TargetResizeHandle
	TargetRotateHandle
)

func (k TargetKind) String() string {
	switch k {
	case TargetCanvas:
		return "canvas"
	case TargetShape:
		return "shape"
	case TargetSelection:
		return "selection"
	case TargetHandle:
		return "handle"
	case TargetResizeHandle:
		return "resize-handle"
	case TargetRotateHandle:
		return "rotate-handle"
	}
	return "unknown"
}

// Target is the single thing a pointer event is dispatched to.
type Target struct {
	Kind TargetKind
	// ShapeID is set for shape and line handle targets.
	ShapeID string
	// HandleID names a line handle.
	HandleID string
	// Resize names the resize handle of the selection.
	Resize geometry.Handle
}

// Modifiers are the modifier keys held during an event.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
	Meta  bool
}

// Mouse buttons.
const (
	ButtonPrimary   = 0
	ButtonMiddle    = 1
	ButtonSecondary = 2
)

// PointerEvent is a normalised pointer event. Point is in document space.
type PointerEvent struct {
	Target      Target
	PointerID   int
	Button      int
	ScreenPoint geometry.Point
	Point       geometry.Point
	Pressure    float64
	Modifiers   Modifiers
	// Seq identifies the physical event. Zero means unknown.
	Seq uint64
	// Order counts repeated deliveries of the same Seq.
	Order int
}

// Key names used by the engine.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyShift     = "Shift"
	KeyAlt       = "Alt"
	KeyControl   = "Control"
	KeyMeta      = "Meta"
	KeySpace     = " "
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key       string
	Modifiers Modifiers
}

// PinchEvent is a two finger gesture step. Scale is relative to the start
// of the pinch; Delta is the screen pan since the previous step.
type PinchEvent struct {
	ScreenPoint geometry.Point
	Point       geometry.Point
	Delta       geometry.Point
	Scale       float64
}

// WheelEvent is a scroll. Delta is in screen units.
type WheelEvent struct {
	ScreenPoint geometry.Point
	Point       geometry.Point
	Delta       geometry.Point
	Modifiers   Modifiers
}
