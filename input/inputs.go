package input

import (
	"slices"

	"whiteboard/geometry"
)

// DefaultDeadZone is the distance, in document units, a pointer must travel
// from where it went down before the gesture counts as a drag.
const DefaultDeadZone = 5

// State is the coarse interaction state of the input device.
type State string

const (
	StateIdle     State = "idle"
	StatePointing State = "pointing"
	StatePinching State = "pinching"
)

// Inputs tracks pointer positions, held keys and the interaction state.
type Inputs struct {
	State State

	OriginScreenPoint   geometry.Point
	OriginPoint         geometry.Point
	CurrentScreenPoint  geometry.Point
	CurrentPoint        geometry.Point
	PreviousScreenPoint geometry.Point
	PreviousPoint       geometry.Point

	Modifiers  Modifiers
	PointerIDs []int

	keys    map[string]bool
	lastSeq uint64
}

// New returns idle inputs.
func New() *Inputs {
	return &Inputs{State: StateIdle, keys: make(map[string]bool)}
}

// Claim marks e as delivered. A second delivery of the same Seq increments
// Order and reports false.
func (in *Inputs) Claim(e *PointerEvent) bool {
	if e.Seq == 0 {
		return true
	}
	if e.Seq == in.lastSeq {
		e.Order++
		return false
	}
	in.lastSeq = e.Seq
	return true
}

func (in *Inputs) move(screen, doc geometry.Point) {
	in.PreviousScreenPoint = in.CurrentScreenPoint
	in.PreviousPoint = in.CurrentPoint
	in.CurrentScreenPoint = screen
	in.CurrentPoint = doc
}

// PointerDown records a pointer going down and starts a gesture.
func (in *Inputs) PointerDown(e PointerEvent) {
	in.Modifiers = e.Modifiers
	in.move(e.ScreenPoint, e.Point)
	in.PreviousScreenPoint = e.ScreenPoint
	in.PreviousPoint = e.Point
	in.OriginScreenPoint = e.ScreenPoint
	in.OriginPoint = e.Point
	if !slices.Contains(in.PointerIDs, e.PointerID) {
		in.PointerIDs = append(in.PointerIDs, e.PointerID)
	}
	if in.State == StateIdle {
		in.State = StatePointing
	}
}

// PointerMove records a pointer position.
func (in *Inputs) PointerMove(e PointerEvent) {
	in.Modifiers = e.Modifiers
	in.move(e.ScreenPoint, e.Point)
}

// PointerUp records a pointer release and ends the gesture once no pointer
// is down.
func (in *Inputs) PointerUp(e PointerEvent) {
	in.Modifiers = e.Modifiers
	in.move(e.ScreenPoint, e.Point)
	in.PointerIDs = slices.DeleteFunc(in.PointerIDs, func(id int) bool { return id == e.PointerID })
	if len(in.PointerIDs) == 0 && in.State == StatePointing {
		in.State = StateIdle
	}
}

// KeyDown records a held key.
func (in *Inputs) KeyDown(e KeyEvent) {
	in.Modifiers = e.Modifiers
	in.keys[e.Key] = true
}

// KeyUp records a released key.
func (in *Inputs) KeyUp(e KeyEvent) {
	in.Modifiers = e.Modifiers
	delete(in.keys, e.Key)
}

// IsPressed reports whether key is held.
func (in *Inputs) IsPressed(key string) bool {
	return in.keys[key]
}

// PinchStart begins a pinch. It reports false, and changes nothing, unless
// the inputs are idle.
func (in *Inputs) PinchStart(e PinchEvent) bool {
	if in.State != StateIdle {
		return false
	}
	in.State = StatePinching
	in.move(e.ScreenPoint, e.Point)
	in.OriginScreenPoint = e.ScreenPoint
	in.OriginPoint = e.Point
	return true
}

// Pinch records a pinch step. It reports false outside a pinch.
func (in *Inputs) Pinch(e PinchEvent) bool {
	if in.State != StatePinching {
		return false
	}
	in.move(e.ScreenPoint, e.Point)
	return true
}

// PinchEnd ends a pinch. It reports false outside a pinch.
func (in *Inputs) PinchEnd(e PinchEvent) bool {
	if in.State != StatePinching {
		return false
	}
	in.move(e.ScreenPoint, e.Point)
	in.State = StateIdle
	in.PointerIDs = nil
	return true
}

// Wheel records the pointer position of a scroll.
func (in *Inputs) Wheel(e WheelEvent) {
	in.Modifiers = e.Modifiers
	in.move(e.ScreenPoint, e.Point)
}

// IsDrag reports whether the pointer travelled further than deadZone from
// the origin of the gesture.
func (in *Inputs) IsDrag(deadZone float64) bool {
	return in.CurrentPoint.Dist(in.OriginPoint) > deadZone
}

// Delta is the document space movement since the previous event.
func (in *Inputs) Delta() geometry.Point {
	return in.CurrentPoint.Sub(in.PreviousPoint)
}

// Offset is the document space movement since the origin of the gesture.
func (in *Inputs) Offset() geometry.Point {
	return in.CurrentPoint.Sub(in.OriginPoint)
}

// Reset returns to idle and forgets held pointers and keys.
func (in *Inputs) Reset() {
	in.State = StateIdle
	in.PointerIDs = nil
	clear(in.keys)
}
