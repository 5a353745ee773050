// Package tool implements the interactive tools as hierarchical state
// machines.
//
// A tool is a tree of States. Each State holds a table of handlers, one per
// input event, and optionally an initial child. A Tool interprets the tree:
// it keeps the active path from the root to the deepest active state,
// dispatches events along that path and performs transitions.
package tool

import (
	"whiteboard/input"
	"whiteboard/internal/logger"
)

// Handlers are the callbacks of one state. Nil handlers are no-ops.
type Handlers struct {
	Enter func(payload any)
	Exit  func()

	PointerDown  func(e input.PointerEvent)
	PointerMove  func(e input.PointerEvent)
	PointerUp    func(e input.PointerEvent)
	PointerEnter func(e input.PointerEvent)
	PointerLeave func(e input.PointerEvent)
	DoubleClick  func(e input.PointerEvent)

	KeyDown func(e input.KeyEvent)
	KeyUp   func(e input.KeyEvent)

	PinchStart func(e input.PinchEvent)
	Pinch      func(e input.PinchEvent)
	PinchEnd   func(e input.PinchEvent)

	Wheel func(e input.WheelEvent)
}

func (h Handlers) names() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("enter", h.Enter != nil)
	add("exit", h.Exit != nil)
	add("pointerDown", h.PointerDown != nil)
	add("pointerMove", h.PointerMove != nil)
	add("pointerUp", h.PointerUp != nil)
	add("pointerEnter", h.PointerEnter != nil)
	add("pointerLeave", h.PointerLeave != nil)
	add("doubleClick", h.DoubleClick != nil)
	add("keyDown", h.KeyDown != nil)
	add("keyUp", h.KeyUp != nil)
	add("pinchStart", h.PinchStart != nil)
	add("pinch", h.Pinch != nil)
	add("pinchEnd", h.PinchEnd != nil)
	add("wheel", h.Wheel != nil)
	return out
}

// State is one node of a tool's state tree. State ids are unique within a
// tool.
type State struct {
	ID       string
	Initial  string
	Handlers Handlers
	Children []*State
}

func (s *State) child(id string) *State {
	for _, c := range s.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// pathTo returns the states from s down to the state named id.
func (s *State) pathTo(id string) []*State {
	if s.ID == id {
		return []*State{s}
	}
	for _, c := range s.Children {
		if p := c.pathTo(id); p != nil {
			return append([]*State{s}, p...)
		}
	}
	return nil
}

// Tool runs one state tree against a host.
type Tool struct {
	id   string
	host Host
	log  *logger.Logger
	root *State
	path []*State

	// transitions counts path changes so dispatch can stop once a handler
	// has moved the machine.
	transitions uint64
}

// New builds the tool id from its factory. The tool is inactive until
// Activate is called.
func New(id string, host Host, build Factory) *Tool {
	t := &Tool{id: id, host: host}
	if host != nil {
		t.log = host.Logger().WithPrefix("tool")
	}
	t.root = build(t)
	if t.root.ID == "" {
		t.root.ID = id
	}
	return t
}

func (t *Tool) ID() string { return t.id }

func (t *Tool) Host() Host { return t.host }

// Active reports whether the tool has been activated.
func (t *Tool) Active() bool { return len(t.path) > 0 }

// State returns the id of the deepest active state.
func (t *Tool) State() string {
	if len(t.path) == 0 {
		return ""
	}
	return t.path[len(t.path)-1].ID
}

// Path returns the ids of the active states from the root down.
func (t *Tool) Path() []string {
	ids := make([]string, len(t.path))
	for i, s := range t.path {
		ids[i] = s.ID
	}
	return ids
}

// IsIn reports whether the state id is on the active path.
func (t *Tool) IsIn(id string) bool {
	for _, s := range t.path {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Activate enters the root with payload and then its initial states.
func (t *Tool) Activate(payload any) {
	t.exitFrom(0)
	t.transitions++
	n := t.transitions
	t.path = []*State{t.root}
	enter(t.root, payload)
	if t.transitions != n {
		return
	}
	t.descend(n)
}

// Deactivate exits every active state, deepest first.
func (t *Tool) Deactivate() {
	t.transitions++
	t.exitFrom(0)
}

// Transition exits the active states up to the nearest common ancestor of
// the target, then enters the target with payload and its initial states.
// The target itself is always exited and re-entered. It reports false for
// an unknown state id.
func (t *Tool) Transition(id string, payload any) bool {
	target := t.root.pathTo(id)
	if target == nil {
		t.log.Warn("%s: unknown state %q", t.id, id)
		return false
	}
	from := t.State()
	common := 0
	for common < len(t.path) && common < len(target)-1 && t.path[common] == target[common] {
		common++
	}
	t.transitions++
	n := t.transitions
	t.exitFrom(common)
	t.log.Debug("%s: %s -> %s", t.id, from, id)
	for i := common; i < len(target); i++ {
		t.path = append(t.path, target[i])
		var p any
		if i == len(target)-1 {
			p = payload
		}
		enter(target[i], p)
		if t.transitions != n {
			return true
		}
	}
	t.descend(n)
	return true
}

func (t *Tool) descend(n uint64) {
	s := t.path[len(t.path)-1]
	for s.Initial != "" {
		c := s.child(s.Initial)
		if c == nil {
			t.log.Warn("%s: %s has no initial state %q", t.id, s.ID, s.Initial)
			return
		}
		t.path = append(t.path, c)
		enter(c, nil)
		if t.transitions != n {
			return
		}
		s = c
	}
}

func (t *Tool) exitFrom(depth int) {
	for i := len(t.path) - 1; i >= depth; i-- {
		if exit := t.path[i].Handlers.Exit; exit != nil {
			exit()
		}
	}
	if depth < len(t.path) {
		t.path = t.path[:depth:depth]
	}
}

func enter(s *State, payload any) {
	if s.Handlers.Enter != nil {
		s.Handlers.Enter(payload)
	}
}

// dispatch offers an event to every active state from the root down. It
// stops as soon as a handler transitions.
func (t *Tool) dispatch(call func(h *Handlers)) {
	n := t.transitions
	for i := 0; i < len(t.path); i++ {
		call(&t.path[i].Handlers)
		if t.transitions != n {
			return
		}
	}
}

func (t *Tool) PointerDown(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PointerDown != nil {
			h.PointerDown(e)
		}
	})
}

func (t *Tool) PointerMove(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PointerMove != nil {
			h.PointerMove(e)
		}
	})
}

func (t *Tool) PointerUp(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PointerUp != nil {
			h.PointerUp(e)
		}
	})
}

func (t *Tool) PointerEnter(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PointerEnter != nil {
			h.PointerEnter(e)
		}
	})
}

func (t *Tool) PointerLeave(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PointerLeave != nil {
			h.PointerLeave(e)
		}
	})
}

func (t *Tool) DoubleClick(e input.PointerEvent) {
	t.dispatch(func(h *Handlers) {
		if h.DoubleClick != nil {
			h.DoubleClick(e)
		}
	})
}

func (t *Tool) KeyDown(e input.KeyEvent) {
	t.dispatch(func(h *Handlers) {
		if h.KeyDown != nil {
			h.KeyDown(e)
		}
	})
}

func (t *Tool) KeyUp(e input.KeyEvent) {
	t.dispatch(func(h *Handlers) {
		if h.KeyUp != nil {
			h.KeyUp(e)
		}
	})
}

func (t *Tool) PinchStart(e input.PinchEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PinchStart != nil {
			h.PinchStart(e)
		}
	})
}

func (t *Tool) Pinch(e input.PinchEvent) {
	t.dispatch(func(h *Handlers) {
		if h.Pinch != nil {
			h.Pinch(e)
		}
	})
}

func (t *Tool) PinchEnd(e input.PinchEvent) {
	t.dispatch(func(h *Handlers) {
		if h.PinchEnd != nil {
			h.PinchEnd(e)
		}
	})
}

func (t *Tool) Wheel(e input.WheelEvent) {
	t.dispatch(func(h *Handlers) {
		if h.Wheel != nil {
			h.Wheel(e)
		}
	})
}

// Node describes one state of a tool for inspection.
type Node struct {
	Tool     string
	State    string
	Parent   string
	Initial  string
	Handlers []string
}

// Graph lists the tool's states depth first with the handlers each defines.
func (t *Tool) Graph() []Node {
	var out []Node
	var walk func(s *State, parent string)
	walk = func(s *State, parent string) {
		out = append(out, Node{
			Tool:     t.id,
			State:    s.ID,
			Parent:   parent,
			Initial:  s.Initial,
			Handlers: s.Handlers.names(),
		})
		for _, c := range s.Children {
			walk(c, s.ID)
		}
	}
	walk(t.root, "")
	return out
}
