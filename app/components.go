package app

import (
	"fmt"

	"whiteboard/shape"
)

// ContractError reports an integration mistake, such as a shape type with
// no component to draw it. It is never recovered from.
type ContractError struct {
	Slot   string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation: %s: %s", e.Slot, e.Reason)
}

// RenderState is the session state of a shape at render time.
type RenderState struct {
	Selected  bool
	Hovered   bool
	Editing   bool
	Activated bool
}

// Component draws shapes of one type.
type Component interface {
	Render(s *shape.Shape, st RenderState)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(s *shape.Shape, st RenderState)

func (f ComponentFunc) Render(s *shape.Shape, st RenderState) { f(s, st) }

// Components maps each shape type to the component that draws it.
type Components map[shape.Type]Component

func (c Components) check(reg *shape.Registry) error {
	for _, t := range reg.Types() {
		if c[t] == nil {
			return &ContractError{Slot: string(t), Reason: "no component registered"}
		}
	}
	return nil
}

// Render hands every shape of the current page that is in view to its
// component, back to front.
func (a *App) Render() {
	sess := a.doc.Session()
	page := a.doc.CurrentPage()
	view := a.viewport.CurrentView()
	clip := a.viewport.Bounds().Width > 0 && a.viewport.Bounds().Height > 0
	activated := make(map[string]bool, len(sess.ActivatedIDs))
	for _, id := range sess.ActivatedIDs {
		activated[id] = true
	}
	for _, s := range page.Shapes() {
		if clip && !view.Collides(s.RotatedBounds()) {
			continue
		}
		c := a.components[s.Type()]
		if c == nil {
			err := &ContractError{Slot: string(s.Type()), Reason: "no component registered"}
			a.publish(Event{Name: EventError, Err: err})
			panic(err)
		}
		c.Render(s, RenderState{
			Selected:  page.IsSelected(s.ID()),
			Hovered:   sess.HoveredID == s.ID(),
			Editing:   sess.EditingID == s.ID(),
			Activated: activated[s.ID()],
		})
	}
}
