package document

import (
	"maps"
	"reflect"
	"slices"

	"whiteboard/shape"
)

// Action is one undoable step. Data holds the state of everything the step
// touched after it ran, Inverse the state before. A nil entry means the
// item did not exist.
type Action struct {
	Name    string
	Data    snapshot
	Inverse snapshot
}

type ref struct{ page, id string }

type pageState struct {
	name         string
	index        int
	order        []string
	bindingOrder []string
	selected     []string
}

type snapshot struct {
	shapes   map[ref]*shape.Props
	bindings map[ref]*shape.Binding
	assets   map[string]*Asset
	pages    map[string]*pageState
}

func newSnapshot() snapshot {
	return snapshot{
		shapes:   make(map[ref]*shape.Props),
		bindings: make(map[ref]*shape.Binding),
		assets:   make(map[string]*Asset),
		pages:    make(map[string]*pageState),
	}
}

type history struct {
	undoStack []Action
	redoStack []Action
	limit     int
	pending   *Action
	depth     int
}

// Begin opens an undo step. Nested calls join the outer step.
func (d *Document) Begin(name string) {
	h := &d.history
	h.depth++
	if h.pending == nil {
		h.pending = &Action{Name: name, Inverse: newSnapshot()}
	}
}

// Commit closes the step opened by the matching Begin. The outermost Commit
// records it unless nothing but the selection changed.
func (d *Document) Commit() {
	h := &d.history
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth > 0 || h.pending == nil {
		return
	}
	a := h.pending
	h.pending = nil
	a.Data = d.capture(a.Inverse)
	if !a.changed() {
		return
	}
	h.undoStack = append(h.undoStack, *a)
	if over := len(h.undoStack) - h.limit; over > 0 {
		h.undoStack = slices.Delete(h.undoStack, 0, over)
	}
	h.redoStack = nil
}

// Cancel reverts everything done since the outermost Begin and discards the
// step.
func (d *Document) Cancel() {
	h := &d.history
	if h.pending == nil {
		return
	}
	a := h.pending
	h.pending = nil
	h.depth = 0
	d.restore(a.Inverse)
}

// InProgress reports whether an undo step is open.
func (d *Document) InProgress() bool {
	return d.history.pending != nil
}

func (d *Document) CanUndo() bool { return len(d.history.undoStack) > 0 }

func (d *Document) CanRedo() bool { return len(d.history.redoStack) > 0 }

// Undo reverts the last step. An open step is committed first.
func (d *Document) Undo() bool {
	d.flush()
	h := &d.history
	if len(h.undoStack) == 0 {
		return false
	}
	a := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	d.restore(a.Inverse)
	h.redoStack = append(h.redoStack, a)
	return true
}

// Redo reapplies the last undone step.
func (d *Document) Redo() bool {
	d.flush()
	h := &d.history
	if len(h.redoStack) == 0 {
		return false
	}
	a := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	d.restore(a.Data)
	h.undoStack = append(h.undoStack, a)
	return true
}

// Steps returns the number of steps that can be undone.
func (d *Document) Steps() int { return len(d.history.undoStack) }

// Forget reverts and drops the steps recorded after mark, as long as each
// one touched no shape but id. Forgotten steps cannot be redone. It reports
// whether the history is back at mark.
func (d *Document) Forget(mark int, id string) bool {
	d.flush()
	h := &d.history
	for len(h.undoStack) > mark {
		a := h.undoStack[len(h.undoStack)-1]
		if !a.only(id) {
			return false
		}
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
		d.restore(a.Inverse)
	}
	return true
}

// only reports whether the step touched shape id and nothing else.
func (a Action) only(id string) bool {
	if len(a.Inverse.bindings) > 0 || len(a.Inverse.assets) > 0 {
		return false
	}
	for k := range a.Inverse.shapes {
		if k.id != id {
			return false
		}
	}
	return true
}

// ClearHistory drops every step.
func (d *Document) ClearHistory() {
	d.history = history{limit: d.history.limit}
}

func (d *Document) flush() {
	if d.history.pending == nil {
		return
	}
	d.history.depth = 1
	d.Commit()
}

func (d *Document) touchShape(pageID, id string) {
	a := d.history.pending
	if a == nil {
		return
	}
	k := ref{pageID, id}
	if _, ok := a.Inverse.shapes[k]; ok {
		return
	}
	a.Inverse.shapes[k] = d.shapeState(k)
	d.touchPage(pageID)
}

func (d *Document) touchBinding(pageID, id string) {
	a := d.history.pending
	if a == nil {
		return
	}
	k := ref{pageID, id}
	if _, ok := a.Inverse.bindings[k]; ok {
		return
	}
	a.Inverse.bindings[k] = d.bindingState(k)
	d.touchPage(pageID)
}

func (d *Document) touchAsset(id string) {
	a := d.history.pending
	if a == nil {
		return
	}
	if _, ok := a.Inverse.assets[id]; ok {
		return
	}
	a.Inverse.assets[id] = d.assetState(id)
}

func (d *Document) touchPage(id string) {
	a := d.history.pending
	if a == nil {
		return
	}
	if _, ok := a.Inverse.pages[id]; ok {
		return
	}
	a.Inverse.pages[id] = d.pageState(id)
}

func (d *Document) shapeState(k ref) *shape.Props {
	p := d.Page(k.page)
	if p == nil {
		return nil
	}
	s := p.Shape(k.id)
	if s == nil {
		return nil
	}
	props := s.Props()
	return &props
}

func (d *Document) bindingState(k ref) *shape.Binding {
	p := d.Page(k.page)
	if p == nil {
		return nil
	}
	b, ok := p.Binding(k.id)
	if !ok {
		return nil
	}
	return &b
}

func (d *Document) assetState(id string) *Asset {
	a, ok := d.assets[id]
	if !ok {
		return nil
	}
	return &a
}

func (d *Document) pageState(id string) *pageState {
	idx := slices.IndexFunc(d.pages, func(p *Page) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}
	p := d.pages[idx]
	return &pageState{
		name:         p.Name,
		index:        idx,
		order:        slices.Clone(p.order),
		bindingOrder: slices.Clone(p.bindingOrder),
		selected:     slices.Clone(p.selected),
	}
}

// capture reads the current state of every item recorded in like.
func (d *Document) capture(like snapshot) snapshot {
	s := newSnapshot()
	for k := range like.shapes {
		s.shapes[k] = d.shapeState(k)
	}
	for k := range like.bindings {
		s.bindings[k] = d.bindingState(k)
	}
	for id := range like.assets {
		s.assets[id] = d.assetState(id)
	}
	for id := range like.pages {
		s.pages[id] = d.pageState(id)
	}
	return s
}

// changed reports whether the action did more than change the selection.
func (a *Action) changed() bool {
	if !reflect.DeepEqual(a.Data.shapes, a.Inverse.shapes) ||
		!reflect.DeepEqual(a.Data.bindings, a.Inverse.bindings) ||
		!reflect.DeepEqual(a.Data.assets, a.Inverse.assets) {
		return true
	}
	for id, before := range a.Inverse.pages {
		after := a.Data.pages[id]
		if (before == nil) != (after == nil) {
			return true
		}
		if before == nil {
			continue
		}
		if before.name != after.name || before.index != after.index ||
			!slices.Equal(before.order, after.order) ||
			!slices.Equal(before.bindingOrder, after.bindingOrder) {
			return true
		}
	}
	return false
}

// restore writes a snapshot back into the document.
func (d *Document) restore(s snapshot) {
	// Pages first so shapes have somewhere to go.
	for _, id := range sortedKeys(s.pages) {
		ps := s.pages[id]
		if ps != nil && d.Page(id) == nil {
			p := newPage(id, ps.name)
			idx := min(ps.index, len(d.pages))
			d.pages = slices.Insert(d.pages, idx, p)
		}
	}
	for k, props := range s.shapes {
		p := d.Page(k.page)
		if p == nil {
			continue
		}
		if props == nil {
			delete(p.shapes, k.id)
			continue
		}
		if cur := p.shapes[k.id]; cur != nil {
			cur.Update(shape.Diff(cur.Props(), *props))
			continue
		}
		if sh, err := d.reg.Restore(*props); err == nil {
			p.shapes[k.id] = sh
		}
	}
	for k, b := range s.bindings {
		p := d.Page(k.page)
		if p == nil {
			continue
		}
		if b == nil {
			delete(p.bindings, k.id)
		} else {
			p.bindings[k.id] = *b
		}
	}
	for id, a := range s.assets {
		if a == nil {
			delete(d.assets, id)
			d.assetOrder = slices.DeleteFunc(d.assetOrder, func(x string) bool { return x == id })
			continue
		}
		if _, ok := d.assets[id]; !ok {
			d.assetOrder = append(d.assetOrder, id)
		}
		d.assets[id] = *a
	}
	for _, id := range sortedKeys(s.pages) {
		ps := s.pages[id]
		if ps == nil {
			d.pages = slices.DeleteFunc(d.pages, func(p *Page) bool { return p.ID == id })
			continue
		}
		p := d.Page(id)
		p.Name = ps.name
		p.order = slices.Clone(ps.order)
		p.bindingOrder = slices.Clone(ps.bindingOrder)
		p.selected = slices.Clone(ps.selected)
	}
	if d.Page(d.currentPageID) == nil && len(d.pages) > 0 {
		d.currentPageID = d.pages[0].ID
	}
	d.pruneSession()
	for _, id := range sortedKeys(s.pages) {
		if d.Page(id) != nil {
			d.emit(ChangeRestore, id)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
