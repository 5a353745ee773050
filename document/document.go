// Package document holds the whiteboard document: pages of ordered shapes,
// the bindings between them, the shared assets, selection and session state,
// and the undo history.
//
// Every mutation goes through a Document method. Mutations are journaled
// into the history and announced as a Change on the change stream.
package document

import (
	"errors"
	"fmt"
	"slices"

	"whiteboard/geometry"
	"whiteboard/shape"
)

var (
	// ErrNotFound is returned when a page id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidModel is returned when a serialized model cannot be loaded.
	ErrInvalidModel = errors.New("invalid document model")
)

// DefaultHistoryLimit is the number of undo steps kept when no limit is set.
const DefaultHistoryLimit = 100

// Asset is an external resource referenced by shapes.
type Asset struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Src  string         `json:"src"`
	Size geometry.Point `json:"size"`
}

// Session is the runtime state that is never persisted.
type Session struct {
	HoveredID    string
	EditingID    string
	ActivatedIDs []string
}

// Document owns pages, bindings, assets and selection.
type Document struct {
	reg           *shape.Registry
	pages         []*Page
	currentPageID string
	assets        map[string]Asset
	assetOrder    []string
	session       Session
	history       history

	listeners    map[int]func(Change)
	nextListener int
}

// Option configures a Document.
type Option func(*Document)

// WithHistoryLimit caps the undo stack. Zero or less keeps the default.
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.history.limit = n
		}
	}
}

// New creates a document with one empty page.
func New(reg *shape.Registry, opts ...Option) *Document {
	d := &Document{
		reg:       reg,
		assets:    make(map[string]Asset),
		listeners: make(map[int]func(Change)),
		history:   history{limit: DefaultHistoryLimit},
	}
	for _, opt := range opts {
		opt(d)
	}
	p := newPage(shape.NewID(), "Page 1")
	d.pages = []*Page{p}
	d.currentPageID = p.ID
	return d
}

// Registry returns the shape registry the document builds shapes with.
func (d *Document) Registry() *shape.Registry { return d.reg }

// OnChange registers fn for every change and returns a function that
// removes it.
func (d *Document) OnChange(fn func(Change)) func() {
	id := d.nextListener
	d.nextListener++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

func (d *Document) emit(kind ChangeKind, pageID string, ids ...string) {
	if len(d.listeners) == 0 {
		return
	}
	c := Change{Kind: kind, PageID: pageID, IDs: ids}
	keys := make([]int, 0, len(d.listeners))
	for k := range d.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := d.listeners[k]; ok {
			fn(c)
		}
	}
}

// CurrentPage returns the open page.
func (d *Document) CurrentPage() *Page {
	return d.Page(d.currentPageID)
}

func (d *Document) CurrentPageID() string { return d.currentPageID }

// Page returns the page with id, or nil.
func (d *Document) Page(id string) *Page {
	for _, p := range d.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Pages returns the pages in order.
func (d *Document) Pages() []*Page {
	return slices.Clone(d.pages)
}

// AddPage appends an empty page and returns it. The current page does not
// change.
func (d *Document) AddPage(name string) *Page {
	d.Begin("add page")
	defer d.Commit()
	p := newPage(shape.NewID(), name)
	if p.Name == "" {
		p.Name = fmt.Sprintf("Page %d", len(d.pages)+1)
	}
	d.touchPage(p.ID)
	d.pages = append(d.pages, p)
	d.emit(ChangePages, p.ID, p.ID)
	return p
}

// SetCurrentPage switches the open page and clears session state.
func (d *Document) SetCurrentPage(id string) error {
	if d.Page(id) == nil {
		return fmt.Errorf("page %q: %w", id, ErrNotFound)
	}
	if id == d.currentPageID {
		return nil
	}
	d.currentPageID = id
	d.session = Session{}
	d.emit(ChangePages, id, id)
	return nil
}

// Session returns a copy of the session state.
func (d *Document) Session() Session {
	s := d.session
	s.ActivatedIDs = slices.Clone(d.session.ActivatedIDs)
	return s
}

// SetHoveredShape sets or clears (with "") the hovered shape.
func (d *Document) SetHoveredShape(id string) {
	if id != "" && d.CurrentPage().Shape(id) == nil {
		id = ""
	}
	if d.session.HoveredID == id {
		return
	}
	d.session.HoveredID = id
	d.emit(ChangeSession, d.currentPageID, id)
}

// SetEditingShape sets or clears (with "") the shape being edited. Shapes
// whose variant cannot edit are ignored.
func (d *Document) SetEditingShape(id string) {
	if id != "" {
		s := d.CurrentPage().Shape(id)
		if s == nil || !s.Caps().CanEdit {
			return
		}
	}
	if d.session.EditingID == id {
		return
	}
	d.session.EditingID = id
	d.emit(ChangeSession, d.currentPageID, id)
}

// SetActivatedShapes replaces the activated set. Unknown ids are dropped.
func (d *Document) SetActivatedShapes(ids ...string) {
	d.session.ActivatedIDs = d.CurrentPage().filter(ids)
	d.emit(ChangeSession, d.currentPageID, d.session.ActivatedIDs...)
}

// SetSelectedShapes replaces the selection. Unknown ids are dropped.
func (d *Document) SetSelectedShapes(ids ...string) {
	p := d.CurrentPage()
	next := p.filter(ids)
	if slices.Equal(next, p.selected) {
		return
	}
	d.touchPage(p.ID)
	p.selected = next
	d.emit(ChangeSelection, p.ID, next...)
}

// SelectedIDs returns the selection of the current page.
func (d *Document) SelectedIDs() []string {
	return d.CurrentPage().SelectedIDs()
}

// SelectedShapes returns the selected shapes back to front.
func (d *Document) SelectedShapes() []*shape.Shape {
	return d.CurrentPage().SelectedShapes()
}

// Shape looks up a shape on the current page.
func (d *Document) Shape(id string) *shape.Shape {
	return d.CurrentPage().Shape(id)
}

// Asset looks up an asset.
func (d *Document) Asset(id string) (Asset, bool) {
	a, ok := d.assets[id]
	return a, ok
}

// Assets returns the assets in insertion order.
func (d *Document) Assets() []Asset {
	out := make([]Asset, 0, len(d.assetOrder))
	for _, id := range d.assetOrder {
		out = append(out, d.assets[id])
	}
	return out
}

// AddAssets adds or replaces assets. Assets without an id get one.
func (d *Document) AddAssets(assets ...Asset) []Asset {
	d.Begin("add assets")
	defer d.Commit()
	out := make([]Asset, 0, len(assets))
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			a.ID = shape.NewID()
		}
		d.touchAsset(a.ID)
		if _, ok := d.assets[a.ID]; !ok {
			d.assetOrder = append(d.assetOrder, a.ID)
		}
		d.assets[a.ID] = a
		out = append(out, a)
		ids = append(ids, a.ID)
	}
	d.emit(ChangeAssets, d.currentPageID, ids...)
	return out
}

// DeleteAssets removes assets. Shapes that reference them keep the id and
// render as missing.
func (d *Document) DeleteAssets(ids ...string) {
	d.Begin("delete assets")
	defer d.Commit()
	var removed []string
	for _, id := range ids {
		if _, ok := d.assets[id]; !ok {
			continue
		}
		d.touchAsset(id)
		delete(d.assets, id)
		d.assetOrder = slices.DeleteFunc(d.assetOrder, func(a string) bool { return a == id })
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		d.emit(ChangeAssets, d.currentPageID, removed...)
	}
}

// pruneSession drops session ids that no longer exist on the current page.
func (d *Document) pruneSession() {
	p := d.CurrentPage()
	if p.Shape(d.session.HoveredID) == nil {
		d.session.HoveredID = ""
	}
	if p.Shape(d.session.EditingID) == nil {
		d.session.EditingID = ""
	}
	d.session.ActivatedIDs = p.filter(d.session.ActivatedIDs)
}
