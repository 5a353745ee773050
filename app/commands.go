package app

import (
	"fmt"

	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/shape"
)

// LoadDocumentModel replaces the whole document. The active tool is reset
// and the history cleared.
func (a *App) LoadDocumentModel(m document.Model) error {
	a.current.Deactivate()
	err := a.doc.Load(m)
	a.inputs.Reset()
	a.brush = nil
	a.current.Activate(nil)
	if err != nil {
		err = fmt.Errorf("load document: %w", err)
		a.publish(Event{Name: EventError, Err: err})
		return err
	}
	a.dirty = false
	a.log.Info("loaded document with %d pages", len(m.Pages))
	return nil
}

// Serialized returns the document in the form LoadDocumentModel accepts.
func (a *App) Serialized() document.Model {
	return a.doc.Serialize()
}

// CreateShapes adds shapes on top of the current page as one undo step
// and returns their ids.
func (a *App) CreateShapes(props ...shape.Props) []string {
	shapes, err := a.doc.AddShapes(props...)
	if err != nil {
		a.publish(Event{Name: EventError, Err: fmt.Errorf("create shapes: %w", err)})
		return nil
	}
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID()
	}
	if len(ids) > 0 {
		a.publish(Event{Name: EventCreateShapes, IDs: ids})
	}
	a.settle()
	return ids
}

// CreateAssets adds assets and returns them with their ids filled in.
func (a *App) CreateAssets(assets ...document.Asset) []document.Asset {
	if len(assets) == 0 {
		return nil
	}
	added := a.doc.AddAssets(assets...)
	ids := make([]string, len(added))
	for i, asset := range added {
		ids[i] = asset.ID
	}
	a.publish(Event{Name: EventCreateAssets, IDs: ids})
	a.settle()
	return added
}

// InsertImage adds asset and an image shape showing it centered on a
// document point, as one undo step. It returns the shape id.
func (a *App) InsertImage(asset document.Asset, at geometry.Point) string {
	a.doc.Begin("insert image")
	added := a.doc.AddAssets(asset)
	p, err := a.shapes.Defaults(shape.TypeImage)
	if err != nil {
		a.doc.Cancel()
		a.publish(Event{Name: EventError, Err: fmt.Errorf("insert image: %w", err)})
		return ""
	}
	p.AssetID = added[0].ID
	if asset.Size[0] > 0 && asset.Size[1] > 0 {
		p.Size = asset.Size
	}
	p.Point = at.Sub(p.Size.Div(2))
	shapes, err := a.doc.AddShapes(p)
	if err != nil || len(shapes) == 0 {
		a.doc.Cancel()
		return ""
	}
	a.doc.SetSelectedShapes(shapes[0].ID())
	a.doc.Commit()
	a.publish(Event{Name: EventCreateAssets, IDs: []string{added[0].ID}})
	a.publish(Event{Name: EventCreateShapes, IDs: []string{shapes[0].ID()}})
	a.settle()
	return shapes[0].ID()
}

// DeleteShapes removes shapes. Unknown ids are ignored.
func (a *App) DeleteShapes(ids ...string) {
	page := a.doc.CurrentPage()
	var present []string
	for _, id := range ids {
		if page.Shape(id) != nil {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return
	}
	a.doc.DeleteShapes(present...)
	a.publish(Event{Name: EventDeleteShapes, IDs: present})
	a.settle()
}

// DeleteSelected removes the selected shapes.
func (a *App) DeleteSelected() {
	a.DeleteShapes(a.doc.SelectedIDs()...)
}

// DeleteAssets removes assets. Shapes using them keep the id.
func (a *App) DeleteAssets(ids ...string) {
	var present []string
	for _, id := range ids {
		if _, ok := a.doc.Asset(id); ok {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return
	}
	a.doc.DeleteAssets(present...)
	a.publish(Event{Name: EventDeleteAssets, IDs: present})
	a.settle()
}

// UpdateShapes patches shapes as one undo step and returns the ids that
// changed.
func (a *App) UpdateShapes(updates ...document.Update) []string {
	changed := a.doc.UpdateShapes(updates...)
	a.settle()
	return changed
}

// Undo reverts the last step. It does nothing while a gesture is open.
func (a *App) Undo() bool {
	if a.doc.InProgress() {
		return false
	}
	ok := a.doc.Undo()
	a.settle()
	return ok
}

// Redo reapplies the last undone step. It does nothing while a gesture is
// open.
func (a *App) Redo() bool {
	if a.doc.InProgress() {
		return false
	}
	ok := a.doc.Redo()
	a.settle()
	return ok
}

func (a *App) SelectAll() {
	page := a.doc.CurrentPage()
	var ids []string
	for _, s := range page.Shapes() {
		if p := s.Props(); p.ParentID == page.ID {
			ids = append(ids, s.ID())
		}
	}
	a.doc.SetSelectedShapes(ids...)
}

func (a *App) SelectNone() {
	a.doc.SetSelectedShapes()
}

// selection runs fn on the selected ids as one undo step.
func (a *App) selection(name string, fn func(ids []string)) {
	ids := a.doc.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	a.doc.Begin(name)
	fn(ids)
	a.doc.Commit()
	a.settle()
}

func (a *App) BringToFront() {
	a.selection("bring to front", func(ids []string) { a.doc.BringToFront(ids...) })
}

func (a *App) SendToBack() {
	a.selection("send to back", func(ids []string) { a.doc.SendToBack(ids...) })
}

func (a *App) BringForward() {
	a.selection("bring forward", func(ids []string) { a.doc.BringForward(ids...) })
}

func (a *App) SendBackward() {
	a.selection("send backward", func(ids []string) { a.doc.SendBackward(ids...) })
}

func (a *App) FlipHorizontal() {
	a.selection("flip horizontal", func(ids []string) { a.doc.FlipHorizontal(ids...) })
}

func (a *App) FlipVertical() {
	a.selection("flip vertical", func(ids []string) { a.doc.FlipVertical(ids...) })
}

// Group wraps the selection in a group.
func (a *App) Group() {
	a.selection("group", func(ids []string) {
		if _, err := a.doc.GroupShapes(ids...); err != nil {
			a.publish(Event{Name: EventError, Err: fmt.Errorf("group: %w", err)})
		}
	})
}

// Ungroup dissolves the selected groups.
func (a *App) Ungroup() {
	a.selection("ungroup", func(ids []string) { a.doc.Ungroup(ids...) })
}

// Direction is where Clone places the copy.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// cloneGap is the space left between the selection and its clone.
const cloneGap = 40

// Clone copies the selection beside itself in dir and selects the copy. A
// single cloned shape is connected to its copy with a bound line when both
// ends accept one. It returns the ids of the copied top-level shapes.
func (a *App) Clone(dir Direction) []string {
	sel := a.doc.SelectedIDs()
	if len(sel) == 0 || a.doc.InProgress() {
		return nil
	}
	c := a.clip(sel)
	b, ok := a.clipBounds(c)
	if !ok {
		return nil
	}
	var delta geometry.Point
	switch dir {
	case DirectionUp:
		delta = geometry.Pt(0, -(b.Height + cloneGap))
	case DirectionDown:
		delta = geometry.Pt(0, b.Height+cloneGap)
	case DirectionLeft:
		delta = geometry.Pt(-(b.Width + cloneGap), 0)
	default:
		delta = geometry.Pt(b.Width+cloneGap, 0)
	}

	a.doc.Begin("clone")
	ids, err := a.insertClip(c, delta)
	if err != nil || len(ids) == 0 {
		a.doc.Cancel()
		if err != nil {
			a.publish(Event{Name: EventError, Err: fmt.Errorf("clone: %w", err)})
		}
		return nil
	}
	created := ids
	if len(sel) == 1 && len(ids) == 1 {
		if id := a.connect(sel[0], ids[0]); id != "" {
			created = append(created, id)
		}
	}
	a.doc.SetSelectedShapes(ids...)
	a.doc.Commit()
	a.publish(Event{Name: EventCreateShapes, IDs: created})
	a.settle()
	return ids
}

// connect adds a line bound from source to target and returns its id, or
// "" when the shapes do not accept a binding.
func (a *App) connect(sourceID, targetID string) string {
	page := a.doc.CurrentPage()
	source, target := page.Shape(sourceID), page.Shape(targetID)
	if source == nil || target == nil || source.Type() == shape.TypeLine || target.Type() == shape.TypeLine {
		return ""
	}
	conn := shape.NewLineBinding(a.shapes, source, target)
	if conn == nil {
		return ""
	}
	if _, err := a.doc.AddShapes(conn.Line); err != nil {
		return ""
	}
	a.doc.AddBindings(conn.Bindings[:]...)
	return conn.Line.ID
}

// Connect joins two shapes with a bound line as one undo step. It returns
// "" when either shape refuses the binding.
func (a *App) Connect(sourceID, targetID string) string {
	a.doc.Begin("connect")
	id := a.connect(sourceID, targetID)
	if id == "" {
		a.doc.Cancel()
		return ""
	}
	a.doc.Commit()
	a.publish(Event{Name: EventCreateShapes, IDs: []string{id}})
	a.settle()
	return id
}

// AddPage appends a page, switches to it and returns its id.
func (a *App) AddPage(name string) string {
	p := a.doc.AddPage(name)
	a.SetCurrentPage(p.ID)
	return p.ID
}

// SetCurrentPage shows another page. The active tool is reset.
func (a *App) SetCurrentPage(id string) error {
	if a.doc.InProgress() {
		return fmt.Errorf("switch page: gesture in progress")
	}
	a.current.Deactivate()
	err := a.doc.SetCurrentPage(id)
	a.inputs.Reset()
	a.brush = nil
	a.current.Activate(nil)
	if err != nil {
		a.publish(Event{Name: EventError, Err: fmt.Errorf("switch page: %w", err)})
		return err
	}
	a.settle()
	return nil
}

// StepPage moves n pages forward or back from the current one, wrapping
// around.
func (a *App) StepPage(n int) {
	pages := a.doc.Pages()
	if len(pages) < 2 {
		return
	}
	cur := 0
	for i, p := range pages {
		if p.ID == a.doc.CurrentPageID() {
			cur = i
		}
	}
	next := ((cur+n)%len(pages) + len(pages)) % len(pages)
	a.SetCurrentPage(pages[next].ID)
}

func (a *App) ZoomIn() { a.viewport.ZoomIn() }

func (a *App) ZoomOut() { a.viewport.ZoomOut() }

func (a *App) ResetZoom() { a.viewport.ResetZoom() }

// ZoomToFit fits every shape on the current page in view.
func (a *App) ZoomToFit() {
	shapes := a.doc.CurrentPage().Shapes()
	if len(shapes) == 0 {
		return
	}
	bounds := make([]geometry.Bounds, len(shapes))
	for i, s := range shapes {
		bounds[i] = s.RotatedBounds()
	}
	a.viewport.ZoomToFit(geometry.Common(bounds...))
}

// ZoomToSelection centers the selection, zooming out if it does not fit
// and never zooming in past 1.
func (a *App) ZoomToSelection() {
	sel := a.doc.SelectedShapes()
	if len(sel) == 0 {
		return
	}
	bounds := make([]geometry.Bounds, len(sel))
	for i, s := range sel {
		bounds[i] = s.RotatedBounds()
	}
	a.viewport.ZoomToBounds(geometry.Common(bounds...))
}

// Save asks the host to save the document.
func (a *App) Save() {
	a.publishModel(EventSave, "")
}

// SaveAs asks the host to save the document under a new name. path may be
// empty to let the host choose.
func (a *App) SaveAs(path string) {
	a.publishModel(EventSaveAs, path)
}

// Persist publishes the document for storage right away.
func (a *App) Persist() {
	a.dirty = false
	a.publishModel(EventPersist, "")
}

// DropFiles hands files dropped at a screen point to the host.
func (a *App) DropFiles(screen geometry.Point, files ...File) {
	if len(files) == 0 {
		return
	}
	a.publish(Event{
		Name:  EventDropFiles,
		Files: files,
		Point: a.viewport.ScreenToDocument(screen),
	})
}
