package document

import (
	"maps"
	"slices"

	"whiteboard/geometry"
	"whiteboard/shape"
)

// Update pairs a shape id with a patch.
type Update struct {
	ID    string
	Patch shape.Patch
}

// AddShapes builds shapes from props and puts them on top of the current
// page. Zero fields take the type's defaults, missing ids are generated and
// a missing parent means the page. No shape is added if any props name an
// unknown type.
func (d *Document) AddShapes(props ...shape.Props) ([]*shape.Shape, error) {
	return d.addShapes(d.reg.New, props)
}

// InsertShapes is AddShapes for complete props, such as copied shapes.
// Nothing is defaulted.
func (d *Document) InsertShapes(props ...shape.Props) ([]*shape.Shape, error) {
	return d.addShapes(d.reg.Restore, props)
}

func (d *Document) addShapes(build func(shape.Props) (*shape.Shape, error), props []shape.Props) ([]*shape.Shape, error) {
	p := d.CurrentPage()
	built := make([]*shape.Shape, 0, len(props))
	for _, pr := range props {
		if pr.ParentID == "" {
			pr.ParentID = p.ID
		}
		s, err := build(pr)
		if err != nil {
			return nil, err
		}
		if p.shapes[s.ID()] != nil {
			continue
		}
		built = append(built, s)
	}
	if len(built) == 0 {
		return nil, nil
	}

	d.Begin("add shapes")
	defer d.Commit()
	ids := make([]string, 0, len(built))
	for _, s := range built {
		d.touchShape(p.ID, s.ID())
		p.shapes[s.ID()] = s
		p.order = append(p.order, s.ID())
		ids = append(ids, s.ID())
	}
	for _, s := range built {
		d.adopt(p, s)
	}
	d.emit(ChangeShapesAdded, p.ID, ids...)
	d.refreshGroups(p, ids)
	return built, nil
}

// adopt registers s with its parent group, or reparents it to the page when
// the parent is not a group on this page.
func (d *Document) adopt(p *Page, s *shape.Shape) {
	parentID := s.Props().ParentID
	if parentID == p.ID {
		return
	}
	parent := p.shapes[parentID]
	if parent == nil || parent.Type() != shape.TypeGroup {
		s.Update(shape.Patch{ParentID: shape.Ptr(p.ID)})
		return
	}
	children := parent.Props().Children
	if !slices.Contains(children, s.ID()) {
		d.touchShape(p.ID, parentID)
		children = append(children, s.ID())
		parent.Update(shape.Patch{Children: &children})
	}
}

// UpdateShapes applies patches to shapes on the current page and returns the
// ids that changed. Unknown ids are ignored. Bound handles of changed lines,
// and of lines bound to changed shapes, are re-derived and groups are
// refitted around their children.
func (d *Document) UpdateShapes(updates ...Update) []string {
	p := d.CurrentPage()
	d.Begin("update shapes")
	defer d.Commit()
	var changed []string
	for _, u := range updates {
		s := p.shapes[u.ID]
		if s == nil {
			continue
		}
		d.touchShape(p.ID, u.ID)
		v := s.Version()
		s.Update(u.Patch)
		if s.Version() != v {
			changed = append(changed, u.ID)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	d.emit(ChangeShapesUpdated, p.ID, changed...)
	d.afterUpdate(p, changed)
	return changed
}

func (d *Document) afterUpdate(p *Page, ids []string) {
	var lines []string
	for _, id := range ids {
		if len(p.BindingsFrom(id)) > 0 && !slices.Contains(lines, id) {
			lines = append(lines, id)
		}
		for _, b := range p.BindingsTo(id) {
			if !slices.Contains(lines, b.FromID) {
				lines = append(lines, b.FromID)
			}
		}
	}
	var moved []string
	for _, id := range lines {
		if d.updateBoundLine(p, id) {
			moved = append(moved, id)
		}
	}
	if len(moved) > 0 {
		d.emit(ChangeShapesUpdated, p.ID, moved...)
	}
	d.refreshGroups(p, append(ids, moved...))
}

// updateBoundLine moves the bound handles of a line onto their targets.
func (d *Document) updateBoundLine(p *Page, lineID string) bool {
	line := p.shapes[lineID]
	if line == nil {
		return false
	}
	props := line.Props()
	handles := maps.Clone(props.Handles)
	for _, b := range p.BindingsFrom(lineID) {
		target := p.shapes[b.ToID]
		h, ok := handles[b.HandleID]
		if target == nil || !ok {
			continue
		}
		otherID := shape.HandleEnd
		if b.HandleID == shape.HandleEnd {
			otherID = shape.HandleStart
		}
		other := props.Point.Add(handles[otherID].Point)
		h.Point = target.BoundHandlePoint(b, other).Sub(props.Point)
		handles[b.HandleID] = h
	}
	if maps.Equal(handles, props.Handles) {
		return false
	}
	d.touchShape(p.ID, lineID)
	v := line.Version()
	line.Update(shape.Patch{Handles: handles})
	return line.Version() != v
}

// refreshGroups refits every group above ids around its children.
func (d *Document) refreshGroups(p *Page, ids []string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		s := p.shapes[id]
		for s != nil {
			parent := p.shapes[s.Props().ParentID]
			if parent == nil || parent.Type() != shape.TypeGroup || seen[parent.ID()] {
				break
			}
			seen[parent.ID()] = true
			d.fitGroup(p, parent)
			s = parent
		}
	}
}

func (d *Document) fitGroup(p *Page, g *shape.Shape) {
	children := p.Children(g.ID())
	if len(children) == 0 {
		return
	}
	bounds := make([]geometry.Bounds, len(children))
	for i, c := range children {
		bounds[i] = c.RotatedBounds()
	}
	b := geometry.Common(bounds...)
	patch := shape.Patch{Point: shape.Ptr(b.Min()), Size: shape.Ptr(b.Size())}
	d.touchShape(p.ID, g.ID())
	v := g.Version()
	g.Update(patch)
	if g.Version() != v {
		d.emit(ChangeShapesUpdated, p.ID, g.ID())
	}
}

// MoveShapes translates shapes, and the children of groups among them, by
// delta. Bindings from moved lines to shapes that stay put are removed.
func (d *Document) MoveShapes(ids []string, delta geometry.Point) []string {
	p := d.CurrentPage()
	all := p.Descendants(ids...)
	if len(all) == 0 || delta == (geometry.Point{}) {
		return nil
	}
	d.Begin("move shapes")
	defer d.Commit()
	var stale []string
	for _, id := range all {
		for _, b := range p.BindingsFrom(id) {
			if !slices.Contains(all, b.ToID) {
				stale = append(stale, b.ID)
			}
		}
	}
	d.DeleteBindings(stale...)
	updates := make([]Update, 0, len(all))
	for _, id := range all {
		updates = append(updates, Update{ID: id, Patch: p.shapes[id].Translate(delta)})
	}
	return d.UpdateShapes(updates...)
}

// DeleteShapes removes shapes and the children of groups among them. Bindings
// to or from a removed shape go with it, a group left without children is
// removed too, and the ids leave the selection and session state.
func (d *Document) DeleteShapes(ids ...string) {
	p := d.CurrentPage()
	all := p.Descendants(ids...)
	if len(all) == 0 {
		return
	}
	d.Begin("delete shapes")
	defer d.Commit()

	gone := make(map[string]bool, len(all))
	for _, id := range all {
		gone[id] = true
	}

	var unbound []string
	for _, b := range p.Bindings() {
		if gone[b.FromID] || gone[b.ToID] {
			unbound = append(unbound, b.ID)
		}
	}
	d.DeleteBindings(unbound...)

	var emptied, refit []string
	for _, id := range all {
		parentID := p.shapes[id].Props().ParentID
		parent := p.shapes[parentID]
		if parent == nil || gone[parentID] || parent.Type() != shape.TypeGroup {
			continue
		}
		children := slices.DeleteFunc(parent.Props().Children, func(c string) bool { return gone[c] })
		d.touchShape(p.ID, parentID)
		parent.Update(shape.Patch{Children: &children})
		if len(children) == 0 {
			emptied = append(emptied, parentID)
		} else {
			refit = append(refit, children[0])
		}
	}

	for _, id := range all {
		d.touchShape(p.ID, id)
		delete(p.shapes, id)
	}
	p.order = slices.DeleteFunc(p.order, func(id string) bool { return gone[id] })
	p.selected = slices.DeleteFunc(p.selected, func(id string) bool { return gone[id] })
	d.pruneSession()
	d.emit(ChangeShapesDeleted, p.ID, all...)

	if len(emptied) > 0 {
		d.DeleteShapes(emptied...)
	}
	d.refreshGroups(p, refit)
}

// GroupShapes wraps two or more shapes in a new group placed below the
// lowest of them, and selects it.
func (d *Document) GroupShapes(ids ...string) (*shape.Shape, error) {
	p := d.CurrentPage()
	ids = p.filter(ids)
	if len(ids) < 2 {
		return nil, nil
	}
	slices.SortFunc(ids, func(a, b string) int { return p.Index(a) - p.Index(b) })

	d.Begin("group")
	defer d.Commit()

	g, err := d.reg.New(shape.Props{Type: shape.TypeGroup, ParentID: p.ID, Children: ids})
	if err != nil {
		return nil, err
	}
	d.touchShape(p.ID, g.ID())
	for _, id := range ids {
		s := p.shapes[id]
		if old := p.shapes[s.Props().ParentID]; old != nil && old.Type() == shape.TypeGroup {
			d.touchShape(p.ID, old.ID())
			rest := slices.DeleteFunc(old.Props().Children, func(c string) bool { return c == id })
			old.Update(shape.Patch{Children: &rest})
		}
		d.touchShape(p.ID, id)
		s.Update(shape.Patch{ParentID: shape.Ptr(g.ID())})
	}
	p.shapes[g.ID()] = g
	p.order = slices.Insert(p.order, p.Index(ids[0]), g.ID())
	d.emit(ChangeShapesAdded, p.ID, g.ID())
	d.fitGroup(p, g)
	d.SetSelectedShapes(g.ID())
	return g, nil
}

// Ungroup dissolves groups, handing their children to the group's parent,
// and selects the children.
func (d *Document) Ungroup(ids ...string) {
	p := d.CurrentPage()
	d.Begin("ungroup")
	defer d.Commit()
	var freed, removed []string
	for _, id := range p.filter(ids) {
		g := p.shapes[id]
		if g.Type() != shape.TypeGroup {
			continue
		}
		parentID := g.Props().ParentID
		for _, c := range p.Children(id) {
			d.touchShape(p.ID, c.ID())
			c.Update(shape.Patch{ParentID: shape.Ptr(parentID)})
			d.adopt(p, c)
			freed = append(freed, c.ID())
		}
		d.touchShape(p.ID, id)
		delete(p.shapes, id)
		removed = append(removed, id)
	}
	if len(removed) == 0 {
		return
	}
	p.order = slices.DeleteFunc(p.order, func(id string) bool { return slices.Contains(removed, id) })
	p.selected = slices.DeleteFunc(p.selected, func(id string) bool { return slices.Contains(removed, id) })
	d.pruneSession()
	d.emit(ChangeShapesDeleted, p.ID, removed...)
	d.refreshGroups(p, freed)
	d.SetSelectedShapes(freed...)
}

// AddBindings attaches line handles to target shapes. Bindings whose line,
// handle or target is missing are dropped. A handle holds one binding, so
// an existing binding on the same handle is replaced.
func (d *Document) AddBindings(bindings ...shape.Binding) []shape.Binding {
	p := d.CurrentPage()
	d.Begin("add bindings")
	defer d.Commit()
	var added []shape.Binding
	for _, b := range bindings {
		line, target := p.shapes[b.FromID], p.shapes[b.ToID]
		if line == nil || target == nil || line.ID() == target.ID() {
			continue
		}
		h, ok := line.Props().Handles[b.HandleID]
		if !ok {
			continue
		}
		if b.ID == "" {
			b.ID = shape.NewID()
		}
		if b.Type == "" {
			b.Type = shape.BindingTypeLine
		}
		if h.BindingID != "" && h.BindingID != b.ID {
			d.DeleteBindings(h.BindingID)
			h.BindingID = ""
		}
		d.touchBinding(p.ID, b.ID)
		p.putBinding(b)
		d.touchShape(p.ID, line.ID())
		h.BindingID = b.ID
		line.Update(shape.Patch{Handles: map[string]shape.LineHandle{b.HandleID: h}})
		d.updateBoundLine(p, line.ID())
		added = append(added, b)
	}
	if len(added) > 0 {
		ids := make([]string, len(added))
		for i, b := range added {
			ids[i] = b.ID
		}
		d.emit(ChangeBindings, p.ID, ids...)
	}
	return added
}

// DeleteBindings removes bindings and clears the handles that held them.
func (d *Document) DeleteBindings(ids ...string) {
	p := d.CurrentPage()
	d.Begin("delete bindings")
	defer d.Commit()
	var removed []string
	for _, id := range ids {
		b, ok := p.bindings[id]
		if !ok {
			continue
		}
		d.touchBinding(p.ID, id)
		p.removeBinding(id)
		removed = append(removed, id)
		if line := p.shapes[b.FromID]; line != nil {
			if h, ok := line.Props().Handles[b.HandleID]; ok && h.BindingID == id {
				d.touchShape(p.ID, line.ID())
				h.BindingID = ""
				line.Update(shape.Patch{Handles: map[string]shape.LineHandle{b.HandleID: h}})
			}
		}
	}
	if len(removed) > 0 {
		d.emit(ChangeBindings, p.ID, removed...)
	}
}
