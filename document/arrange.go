package document

import (
	"slices"

	"whiteboard/geometry"
	"whiteboard/shape"
)

// BringToFront moves shapes to the top, keeping their relative order. A
// group moves with its children.
func (d *Document) BringToFront(ids ...string) {
	p := d.CurrentPage()
	sel := idSet(p.Descendants(p.filter(ids)...))
	front := slices.DeleteFunc(p.Order(), func(id string) bool { return !sel[id] })
	rest := slices.DeleteFunc(p.Order(), func(id string) bool { return sel[id] })
	d.reorder(p, append(rest, front...))
}

// SendToBack moves shapes to the bottom, keeping their relative order.
func (d *Document) SendToBack(ids ...string) {
	p := d.CurrentPage()
	sel := idSet(p.Descendants(p.filter(ids)...))
	back := slices.DeleteFunc(p.Order(), func(id string) bool { return !sel[id] })
	rest := slices.DeleteFunc(p.Order(), func(id string) bool { return sel[id] })
	d.reorder(p, append(back, rest...))
}

// block is a shape together with its descendants, arranged as one unit.
type block struct {
	ids    map[string]bool
	bounds geometry.Bounds
}

// blocks splits ids into top-level blocks. An id inside another selected
// group belongs to that group's block.
func (p *Page) blocks(ids []string) ([]block, map[string]bool) {
	ids = p.filter(ids)
	covered := make(map[string]bool)
	for _, id := range ids {
		for _, child := range p.Descendants(id)[1:] {
			covered[child] = true
		}
	}
	var out []block
	sel := make(map[string]bool)
	for _, id := range ids {
		if covered[id] {
			continue
		}
		b := block{ids: idSet(p.Descendants(id)), bounds: p.shapes[id].RotatedBounds()}
		for m := range b.ids {
			sel[m] = true
		}
		out = append(out, b)
	}
	return out, sel
}

// span returns the lowest and highest index of b in order.
func (b block) span(order []string) (lo, hi int) {
	lo, hi = -1, -1
	for i, id := range order {
		if b.ids[id] {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi
}

// moveBlock takes b out of order and puts it right above or below anchor.
func moveBlock(order []string, b block, anchor string, above bool) []string {
	var members []string
	rest := make([]string, 0, len(order))
	for _, id := range order {
		if b.ids[id] {
			members = append(members, id)
		} else {
			rest = append(rest, id)
		}
	}
	k := slices.Index(rest, anchor)
	if above {
		k++
	}
	return slices.Insert(rest, k, members...)
}

// BringForward moves each shape above the nearest unselected shape in front
// of it that overlaps it. When nothing in front overlaps, it moves above
// the next unselected shape.
func (d *Document) BringForward(ids ...string) {
	p := d.CurrentPage()
	blocks, sel := p.blocks(ids)
	order := p.Order()
	slices.SortFunc(blocks, func(a, b block) int {
		_, ha := a.span(order)
		_, hb := b.span(order)
		return hb - ha
	})
	for _, b := range blocks {
		_, hi := b.span(order)
		target := d.neighbour(p, order, sel, b.bounds, hi+1, len(order), 1)
		if target < 0 {
			continue
		}
		order = moveBlock(order, b, order[target], true)
	}
	d.reorder(p, order)
}

// SendBackward mirrors BringForward.
func (d *Document) SendBackward(ids ...string) {
	p := d.CurrentPage()
	blocks, sel := p.blocks(ids)
	order := p.Order()
	slices.SortFunc(blocks, func(a, b block) int {
		la, _ := a.span(order)
		lb, _ := b.span(order)
		return la - lb
	})
	for _, b := range blocks {
		lo, _ := b.span(order)
		target := d.neighbour(p, order, sel, b.bounds, lo-1, -1, -1)
		if target < 0 {
			continue
		}
		order = moveBlock(order, b, order[target], false)
	}
	d.reorder(p, order)
}

// neighbour walks order from start toward stop and returns the index of the
// first unselected shape overlapping bounds, or else the first unselected
// one. Group records are skipped since only their children are drawn.
func (d *Document) neighbour(p *Page, order []string, sel map[string]bool, bounds geometry.Bounds, start, stop, step int) int {
	fallback := -1
	for j := start; j != stop; j += step {
		other := order[j]
		if sel[other] || p.shapes[other].Type() == shape.TypeGroup {
			continue
		}
		if fallback < 0 {
			fallback = j
		}
		if bounds.Collides(p.shapes[other].RotatedBounds()) {
			return j
		}
	}
	return fallback
}

func (d *Document) reorder(p *Page, order []string) {
	if slices.Equal(order, p.order) {
		return
	}
	d.Begin("reorder")
	defer d.Commit()
	d.touchPage(p.ID)
	p.order = order
	d.emit(ChangeOrder, p.ID, order...)
}

// FlipHorizontal mirrors shapes about the vertical center line of their
// common bounds. Shapes that cannot flip stay where they are.
func (d *Document) FlipHorizontal(ids ...string) {
	d.flip(ids, true)
}

// FlipVertical mirrors shapes about the horizontal center line of their
// common bounds.
func (d *Document) FlipVertical(ids ...string) {
	d.flip(ids, false)
}

func (d *Document) flip(ids []string, horizontal bool) {
	p := d.CurrentPage()
	ids = p.filter(ids)
	if len(ids) == 0 {
		return
	}
	bounds := make([]geometry.Bounds, len(ids))
	for i, id := range ids {
		bounds[i] = p.shapes[id].RotatedBounds()
	}
	common := geometry.Common(bounds...)

	var updates []Update
	for _, id := range p.Descendants(ids...) {
		patch := p.shapes[id].Flip(common, horizontal)
		if !patch.IsEmpty() {
			updates = append(updates, Update{ID: id, Patch: patch})
		}
	}
	d.Begin("flip")
	defer d.Commit()
	d.UpdateShapes(updates...)
}

func idSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
