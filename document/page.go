package document

import (
	"slices"

	"whiteboard/shape"
)

// Page owns an ordered set of shapes (front is last) and the bindings
// between them.
type Page struct {
	ID   string
	Name string

	shapes       map[string]*shape.Shape
	order        []string
	bindings     map[string]shape.Binding
	bindingOrder []string
	selected     []string
}

func newPage(id, name string) *Page {
	return &Page{
		ID:       id,
		Name:     name,
		shapes:   make(map[string]*shape.Shape),
		bindings: make(map[string]shape.Binding),
	}
}

// Shape returns the shape with id, or nil.
func (p *Page) Shape(id string) *shape.Shape {
	return p.shapes[id]
}

// Shapes returns the shapes back to front.
func (p *Page) Shapes() []*shape.Shape {
	out := make([]*shape.Shape, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.shapes[id])
	}
	return out
}

// Order returns the shape ids back to front.
func (p *Page) Order() []string {
	return slices.Clone(p.order)
}

// Len returns the number of shapes.
func (p *Page) Len() int { return len(p.order) }

// Index returns the z position of id, or -1.
func (p *Page) Index(id string) int {
	return slices.Index(p.order, id)
}

func (p *Page) Binding(id string) (shape.Binding, bool) {
	b, ok := p.bindings[id]
	return b, ok
}

// Bindings returns the bindings in insertion order.
func (p *Page) Bindings() []shape.Binding {
	out := make([]shape.Binding, 0, len(p.bindingOrder))
	for _, id := range p.bindingOrder {
		out = append(out, p.bindings[id])
	}
	return out
}

// BindingsTo returns the bindings whose target is id.
func (p *Page) BindingsTo(id string) []shape.Binding {
	var out []shape.Binding
	for _, bid := range p.bindingOrder {
		if b := p.bindings[bid]; b.ToID == id {
			out = append(out, b)
		}
	}
	return out
}

// BindingsFrom returns the bindings owned by the line id.
func (p *Page) BindingsFrom(id string) []shape.Binding {
	var out []shape.Binding
	for _, bid := range p.bindingOrder {
		if b := p.bindings[bid]; b.FromID == id {
			out = append(out, b)
		}
	}
	return out
}

// SelectedIDs returns the selection in the order it was made.
func (p *Page) SelectedIDs() []string {
	return slices.Clone(p.selected)
}

// SelectedShapes returns the selected shapes back to front.
func (p *Page) SelectedShapes() []*shape.Shape {
	var out []*shape.Shape
	for _, id := range p.order {
		if slices.Contains(p.selected, id) {
			out = append(out, p.shapes[id])
		}
	}
	return out
}

func (p *Page) IsSelected(id string) bool {
	return slices.Contains(p.selected, id)
}

// Children returns the existing children of a group.
func (p *Page) Children(id string) []*shape.Shape {
	s := p.shapes[id]
	if s == nil {
		return nil
	}
	var out []*shape.Shape
	for _, cid := range s.Props().Children {
		if c := p.shapes[cid]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Descendants expands groups in ids to their children, recursively. Groups
// themselves are included.
func (p *Page) Descendants(ids ...string) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if seen[id] || p.shapes[id] == nil {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, c := range p.Children(id) {
			walk(c.ID())
		}
	}
	for _, id := range ids {
		walk(id)
	}
	return out
}

// filter keeps the ids present on the page, without duplicates.
func (p *Page) filter(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p.shapes[id] != nil && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (p *Page) removeBinding(id string) {
	if _, ok := p.bindings[id]; !ok {
		return
	}
	delete(p.bindings, id)
	p.bindingOrder = slices.DeleteFunc(p.bindingOrder, func(b string) bool { return b == id })
}

func (p *Page) putBinding(b shape.Binding) {
	if _, ok := p.bindings[b.ID]; !ok {
		p.bindingOrder = append(p.bindingOrder, b.ID)
	}
	p.bindings[b.ID] = b
}
