package document

import (
	"fmt"
	"slices"

	"whiteboard/shape"
)

// Model is the serialized document.
type Model struct {
	CurrentPageID string      `json:"currentPageId"`
	SelectedIDs   []string    `json:"selectedIds"`
	Pages         []PageModel `json:"pages"`
	Assets        []Asset     `json:"assets"`
}

// PageModel is the serialized page.
type PageModel struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Shapes   []shape.Props   `json:"shapes"`
	Bindings []shape.Binding `json:"bindings"`
}

// Serialize returns the document in the form Load accepts.
func (d *Document) Serialize() Model {
	m := Model{
		CurrentPageID: d.currentPageID,
		SelectedIDs:   d.CurrentPage().SelectedIDs(),
		Pages:         make([]PageModel, 0, len(d.pages)),
		Assets:        d.Assets(),
	}
	if m.SelectedIDs == nil {
		m.SelectedIDs = []string{}
	}
	for _, p := range d.pages {
		pm := PageModel{
			ID:       p.ID,
			Name:     p.Name,
			Shapes:   make([]shape.Props, 0, len(p.order)),
			Bindings: p.Bindings(),
		}
		for _, s := range p.Shapes() {
			pm.Shapes = append(pm.Shapes, s.Props())
		}
		m.Pages = append(m.Pages, pm)
	}
	return m
}

// Load replaces pages, assets and selection with m and clears the history
// and session. Bindings with a missing end and selected ids that are not on
// the current page are dropped. On error the document is unchanged.
func (d *Document) Load(m Model) error {
	if len(m.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalidModel)
	}
	pages := make([]*Page, 0, len(m.Pages))
	for _, pm := range m.Pages {
		if pm.ID == "" {
			return fmt.Errorf("%w: page without id", ErrInvalidModel)
		}
		if slices.ContainsFunc(pages, func(p *Page) bool { return p.ID == pm.ID }) {
			return fmt.Errorf("%w: duplicate page %q", ErrInvalidModel, pm.ID)
		}
		p := newPage(pm.ID, pm.Name)
		for _, props := range pm.Shapes {
			if props.ParentID == "" {
				props.ParentID = p.ID
			}
			s, err := d.reg.Restore(props)
			if err != nil {
				return fmt.Errorf("page %q: %w", pm.ID, err)
			}
			if p.shapes[s.ID()] != nil {
				return fmt.Errorf("%w: duplicate shape %q", ErrInvalidModel, s.ID())
			}
			p.shapes[s.ID()] = s
			p.order = append(p.order, s.ID())
		}
		for _, b := range pm.Bindings {
			if p.shapes[b.FromID] == nil || p.shapes[b.ToID] == nil {
				continue
			}
			p.putBinding(b)
		}
		pages = append(pages, p)
	}

	current := m.CurrentPageID
	idx := slices.IndexFunc(pages, func(p *Page) bool { return p.ID == current })
	if idx < 0 {
		idx = 0
	}
	pages[idx].selected = pages[idx].filter(m.SelectedIDs)

	assets := make(map[string]Asset, len(m.Assets))
	order := make([]string, 0, len(m.Assets))
	for _, a := range m.Assets {
		if a.ID == "" {
			continue
		}
		if _, ok := assets[a.ID]; !ok {
			order = append(order, a.ID)
		}
		assets[a.ID] = a
	}

	d.pages = pages
	d.currentPageID = pages[idx].ID
	d.assets = assets
	d.assetOrder = order
	d.session = Session{}
	d.ClearHistory()
	d.emit(ChangeLoad, d.currentPageID)
	return nil
}
