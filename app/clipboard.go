package app

import (
	"encoding/json"
	"fmt"

	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/shape"
)

// pasteOffset is how far a paste without a position lands from the copied
// shapes.
const pasteOffset = 16

// Clip is the clipboard form of a set of shapes: their props, the bindings
// between them and the assets they use.
type Clip struct {
	Shapes   []shape.Props    `json:"shapes"`
	Bindings []shape.Binding  `json:"bindings"`
	Assets   []document.Asset `json:"assets"`
}

// clip collects ids, their descendants, the bindings among them and the
// assets they reference, back to front.
func (a *App) clip(ids []string) Clip {
	page := a.doc.CurrentPage()
	in := make(map[string]bool)
	for _, id := range page.Descendants(ids...) {
		in[id] = true
	}
	c := Clip{Shapes: []shape.Props{}, Bindings: []shape.Binding{}, Assets: []document.Asset{}}
	assets := make(map[string]bool)
	for _, s := range page.Shapes() {
		if !in[s.ID()] {
			continue
		}
		p := s.Props()
		c.Shapes = append(c.Shapes, p)
		if p.AssetID != "" && !assets[p.AssetID] {
			if asset, ok := a.doc.Asset(p.AssetID); ok {
				c.Assets = append(c.Assets, asset)
				assets[p.AssetID] = true
			}
		}
	}
	for _, b := range page.Bindings() {
		if in[b.FromID] && in[b.ToID] {
			c.Bindings = append(c.Bindings, b)
		}
	}
	return c
}

// clipBounds returns the common bounds of the clip's top-level shapes.
func (a *App) clipBounds(c Clip) (geometry.Bounds, bool) {
	ids := make(map[string]bool, len(c.Shapes))
	for _, p := range c.Shapes {
		ids[p.ID] = true
	}
	var bounds []geometry.Bounds
	for _, p := range c.Shapes {
		if ids[p.ParentID] {
			continue
		}
		s, err := a.shapes.Restore(p)
		if err != nil {
			continue
		}
		bounds = append(bounds, s.RotatedBounds())
	}
	if len(bounds) == 0 {
		return geometry.Bounds{}, false
	}
	return geometry.Common(bounds...), true
}

// insertClip adds a copy of c moved by delta with fresh ids, selects the
// copied top-level shapes and returns their ids. The caller brackets the
// history step.
func (a *App) insertClip(c Clip, delta geometry.Point) ([]string, error) {
	if len(c.Shapes) == 0 {
		return nil, nil
	}
	ids := make(map[string]string, len(c.Shapes))
	for _, p := range c.Shapes {
		ids[p.ID] = shape.NewID()
	}
	bindings := make(map[string]string, len(c.Bindings))
	var links []shape.Binding
	for _, b := range c.Bindings {
		from, okFrom := ids[b.FromID]
		to, okTo := ids[b.ToID]
		if !okFrom || !okTo {
			continue
		}
		nb := b
		nb.ID = shape.NewID()
		nb.FromID, nb.ToID = from, to
		bindings[b.ID] = nb.ID
		links = append(links, nb)
	}

	var missing []document.Asset
	for _, asset := range c.Assets {
		if _, ok := a.doc.Asset(asset.ID); !ok {
			missing = append(missing, asset)
		}
	}
	if len(missing) > 0 {
		a.doc.AddAssets(missing...)
	}

	props := make([]shape.Props, 0, len(c.Shapes))
	var top []string
	for _, p := range c.Shapes {
		n := p.Clone()
		n.ID = ids[p.ID]
		if parent, ok := ids[p.ParentID]; ok {
			n.ParentID = parent
		} else {
			n.ParentID = ""
			top = append(top, n.ID)
		}
		n.Children = n.Children[:0]
		for _, child := range p.Children {
			if id, ok := ids[child]; ok {
				n.Children = append(n.Children, id)
			}
		}
		for k, h := range n.Handles {
			h.BindingID = bindings[h.BindingID]
			n.Handles[k] = h
		}
		n.Point = n.Point.Add(delta)
		props = append(props, n)
	}
	if _, err := a.doc.InsertShapes(props...); err != nil {
		return nil, err
	}
	if len(links) > 0 {
		a.doc.AddBindings(links...)
	}
	a.doc.SetSelectedShapes(top...)
	return top, nil
}

// Copy serializes the selection for the clipboard.
func (a *App) Copy() ([]byte, error) {
	sel := a.doc.SelectedIDs()
	if len(sel) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(a.clip(sel))
	if err != nil {
		return nil, fmt.Errorf("copy: %w", err)
	}
	return data, nil
}

// Paste adds the shapes in data next to where they were copied from.
func (a *App) Paste(data []byte) ([]string, error) {
	return a.paste(data, func(geometry.Bounds) geometry.Point {
		return geometry.Pt(pasteOffset, pasteOffset)
	})
}

// PasteAt adds the shapes in data centered on a screen point.
func (a *App) PasteAt(data []byte, screen geometry.Point) ([]string, error) {
	at := a.viewport.ScreenToDocument(screen)
	return a.paste(data, func(b geometry.Bounds) geometry.Point {
		return at.Sub(b.Center())
	})
}

func (a *App) paste(data []byte, offset func(geometry.Bounds) geometry.Point) ([]string, error) {
	var c Clip
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("paste: %w", err)
	}
	b, ok := a.clipBounds(c)
	if !ok {
		return nil, nil
	}
	a.doc.Begin("paste")
	ids, err := a.insertClip(c, offset(b))
	if err != nil {
		a.doc.Cancel()
		a.publish(Event{Name: EventError, Err: fmt.Errorf("paste: %w", err)})
		return nil, err
	}
	a.doc.Commit()
	a.publish(Event{Name: EventCreateShapes, IDs: ids})
	a.settle()
	return ids, nil
}
