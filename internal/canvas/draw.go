package canvas

import (
	"strings"

	"whiteboard/app"
	"whiteboard/geometry"
	"whiteboard/shape"
)

// Renderer supplies app components that draw into its current canvas.
type Renderer struct {
	Canvas *Canvas
}

// Components returns one component per type in reg.
func (r *Renderer) Components(reg *shape.Registry) app.Components {
	c := make(app.Components)
	for _, t := range reg.Types() {
		c[t] = app.ComponentFunc(func(s *shape.Shape, st app.RenderState) {
			if r.Canvas != nil {
				r.Canvas.Draw(s, st)
			}
		})
	}
	return c
}

func markOf(st app.RenderState) Mark {
	switch {
	case st.Selected:
		return MarkSelected
	case st.Hovered:
		return MarkHovered
	default:
		return MarkNone
	}
}

// Draw renders one shape.
func (c *Canvas) Draw(s *shape.Shape, st app.RenderState) {
	p := s.Props()
	m := markOf(st)
	switch s.Type() {
	case shape.TypeGroup:
		// Groups have no body of their own.
	case shape.TypeLine:
		c.drawLine(p, m)
	case shape.TypeDot:
		col, row := c.Cell(s.Center())
		r := 'o'
		if m == MarkSelected {
			r = '@'
		}
		c.Set(col, row, r, m)
	case shape.TypePencil, shape.TypeHighlighter:
		c.Polyline(s.Outline(), false, m)
	case shape.TypeText:
		c.drawText(s, p, m)
	case shape.TypeBox, shape.TypeImage, shape.TypePortal, shape.TypeYouTube:
		if p.Rotation != 0 {
			c.Polyline(s.Outline(), true, m)
		} else {
			c.Rect(s.Bounds(), m)
		}
		c.drawLabel(s, caption(p), m)
	default:
		c.Polyline(s.Outline(), true, m)
		c.drawLabel(s, caption(p), m)
	}
}

// caption is the text shown inside a closed shape.
func caption(p shape.Props) string {
	switch p.Type {
	case shape.TypeImage:
		return "[image]"
	case shape.TypeYouTube:
		return "[video] " + p.URL
	case shape.TypePortal:
		if p.Label != "" {
			return "[" + p.Label + "]"
		}
		return "[portal]"
	}
	return p.Label
}

// drawLabel centers text in the shape's bounds, clearing the cells behind
// it.
func (c *Canvas) drawLabel(s *shape.Shape, text string, m Mark) {
	if text == "" {
		return
	}
	b := s.Bounds()
	col0, row0 := c.Cell(b.Min())
	col1, row1 := c.Cell(b.Max())
	width := col1 - col0 - 1
	if width < 1 {
		return
	}
	lines := strings.Split(text, "\n")
	top := row0 + (row1-row0)/2 - len(lines)/2
	for i, line := range lines {
		row := top + i
		if row <= row0 || row >= row1 {
			continue
		}
		runes := []rune(line)
		if len(runes) > width {
			runes = runes[:width]
		}
		left := col0 + 1 + (width-len(runes))/2
		c.Text(left, row, []string{string(runes)}, width, labelMark(m))
	}
}

func labelMark(m Mark) Mark {
	if m == MarkSelected {
		return MarkHovered
	}
	return m
}

func (c *Canvas) drawText(s *shape.Shape, p shape.Props, m Mark) {
	b := s.Bounds()
	col, row := c.Cell(b.Min().Add(geometry.Pt(p.Padding, p.Padding)))
	lines := strings.Split(p.Text, "\n")
	if m == MarkSelected {
		c.Rect(b, MarkBrush)
	}
	c.Text(col, row, lines, 0, labelMark(m))
}

// drawLine draws a connector with arrow heads on decorated ends.
func (c *Canvas) drawLine(p shape.Props, m Mark) {
	start, okStart := p.Handle(shape.HandleStart)
	end, okEnd := p.Handle(shape.HandleEnd)
	if !okStart || !okEnd {
		return
	}
	c.Polyline([]geometry.Point{start, end}, false, m)
	if p.Decorations == nil {
		return
	}
	if p.Decorations.End == shape.DecorationArrow {
		c.arrow(start, end, m)
	}
	if p.Decorations.Start == shape.DecorationArrow {
		c.arrow(end, start, m)
	}
}

// arrow marks the tip cell of a segment with a head pointing from -> to.
func (c *Canvas) arrow(from, to geometry.Point, m Mark) {
	col0, row0 := c.Cell(from)
	col1, row1 := c.Cell(to)
	dx, dy := col1-col0, row1-row0
	var r rune
	switch {
	case dx == 0 && dy == 0:
		return
	case abs(dx) >= abs(dy) && dx > 0:
		r = '>'
	case abs(dx) >= abs(dy):
		r = '<'
	case dy > 0:
		r = 'v'
	default:
		r = '^'
	}
	c.Set(col1, row1, r, m)
}
