// Package canvas draws whiteboard shapes into a grid of terminal cells.
package canvas

import (
	"math"
	"strings"

	"whiteboard/geometry"
)

// Mark tags a cell with the state of the shape that drew it.
type Mark int

const (
	MarkNone Mark = iota
	MarkHovered
	MarkSelected
	MarkBrush
)

// Projection maps a document point to screen units.
type Projection func(geometry.Point) geometry.Point

// Canvas is a grid of runes. Each cell covers CellWidth by CellHeight
// screen units.
type Canvas struct {
	cols, rows int
	cellW      float64
	cellH      float64
	project    Projection

	cells [][]rune
	marks [][]Mark
}

// New returns a blank canvas. A nil projection is the identity.
func New(cols, rows int, cellW, cellH float64, project Projection) *Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	if project == nil {
		project = func(p geometry.Point) geometry.Point { return p }
	}
	c := &Canvas{cols: cols, rows: rows, cellW: cellW, cellH: cellH, project: project}
	c.cells = make([][]rune, rows)
	c.marks = make([][]Mark, rows)
	for i := range c.cells {
		c.cells[i] = make([]rune, cols)
		c.marks[i] = make([]Mark, cols)
		for j := range c.cells[i] {
			c.cells[i][j] = ' '
		}
	}
	return c
}

func (c *Canvas) Cols() int { return c.cols }

func (c *Canvas) Rows() int { return c.rows }

// Cell returns the cell a document point falls in. It may lie outside the
// canvas.
func (c *Canvas) Cell(p geometry.Point) (col, row int) {
	s := c.project(p)
	return int(math.Floor(s.X() / c.cellW)), int(math.Floor(s.Y() / c.cellH))
}

// ScreenPoint returns the screen point at the center of a cell.
func (c *Canvas) ScreenPoint(col, row int) geometry.Point {
	return geometry.Pt((float64(col)+0.5)*c.cellW, (float64(row)+0.5)*c.cellH)
}

func (c *Canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

// Set writes r at a cell, ignoring cells off the canvas.
func (c *Canvas) Set(col, row int, r rune, m Mark) {
	if !c.inside(col, row) {
		return
	}
	c.cells[row][col] = r
	c.marks[row][col] = m
}

// At returns the rune and mark of a cell.
func (c *Canvas) At(col, row int) (rune, Mark) {
	if !c.inside(col, row) {
		return ' ', MarkNone
	}
	return c.cells[row][col], c.marks[row][col]
}

// Clear blanks the cells in a rectangle.
func (c *Canvas) Clear(col0, row0, col1, row1 int) {
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			c.Set(col, row, ' ', MarkNone)
		}
	}
}

// Segment draws a line between two cells, picking a rune from its slope.
func (c *Canvas) Segment(col0, row0, col1, row1 int, m Mark) {
	if (col0 < 0 && col1 < 0) || (row0 < 0 && row1 < 0) ||
		(col0 >= c.cols && col1 >= c.cols) || (row0 >= c.rows && row1 >= c.rows) {
		return
	}
	r := slopeRune(col1-col0, row1-row0)
	if m == MarkSelected {
		r = '#'
	}
	c.walk(col0, row0, col1, row1, func(col, row int) {
		c.Set(col, row, r, m)
	})
}

// walk visits the cells of a Bresenham line.
func (c *Canvas) walk(col0, row0, col1, row1 int, visit func(col, row int)) {
	dx := abs(col1 - col0)
	dy := -abs(row1 - row0)
	sx, sy := 1, 1
	if col0 > col1 {
		sx = -1
	}
	if row0 > row1 {
		sy = -1
	}
	e := dx + dy
	// Guards against runaway loops for points projected far off screen.
	for n := 0; n <= dx-dy; n++ {
		visit(col0, row0)
		if col0 == col1 && row0 == row1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			col0 += sx
		}
		if e2 <= dx {
			e += dx
			row0 += sy
		}
	}
}

func slopeRune(dx, dy int) rune {
	switch {
	case dy == 0:
		return '-'
	case dx == 0:
		return '|'
	case abs(dx) >= 2*abs(dy):
		return '-'
	case abs(dy) >= 2*abs(dx):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// Polyline draws connected document points. Closed joins the last point
// back to the first.
func (c *Canvas) Polyline(pts []geometry.Point, closed bool, m Mark) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		col, row := c.Cell(pts[0])
		c.Set(col, row, '.', m)
		return
	}
	for i := 0; i < len(pts)-1; i++ {
		c.line(pts[i], pts[i+1], m)
	}
	if closed && len(pts) > 2 {
		c.line(pts[len(pts)-1], pts[0], m)
	}
}

func (c *Canvas) line(a, b geometry.Point, m Mark) {
	col0, row0 := c.Cell(a)
	col1, row1 := c.Cell(b)
	c.Segment(col0, row0, col1, row1, m)
}

// Rect draws the border of an axis aligned document rectangle.
func (c *Canvas) Rect(b geometry.Bounds, m Mark) {
	col0, row0 := c.Cell(b.Min())
	col1, row1 := c.Cell(b.Max())
	if col1 <= col0 {
		col1 = col0 + 1
	}
	if row1 <= row0 {
		row1 = row0 + 1
	}

	corner, horizontal, vertical := '+', '-', '|'
	switch m {
	case MarkSelected:
		corner, horizontal, vertical = '#', '#', '#'
	case MarkBrush:
		corner, horizontal, vertical = '+', '.', ':'
	}
	for col := col0; col <= col1; col++ {
		c.Set(col, row0, horizontal, m)
		c.Set(col, row1, horizontal, m)
	}
	for row := row0; row <= row1; row++ {
		c.Set(col0, row, vertical, m)
		c.Set(col1, row, vertical, m)
	}
	c.Set(col0, row0, corner, m)
	c.Set(col1, row0, corner, m)
	c.Set(col0, row1, corner, m)
	c.Set(col1, row1, corner, m)
}

// Text writes lines starting at a cell, clipped to maxCols columns when it
// is positive.
func (c *Canvas) Text(col, row int, lines []string, maxCols int, m Mark) {
	for i, line := range lines {
		x := 0
		for _, r := range line {
			if maxCols > 0 && x >= maxCols {
				break
			}
			c.Set(col+x, row+i, r, m)
			x++
		}
	}
}

// Lines returns the canvas rows as plain strings.
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// String returns the rows joined by newlines with trailing spaces removed.
func (c *Canvas) String() string {
	lines := c.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// Runs splits a row into spans of cells sharing a mark.
func (c *Canvas) Runs(row int) []Run {
	if row < 0 || row >= c.rows {
		return nil
	}
	var runs []Run
	start := 0
	for col := 1; col <= c.cols; col++ {
		if col < c.cols && c.marks[row][col] == c.marks[row][start] {
			continue
		}
		runs = append(runs, Run{Text: string(c.cells[row][start:col]), Mark: c.marks[row][start]})
		start = col
	}
	return runs
}

// Run is a span of cells with the same mark.
type Run struct {
	Text string
	Mark Mark
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
