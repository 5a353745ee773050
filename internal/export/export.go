// Package export renders the current page of a document to text or PNG.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"whiteboard/app"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/internal/canvas"
	"whiteboard/shape"
)

// ErrEmpty is returned when the page has nothing to draw.
var ErrEmpty = errors.New("nothing to export")

// Options control an export.
type Options struct {
	// Padding is the document space left around the shapes.
	Padding float64
	// CellWidth and CellHeight are the document units per character in
	// text exports.
	CellWidth  float64
	CellHeight float64
	// Scale is the pixels per document unit in PNG exports.
	Scale float64
}

// DefaultOptions returns the stock export options.
func DefaultOptions() Options {
	return Options{Padding: 20, CellWidth: 10, CellHeight: 20, Scale: 1}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.CellWidth <= 0 {
		o.CellWidth = d.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = d.CellHeight
	}
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	return o
}

// pageBounds returns the padded bounds of every shape on the current page.
func pageBounds(doc *document.Document, padding float64) ([]*shape.Shape, geometry.Bounds, error) {
	shapes := doc.CurrentPage().Shapes()
	var bounds []geometry.Bounds
	for _, s := range shapes {
		if s.Type() == shape.TypeGroup {
			continue
		}
		bounds = append(bounds, s.RotatedBounds())
	}
	if len(bounds) == 0 {
		return nil, geometry.Bounds{}, ErrEmpty
	}
	return shapes, geometry.Common(bounds...).Expand(padding), nil
}

// TXT writes the current page as characters, one cell per CellWidth by
// CellHeight document units.
func TXT(w io.Writer, doc *document.Document, opts Options) error {
	opts = opts.withDefaults()
	shapes, b, err := pageBounds(doc, opts.Padding)
	if err != nil {
		return err
	}
	cols := int(math.Ceil(b.Width / opts.CellWidth))
	rows := int(math.Ceil(b.Height / opts.CellHeight))
	origin := b.Min()
	c := canvas.New(cols, rows, opts.CellWidth, opts.CellHeight, func(p geometry.Point) geometry.Point {
		return p.Sub(origin)
	})
	for _, s := range shapes {
		c.Draw(s, app.RenderState{})
	}
	_, err = fmt.Fprintln(w, c.String())
	return err
}

// WriteFile exports to path in the format its extension names.
func WriteFile(path string, doc *document.Document, opts Options) error {
	var write func(io.Writer, *document.Document, Options) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		write = PNG
	case ".txt":
		write = TXT
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, doc, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
