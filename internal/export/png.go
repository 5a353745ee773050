package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // asset decoding
	_ "image/jpeg" // asset decoding
	_ "image/png"  // asset decoding
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp" // asset decoding
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	_ "golang.org/x/image/webp" // asset decoding

	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/shape"
)

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gomono.TTF)
})

// painter draws shapes onto a gg context in pixel space.
type painter struct {
	dc     *gg.Context
	doc    *document.Document
	origin geometry.Point
	scale  float64
	font   *truetype.Font
	faces  map[float64]font.Face
}

func (p *painter) px(pt geometry.Point) (float64, float64) {
	q := pt.Sub(p.origin).Mul(p.scale)
	return q.X(), q.Y()
}

func (p *painter) face(size float64) font.Face {
	size = math.Max(1, math.Round(size*p.scale))
	if f, ok := p.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(p.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	p.faces[size] = f
	return f
}

// PNG writes the current page as a PNG image on a white background.
func PNG(w io.Writer, doc *document.Document, opts Options) error {
	opts = opts.withDefaults()
	shapes, b, err := pageBounds(doc, opts.Padding)
	if err != nil {
		return err
	}
	ttf, err := parseFont()
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	width := int(math.Ceil(b.Width * opts.Scale))
	height := int(math.Ceil(b.Height * opts.Scale))
	dc := gg.NewContext(max(width, 1), max(height, 1))
	dc.SetColor(color.White)
	dc.Clear()

	p := &painter{
		dc:     dc,
		doc:    doc,
		origin: b.Min(),
		scale:  opts.Scale,
		font:   ttf,
		faces:  make(map[float64]font.Face),
	}
	for _, s := range shapes {
		p.draw(s)
	}
	return dc.EncodePNG(w)
}

func (p *painter) draw(s *shape.Shape) {
	props := s.Props()
	switch s.Type() {
	case shape.TypeGroup:
	case shape.TypeLine:
		p.drawLine(props)
	case shape.TypeDot:
		x, y := p.px(s.Center())
		p.dc.DrawCircle(x, y, props.Radius*p.scale)
		p.dc.SetColor(parseColor(props.Fill, props.Opacity, color.Black))
		p.dc.Fill()
	case shape.TypePencil, shape.TypeHighlighter:
		p.drawStroke(s, props)
	case shape.TypeText:
		p.drawText(s.Bounds(), props)
	case shape.TypeImage:
		if !p.drawImage(s.Bounds(), props) {
			p.drawClosed(s, props)
		}
	default:
		p.drawClosed(s, props)
		p.drawLabel(s, props)
	}
}

func (p *painter) path(pts []geometry.Point, closed bool) {
	for i, pt := range pts {
		x, y := p.px(pt)
		if i == 0 {
			p.dc.MoveTo(x, y)
		} else {
			p.dc.LineTo(x, y)
		}
	}
	if closed {
		p.dc.ClosePath()
	}
}

func (p *painter) strokeStyle(props shape.Props) {
	p.dc.SetLineWidth(math.Max(1, props.StrokeWidth*p.scale))
	switch props.StrokeType {
	case "dashed":
		p.dc.SetDash(8*p.scale, 6*p.scale)
	case "dotted":
		p.dc.SetDash(2*p.scale, 4*p.scale)
	default:
		p.dc.SetDash()
	}
	p.dc.SetColor(parseColor(props.Stroke, props.Opacity, color.Black))
}

func (p *painter) drawClosed(s *shape.Shape, props shape.Props) {
	outline := s.Outline()
	if len(outline) < 2 {
		return
	}
	if !props.NoFill && props.Fill != "" {
		p.path(outline, true)
		p.dc.SetColor(parseColor(props.Fill, props.Opacity, color.White))
		p.dc.Fill()
	}
	if props.StrokeWidth > 0 {
		p.path(outline, true)
		p.strokeStyle(props)
		p.dc.Stroke()
	}
}

func (p *painter) drawStroke(s *shape.Shape, props shape.Props) {
	pts := s.Outline()
	if len(pts) == 0 {
		return
	}
	p.strokeStyle(props)
	p.dc.SetLineCapRound()
	p.dc.SetLineJoinRound()
	if s.Type() == shape.TypeHighlighter {
		p.dc.SetColor(parseColor(props.Stroke, 0.4, color.RGBA{R: 255, G: 230, A: 255}))
	}
	if len(pts) == 1 {
		x, y := p.px(pts[0])
		p.dc.DrawPoint(x, y, math.Max(1, props.StrokeWidth*p.scale/2))
		p.dc.Fill()
		return
	}
	p.path(pts, false)
	p.dc.Stroke()
}

func (p *painter) drawLine(props shape.Props) {
	start, okStart := props.Handle(shape.HandleStart)
	end, okEnd := props.Handle(shape.HandleEnd)
	if !okStart || !okEnd {
		return
	}
	p.strokeStyle(props)
	p.path([]geometry.Point{start, end}, false)
	p.dc.Stroke()
	p.dc.SetDash()
	if props.Decorations == nil {
		return
	}
	if props.Decorations.End == shape.DecorationArrow {
		p.drawArrow(start, end, props)
	}
	if props.Decorations.Start == shape.DecorationArrow {
		p.drawArrow(end, start, props)
	}
}

// drawArrow fills a head at to, pointing away from from.
func (p *painter) drawArrow(from, to geometry.Point, props shape.Props) {
	fx, fy := p.px(from)
	tx, ty := p.px(to)
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	size := math.Max(6, props.StrokeWidth*4) * p.scale
	spread := 0.5
	p.dc.MoveTo(tx, ty)
	p.dc.LineTo(tx-size*dx+size*dy*spread, ty-size*dy-size*dx*spread)
	p.dc.LineTo(tx-size*dx-size*dy*spread, ty-size*dy+size*dx*spread)
	p.dc.ClosePath()
	p.dc.SetColor(parseColor(props.Stroke, props.Opacity, color.Black))
	p.dc.Fill()
}

func (p *painter) drawText(b geometry.Bounds, props shape.Props) {
	if props.Text == "" {
		return
	}
	size := math.Max(1, props.FontSize)
	lh := props.LineHeight
	if lh <= 0 {
		lh = 1
	}
	p.dc.SetFontFace(p.face(size))
	p.dc.SetColor(parseColor(props.Stroke, props.Opacity, color.Black))
	x, y := p.px(b.Min().Add(geometry.Pt(props.Padding, props.Padding)))
	for i, line := range strings.Split(props.Text, "\n") {
		p.dc.DrawString(line, x, y+(float64(i)*lh+1)*size*p.scale)
	}
}

func (p *painter) drawLabel(s *shape.Shape, props shape.Props) {
	if props.Label == "" {
		return
	}
	size := props.FontSize
	if size <= 0 {
		size = 20
	}
	p.dc.SetFontFace(p.face(size))
	p.dc.SetColor(parseColor(props.Stroke, props.Opacity, color.Black))
	x, y := p.px(s.Center())
	p.dc.DrawStringAnchored(props.Label, x, y, 0.5, 0.5)
}

// drawImage paints the asset behind an image shape scaled to its bounds.
// It reports false when the asset is missing or cannot be decoded.
func (p *painter) drawImage(b geometry.Bounds, props shape.Props) bool {
	asset, ok := p.doc.Asset(props.AssetID)
	if !ok {
		return false
	}
	src, err := decodeAsset(asset.Src)
	if err != nil {
		return false
	}
	w := int(math.Round(b.Width * p.scale))
	h := int(math.Round(b.Height * p.scale))
	if w < 1 || h < 1 {
		return false
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	x, y := p.px(b.Min())
	p.dc.DrawImage(dst, int(math.Round(x)), int(math.Round(y)))
	return true
}

// decodeAsset reads a data URL or a local file.
func decodeAsset(src string) (image.Image, error) {
	var data []byte
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		_, payload, found := strings.Cut(rest, ",")
		if !found || !strings.Contains(rest[:len(rest)-len(payload)], ";base64") {
			return nil, fmt.Errorf("unsupported data url")
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, err
		}
		data = decoded
	} else {
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		data = b
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// parseColor reads #rgb or #rrggbb with the given opacity, falling back
// to def.
func parseColor(hex string, opacity float64, def color.Color) color.Color {
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	alpha := uint8(math.Round(opacity * 255))
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		r, g, b, _ := def.RGBA()
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: alpha}
}
