package shape

import (
	"math"
	"strings"
	"unicode/utf8"

	"whiteboard/geometry"
)

// Glyph metrics used to measure text without a font.
const (
	charWidthRatio = 0.6
	minFontSize    = 1
)

// TextVariant is a free text block. When IsAutoResizing is set the size
// follows the text.
func TextVariant() *Variant {
	return &Variant{
		Type: TypeText,
		Caps: Capabilities{CanBind: true, CanEdit: true},
		Defaults: func() Props {
			p := boxDefaults(geometry.Point{})
			p.Fill = ""
			p.NoFill = true
			p.StrokeWidth = 0
			p.FontSize = 20
			p.LineHeight = 1.2
			p.Padding = 4
			p.IsAutoResizing = true
			p.Size = MeasureText(p)
			return p
		},
		Bounds: rectBounds,
		Resize: func(initial Props, info ResizeInfo) Patch {
			patch := resizeRect(initial, info)
			patch.IsAutoResizing = Ptr(false)
			return patch
		},
		Validate: func(current Props, patch Patch) Patch {
			if patch.FontSize != nil {
				patch.FontSize = Ptr(math.Max(minFontSize, *patch.FontSize))
			}
			if patch.Text == nil && patch.FontSize == nil && patch.IsAutoResizing == nil {
				return patch
			}
			next := patch.Apply(current)
			if next.IsAutoResizing {
				patch.Size = Ptr(MeasureText(next))
			}
			return patch
		},
	}
}

// MeasureText returns the size a text shape needs for its content.
func MeasureText(p Props) geometry.Point {
	lines := strings.Split(p.Text, "\n")
	longest := 1
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	lh := p.LineHeight
	if lh <= 0 {
		lh = 1
	}
	w := float64(longest)*p.FontSize*charWidthRatio + p.Padding*2
	h := float64(len(lines))*p.FontSize*lh + p.Padding*2
	return geometry.ClampSize(geometry.Pt(w, h))
}

// GroupVariant holds children. The document keeps its point and size equal
// to the union of the children's rotated bounds.
func GroupVariant() *Variant {
	return &Variant{
		Type: TypeGroup,
		Caps: Capabilities{HideRotateHandle: true, HideContextBar: true},
		Defaults: func() Props {
			return Props{Size: geometry.Pt(geometry.MinSize, geometry.MinSize), Opacity: 1}
		},
		Bounds: rectBounds,
		Resize: resizeRect,
	}
}
