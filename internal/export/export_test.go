package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/shape"
)

func boxDocument(t *testing.T) *document.Document {
	t.Helper()
	doc := document.New(shape.DefaultRegistry())
	_, err := doc.AddShapes(shape.Props{
		Type:  shape.TypeBox,
		Point: geometry.Pt(0, 0),
		Size:  geometry.Pt(100, 50),
	})
	require.NoError(t, err)
	return doc
}

func TestTXT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TXT(&buf, boxDocument(t), DefaultOptions()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "  +---------+", lines[1])
	assert.Equal(t, "  |         |", lines[2])
	assert.Equal(t, "  +---------+", lines[3])
}

func TestTXT_Empty(t *testing.T) {
	doc := document.New(shape.DefaultRegistry())
	assert.ErrorIs(t, TXT(&bytes.Buffer{}, doc, DefaultOptions()), ErrEmpty)
	assert.ErrorIs(t, PNG(&bytes.Buffer{}, doc, DefaultOptions()), ErrEmpty)
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, boxDocument(t), DefaultOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 140, 90), img.Bounds())

	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b}, "background")

	r, _, _, _ = img.At(20, 45).RGBA()
	assert.Less(t, r, uint32(0x8000), "left edge is stroked")

	r, _, _, _ = img.At(70, 45).RGBA()
	assert.Equal(t, uint32(0xffff), r, "box fill")
}

func TestPNG_Scale(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Scale = 2
	require.NoError(t, PNG(&buf, boxDocument(t), opts))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 280, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
}

func TestPNG_ImageAsset(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, src))

	doc := document.New(shape.DefaultRegistry())
	assets := doc.AddAssets(document.Asset{
		Type: "image",
		Src:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(encoded.Bytes()),
		Size: geometry.Pt(2, 2),
	})
	_, err := doc.AddShapes(shape.Props{
		Type:    shape.TypeImage,
		Size:    geometry.Pt(40, 40),
		AssetID: assets[0].ID,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, doc, DefaultOptions()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, g, b, _ := img.At(40, 40).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	doc := boxDocument(t)

	txt := filepath.Join(dir, "board.txt")
	require.NoError(t, WriteFile(txt, doc, DefaultOptions()))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "+---------+")

	pngPath := filepath.Join(dir, "board.PNG")
	require.NoError(t, WriteFile(pngPath, doc, DefaultOptions()))
	assert.FileExists(t, pngPath)

	err = WriteFile(filepath.Join(dir, "board.svg"), doc, DefaultOptions())
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "board.svg"))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}, parseColor("#123456", 1, color.Black))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0, B: 0xff, A: 255}, parseColor("#f0f", 0, color.Black))
	assert.Equal(t, color.NRGBA{A: 128}, parseColor("red", 0.5, color.Black))
}
