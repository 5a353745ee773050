package tui

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/app"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/internal/canvas"
	"whiteboard/shape"
	"whiteboard/tool"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.text, c.err }

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newModel(t *testing.T, opts Options) (*Model, *app.App, *fakeClipboard) {
	t.Helper()
	reg := shape.DefaultRegistry()
	r := &canvas.Renderer{}
	a := app.New(app.DefaultConfig(), reg, nil, r.Components(reg))
	clip := &fakeClipboard{}
	opts.App = a
	opts.Renderer = r
	opts.CellWidth = 10
	opts.CellHeight = 20
	opts.Clipboard = clip
	m, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 11})
	return m, a, clip
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(m *Model, action tea.MouseAction, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func click(m *Model, x, y int) {
	mouse(m, tea.MouseActionPress, x, y)
	mouse(m, tea.MouseActionRelease, x, y)
}

func TestNewRequiresAppAndRenderer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	a := app.New(app.DefaultConfig(), nil, nil, (&canvas.Renderer{}).Components(shape.DefaultRegistry()))
	_, err = New(Options{App: a})
	assert.Error(t, err)
}

func TestResizeSetsViewport(t *testing.T) {
	_, a, _ := newModel(t, Options{})
	b := a.Viewport().Bounds()
	assert.Equal(t, 400.0, b.Width)
	assert.Equal(t, 200.0, b.Height)
	assert.True(t, a.Mounted())
}

func TestDrawBoxWithMouse(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	m.Update(runes("r"))
	require.Equal(t, tool.Box, a.Tool().ID())

	mouse(m, tea.MouseActionPress, 2, 2)
	mouse(m, tea.MouseActionMotion, 12, 5)
	mouse(m, tea.MouseActionRelease, 12, 5)

	shapes := a.Document().CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, shape.TypeBox, shapes[0].Type())
	b := shapes[0].Bounds()
	assert.InDelta(t, 25, b.MinX, 1e-9)
	assert.InDelta(t, 50, b.MinY, 1e-9)
	assert.InDelta(t, 100, b.Width, 1e-9)
	assert.InDelta(t, 60, b.Height, 1e-9)

	view := m.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, view, "#")
	assert.Contains(t, lines[10], "select")
}

func TestTextToolOpensPrompt(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	m.Update(runes("t"))
	click(m, 3, 3)

	id := a.Document().Session().EditingID
	require.NotEmpty(t, id)
	assert.Equal(t, promptText, m.prompt)

	m.Update(runes("hi"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, promptNone, m.prompt)
	assert.Empty(t, a.Document().Session().EditingID)
	s := a.Document().Shape(id)
	require.NotNil(t, s)
	assert.Equal(t, "hi", s.Props().Text)
}

func TestCancelledEmptyTextIsRemoved(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	m.Update(runes("t"))
	click(m, 3, 3)
	require.Equal(t, promptText, m.prompt)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, promptNone, m.prompt)
	assert.Zero(t, a.Document().CurrentPage().Len())
}

func TestDoubleClickEditsLabel(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ids := a.CreateShapes(shape.Props{Type: shape.TypeBox, Size: geometry.Pt(100, 60)})
	require.Len(t, ids, 1)

	click(m, 3, 1)
	assert.Equal(t, promptNone, m.prompt)
	click(m, 3, 1)
	require.Equal(t, promptText, m.prompt)

	m.Update(runes("ok"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "ok", a.Document().Shape(ids[0]).Props().Label)
}

func TestSlowClicksAreNotDoubleClicks(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	a.CreateShapes(shape.Props{Type: shape.TypeBox, Size: geometry.Pt(100, 60)})

	click(m, 3, 1)
	now = now.Add(time.Second)
	click(m, 3, 1)
	assert.Equal(t, promptNone, m.prompt)
}

func TestCopyAndPaste(t *testing.T) {
	m, a, clip := newModel(t, Options{})
	ids := a.CreateShapes(shape.Props{Type: shape.TypeBox, Size: geometry.Pt(40, 40)})
	a.Document().SetSelectedShapes(ids...)

	m.Update(runes("y"))
	require.NotEmpty(t, clip.text)
	assert.Equal(t, LevelSuccess, m.Status().Level())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	assert.Equal(t, 2, a.Document().CurrentPage().Len())
}

func TestCopyWithoutSelection(t *testing.T) {
	m, _, clip := newModel(t, Options{})
	m.Update(runes("y"))
	assert.Empty(t, clip.text)
	assert.Equal(t, "nothing selected", m.Status().Message())
}

func TestPastePlainTextCreatesText(t *testing.T) {
	m, a, clip := newModel(t, Options{})
	clip.text = "hello"
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	shapes := a.Document().CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, shape.TypeText, shapes[0].Type())
	assert.Equal(t, "hello", shapes[0].Props().Text)
}

func TestClipboardErrorIsReported(t *testing.T) {
	m, _, clip := newModel(t, Options{})
	clip.err = errors.New("no clipboard")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	assert.Equal(t, LevelError, m.Status().Level())
}

func TestDroppedImageIsInserted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 20))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, a, _ := newModel(t, Options{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true})

	shapes := a.Document().CurrentPage().Shapes()
	require.Len(t, shapes, 1)
	p := shapes[0].Props()
	assert.Equal(t, shape.TypeImage, p.Type)
	assert.Equal(t, geometry.Pt(30, 20), p.Size)
	asset, ok := a.Document().Asset(p.AssetID)
	require.True(t, ok)
	assert.Equal(t, path, asset.Src)
}

func TestSaveShortcut(t *testing.T) {
	var saved []string
	save := func(m document.Model, path string) error {
		saved = append(saved, path)
		return nil
	}
	m, a, _ := newModel(t, Options{Save: save, Name: "board"})
	a.CreateShapes(shape.Props{Type: shape.TypeBox, Size: geometry.Pt(40, 40)})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, []string{""}, saved)
	assert.Equal(t, "saved board", m.Status().Message())

	a.SaveAs("")
	require.Equal(t, promptSaveAs, m.prompt)
	m.Update(runes("other.json"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"", "other.json"}, saved)
}

func TestSaveErrorIsReported(t *testing.T) {
	save := func(document.Model, string) error { return errors.New("disk full") }
	m, a, _ := newModel(t, Options{Save: save})
	a.Save()
	assert.Equal(t, LevelError, m.Status().Level())
	assert.Contains(t, m.Status().Message(), "disk full")
}

func TestZoomAndPanKeys(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	m.Update(runes("+"))
	assert.Greater(t, a.Viewport().Camera().Zoom, 1.0)
	m.Update(runes("0"))
	assert.Equal(t, 1.0, a.Viewport().Camera().Zoom)

	before := a.Viewport().Camera().Point
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.NotEqual(t, before, a.Viewport().Camera().Point)
}

func TestPageKeys(t *testing.T) {
	m, a, _ := newModel(t, Options{})
	first := a.Document().CurrentPageID()
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Len(t, a.Document().Pages(), 2)
	assert.NotEqual(t, first, a.Document().CurrentPageID())

	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, first, a.Document().CurrentPageID())
	assert.Contains(t, m.View(), "page 1/2")
}

func TestReloadFromChanges(t *testing.T) {
	changes := make(chan document.Model, 1)
	m, a, _ := newModel(t, Options{Changes: changes})

	other, _, _ := newModel(t, Options{})
	other.app.CreateShapes(shape.Props{Type: shape.TypeBox, Size: geometry.Pt(40, 40)})
	changes <- other.app.Serialized()

	msg := m.waitForChange()()
	m.Update(msg)
	assert.Equal(t, 1, a.Document().CurrentPage().Len())
	assert.Equal(t, "reloaded", m.Status().Message())
}

func TestHelpView(t *testing.T) {
	m, _, _ := newModel(t, Options{})
	m.Update(runes("?"))
	assert.Contains(t, m.View(), "zoom in")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.help)
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t, Options{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want input.KeyEvent
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyEsc}, input.KeyEvent{Key: input.KeyEscape}, true},
		{tea.KeyMsg{Type: tea.KeyDelete}, input.KeyEvent{Key: input.KeyDelete}, true},
		{runes("R"), input.KeyEvent{Key: "R", Modifiers: input.Modifiers{Shift: true}}, true},
		{tea.KeyMsg{Type: tea.KeyCtrlZ}, input.KeyEvent{Key: "z", Modifiers: input.Modifiers{Ctrl: true}}, true},
		{tea.KeyMsg{Type: tea.KeyTab}, input.KeyEvent{}, false},
		{runes("ab"), input.KeyEvent{}, false},
	}
	for _, tt := range tests {
		got, ok := keyEvent(tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg.String())
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.msg.String())
		}
	}
}

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"/tmp/a b.png", "/tmp/c.png"}, splitPaths(`'/tmp/a b.png' /tmp/c.png`))
	assert.Equal(t, []string{"/tmp/a b.png"}, splitPaths(`/tmp/a\ b.png`))
	assert.Equal(t, []string{"/tmp/x.png"}, splitPaths("file:///tmp/x.png\n"))
	assert.Empty(t, splitPaths("   "))
}
