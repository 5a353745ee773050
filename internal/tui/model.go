// Package tui is the terminal front end of a board. It maps terminal
// mouse and key events onto the app, draws the current page with the
// character canvas and keeps a status line.
package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // dropped images
	_ "image/jpeg" // dropped images
	_ "image/png"  // dropped images
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	_ "golang.org/x/image/bmp"  // dropped images
	_ "golang.org/x/image/webp" // dropped images

	"whiteboard/app"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/internal/canvas"
	"whiteboard/internal/logger"
	"whiteboard/internal/storage"
	"whiteboard/shape"
)

// SaveFunc stores m. An empty path means the board's own location.
type SaveFunc func(m document.Model, path string) error

// Options configure a Model.
type Options struct {
	App      *app.App
	Renderer *canvas.Renderer
	// CellWidth and CellHeight are the screen units per terminal cell.
	CellWidth  float64
	CellHeight float64
	// Name is shown in the status bar.
	Name string
	Save SaveFunc
	// Changes delivers documents written by other processes.
	Changes <-chan document.Model
	// Autosave is flushed every FlushInterval and on quit.
	Autosave      *storage.Autosaver
	FlushInterval time.Duration
	Clipboard     Clipboard
	Logger        *logger.Logger
}

type promptKind int

const (
	promptNone promptKind = iota
	promptText
	promptSaveAs
)

type reloadMsg struct{ model document.Model }

type flushMsg struct{}

// Model is the bubbletea model of one board.
type Model struct {
	opts   Options
	app    *app.App
	keys   *KeyMap
	styles *Styles
	status *StatusBar
	log    *logger.Logger

	input     textinput.Model
	prompt    promptKind
	editingID string

	width  int
	height int
	help   bool

	seq      uint64
	pointer  geometry.Point
	lastUp   time.Time
	lastCell [2]int
	now      func() time.Time
	drops    []app.Event
	unsub    []func()
	quitting bool
}

// New wires a model to opts.App. The renderer must be the one whose
// components the app was built with.
func New(opts Options) (*Model, error) {
	if opts.App == nil {
		return nil, errors.New("tui: app is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("tui: renderer is required")
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Prompt = "> "

	styles := NewStyles(nil)
	m := &Model{
		opts:   opts,
		app:    opts.App,
		keys:   DefaultKeyMap(),
		styles: styles,
		status: NewStatusBar(styles),
		log:    opts.Logger.WithPrefix("tui"),
		input:  ti,
		width:  80,
		height: 24,
		now:    time.Now,
	}
	m.unsub = append(m.unsub,
		m.app.Subscribe(app.EventSave, func(e app.Event) {
			if e.Model != nil {
				m.save(*e.Model, "")
			}
		}),
		m.app.Subscribe(app.EventSaveAs, func(e app.Event) {
			if e.Path != "" && e.Model != nil {
				m.save(*e.Model, e.Path)
				return
			}
			m.openPrompt(promptSaveAs, "", "save as")
		}),
		m.app.Subscribe(app.EventError, func(e app.Event) {
			if e.Err != nil {
				m.status.SetMessage(LevelError, "%v", e.Err)
			}
		}),
		// Dropped files are inserted after the current event is handled.
		m.app.Subscribe(app.EventDropFiles, func(e app.Event) {
			m.drops = append(m.drops, e)
		}),
	)
	m.resize(m.width, m.height)
	m.app.Mount()
	return m, nil
}

// Close unsubscribes the model from the app.
func (m *Model) Close() {
	for _, fn := range m.unsub {
		fn()
	}
	m.unsub = nil
}

// Status returns the status bar.
func (m *Model) Status() *StatusBar { return m.status }

// Init starts listening for outside changes and autosave flushes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.flushTick())
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.opts.Changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		model, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg{model: model}
	}
}

func (m *Model) flushTick() tea.Cmd {
	if m.opts.Autosave == nil {
		return nil
	}
	return tea.Tick(m.opts.FlushInterval, func(time.Time) tea.Msg {
		return flushMsg{}
	})
}

// Update handles terminal and background messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case reloadMsg:
		if err := m.app.LoadDocumentModel(msg.model); err != nil {
			m.status.SetMessage(LevelError, "reload: %v", err)
		} else {
			m.status.SetMessage(LevelInfo, "reloaded")
		}
		return m, m.waitForChange()

	case flushMsg:
		m.flush()
		return m, m.flushTick()

	case tea.MouseMsg:
		// Releases still reach the board so a gesture never stays open
		// behind a prompt.
		if (m.prompt != promptNone || m.help) && msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		m.handleMouse(msg)
		return m, m.afterInput()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) rows() int {
	return max(m.height-1, 1)
}

func (m *Model) resize(width, height int) {
	m.width = max(width, 1)
	m.height = max(height, 1)
	m.status.SetWidth(m.width)
	m.input.Width = max(m.width-4, 1)
	w := float64(m.width) * m.opts.CellWidth
	h := float64(m.rows()) * m.opts.CellHeight
	m.app.Resize(geometry.NewBounds(geometry.Point{}, geometry.Pt(w, h)))
}

// screenPoint is the center of a cell in screen units.
func (m *Model) screenPoint(col, row int) geometry.Point {
	return geometry.Pt(
		(float64(col)+0.5)*m.opts.CellWidth,
		(float64(row)+0.5)*m.opts.CellHeight,
	)
}

func (m *Model) center() geometry.Point {
	return m.screenPoint(m.width/2, m.rows()/2)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.rows() {
		return
	}
	p := m.screenPoint(msg.X, msg.Y)
	mods := input.Modifiers{Shift: msg.Shift, Alt: msg.Alt, Ctrl: msg.Ctrl}
	if isWheel(msg.Button) {
		m.app.Wheel(input.WheelEvent{
			ScreenPoint: p,
			Delta:       wheelDelta(msg.Button, m.opts.CellWidth, m.opts.CellHeight),
			Modifiers:   mods,
		})
		return
	}

	m.pointer = p
	m.seq++
	e := input.PointerEvent{
		ScreenPoint: p,
		Button:      mouseButton(msg.Button),
		Pressure:    0.5,
		Modifiers:   mods,
		Seq:         m.seq,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		m.app.PointerDown(e)
	case tea.MouseActionMotion:
		m.app.PointerMove(e)
	case tea.MouseActionRelease:
		m.app.PointerUp(e)
		now := m.now()
		cell := [2]int{msg.X, msg.Y}
		if cell == m.lastCell && now.Sub(m.lastUp) <= doubleClickTime {
			m.seq++
			e.Seq = m.seq
			m.app.DoubleClick(e)
			m.lastUp = time.Time{}
			return
		}
		m.lastUp, m.lastCell = now, cell
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.updatePrompt(msg)
	}
	if m.help {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit) {
			m.help = false
		}
		return m, nil
	}
	if msg.Paste {
		m.pasteText(string(msg.Runes))
		return m, m.afterInput()
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.flush()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help = true
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.copy()
	case key.Matches(msg, m.keys.Paste):
		text, err := m.opts.Clipboard.ReadAll()
		if err != nil {
			m.status.SetMessage(LevelError, "clipboard: %v", err)
			break
		}
		m.pasteText(plainText(text))
	case key.Matches(msg, m.keys.ZoomIn):
		m.app.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.app.ZoomOut()
	case key.Matches(msg, m.keys.ResetZoom):
		m.app.ResetZoom()
	case key.Matches(msg, m.keys.Fit):
		m.app.ZoomToFit()
	case key.Matches(msg, m.keys.FitSelection):
		m.app.ZoomToSelection()
	case key.Matches(msg, m.keys.PanUp):
		m.pan(geometry.Pt(0, -wheelCells*m.opts.CellHeight))
	case key.Matches(msg, m.keys.PanDown):
		m.pan(geometry.Pt(0, wheelCells*m.opts.CellHeight))
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(geometry.Pt(-wheelCells*m.opts.CellWidth, 0))
	case key.Matches(msg, m.keys.PanRight):
		m.pan(geometry.Pt(wheelCells*m.opts.CellWidth, 0))
	case key.Matches(msg, m.keys.CloneUp):
		m.app.Clone(app.DirectionUp)
	case key.Matches(msg, m.keys.CloneDown):
		m.app.Clone(app.DirectionDown)
	case key.Matches(msg, m.keys.CloneLeft):
		m.app.Clone(app.DirectionLeft)
	case key.Matches(msg, m.keys.CloneRight):
		m.app.Clone(app.DirectionRight)
	case key.Matches(msg, m.keys.NewPage):
		m.app.AddPage("")
	case key.Matches(msg, m.keys.PrevPage):
		m.app.StepPage(-1)
	case key.Matches(msg, m.keys.NextPage):
		m.app.StepPage(1)
	case key.Matches(msg, m.keys.ToggleLocked):
		locked := !m.app.Settings().ToolLocked
		m.app.SetToolLocked(locked)
		m.status.SetMessage(LevelInfo, "tool lock %s", onOff(locked))
	default:
		e, ok := keyEvent(msg)
		if !ok {
			return m, nil
		}
		m.status.Clear()
		m.app.KeyDown(e)
		m.app.KeyUp(e)
	}
	return m, m.afterInput()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) pan(delta geometry.Point) {
	m.app.Wheel(input.WheelEvent{ScreenPoint: m.center(), Delta: delta})
}

func (m *Model) copy() {
	data, err := m.app.Copy()
	if err != nil {
		m.status.SetMessage(LevelError, "%v", err)
		return
	}
	if len(data) == 0 {
		m.status.SetMessage(LevelInfo, "nothing selected")
		return
	}
	if err := m.opts.Clipboard.WriteAll(string(data)); err != nil {
		m.status.SetMessage(LevelError, "clipboard: %v", err)
		return
	}
	m.status.SetMessage(LevelSuccess, "copied %d shapes", len(m.app.Document().SelectedIDs()))
}

// pasteText inserts pasted text at the pointer: dropped image paths become
// images, copied shapes are pasted, and anything else becomes a text shape.
func (m *Model) pasteText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if files, ok := droppedFiles(text); ok {
		m.app.DropFiles(m.pointer, files...)
		return
	}
	if ids, err := m.app.PasteAt([]byte(text), m.pointer); err == nil {
		m.status.SetMessage(LevelSuccess, "pasted %d shapes", len(ids))
		return
	}
	m.app.CreateShapes(shape.Props{
		Type:  shape.TypeText,
		Point: m.app.ScreenToDocument(m.pointer),
		Text:  text,
	})
}

// afterInput inserts dropped images and opens or closes the text prompt to
// follow the editing shape.
func (m *Model) afterInput() tea.Cmd {
	drops := m.drops
	m.drops = nil
	for _, e := range drops {
		for _, f := range e.Files {
			if err := m.insertImage(f, e.Point); err != nil {
				m.status.SetMessage(LevelError, "%s: %v", f.Name, err)
			}
		}
	}
	return m.syncEditing()
}

func (m *Model) insertImage(f app.File, at geometry.Point) error {
	r, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer r.Close()
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return err
	}
	id := m.app.InsertImage(document.Asset{
		Type: "image",
		Src:  f.Path,
		Size: geometry.Pt(float64(cfg.Width), float64(cfg.Height)),
	}, at)
	if id == "" {
		return errors.New("could not insert image")
	}
	m.log.Debug("inserted %s as %s", f.Path, id)
	return nil
}

func (m *Model) syncEditing() tea.Cmd {
	id := m.app.Document().Session().EditingID
	if m.prompt == promptText && id != m.editingID {
		m.closePrompt()
	}
	if id == "" || m.prompt != promptNone {
		return nil
	}
	s := m.app.Document().CurrentPage().Shape(id)
	if s == nil {
		return nil
	}
	m.editingID = id
	p := s.Props()
	value := p.Label
	if s.Type() == shape.TypeText {
		value = p.Text
	}
	return m.openPrompt(promptText, strings.ReplaceAll(value, "\n", `\n`), "text, \\n for a new line")
}

func (m *Model) openPrompt(kind promptKind, value, placeholder string) tea.Cmd {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.editingID = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.commitPrompt()
		return m, m.afterInput()
	case key.Matches(msg, m.keys.Cancel):
		kind := m.prompt
		m.closePrompt()
		if kind == promptText {
			m.escape()
		}
		return m, m.afterInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitPrompt() {
	kind, id := m.prompt, m.editingID
	value := m.input.Value()
	m.closePrompt()

	switch kind {
	case promptText:
		if s := m.app.Document().CurrentPage().Shape(id); s != nil {
			value = strings.ReplaceAll(value, `\n`, "\n")
			var patch shape.Patch
			if s.Type() == shape.TypeText {
				patch.Text = shape.Ptr(value)
			} else {
				patch.Label = shape.Ptr(value)
			}
			m.app.UpdateShapes(document.Update{ID: id, Patch: patch})
		}
		m.escape()
	case promptSaveAs:
		path := strings.TrimSpace(value)
		if path == "" {
			m.status.SetMessage(LevelInfo, "save cancelled")
			return
		}
		m.save(m.app.Serialized(), path)
	}
}

// escape ends text editing on the board.
func (m *Model) escape() {
	e := input.KeyEvent{Key: input.KeyEscape}
	m.app.KeyDown(e)
	m.app.KeyUp(e)
}

func (m *Model) save(model document.Model, path string) {
	if m.opts.Save == nil {
		m.status.SetMessage(LevelError, "saving is not configured")
		return
	}
	if err := m.opts.Save(model, path); err != nil {
		m.log.Error("save: %v", err)
		m.status.SetMessage(LevelError, "save: %v", err)
		return
	}
	if path == "" {
		path = m.opts.Name
	}
	m.status.SetMessage(LevelSuccess, "saved %s", path)
}

func (m *Model) flush() {
	if m.opts.Autosave == nil {
		return
	}
	if err := m.opts.Autosave.Flush(context.Background()); err != nil {
		m.status.SetMessage(LevelError, "autosave: %v", err)
	}
}

// View draws the page and the status line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	c := canvas.New(m.width, m.rows(), m.opts.CellWidth, m.opts.CellHeight, m.app.Viewport().DocumentToScreen)
	m.opts.Renderer.Canvas = c
	m.app.Render()
	m.opts.Renderer.Canvas = nil
	m.drawOverlays(c)

	var b strings.Builder
	for row := 0; row < c.Rows(); row++ {
		for _, run := range c.Runs(row) {
			if style, ok := m.styles.Cell(run.Mark); ok {
				b.WriteString(style.Render(run.Text))
			} else {
				b.WriteString(run.Text)
			}
		}
		b.WriteByte('\n')
	}
	if m.prompt != promptNone {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.status.View(m.info(), m.keys.ShortHelp()))
	}
	return b.String()
}

func (m *Model) drawOverlays(c *canvas.Canvas) {
	if brush, ok := m.app.Brush(); ok {
		c.Rect(brush, canvas.MarkBrush)
	}
	if len(m.app.Document().SelectedIDs()) > 1 {
		if sel, ok := m.app.Selection(); ok && !sel.HideSelectionFrame {
			c.Rect(sel.Bounds.Expand(4/m.app.Viewport().Camera().Zoom), canvas.MarkBrush)
		}
	}
}

func (m *Model) info() Info {
	doc := m.app.Document()
	pages := doc.Pages()
	page := 1
	for i, p := range pages {
		if p.ID == doc.CurrentPageID() {
			page = i + 1
		}
	}
	t := m.app.Tool()
	return Info{
		Name:   m.opts.Name,
		Tool:   t.ID(),
		State:  t.State(),
		Zoom:   m.app.Viewport().Camera().Zoom,
		Page:   page,
		Pages:  len(pages),
		Locked: m.app.Settings().ToolLocked,
	}
}

var toolHelp = []string{
	"v select   h move   r box   e ellipse   d dot   l line",
	"s polygon   t text   p pencil   m highlighter   x erase",
	"",
	"ctrl+z undo   ctrl+y redo   ctrl+a select all   esc clear",
	"ctrl+g group   ctrl+shift+g ungroup   ctrl+d clone",
	"ctrl+] front   ctrl+[ back   ] forward   [ backward",
	"ctrl+s save   ctrl+shift+s save as   delete remove",
	"enter edit text or label   double click edit",
}

func (m *Model) helpView() string {
	h := help.New()
	h.Width = m.width
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Whiteboard"))
	b.WriteByte('\n')
	for _, line := range toolHelp {
		b.WriteString(m.styles.Normal.Render(line))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(h.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("press %s or esc to close", m.keys.Help.Help().Key)))
	return b.String()
}
