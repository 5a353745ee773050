package tui

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"whiteboard/app"
	"whiteboard/geometry"
	"whiteboard/input"
)

const (
	// doubleClickTime is the longest gap between two releases in the same
	// cell that still counts as a double click.
	doubleClickTime = 400 * time.Millisecond
	// wheelCells is how many cells one wheel notch or arrow key pans.
	wheelCells = 3
)

// keyEvent translates a terminal key into a board key. Keys the board has
// no name for report false.
func keyEvent(msg tea.KeyMsg) (input.KeyEvent, bool) {
	e := input.KeyEvent{Modifiers: input.Modifiers{Alt: msg.Alt}}
	switch msg.Type {
	case tea.KeyEsc:
		e.Key = input.KeyEscape
	case tea.KeyEnter:
		e.Key = input.KeyEnter
	case tea.KeyDelete:
		e.Key = input.KeyDelete
	case tea.KeyBackspace:
		e.Key = input.KeyBackspace
	case tea.KeySpace:
		e.Key = input.KeySpace
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return e, false
		}
		r := msg.Runes[0]
		e.Key = string(r)
		e.Modifiers.Shift = unicode.IsUpper(r)
	default:
		name := strings.TrimPrefix(msg.String(), "alt+")
		rest, ok := strings.CutPrefix(name, "ctrl+")
		if !ok {
			return e, false
		}
		e.Modifiers.Ctrl = true
		if shifted, ok := strings.CutPrefix(rest, "shift+"); ok {
			rest = shifted
			e.Modifiers.Shift = true
		}
		if len([]rune(rest)) != 1 {
			return e, false
		}
		e.Key = rest
	}
	return e, true
}

func mouseButton(b tea.MouseButton) int {
	switch b {
	case tea.MouseButtonMiddle:
		return input.ButtonMiddle
	case tea.MouseButtonRight:
		return input.ButtonSecondary
	default:
		return input.ButtonPrimary
	}
}

func isWheel(b tea.MouseButton) bool {
	switch b {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return true
	}
	return false
}

// wheelDelta is the screen distance one wheel notch scrolls.
func wheelDelta(b tea.MouseButton, cellW, cellH float64) geometry.Point {
	switch b {
	case tea.MouseButtonWheelUp:
		return geometry.Pt(0, -wheelCells*cellH)
	case tea.MouseButtonWheelDown:
		return geometry.Pt(0, wheelCells*cellH)
	case tea.MouseButtonWheelLeft:
		return geometry.Pt(-wheelCells*cellW, 0)
	case tea.MouseButtonWheelRight:
		return geometry.Pt(wheelCells*cellW, 0)
	}
	return geometry.Point{}
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// droppedFiles reads a bracketed paste as a list of image paths. Terminals
// paste dragged files as their quoted or escaped paths. It reports false
// unless every entry names an existing image file.
func droppedFiles(text string) ([]app.File, bool) {
	fields := splitPaths(text)
	if len(fields) == 0 {
		return nil, false
	}
	files := make([]app.File, 0, len(fields))
	for _, path := range fields {
		ext := strings.ToLower(filepath.Ext(path))
		if !imageExts[ext] {
			return nil, false
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, false
		}
		typ := mime.TypeByExtension(ext)
		if typ == "" {
			typ = "image/" + strings.TrimPrefix(ext, ".")
		}
		files = append(files, app.File{
			Name: filepath.Base(path),
			Type: typ,
			Path: path,
			Size: info.Size(),
		})
	}
	return files, true
}

// splitPaths splits on unescaped whitespace and strips quotes and
// backslash escapes.
func splitPaths(text string) []string {
	var (
		out     []string
		cur     strings.Builder
		quote   rune
		escaped bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.TrimSpace(text) {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote == 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, p := range out {
		out[i] = strings.TrimPrefix(p, "file://")
	}
	return out
}
