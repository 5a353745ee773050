package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Info is what the status bar reports about the board.
type Info struct {
	Name   string
	Tool   string
	State  string
	Zoom   float64
	Page   int
	Pages  int
	Locked bool
}

// StatusBar shows the board state, the last message and key hints.
type StatusBar struct {
	styles  *Styles
	help    help.Model
	message string
	level   Level
	width   int
}

// NewStatusBar creates a status bar.
func NewStatusBar(s *Styles) *StatusBar {
	if s == nil {
		s = NewStyles(nil)
	}
	h := help.New()
	h.ShortSeparator = " | "
	return &StatusBar{styles: s, help: h, width: 80}
}

// SetMessage replaces the message.
func (b *StatusBar) SetMessage(level Level, format string, args ...any) {
	b.level = level
	b.message = fmt.Sprintf(format, args...)
}

// Message returns the current message.
func (b *StatusBar) Message() string { return b.message }

// Level returns the level of the current message.
func (b *StatusBar) Level() Level { return b.level }

// Clear drops the message.
func (b *StatusBar) Clear() {
	b.message = ""
	b.level = LevelInfo
}

// SetWidth sets the status bar width.
func (b *StatusBar) SetWidth(width int) {
	b.width = width
	b.help.Width = width / 2
}

// View renders the bar with info on the left and hints on the right.
func (b *StatusBar) View(info Info, hints []key.Binding) string {
	left := b.renderLeft(info)
	right := b.help.ShortHelpView(hints)

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).MaxHeight(1).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *StatusBar) renderLeft(info Info) string {
	tool := info.Tool
	if info.State != "" && info.State != "idle" {
		tool += ":" + info.State
	}
	if info.Locked {
		tool += " (locked)"
	}
	parts := []string{
		b.styles.Normal.Render(tool),
		b.styles.Muted.Render(fmt.Sprintf("%d%%", int(info.Zoom*100+0.5))),
	}
	if info.Pages > 1 {
		parts = append(parts, b.styles.Muted.Render(fmt.Sprintf("page %d/%d", info.Page, info.Pages)))
	}
	if info.Name != "" {
		parts = append(parts, b.styles.Muted.Render(info.Name))
	}
	if b.message != "" {
		switch b.level {
		case LevelError:
			parts = append(parts, b.styles.Error.Render("Error: "+b.message))
		case LevelSuccess:
			parts = append(parts, b.styles.Success.Render(b.message))
		default:
			parts = append(parts, b.styles.Normal.Render(b.message))
		}
	}
	return strings.Join(parts, "  ")
}
