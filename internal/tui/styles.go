package tui

import (
	"github.com/charmbracelet/lipgloss"

	"whiteboard/internal/canvas"
)

// Theme is the colour palette of the terminal front end.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Secondary:  lipgloss.Color("#06B6D4"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles are the lipgloss styles built from a theme.
type Styles struct {
	Hovered   lipgloss.Style
	Selected  lipgloss.Style
	Brush     lipgloss.Style
	StatusBar lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Title     lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme uses the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Hovered:   lipgloss.NewStyle().Foreground(theme.Secondary),
		Selected:  lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		Brush:     lipgloss.NewStyle().Foreground(theme.Muted),
		StatusBar: lipgloss.NewStyle().Foreground(theme.Foreground).Background(theme.Border),
		Normal:    lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		Success:   lipgloss.NewStyle().Foreground(theme.Success),
		Error:     lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
		Title:     lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).MarginBottom(1),
	}
}

// Cell returns the style for cells carrying mark. Unmarked cells are
// written unstyled.
func (s *Styles) Cell(mark canvas.Mark) (lipgloss.Style, bool) {
	switch mark {
	case canvas.MarkHovered:
		return s.Hovered, true
	case canvas.MarkSelected:
		return s.Selected, true
	case canvas.MarkBrush:
		return s.Brush, true
	default:
		return lipgloss.Style{}, false
	}
}
