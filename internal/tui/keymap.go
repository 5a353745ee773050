package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the keys the terminal front end handles itself. Every other
// key goes to the board.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	Copy  key.Binding
	Paste key.Binding

	ZoomIn       key.Binding
	ZoomOut      key.Binding
	ResetZoom    key.Binding
	Fit          key.Binding
	FitSelection key.Binding
	PanUp        key.Binding
	PanDown      key.Binding
	PanLeft      key.Binding
	PanRight     key.Binding
	CloneUp      key.Binding
	CloneDown    key.Binding
	CloneLeft    key.Binding
	CloneRight   key.Binding
	NewPage      key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	ToggleLocked key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		ResetZoom: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),
		Fit: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fit page"),
		),
		FitSelection: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "fit selection"),
		),
		PanUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "pan up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "pan down"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "pan right"),
		),
		CloneUp: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "clone up"),
		),
		CloneDown: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "clone down"),
		),
		CloneLeft: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", "clone left"),
		),
		CloneRight: key.NewBinding(
			key.WithKeys("alt+right"),
			key.WithHelp("alt+→", "clone right"),
		),
		NewPage: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "next page"),
		),
		ToggleLocked: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "lock tool"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the hints shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// PromptHelp returns the hints shown while a prompt is open.
func (k *KeyMap) PromptHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns the bindings listed on the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.ResetZoom, k.Fit, k.FitSelection},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.CloneUp, k.CloneDown, k.CloneLeft, k.CloneRight},
		{k.Copy, k.Paste, k.NewPage, k.PrevPage, k.NextPage},
		{k.ToggleLocked, k.Help, k.Quit},
	}
}
