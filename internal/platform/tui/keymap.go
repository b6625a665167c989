package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// GameKeyMap defines the in-game key bindings.
type GameKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	SoftDrop  key.Binding
	HardDrop  key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// DefaultGameKeyMap returns arrow keys plus WASD and the classic Z/X rotation.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("up", "x", "w", "k"),
			key.WithHelp("↑/x", "rotate"),
		),
		RotateCCW: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "rotate back"),
		),
		SoftDrop: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "soft drop"),
		),
		HardDrop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "hard drop"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.RotateCW, k.HardDrop, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.SoftDrop, k.HardDrop},
		{k.RotateCW, k.RotateCCW},
		{k.Pause, k.Restart, k.Back, k.Quit},
	}
}

// MapKey translates a key message to a game action.
func (k GameKeyMap) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Left):
		return core.ActionLeft
	case key.Matches(msg, k.Right):
		return core.ActionRight
	case key.Matches(msg, k.RotateCW):
		return core.ActionRotateCW
	case key.Matches(msg, k.RotateCCW):
		return core.ActionRotateCCW
	case key.Matches(msg, k.SoftDrop):
		return core.ActionSoftDrop
	case key.Matches(msg, k.HardDrop):
		return core.ActionHardDrop
	case key.Matches(msg, k.Pause):
		return core.ActionPause
	case key.Matches(msg, k.Restart):
		return core.ActionRestart
	}
	return core.ActionNone
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
