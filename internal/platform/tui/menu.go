package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// MenuChoice is an entry of the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceContinue
	ChoiceHost
	ChoiceJoin
	ChoiceScores
	ChoiceQuit
)

// String returns the menu label.
func (c MenuChoice) String() string {
	switch c {
	case ChoicePlay:
		return "New game"
	case ChoiceContinue:
		return "Continue"
	case ChoiceHost:
		return "Host versus"
	case ChoiceJoin:
		return "Join versus"
	case ChoiceScores:
		return "High scores"
	case ChoiceQuit:
		return "Quit"
	default:
		return "?"
	}
}

// MenuOptions decides which entries the menu offers.
type MenuOptions struct {
	CanContinue bool // A saved game exists
	Versus      bool // A relay is reachable
	HighScore   int
	Player      string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuChoice
	cursor   int
	width    int
	height   int
	opts     MenuOptions
	quitting bool
	selected *MenuChoice
}

// NewMenuModel creates a new menu model.
func NewMenuModel(opts MenuOptions, width, height int) MenuModel {
	items := []MenuChoice{ChoicePlay}
	if opts.CanContinue {
		items = []MenuChoice{ChoiceContinue, ChoicePlay}
	}
	if opts.Versus {
		items = append(items, ChoiceHost, ChoiceJoin)
	}
	items = append(items, ChoiceScores, ChoiceQuit)

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
		opts:   opts,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		choice := m.items[m.cursor]
		if choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &choice
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("T E T R I S"), m.width))
	b.WriteString("\n\n")

	if m.opts.Player != "" {
		b.WriteString(centerText("Welcome, "+m.opts.Player, m.width))
		b.WriteString("\n")
	}
	if m.opts.HighScore > 0 {
		b.WriteString(centerText(fmt.Sprintf("Best score: %d", m.opts.HighScore), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%-14s", cursor+item.String()), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(hintStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen entry, or nil if none yet.
func (m MenuModel) Selected() *MenuChoice {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width. Styled text is measured
// by its printed width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
