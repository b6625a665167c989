package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

const maxScores = 100 // Max rows to load per tab

// scoreTab is one page of the scoreboard.
type scoreTab int

const (
	tabSolo scoreTab = iota
	tabVersus
	tabCount
)

func (t scoreTab) String() string {
	if t == tabVersus {
		return "Versus matches"
	}
	return "Solo scores"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next page"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	store     *storage.Store
	tab       scoreTab
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	empty     bool
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.reload()
	return m
}

// reload rebuilds the table for the current tab.
func (m *ScoreboardModel) reload() {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case tabSolo:
		columns = []table.Column{
			{Title: "Rank", Width: 5},
			{Title: "Player", Width: 14},
			{Title: "Score", Width: 9},
			{Title: "Lines", Width: 6},
			{Title: "Level", Width: 6},
			{Title: "Date", Width: 13},
		}
		if m.store != nil {
			scores, _ := m.store.TopScores(tetris.ModeSolo.String(), maxScores)
			for i, s := range scores {
				rows = append(rows, table.Row{
					fmt.Sprintf("#%d", i+1),
					s.Name,
					fmt.Sprintf("%d", s.Points),
					fmt.Sprintf("%d", s.Lines),
					fmt.Sprintf("%d", s.Level),
					s.CreatedAt.Format("Jan 02 15:04"),
				})
			}
		}

	case tabVersus:
		columns = []table.Column{
			{Title: "Code", Width: 7},
			{Title: "Ended", Width: 14},
			{Title: "Frames", Width: 7},
			{Title: "Turns", Width: 6},
			{Title: "Time", Width: 7},
			{Title: "Date", Width: 13},
		}
		if m.store != nil {
			matches, _ := m.store.RecentVersusMatches(maxScores)
			for _, v := range matches {
				rows = append(rows, table.Row{
					v.Code,
					v.EndReason,
					fmt.Sprintf("%d", v.Frames),
					fmt.Sprintf("%d", v.Handoffs),
					fmt.Sprintf("%dm%02ds", v.Duration/60, v.Duration%60),
					v.CreatedAt.Format("Jan 02 15:04"),
				})
			}
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	m.empty = len(rows) == 0
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.reload()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("HIGH SCORES"), m.width))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, tabCount)
	for t := range tabCount {
		if t == m.tab {
			tabs[t] = activeTabStyle.Render(t.String())
		} else {
			tabs[t] = tabStyle.Render(t.String())
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.tableContent()), m.width))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) tableContent() string {
	if !m.empty {
		return m.table.View()
	}
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	if m.tab == tabVersus {
		return emptyStyle.Render("No versus matches yet.")
	}
	return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}
