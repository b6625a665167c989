package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// LobbyIntent selects which side of a lobby the player takes.
type LobbyIntent int

const (
	IntentHost LobbyIntent = iota
	IntentJoin
)

// LobbyState is the current step of the versus matchmaking flow.
type LobbyState int

const (
	LobbyConnecting  LobbyState = iota // Dialing the relay
	LobbyHostWaiting                   // Code known, waiting for the joiner
	LobbyEnterCode                     // Typing a join code
	LobbyJoining                       // Join sent, waiting for pairing
	LobbyPaired                        // Both players present
)

type hostedMsg struct{ client *transport.Client }
type pairedMsg struct{ client *transport.Client }
type lobbyErrMsg struct{ err error }

// LobbyModel connects to the relay and pairs with an opponent.
type LobbyModel struct {
	dial   transport.Dialer
	intent LobbyIntent
	state  LobbyState

	ctx    context.Context
	cancel context.CancelFunc

	input   textinput.Model
	spinner spinner.Model
	client  *transport.Client
	err     error

	width      int
	height     int
	backToMenu bool
	quitting   bool
}

// NewLobbyModel creates the lobby flow. For IntentJoin an empty code asks
// the player to type one.
func NewLobbyModel(dial transport.Dialer, intent LobbyIntent, code string, width, height int) LobbyModel {
	ti := textinput.New()
	ti.Placeholder = "ABC123"
	ti.CharLimit = 6
	ti.Width = 8
	ti.SetValue(strings.ToUpper(code))

	ctx, cancel := context.WithCancel(context.Background())
	m := LobbyModel{
		dial:    dial,
		intent:  intent,
		state:   LobbyConnecting,
		ctx:     ctx,
		cancel:  cancel,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   width,
		height:  height,
	}
	if intent == IntentJoin {
		m.state = LobbyJoining
		if code == "" {
			m.state = LobbyEnterCode
			m.input.Focus()
		}
	}
	return m
}

// Init starts connecting, or waits for a code to be typed.
func (m LobbyModel) Init() tea.Cmd {
	switch m.state {
	case LobbyEnterCode:
		return textinput.Blink
	case LobbyJoining:
		return tea.Batch(m.spinner.Tick, m.joinCmd(m.input.Value()))
	default:
		return tea.Batch(m.spinner.Tick, m.hostCmd())
	}
}

func (m LobbyModel) hostCmd() tea.Cmd {
	ctx, dial := m.ctx, m.dial
	return func() tea.Msg {
		rec, err := dial(ctx)
		if err != nil {
			return lobbyErrMsg{fmt.Errorf("connecting to relay: %w", err)}
		}
		c, err := transport.Host(ctx, rec)
		if err != nil {
			rec.Close()
			return lobbyErrMsg{err}
		}
		return hostedMsg{c}
	}
}

func (m LobbyModel) waitPeerCmd(c *transport.Client) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := c.WaitPeer(ctx); err != nil {
			return lobbyErrMsg{err}
		}
		return pairedMsg{c}
	}
}

func (m LobbyModel) joinCmd(code string) tea.Cmd {
	ctx, dial := m.ctx, m.dial
	return func() tea.Msg {
		rec, err := dial(ctx)
		if err != nil {
			return lobbyErrMsg{fmt.Errorf("connecting to relay: %w", err)}
		}
		c, err := transport.Join(ctx, rec, code)
		if err != nil {
			rec.Close()
			return lobbyErrMsg{err}
		}
		return pairedMsg{c}
	}
}

// Update handles messages.
func (m LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case hostedMsg:
		if m.backToMenu {
			msg.client.Close()
			return m, nil
		}
		m.client = msg.client
		m.state = LobbyHostWaiting
		return m, m.waitPeerCmd(msg.client)

	case pairedMsg:
		if m.backToMenu {
			msg.client.Close()
			return m, nil
		}
		m.client = msg.client
		m.state = LobbyPaired
		return m, nil

	case lobbyErrMsg:
		if m.backToMenu {
			return m, nil
		}
		m.err = msg.err
		if m.intent == IntentJoin {
			// Let the player fix the code and try again.
			m.state = LobbyEnterCode
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	if m.state == LobbyEnterCode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.leave()
		m.backToMenu = true
		return m, nil
	}

	if m.state != LobbyEnterCode {
		if msg.String() == "q" {
			m.leave()
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		code := strings.ToUpper(strings.TrimSpace(m.input.Value()))
		if len(code) != 6 {
			m.err = errors.New("a join code has 6 characters")
			return m, nil
		}
		m.err = nil
		m.state = LobbyJoining
		m.input.Blur()
		return m, tea.Batch(m.spinner.Tick, m.joinCmd(code))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.input.SetValue(strings.ToUpper(m.input.Value()))
	return m, cmd
}

// leave abandons the lobby: the relay closes it and tells the peer.
func (m *LobbyModel) leave() {
	m.cancel()
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
}

// View renders the lobby screen.
func (m LobbyModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(centerText(s, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.state {
	case LobbyConnecting:
		line("HOST VERSUS")
		b.WriteString("\n")
		line(m.spinner.View() + " Connecting to relay...")

	case LobbyHostWaiting:
		line("HOST VERSUS")
		b.WriteString("\n")
		line("Share this code with your opponent:")
		b.WriteString("\n")
		line(titleStyle.Render("[ " + m.client.Code() + " ]"))
		b.WriteString("\n")
		line(m.spinner.View() + " Waiting for opponent...")

	case LobbyEnterCode:
		line("JOIN VERSUS")
		b.WriteString("\n")
		line("Enter join code:")
		b.WriteString("\n")
		line(m.input.View())

	case LobbyJoining:
		line("JOIN VERSUS")
		b.WriteString("\n")
		line(m.spinner.View() + " Joining " + strings.ToUpper(m.input.Value()) + "...")

	case LobbyPaired:
		line("OPPONENT FOUND")
		b.WriteString("\n")
		line("Playing against " + m.client.Peer())
	}

	if m.err != nil {
		b.WriteString("\n")
		line(errorStyle.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n")
	if m.state == LobbyEnterCode {
		line("Enter: Connect  |  Esc: Back")
	} else {
		line("Esc: Cancel  |  Q: Quit")
	}
	return b.String()
}

// Paired returns the relay client once an opponent is present.
func (m LobbyModel) Paired() (*transport.Client, bool) {
	if m.state != LobbyPaired || m.client == nil {
		return nil, false
	}
	return m.client, true
}

// State returns the current lobby state.
func (m LobbyModel) State() LobbyState { return m.state }

// Err returns the last error shown to the player.
func (m LobbyModel) Err() error { return m.err }

// BackToMenu returns true if user wants to go back to menu.
func (m LobbyModel) BackToMenu() bool { return m.backToMenu }

// IsQuitting returns true if user wants to quit entirely.
func (m LobbyModel) IsQuitting() bool { return m.quitting }
