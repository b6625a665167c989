package tui

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// AppOptions configures the full menu, lobby and game flow.
type AppOptions struct {
	Config   core.RuntimeConfig
	Store    *storage.Store   // Optional
	SaveSlot string           // Solo autosave slot
	Player   string           // Name stored with scores
	Dial     transport.Dialer // Nil hides the versus entries
	Logger   *log.Logger

	// Start skips the menu and opens this screen directly; leaving it
	// then quits. JoinCode prefills ChoiceJoin.
	Start    MenuChoice
	JoinCode string
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenLobby
	screenScores
)

// AppModel manages the whole session flow: menu -> lobby -> game -> menu.
// It is the top-level model for local play and for SSH sessions.
type AppModel struct {
	opts   AppOptions
	logger *log.Logger
	screen appScreen

	menu   MenuModel
	game   GameModel
	lobby  LobbyModel
	scores ScoreboardModel

	startCmd tea.Cmd
	err      error
	quitting bool
}

// NewAppModel creates the session model.
func NewAppModel(opts AppOptions) AppModel {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	m := AppModel{
		opts:   opts,
		logger: opts.Logger.WithPrefix("app"),
	}
	m.menu = m.newMenu()
	if opts.Start != ChoiceNone {
		next, cmd := m.open(opts.Start)
		m = next
		m.startCmd = cmd
	}
	return m
}

func (m AppModel) newMenu() MenuModel {
	opts := MenuOptions{
		Versus: m.opts.Dial != nil,
		Player: m.opts.Player,
	}
	if st := m.opts.Store; st != nil {
		if rows, cols, err := st.SaveDims(m.opts.SaveSlot); err == nil {
			opts.CanContinue = rows == m.opts.Config.BoardRows && cols == m.opts.Config.BoardCols
		}
		opts.HighScore, _ = st.HighScore(tetris.ModeSolo.String())
	}
	return NewMenuModel(opts, m.opts.Config.ScreenW, m.opts.Config.ScreenH)
}

// Init starts the first screen.
func (m AppModel) Init() tea.Cmd {
	if m.startCmd != nil {
		return m.startCmd
	}
	return m.menu.Init()
}

// open switches to the screen for a menu choice.
func (m AppModel) open(choice MenuChoice) (AppModel, tea.Cmd) {
	cfg := m.opts.Config
	switch choice {
	case ChoicePlay, ChoiceContinue:
		game, err := NewGameModel(GameOptions{
			Config:   cfg,
			Store:    m.opts.Store,
			SaveSlot: m.opts.SaveSlot,
			Load:     choice == ChoiceContinue,
			Player:   m.opts.Player,
			Logger:   m.opts.Logger,
		})
		if err != nil {
			m.err = err
			m.logger.Error("starting game", "err", err)
			return m, nil
		}
		m.game = game
		m.screen = screenGame
		return m, m.game.Init()

	case ChoiceHost, ChoiceJoin:
		intent := IntentHost
		if choice == ChoiceJoin {
			intent = IntentJoin
		}
		m.lobby = NewLobbyModel(m.opts.Dial, intent, m.opts.JoinCode, cfg.ScreenW, cfg.ScreenH)
		m.screen = screenLobby
		return m, m.lobby.Init()

	case ChoiceScores:
		m.scores = NewScoreboardModel(m.opts.Store, cfg.ScreenW, cfg.ScreenH)
		m.screen = screenScores
		return m, m.scores.Init()
	}
	return m, nil
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Config.ScreenW = wsm.Width
		m.opts.Config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenLobby:
		return m.updateLobby(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, nil // Stale tick from a finished game
	}
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if choice := m.menu.Selected(); choice != nil {
		m.err = nil
		return m.open(*choice)
	}
	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	m.game = next.(GameModel)

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m AppModel) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.lobby.Update(msg)
	m.lobby = next.(LobbyModel)

	if m.lobby.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.lobby.BackToMenu() {
		return m.backToMenu()
	}
	if client, ok := m.lobby.Paired(); ok {
		game, err := NewGameModel(GameOptions{
			Config: m.opts.Config,
			Store:  m.opts.Store,
			Player: m.opts.Player,
			Logger: m.opts.Logger,
			Conn:   client,
			Master: client.Role().Master(),
			Peer:   client.Peer(),
		})
		if err != nil {
			client.Close()
			m.err = err
			return m.backToMenu()
		}
		m.logger.Info("versus started", "code", client.Code(), "role", client.Role(), "peer", client.Peer())
		m.game = game
		m.screen = screenGame
		return m, m.game.Init()
	}
	return m, cmd
}

func (m AppModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	m.scores = next.(ScoreboardModel)

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m AppModel) backToMenu() (tea.Model, tea.Cmd) {
	if m.opts.Start != ChoiceNone {
		m.quitting = true
		return m, tea.Quit
	}
	m.menu = m.newMenu()
	m.screen = screenMenu
	return m, m.menu.Init()
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	var view string
	switch m.screen {
	case screenGame:
		view = m.game.View()
	case screenLobby:
		view = m.lobby.View()
	case screenScores:
		view = m.scores.View()
	default:
		view = m.menu.View()
	}
	if m.err != nil {
		view += "\n" + errorStyle.Render(m.err.Error())
	}
	return view
}

// Err returns the error that ended the last screen, if any.
func (m AppModel) Err() error { return m.err }

// RunApp starts the session flow as a standalone program.
func RunApp(opts AppOptions) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if app, ok := final.(AppModel); ok && app.err != nil && !errors.Is(app.err, storage.ErrNoSave) {
		return app.err
	}
	return nil
}
