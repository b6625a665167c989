package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/peer"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
	"github.com/vovakirdan/tui-tetris/internal/transport"
)

// GameOptions configures a game screen.
type GameOptions struct {
	Config   core.RuntimeConfig
	Store    *storage.Store // Optional
	SaveSlot string         // Solo save slot; empty disables saving
	Load     bool           // Resume from SaveSlot
	Player   string         // Name stored with scores
	Logger   *log.Logger

	// Versus only. A nil Conn means solo.
	Conn   transport.Conn
	Master bool
	Peer   string
}

// frameMsg carries a frame received from the peer.
type frameMsg []byte

// peerErrMsg ends the link with the peer.
type peerErrMsg struct{ err error }

// outboxSize bounds frames waiting to be written to the peer.
const outboxSize = 128

// GameModel is the Bubble Tea model for one solo or versus game.
type GameModel struct {
	opts   GameOptions
	logger *log.Logger

	engine *tetris.Engine
	sync   *peer.Sync
	outbox chan []byte
	cancel context.CancelFunc

	screen     *core.Screen
	keys       GameKeyMap
	help       help.Model
	inputFrame core.InputFrame
	gameState  core.GameState
	highScore  int
	status     string

	scoreSaved bool
	peerGone   bool
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game. With Load set, the solo save slot is
// restored; a missing slot starts a fresh game.
func NewGameModel(opts GameOptions) (GameModel, error) {
	if opts.Config.Seed == 0 {
		opts.Config.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	m := GameModel{
		opts:   opts,
		logger: opts.Logger.WithPrefix("game"),
		screen: core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
		keys:   DefaultGameKeyMap(),
		help:   help.New(),
	}
	m.engine = m.newEngine()

	if opts.Load && m.savingEnabled() {
		err := opts.Store.LoadGame(opts.SaveSlot, m.engine)
		switch {
		case errors.Is(err, storage.ErrNoSave):
			m.logger.Info("no saved game, starting fresh", "slot", opts.SaveSlot)
		case err != nil:
			return GameModel{}, fmt.Errorf("loading saved game: %w", err)
		}
	}
	if opts.Store != nil {
		if high, err := opts.Store.HighScore(m.engine.Mode().String()); err == nil {
			m.highScore = high
		}
	}

	if opts.Conn != nil {
		m.sync = peer.NewSync(m.engine, m.logger)
		m.outbox = make(chan []byte, outboxSize)
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		go sendLoop(ctx, opts.Conn, m.outbox, m.logger)
	}
	return m, nil
}

func (m GameModel) newEngine() *tetris.Engine {
	opts := tetris.Options{
		Rows:          m.opts.Config.BoardRows,
		Cols:          m.opts.Config.BoardCols,
		Seed:          m.opts.Config.Seed,
		AnimateClears: m.opts.Config.AnimateClears,
	}
	if m.opts.Conn != nil {
		opts.Mode = tetris.ModeVersus
		opts.Master = m.opts.Master
	}
	e := tetris.New(opts)
	if m.savingEnabled() {
		store, slot, logger := m.opts.Store, m.opts.SaveSlot, m.logger
		e.SetSpawnHook(func() {
			if err := store.SaveGame(slot, e); err != nil {
				logger.Warn("autosave failed", "slot", slot, "err", err)
			}
		})
	}
	return e
}

func (m GameModel) savingEnabled() bool {
	return m.opts.Store != nil && m.opts.SaveSlot != "" && m.opts.Conn == nil
}

// sendLoop writes queued frames in order until ctx ends or a write fails.
func sendLoop(ctx context.Context, conn transport.Conn, outbox <-chan []byte, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbox:
			if err := conn.Send(ctx, frame); err != nil {
				logger.Debug("send failed", "err", err)
				return
			}
		}
	}
}

// recvCmd waits for the next frame from the peer.
func (m GameModel) recvCmd() tea.Cmd {
	conn := m.opts.Conn
	return func() tea.Msg {
		frame, err := conn.Recv(context.Background())
		if err != nil {
			return peerErrMsg{err: err}
		}
		return frameMsg(frame)
	}
}

// Init starts the tick loop and, in versus, the receive loop.
func (m GameModel) Init() tea.Cmd {
	if m.opts.Conn != nil {
		return tea.Batch(tickCmd(m.opts.Config.TickRate), m.recvCmd())
	}
	return tickCmd(m.opts.Config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Config.ScreenW = msg.Width
		m.opts.Config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()

	case frameMsg:
		if m.sync == nil {
			return m, nil
		}
		// Malformed frames are logged by Sync and skipped.
		_ = m.sync.Apply(msg)
		return m, m.recvCmd()

	case peerErrMsg:
		m.peerGone = true
		if m.engine.Over() {
			return m, nil
		}
		m.status = "opponent left"
		if !errors.Is(msg.err, transport.ErrPeerGone) {
			m.status = "connection lost"
		}
		m.logger.Info("peer link closed", "err", msg.err)
		return m, nil
	}
	return m, nil
}

// handleKey queues the action for the next tick. Quit and back act at once.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) && (m.engine.Over() || m.engine.Paused() || m.peerGone) {
		m.shutdown()
		m.backToMenu = true
		return m, nil
	}

	action := m.keys.MapKey(msg)
	if action == core.ActionQuit {
		m.shutdown()
		m.quitting = true
		return m, tea.Quit
	}
	m.inputFrame.Set(action)
	return m, nil
}

// handleTick applies queued input in arrival order, then advances the engine.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu || m.quitting {
		return m, nil
	}

	for _, a := range m.inputFrame.Actions {
		m.apply(a)
	}
	m.inputFrame.Clear()

	if err := m.engine.Tick(); errors.Is(err, tetris.ErrGameOver) {
		m.onGameOver()
	}

	if m.sync != nil && !m.peerGone {
		if frame, ok := m.sync.Outgoing(); ok {
			select {
			case m.outbox <- frame:
			default:
				m.logger.Warn("outbox full, frame dropped")
			}
		}
	}

	m.gameState = core.GameState{
		Score:    m.engine.Points(),
		Lines:    m.engine.Lines(),
		Level:    m.engine.Level(),
		GameOver: m.engine.Over(),
		Paused:   m.engine.Paused(),
		Waiting:  !m.engine.IsMaster(),
	}
	return m, tickCmd(m.opts.Config.TickRate)
}

func (m *GameModel) apply(a core.Action) {
	var err error
	switch a {
	case core.ActionLeft:
		m.engine.MoveLeft()
	case core.ActionRight:
		m.engine.MoveRight()
	case core.ActionRotateCW:
		m.engine.Rotate(tetris.Clockwise)
	case core.ActionRotateCCW:
		m.engine.Rotate(tetris.CounterClockwise)
	case core.ActionSoftDrop:
		err = m.engine.SoftDrop()
	case core.ActionHardDrop:
		err = m.engine.HardDrop()
	case core.ActionPause:
		// A versus board keeps moving for the peer, so only solo pauses.
		if m.sync == nil && !m.engine.Over() {
			m.engine.TogglePause()
		}
	case core.ActionRestart:
		if m.engine.Over() && m.sync == nil {
			m.opts.Config.Seed = time.Now().UnixNano()
			m.engine = m.newEngine()
			m.scoreSaved = false
		}
	}
	if errors.Is(err, tetris.ErrGameOver) {
		m.onGameOver()
	}
}

// onGameOver records the score once and drops the finished save.
func (m *GameModel) onGameOver() {
	if m.scoreSaved {
		return
	}
	m.scoreSaved = true
	m.logger.Info("game over", "points", m.engine.Points(), "lines", m.engine.Lines())

	if m.opts.Store == nil {
		return
	}
	if m.engine.Points() > 0 {
		if _, err := m.opts.Store.SaveEngineScore(m.opts.Player, m.engine); err != nil {
			m.logger.Warn("saving score", "err", err)
		}
	}
	if m.savingEnabled() {
		if err := m.opts.Store.DeleteSave(m.opts.SaveSlot); err != nil {
			m.logger.Warn("removing finished save", "err", err)
		}
	}
	// The peer sees us leave; there is no frame for "I lost".
	if m.opts.Conn != nil {
		m.shutdown()
	}
}

// shutdown saves a running solo game and closes the peer link.
func (m *GameModel) shutdown() {
	if m.savingEnabled() && !m.engine.Over() && m.engine.Frame() > 0 {
		if err := m.opts.Store.SaveGame(m.opts.SaveSlot, m.engine); err != nil {
			m.logger.Warn("saving on exit", "err", err)
		}
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
		_ = m.opts.Conn.Close()
	}
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	DrawGame(m.screen, m.gameView())
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

func (m GameModel) gameView() GameView {
	return GameView{
		Board:     m.engine.Board(),
		Ghost:     m.engine.Ghost(),
		Next:      m.engine.NextPiece(),
		Anim:      m.engine.Animation(),
		Snapshot:  m.engine.Snapshot(),
		HighScore: m.highScore,
		Peer:      m.opts.Peer,
		Status:    m.status,
	}
}

// State returns the status of the game as of the last tick.
func (m GameModel) State() core.GameState { return m.gameState }

// Engine exposes the running engine, mainly for tests.
func (m GameModel) Engine() *tetris.Engine { return m.engine }

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool { return m.backToMenu }

// Run starts a standalone game program.
func Run(opts GameOptions) error {
	model, err := NewGameModel(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
