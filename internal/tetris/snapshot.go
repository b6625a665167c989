package tetris

// StateType is the coarse engine state.
type StateType string

const (
	StatePlaying   StateType = "playing"
	StateAnimating StateType = "animating"
	StatePaused    StateType = "paused"
	StateWaiting   StateType = "waiting" // Versus: the peer owns the piece
	StateGameOver  StateType = "game_over"
)

// Snapshot captures the complete engine state for determinism testing.
type Snapshot struct {
	Frame  uint64
	Mode   string
	Points int
	Lines  int
	Level  int
	Next   PieceID
	Board  string // Board.String rendering
	Master bool
	State  StateType
}

// Snapshot returns the current engine snapshot.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Frame:  e.frame,
		Mode:   e.mode.String(),
		Points: e.points,
		Lines:  e.lines,
		Level:  e.level,
		Next:   e.gen.Peek().ID,
		Board:  e.board.String(),
		Master: e.owns(),
		State:  e.State(),
	}
}

// State returns the coarse state, most terminal first.
func (e *Engine) State() StateType {
	switch {
	case e.over:
		return StateGameOver
	case e.paused:
		return StatePaused
	case e.anim != nil:
		return StateAnimating
	case !e.owns():
		return StateWaiting
	default:
		return StatePlaying
	}
}
