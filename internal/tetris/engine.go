package tetris

import "fmt"

// Mode selects single-player or a two-peer shared board.
type Mode int

const (
	ModeSolo   Mode = iota
	ModeVersus      // Two engines share one board and hand the piece back and forth
)

func (m Mode) String() string {
	switch m {
	case ModeSolo:
		return "solo"
	case ModeVersus:
		return "versus"
	default:
		return "unknown"
	}
}

// Rotation is a quarter-turn direction in screen coordinates (row grows downward).
type Rotation int

const (
	Clockwise        Rotation = 1
	CounterClockwise Rotation = -1
)

// Options configures a new Engine.
type Options struct {
	Rows int // Board height (default 20)
	Cols int // Board width (default 10)
	Seed int64
	Mode Mode

	// Master is the initial ownership in ModeVersus. Ignored in ModeSolo.
	Master bool

	// AnimateClears runs the column wipe before cleared rows disappear.
	// When false, rows are removed at lock time.
	AnimateClears bool
}

// DefaultOptions returns the reference geometry with clear animations on.
func DefaultOptions() Options {
	return Options{
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		Mode:          ModeSolo,
		AnimateClears: true,
	}
}

// Engine owns a board and a generator and applies the game rules to them.
//
// An Engine is not safe for concurrent use. The caller drives it from one
// goroutine: one Tick per frame, input calls in between.
type Engine struct {
	board *Board
	gen   *Generator

	level  int
	points int
	lines  int
	frame  uint64
	paused bool
	over   bool

	anim    *LineClearAnimation
	animate bool

	mode    Mode
	master  bool
	handoff bool // Ownership was given away; the next sync frame must say so

	beforeSpawn func()
}

// New creates an engine with an empty board. Nothing spawns until the first Tick.
func New(opts Options) *Engine {
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	if opts.Cols <= 0 {
		opts.Cols = DefaultCols
	}
	return &Engine{
		board:   NewBoard(opts.Rows, opts.Cols),
		gen:     NewGenerator(opts.Seed),
		animate: opts.AnimateClears,
		mode:    opts.Mode,
		master:  opts.Mode == ModeVersus && opts.Master,
	}
}

// SetSpawnHook registers fn to run right before each new piece spawns.
// The platform uses it as the autosave point.
func (e *Engine) SetSpawnHook(fn func()) {
	e.beforeSpawn = fn
}

// Tick advances the engine by one frame.
//
// While a clear animation runs, each tick advances it one step. Otherwise the
// engine acts only on gravity frames: the active piece falls, or a new piece
// spawns when there is none. In versus mode only the master applies gravity
// and spawns. ErrGameOver is returned when a spawn is blocked and on every
// call after that.
func (e *Engine) Tick() error {
	if e.over {
		return ErrGameOver
	}
	if e.paused {
		return nil
	}
	defer func() { e.frame++ }()

	if e.anim != nil {
		if !e.anim.Advance() {
			e.finishClear()
		}
		return nil
	}

	if e.frame%uint64(FramesPerGridcell(e.level)) != 0 {
		return nil
	}
	if !e.owns() {
		return nil
	}

	if e.board.HasActivePiece() {
		if fallOnce(e.board) {
			e.afterLock()
		}
		return nil
	}
	return e.spawnNext()
}

// AdvanceGravity moves the active piece down one row, or locks it when it
// cannot move. A lock runs line-clear scoring and, in versus mode, gives
// ownership away. It does not check input gating; SoftDrop and HardDrop do.
func (e *Engine) AdvanceGravity() (locked bool, err error) {
	if e.over {
		return false, ErrGameOver
	}
	if !e.board.HasActivePiece() {
		return false, nil
	}
	if fallOnce(e.board) {
		e.afterLock()
		return true, nil
	}
	return false, nil
}

// fallOnce applies one gravity step to the board.
//
// A piece touching the bottom row locks in place. Otherwise every falling
// cell moves down one row, bottom-up so no cell overwrites an unmoved cell of
// its own piece; if any cell would land on a placed cell the board is
// restored from a snapshot and the piece locks where it was.
func fallOnce(b *Board) bool {
	bottom := b.rows - 1
	for c := range b.cols {
		if b.At(bottom, c).IsFalling() {
			b.LockActivePiece()
			return true
		}
	}

	snapshot := b.Clone()
	for r := bottom - 1; r >= 0; r-- {
		for c := range b.cols {
			cell := b.At(r, c)
			if !cell.IsFalling() {
				continue
			}
			if b.At(r+1, c).IsPlaced() {
				b.Restore(snapshot)
				b.LockActivePiece()
				return true
			}
			b.set(r+1, c, cell)
			b.set(r, c, Cell{})
		}
	}
	return false
}

// MoveLeft shifts the active piece one column left. It reports whether the piece moved.
func (e *Engine) MoveLeft() bool {
	return e.shift(-1)
}

// MoveRight shifts the active piece one column right. It reports whether the piece moved.
func (e *Engine) MoveRight() bool {
	return e.shift(1)
}

// shift moves every falling cell dc columns, all or nothing. The feasibility
// check is exact, so no snapshot is needed.
func (e *Engine) shift(dc int) bool {
	if !e.canControl() {
		return false
	}
	b := e.board
	falling := b.FallingCells()
	if len(falling) == 0 {
		return false
	}
	for _, p := range falling {
		col := p.Col + dc
		if !b.InBounds(p.Row, col) || b.At(p.Row, col).IsPlaced() {
			return false
		}
	}

	// Move the leading edge first.
	if dc > 0 {
		for i := len(falling) - 1; i >= 0; i-- {
			b.moveCell(falling[i], Position{Row: falling[i].Row, Col: falling[i].Col + dc})
		}
	} else {
		for _, p := range falling {
			b.moveCell(p, Position{Row: p.Row, Col: p.Col + dc})
		}
	}
	return true
}

func (b *Board) moveCell(from, to Position) {
	b.set(to.Row, to.Col, b.At(from.Row, from.Col))
	b.set(from.Row, from.Col, Cell{})
}

// Rotate turns the active piece a quarter turn around its center cell.
//
// Each non-center cell at offset (dr, dc) from the center moves to
// (dir*dc, -dir*dr). If any target is off the board or occupied the board is
// restored exactly. Pieces without a center or flagged NoRotation never turn.
func (e *Engine) Rotate(dir Rotation) bool {
	if !e.canControl() || (dir != Clockwise && dir != CounterClockwise) {
		return false
	}
	b := e.board
	center, ok := b.Center()
	if !ok {
		return false
	}
	if p, _ := PieceByID(b.At(center.Row, center.Col).Piece); p.NoRotation {
		return false
	}

	snapshot := b.Clone()

	type lifted struct {
		pos  Position
		cell Cell
	}
	var cells []lifted
	for _, p := range b.FallingCells() {
		if p == center {
			continue
		}
		cells = append(cells, lifted{pos: p, cell: b.At(p.Row, p.Col)})
		b.set(p.Row, p.Col, Cell{})
	}

	d := int(dir)
	for _, l := range cells {
		dr := l.pos.Row - center.Row
		dc := l.pos.Col - center.Col
		if !b.TryPut(center.Row+d*dc, center.Col-d*dr, l.cell) {
			b.Restore(snapshot)
			return false
		}
	}
	return true
}

// SoftDrop forces one row of descent, worth one point when the piece moves.
// If the piece locks instead, the next piece spawns right away when possible.
func (e *Engine) SoftDrop() error {
	if e.over {
		return ErrGameOver
	}
	if !e.canControl() || !e.board.HasActivePiece() {
		return nil
	}
	if !fallOnce(e.board) {
		e.points++
		return nil
	}
	e.afterLock()
	return e.spawnIfReady()
}

// HardDrop drops the active piece to its landing row, one point per row
// descended, locks it and spawns the next piece when possible.
func (e *Engine) HardDrop() error {
	if e.over {
		return ErrGameOver
	}
	if !e.canControl() || !e.board.HasActivePiece() {
		return nil
	}
	for !fallOnce(e.board) {
		e.points++
	}
	e.afterLock()
	return e.spawnIfReady()
}

// Ghost returns where the active piece would land, without touching the board.
func (e *Engine) Ghost() []Position {
	b := e.board.Clone()
	if !b.HasActivePiece() {
		return nil
	}
	for {
		landing := b.FallingCells()
		if fallOnce(b) {
			return landing
		}
	}
}

// afterLock scores full rows and hands ownership away in versus mode.
func (e *Engine) afterLock() {
	if rows := e.board.FullRows(); len(rows) > 0 {
		e.scoreLines(len(rows))
		if e.animate {
			e.anim = newLineClearAnimation(rows, e.board.cols)
		} else {
			e.board.RemoveRows(rows)
		}
	}
	if e.mode == ModeVersus && e.master {
		e.master = false
		e.handoff = true
	}
}

func (e *Engine) scoreLines(n int) {
	e.points += LineClearScore(n, e.level)
	e.lines += n
	e.level = e.lines / 10
}

func (e *Engine) finishClear() {
	e.board.RemoveRows(e.anim.Rows())
	e.anim = nil
}

func (e *Engine) spawnNext() error {
	if e.beforeSpawn != nil {
		e.beforeSpawn()
	}
	if err := e.board.Spawn(e.gen.Next()); err != nil {
		e.over = true
		return err
	}
	return nil
}

func (e *Engine) spawnIfReady() error {
	if e.anim != nil || !e.owns() || e.board.HasActivePiece() {
		return nil
	}
	return e.spawnNext()
}

// owns reports whether this engine may drive the active piece.
func (e *Engine) owns() bool {
	return e.mode == ModeSolo || e.master
}

// canControl reports whether player input may mutate the board right now.
func (e *Engine) canControl() bool {
	return !e.over && !e.paused && e.anim == nil && e.owns()
}

// SetMaster grants or revokes ownership of the falling piece (versus mode).
func (e *Engine) SetMaster(master bool) {
	if e.mode != ModeVersus {
		return
	}
	e.master = master
	if master {
		e.handoff = false
	}
}

// IsMaster reports whether this engine owns the falling piece.
// A solo engine always does.
func (e *Engine) IsMaster() bool {
	return e.owns()
}

// TakeHandoff reports, once, that ownership was given away. It stays false
// until any clear animation on the locking side has finished, so the peer
// never receives rows that are about to disappear.
func (e *Engine) TakeHandoff() bool {
	if !e.handoff || e.anim != nil {
		return false
	}
	e.handoff = false
	return true
}

// ReplaceBoard overwrites the board in place with a mirrored copy from the peer.
func (e *Engine) ReplaceBoard(b *Board) error {
	if b.rows != e.board.rows || b.cols != e.board.cols {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBoardSize, b.rows, b.cols, e.board.rows, e.board.cols)
	}
	e.board.Restore(b)
	return nil
}

// Board returns a copy of the board for rendering.
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

// Dims returns the board geometry.
func (e *Engine) Dims() (rows, cols int) {
	return e.board.rows, e.board.cols
}

// HasActivePiece reports whether a piece is falling.
func (e *Engine) HasActivePiece() bool {
	return e.board.HasActivePiece()
}

// NextPiece returns the piece that will spawn next.
func (e *Engine) NextPiece() Piece {
	return e.gen.Peek()
}

// Upcoming returns the next n pieces in spawn order.
func (e *Engine) Upcoming(n int) []Piece {
	return e.gen.Upcoming(n)
}

// Animation returns a copy of the running clear animation, or nil.
func (e *Engine) Animation() *LineClearAnimation {
	if e.anim == nil {
		return nil
	}
	return e.anim.clone()
}

// Animating reports whether a clear animation is in progress.
// Callers must ignore player input while it is.
func (e *Engine) Animating() bool { return e.anim != nil }

func (e *Engine) Points() int      { return e.points }
func (e *Engine) Level() int       { return e.level }
func (e *Engine) Lines() int       { return e.lines }
func (e *Engine) Frame() uint64    { return e.frame }
func (e *Engine) Mode() Mode       { return e.mode }
func (e *Engine) Over() bool       { return e.over }
func (e *Engine) Paused() bool     { return e.paused }
func (e *Engine) SetPaused(p bool) { e.paused = p }

// TogglePause flips the pause state and returns the new value.
func (e *Engine) TogglePause() bool {
	e.paused = !e.paused
	return e.paused
}
