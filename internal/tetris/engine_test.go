package tetris

import (
	"errors"
	"testing"
)

// engineWith returns an engine whose board is replaced by the given rows.
func engineWith(t *testing.T, opts Options, rows ...string) *Engine {
	t.Helper()
	b := boardFrom(t, rows...)
	opts.Rows, opts.Cols = b.rows, b.cols
	e := New(opts)
	e.board = b
	return e
}

func TestFramesPerGridcell(t *testing.T) {
	tests := []struct {
		level, want int
	}{
		{-3, 36},
		{0, 36},
		{1, 32},
		{9, 5},
		{10, 4},
		{13, 3},
		{18, 2},
		{19, 1},
		{100, 1},
	}
	for _, tt := range tests {
		if got := FramesPerGridcell(tt.level); got != tt.want {
			t.Errorf("FramesPerGridcell(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLineClearScore(t *testing.T) {
	tests := []struct {
		lines, level, want int
	}{
		{0, 0, 0},
		{1, 0, 40},
		{2, 0, 100},
		{3, 0, 300},
		{4, 0, 1200},
		{1, 2, 120},
		{4, 9, 12000},
	}
	for _, tt := range tests {
		if got := LineClearScore(tt.lines, tt.level); got != tt.want {
			t.Errorf("LineClearScore(%d, %d) = %d, want %d", tt.lines, tt.level, got, tt.want)
		}
	}
}

func TestFirstTickSpawns(t *testing.T) {
	e := New(DefaultOptions())
	next := e.NextPiece()
	spawned := 0
	e.SetSpawnHook(func() { spawned++ })

	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !e.HasActivePiece() {
		t.Fatal("no piece after first tick")
	}
	if spawned != 1 {
		t.Errorf("spawn hook ran %d times, want 1", spawned)
	}
	center, _ := e.board.Center()
	if got := e.board.At(center.Row, center.Col).Piece; got != next.ID {
		t.Errorf("spawned %s, NextPiece said %s", got, next.ID)
	}
	if e.Frame() != 1 {
		t.Errorf("Frame() = %d, want 1", e.Frame())
	}
}

func TestGravityFollowsLevelSpeed(t *testing.T) {
	e := New(DefaultOptions())
	if err := e.board.Spawn(catalog[PieceT]); err != nil {
		t.Fatal(err)
	}

	centerRow := func() int {
		p, _ := e.board.Center()
		return p.Row
	}

	e.Tick() // frame 0 is a gravity frame
	if got := centerRow(); got != 1 {
		t.Fatalf("after first tick center row = %d, want 1", got)
	}
	for range FramesPerGridcell(0) - 1 {
		e.Tick()
	}
	if got := centerRow(); got != 1 {
		t.Fatalf("piece fell between gravity frames, row %d", got)
	}
	e.Tick()
	if got := centerRow(); got != 2 {
		t.Errorf("after %d frames center row = %d, want 2", FramesPerGridcell(0)+1, got)
	}
}

func TestGravityLocksOnBottomRow(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"....",
		"....",
		"o@o.",
	)
	locked, err := e.AdvanceGravity()
	if err != nil || !locked {
		t.Fatalf("AdvanceGravity() = %v, %v; want locked", locked, err)
	}
	if got := e.board.String(); got != "....\n....\n###." {
		t.Errorf("board = %q", got)
	}
}

func TestGravityRollsBackOnPartialCollision(t *testing.T) {
	// The lower row moves before the upper one hits the placed cell.
	e := engineWith(t, DefaultOptions(),
		".oo.",
		"o@#.",
		"....",
		"....",
	)
	locked, _ := e.AdvanceGravity()
	if !locked {
		t.Fatal("piece should lock")
	}
	want := ".##.\n###.\n....\n...."
	if got := e.board.String(); got != want {
		t.Errorf("board =\n%s\nwant\n%s", got, want)
	}
}

func TestGravityMovesWholePiece(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"o@o.",
		".o..",
		"....",
		"....",
	)
	if locked, _ := e.AdvanceGravity(); locked {
		t.Fatal("piece locked with free space below")
	}
	want := "....\no@o.\n.o..\n...."
	if got := e.board.String(); got != want {
		t.Errorf("board =\n%s\nwant\n%s", got, want)
	}
}

func TestMove(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		".o@o.",
		"..o..",
		"....#",
	)

	if !e.MoveLeft() {
		t.Fatal("MoveLeft with free space failed")
	}
	if e.MoveLeft() {
		t.Fatal("MoveLeft past the wall succeeded")
	}
	if got := e.board.String(); got != "o@o..\n.o...\n....#" {
		t.Errorf("after moves:\n%s", e.board)
	}

	if !e.MoveRight() || !e.MoveRight() {
		t.Fatal("MoveRight with free space failed")
	}
	if got := e.board.String(); got != "..o@o\n...o.\n....#" {
		t.Errorf("after moving right:\n%s", e.board)
	}
	if e.MoveRight() {
		t.Error("MoveRight past the wall succeeded")
	}
}

func TestMoveBlockedByPlacedCell(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"#o@o.",
		"..o..",
	)
	before := e.board.Clone()
	if e.MoveLeft() {
		t.Error("MoveLeft into a placed cell succeeded")
	}
	if !e.board.Equal(before) {
		t.Errorf("board changed:\n%s", e.board)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		dir  Rotation
		want string
	}{
		{
			name: "clockwise",
			dir:  Clockwise,
			want: ".....\n..o..\n.o@..\n..o..\n.....",
		},
		{
			name: "counterclockwise",
			dir:  CounterClockwise,
			want: ".....\n..o..\n..@o.\n..o..\n.....",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engineWith(t, DefaultOptions(),
				".....",
				".....",
				".o@o.",
				"..o..",
				".....",
			)
			if !e.Rotate(tt.dir) {
				t.Fatal("Rotate failed on open board")
			}
			if got := e.board.String(); got != tt.want {
				t.Errorf("board =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		".....",
		".....",
		".o@o.",
		"..o..",
		".....",
	)
	before := e.board.Clone()
	for range 4 {
		if !e.Rotate(Clockwise) {
			t.Fatal("Rotate failed")
		}
	}
	if !e.board.Equal(before) {
		t.Errorf("four rotations changed the board:\n%s", e.board)
	}
}

func TestRotateRejected(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{
			name: "target above the board",
			rows: []string{".o@o.", "..o..", "....."},
		},
		{
			name: "target occupied",
			rows: []string{"..#..", ".o@o.", "..o.."},
		},
		{
			name: "no center",
			rows: []string{".ooo.", "..o..", "....."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engineWith(t, DefaultOptions(), tt.rows...)
			before := e.board.Clone()
			if e.Rotate(Clockwise) {
				t.Fatal("Rotate succeeded")
			}
			if !e.board.Equal(before) {
				t.Errorf("board not restored:\n%s", e.board)
			}
		})
	}
}

func TestRotateIgnoresNoRotationPiece(t *testing.T) {
	e := New(DefaultOptions())
	if err := e.board.Spawn(catalog[PieceO]); err != nil {
		t.Fatal(err)
	}
	before := e.board.Clone()
	if e.Rotate(Clockwise) {
		t.Error("O piece rotated")
	}
	if !e.board.Equal(before) {
		t.Error("board changed")
	}
}

// clearScenario has two placed rows missing their last column and a
// two-cell piece above the gap.
var clearScenario = []string{
	"...o",
	"...@",
	"###.",
	"###.",
}

func TestHardDropClearsLinesWithAnimation(t *testing.T) {
	e := engineWith(t, DefaultOptions(), clearScenario...)

	if err := e.HardDrop(); err != nil {
		t.Fatalf("HardDrop: %v", err)
	}
	// Two rows of descent plus a double at level 0.
	if e.Points() != 2+100 {
		t.Errorf("Points() = %d, want 102", e.Points())
	}
	if e.Lines() != 2 {
		t.Errorf("Lines() = %d, want 2", e.Lines())
	}
	if !e.Animating() {
		t.Fatal("no clear animation after locking two full rows")
	}
	if e.HasActivePiece() {
		t.Fatal("piece spawned during animation")
	}
	if e.MoveLeft() || e.Rotate(Clockwise) {
		t.Error("input accepted during animation")
	}

	for i := range e.board.cols {
		if !e.Animating() {
			t.Fatalf("animation ended after %d steps, want %d", i, e.board.cols)
		}
		if err := e.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if e.Animating() {
		t.Fatal("animation still running")
	}
	if got := e.board.String(); got != "....\n....\n....\n...." {
		t.Errorf("board after clear =\n%s", got)
	}
}

func TestHardDropClearsImmediatelyWithoutAnimation(t *testing.T) {
	opts := DefaultOptions()
	opts.AnimateClears = false
	e := engineWith(t, opts, clearScenario...)

	if err := e.HardDrop(); err != nil {
		t.Fatalf("HardDrop: %v", err)
	}
	if e.Animating() {
		t.Error("animation started with AnimateClears off")
	}
	if !e.HasActivePiece() {
		t.Error("next piece did not spawn after hard drop")
	}
	if e.Points() != 102 || e.Lines() != 2 {
		t.Errorf("points, lines = %d, %d; want 102, 2", e.Points(), e.Lines())
	}
}

func TestSoftDrop(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"....",
		"....",
		"o@o.",
		".o..",
		"....",
	)
	if err := e.SoftDrop(); err != nil {
		t.Fatal(err)
	}
	if e.Points() != 1 {
		t.Errorf("Points() = %d after one soft drop, want 1", e.Points())
	}
	if err := e.SoftDrop(); err != nil {
		t.Fatal(err)
	}
	// Locked on the bottom row; the next piece spawns at once.
	if e.Points() != 1 {
		t.Errorf("Points() = %d after locking drop, want 1", e.Points())
	}
	if !e.HasActivePiece() {
		t.Error("no piece spawned after soft-drop lock")
	}
}

func TestLevelFollowsLines(t *testing.T) {
	e := New(DefaultOptions())
	e.lines = 9
	e.scoreLines(1)
	if e.Level() != 1 {
		t.Errorf("Level() = %d after 10 lines, want 1", e.Level())
	}
	if e.Points() != 40 {
		t.Errorf("single scored at level %d, want level 0 rate", e.Level())
	}
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"####",
		"....",
		"....",
	)
	before := e.board.Clone()

	if err := e.Tick(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("Tick() = %v, want ErrGameOver", err)
	}
	if !e.Over() || e.State() != StateGameOver {
		t.Error("engine not over")
	}
	if !e.board.Equal(before) {
		t.Errorf("blocked spawn mutated board:\n%s", e.board)
	}
	if err := e.Tick(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Tick after game over = %v", err)
	}
	if err := e.HardDrop(); !errors.Is(err, ErrGameOver) {
		t.Errorf("HardDrop after game over = %v", err)
	}
	if e.MoveLeft() {
		t.Error("MoveLeft accepted after game over")
	}
}

func TestPauseFreezesEngine(t *testing.T) {
	e := New(DefaultOptions())
	if !e.TogglePause() {
		t.Fatal("TogglePause did not pause")
	}
	for range 10 {
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Frame() != 0 || e.HasActivePiece() {
		t.Errorf("paused engine advanced: frame %d", e.Frame())
	}
	e.SetPaused(false)
	e.Tick()
	if !e.HasActivePiece() {
		t.Error("no spawn after unpause")
	}
}

func TestGhost(t *testing.T) {
	e := engineWith(t, DefaultOptions(),
		"o@o.",
		".o..",
		"....",
		"....",
		".#..",
	)
	before := e.board.Clone()
	ghost := e.Ghost()
	want := []Position{{2, 0}, {2, 1}, {2, 2}, {3, 1}}
	if len(ghost) != len(want) {
		t.Fatalf("Ghost() = %v, want %v", ghost, want)
	}
	for i := range want {
		if ghost[i] != want[i] {
			t.Errorf("Ghost()[%d] = %v, want %v", i, ghost[i], want[i])
		}
	}
	if !e.board.Equal(before) {
		t.Error("Ghost mutated the board")
	}
}

func TestVersusSlaveDoesNotDrive(t *testing.T) {
	e := New(Options{Mode: ModeVersus})
	for range 100 {
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if e.HasActivePiece() {
		t.Error("slave spawned a piece")
	}
	if e.IsMaster() || e.State() != StateWaiting {
		t.Errorf("slave state = %s", e.State())
	}
}

func TestVersusLockHandsOff(t *testing.T) {
	e := engineWith(t, Options{Mode: ModeVersus, Master: true, AnimateClears: true}, clearScenario...)

	if err := e.HardDrop(); err != nil {
		t.Fatal(err)
	}
	if e.IsMaster() {
		t.Fatal("still master after lock")
	}
	if e.HasActivePiece() {
		t.Error("spawned after giving ownership away")
	}
	if e.TakeHandoff() {
		t.Fatal("handoff released before the clear animation finished")
	}
	for e.Animating() {
		e.Tick()
	}
	if !e.TakeHandoff() {
		t.Fatal("handoff not reported after animation")
	}
	if e.TakeHandoff() {
		t.Error("handoff reported twice")
	}

	e.SetMaster(true)
	if !e.IsMaster() {
		t.Error("SetMaster(true) ignored")
	}
}

func TestSoloIgnoresSetMaster(t *testing.T) {
	e := New(DefaultOptions())
	e.SetMaster(false)
	if !e.IsMaster() {
		t.Error("solo engine lost control")
	}
}

func TestReplaceBoard(t *testing.T) {
	e := New(DefaultOptions())
	b := NewBoard(DefaultRows, DefaultCols)
	b.set(19, 0, PlacedCell(PieceS))
	if err := e.ReplaceBoard(b); err != nil {
		t.Fatal(err)
	}
	if !e.Board().Equal(b) {
		t.Error("board not replaced")
	}
	if err := e.ReplaceBoard(NewBoard(4, 4)); !errors.Is(err, ErrBoardSize) {
		t.Errorf("ReplaceBoard with wrong size = %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		opts := DefaultOptions()
		opts.Seed = 42
		e := New(opts)
		for i := range 2000 {
			if i%7 == 0 {
				e.MoveLeft()
			}
			if i%11 == 0 {
				e.Rotate(Clockwise)
			}
			if err := e.Tick(); err != nil {
				break
			}
		}
		return e.Snapshot()
	}
	a, b := run(), run()
	if a != b {
		t.Errorf("same seed produced different snapshots:\n%+v\n%+v", a, b)
	}
}
