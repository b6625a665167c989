package peer

import (
	"bytes"
	"testing"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// tickUntil ticks e until cond holds or the limit runs out.
func tickUntil(t *testing.T, e *tetris.Engine, limit int, cond func() bool) {
	t.Helper()
	for range limit {
		if cond() {
			return
		}
		if err := e.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !cond() {
		t.Fatalf("condition not reached after %d ticks", limit)
	}
}

func versusPair() (master, slave *tetris.Engine) {
	opts := tetris.DefaultOptions()
	opts.Mode = tetris.ModeVersus
	opts.AnimateClears = false

	opts.Master = true
	master = tetris.New(opts)
	opts.Master = false
	slave = tetris.New(opts)
	return master, slave
}

func TestSlaveSendsNothing(t *testing.T) {
	_, slave := versusPair()
	s := NewSync(slave, nil)
	for range 50 {
		slave.Tick()
		if _, ok := s.Outgoing(); ok {
			t.Fatal("slave produced a frame")
		}
	}
}

func TestMasterMirrorsOnlyChanges(t *testing.T) {
	master, slave := versusPair()
	ms, ss := NewSync(master, nil), NewSync(slave, nil)

	if err := master.Tick(); err != nil { // spawns
		t.Fatal(err)
	}
	frame, ok := ms.Outgoing()
	if !ok {
		t.Fatal("no frame after spawn")
	}
	if frame[0] != 1 {
		t.Errorf("ownership byte = %d, want 1", frame[0])
	}
	if _, ok := ms.Outgoing(); ok {
		t.Error("unchanged board sent twice")
	}

	if err := ss.Apply(frame); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !slave.Board().Equal(master.Board()) {
		t.Error("slave board differs from master")
	}
	if slave.IsMaster() {
		t.Error("slave took ownership from a plain frame")
	}
}

func TestHandoffAfterLock(t *testing.T) {
	master, slave := versusPair()
	ms, ss := NewSync(master, nil), NewSync(slave, nil)

	master.Tick()
	ms.Outgoing()
	if err := master.HardDrop(); err != nil {
		t.Fatal(err)
	}
	if master.IsMaster() {
		t.Fatal("master kept ownership after lock")
	}

	frame, ok := ms.Outgoing()
	if !ok {
		t.Fatal("no handoff frame after lock")
	}
	if frame[0] != 2 {
		t.Fatalf("ownership byte = %d, want 2", frame[0])
	}
	if _, ok := ms.Outgoing(); ok {
		t.Error("former master kept sending")
	}

	if err := ss.Apply(frame); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !slave.IsMaster() {
		t.Fatal("receiver did not become master")
	}

	// The new master spawns on its next gravity frame and mirrors it back.
	tickUntil(t, slave, 100, slave.HasActivePiece)
	back, ok := ss.Outgoing()
	if !ok || back[0] != 1 {
		t.Fatalf("new master frame = %v, %v", back, ok)
	}
	if err := ms.Apply(back); err != nil {
		t.Fatal(err)
	}
	if !master.Board().Equal(slave.Board()) {
		t.Error("boards diverged after handoff")
	}
}

func TestHandoffWaitsForClearAnimation(t *testing.T) {
	opts := tetris.DefaultOptions()
	opts.Rows, opts.Cols = 4, 4
	opts.Mode = tetris.ModeVersus
	opts.Master = true
	e := tetris.New(opts)
	s := NewSync(e, nil)

	// A vertical piece above the only gap in the bottom row.
	cells := make([]tetris.Cell, 16)
	for i := 12; i < 16; i++ {
		cells[i] = tetris.PlacedCell(tetris.PieceO)
	}
	cells[12] = tetris.Cell{}
	cells[0] = tetris.FallingCell(tetris.PieceT, true)
	cells[4] = tetris.FallingCell(tetris.PieceT, false)
	cells[8] = tetris.FallingCell(tetris.PieceT, false)
	b, err := tetris.BoardFromCells(4, 4, cells)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ReplaceBoard(b); err != nil {
		t.Fatal(err)
	}

	if err := e.HardDrop(); err != nil {
		t.Fatal(err)
	}
	if !e.Animating() {
		t.Fatal("expected a clear animation")
	}
	if _, ok := s.Outgoing(); ok {
		t.Fatal("frame sent while the clear animation runs")
	}

	tickUntil(t, e, 10, func() bool { return !e.Animating() })
	frame, ok := s.Outgoing()
	if !ok || frame[0] != 2 {
		t.Fatalf("handoff frame = %v, %v", frame, ok)
	}
	f, err := DecodeFrame(frame, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Board.FullRows()) != 0 {
		t.Error("handoff frame carries rows that were cleared")
	}
}

func TestApplyDropsMalformedFrame(t *testing.T) {
	_, slave := versusPair()
	s := NewSync(slave, nil)
	before := slave.Board()

	if err := s.Apply([]byte{1, 2, 3}); err == nil {
		t.Fatal("short frame accepted")
	}
	bad := bytes.Repeat([]byte{1}, FrameSize(20, 10))
	bad[0] = 2
	bad[50] = 99
	if err := s.Apply(bad); err == nil {
		t.Fatal("frame with invalid cell accepted")
	}

	if !slave.Board().Equal(before) {
		t.Error("malformed frame mutated the board")
	}
	if slave.IsMaster() {
		t.Error("malformed handoff frame granted ownership")
	}
	if _, _, dropped := s.Stats(); dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}
