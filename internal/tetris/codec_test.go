package tetris

import (
	"errors"
	"testing"
)

func TestSaveSize(t *testing.T) {
	tests := []struct {
		rows, cols, want int
	}{
		{20, 10, 116},
		{5, 5, 29},
		{1, 4, 18},
	}
	for _, tt := range tests {
		if got := SaveSize(tt.rows, tt.cols); got != tt.want {
			t.Errorf("SaveSize(%d, %d) = %d, want %d", tt.rows, tt.cols, got, tt.want)
		}
	}
}

func TestMarshalLayout(t *testing.T) {
	e := New(Options{Rows: 1, Cols: 4})
	e.points = 1
	e.lines = 2
	e.level = 3
	e.board.set(0, 0, PlacedCell(PieceJ))
	e.board.set(0, 1, FallingCell(PieceT, true))
	e.board.set(0, 3, FallingCell(PieceI, false))

	data, err := e.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 2,
		0, 0, 0, 3,
		0x2e, // J placed, T falling
		0x09, // empty, I falling
	}
	if string(data) != string(want) {
		t.Errorf("MarshalBinary() = % x\nwant             % x", data, want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	e := New(Options{Rows: 5, Cols: 5})
	e.points = 123456789
	e.lines = 42
	e.level = 4
	for id := range PieceID(PieceCount) {
		e.board.set(4, int(id)%5, PlacedCell(id))
	}
	e.board.set(0, 1, FallingCell(PieceZ, false))
	e.board.set(0, 2, FallingCell(PieceZ, true))

	data, err := e.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	loaded := New(Options{Rows: 5, Cols: 5})
	loaded.over = true
	loaded.frame = 77
	if err := loaded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if loaded.Points() != 123456789 || loaded.Lines() != 42 || loaded.Level() != 4 {
		t.Errorf("counters = %d/%d/%d", loaded.Points(), loaded.Lines(), loaded.Level())
	}
	if loaded.Over() || loaded.Frame() != 0 {
		t.Error("load did not reset game over and frame")
	}

	// Center flags are not stored.
	want := e.board.Clone()
	want.set(0, 2, FallingCell(PieceZ, false))
	if !loaded.board.Equal(want) {
		t.Errorf("board =\n%s\nwant\n%s", loaded.board, want)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	valid, _ := New(Options{Rows: 2, Cols: 4}).MarshalBinary()

	// The falling bit with no piece, in either nibble.
	badHigh := append([]byte(nil), valid...)
	badHigh[16] = 0x80
	badLow := append([]byte(nil), valid...)
	badLow[19] = 0x08

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", valid[:len(valid)-1], ErrSaveSize},
		{"too long", append(append([]byte(nil), valid...), 0), ErrSaveSize},
		{"empty", nil, ErrSaveSize},
		{"bad high nibble", badHigh, ErrSaveCell},
		{"bad low nibble", badLow, ErrSaveCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Options{Rows: 2, Cols: 4})
			e.points = 5
			e.board.set(1, 1, PlacedCell(PieceL))
			before := e.board.Clone()

			if err := e.UnmarshalBinary(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("UnmarshalBinary() = %v, want %v", err, tt.want)
			}
			if e.Points() != 5 || !e.board.Equal(before) {
				t.Error("engine changed after rejected load")
			}
		})
	}
}

func TestSaveEveryPieceNibble(t *testing.T) {
	for id := range PieceID(PieceCount) {
		for _, c := range []Cell{PlacedCell(id), FallingCell(id, false)} {
			got, err := decodeNibble(encodeNibble(c))
			if err != nil {
				t.Fatalf("%s %s: %v", id, c.State, err)
			}
			if got != c {
				t.Errorf("nibble round trip %+v -> %+v", c, got)
			}
		}
	}
}
