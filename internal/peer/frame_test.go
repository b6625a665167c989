package peer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func sampleBoard(t *testing.T) *tetris.Board {
	t.Helper()
	cells := make([]tetris.Cell, 2*4)
	cells[0] = tetris.FallingCell(tetris.PieceT, false)
	cells[1] = tetris.FallingCell(tetris.PieceT, true)
	cells[4] = tetris.PlacedCell(tetris.PieceI)
	cells[7] = tetris.PlacedCell(tetris.PieceZ)
	b, err := tetris.BoardFromCells(2, 4, cells)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestEncodeFrame(t *testing.T) {
	b := sampleBoard(t)

	got := EncodeFrame(b, false)
	want := []byte{1, 35, 65, 1, 1, 2, 1, 1, 8}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame() = %v, want %v", got, want)
	}
	if h := EncodeFrame(b, true); h[0] != 2 {
		t.Errorf("handoff ownership byte = %d, want 2", h[0])
	}
}

func TestFrameRoundTrip(t *testing.T) {
	b := sampleBoard(t)
	for _, handoff := range []bool{false, true} {
		f, err := DecodeFrame(EncodeFrame(b, handoff), 2, 4)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		if f.Handoff != handoff {
			t.Errorf("Handoff = %v, want %v", f.Handoff, handoff)
		}
		if !f.Board.Equal(b) {
			t.Errorf("board =\n%s\nwant\n%s", f.Board, b)
		}
	}
}

func TestFrameNeverContainsNewline(t *testing.T) {
	var cells []tetris.Cell
	for id := range tetris.PieceID(tetris.PieceCount) {
		cells = append(cells,
			tetris.PlacedCell(id),
			tetris.FallingCell(id, false),
			tetris.FallingCell(id, true),
			tetris.Cell{},
		)
	}
	b, err := tetris.BoardFromCells(tetris.PieceCount, 4, cells)
	if err != nil {
		t.Fatal(err)
	}
	for _, handoff := range []bool{false, true} {
		if bytes.IndexByte(EncodeFrame(b, handoff), '\n') >= 0 {
			t.Error("frame contains a newline byte")
		}
	}
}

func TestDecodeFrameTrailingNewline(t *testing.T) {
	frame := append(EncodeFrame(sampleBoard(t), true), '\n')
	f, err := DecodeFrame(frame, 2, 4)
	if err != nil {
		t.Fatalf("DecodeFrame with newline: %v", err)
	}
	if !f.Handoff {
		t.Error("handoff lost")
	}
}

func TestDecodeFrameRejects(t *testing.T) {
	valid := EncodeFrame(sampleBoard(t), false)

	badCell := bytes.Clone(valid)
	badCell[3] = 20

	tests := []struct {
		name  string
		frame []byte
		want  error
	}{
		{"empty", nil, ErrFrameLength},
		{"short", valid[:5], ErrFrameLength},
		{"long", append(bytes.Clone(valid), 1), ErrFrameLength},
		{"unknown cell byte", badCell, ErrFrameCell},
		{"zero byte", append([]byte{1}, make([]byte, 8)...), ErrFrameCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFrame(tt.frame, 2, 4); !errors.Is(err, tt.want) {
				t.Errorf("DecodeFrame() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOwnershipByteOtherThanTwoKeeps(t *testing.T) {
	frame := EncodeFrame(sampleBoard(t), false)
	frame[0] = 7
	f, err := DecodeFrame(frame, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if f.Handoff {
		t.Error("ownership byte 7 treated as handoff")
	}
}
