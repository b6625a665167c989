// Package peer mirrors one engine's board to a remote engine and hands
// ownership of the falling piece back and forth between them.
//
// A frame is one ownership byte followed by one byte per board cell in
// row-major order. The transport delimits frames as newline-terminated
// records; no byte produced here is ever '\n'.
package peer

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

var (
	// ErrFrameLength reports a frame whose size does not match the board.
	ErrFrameLength = errors.New("peer: wrong frame length")

	// ErrFrameCell reports a byte that is not a valid cell or ownership value.
	ErrFrameCell = errors.New("peer: invalid frame byte")
)

// Ownership byte values.
const (
	ownerKeep    byte = 1
	ownerHandoff byte = 2 // The receiver becomes master
)

// Cell byte bases.
const (
	cellEmpty   byte = 1
	cellPlaced  byte = 2
	cellFalling byte = 30
	cellCenter  byte = 60
)

// FrameSize returns the payload length for a rows x cols board.
func FrameSize(rows, cols int) int {
	return 1 + rows*cols
}

// Frame is a decoded sync record.
type Frame struct {
	Handoff bool // The sender gave up the piece; the receiver takes it
	Board   *tetris.Board
}

// EncodeFrame serializes the board with the given ownership signal.
func EncodeFrame(b *tetris.Board, handoff bool) []byte {
	cells := b.Cells()
	out := make([]byte, 0, 1+len(cells))
	if handoff {
		out = append(out, ownerHandoff)
	} else {
		out = append(out, ownerKeep)
	}
	for _, c := range cells {
		out = append(out, encodeCell(c))
	}
	return out
}

func encodeCell(c tetris.Cell) byte {
	switch {
	case c.IsCenter():
		return cellCenter + byte(c.Piece)
	case c.IsFalling():
		return cellFalling + byte(c.Piece)
	case c.IsPlaced():
		return cellPlaced + byte(c.Piece)
	default:
		return cellEmpty
	}
}

// DecodeFrame parses a frame for a rows x cols board. A single trailing
// newline is tolerated. Any ownership byte other than 2 means "no change".
func DecodeFrame(frame []byte, rows, cols int) (Frame, error) {
	if n := len(frame); n > 0 && frame[n-1] == '\n' {
		frame = frame[:n-1]
	}
	if want := FrameSize(rows, cols); len(frame) != want {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(frame), want)
	}

	cells := make([]tetris.Cell, rows*cols)
	for i, v := range frame[1:] {
		c, err := decodeCell(v)
		if err != nil {
			return Frame{}, fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = c
	}
	b, err := tetris.BoardFromCells(rows, cols, cells)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Handoff: frame[0] == ownerHandoff, Board: b}, nil
}

func decodeCell(v byte) (tetris.Cell, error) {
	in := func(base byte) (tetris.PieceID, bool) {
		if v >= base && v < base+tetris.PieceCount {
			return tetris.PieceID(v - base), true
		}
		return 0, false
	}

	if v == cellEmpty {
		return tetris.Cell{}, nil
	}
	if id, ok := in(cellPlaced); ok {
		return tetris.PlacedCell(id), nil
	}
	if id, ok := in(cellFalling); ok {
		return tetris.FallingCell(id, false), nil
	}
	if id, ok := in(cellCenter); ok {
		return tetris.FallingCell(id, true), nil
	}
	return tetris.Cell{}, fmt.Errorf("%w: %d", ErrFrameCell, v)
}
