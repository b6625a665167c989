package tetris

import (
	"encoding/binary"
	"fmt"
)

// Save record header: points u64, lines u32, level u32, all big-endian.
const saveHeaderSize = 16

const fallingBit = 0x8

// SaveSize returns the record length for a rows x cols board.
func SaveSize(rows, cols int) int {
	return saveHeaderSize + (rows*cols+1)/2
}

// MarshalBinary encodes points, lines, level and the board as a flat record.
//
// Cells are packed two per byte, high nibble first, in row-major order:
// 0 is empty, id+1 a placed cell, (id+1)|8 a falling cell. Center flags are
// not stored, so a restored falling piece cannot rotate.
func (e *Engine) MarshalBinary() ([]byte, error) {
	b := e.board
	out := make([]byte, SaveSize(b.rows, b.cols))
	binary.BigEndian.PutUint64(out[0:8], uint64(e.points))
	binary.BigEndian.PutUint32(out[8:12], uint32(e.lines))
	binary.BigEndian.PutUint32(out[12:16], uint32(e.level))

	for i, c := range b.cells {
		n := encodeNibble(c)
		if i%2 == 0 {
			out[saveHeaderSize+i/2] |= n << 4
		} else {
			out[saveHeaderSize+i/2] |= n
		}
	}
	return out, nil
}

// UnmarshalBinary restores an engine from a record written by MarshalBinary
// for the same board geometry. On error the engine is left untouched.
//
// Loading resets the frame counter and clears game over, pause and any
// running clear animation.
func (e *Engine) UnmarshalBinary(data []byte) error {
	rows, cols := e.board.rows, e.board.cols
	if want := SaveSize(rows, cols); len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSaveSize, len(data), want)
	}

	cells := make([]Cell, rows*cols)
	for i := range cells {
		n := data[saveHeaderSize+i/2]
		if i%2 == 0 {
			n >>= 4
		}
		c, err := decodeNibble(n & 0xf)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = c
	}

	e.points = int(binary.BigEndian.Uint64(data[0:8]))
	e.lines = int(binary.BigEndian.Uint32(data[8:12]))
	e.level = int(binary.BigEndian.Uint32(data[12:16]))
	e.board.cells = cells
	e.anim = nil
	e.over = false
	e.paused = false
	e.frame = 0
	return nil
}

func encodeNibble(c Cell) byte {
	switch c.State {
	case Placed:
		return byte(c.Piece) + 1
	case Falling:
		return (byte(c.Piece) + 1) | fallingBit
	default:
		return 0
	}
}

func decodeNibble(n byte) (Cell, error) {
	if n == 0 {
		return Cell{}, nil
	}
	id := n&^fallingBit - 1
	if n&^fallingBit == 0 || int(id) >= PieceCount {
		return Cell{}, fmt.Errorf("%w: nibble %#x", ErrSaveCell, n)
	}
	if n&fallingBit != 0 {
		return FallingCell(PieceID(id), false), nil
	}
	return PlacedCell(PieceID(id)), nil
}
