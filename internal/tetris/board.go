package tetris

import (
	"fmt"
	"slices"
)

// Reference geometry.
const (
	DefaultRows = 20
	DefaultCols = 10
)

// Position is a board coordinate. Row 0 is the top.
type Position struct {
	Row, Col int
}

// Board is a fixed rows x cols grid of cells stored in row-major order.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

// NewBoard creates an empty board.
func NewBoard(rows, cols int) *Board {
	return &Board{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// BoardFromCells builds a board from row-major cells, as produced by decoders.
func BoardFromCells(rows, cols int, cells []Cell) (*Board, error) {
	if rows <= 0 || cols <= 0 || len(cells) != rows*cols {
		return nil, fmt.Errorf("%w: %d cells for %dx%d", ErrBoardSize, len(cells), rows, cols)
	}
	b := NewBoard(rows, cols)
	copy(b.cells, cells)
	return b, nil
}

// Rows returns the board height.
func (b *Board) Rows() int { return b.rows }

// Cols returns the board width.
func (b *Board) Cols() int { return b.cols }

func (b *Board) index(row, col int) int {
	return row*b.cols + col
}

// InBounds reports whether the coordinate lies on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// At returns the cell at the coordinate, or an empty cell when out of bounds.
func (b *Board) At(row, col int) Cell {
	if !b.InBounds(row, col) {
		return Cell{}
	}
	return b.cells[b.index(row, col)]
}

func (b *Board) set(row, col int, c Cell) {
	b.cells[b.index(row, col)] = c
}

// TryPut writes the cell iff the coordinate is in bounds and empty.
func (b *Board) TryPut(row, col int, c Cell) bool {
	if !b.InBounds(row, col) || !b.At(row, col).IsEmpty() {
		return false
	}
	b.set(row, col, c)
	return true
}

// PutOrFail writes the cell or returns ErrGameOver when the target is
// occupied or off the board. Only used where occupation is terminal.
func (b *Board) PutOrFail(row, col int, c Cell) error {
	if !b.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) is off the board", ErrGameOver, row, col)
	}
	if !b.At(row, col).IsEmpty() {
		return fmt.Errorf("%w: (%d,%d) is occupied", ErrGameOver, row, col)
	}
	b.set(row, col, c)
	return nil
}

// SpawnColumn returns the column of the left edge of a spawned shape.
func (b *Board) SpawnColumn() int {
	return (b.cols - ShapeCols) / 2
}

// Spawn places the piece as falling cells in the top rows, horizontally
// centered. A blocked spawn returns ErrGameOver and leaves the board as it was.
func (b *Board) Spawn(p Piece) error {
	left := b.SpawnColumn()
	offsets := p.Cells()

	// Check every target first so a block-out never leaves half a piece behind.
	for _, off := range offsets {
		row, col := off.Row, left+off.Col
		if !b.InBounds(row, col) || !b.At(row, col).IsEmpty() {
			return b.PutOrFail(row, col, FallingCell(p.ID, off.Center))
		}
	}
	for _, off := range offsets {
		if err := b.PutOrFail(off.Row, left+off.Col, FallingCell(p.ID, off.Center)); err != nil {
			return err
		}
	}
	return nil
}

// HasActivePiece reports whether any cell is falling.
func (b *Board) HasActivePiece() bool {
	for _, c := range b.cells {
		if c.IsFalling() {
			return true
		}
	}
	return false
}

// FallingCells returns the positions of the active piece in row-major order.
func (b *Board) FallingCells() []Position {
	var out []Position
	for i, c := range b.cells {
		if c.IsFalling() {
			out = append(out, Position{Row: i / b.cols, Col: i % b.cols})
		}
	}
	return out
}

// Center returns the pivot of the active piece, if there is one.
func (b *Board) Center() (Position, bool) {
	for i, c := range b.cells {
		if c.IsCenter() {
			return Position{Row: i / b.cols, Col: i % b.cols}, true
		}
	}
	return Position{}, false
}

// LockActivePiece turns every falling cell into a placed cell of the same piece.
func (b *Board) LockActivePiece() {
	for i, c := range b.cells {
		if c.IsFalling() {
			b.cells[i] = c.Locked()
		}
	}
}

// FullRows returns, top to bottom, every row made only of placed cells.
func (b *Board) FullRows() []int {
	var rows []int
	for r := range b.rows {
		full := true
		for c := range b.cols {
			if !b.At(r, c).IsPlaced() {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, r)
		}
	}
	return rows
}

// RemoveRows deletes the given rows and inserts as many empty rows at the top.
// Remaining rows keep their relative order.
func (b *Board) RemoveRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	cells := make([]Cell, len(b.cells))
	dst := b.rows - 1
	for r := b.rows - 1; r >= 0; r-- {
		if slices.Contains(rows, r) {
			continue
		}
		copy(cells[dst*b.cols:(dst+1)*b.cols], b.cells[r*b.cols:(r+1)*b.cols])
		dst--
	}
	b.cells = cells
}

// ClearFullRows removes every full row and returns the cleared row indices.
func (b *Board) ClearFullRows() []int {
	rows := b.FullRows()
	b.RemoveRows(rows)
	return rows
}

// Clone returns an independent deep copy.
func (b *Board) Clone() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return &Board{rows: b.rows, cols: b.cols, cells: cells}
}

// Restore overwrites this board with a snapshot of the same size.
func (b *Board) Restore(snapshot *Board) {
	b.rows = snapshot.rows
	b.cols = snapshot.cols
	b.cells = make([]Cell, len(snapshot.cells))
	copy(b.cells, snapshot.cells)
}

// Equal reports whether two boards have the same size and cells.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.rows != other.rows || b.cols != other.cols {
		return false
	}
	return slices.Equal(b.cells, other.cells)
}

// Cells returns a copy of all cells in row-major order.
func (b *Board) Cells() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells)
	return out
}

// Validate checks the pivot invariant: at most one center, and only on a
// falling cell. Boards restored from a save may legitimately have none.
func (b *Board) Validate() error {
	centers := 0
	for i, c := range b.cells {
		if !c.Center {
			continue
		}
		if !c.IsFalling() {
			return fmt.Errorf("%w: center flag on %s cell %d", ErrInvariant, c.State, i)
		}
		centers++
	}
	if centers > 1 {
		return fmt.Errorf("%w: %d center cells", ErrInvariant, centers)
	}
	return nil
}

// String renders the board as text, one row per line:
// '.' empty, '#' placed, '@' falling center, 'o' other falling cells.
func (b *Board) String() string {
	out := make([]byte, 0, (b.cols+1)*b.rows)
	for r := range b.rows {
		if r > 0 {
			out = append(out, '\n')
		}
		for c := range b.cols {
			cell := b.At(r, c)
			switch {
			case cell.IsCenter():
				out = append(out, '@')
			case cell.IsFalling():
				out = append(out, 'o')
			case cell.IsPlaced():
				out = append(out, '#')
			default:
				out = append(out, '.')
			}
		}
	}
	return string(out)
}
