package tetris

// CellState is the occupancy of one board position.
type CellState uint8

const (
	Empty CellState = iota
	Placed
	Falling
)

func (s CellState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Placed:
		return "placed"
	case Falling:
		return "falling"
	default:
		return "unknown"
	}
}

// Cell is one board position. The zero value is an empty cell.
// Piece is meaningful only when the cell is not Empty, Center only when it is Falling.
type Cell struct {
	State  CellState
	Piece  PieceID
	Center bool
}

// PlacedCell returns a locked cell of the given piece.
func PlacedCell(id PieceID) Cell {
	return Cell{State: Placed, Piece: id}
}

// FallingCell returns a cell of the active piece.
func FallingCell(id PieceID, center bool) Cell {
	return Cell{State: Falling, Piece: id, Center: center}
}

func (c Cell) IsEmpty() bool   { return c.State == Empty }
func (c Cell) IsPlaced() bool  { return c.State == Placed }
func (c Cell) IsFalling() bool { return c.State == Falling }

// IsCenter reports whether this is the pivot of the active piece.
func (c Cell) IsCenter() bool {
	return c.State == Falling && c.Center
}

// Locked returns the placed form of a falling cell.
func (c Cell) Locked() Cell {
	return PlacedCell(c.Piece)
}
