package tetris

import "errors"

var (
	// ErrGameOver is the terminal outcome: a piece could not be placed.
	// The engine refuses every further mutation once it has been returned.
	ErrGameOver = errors.New("tetris: game over")

	// ErrBoardSize reports a cell count that does not match the board geometry.
	ErrBoardSize = errors.New("tetris: board size mismatch")

	// ErrInvariant reports a board that breaks the single-pivot rule.
	ErrInvariant = errors.New("tetris: board invariant violated")

	// ErrSaveSize reports a save record of the wrong length.
	ErrSaveSize = errors.New("tetris: wrong save record size")

	// ErrSaveCell reports a save record nibble that names no piece.
	ErrSaveCell = errors.New("tetris: invalid cell in save record")
)
