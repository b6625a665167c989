// Package tetris implements the falling-block engine: the piece catalog and
// generator, the cell board, gravity/rotation rules, line clears, scoring and
// the flat binary save record.
//
// The package has no rendering or transport dependencies. The platform layer
// drives an Engine with Tick and the input methods and reads its state back
// through accessors.
package tetris

import "github.com/vovakirdan/tui-tetris/internal/core"

// PieceID indexes the fixed piece catalog.
type PieceID uint8

const (
	PieceI PieceID = iota
	PieceJ
	PieceL
	PieceO
	PieceS
	PieceT
	PieceZ
)

// PieceCount is the number of pieces in the catalog (one bag).
const PieceCount = 7

// Role marks what a shape entry contributes to a spawned piece.
type Role uint8

const (
	RoleAbsent Role = iota
	RoleBody
	RoleCenter // rotation pivot, exactly one per shape
)

// Shape dimensions. Every catalog shape fits a 2x4 sub-grid.
const (
	ShapeRows = 2
	ShapeCols = 4
)

// Shape is the presence/role matrix of a piece in spawn orientation.
type Shape [ShapeRows][ShapeCols]Role

// RGB is a 24-bit piece color.
type RGB struct {
	R, G, B uint8
}

// Piece is an immutable catalog entry.
type Piece struct {
	ID    PieceID
	Name  string
	Shape Shape
	Color RGB
	Term  core.Color // Closest terminal color for the TUI

	LongRotation bool // Preview is one row tall
	NoRotation   bool // Rotation requests are ignored
	CanBeFirst   bool // Eligible as the first piece of a session
}

// Offset is a cell position relative to the top-left of a shape.
type Offset struct {
	Row, Col int
	Center   bool
}

// Cells returns the body and center offsets of the piece in row-major order.
func (p Piece) Cells() []Offset {
	out := make([]Offset, 0, 4)
	for r := range ShapeRows {
		for c := range ShapeCols {
			switch p.Shape[r][c] {
			case RoleBody:
				out = append(out, Offset{Row: r, Col: c})
			case RoleCenter:
				out = append(out, Offset{Row: r, Col: c, Center: true})
			}
		}
	}
	return out
}

// Width returns the index of the rightmost occupied column plus one.
func (p Piece) Width() int {
	w := 0
	for _, off := range p.Cells() {
		w = max(w, off.Col+1)
	}
	return w
}

// PreviewHeight returns how many rows the next-piece preview should reserve.
func (p Piece) PreviewHeight() int {
	if p.LongRotation {
		return 1
	}
	return 2
}

// shape builds a Shape from two 4-character rows.
// '#' is body, '@' is the center, anything else is absent.
func shape(top, bottom string) Shape {
	var s Shape
	for r, row := range [ShapeRows]string{top, bottom} {
		for c := 0; c < ShapeCols && c < len(row); c++ {
			switch row[c] {
			case '#':
				s[r][c] = RoleBody
			case '@':
				s[r][c] = RoleCenter
			}
		}
	}
	return s
}

var catalog = [PieceCount]Piece{
	{
		ID: PieceI, Name: "I",
		Shape:        shape("#@##", "...."),
		Color:        RGB{0x00, 0xff, 0xff},
		Term:         core.ColorBrightCyan,
		LongRotation: true,
		CanBeFirst:   true,
	},
	{
		ID: PieceJ, Name: "J",
		Shape:      shape("#@#.", "..#."),
		Color:      RGB{0x30, 0x30, 0xff},
		Term:       core.ColorBrightBlue,
		CanBeFirst: true,
	},
	{
		ID: PieceL, Name: "L",
		Shape:      shape("#@#.", "#..."),
		Color:      RGB{0xff, 0xa5, 0x00},
		Term:       core.ColorOrange,
		CanBeFirst: true,
	},
	{
		ID: PieceO, Name: "O",
		Shape:      shape("##..", "#@.."),
		Color:      RGB{0xff, 0xff, 0x00},
		Term:       core.ColorBrightYellow,
		NoRotation: true,
		CanBeFirst: true,
	},
	{
		ID: PieceS, Name: "S",
		Shape: shape(".##.", "#@.."),
		Color: RGB{0x00, 0xff, 0x00},
		Term:  core.ColorBrightGreen,
	},
	{
		ID: PieceT, Name: "T",
		Shape:      shape("#@#.", ".#.."),
		Color:      RGB{0x80, 0x00, 0x80},
		Term:       core.ColorMagenta,
		CanBeFirst: true,
	},
	{
		ID: PieceZ, Name: "Z",
		Shape: shape("#@..", ".##."),
		Color: RGB{0xff, 0x00, 0x00},
		Term:  core.ColorBrightRed,
	},
}

// Catalog returns a copy of the full piece catalog ordered by ID.
func Catalog() []Piece {
	out := make([]Piece, PieceCount)
	copy(out, catalog[:])
	return out
}

// PieceByID looks up a catalog entry.
func PieceByID(id PieceID) (Piece, bool) {
	if int(id) >= PieceCount {
		return Piece{}, false
	}
	return catalog[id], true
}

// String returns the piece letter.
func (id PieceID) String() string {
	if p, ok := PieceByID(id); ok {
		return p.Name
	}
	return "?"
}
