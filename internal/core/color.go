package core

// Color represents a foreground color for a screen cell.
// The TUI maps each value to an ANSI 256-color code.
type Color uint8

// Predefined colors. ColorDefault leaves the terminal color unchanged.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGray // ghost piece and board grid
)
