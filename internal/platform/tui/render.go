package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorDarkGray:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
}

// pieceColors gives each catalog piece its own color.
var pieceColors = [tetris.PieceCount]core.Color{
	tetris.PieceI: core.ColorCyan,
	tetris.PieceJ: core.ColorBlue,
	tetris.PieceL: core.ColorOrange,
	tetris.PieceO: core.ColorYellow,
	tetris.PieceS: core.ColorGreen,
	tetris.PieceT: core.ColorMagenta,
	tetris.PieceZ: core.ColorRed,
}

func pieceColor(id tetris.PieceID) core.Color {
	if int(id) < len(pieceColors) {
		return pieceColors[id]
	}
	return core.ColorWhite
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// GameView is everything drawn for one frame of a game.
type GameView struct {
	Board     *tetris.Board
	Ghost     []tetris.Position
	Next      tetris.Piece
	Anim      *tetris.LineClearAnimation
	Snapshot  tetris.Snapshot
	HighScore int
	Peer      string // Versus opponent, empty in solo
	Status    string // Extra status line, e.g. a connection problem
}

// Cell glyphs, two columns per board cell.
const (
	glyphBlock = "██"
	glyphGhost = "░░"
	glyphEmpty = " ."
)

// boardRect is the bordered board area for a board of the given size.
func boardRect(rows, cols int) core.Rect {
	return core.NewRect(1, 0, cols*2+2, rows+2)
}

// DrawGame draws the board, the sidebar and any overlay onto the screen.
func DrawGame(s *core.Screen, v GameView) {
	s.Clear()
	if v.Board == nil {
		return
	}
	rows, cols := v.Board.Rows(), v.Board.Cols()
	frame := boardRect(rows, cols)
	s.DrawBoxColor(frame, core.ColorGray)
	drawBoard(s, frame.Inset(1), v)
	drawSidebar(s, frame.Right()+2, v)

	switch v.Snapshot.State {
	case tetris.StatePaused:
		drawOverlay(s, frame, "PAUSED")
	case tetris.StateGameOver:
		drawOverlay(s, frame, "GAME OVER")
	}
}

func drawBoard(s *core.Screen, area core.Rect, v GameView) {
	wiped := func(row, col int) bool { return false }
	if v.Anim != nil {
		clearing := v.Anim.Rows()
		progress := v.Anim.Progress()
		wiped = func(row, col int) bool {
			return col < progress && slices.Contains(clearing, row)
		}
	}

	ghost := make(map[tetris.Position]bool, len(v.Ghost))
	for _, p := range v.Ghost {
		ghost[p] = true
	}

	for r := range v.Board.Rows() {
		for c := range v.Board.Cols() {
			x, y := area.X+c*2, area.Y+r
			cell := v.Board.At(r, c)
			switch {
			case wiped(r, c):
				s.DrawTextColor(x, y, "  ", core.ColorDefault)
			case !cell.IsEmpty():
				s.DrawTextColor(x, y, glyphBlock, pieceColor(cell.Piece))
			case ghost[tetris.Position{Row: r, Col: c}]:
				s.DrawTextColor(x, y, glyphGhost, core.ColorDarkGray)
			default:
				s.DrawTextColor(x, y, glyphEmpty, core.ColorDarkGray)
			}
		}
	}
}

func drawSidebar(s *core.Screen, x int, v GameView) {
	y := 0
	line := func(text string, c core.Color) {
		s.DrawTextColor(x, y, text, c)
		y++
	}

	line("NEXT", core.ColorBrightWhite)
	preview := core.NewRect(x, y, 10, 4)
	s.DrawBoxColor(preview, core.ColorGray)
	for _, off := range v.Next.Cells() {
		s.DrawTextColor(preview.X+1+off.Col*2, preview.Y+1+off.Row, glyphBlock, pieceColor(v.Next.ID))
	}
	y = preview.Bottom() + 1

	snap := v.Snapshot
	line(fmt.Sprintf("SCORE  %d", snap.Points), core.ColorBrightYellow)
	line(fmt.Sprintf("LINES  %d", snap.Lines), core.ColorDefault)
	line(fmt.Sprintf("LEVEL  %d", snap.Level), core.ColorDefault)
	if v.HighScore > 0 {
		line(fmt.Sprintf("BEST   %d", max(v.HighScore, snap.Points)), core.ColorGray)
	}
	y++

	if snap.Mode == tetris.ModeVersus.String() {
		line("VERSUS", core.ColorBrightCyan)
		if v.Peer != "" {
			line("vs "+v.Peer, core.ColorCyan)
		}
		if snap.State == tetris.StateWaiting {
			line("opponent's turn", core.ColorGray)
		} else if snap.Master {
			line("your turn", core.ColorBrightGreen)
		}
	}
	if v.Status != "" {
		line(v.Status, core.ColorBrightRed)
	}
}

func drawOverlay(s *core.Screen, frame core.Rect, text string) {
	y := frame.Y + frame.H/2
	x := frame.X + (frame.W-len(text)-2)/2
	s.DrawTextColor(x, y, " "+text+" ", core.ColorBrightWhite)
}
