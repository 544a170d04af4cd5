package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetra-arena/internal/core"
	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
)

// colorStyles maps piece colors to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorNone:    lipgloss.NewStyle(),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Board layout: every cell is two columns wide, inside a one-char frame,
// followed by four lines of stats.
const (
	cellWidth   = 2
	boardWidth  = tetris.BoardWidth*cellWidth + 2
	boardHeight = tetris.BoardHeight + 2
	statsLines  = 4
	panelHeight = boardHeight + statsLines
)

// RenderScreen converts a Screen buffer to a styled string.
// Adjacent cells of one color share a single style run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, span := range s.Spans(y) {
			style, ok := colorStyles[span.Color]
			if !ok {
				style = colorStyles[core.ColorNone]
			}
			sb.WriteString(style.Render(span.Text))
		}
	}
	return sb.String()
}

func drawCell(s *core.Screen, ox, oy, x, y int, c core.Color) {
	if x < 0 || x >= tetris.BoardWidth || y < 0 || y >= tetris.BoardHeight {
		return
	}
	px := ox + 1 + x*cellWidth
	py := oy + 1 + y
	s.Set(px, py, '█', c)
	s.Set(px+1, py, '█', c)
}

// DrawBoard draws one player's grid, active piece and stats with the top
// left corner of the frame at (ox, oy).
func DrawBoard(s *core.Screen, ox, oy int, p tetris.PlayerSnapshot) {
	s.DrawBox(ox, oy, boardWidth, boardHeight)

	for y, row := range p.Grid {
		for x, cell := range row {
			if cell != 0 {
				drawCell(s, ox, oy, x, y, core.Color(cell))
			}
		}
	}

	if piece := p.CurrentPiece; piece != nil {
		for r, row := range piece.Shape {
			for c, v := range row {
				if v != 0 {
					drawCell(s, ox, oy, piece.X+c, piece.Y+r, core.Color(piece.Color))
				}
			}
		}
	}

	name := p.Name
	if len(name) > boardWidth {
		name = name[:boardWidth]
	}
	y := oy + boardHeight
	s.DrawText(ox, y, name, core.ColorNone)
	s.DrawText(ox, y+1, fmt.Sprintf("Score %d", p.Score), core.ColorNone)
	s.DrawText(ox, y+2, fmt.Sprintf("Lines %d", p.LinesCleared), core.ColorNone)
	s.DrawText(ox, y+3, "Next  "+strings.Join(p.NextPieces, " "), core.ColorNone)
}

// RenderRoom draws every player of a snapshot side by side.
func RenderRoom(snap tetris.Snapshot) string {
	if len(snap.Players) == 0 {
		return ""
	}
	const gap = 2
	width := len(snap.Players)*(boardWidth+gap) - gap
	s := core.NewScreen(width, panelHeight)
	for i, p := range snap.Players {
		DrawBoard(s, i*(boardWidth+gap), 0, p)
	}
	return RenderScreen(s)
}
