package tetris

import "github.com/vovakirdan/tetra-arena/internal/core"

// Board dimensions are fixed for the lifetime of a room.
const (
	BoardWidth  = 10
	BoardHeight = 20
)

// PenaltyColor fills penalty rows sent by opponents.
const PenaltyColor = core.ColorGray

// Board is a 20×10 grid of cells; row 0 is the top. Being an array, a Board
// is copied on assignment and can never change size.
type Board [BoardHeight][BoardWidth]core.Color

// Merge returns a copy of the board with the piece's cells set to its color.
// Cells outside the board are skipped.
func Merge(b Board, p Piece) Board {
	for _, pt := range p.Cells() {
		if pt.X < 0 || pt.X >= BoardWidth || pt.Y < 0 || pt.Y >= BoardHeight {
			continue
		}
		b[pt.Y][pt.X] = p.Color
	}
	return b
}

func rowFull(row [BoardWidth]core.Color) bool {
	for _, c := range row {
		if c == core.ColorNone {
			return false
		}
	}
	return true
}

// ClearLines removes every full row, shifting the rows above it down, and
// returns the new board with the number of rows removed.
func ClearLines(b Board) (Board, int) {
	var out Board
	dst := BoardHeight - 1
	for src := BoardHeight - 1; src >= 0; src-- {
		if rowFull(b[src]) {
			continue
		}
		out[dst] = b[src]
		dst--
	}
	// Rows 0..dst stay empty.
	return out, dst + 1
}

// AddPenalty returns the board with n full penalty rows inserted at the top.
// The bottom n rows are trimmed so the height stays fixed.
func AddPenalty(b Board, n int) Board {
	n = core.Clamp(n, 0, BoardHeight)
	if n == 0 {
		return b
	}

	var out Board
	for y := 0; y < n; y++ {
		for x := range out[y] {
			out[y][x] = PenaltyColor
		}
	}
	copy(out[n:], b[:BoardHeight-n])
	return out
}

// ToppedOut reports whether any cell of the top row is occupied.
func ToppedOut(b *Board) bool {
	for _, c := range b[0] {
		if c != core.ColorNone {
			return true
		}
	}
	return false
}

// Rows returns the board as rows of color ids.
func (b *Board) Rows() [][]int {
	rows := make([][]int, BoardHeight)
	for y := range rows {
		rows[y] = make([]int, BoardWidth)
		for x, c := range b[y] {
			rows[y][x] = int(c)
		}
	}
	return rows
}
