// Package tetris implements the authoritative falling-block simulation:
// pieces and collision, the shared piece sequence, per-player state and the
// room rules engine. It has no notion of time or transport; the multiplayer
// package drives it.
package tetris

import (
	"github.com/vovakirdan/tetra-arena/internal/core"
)

// PieceType is one of the seven tetrominoes.
type PieceType int

const (
	PieceI PieceType = iota
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
)

// PieceTypes lists all piece types in draw order.
var PieceTypes = [...]PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

// String returns the single-letter name of the piece type.
func (t PieceType) String() string {
	switch t {
	case PieceI:
		return "I"
	case PieceO:
		return "O"
	case PieceT:
		return "T"
	case PieceS:
		return "S"
	case PieceZ:
		return "Z"
	case PieceJ:
		return "J"
	case PieceL:
		return "L"
	default:
		return "?"
	}
}

// maxShape bounds the shape matrix of every piece.
const maxShape = 4

// Shape is an occupancy matrix of at most 4×4 cells.
// It is a plain value; copying a Shape copies its cells.
type Shape struct {
	Rows  int
	Cols  int
	Cells [maxShape][maxShape]bool
}

// shapeFrom builds a Shape from rows of '#' and '.'.
func shapeFrom(rows ...string) Shape {
	s := Shape{Rows: len(rows), Cols: len(rows[0])}
	for r, row := range rows {
		for c, ch := range row {
			s.Cells[r][c] = ch == '#'
		}
	}
	return s
}

// Rotated returns the shape turned 90° clockwise.
func (s Shape) Rotated() Shape {
	out := Shape{Rows: s.Cols, Cols: s.Rows}
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			out.Cells[c][s.Rows-1-r] = s.Cells[r][c]
		}
	}
	return out
}

// Matrix returns the shape as rows of 0/1.
func (s Shape) Matrix() [][]int {
	m := make([][]int, s.Rows)
	for r := range m {
		m[r] = make([]int, s.Cols)
		for c := range m[r] {
			if s.Cells[r][c] {
				m[r][c] = 1
			}
		}
	}
	return m
}

var baseShapes = [...]Shape{
	PieceI: shapeFrom("....", "####", "....", "...."),
	PieceO: shapeFrom("##", "##"),
	PieceT: shapeFrom(".#.", "###", "..."),
	PieceS: shapeFrom(".##", "##.", "..."),
	PieceZ: shapeFrom("##.", ".##", "..."),
	PieceJ: shapeFrom("#..", "###", "..."),
	PieceL: shapeFrom("..#", "###", "..."),
}

var pieceColors = [...]core.Color{
	PieceI: core.ColorCyan,
	PieceO: core.ColorYellow,
	PieceT: core.ColorMagenta,
	PieceS: core.ColorGreen,
	PieceZ: core.ColorRed,
	PieceJ: core.ColorBlue,
	PieceL: core.ColorOrange,
}

// Piece is one tetromino placed on a board. All transforms return a new
// Piece and leave the receiver untouched.
type Piece struct {
	Type     PieceType
	Shape    Shape
	X, Y     int // Board position of the shape's top-left cell
	Rotation int // 0..3
	Color    core.Color
}

// NewPiece creates a piece of the given type at its spawn position,
// horizontally centered on the top row.
func NewPiece(t PieceType) Piece {
	shape := baseShapes[t]
	return Piece{
		Type:  t,
		Shape: shape,
		X:     (BoardWidth - shape.Cols) / 2,
		Y:     0,
		Color: pieceColors[t],
	}
}

// Move returns the piece shifted by (dx, dy).
func (p Piece) Move(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// Rotate returns the piece turned 90° clockwise without any validity check.
func (p Piece) Rotate() Piece {
	p.Shape = p.Shape.Rotated()
	p.Rotation = (p.Rotation + 1) % 4
	return p
}

// Cells returns the board coordinates of every occupied cell.
func (p Piece) Cells() []core.Point {
	cells := make([]core.Point, 0, 4)
	for r := 0; r < p.Shape.Rows; r++ {
		for c := 0; c < p.Shape.Cols; c++ {
			if p.Shape.Cells[r][c] {
				cells = append(cells, core.Point{X: p.X, Y: p.Y}.Add(core.Point{X: c, Y: r}))
			}
		}
	}
	return cells
}

// wallKicks are the offsets tried, in order, when a rotation collides.
var wallKicks = [...]core.Point{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: -2, Y: 0},
	{X: 2, Y: 0},
}

// RotateWallKick rotates the piece and, if the result collides, tries each
// wall-kick offset in turn. It returns the first valid candidate and true,
// or the original piece and false when no candidate fits.
func RotateWallKick(p Piece, b *Board) (Piece, bool) {
	rotated := p.Rotate()
	if IsValidPosition(rotated, b) {
		return rotated, true
	}
	for _, off := range wallKicks {
		candidate := rotated.Move(off.X, off.Y)
		if IsValidPosition(candidate, b) {
			return candidate, true
		}
	}
	return p, false
}

// IsValidPosition reports whether every occupied cell of the piece lies
// inside the board and on an empty cell.
func IsValidPosition(p Piece, b *Board) bool {
	for _, pt := range p.Cells() {
		if pt.X < 0 || pt.X >= BoardWidth || pt.Y < 0 || pt.Y >= BoardHeight {
			return false
		}
		if b[pt.Y][pt.X] != core.ColorNone {
			return false
		}
	}
	return true
}

// CanMoveDown reports whether the piece can fall one row.
func CanMoveDown(p Piece, b *Board) bool {
	return IsValidPosition(p.Move(0, 1), b)
}

// HardDrop returns the piece at its lowest reachable resting position.
// The board is not modified.
func HardDrop(p Piece, b *Board) Piece {
	for CanMoveDown(p, b) {
		p = p.Move(0, 1)
	}
	return p
}
