package core

import (
	"strings"
)

// Glyph is one screen cell: a rune and the color it should be drawn with.
type Glyph struct {
	Rune  rune
	Color Color
}

// Span is a horizontal run of glyphs sharing one color.
type Span struct {
	Text  string
	Color Color
}

// Screen is a 2D glyph buffer. Spectator views draw boards into it and the
// terminal layer turns color spans into styled text.
type Screen struct {
	width  int
	height int
	cells  [][]Glyph
}

// NewScreen creates a new screen buffer with the given dimensions.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  width,
		height: height,
	}
	s.cells = make([][]Glyph, height)
	for y := range s.cells {
		s.cells[y] = make([]Glyph, width)
	}
	s.Clear()
	return s
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// Clear fills the entire screen with uncolored spaces.
func (s *Screen) Clear() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = Glyph{Rune: ' '}
		}
	}
}

// Set places a rune at the given position.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) Set(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Glyph{Rune: r, Color: c}
}

// Get returns the glyph at the given position.
// Returns an uncolored space for out-of-bounds coordinates.
func (s *Screen) Get(x, y int) Glyph {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Glyph{Rune: ' '}
	}
	return s.cells[y][x]
}

// DrawText writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, c)
		i++
	}
}

// DrawBox draws a box outline of size w×h with its top-left corner at (x, y).
func (s *Screen) DrawBox(x, y, w, h int) {
	right, bottom := x+w-1, y+h-1

	s.Set(x, y, '┌', ColorNone)
	s.Set(right, y, '┐', ColorNone)
	s.Set(x, bottom, '└', ColorNone)
	s.Set(right, bottom, '┘', ColorNone)

	for i := x + 1; i < right; i++ {
		s.Set(i, y, '─', ColorNone)
		s.Set(i, bottom, '─', ColorNone)
	}
	for j := y + 1; j < bottom; j++ {
		s.Set(x, j, '│', ColorNone)
		s.Set(right, j, '│', ColorNone)
	}
}

// Spans splits row y into runs of equal color.
func (s *Screen) Spans(y int) []Span {
	if y < 0 || y >= s.height || s.width == 0 {
		return nil
	}

	var spans []Span
	var sb strings.Builder
	cur := s.cells[y][0].Color
	for _, g := range s.cells[y] {
		if g.Color != cur {
			spans = append(spans, Span{Text: sb.String(), Color: cur})
			sb.Reset()
			cur = g.Color
		}
		sb.WriteRune(g.Rune)
	}
	return append(spans, Span{Text: sb.String(), Color: cur})
}

// String converts the screen buffer to plain text, one line per row.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)

	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < s.width; x++ {
			sb.WriteRune(s.cells[y][x].Rune)
		}
	}
	return sb.String()
}
