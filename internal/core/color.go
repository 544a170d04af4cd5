package core

// Color identifies the color of an occupied board cell.
// Zero is reserved for empty cells.
type Color uint8

// Piece colors, one per tetromino type.
const (
	ColorNone Color = iota
	ColorCyan
	ColorYellow
	ColorMagenta
	ColorGreen
	ColorRed
	ColorBlue
	ColorOrange
	ColorGray // penalty rows
)

// String returns a human-readable name for the color.
func (c Color) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorCyan:
		return "cyan"
	case ColorYellow:
		return "yellow"
	case ColorMagenta:
		return "magenta"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorOrange:
		return "orange"
	case ColorGray:
		return "gray"
	default:
		return "unknown"
	}
}
