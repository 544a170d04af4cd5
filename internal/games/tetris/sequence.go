package tetris

import "math/rand"

// Sequence is the append-only piece stream shared by all players of a room.
// Each player reads it through its own cursor, so everyone gets the same
// pieces in the same order.
type Sequence struct {
	rng       *rand.Rand
	pieces    []Piece
	threshold int
	chunk     int
}

// GenerateRandomPiece draws one piece type uniformly at random.
// Draws are independent; there is no bag.
func GenerateRandomPiece(rng *rand.Rand) Piece {
	return NewPiece(PieceTypes[rng.Intn(len(PieceTypes))])
}

// GeneratePieceSequence returns n independent random pieces.
func GeneratePieceSequence(rng *rand.Rand, n int) []Piece {
	pieces := make([]Piece, n)
	for i := range pieces {
		pieces[i] = GenerateRandomPiece(rng)
	}
	return pieces
}

// NewSequence creates a sequence seeded with initial pieces. Once a cursor
// comes within threshold of the end, chunk more pieces are appended.
func NewSequence(rng *rand.Rand, initial, threshold, chunk int) *Sequence {
	return &Sequence{
		rng:       rng,
		pieces:    GeneratePieceSequence(rng, initial),
		threshold: threshold,
		chunk:     chunk,
	}
}

// Len returns the number of pieces generated so far.
func (s *Sequence) Len() int {
	return len(s.pieces)
}

// At returns the piece template at index i.
func (s *Sequence) At(i int) Piece {
	return s.pieces[i]
}

// Peek returns up to n templates starting at index i.
func (s *Sequence) Peek(i, n int) []Piece {
	if i >= len(s.pieces) {
		return nil
	}
	end := min(i+n, len(s.pieces))
	out := make([]Piece, end-i)
	copy(out, s.pieces[i:end])
	return out
}

// Ensure grows the sequence until cursor is more than threshold pieces away
// from its end. It returns the number of pieces appended.
func (s *Sequence) Ensure(cursor int) int {
	added := 0
	if s.chunk <= 0 {
		return 0
	}
	for len(s.pieces)-cursor <= s.threshold {
		s.pieces = append(s.pieces, GeneratePieceSequence(s.rng, s.chunk)...)
		added += s.chunk
	}
	return added
}
