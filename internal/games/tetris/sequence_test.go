package tetris

import (
	"math/rand"
	"testing"
)

func TestSequenceDeterministic(t *testing.T) {
	a := NewSequence(rand.New(rand.NewSource(7)), 50, 20, 100)
	b := NewSequence(rand.New(rand.NewSource(7)), 50, 20, 100)

	for i := 0; i < a.Len(); i++ {
		if a.At(i).Type != b.At(i).Type {
			t.Fatalf("piece %d differs: %v vs %v", i, a.At(i).Type, b.At(i).Type)
		}
	}
}

func TestSequenceEnsure(t *testing.T) {
	s := NewSequence(rand.New(rand.NewSource(1)), 1000, 20, 100)

	if added := s.Ensure(979); added != 0 {
		t.Errorf("Ensure(979) added %d, expected 0", added)
	}
	if s.Len() != 1000 {
		t.Fatalf("Len() = %d, expected 1000", s.Len())
	}

	if added := s.Ensure(980); added != 100 {
		t.Errorf("Ensure(980) added %d, expected 100", added)
	}
	if s.Len() != 1100 {
		t.Errorf("Len() = %d, expected 1100", s.Len())
	}
}

func TestSequenceEnsureLargeJump(t *testing.T) {
	s := NewSequence(rand.New(rand.NewSource(1)), 10, 20, 100)

	s.Ensure(500)
	if s.Len()-500 <= 20 {
		t.Errorf("Len() = %d, expected more than 20 beyond cursor 500", s.Len())
	}
}

func TestSequenceEnsureZeroChunk(t *testing.T) {
	s := NewSequence(rand.New(rand.NewSource(1)), 5, 20, 0)

	if added := s.Ensure(0); added != 0 {
		t.Errorf("Ensure() with zero chunk added %d, expected 0", added)
	}
}

func TestSequencePeek(t *testing.T) {
	s := NewSequence(rand.New(rand.NewSource(3)), 10, 2, 5)

	next := s.Peek(2, 5)
	if len(next) != 5 {
		t.Fatalf("Peek(2, 5) returned %d pieces, expected 5", len(next))
	}
	for i, p := range next {
		if p.Type != s.At(2+i).Type {
			t.Errorf("Peek()[%d] = %v, expected %v", i, p.Type, s.At(2+i).Type)
		}
	}

	if got := s.Peek(8, 5); len(got) != 2 {
		t.Errorf("Peek(8, 5) returned %d pieces, expected 2", len(got))
	}
	if got := s.Peek(10, 5); got != nil {
		t.Errorf("Peek(10, 5) = %v, expected nil", got)
	}
}

func TestGeneratePieceSequenceCoversTypes(t *testing.T) {
	pieces := GeneratePieceSequence(rand.New(rand.NewSource(42)), 700)

	seen := make(map[PieceType]int)
	for _, p := range pieces {
		seen[p.Type]++
	}
	for _, typ := range PieceTypes {
		if seen[typ] == 0 {
			t.Errorf("type %v never drawn in 700 pieces", typ)
		}
	}
}
