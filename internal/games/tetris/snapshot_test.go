package tetris

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, DefaultRules(), "A", "B")
	mustPlayer(t, g, "A").Ready = true

	s := g.Snapshot()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if s.Room != "r1" || !s.IsRunning || s.IsSolo {
		t.Errorf("snapshot header = %+v", s)
	}
	if s.CurrentPieceIndex != 1 {
		t.Errorf("CurrentPieceIndex = %d, expected 1", s.CurrentPieceIndex)
	}
	if s.PieceSequenceLength != 1000 {
		t.Errorf("PieceSequenceLength = %d, expected 1000", s.PieceSequenceLength)
	}
	if len(s.Players) != 2 {
		t.Fatalf("snapshot has %d players, expected 2", len(s.Players))
	}

	a := s.Players[0]
	if a.Name != "A" || !a.IsReady {
		t.Errorf("player 0 = %s ready=%v, expected ready A", a.Name, a.IsReady)
	}
	if a.CurrentPiece == nil {
		t.Fatal("player A should have a current piece")
	}
	if a.CurrentPiece.Type != g.Sequence().At(0).Type.String() {
		t.Errorf("CurrentPiece.Type = %s, expected %s", a.CurrentPiece.Type, g.Sequence().At(0).Type)
	}
	if len(a.NextPieces) != NextPiecesShown {
		t.Fatalf("NextPieces has %d entries, expected %d", len(a.NextPieces), NextPiecesShown)
	}
	for i, name := range a.NextPieces {
		if want := g.Sequence().At(1 + i).Type.String(); name != want {
			t.Errorf("NextPieces[%d] = %s, expected %s", i, name, want)
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	g := newTestGame(t, DefaultRules(), "A")

	s := g.Snapshot()
	s.Players[0].Grid[19][0] = 7

	if mustPlayer(t, g, "A").Board[19][0] != 0 {
		t.Error("mutating a snapshot changed the board")
	}
}

func TestSnapshotWithoutPiece(t *testing.T) {
	g := newTestGame(t, DefaultRules(), "A")
	mustPlayer(t, g, "A").current = nil

	s := g.Snapshot()
	if s.Players[0].CurrentPiece != nil {
		t.Error("CurrentPiece should be absent")
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if strings.Contains(string(data), `"currentPiece":`) {
		t.Errorf("absent piece should be omitted: %s", data)
	}
	if !strings.Contains(string(data), `"v":1`) {
		t.Errorf("snapshot JSON missing version: %s", data)
	}
}

func TestSnapshotMsgpack(t *testing.T) {
	g := newTestGame(t, DefaultRules(), "A", "B")
	s := g.Snapshot()

	data, err := msgpack.Marshal(s)
	if err != nil {
		t.Fatalf("msgpack.Marshal() failed: %v", err)
	}
	var decoded Snapshot
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("msgpack.Unmarshal() failed: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("decoded snapshot invalid: %v", err)
	}
	if decoded.Players[1].Name != "B" {
		t.Errorf("decoded player 1 = %q, expected B", decoded.Players[1].Name)
	}
}

func TestSnapshotValidate(t *testing.T) {
	g := newTestGame(t, DefaultRules(), "A", "B")

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }},
		{"empty room", func(s *Snapshot) { s.Room = "" }},
		{"solo mismatch", func(s *Snapshot) { s.IsSolo = true }},
		{"short grid", func(s *Snapshot) { s.Players[0].Grid = s.Players[0].Grid[:19] }},
		{"narrow row", func(s *Snapshot) { s.Players[1].Grid[3] = []int{0, 0} }},
		{"cursor overflow", func(s *Snapshot) { s.Players[0].PieceCursor = s.PieceSequenceLength + 1 }},
		{"too many next", func(s *Snapshot) { s.Players[0].NextPieces = make([]string, 6) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := g.Snapshot()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("Validate() = %v, expected ErrInvalidSnapshot", err)
			}
		})
	}
}
