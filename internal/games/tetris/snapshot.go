package tetris

import (
	"errors"
	"fmt"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// NextPiecesShown is the length of every player's preview list.
const NextPiecesShown = 5

// ErrInvalidSnapshot is returned when a snapshot fails validation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// PieceSnapshot is the wire form of an active piece.
type PieceSnapshot struct {
	Type     string  `json:"type" msgpack:"type"`
	Shape    [][]int `json:"shape" msgpack:"shape"`
	X        int     `json:"x" msgpack:"x"`
	Y        int     `json:"y" msgpack:"y"`
	Color    int     `json:"color" msgpack:"color"`
	Rotation int     `json:"rotation" msgpack:"rotation"`
}

// PlayerSnapshot is the wire form of one player.
type PlayerSnapshot struct {
	Name         string         `json:"name" msgpack:"name"`
	IsReady      bool           `json:"isReady" msgpack:"isReady"`
	Grid         [][]int        `json:"grid" msgpack:"grid"`
	CurrentPiece *PieceSnapshot `json:"currentPiece,omitempty" msgpack:"currentPiece,omitempty"`
	PieceCursor  int            `json:"pieceCursor" msgpack:"pieceCursor"`
	Score        int            `json:"score" msgpack:"score"`
	LinesCleared int            `json:"linesCleared" msgpack:"linesCleared"`
	NextPieces   []string       `json:"nextPieces" msgpack:"nextPieces"`
}

// Snapshot is the full room state sent to presentation layers after each tick.
type Snapshot struct {
	Version             int              `json:"v" msgpack:"v"`
	Room                string           `json:"room" msgpack:"room"`
	Mode                string           `json:"mode" msgpack:"mode"`
	IsRunning           bool             `json:"isRunning" msgpack:"isRunning"`
	IsSolo              bool             `json:"isSolo" msgpack:"isSolo"`
	CurrentPieceIndex   int              `json:"currentPieceIndex" msgpack:"currentPieceIndex"`
	PieceSequenceLength int              `json:"pieceSequenceLength" msgpack:"pieceSequenceLength"`
	Players             []PlayerSnapshot `json:"players" msgpack:"players"`
}

func snapshotPiece(p Piece) *PieceSnapshot {
	return &PieceSnapshot{
		Type:     p.Type.String(),
		Shape:    p.Shape.Matrix(),
		X:        p.X,
		Y:        p.Y,
		Color:    int(p.Color),
		Rotation: p.Rotation,
	}
}

// Snapshot captures the current room state. The result shares no memory
// with the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Version:             SnapshotVersion,
		Room:                g.room,
		Mode:                g.mode,
		IsRunning:           g.running,
		IsSolo:              g.solo,
		CurrentPieceIndex:   g.MaxCursor(),
		PieceSequenceLength: g.seq.Len(),
		Players:             make([]PlayerSnapshot, 0, len(g.players)),
	}

	for _, p := range g.players {
		ps := PlayerSnapshot{
			Name:         p.Name,
			IsReady:      p.Ready,
			Grid:         p.Board.Rows(),
			PieceCursor:  p.Cursor,
			Score:        p.Score,
			LinesCleared: p.Lines,
		}
		if cur, ok := p.Current(); ok {
			ps.CurrentPiece = snapshotPiece(cur)
		}
		next := g.seq.Peek(p.Cursor, NextPiecesShown)
		ps.NextPieces = make([]string, len(next))
		for i, pc := range next {
			ps.NextPieces[i] = pc.Type.String()
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

// Validate checks the structural invariants of a snapshot.
func (s Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidSnapshot, s.Version)
	}
	if s.Room == "" {
		return fmt.Errorf("%w: empty room", ErrInvalidSnapshot)
	}
	if s.IsSolo != (len(s.Players) == 1) {
		return fmt.Errorf("%w: solo flag disagrees with %d players", ErrInvalidSnapshot, len(s.Players))
	}
	for _, p := range s.Players {
		if len(p.Grid) != BoardHeight {
			return fmt.Errorf("%w: player %q grid has %d rows", ErrInvalidSnapshot, p.Name, len(p.Grid))
		}
		for y, row := range p.Grid {
			if len(row) != BoardWidth {
				return fmt.Errorf("%w: player %q row %d has %d cells", ErrInvalidSnapshot, p.Name, y, len(row))
			}
		}
		if p.PieceCursor > s.PieceSequenceLength {
			return fmt.Errorf("%w: player %q cursor %d beyond sequence of %d",
				ErrInvalidSnapshot, p.Name, p.PieceCursor, s.PieceSequenceLength)
		}
		if len(p.NextPieces) > NextPiecesShown {
			return fmt.Errorf("%w: player %q has %d next pieces", ErrInvalidSnapshot, p.Name, len(p.NextPieces))
		}
	}
	return nil
}
