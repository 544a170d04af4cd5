package tetris

import (
	"github.com/vovakirdan/tetra-arena/internal/core"
)

// Player is the per-player simulation state inside a room.
type Player struct {
	Name   string
	Ready  bool
	Board  Board
	Cursor int // Index of the next piece to deal from the room sequence
	Score  int
	Lines  int
	Input  core.InputState

	current *Piece

	// ForcedFall is set by a hard drop and blocks horizontal and soft-drop
	// input until the next piece is dealt.
	ForcedFall     bool
	LockDelayTicks int
	TouchingGround bool
	LockMoveResets int
}

// NewPlayer creates a player with an empty board.
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// Current returns the active piece, if any.
func (p *Player) Current() (Piece, bool) {
	if p.current == nil {
		return Piece{}, false
	}
	return *p.current, true
}

func (p *Player) setCurrent(pc Piece) {
	p.current = &pc
}

// UpdateInput merges a raw key report into the player's input state.
func (p *Player) UpdateInput(k core.Keys) {
	p.Input = p.Input.Merge(k)
}

// resetLock clears all lock-delay bookkeeping.
func (p *Player) resetLock() {
	p.LockDelayTicks = 0
	p.TouchingGround = false
	p.LockMoveResets = 0
}

// deal makes pc the active piece and advances the cursor.
func (p *Player) deal(pc Piece) {
	p.setCurrent(pc)
	p.Cursor++
	p.ForcedFall = false
	p.resetLock()
}
