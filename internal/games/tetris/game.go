package tetris

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/core"
)

var (
	// ErrPlayerNotFound means a name is not a member of the room.
	ErrPlayerNotFound = errors.New("player not found in room")

	// ErrNoPlayers is returned when a game is created without players.
	ErrNoPlayers = errors.New("game needs at least one player")

	// ErrDuplicatePlayer is returned when two players share a name.
	ErrDuplicatePlayer = errors.New("duplicate player name")
)

// Rules holds the tunable thresholds of the rules engine.
type Rules struct {
	LockDelayTicks     int // Gravity ticks a resting piece waits before locking
	MaxMoveResets      int // Moves on the ground that may restart the lock delay
	ResetLockThreshold int // Move resets after which the piece locks on the next gravity tick
	InitialSequence    int
	RefillThreshold    int
	RefillChunk        int
}

// RulesFromConfig extracts the rules from the game configuration.
func RulesFromConfig(cfg config.GameConfig) Rules {
	return Rules{
		LockDelayTicks:     cfg.Lock.DelayTicks,
		MaxMoveResets:      cfg.Lock.MaxMoveResets,
		ResetLockThreshold: cfg.Lock.ResetLockThreshold,
		InitialSequence:    cfg.Sequence.Initial,
		RefillThreshold:    cfg.Sequence.RefillThreshold,
		RefillChunk:        cfg.Sequence.RefillChunk,
	}
}

// DefaultRules returns the rules of the default configuration.
func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Game)
}

// LinePoints returns the score awarded for clearing n lines with one lock.
func LinePoints(n int) int {
	if n <= 0 {
		return 0
	}
	points := 100 * n
	if n >= 4 {
		points += 400
	}
	return points
}

// LockEvent describes one piece being merged into a board.
type LockEvent struct {
	Player    string
	Lines     int
	Points    int
	Penalty   int // Rows sent to every other player
	ToppedOut bool
}

// GravityReport summarizes one gravity tick.
type GravityReport struct {
	Locks    []LockEvent
	GameOver string // Name of the player who topped out, empty if none
}

// Game is the state of one room: its players, the shared piece sequence and
// the rules applied to them. A Game is not safe for concurrent use; callers
// serialize access per room.
type Game struct {
	room    string
	mode    string
	rules   Rules
	players []*Player
	seq     *Sequence
	running bool
	solo    bool
	loser   string
}

// NewGame creates a room state for the given ordered player names.
func NewGame(room string, names []string, mode string, rules Rules, rng *rand.Rand) (*Game, error) {
	if len(names) == 0 {
		return nil, ErrNoPlayers
	}

	players := make([]*Player, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, name)
		}
		seen[name] = true
		players = append(players, NewPlayer(name))
	}

	return &Game{
		room:    room,
		mode:    mode,
		rules:   rules,
		players: players,
		seq:     NewSequence(rng, rules.InitialSequence, rules.RefillThreshold, rules.RefillChunk),
		solo:    len(players) == 1,
	}, nil
}

// Room returns the room identifier.
func (g *Game) Room() string {
	return g.room
}

// Mode returns the mode name the game was created with.
func (g *Game) Mode() string {
	return g.mode
}

// Running reports whether the match is in progress.
func (g *Game) Running() bool {
	return g.running
}

// Solo reports whether the room has exactly one player.
func (g *Game) Solo() bool {
	return g.solo
}

// Loser returns the player whose overflow ended the match, if any.
func (g *Game) Loser() string {
	return g.loser
}

// Players returns the players in join order.
func (g *Game) Players() []*Player {
	return g.players
}

// Sequence returns the shared piece sequence.
func (g *Game) Sequence() *Sequence {
	return g.seq
}

// Player looks up a player by name.
func (g *Game) Player(name string) (*Player, error) {
	for _, p := range g.players {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrPlayerNotFound, name, g.room)
}

// SetReady marks a player ready. It reports true only when this call made
// the last unready player ready.
func (g *Game) SetReady(name string) (bool, error) {
	p, err := g.Player(name)
	if err != nil {
		return false, err
	}
	if p.Ready {
		return false, nil
	}
	p.Ready = true
	return g.AllReady(), nil
}

// AllReady reports whether every player is ready.
func (g *Game) AllReady() bool {
	for _, p := range g.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// UpdateInput merges a raw key report into a player's input.
func (g *Game) UpdateInput(name string, keys core.Keys) error {
	p, err := g.Player(name)
	if err != nil {
		return err
	}
	p.UpdateInput(keys)
	return nil
}

// Start deals the first piece to every player and marks the game running.
func (g *Game) Start() {
	for _, p := range g.players {
		g.dealNext(p)
	}
	g.running = true
}

// Stop ends the match. Stopping twice is harmless.
func (g *Game) Stop() {
	g.running = false
}

// AverageLines returns the mean number of lines cleared per player.
func (g *Game) AverageLines() float64 {
	total := 0
	for _, p := range g.players {
		total += p.Lines
	}
	return float64(total) / float64(len(g.players))
}

// MaxCursor returns the furthest cursor of any player.
func (g *Game) MaxCursor() int {
	maxCursor := 0
	for _, p := range g.players {
		maxCursor = max(maxCursor, p.Cursor)
	}
	return maxCursor
}

func (g *Game) dealNext(p *Player) {
	g.seq.Ensure(g.MaxCursor())
	p.deal(g.seq.At(p.Cursor))
	g.seq.Ensure(g.MaxCursor())
}

// ResolveInputs applies every player's held input to their active piece.
// It runs on the fast input tick.
func (g *Game) ResolveInputs() {
	if !g.running {
		return
	}
	for _, p := range g.players {
		if p.current == nil {
			continue
		}
		g.resolveInput(p)
	}
}

func (g *Game) resolveInput(p *Player) {
	piece := *p.current
	in := p.Input
	moved := false

	if in.RotatePending() {
		if rotated, ok := RotateWallKick(piece, &p.Board); ok {
			piece = rotated
			moved = true
		}
		p.Input.UpConsumed = true
	}

	if !p.ForcedFall {
		if in.Left {
			if c := piece.Move(-1, 0); IsValidPosition(c, &p.Board) {
				piece = c
				moved = true
			}
		}
		if in.Right {
			if c := piece.Move(1, 0); IsValidPosition(c, &p.Board) {
				piece = c
				moved = true
			}
		}
		if in.Down {
			if c := piece.Move(0, 1); IsValidPosition(c, &p.Board) {
				piece = c
				moved = true
				p.resetLock()
			}
		}
	}

	if in.HardDropPending() {
		piece = HardDrop(piece, &p.Board)
		p.ForcedFall = true
		p.Input.SpaceConsumed = true
		moved = true
	}

	if moved {
		if p.TouchingGround && p.LockMoveResets < g.rules.MaxMoveResets {
			p.LockMoveResets++
			p.LockDelayTicks = 0
		} else if CanMoveDown(piece, &p.Board) {
			p.resetLock()
		}
	}

	p.setCurrent(piece)
}

// ResolveGravity drops every active piece by one row or advances its lock
// delay, locking pieces whose delay has run out. It runs on the gravity tick.
// When a player tops out the game stops and the remaining players are not
// processed.
func (g *Game) ResolveGravity() GravityReport {
	var report GravityReport
	if !g.running {
		return report
	}

	for _, p := range g.players {
		if p.current == nil {
			continue
		}
		piece := *p.current
		falling := CanMoveDown(piece, &p.Board)

		if falling && !p.ForcedFall {
			if p.Input.Down {
				// Deliberately skipped: soft drop owns the descent on the input tick.
				continue
			}
			p.setCurrent(piece.Move(0, 1))
			p.resetLock()
			continue
		}

		if !p.TouchingGround {
			p.TouchingGround = true
			p.LockDelayTicks = 0
			p.LockMoveResets = 0
		} else {
			p.LockDelayTicks++
		}

		if p.LockDelayTicks >= g.rules.LockDelayTicks || p.LockMoveResets >= g.rules.ResetLockThreshold {
			ev := g.lock(p)
			report.Locks = append(report.Locks, ev)
			if ev.ToppedOut {
				report.GameOver = p.Name
				return report
			}
		}
	}
	return report
}

// lock merges the player's piece, clears lines, scores, sends penalty rows
// and either ends the game or deals the next piece.
func (g *Game) lock(p *Player) LockEvent {
	piece := *p.current
	p.current = nil

	board, lines := ClearLines(Merge(p.Board, piece))
	p.Board = board

	ev := LockEvent{Player: p.Name, Lines: lines, Points: LinePoints(lines)}
	p.Score += ev.Points
	p.Lines += lines

	if lines > 1 && !g.solo {
		ev.Penalty = lines - 1
		for _, other := range g.players {
			if other != p {
				other.Board = AddPenalty(other.Board, ev.Penalty)
			}
		}
	}

	if ToppedOut(&p.Board) {
		ev.ToppedOut = true
		g.loser = p.Name
		g.running = false
		return ev
	}

	g.dealNext(p)
	return ev
}
