package multiplayer

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tetra-arena/internal/core"
	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
	"github.com/vovakirdan/tetra-arena/internal/registry"
)

// Room pairs a game with its scheduler. Every access to the game goes
// through mu, so both ticks and player requests share one timeline.
type Room struct {
	id        string
	mode      registry.Mode
	transport Transport
	logger    *log.Logger
	onFinish  func(MatchResultData)
	now       func() time.Time

	mu        sync.Mutex
	game      *tetris.Game
	sched     *Scheduler
	matchID   MatchID
	startedAt time.Time
	finished  bool
}

func (r *Room) summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]string, 0, len(r.game.Players()))
	for _, p := range r.game.Players() {
		players = append(players, p.Name)
	}
	return RoomSummary{
		Room:    r.id,
		Mode:    r.mode.ID(),
		Running: r.game.Running(),
		MatchID: string(r.matchID),
		Players: players,
	}
}

func (r *Room) snapshot() tetris.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Snapshot()
}

// launch starts the game and its scheduler.
func (r *Room) launch(inputTick time.Duration) error {
	r.mu.Lock()
	if r.game.Running() {
		r.mu.Unlock()
		return fmt.Errorf("launch %q: %w", r.id, ErrAlreadyRunning)
	}
	if r.sched != nil {
		r.mu.Unlock()
		return fmt.Errorf("launch %q: %w", r.id, ErrSchedulerExists)
	}

	r.game.Start()
	r.matchID = MatchID(uuid.NewString())
	r.startedAt = r.now()
	r.sched = NewScheduler(r, inputTick, r.mode.GravityInterval(0), r.mode.Dynamic(), r.logger)
	r.sched.Start()
	snap := r.game.Snapshot()
	matchID := r.matchID
	r.mu.Unlock()

	r.logger.Info("game launched", "match", matchID, "players", len(snap.Players))
	r.transport.BroadcastToRoom(r.id, GameStartedEvent{Room: r.id, MatchID: matchID, Mode: r.mode.ID()})
	r.transport.BroadcastToRoom(r.id, GameStateEvent{Snapshot: snap})
	return nil
}

// stop tears the room down: the scheduler first, then the game.
func (r *Room) stop(reason EndReason) {
	r.mu.Lock()
	sched := r.sched
	r.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}

	r.mu.Lock()
	r.game.Stop()
	result := r.finishLocked(reason, "")
	r.mu.Unlock()

	r.logger.Info("game stopped", "reason", reason)
	r.transport.BroadcastToRoom(r.id, GameStoppedEvent{Room: r.id, Reason: reason.String()})
	r.report(result)
}

// finishLocked builds the match result once per launched game. It returns
// nil if the game never launched or was already finished.
func (r *Room) finishLocked(reason EndReason, loser string) *MatchResultData {
	if r.finished || r.matchID == "" {
		return nil
	}
	r.finished = true

	players := make([]PlayerResult, 0, len(r.game.Players()))
	for _, p := range r.game.Players() {
		players = append(players, PlayerResult{Name: p.Name, Score: p.Score, Lines: p.Lines})
	}
	return &MatchResultData{
		MatchID:      string(r.matchID),
		Room:         r.id,
		Mode:         r.mode.ID(),
		Loser:        loser,
		EndReason:    reason.String(),
		DurationSecs: int(r.now().Sub(r.startedAt).Seconds()),
		Players:      players,
	}
}

func (r *Room) report(result *MatchResultData) {
	if result != nil && r.onFinish != nil {
		r.onFinish(*result)
	}
}

func (r *Room) setReady(name string) (launch bool, err error) {
	r.mu.Lock()
	becameReady, err := r.game.SetReady(name)
	idle := !r.game.Running() && r.sched == nil
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if err != nil {
		return false, err
	}
	r.transport.BroadcastToRoom(r.id, GameStateEvent{Snapshot: snap})
	return becameReady && idle, nil
}

func (r *Room) updateInput(name string, keys core.Keys) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.UpdateInput(name, keys)
}

func (r *Room) inputTick() bool {
	r.mu.Lock()
	if !r.game.Running() {
		r.mu.Unlock()
		return false
	}
	r.game.ResolveInputs()
	snap := r.game.Snapshot()
	r.mu.Unlock()

	r.transport.BroadcastToRoom(r.id, GameStateEvent{Snapshot: snap})
	return true
}

func (r *Room) gravityTick() (bool, time.Duration) {
	r.mu.Lock()
	if !r.game.Running() {
		r.mu.Unlock()
		return false, 0
	}

	report := r.game.ResolveGravity()
	next := r.mode.GravityInterval(r.game.AverageLines())
	snap := r.game.Snapshot()
	matchID := r.matchID
	var result *MatchResultData
	if report.GameOver != "" {
		result = r.finishLocked(EndReasonToppedOut, report.GameOver)
	}
	r.mu.Unlock()

	for _, l := range report.Locks {
		if l.Lines > 0 {
			r.logger.Debug("lines cleared", "player", l.Player, "lines", l.Lines, "points", l.Points, "penalty", l.Penalty)
		}
	}

	r.transport.BroadcastToRoom(r.id, GameStateEvent{Snapshot: snap})
	if report.GameOver != "" {
		r.logger.Info("game over", "match", matchID, "player", report.GameOver)
		r.transport.BroadcastToRoom(r.id, GameOverEvent{Room: r.id, MatchID: matchID, Player: report.GameOver})
		r.report(result)
	}
	return snap.IsRunning, next
}
