package multiplayer

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/core"
	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
	"github.com/vovakirdan/tetra-arena/internal/registry"
)

// DefaultMode is used when a room asks for an unknown mode.
const DefaultMode = tetris.ModeNormal

// Coordinator is the room-keyed registry of running games. It is the only
// entry point the transport and lobby use to touch game state.
type Coordinator struct {
	config      config.GameConfig
	transport   Transport
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger

	// seed returns the piece sequence seed of a new room.
	seed func() int64
	now  func() time.Time

	mu    sync.RWMutex
	rooms map[string]*Room

	// saves tracks result writes still in flight.
	saves sync.WaitGroup
}

// NewCoordinator creates a coordinator that sends events through transport.
func NewCoordinator(cfg config.GameConfig, transport Transport, logger *log.Logger) *Coordinator {
	return &Coordinator{
		config:    cfg,
		transport: transport,
		logger:    logger,
		seed:      func() int64 { return time.Now().UnixNano() },
		now:       time.Now,
		rooms:     make(map[string]*Room),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

func (c *Coordinator) lookup(room string) (*Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[room]
	return r, ok
}

func (c *Coordinator) resolveMode(room, id string) registry.Mode {
	mode, err := registry.Create(id, c.config.Gravity)
	if err == nil {
		return mode
	}
	c.logger.Warn("unknown mode, using default", "room", room, "mode", id, "default", DefaultMode)
	mode, err = registry.Create(DefaultMode, c.config.Gravity)
	if err != nil {
		panic(fmt.Sprintf("multiplayer: default mode %q not registered", DefaultMode))
	}
	return mode
}

// CreateGame sets up a fresh game for room with the given ordered players.
// Any game already in the room is stopped first.
func (c *Coordinator) CreateGame(players []string, room, mode string) error {
	if _, exists := c.lookup(room); exists {
		c.stopRoom(room, EndReasonReplaced)
	}

	m := c.resolveMode(room, mode)
	game, err := tetris.NewGame(room, players, m.ID(), tetris.RulesFromConfig(c.config), rand.New(rand.NewSource(c.seed())))
	if err != nil {
		return fmt.Errorf("create game %q: %w", room, err)
	}

	r := &Room{
		id:        room,
		mode:      m,
		transport: c.transport,
		logger:    c.logger.With("room", room),
		onFinish:  c.saveResult,
		now:       c.now,
		game:      game,
	}

	c.mu.Lock()
	prev := c.rooms[room]
	c.rooms[room] = r
	c.mu.Unlock()

	// Another CreateGame may have raced us between the stop and the insert.
	if prev != nil {
		prev.stop(EndReasonReplaced)
	}

	r.logger.Info("game created", "mode", m.ID(), "players", len(players))
	c.transport.BroadcastToRoom(room, GameCreatedEvent{Room: room, Mode: m.ID(), Players: append([]string(nil), players...)})
	return nil
}

// LaunchGame deals the first pieces and starts the room's scheduler.
// Failures are logged and leave the room untouched.
func (c *Coordinator) LaunchGame(room string) error {
	r, ok := c.lookup(room)
	if !ok {
		c.logger.Warn("launch: room not found", "room", room)
		return fmt.Errorf("launch %q: %w", room, ErrRoomNotFound)
	}
	if err := r.launch(c.config.InputTick); err != nil {
		r.logger.Warn("launch refused", "error", err)
		return err
	}
	return nil
}

// PlayerReady marks a player ready. When this makes every player ready the
// room is told it is launching and the game starts. Repeated readies and
// readies after a game over only rebroadcast the state.
func (c *Coordinator) PlayerReady(name, room string) error {
	r, ok := c.lookup(room)
	if !ok {
		return fmt.Errorf("ready %q in %q: %w", name, room, ErrRoomNotFound)
	}

	launch, err := r.setReady(name)
	if err != nil {
		r.logger.Error("ready from unknown player", "player", name)
		return err
	}
	if !launch {
		return nil
	}

	c.transport.BroadcastToRoom(room, GameLaunchingEvent{Room: room})
	return c.LaunchGame(room)
}

// PlayerInputChange merges a player's raw key state into the room.
func (c *Coordinator) PlayerInputChange(name, room string, keys core.Keys) error {
	r, ok := c.lookup(room)
	if !ok {
		c.logger.Warn("input: room not found", "room", room, "player", name)
		return fmt.Errorf("input %q in %q: %w", name, room, ErrRoomNotFound)
	}
	if err := r.updateInput(name, keys); err != nil {
		r.logger.Error("input from unknown player", "player", name)
		return err
	}
	return nil
}

// ForceStopGame stops and removes the game of a room. Missing rooms are
// tolerated.
func (c *Coordinator) ForceStopGame(room string) {
	c.stopRoom(room, EndReasonForced)
}

func (c *Coordinator) stopRoom(room string, reason EndReason) {
	c.mu.Lock()
	r, ok := c.rooms[room]
	if ok {
		delete(c.rooms, room)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("stop: room not found", "room", room)
		return
	}
	r.stop(reason)
}

// Snapshot returns the current state of a room.
func (c *Coordinator) Snapshot(room string) (tetris.Snapshot, error) {
	r, ok := c.lookup(room)
	if !ok {
		return tetris.Snapshot{}, fmt.Errorf("snapshot %q: %w", room, ErrRoomNotFound)
	}
	return r.snapshot(), nil
}

// Running reports whether a room exists and whether its game is running.
func (c *Coordinator) Running(room string) (running, exists bool) {
	r, ok := c.lookup(room)
	if !ok {
		return false, false
	}
	return r.summary().Running, true
}

// Rooms lists every room, sorted by id.
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.RLock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Room < summaries[j].Room
	})
	return summaries
}

// RoomCount returns the number of rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// Shutdown stops every room and waits for pending result saves.
func (c *Coordinator) Shutdown() {
	c.mu.RLock()
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	for _, id := range ids {
		c.stopRoom(id, EndReasonShutdown)
	}
	c.saves.Wait()
}

func (c *Coordinator) saveResult(result MatchResultData) {
	if c.resultSaver == nil {
		return
	}
	// Best effort save, don't block the tick on I/O
	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		if err := c.resultSaver.SaveMatchResult(result); err != nil {
			c.logger.Error("could not save match result", "room", result.Room, "match", result.MatchID, "error", err)
		}
	}()
}

// IsNotFound reports whether err means a room or player does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrPlayerNotFound)
}
