package multiplayer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNameTaken is returned when joining a lobby under a name already in it.
	ErrNameTaken = errors.New("name already taken in room")

	// ErrNotLeader is returned when someone other than the leader starts a game.
	ErrNotLeader = errors.New("only the room leader can start the game")

	// ErrLobbyNotFound is returned for operations on an unknown lobby.
	ErrLobbyNotFound = errors.New("lobby not found")

	// ErrEmptyName is returned when joining without a player name.
	ErrEmptyName = errors.New("player name is empty")
)

// Lobby is the waiting room of one room id. The first player to join leads.
type Lobby struct {
	Room       string
	Players    []string
	Mode       string
	CreatedAt  time.Time
	LastActive time.Time
}

// Leader returns the player allowed to start games.
func (l Lobby) Leader() string {
	if len(l.Players) == 0 {
		return ""
	}
	return l.Players[0]
}

func (l Lobby) event() LobbyEvent {
	return LobbyEvent{
		Room:    l.Room,
		Leader:  l.Leader(),
		Mode:    l.Mode,
		Players: slices.Clone(l.Players),
	}
}

// LobbyManager keeps the lobbies and turns a leader's start into a game.
type LobbyManager struct {
	coordinator *Coordinator
	transport   Transport
	timeout     time.Duration
	logger      *log.Logger
	now         func() time.Time

	mu      sync.Mutex
	lobbies map[string]*Lobby

	done     chan struct{}
	doneOnce sync.Once
}

// NewLobbyManager creates a lobby manager. Lobbies idle for longer than
// timeout with no running game are removed by the cleanup loop.
func NewLobbyManager(coordinator *Coordinator, transport Transport, timeout time.Duration, logger *log.Logger) *LobbyManager {
	return &LobbyManager{
		coordinator: coordinator,
		transport:   transport,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
		lobbies:     make(map[string]*Lobby),
		done:        make(chan struct{}),
	}
}

// Join adds a player to the lobby of room, creating it if needed.
func (m *LobbyManager) Join(room, name string) (Lobby, error) {
	if name == "" {
		return Lobby{}, ErrEmptyName
	}

	m.mu.Lock()
	l, ok := m.lobbies[room]
	if !ok {
		now := m.now()
		l = &Lobby{Room: room, Mode: DefaultMode, CreatedAt: now}
		m.lobbies[room] = l
	}
	if slices.Contains(l.Players, name) {
		m.mu.Unlock()
		return Lobby{}, fmt.Errorf("join %q: %w: %q", room, ErrNameTaken, name)
	}
	l.Players = append(l.Players, name)
	l.LastActive = m.now()
	snapshot := m.copyLocked(l)
	m.mu.Unlock()

	m.logger.Info("player joined", "room", room, "player", name, "leader", snapshot.Leader())
	m.transport.BroadcastToRoom(room, snapshot.event())
	return snapshot, nil
}

// Leave removes a player. The next player in join order becomes leader.
// When the last player leaves the lobby is deleted and any game in the room
// is stopped.
func (m *LobbyManager) Leave(room, name string) {
	m.mu.Lock()
	l, ok := m.lobbies[room]
	if !ok {
		m.mu.Unlock()
		return
	}
	idx := slices.Index(l.Players, name)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	l.Players = slices.Delete(l.Players, idx, idx+1)
	l.LastActive = m.now()
	empty := len(l.Players) == 0
	if empty {
		delete(m.lobbies, room)
	}
	snapshot := m.copyLocked(l)
	m.mu.Unlock()

	m.logger.Info("player left", "room", room, "player", name)
	if empty {
		if _, exists := m.coordinator.Running(room); exists {
			m.coordinator.ForceStopGame(room)
		}
		return
	}
	m.transport.BroadcastToRoom(room, snapshot.event())
}

// Start creates a game for the lobby's current players. Only the leader may
// start; an empty mode keeps the lobby's current mode.
func (m *LobbyManager) Start(room, name, mode string) error {
	m.mu.Lock()
	l, ok := m.lobbies[room]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("start %q: %w", room, ErrLobbyNotFound)
	}
	if l.Leader() != name {
		m.mu.Unlock()
		return fmt.Errorf("start %q by %q: %w", room, name, ErrNotLeader)
	}
	if mode != "" {
		l.Mode = mode
	}
	l.LastActive = m.now()
	snapshot := m.copyLocked(l)
	m.mu.Unlock()

	return m.coordinator.CreateGame(snapshot.Players, room, snapshot.Mode)
}

// Get returns a copy of the lobby of room.
func (m *LobbyManager) Get(room string) (Lobby, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[room]
	if !ok {
		return Lobby{}, false
	}
	return m.copyLocked(l), true
}

// Count returns the number of lobbies.
func (m *LobbyManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lobbies)
}

func (m *LobbyManager) copyLocked(l *Lobby) Lobby {
	out := *l
	out.Players = slices.Clone(l.Players)
	return out
}

// StartCleanup runs the expiry loop until Stop is called.
func (m *LobbyManager) StartCleanup(period time.Duration) {
	go m.cleanupLoop(period)
}

// Stop ends the cleanup loop. Safe to call multiple times.
func (m *LobbyManager) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

func (m *LobbyManager) cleanupLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

// cleanupExpired removes lobbies idle past the timeout whose room is not
// playing, and returns their room ids.
func (m *LobbyManager) cleanupExpired() []string {
	now := m.now()

	m.mu.Lock()
	var stale []string
	for room, l := range m.lobbies {
		if now.Sub(l.LastActive) <= m.timeout {
			continue
		}
		if running, _ := m.coordinator.Running(room); running {
			continue
		}
		stale = append(stale, room)
		delete(m.lobbies, room)
	}
	m.mu.Unlock()

	for _, room := range stale {
		m.logger.Info("lobby expired", "room", room)
		m.transport.BroadcastToRoom(room, ErrorEvent{Message: "lobby expired"})
		if _, exists := m.coordinator.Running(room); exists {
			m.coordinator.ForceStopGame(room)
		}
	}
	return stale
}
