package multiplayer

import (
	"sort"
	"sync"
)

// Transport delivers events to connected sessions. Both methods must not
// block: ticks call them while the simulation is running.
type Transport interface {
	// BroadcastToRoom sends an event to every session attached to a room.
	BroadcastToRoom(room string, evt Event)

	// EmitTo sends an event to a single session.
	EmitTo(id SessionID, evt Event)
}

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator and rooms to send events without depending on
// WebSocket or Bubble Tea.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send sends an event to the session asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt Event)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle implementation using Go channels.
// Used by the spectator UI to receive room events.
type ChannelSession struct {
	id       SessionID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a new channel-based session handle.
// eventBufferSize controls how many events can be buffered before dropping.
func NewChannelSession(id SessionID, eventBufferSize int) *ChannelSession {
	if eventBufferSize < 1 {
		eventBufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send sends an event to the session.
// If the buffer is full, the oldest event is dropped to prevent blocking.
func (s *ChannelSession) Send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (s *ChannelSession) Events() <-chan Event {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Hub tracks which sessions watch which room and implements Transport on
// top of them. Thread-safe for concurrent access.
type Hub struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
	rooms    map[string]map[SessionID]SessionHandle
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[SessionID]SessionHandle),
		rooms:    make(map[string]map[SessionID]SessionHandle),
	}
}

// Join attaches a session to a room. A session watches one room at a time;
// joining another room detaches it from the previous one.
func (h *Hub) Join(room string, s SessionHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach(s.ID())
	h.sessions[s.ID()] = s
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[SessionID]SessionHandle)
		h.rooms[room] = members
	}
	members[s.ID()] = s
}

// Leave detaches a session from every room and forgets it.
func (h *Hub) Leave(id SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach(id)
	delete(h.sessions, id)
}

// detach must be called with the lock held.
func (h *Hub) detach(id SessionID) {
	for room, members := range h.rooms {
		if _, ok := members[id]; !ok {
			continue
		}
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Get retrieves a session by ID.
func (h *Hub) Get(id SessionID) (SessionHandle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Count returns the number of sessions attached to a room.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Rooms returns the rooms that have at least one session, sorted.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.rooms))
	for room := range h.rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// BroadcastToRoom sends an event to every session of a room.
func (h *Hub) BroadcastToRoom(room string, evt Event) {
	h.mu.RLock()
	targets := make([]SessionHandle, 0, len(h.rooms[room]))
	for _, s := range h.rooms[room] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.Send(evt)
	}
}

// EmitTo sends an event to one session. Unknown sessions are ignored.
func (h *Hub) EmitTo(id SessionID, evt Event) {
	if s, ok := h.Get(id); ok {
		s.Send(evt)
	}
}
