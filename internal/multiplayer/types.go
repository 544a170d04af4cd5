// Package multiplayer runs rooms: it owns the room registry, drives each room
// on its input and gravity timers and pushes events to whatever transport is
// attached.
package multiplayer

import (
	"errors"

	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
)

// SessionID uniquely identifies one connection (a WebSocket client or an SSH
// spectator).
type SessionID string

// MatchID uniquely identifies one launched game.
type MatchID string

var (
	// ErrRoomNotFound is returned when no game exists for a room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPlayerNotFound is returned when a name is not a member of a room.
	ErrPlayerNotFound = tetris.ErrPlayerNotFound

	// ErrAlreadyRunning is returned when launching a running room.
	ErrAlreadyRunning = errors.New("game already running")

	// ErrSchedulerExists is returned when a room already has a scheduler.
	ErrSchedulerExists = errors.New("room already has a scheduler")
)

// EndReason describes why a match ended.
type EndReason int

const (
	EndReasonToppedOut EndReason = iota
	EndReasonForced
	EndReasonReplaced
	EndReasonShutdown
)

// String returns the reason as stored and sent on the wire.
func (r EndReason) String() string {
	switch r {
	case EndReasonToppedOut:
		return "topped_out"
	case EndReasonForced:
		return "forced"
	case EndReasonReplaced:
		return "replaced"
	case EndReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      string
	Room         string
	Mode         string
	Loser        string // Player who topped out, empty for forced stops
	EndReason    string
	DurationSecs int
	Players      []PlayerResult
}

// PlayerResult is one player's final standing.
type PlayerResult struct {
	Name  string
	Score int
	Lines int
}

// RoomSummary describes a room for listings.
type RoomSummary struct {
	Room    string   `json:"room"`
	Mode    string   `json:"mode"`
	Running bool     `json:"running"`
	MatchID string   `json:"matchId,omitempty"`
	Players []string `json:"players"`
}
