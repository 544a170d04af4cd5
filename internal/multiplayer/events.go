package multiplayer

import "github.com/vovakirdan/tetra-arena/internal/games/tetris"

// Event names as sent on the wire.
const (
	EventGameCreated   = "game_created"
	EventGameLaunching = "game_launching"
	EventGameStarted   = "game_started"
	EventGameState     = "game_state"
	EventGameOver      = "game_over"
	EventGameStopped   = "game_stopped"
	EventLobby         = "lobby"
	EventError         = "error"
)

// Event is anything the coordinator or lobby sends to sessions.
type Event interface {
	EventName() string
}

// GameCreatedEvent is sent when a room has been set up and waits for ready.
type GameCreatedEvent struct {
	Room    string   `json:"room" msgpack:"room"`
	Mode    string   `json:"mode" msgpack:"mode"`
	Players []string `json:"players" msgpack:"players"`
}

func (GameCreatedEvent) EventName() string { return EventGameCreated }

// GameLaunchingEvent is sent once every player is ready.
type GameLaunchingEvent struct {
	Room string `json:"room" msgpack:"room"`
}

func (GameLaunchingEvent) EventName() string { return EventGameLaunching }

// GameStartedEvent is sent when the scheduler starts.
type GameStartedEvent struct {
	Room    string  `json:"room" msgpack:"room"`
	MatchID MatchID `json:"matchId" msgpack:"matchId"`
	Mode    string  `json:"mode" msgpack:"mode"`
}

func (GameStartedEvent) EventName() string { return EventGameStarted }

// GameStateEvent carries the full room snapshot after a tick.
type GameStateEvent struct {
	tetris.Snapshot `msgpack:",inline"`
}

func (GameStateEvent) EventName() string { return EventGameState }

// GameOverEvent names the player whose overflow ended the match.
type GameOverEvent struct {
	Room    string  `json:"room" msgpack:"room"`
	MatchID MatchID `json:"matchId" msgpack:"matchId"`
	Player  string  `json:"player" msgpack:"player"`
}

func (GameOverEvent) EventName() string { return EventGameOver }

// GameStoppedEvent is sent when a game is torn down without a winner.
type GameStoppedEvent struct {
	Room   string `json:"room" msgpack:"room"`
	Reason string `json:"reason" msgpack:"reason"`
}

func (GameStoppedEvent) EventName() string { return EventGameStopped }

// LobbyEvent describes the current lobby of a room.
type LobbyEvent struct {
	Room    string   `json:"room" msgpack:"room"`
	Leader  string   `json:"leader" msgpack:"leader"`
	Mode    string   `json:"mode" msgpack:"mode"`
	Players []string `json:"players" msgpack:"players"`
}

func (LobbyEvent) EventName() string { return EventLobby }

// ErrorEvent reports a failed request to a single session.
type ErrorEvent struct {
	Message string `json:"message" msgpack:"message"`
}

func (ErrorEvent) EventName() string { return EventError }
