package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/core"
	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

type testArena struct {
	server      *httptest.Server
	coordinator *multiplayer.Coordinator
	lobbies     *multiplayer.LobbyManager
	hub         *multiplayer.Hub
}

func newTestArena(t *testing.T) *testArena {
	t.Helper()

	cfg := config.Default()
	cfg.Game.InputTick = 5 * time.Millisecond
	cfg.Game.Gravity.NormalInterval = 20 * time.Millisecond

	logger := log.New(io.Discard)
	hub := multiplayer.NewHub()
	coord := multiplayer.NewCoordinator(cfg.Game, hub, logger)
	lobbies := multiplayer.NewLobbyManager(coord, hub, time.Minute, logger)
	srv := NewServer(cfg.Server, coord, lobbies, hub, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		coord.Shutdown()
		lobbies.Stop()
	})

	return &testArena{server: ts, coordinator: coord, lobbies: lobbies, hub: hub}
}

func (a *testArena) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type jsonEnvelope struct {
	V       int             `json:"v"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil reads JSON frames until one carries the named event.
func readUntil(t *testing.T, conn *websocket.Conn, event string) jsonEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		var env jsonEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		if env.Event == event {
			return env
		}
	}
}

func writeJSON(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON(%+v) error: %v", msg, err)
	}
}

func TestServerRejectsBadQuery(t *testing.T) {
	a := newTestArena(t)

	tests := []string{
		"/ws?room=r1",
		"/ws?player=A",
		"/ws?room=r1&player=A&codec=xml",
	}
	for _, path := range tests {
		resp, err := http.Get(a.server.URL + path)
		if err != nil {
			t.Fatalf("GET %s error: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, expected %d", path, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestServerSoloGameFlow(t *testing.T) {
	a := newTestArena(t)
	conn := a.dial(t, "room=r1&player=A")

	writeJSON(t, conn, ClientMessage{Type: MsgJoin})
	env := readUntil(t, conn, multiplayer.EventLobby)
	var lobby multiplayer.LobbyEvent
	if err := json.Unmarshal(env.Payload, &lobby); err != nil {
		t.Fatalf("lobby payload: %v", err)
	}
	if lobby.Leader != "A" || len(lobby.Players) != 1 {
		t.Errorf("lobby = %+v, expected A as sole leader", lobby)
	}

	writeJSON(t, conn, ClientMessage{Type: MsgStart, Mode: "normal"})
	readUntil(t, conn, multiplayer.EventGameCreated)

	writeJSON(t, conn, ClientMessage{Type: MsgReady})
	readUntil(t, conn, multiplayer.EventGameLaunching)
	readUntil(t, conn, multiplayer.EventGameStarted)
	env = readUntil(t, conn, multiplayer.EventGameState)

	var state multiplayer.GameStateEvent
	if err := json.Unmarshal(env.Payload, &state); err != nil {
		t.Fatalf("state payload: %v", err)
	}
	if !state.IsRunning || !state.IsSolo {
		t.Errorf("state running=%v solo=%v, expected a running solo game", state.IsRunning, state.IsSolo)
	}
	if len(state.Players) != 1 || state.Players[0].CurrentPiece == nil {
		t.Fatalf("state players = %+v, expected A with a piece", state.Players)
	}

	writeJSON(t, conn, ClientMessage{Type: MsgInput, Input: core.Keys{Space: true}})
	readUntil(t, conn, multiplayer.EventGameState)

	running, exists := a.coordinator.Running("r1")
	if !exists {
		t.Fatal("room r1 should exist")
	}
	if !running {
		t.Error("room r1 should be running")
	}
}

func TestServerErrorGoesToSenderOnly(t *testing.T) {
	a := newTestArena(t)
	first := a.dial(t, "room=r1&player=A")
	second := a.dial(t, "room=r1&player=B")

	writeJSON(t, first, ClientMessage{Type: MsgJoin})
	readUntil(t, first, multiplayer.EventLobby)
	writeJSON(t, second, ClientMessage{Type: MsgJoin})
	readUntil(t, second, multiplayer.EventLobby)

	// B is not the leader.
	writeJSON(t, second, ClientMessage{Type: MsgStart})
	env := readUntil(t, second, multiplayer.EventError)
	var e multiplayer.ErrorEvent
	if err := json.Unmarshal(env.Payload, &e); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if !strings.Contains(e.Message, "leader") {
		t.Errorf("error message = %q, expected it to mention the leader", e.Message)
	}

	writeJSON(t, second, ClientMessage{Type: "dance"})
	readUntil(t, second, multiplayer.EventError)
}

func TestServerDisconnectLeavesLobby(t *testing.T) {
	a := newTestArena(t)
	first := a.dial(t, "room=r1&player=A")
	second := a.dial(t, "room=r1&player=B")

	writeJSON(t, first, ClientMessage{Type: MsgJoin})
	readUntil(t, first, multiplayer.EventLobby)
	writeJSON(t, second, ClientMessage{Type: MsgJoin})
	readUntil(t, first, multiplayer.EventLobby)

	second.Close()

	env := readUntil(t, first, multiplayer.EventLobby)
	var lobby multiplayer.LobbyEvent
	if err := json.Unmarshal(env.Payload, &lobby); err != nil {
		t.Fatalf("lobby payload: %v", err)
	}
	if len(lobby.Players) != 1 || lobby.Players[0] != "A" {
		t.Errorf("lobby players = %v, expected [A]", lobby.Players)
	}
}

func TestServerMsgpackFrames(t *testing.T) {
	a := newTestArena(t)
	conn := a.dial(t, "room=r2&player=A&codec=msgpack")

	packed, err := msgpack.Marshal(ClientMessage{Type: MsgJoin})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, packed); err != nil {
		t.Fatalf("WriteMessage() error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("frame type = %d, expected binary", msgType)
	}

	var env struct {
		V       int                    `msgpack:"v"`
		Event   string                 `msgpack:"event"`
		Payload multiplayer.LobbyEvent `msgpack:"payload"`
	}
	if err := msgpack.Unmarshal(data, &env); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if env.Event != multiplayer.EventLobby || env.Payload.Leader != "A" {
		t.Errorf("envelope = %+v, expected lobby led by A", env)
	}
}

func TestServerRoomsEndpoint(t *testing.T) {
	a := newTestArena(t)
	if err := a.coordinator.CreateGame([]string{"A", "B"}, "r9", "dynamic"); err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}

	resp, err := http.Get(a.server.URL + "/rooms")
	if err != nil {
		t.Fatalf("GET /rooms error: %v", err)
	}
	defer resp.Body.Close()

	var rooms []multiplayer.RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode /rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Room != "r9" || rooms[0].Mode != "dynamic" {
		t.Errorf("/rooms = %+v, expected r9 in dynamic mode", rooms)
	}

	resp, err = http.Get(a.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, expected 200", resp.StatusCode)
	}
}
