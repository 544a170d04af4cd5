package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

// Server routes WebSocket clients into rooms.
type Server struct {
	config      config.ServerConfig
	coordinator *multiplayer.Coordinator
	lobbies     *multiplayer.LobbyManager
	hub         *multiplayer.Hub
	logger      *log.Logger
	upgrader    websocket.Upgrader
}

// NewServer creates a transport server on top of an existing hub, lobby
// manager and coordinator.
func NewServer(cfg config.ServerConfig, coordinator *multiplayer.Coordinator, lobbies *multiplayer.LobbyManager, hub *multiplayer.Hub, logger *log.Logger) *Server {
	return &Server{
		config:      cfg,
		coordinator: coordinator,
		lobbies:     lobbies,
		hub:         hub,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /rooms", s.handleRooms)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

// handleWS upgrades /ws?room=<id>&player=<name>[&codec=msgpack].
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	room := q.Get("room")
	player := q.Get("player")
	if room == "" || player == "" {
		http.Error(w, "missing room or player query", http.StatusBadRequest)
		return
	}
	codec, err := CodecByName(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	id := multiplayer.SessionID(uuid.NewString())
	logger := s.logger.With("room", room, "player", player)
	c := newConn(id, room, player, ws, codec, s.config.SendBuffer, logger)
	s.hub.Join(room, c)
	logger.Info("connected", "session", id, "codec", codec.Name())

	if l, ok := s.lobbies.Get(room); ok {
		c.Send(lobbyEvent(l))
	}
	if snap, err := s.coordinator.Snapshot(room); err == nil {
		c.Send(multiplayer.GameStateEvent{Snapshot: snap})
	}

	go c.writePump()
	c.readPump(s.config.ReadLimit, s.dispatch)

	s.hub.Leave(id)
	if c.joined {
		s.lobbies.Leave(room, player)
	}
	logger.Info("disconnected", "session", id)
}

func lobbyEvent(l multiplayer.Lobby) multiplayer.LobbyEvent {
	return multiplayer.LobbyEvent{Room: l.Room, Leader: l.Leader(), Mode: l.Mode, Players: l.Players}
}

// dispatch routes one client message. Failures go back to the sender only.
func (s *Server) dispatch(c *Conn, msg ClientMessage) {
	var err error
	switch msg.Type {
	case MsgJoin:
		if _, err = s.lobbies.Join(c.room, c.player); err == nil {
			c.joined = true
		}
	case MsgLeave:
		if c.joined {
			s.lobbies.Leave(c.room, c.player)
			c.joined = false
		}
	case MsgStart:
		err = s.lobbies.Start(c.room, c.player, msg.Mode)
	case MsgReady:
		err = s.coordinator.PlayerReady(c.player, c.room)
	case MsgInput:
		err = s.coordinator.PlayerInputChange(c.player, c.room, msg.Input)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		c.logger.Debug("request failed", "type", msg.Type, "error", err)
		s.hub.EmitTo(c.id, multiplayer.ErrorEvent{Message: err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // client went away
		"status": "ok",
		"rooms":  s.coordinator.RoomCount(),
	})
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.coordinator.Rooms()) //nolint:errcheck // client went away
}
