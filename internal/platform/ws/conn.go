package ws

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn is one WebSocket client. It implements multiplayer.SessionHandle so
// the hub can deliver room events to it.
type Conn struct {
	id     multiplayer.SessionID
	room   string
	player string
	ws     *websocket.Conn
	codec  Codec
	logger *log.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// joined is only touched by the read pump.
	joined bool
}

func newConn(id multiplayer.SessionID, room, player string, ws *websocket.Conn, codec Codec, buffer int, logger *log.Logger) *Conn {
	if buffer < 1 {
		buffer = 64
	}
	return &Conn{
		id:     id,
		room:   room,
		player: player,
		ws:     ws,
		codec:  codec,
		logger: logger,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (c *Conn) ID() multiplayer.SessionID {
	return c.id
}

// Send encodes an event and queues it. A full queue drops the frame so a
// slow client never blocks a room tick.
func (c *Conn) Send(evt multiplayer.Event) {
	select {
	case <-c.done:
		return
	default:
	}

	data, err := c.codec.Encode(evt)
	if err != nil {
		c.logger.Error("could not encode event", "event", evt.EventName(), "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Debug("send queue full, frame dropped", "event", evt.EventName())
	}
}

// Done returns a channel closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close ends the connection. Safe to call multiple times.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// writePump owns all writes to the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by the write
			if err := c.ws.WriteMessage(c.codec.MessageType(), msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by the write
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump decodes client messages and hands them to handle until the
// socket fails.
func (c *Conn) readPump(readLimit int64, handle func(*Conn, ClientMessage)) {
	defer c.Close()

	c.ws.SetReadLimit(readLimit)
	c.ws.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck // surfaced by the read
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		msg, err := c.codec.Decode(payload)
		if err != nil {
			c.Send(multiplayer.ErrorEvent{Message: err.Error()})
			continue
		}
		handle(c, msg)
	}
}
