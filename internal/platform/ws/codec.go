// Package ws is the WebSocket transport: it upgrades HTTP connections,
// routes client messages into the lobby and coordinator, and writes room
// events back as JSON text or msgpack binary frames.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tetra-arena/internal/core"
	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

// ProtocolVersion is sent in every outbound envelope.
const ProtocolVersion = 1

// Envelope wraps every outbound event.
type Envelope struct {
	V       int    `json:"v" msgpack:"v"`
	Event   string `json:"event" msgpack:"event"`
	Payload any    `json:"payload" msgpack:"payload"`
}

// Client message types.
const (
	MsgJoin  = "join"
	MsgLeave = "leave"
	MsgReady = "ready"
	MsgInput = "input"
	MsgStart = "start"
)

// ClientMessage is a request sent by a client.
type ClientMessage struct {
	Type  string    `json:"type" msgpack:"type"`
	Mode  string    `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Input core.Keys `json:"input" msgpack:"input"`
}

// Codec turns events into frames and frames into client messages.
type Codec interface {
	Name() string

	// MessageType is the WebSocket frame type the codec writes.
	MessageType() int

	Encode(evt multiplayer.Event) ([]byte, error)
	Decode(data []byte) (ClientMessage, error)
}

type validator interface {
	Validate() error
}

func envelope(evt multiplayer.Event) (Envelope, error) {
	if v, ok := evt.(validator); ok {
		if err := v.Validate(); err != nil {
			return Envelope{}, fmt.Errorf("encode %s: %w", evt.EventName(), err)
		}
	}
	return Envelope{V: ProtocolVersion, Event: evt.EventName(), Payload: evt}, nil
}

// JSONCodec writes text frames.
type JSONCodec struct{}

func (JSONCodec) Name() string     { return "json" }
func (JSONCodec) MessageType() int { return websocket.TextMessage }

func (JSONCodec) Encode(evt multiplayer.Event) ([]byte, error) {
	env, err := envelope(evt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func (JSONCodec) Decode(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode json: %w", err)
	}
	return msg, nil
}

// MsgpackCodec writes binary frames.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string     { return "msgpack" }
func (MsgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(evt multiplayer.Event) ([]byte, error) {
	env, err := envelope(evt)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(env)
}

func (MsgpackCodec) Decode(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode msgpack: %w", err)
	}
	return msg, nil
}

// CodecByName resolves the codec query parameter. Empty means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
