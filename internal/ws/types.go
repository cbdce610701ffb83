package ws

import (
	"encoding/json"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// Client to server.
	MessageTypeMove MessageType = "move"
	MessageTypeBack MessageType = "back"
	MessageTypeNext MessageType = "next"

	// Server to client.
	MessageTypeGameState     MessageType = "gameState"
	MessageTypeMoveCommitted MessageType = "moveCommitted"
	MessageTypeError         MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload is a move request in square names, e.g. {"from":"e7","to":"e8","promotion":"Q"}.
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveCommitted tells clients which effect to play for a move.
type MoveCommitted struct {
	Index     int            `json:"index"`
	Kind      model.MoveKind `json:"kind"`
	Capture   bool           `json:"capture"`
	Check     bool           `json:"check"`
	Checkmate bool           `json:"checkmate"`
	Ply       model.Ply      `json:"ply"`
	Notation  string         `json:"notation"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps payload in a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

// CommittedFrom builds the moveCommitted payload for a ply stored at index.
func CommittedFrom(index int, ply model.Ply) MoveCommitted {
	return MoveCommitted{
		Index:     index,
		Kind:      ply.Kind,
		Capture:   ply.IsCapture(),
		Check:     ply.Check,
		Checkmate: ply.Checkmate,
		Ply:       ply,
		Notation:  ply.String(),
	}
}

// ErrorMessage builds an error message. It cannot fail.
func ErrorMessage(text string) Message {
	data, _ := json.Marshal(ErrorPayload{Error: text})
	return Message{Type: MessageTypeError, Payload: data}
}
