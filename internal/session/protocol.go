package session

import (
	"encoding/json"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Pointer input
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypePointerLeave = "pointer.leave"

	// Field edits
	TypeSceneBackground = "scene.background"
	TypeObjectText      = "object.text"
	TypeObjectAdd       = "object.add"
	TypeObjectRemove    = "object.remove"
	TypeObjectStyle     = "object.style"
	TypeObjectSelect    = "object.select"

	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Engine output
	TypeDocSync = "doc.sync"
	TypeFrame   = "frame"
	TypeMode    = "mode"
	TypeStatus  = "status"
	TypeAck     = "ack"
)

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BackgroundPayload struct {
	URL string `json:"url"`
}

type IndexPayload struct {
	Index int `json:"index"`
}

type TextPayload struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type StylePayload struct {
	Index int          `json:"index"`
	Style engine.Style `json:"style"`
}

type WelcomePayload struct {
	SessionID string                 `json:"sessionId"`
	ClientID  string                 `json:"clientId"`
	Document  *document.MemeDocument `json:"document"`
	Selection int                    `json:"selection"`
	Mode      map[string]interface{} `json:"mode"`
}

// FramePayload carries one drawn frame as a replayable command buffer.
type FramePayload struct {
	Generation uint64                 `json:"generation"`
	Selection  int                    `json:"selection"`
	Mode       map[string]interface{} `json:"mode"`
	Commands   []engine.DrawCommand   `json:"commands"`
}

type StatusPayload struct {
	Kind       engine.StatusKind `json:"kind"`
	URL        string            `json:"url,omitempty"`
	Generation uint64            `json:"generation"`
	Error      string            `json:"error,omitempty"`
}

// AckPayload answers an edit. Index is set for object.add.
type AckPayload struct {
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Index *int   `json:"index,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(msgType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}
