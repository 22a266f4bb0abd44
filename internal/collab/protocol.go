package collab

import (
	"encoding/json"

	"github.com/inamate/vecedit/internal/input"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// PresencePayload is what a collaborator is doing. Revision is the last
// session revision the collaborator's own events produced, or the one it
// joined at.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	Tool        string     `json:"tool,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Revision    int64      `json:"revision"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Revision int64  `json:"revision"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document changes, pushed by the session after every model change
	TypeDocChange = "doc.change"

	// Input events submitted by a client
	TypeEventSubmit = "event.submit"
	TypeEventAck    = "event.ack"
	TypeEventNack   = "event.nack"
)

// --- Event submission ---

// EventSubmitPayload carries input events for the session's editor. The
// message Seq is echoed in the ack or nack.
type EventSubmitPayload struct {
	Events []input.Event `json:"events"`
}

type EventAckPayload struct {
	Revision int64 `json:"revision"`
}

type EventNackPayload struct {
	Reason string `json:"reason"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
