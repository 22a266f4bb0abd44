package collab

import (
	"encoding/json"
	"log/slog"
)

// Room is the set of clients connected to one session and what each of
// them is doing. The hub's mutex guards it.
type Room struct {
	sessionID string
	clients   map[string]*Client         // clientID -> client
	presence  map[string]PresencePayload // clientID -> presence
}

func newRoom(sessionID string) *Room {
	return &Room{
		sessionID: sessionID,
		clients:   make(map[string]*Client),
		presence:  make(map[string]PresencePayload),
	}
}

// join adds a client that has seen the session at revision rev.
func (r *Room) join(c *Client, rev int64) {
	r.clients[c.ClientID] = c
	r.presence[c.ClientID] = PresencePayload{DisplayName: c.DisplayName, Revision: rev}
}

func (r *Room) leave(clientID string) {
	delete(r.clients, clientID)
	delete(r.presence, clientID)
}

// updatePresence takes what the client reports about its cursor, tool and
// selection. Name and revision stay the server's.
func (r *Room) updatePresence(c *Client, p PresencePayload) PresencePayload {
	old := r.presence[c.ClientID]
	p.DisplayName = c.DisplayName
	p.Revision = old.Revision
	r.presence[c.ClientID] = p
	return p
}

// acknowledge records that events from the client brought the session to
// revision rev.
func (r *Room) acknowledge(clientID string, rev int64) (PresencePayload, bool) {
	p, ok := r.presence[clientID]
	if !ok {
		return p, false
	}
	p.Revision = rev
	r.presence[clientID] = p
	return p, true
}

func (r *Room) stateMessage() *Message {
	all := make(map[string]PresencePayload, len(r.presence))
	for id, p := range r.presence {
		all[id] = p
	}
	msg, err := newMessage(TypePresenceState, PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "session", r.sessionID, "error", err)
		return nil
	}
	msg.SessionID = r.sessionID
	return msg
}

func presenceMessage(clientID string, p PresencePayload) *Message {
	payload, err := json.Marshal(p)
	if err != nil {
		slog.Error("marshal presence", "client", clientID, "error", err)
		return nil
	}
	return &Message{Type: TypePresenceUpdate, ClientID: clientID, Payload: payload}
}
