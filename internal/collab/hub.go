// Package collab streams session changes and collaborator presence over
// websockets and feeds input events from clients back into the session.
package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/vecedit/internal/input"
)

// DispatchFunc applies input events to a session's editor and returns the
// resulting model revision.
type DispatchFunc func(ctx context.Context, sessionID string, events []input.Event) (int64, error)

// RevisionFunc reports a session's current model revision.
type RevisionFunc func(ctx context.Context, sessionID string) (int64, error)

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}

	dispatch DispatchFunc
	revision RevisionFunc
}

func NewHub(dispatch DispatchFunc, revision RevisionFunc) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		dispatch:   dispatch,
		revision:   revision,
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every client and waits for Run to return.
func (h *Hub) Stop() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	<-h.done
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		room = newRoom(client.SessionID)
		h.rooms[client.SessionID] = room
	}
	room.join(client, client.joinRevision)
	stateMsg := room.stateMessage()
	h.mu.Unlock()

	if msg, err := newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, Revision: client.joinRevision}); err == nil {
		client.Send(msg)
	}

	// Send current presence state to new client
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinMsg, _ := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	joinMsg.ClientID = client.ClientID
	h.broadcastToRoom(client.SessionID, joinMsg, client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "name", client.DisplayName, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	room.leave(client.ClientID)
	client.closeSend()

	if len(room.clients) == 0 {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()

	// Broadcast leave to remaining clients
	leaveMsg, _ := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID})
	leaveMsg.ClientID = client.ClientID
	h.broadcastToRoom(client.SessionID, leaveMsg, "")

	slog.Info("client left", "client", client.ClientID, "session", client.SessionID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, id)
	}
}

// CloseSession disconnects every client of a session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	var clients []*Client
	if ok {
		for _, c := range room.clients {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}

// Clients returns the number of clients connected to a session.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[sessionID]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *Hub) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeEventSubmit:
		h.handleEventSubmit(ctx, sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		if reply, err := newMessage(TypeError, ErrorPayload{Message: "unknown message type " + msg.Type}); err == nil {
			sender.Send(reply)
		}
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[sender.SessionID]
	if !ok || room.clients[sender.ClientID] != sender {
		h.mu.Unlock()
		return
	}
	presence = room.updatePresence(sender, presence)
	h.mu.Unlock()

	// Broadcast to other clients in room
	if out := presenceMessage(sender.ClientID, presence); out != nil {
		h.broadcastToRoom(sender.SessionID, out, sender.ClientID)
	}
}

// acknowledged stores the revision a client's events produced and tells
// the other collaborators.
func (h *Hub) acknowledged(sender *Client, rev int64) {
	h.mu.Lock()
	room, ok := h.rooms[sender.SessionID]
	var presence PresencePayload
	if ok {
		presence, ok = room.acknowledge(sender.ClientID, rev)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	if out := presenceMessage(sender.ClientID, presence); out != nil {
		h.broadcastToRoom(sender.SessionID, out, sender.ClientID)
	}
}

// Broadcast sends a message of type typ to every client of a session.
func (h *Hub) Broadcast(sessionID, typ string, payload any) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		slog.Error("marshal broadcast", "type", typ, "error", err)
		return
	}
	msg.SessionID = sessionID
	h.broadcastToRoom(sessionID, msg, "")
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
