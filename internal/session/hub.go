package session

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Hub is the central brain of the server. It owns the room registry and
// processes every inbound event on a single goroutine, so handlers never
// interleave on shared state.
type Hub struct {
	// registry holds all live rooms and the connection index.
	registry *Registry

	// Register is a channel for registering new clients.
	Register chan *Client

	// Unregister is a channel for unregistering clients.
	Unregister chan *Client

	// Inbound is a channel for messages read from client connections.
	// The hub dispatches them to the matching handler.
	Inbound chan *Message
}

// NewHub creates a new Hub instance with its own isolated registry.
func NewHub() *Hub {
	return &Hub{
		registry:   NewRegistry(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Message),
	}
}

// Registry exposes the hub's state for the HTTP layer and tests.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run starts the hub's main processing loop.
// This is the single goroutine that safely manages all session state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// The client is not in a room yet. They need to send a
			// "create_room" or "join_room" message first.
			logrus.WithField("conn_id", client.ID).Info("Client registered")

		case client := <-h.Unregister:
			logrus.WithField("conn_id", client.ID).Info("Client unregistered")
			h.handleDisconnect(client)

			// Close the client's send channel to stop its WritePump.
			close(client.Send)

		case message := <-h.Inbound:
			h.dispatch(message)
		}
	}
}

// dispatch routes one inbound message to its handler. Unknown types are
// logged and dropped; nothing a client sends can take the process down.
func (h *Hub) dispatch(msg *Message) {
	switch msg.Type {
	case EventCreateRoom:
		h.handleCreateRoom(msg.client, msg.Payload)
	case EventJoinRoom:
		h.handleJoinRoom(msg.client, msg.Payload)
	case EventDrawLine:
		h.handleDrawLine(msg.client, msg.Payload)
	case EventClearBoard:
		h.handleClearBoard(msg.client, msg.Payload)
	default:
		logrus.WithFields(logrus.Fields{
			"conn_id": msg.client.ID,
			"type":    msg.Type,
		}).Warn("Unknown message type")
	}
}

// handleCreateRoom creates a fresh room with the sender as its only member
// and confirms with the room code and initial roster.
func (h *Hub) handleCreateRoom(c *Client, raw json.RawMessage) {
	var p createRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		logrus.WithField("conn_id", c.ID).WithError(err).Warn("Malformed create_room payload")
		return
	}

	// A connection can only occupy one room; creating a new one detaches
	// it from any room it was still in.
	h.detach(c)

	code, usernames := h.registry.CreateRoom(c, p.Username)

	logrus.WithFields(logrus.Fields{
		"room_id":  code,
		"conn_id":  c.ID,
		"username": p.Username,
	}).Info("Room created")

	h.send(c, EventRoomCreated, roomCreatedPayload{RoomID: code, Usernames: usernames})
}

// handleJoinRoom validates the join, replays the room's history to the new
// member and announces the arrival to the peer already in the room.
func (h *Hub) handleJoinRoom(c *Client, raw json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		logrus.WithField("conn_id", c.ID).WithError(err).Warn("Malformed join_room payload")
		return
	}

	result := h.registry.JoinRoom(c, p.RoomID, p.Username)

	switch result.Status {
	case JoinNotFound:
		logrus.WithFields(logrus.Fields{"room_id": p.RoomID, "conn_id": c.ID}).Info("Join failed: room not found")
		h.send(c, EventError, errorPayload{Message: "Room not found"})

	case JoinFull:
		logrus.WithFields(logrus.Fields{"room_id": p.RoomID, "conn_id": c.ID}).Info("Join failed: room is full")
		h.send(c, EventError, errorPayload{Message: "Room is full (max 2)"})

	case JoinAlreadyMember:
		// Same connection retrying; just confirm, no roster and no replay.
		h.send(c, EventJoinedSuccess, joinedSuccessPayload{RoomID: result.RoomID})

	case JoinOK:
		logrus.WithFields(logrus.Fields{
			"room_id":  result.RoomID,
			"conn_id":  c.ID,
			"username": p.Username,
			"strokes":  len(result.Strokes),
		}).Info("Client joined room")

		// A join that switched the client out of another room leaves a
		// peer behind; tell them their partner is gone.
		for _, peer := range result.Departed {
			h.queue(peer, &Message{Type: EventUserLeft})
		}

		// Confirm to the joiner, then replay the accumulated history so
		// their canvas converges before any live stroke arrives.
		h.send(c, EventJoinedSuccess, joinedSuccessPayload{RoomID: result.RoomID, Usernames: result.Usernames})
		h.send(c, EventLoadLines, result.Strokes)

		// Tell the other peer someone arrived.
		for _, other := range result.Others {
			h.send(other, EventUserJoined, userJoinedPayload{Username: p.Username})
		}
	}
}

// handleDrawLine stores the stroke and relays it to the other peer.
// A missing room id or an unknown room drops the stroke without touching
// the connection.
func (h *Hub) handleDrawLine(c *Client, raw json.RawMessage) {
	var p drawLinePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Room == "" || len(p.Line) == 0 {
		logrus.WithField("conn_id", c.ID).Warn("Dropping draw_line with missing room or line")
		return
	}

	receivers, ok := h.registry.AppendStroke(p.Room, c, p.Line)
	if !ok {
		logrus.WithFields(logrus.Fields{"room_id": p.Room, "conn_id": c.ID}).Warn("Dropping draw_line for unknown room")
		return
	}

	for _, receiver := range receivers {
		h.send(receiver, EventDrawLine, p.Line)
	}
}

// handleClearBoard wipes the room's history and echoes the clear to the
// whole room, sender included, so every canvas resets together.
func (h *Hub) handleClearBoard(c *Client, raw json.RawMessage) {
	var p clearBoardPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Room == "" {
		logrus.WithField("conn_id", c.ID).Warn("Dropping clear_board with missing room")
		return
	}

	receivers, ok := h.registry.ClearStrokes(p.Room)
	if !ok {
		logrus.WithFields(logrus.Fields{"room_id": p.Room, "conn_id": c.ID}).Warn("Dropping clear_board for unknown room")
		return
	}

	logrus.WithField("room_id", p.Room).Info("Board cleared")

	for _, receiver := range receivers {
		h.queue(receiver, &Message{Type: EventClearBoard})
	}
}

// handleDisconnect removes the client from its room. The last member out
// deletes the room; otherwise the survivor is told their peer left.
func (h *Hub) handleDisconnect(c *Client) {
	h.detach(c)
}

// detach takes the client out of whatever room it occupies, deleting the
// room if it is now empty or notifying the remaining peer otherwise.
func (h *Hub) detach(c *Client) {
	code, remaining, ok := h.registry.Leave(c)
	if !ok {
		return
	}

	if len(remaining) == 0 {
		logrus.WithField("room_id", code).Info("Room deleted (empty)")
		return
	}

	logrus.WithFields(logrus.Fields{"room_id": code, "conn_id": c.ID}).Info("Peer left room")
	for _, peer := range remaining {
		h.queue(peer, &Message{Type: EventUserLeft})
	}
}

// send marshals payload and queues the message for one client.
func (h *Hub) send(c *Client, event string, payload any) {
	data, _ := json.Marshal(payload)
	h.queue(c, &Message{Type: event, Payload: data})
}

// queue pushes a message into the client's buffered send channel without
// blocking the hub. A client too slow to drain its buffer loses messages
// rather than stalling everyone else.
func (h *Hub) queue(c *Client, msg *Message) {
	select {
	case c.Send <- msg:
	default:
		logrus.WithFields(logrus.Fields{
			"conn_id": c.ID,
			"type":    msg.Type,
		}).Warn("Client send buffer full, dropping message")
	}
}
