package session

import "encoding/json"

// Event names understood by the hub (inbound) and emitted to clients
// (outbound). The names and payload field names are the wire contract
// shared with the web frontend.
const (
	// Inbound (client to server)
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventDrawLine   = "draw_line"
	EventClearBoard = "clear_board"

	// Outbound (server to client)
	EventRoomCreated   = "room_created"
	EventJoinedSuccess = "joined_success"
	EventLoadLines     = "load_lines"
	EventUserJoined    = "user_joined"
	EventUserLeft      = "user_left"
	EventError         = "error"
)

// Message defines the envelope for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// client is the client that sent the message.
	// It's used internally by the Hub and not sent over JSON.
	client *Client `json:"-"`
}

// Typed payloads, one per event. Inbound payloads are decoded at the
// handler boundary so the rest of the engine never touches raw maps.

type createRoomPayload struct {
	Username string `json:"username"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type drawLinePayload struct {
	Room string          `json:"room"`
	Line json.RawMessage `json:"line"`
}

type clearBoardPayload struct {
	Room string `json:"room"`
}

type roomCreatedPayload struct {
	RoomID    string   `json:"roomId"`
	Usernames []string `json:"usernames"`
}

type joinedSuccessPayload struct {
	RoomID    string   `json:"roomId"`
	Usernames []string `json:"usernames,omitempty"`
}

type userJoinedPayload struct {
	Username string `json:"username"`
}

type errorPayload struct {
	Message string `json:"message"`
}
