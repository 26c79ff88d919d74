package session

import (
	"encoding/json"
	"sync"
)

// JoinStatus is the outcome of a join attempt.
type JoinStatus int

const (
	// JoinOK means the client was appended as a new member.
	JoinOK JoinStatus = iota

	// JoinAlreadyMember means the client was already in the room; the
	// attempt is treated as an idempotent re-join and nothing changed.
	JoinAlreadyMember

	// JoinNotFound means no room exists under the requested code.
	JoinNotFound

	// JoinFull means the room already has two members and the client is
	// not one of them.
	JoinFull
)

// JoinResult carries everything a handler needs after a join attempt.
// Usernames and Strokes are snapshots taken under the registry lock.
type JoinResult struct {
	Status    JoinStatus
	RoomID    string
	Usernames []string
	Strokes   []json.RawMessage

	// Others holds the members that were already in the room, so the
	// caller can notify them of the new arrival.
	Others []*Client

	// Departed holds the members left behind when the join switched the
	// client out of a previous room; they still need a departure notice.
	Departed []*Client
}

// Registry owns all live rooms and the reverse index from connection
// identity to room code. It is the single shared mutable resource of the
// engine; every exported operation is one atomic unit under mu.
//
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// index maps a client's connection ID to the code of the room it
	// currently occupies. An entry exists iff the client is a member.
	index map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		index: make(map[string]string),
	}
}

// CreateRoom allocates a fresh room code, creates the room with creator as
// its only member and returns the code with the initial roster. It always
// succeeds: codes are regenerated until one is unused.
func (reg *Registry) CreateRoom(creator *Client, username string) (string, []string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	// Keep generating until we find a code that's not in use.
	var code string
	for {
		code = newRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}

	room := newRoom(code)
	room.members = append(room.members, creator)
	room.names = append(room.names, username)
	reg.rooms[code] = room
	reg.index[creator.ID] = code

	return code, room.usernameSnapshot()
}

// JoinRoom attempts to add client to the room identified by code.
// Membership is only mutated on JoinOK; every other status leaves the
// registry untouched, including the client's current room. A client
// switching rooms is detached from the old one in the same atomic unit,
// but only once the target is known to accept it.
func (reg *Registry) JoinRoom(client *Client, code, username string) JoinResult {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return JoinResult{Status: JoinNotFound, RoomID: code}
	}

	// The same connection retrying a join (e.g. after a client-side
	// refresh race) just gets a confirmation, never a duplicate entry.
	if room.hasMember(client) {
		return JoinResult{Status: JoinAlreadyMember, RoomID: code}
	}

	if room.isFull() {
		return JoinResult{Status: JoinFull, RoomID: code}
	}

	// Target validated; now it is safe to drop any previous membership.
	_, departed, _ := reg.leaveLocked(client)

	others := room.memberSnapshot(nil)
	room.members = append(room.members, client)
	room.names = append(room.names, username)
	reg.index[client.ID] = code

	return JoinResult{
		Status:    JoinOK,
		RoomID:    code,
		Usernames: room.usernameSnapshot(),
		Strokes:   room.strokeSnapshot(),
		Others:    others,
		Departed:  departed,
	}
}

// Leave removes client from whatever room it occupies. The index entry is
// dropped first, then membership; a room left with no members is deleted on
// the spot. Returns the room code, the members that remain (for a user_left
// notification) and whether the client was in a room at all.
func (reg *Registry) Leave(client *Client) (string, []*Client, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.leaveLocked(client)
}

// leaveLocked is the body of Leave; the caller must hold mu.
func (reg *Registry) leaveLocked(client *Client) (string, []*Client, bool) {
	code, ok := reg.index[client.ID]
	if !ok {
		return "", nil, false
	}
	delete(reg.index, client.ID)

	room, ok := reg.rooms[code]
	if !ok {
		return code, nil, true
	}
	room.removeMember(client)

	if len(room.members) == 0 {
		delete(reg.rooms, code)
		return code, nil, true
	}
	return code, room.memberSnapshot(nil), true
}

// AppendStroke appends one stroke record to the room's history and returns
// the members to broadcast it to, excluding the sender. ok is false when no
// such room exists; the stroke is then dropped.
func (reg *Registry) AppendStroke(code string, sender *Client, stroke json.RawMessage) ([]*Client, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, false
	}
	room.strokes = append(room.strokes, stroke)
	return room.memberSnapshot(sender), true
}

// ClearStrokes empties the room's history and returns the full membership
// (the clear is echoed to everyone, sender included). ok is false when no
// such room exists.
func (reg *Registry) ClearStrokes(code string) ([]*Client, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, false
	}
	room.strokes = nil
	return room.memberSnapshot(nil), true
}

// Usernames returns a snapshot of the roster, or ok=false if the room does
// not exist.
func (reg *Registry) Usernames(code string) ([]string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, false
	}
	return room.usernameSnapshot(), true
}

// Strokes returns a snapshot of the room's drawing history, or ok=false if
// the room does not exist.
func (reg *Registry) Strokes(code string) ([]json.RawMessage, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, false
	}
	return room.strokeSnapshot(), true
}

// RoomOf returns the code of the room the client currently occupies.
func (reg *Registry) RoomOf(client *Client) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.index[client.ID]
	return code, ok
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
