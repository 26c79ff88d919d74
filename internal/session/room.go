package session

import "encoding/json"

// Room represents a single drawing session shared by at most two peers.
// All fields are guarded by the owning Registry's mutex; the struct itself
// carries no synchronization.
type Room struct {
	// ID is the short shareable code identifying the room.
	ID string

	// members holds the connected clients in join order.
	members []*Client

	// names holds the display names, index-aligned with members.
	names []string

	// strokes is the append-only drawing history, replayed to late joiners.
	// Each entry is kept verbatim as received; the server never interprets
	// stroke contents.
	strokes []json.RawMessage
}

func newRoom(id string) *Room {
	return &Room{ID: id}
}

// maxMembers is the room capacity. A drawing session is strictly two-party.
const maxMembers = 2

func (r *Room) isFull() bool {
	return len(r.members) >= maxMembers
}

func (r *Room) hasMember(c *Client) bool {
	for _, m := range r.members {
		if m == c {
			return true
		}
	}
	return false
}

// removeMember removes c and its aligned display name, preserving the
// order of the remaining entries. Returns false if c was not a member.
func (r *Room) removeMember(c *Client) bool {
	for i, m := range r.members {
		if m == c {
			r.members = append(r.members[:i], r.members[i+1:]...)
			r.names = append(r.names[:i], r.names[i+1:]...)
			return true
		}
	}
	return false
}

// usernameSnapshot returns a copy of the roster. Callers must never hold a
// live slice once the registry lock is released.
func (r *Room) usernameSnapshot() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// memberSnapshot returns a copy of the member list, optionally excluding one
// client (the sender of a broadcast).
func (r *Room) memberSnapshot(exclude *Client) []*Client {
	members := make([]*Client, 0, len(r.members))
	for _, m := range r.members {
		if m != exclude {
			members = append(members, m)
		}
	}
	return members
}

// strokeSnapshot returns a copy of the drawing history. The result is never
// nil so an empty history serializes as [] rather than null.
func (r *Room) strokeSnapshot() []json.RawMessage {
	strokes := make([]json.RawMessage, len(r.strokes))
	copy(strokes, r.strokes)
	return strokes
}
