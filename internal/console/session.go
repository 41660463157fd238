// Package console holds the session controller core: the mutable view
// state shared by command handlers and the event reconciler, and the
// multi-step flow for entering a room. All methods must be called from the
// single dispatch loop; the type holds no locks of its own.
package console

import (
	"errors"

	"matterm/internal/protocol"
)

// ErrInvalidRoom reports a room index outside the last-rendered list.
var ErrInvalidRoom = errors.New("invalid room")

// Session owns the room-list snapshot and the zero-or-one room currently
// being viewed. A nil viewing room means the user is at the room-list
// screen.
type Session struct {
	client  protocol.Client
	rooms   []protocol.Room
	viewing protocol.Room
}

func NewSession(client protocol.Client) *Session {
	return &Session{client: client}
}

func (s *Session) Client() protocol.Client { return s.client }

// RefreshRooms rebuilds the room-list snapshot from the client. The list is
// replaced wholesale, never patched, so commands that resolve an index see
// exactly the set that was last rendered.
func (s *Session) RefreshRooms() []protocol.Room {
	s.rooms = s.client.CurrentRooms()
	return s.rooms
}

func (s *Session) Rooms() []protocol.Room { return s.rooms }

// RoomAt resolves a 0-based index against the current snapshot.
func (s *Session) RoomAt(index int) (protocol.Room, error) {
	if index < 0 || index >= len(s.rooms) {
		return nil, ErrInvalidRoom
	}
	return s.rooms[index], nil
}

func (s *Session) Viewing() protocol.Room { return s.viewing }

func (s *Session) InRoom() bool { return s.viewing != nil }

// CommitJoin is the only state-committing step of the join flow. Every
// awaited step runs before this; a failure there leaves the session at the
// room list with nothing partially set.
func (s *Session) CommitJoin(room protocol.Room) {
	s.viewing = room
}

// ExitRoom returns to the room-list screen. Unconditional.
func (s *Session) ExitRoom() {
	s.viewing = nil
}

// AllowTimeline applies the reconciler's two filtering predicates: the
// event must be a plain or encrypted room message, and it must belong to
// the room being viewed or carry no room association at all. Everything
// else is dropped silently; off-screen rooms' messages are not buffered.
func (s *Session) AllowTimeline(ev protocol.TimelineEvent) bool {
	switch ev.Type {
	case protocol.EventTypeMessage, protocol.EventTypeEncrypted:
	default:
		return false
	}
	if ev.RoomID == "" {
		return true
	}
	if s.viewing == nil {
		return false
	}
	return ev.RoomID == s.viewing.ID()
}
