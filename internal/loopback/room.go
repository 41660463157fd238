package loopback

import (
	"time"

	"github.com/google/uuid"

	"matterm/internal/protocol"
)

// Room is the in-memory protocol.Room. All state is guarded by the
// owning client's mutex; id, name and topic never change after AddRoom.
type Room struct {
	client    *Client
	id        string
	name      string
	topic     string
	encrypted bool

	members map[string]protocol.Membership
	order   []string

	timeline []protocol.TimelineEvent
}

func (r *Room) ID() string    { return r.id }
func (r *Room) Name() string  { return r.name }
func (r *Room) Topic() string { return r.topic }

func (r *Room) Members() []string {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()
	out := make([]string, 0, len(r.order))
	for _, userID := range r.order {
		if r.members[userID] == protocol.MembershipJoin || r.members[userID] == protocol.MembershipInvite {
			out = append(out, userID)
		}
	}
	return out
}

func (r *Room) MembershipOf(userID string) protocol.Membership {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()
	if m, ok := r.members[userID]; ok {
		return m
	}
	return protocol.MembershipLeave
}

// SetMember seeds or changes a membership without emitting a member
// event. Demo setup and tests use it; the join/invite operations on the
// client emit events as a real server would.
func (r *Room) SetMember(userID string, membership protocol.Membership) {
	r.client.mu.Lock()
	r.setMemberLocked(userID, membership)
	r.client.mu.Unlock()
}

func (r *Room) setMemberLocked(userID string, membership protocol.Membership) {
	if _, ok := r.members[userID]; !ok {
		r.order = append(r.order, userID)
	}
	r.members[userID] = membership
}

// Backfill appends a message to the room timeline without notifying the
// timeline subscriber, the way history predating the session would sit
// on the server. Encrypted rooms store the sealed form.
func (r *Room) Backfill(sender, body string, at time.Time) {
	ev := protocol.TimelineEvent{
		ID:     uuid.NewString(),
		Type:   protocol.EventTypeMessage,
		RoomID: r.id,
		Sender: sender,
		Body:   body,
		SentAt: at,
	}
	if r.encrypted {
		ev.Type = protocol.EventTypeEncrypted
		ev.Body = SealBody(body)
	}
	r.client.mu.Lock()
	r.timeline = append(r.timeline, ev)
	r.client.mu.Unlock()
}

var _ protocol.Room = (*Room)(nil)
