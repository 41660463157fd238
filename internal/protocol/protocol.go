// Package protocol defines the surface the console consumes from a
// federated chat client. Transport, federation, room-state resolution and
// encryption all live behind these interfaces; the console never looks
// past them.
package protocol

import (
	"context"
	"time"
)

// Membership is a user's relationship to a room, using the wire values of
// the Matrix client-server API.
type Membership string

const (
	MembershipInvite Membership = "invite"
	MembershipJoin   Membership = "join"
	MembershipLeave  Membership = "leave"
	MembershipBan    Membership = "ban"
)

const (
	EventTypeMessage   = "m.room.message"
	EventTypeEncrypted = "m.room.encrypted"
	EventTypeMember    = "m.room.member"
)

// TimelineEvent is a single append to a room's event history. RoomID may be
// empty for events that carry no room association (e.g. server notices).
type TimelineEvent struct {
	ID     string
	Type   string
	RoomID string
	Sender string
	Body   string
	SentAt time.Time
}

// Credentials identify the local account for session startup.
type Credentials struct {
	UserID      string
	AccessToken string
}

// Room is an opaque handle owned by the client. Implementations may back it
// with live server state; callers only read the accessors below.
type Room interface {
	ID() string
	Name() string
	Topic() string
	Members() []string
	MembershipOf(userID string) Membership
}

// Client is the protocol collaborator. All blocking calls take a context;
// timeouts and retries are the implementation's concern.
type Client interface {
	UserID() string

	// CurrentRooms returns a fresh snapshot of the account's rooms, in the
	// order the client reports them.
	CurrentRooms() []Room

	// Subscribe registers the two event callbacks. Callbacks may fire from
	// arbitrary goroutines; consumers are expected to funnel them onto
	// their own queue.
	Subscribe(onRoomListChanged func(), onTimelineEvent func(TimelineEvent))

	// DecryptIfNeeded returns the readable form of ev. Plaintext events are
	// returned unchanged, so the call is idempotent.
	DecryptIfNeeded(ev TimelineEvent) (TimelineEvent, error)

	JoinRoom(ctx context.Context, roomID string) error
	VerifyRoom(ctx context.Context, roomID string) error
	InitialSync(ctx context.Context, roomID string, pageSize int) ([]TimelineEvent, error)
	SendMessage(ctx context.Context, roomID, body string) error
	Invite(ctx context.Context, roomID, userID string) error
	ClearOtherDevices(ctx context.Context) error
}
