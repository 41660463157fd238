// Package loopback is an in-process stand-in for the protocol
// collaborator. It keeps rooms, membership and timelines in memory and
// feeds the subscribed callbacks the way a real federated client would.
// The binary uses it for demo sessions; tests use it as a scripted fake.
package loopback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"matterm/internal/protocol"
)

const sealedPrefix = "sealed:"

// SealBody wraps a plaintext body the way this client "encrypts" it. The
// matching unseal lives in DecryptIfNeeded.
func SealBody(plain string) string { return sealedPrefix + plain }

// SyncCall records one InitialSync invocation, for assertions.
type SyncCall struct {
	RoomID   string
	PageSize int
}

// SendCall records one SendMessage invocation.
type SendCall struct {
	RoomID string
	Body   string
}

// InviteCall records one Invite invocation.
type InviteCall struct {
	RoomID string
	UserID string
}

// Client implements protocol.Client over in-memory state.
type Client struct {
	mu     sync.Mutex
	userID string
	rooms  []*Room

	onRoomList func()
	onTimeline func(protocol.TimelineEvent)

	verifyErr map[string]error
	joinErr   map[string]error
	syncErr   map[string]error
	sendErr   error

	joinCalls   []string
	verifyCalls []string
	syncCalls   []SyncCall
	sendCalls   []SendCall
	inviteCalls []InviteCall
	clearCalls  int
}

// StartSession validates the credentials and opens an in-memory session.
// A malformed user id is the fatal startup failure of the real login path.
func StartSession(creds protocol.Credentials) (*Client, error) {
	userID := strings.TrimSpace(creds.UserID)
	if !strings.HasPrefix(userID, "@") || !strings.Contains(userID, ":") {
		return nil, fmt.Errorf("login: invalid user id %q", creds.UserID)
	}
	return &Client{
		userID:    userID,
		verifyErr: map[string]error{},
		joinErr:   map[string]error{},
		syncErr:   map[string]error{},
	}, nil
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) Subscribe(onRoomListChanged func(), onTimelineEvent func(protocol.TimelineEvent)) {
	c.mu.Lock()
	c.onRoomList = onRoomListChanged
	c.onTimeline = onTimelineEvent
	c.mu.Unlock()
}

func (c *Client) CurrentRooms() []protocol.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Room, len(c.rooms))
	for i, r := range c.rooms {
		out[i] = r
	}
	return out
}

// AddRoom appends a room to the account's room set and announces the list
// change. Member map is seeded with the local user at the given
// membership.
func (c *Client) AddRoom(id, name, topic string, selfMembership protocol.Membership, encrypted bool) *Room {
	c.mu.Lock()
	room := &Room{
		client:    c,
		id:        id,
		name:      name,
		topic:     topic,
		encrypted: encrypted,
		members:   map[string]protocol.Membership{c.userID: selfMembership},
		order:     []string{c.userID},
	}
	c.rooms = append(c.rooms, room)
	notify := c.onRoomList
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
	return room
}

// Deliver appends ev to its room's timeline (when it names one) and hands
// it to the timeline subscriber. Used by tests and demo traffic; the
// send/join/invite paths go through it too.
func (c *Client) Deliver(ev protocol.TimelineEvent) {
	c.mu.Lock()
	if room := c.roomLocked(ev.RoomID); room != nil {
		room.timeline = append(room.timeline, ev)
	}
	notify := c.onTimeline
	c.mu.Unlock()
	if notify != nil {
		notify(ev)
	}
}

func (c *Client) roomLocked(roomID string) *Room {
	for _, r := range c.rooms {
		if r.id == roomID {
			return r
		}
	}
	return nil
}

func (c *Client) DecryptIfNeeded(ev protocol.TimelineEvent) (protocol.TimelineEvent, error) {
	if ev.Type != protocol.EventTypeEncrypted {
		return ev, nil
	}
	if !strings.HasPrefix(ev.Body, sealedPrefix) {
		return ev, fmt.Errorf("decrypt %s: no session key", ev.ID)
	}
	ev.Type = protocol.EventTypeMessage
	ev.Body = strings.TrimPrefix(ev.Body, sealedPrefix)
	return ev, nil
}

func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	c.joinCalls = append(c.joinCalls, roomID)
	if err := c.joinErr[roomID]; err != nil {
		c.mu.Unlock()
		return err
	}
	room := c.roomLocked(roomID)
	if room == nil {
		c.mu.Unlock()
		return fmt.Errorf("join: unknown room %s", roomID)
	}
	room.setMemberLocked(c.userID, protocol.MembershipJoin)
	c.mu.Unlock()

	c.Deliver(memberEvent(roomID, c.userID, protocol.MembershipJoin))
	return nil
}

func (c *Client) VerifyRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	c.verifyCalls = append(c.verifyCalls, roomID)
	err := c.verifyErr[roomID]
	c.mu.Unlock()
	return err
}

func (c *Client) InitialSync(ctx context.Context, roomID string, pageSize int) ([]protocol.TimelineEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncCalls = append(c.syncCalls, SyncCall{RoomID: roomID, PageSize: pageSize})
	if err := c.syncErr[roomID]; err != nil {
		return nil, err
	}
	room := c.roomLocked(roomID)
	if room == nil {
		return nil, fmt.Errorf("sync: unknown room %s", roomID)
	}
	timeline := room.timeline
	if pageSize > 0 && len(timeline) > pageSize {
		timeline = timeline[len(timeline)-pageSize:]
	}
	out := make([]protocol.TimelineEvent, len(timeline))
	copy(out, timeline)
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, roomID, body string) error {
	c.mu.Lock()
	c.sendCalls = append(c.sendCalls, SendCall{RoomID: roomID, Body: body})
	if c.sendErr != nil {
		err := c.sendErr
		c.mu.Unlock()
		return err
	}
	room := c.roomLocked(roomID)
	if room == nil {
		c.mu.Unlock()
		return fmt.Errorf("send: unknown room %s", roomID)
	}
	ev := protocol.TimelineEvent{
		ID:     uuid.NewString(),
		Type:   protocol.EventTypeMessage,
		RoomID: roomID,
		Sender: c.userID,
		Body:   body,
		SentAt: time.Now(),
	}
	if room.encrypted {
		ev.Type = protocol.EventTypeEncrypted
		ev.Body = SealBody(body)
	}
	c.mu.Unlock()

	c.Deliver(ev)
	return nil
}

func (c *Client) Invite(ctx context.Context, roomID, userID string) error {
	c.mu.Lock()
	c.inviteCalls = append(c.inviteCalls, InviteCall{RoomID: roomID, UserID: userID})
	room := c.roomLocked(roomID)
	if room == nil {
		c.mu.Unlock()
		return fmt.Errorf("invite: unknown room %s", roomID)
	}
	room.setMemberLocked(userID, protocol.MembershipInvite)
	c.mu.Unlock()

	c.Deliver(memberEvent(roomID, userID, protocol.MembershipInvite))
	return nil
}

func (c *Client) ClearOtherDevices(ctx context.Context) error {
	c.mu.Lock()
	c.clearCalls++
	c.mu.Unlock()
	return nil
}

func memberEvent(roomID, userID string, membership protocol.Membership) protocol.TimelineEvent {
	return protocol.TimelineEvent{
		ID:     uuid.NewString(),
		Type:   protocol.EventTypeMember,
		RoomID: roomID,
		Sender: userID,
		Body:   string(membership),
		SentAt: time.Now(),
	}
}

// FailVerify scripts VerifyRoom to fail for roomID.
func (c *Client) FailVerify(roomID string, err error) {
	c.mu.Lock()
	c.verifyErr[roomID] = err
	c.mu.Unlock()
}

// FailJoin scripts JoinRoom to fail for roomID.
func (c *Client) FailJoin(roomID string, err error) {
	c.mu.Lock()
	c.joinErr[roomID] = err
	c.mu.Unlock()
}

// FailSync scripts InitialSync to fail for roomID.
func (c *Client) FailSync(roomID string, err error) {
	c.mu.Lock()
	c.syncErr[roomID] = err
	c.mu.Unlock()
}

// FailSend scripts every SendMessage call to fail.
func (c *Client) FailSend(err error) {
	c.mu.Lock()
	c.sendErr = err
	c.mu.Unlock()
}

func (c *Client) JoinCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.joinCalls...)
}

func (c *Client) VerifyCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.verifyCalls...)
}

func (c *Client) SyncCalls() []SyncCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SyncCall(nil), c.syncCalls...)
}

func (c *Client) SendCalls() []SendCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SendCall(nil), c.sendCalls...)
}

func (c *Client) InviteCalls() []InviteCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]InviteCall(nil), c.inviteCalls...)
}

func (c *Client) ClearCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearCalls
}

var _ protocol.Client = (*Client)(nil)
