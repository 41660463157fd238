package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"matterm/internal/config"
	"matterm/internal/loopback"
	"matterm/internal/protocol"
)

func testConfig() config.Config {
	return config.Config{UserID: "@me:test.local", PageSize: 20}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestModel(t *testing.T) (Model, *loopback.Client) {
	t.Helper()
	client, err := loopback.StartSession(protocol.Credentials{UserID: "@me:test.local"})
	require.NoError(t, err)
	loopback.SeedDemo(client)

	cfg := testConfig()
	return New(cfg, client, zap.NewNop()), client
}

func press(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func runMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func transcript(m Model) string {
	return strings.Join(m.lines, "\n")
}

func enterRoom(t *testing.T, m Model, index string) Model {
	t.Helper()
	m, cmd := press(t, m, "/join "+index)
	require.NotNil(t, cmd)
	done, ok := cmd().(joinDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	return runMsg(t, m, done)
}

func TestStartupRendersIndexedRoomList(t *testing.T) {
	m, _ := newTestModel(t)

	out := transcript(m)
	assert.Contains(t, out, "0.")
	assert.Contains(t, out, "general")
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "random")
	assert.Contains(t, out, "(invited)")
	assert.False(t, m.session.InRoom())
}

func TestJoinByIndexEntersRoomWithHistory(t *testing.T) {
	m, client := newTestModel(t)

	m, cmd := press(t, m, "/join 0")
	require.NotNil(t, cmd)
	assert.True(t, m.inflight)

	done, ok := cmd().(joinDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	m = runMsg(t, m, done)
	assert.False(t, m.inflight)
	require.True(t, m.session.InRoom())
	assert.Equal(t, "!general:loopback.local", m.session.Viewing().ID())

	out := transcript(m)
	assert.Contains(t, out, "general")
	assert.Contains(t, out, "standup in five")

	assert.Empty(t, client.JoinCalls(), "already joined, no join request expected")
	require.Len(t, client.SyncCalls(), 1)
	assert.Equal(t, 20, client.SyncCalls()[0].PageSize)
}

func TestJoinInviteSendsJoinRequest(t *testing.T) {
	m, client := newTestModel(t)

	m = enterRoom(t, m, "1")
	assert.Equal(t, []string{"!random:loopback.local"}, client.JoinCalls())
	assert.Equal(t, "!random:loopback.local", m.session.Viewing().ID())
}

func TestJoinRejectsBadIndex(t *testing.T) {
	m, client := newTestModel(t)

	for _, arg := range []string{"9", "-1", "x"} {
		next, cmd := press(t, m, "/join "+arg)
		assert.Nil(t, cmd, "arg %q", arg)
		assert.True(t, next.statusErr, "arg %q", arg)
		assert.Contains(t, next.statusLine, "invalid room", "arg %q", arg)
	}
	assert.Empty(t, client.SyncCalls())
}

func TestJoinWhileViewingIsRejected(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, cmd := press(t, m, "/join 1")
	assert.Nil(t, cmd)
	assert.Contains(t, m.statusLine, "exit current room first")
	assert.Equal(t, "!general:loopback.local", m.session.Viewing().ID())
}

func TestJoinVerifyFailureStillEntersRoom(t *testing.T) {
	m, client := newTestModel(t)
	client.FailVerify("!general:loopback.local", assert.AnError)

	m = enterRoom(t, m, "0")
	assert.True(t, m.session.InRoom())
	assert.True(t, m.statusWarn)
	assert.Contains(t, m.statusLine, "verification failed")
}

func TestJoinSyncFailureStaysAtRoomList(t *testing.T) {
	m, client := newTestModel(t)
	client.FailSync("!general:loopback.local", assert.AnError)

	m, cmd := press(t, m, "/join 0")
	require.NotNil(t, cmd)
	done, ok := cmd().(joinDoneMsg)
	require.True(t, ok)
	require.Error(t, done.err)

	m = runMsg(t, m, done)
	assert.False(t, m.session.InRoom())
	assert.True(t, m.statusErr)
}

func TestRoomScopedCommandsNeedARoom(t *testing.T) {
	m, _ := newTestModel(t)

	for _, line := range []string{"/invite @ada:test.local", "/send hi", "/members", "/roominfo", "/exit"} {
		next, cmd := press(t, m, line)
		assert.Nil(t, cmd, line)
		assert.Contains(t, next.statusLine, "join a room first", line)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := press(t, m, "/help")
	assert.Nil(t, cmd)
	out := transcript(m)
	for _, name := range m.registry.Names() {
		assert.Contains(t, out, name)
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := press(t, m, "/frobnicate now")
	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusLine, "unknown command: /frobnicate")
}

func TestSendCommandAndEcho(t *testing.T) {
	m, client := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, cmd := press(t, m, "/send Hello World")
	require.NotNil(t, cmd)
	done := cmd()
	m = runMsg(t, m, done)

	require.Len(t, client.SendCalls(), 1)
	assert.Equal(t, loopback.SendCall{RoomID: "!general:loopback.local", Body: "Hello World"}, client.SendCalls()[0])

	// The loopback server echoes the message back on the event stream.
	m = runMsg(t, m, <-m.events)
	assert.Contains(t, transcript(m), "Hello World")
}

func TestPlainTextSendsWhileViewing(t *testing.T) {
	m, client := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, cmd := press(t, m, "good morning")
	require.NotNil(t, cmd)
	_ = cmd()

	require.Len(t, client.SendCalls(), 1)
	assert.Equal(t, "good morning", client.SendCalls()[0].Body)
}

func TestPlainTextAtRoomListIsHint(t *testing.T) {
	m, client := newTestModel(t)

	m, cmd := press(t, m, "hello?")
	assert.Nil(t, cmd)
	assert.Contains(t, m.statusLine, "/help")
	assert.Empty(t, client.SendCalls())
}

func TestTimelineEventFromOtherRoomIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")
	before := transcript(m)

	m = runMsg(t, m, timelineEventMsg{event: protocol.TimelineEvent{
		Type:   protocol.EventTypeMessage,
		RoomID: "!random:loopback.local",
		Sender: "@ada:loopback.local",
		Body:   "off screen",
	}})
	assert.Equal(t, before, transcript(m))
}

func TestMemberEventIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")
	before := transcript(m)

	m = runMsg(t, m, timelineEventMsg{event: protocol.TimelineEvent{
		Type:   protocol.EventTypeMember,
		RoomID: "!general:loopback.local",
		Sender: "@ada:loopback.local",
		Body:   "join",
	}})
	assert.Equal(t, before, transcript(m))
}

func TestRoomlessNoticeIsShown(t *testing.T) {
	m, _ := newTestModel(t)

	m = runMsg(t, m, timelineEventMsg{event: protocol.TimelineEvent{
		Type: protocol.EventTypeMessage,
		Body: "server maintenance at midnight",
	}})
	assert.Contains(t, transcript(m), "server maintenance")
}

func TestEncryptedEventRendersDecrypted(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "2")

	m = runMsg(t, m, timelineEventMsg{event: protocol.TimelineEvent{
		Type:   protocol.EventTypeEncrypted,
		RoomID: "!vault:loopback.local",
		Sender: "@lin:loopback.local",
		Body:   loopback.SealBody("the plan is go"),
	}})
	out := transcript(m)
	assert.Contains(t, out, "the plan is go")
	assert.NotContains(t, out, loopback.SealBody("the plan is go"))
}

func TestExitReturnsToRoomList(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, cmd := press(t, m, "/exit")
	assert.Nil(t, cmd)
	assert.False(t, m.session.InRoom())
	assert.Contains(t, transcript(m), "general")
	assert.Contains(t, transcript(m), "0.")
}

func TestMembersListsRoomMembers(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, _ = press(t, m, "/members")
	out := transcript(m)
	assert.Contains(t, out, "@ada:loopback.local")
	assert.Contains(t, out, "@me:test.local")
}

func TestRoomInfoShowsNameTopicID(t *testing.T) {
	m, _ := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, _ = press(t, m, "/roominfo")
	out := transcript(m)
	assert.Contains(t, out, "Team chatter")
	assert.Contains(t, out, "!general:loopback.local")
}

func TestInviteAddsMember(t *testing.T) {
	m, client := newTestModel(t)
	m = enterRoom(t, m, "0")

	m, cmd := press(t, m, "/invite @new:test.local")
	require.NotNil(t, cmd)
	done := cmd()
	m = runMsg(t, m, done)

	assert.Equal(t, []loopback.InviteCall{{RoomID: "!general:loopback.local", UserID: "@new:test.local"}}, client.InviteCalls())
	assert.Contains(t, m.statusLine, "invited @new:test.local")
}

func TestClearDevices(t *testing.T) {
	m, client := newTestModel(t)

	m, cmd := press(t, m, "/cleardevices")
	require.NotNil(t, cmd)
	m = runMsg(t, m, cmd())

	assert.Equal(t, 1, client.ClearCalls())
	assert.Contains(t, m.statusLine, "other devices cleared")
}

func TestInflightBlocksNextCommand(t *testing.T) {
	m, client := newTestModel(t)

	m, cmd := press(t, m, "/join 0")
	require.NotNil(t, cmd)
	require.True(t, m.inflight)

	m, second := press(t, m, "/cleardevices")
	assert.Nil(t, second)
	assert.Equal(t, 0, client.ClearCalls())

	// Drain the pending join so state stays consistent.
	done := cmd()
	m = runMsg(t, m, done)
	assert.False(t, m.inflight)
}

func TestRoomListChangeRefreshesSnapshot(t *testing.T) {
	m, client := newTestModel(t)

	client.AddRoom("!ops:loopback.local", "ops", "", protocol.MembershipJoin, false)
	m = runMsg(t, m, <-m.events)

	assert.Contains(t, transcript(m), "ops")
	assert.Len(t, m.session.Rooms(), 4)
}

func TestRoomListChangeWhileViewingDoesNotClobberRoom(t *testing.T) {
	m, client := newTestModel(t)
	m = enterRoom(t, m, "0")
	before := transcript(m)

	client.AddRoom("!ops:loopback.local", "ops", "", protocol.MembershipJoin, false)
	m = runMsg(t, m, <-m.events)

	assert.Equal(t, before, transcript(m))
	assert.Len(t, m.session.Rooms(), 4)
}

func TestEmptyStartThenRoomAppearsAndIsJoined(t *testing.T) {
	client, err := loopback.StartSession(protocol.Credentials{UserID: "@me:test.local"})
	require.NoError(t, err)
	m := New(testConfig(), client, zap.NewNop())
	assert.Contains(t, transcript(m), "No rooms yet")

	room := client.AddRoom("!general:test.local", "general", "", protocol.MembershipJoin, false)
	for _, body := range []string{"one", "two", "three"} {
		room.Backfill("@ada:test.local", body, timeFixture())
	}
	m = runMsg(t, m, <-m.events)
	assert.Contains(t, transcript(m), "general")

	m = enterRoom(t, m, "0")
	require.True(t, m.session.InRoom())
	assert.Empty(t, client.JoinCalls())
	assert.Equal(t, []string{"!general:test.local"}, client.VerifyCalls())
	require.Len(t, client.SyncCalls(), 1)
	assert.Equal(t, loopback.SyncCall{RoomID: "!general:test.local", PageSize: 20}, client.SyncCalls()[0])

	out := transcript(m)
	for _, body := range []string{"one", "two", "three"} {
		assert.Contains(t, out, body)
	}
}

func timeFixture() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func TestQuitCommand(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := press(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
