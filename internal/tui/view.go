package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"matterm/internal/protocol"
)

const transcriptLimit = 2000

func (m Model) View() string {
	header := m.renderHeader()
	content := m.renderTranscript()
	input := m.theme.inputPanel.Width(maxInt(20, m.width-4)).Render(m.input.View())
	footer := m.renderFooter()
	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left, header, content, input, footer))
}

func (m Model) renderHeader() string {
	location := "room list"
	if room := m.session.Viewing(); room != nil {
		location = room.Name()
	}
	title := m.theme.panelTitle.Render("matterm") +
		m.theme.muted.Render("  "+m.session.Client().UserID()) +
		m.theme.muted.Render("  ·  ") +
		m.theme.roomName.Render(location)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(title)
}

func (m Model) renderTranscript() string {
	return m.theme.panel.Width(maxInt(20, m.width-4)).Render(m.transcript.View())
}

func (m Model) renderFooter() string {
	status := m.statusLine
	style := m.theme.status
	if m.statusErr {
		style = m.theme.errorStatus
	} else if m.statusWarn {
		style = m.theme.warnStatus
	}
	line := style.Render(status)
	if m.inflight {
		line = m.spinner.View() + " " + line
	}
	return m.theme.footer.Width(maxInt(20, m.width-4)).Render(line)
}

func (m *Model) resize() {
	width := maxInt(20, m.width-8)
	height := clampInt(m.height-9, 3, 200)
	m.transcript.Width = width
	m.transcript.Height = height
	m.input.Width = maxInt(20, width-4)
	m.refreshTranscript()
}

func (m *Model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	if len(m.lines) > transcriptLimit {
		m.lines = m.lines[len(m.lines)-transcriptLimit:]
	}
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

// printRoomList replaces the transcript with the indexed room list. The
// indices shown here are exactly what /join resolves against.
func (m *Model) printRoomList() {
	m.lines = m.lines[:0]
	rooms := m.session.Rooms()
	if len(rooms) == 0 {
		m.appendLines(m.theme.muted.Render("No rooms yet."))
		return
	}
	lines := make([]string, 0, len(rooms)+1)
	lines = append(lines, m.theme.panelTitle.Render("Rooms"))
	for i, room := range rooms {
		marker := ""
		if room.MembershipOf(m.session.Client().UserID()) == protocol.MembershipInvite {
			marker = m.theme.notice.Render("  (invited)")
		}
		lines = append(lines, fmt.Sprintf("%s %s%s",
			m.theme.roomIndex.Render(fmt.Sprintf("%3d.", i)),
			m.theme.roomName.Render(room.Name()),
			marker,
		))
	}
	m.appendLines(lines...)
}

func (m *Model) printRoomHeader(room protocol.Room) {
	m.lines = m.lines[:0]
	header := m.theme.panelTitle.Render(room.Name())
	if topic := strings.TrimSpace(room.Topic()); topic != "" {
		header += m.theme.muted.Render("  ·  " + compactSingleLine(topic, 100))
	}
	m.appendLines(header)
}

func (m *Model) printMessages(events []protocol.TimelineEvent) {
	for _, ev := range events {
		plain, err := m.session.Client().DecryptIfNeeded(ev)
		if err != nil {
			m.appendLines(m.theme.errorStatus.Render("[undecryptable message]"))
			continue
		}
		m.printMessage(plain)
	}
}

func (m *Model) printMessage(ev protocol.TimelineEvent) {
	m.appendLines(fmt.Sprintf("%s %s %s",
		m.theme.timestamp.Render(ev.SentAt.Format("15:04")),
		m.theme.sender.Render("<"+ev.Sender+">"),
		ev.Body,
	))
}

func (m *Model) printNotice(ev protocol.TimelineEvent) {
	m.appendLines(m.theme.notice.Render("* " + compactSingleLine(ev.Body, 200)))
}

func (m *Model) printMemberList(room protocol.Room) {
	members := room.Members()
	lines := make([]string, 0, len(members)+1)
	lines = append(lines, m.theme.panelTitle.Render(fmt.Sprintf("Members of %s (%d)", room.Name(), len(members))))
	for _, userID := range members {
		suffix := ""
		if room.MembershipOf(userID) == protocol.MembershipInvite {
			suffix = m.theme.notice.Render(" (invited)")
		}
		lines = append(lines, "  "+m.theme.sender.Render(userID)+suffix)
	}
	m.appendLines(lines...)
}

func (m *Model) printRoomInfo(room protocol.Room) {
	topic := strings.TrimSpace(room.Topic())
	if topic == "" {
		topic = "(no topic)"
	}
	m.appendLines(
		m.theme.panelTitle.Render("Room info"),
		"  name:  "+m.theme.roomName.Render(room.Name()),
		"  topic: "+topic,
		"  id:    "+m.theme.muted.Render(room.ID()),
	)
}

var commandUsage = map[string]string{
	"/help":         "/help              show this list",
	"/quit":         "/quit              quit",
	"/cleardevices": "/cleardevices      sign out this account's other devices",
	"/join":         "/join <index>      enter a room from the list",
	"/exit":         "/exit              leave the room view",
	"/send":         "/send <text>       send a message (plain text works too)",
	"/members":      "/members           list room members",
	"/invite":       "/invite <user id>  invite a user to the room",
	"/roominfo":     "/roominfo          show room name, topic and id",
}

func (m *Model) printHelp() {
	lines := []string{m.theme.panelTitle.Render("Commands")}
	for _, name := range m.registry.Names() {
		usage, ok := commandUsage[name]
		if !ok {
			usage = name
		}
		lines = append(lines, m.theme.helpText.Render("  "+usage))
	}
	m.appendLines(lines...)
}
