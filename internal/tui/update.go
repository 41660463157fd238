package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"matterm/internal/command"
	"matterm/internal/protocol"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case roomListChangedMsg:
		m.session.RefreshRooms()
		m.logger.Debug("room list changed", zap.Int("rooms", len(m.session.Rooms())))
		if !m.session.InRoom() {
			m.printRoomList()
		}
		cmds = append(cmds, waitEvent(m.events))
	case timelineEventMsg:
		m.reconcileTimeline(msg.event)
		cmds = append(cmds, waitEvent(m.events))
	case joinDoneMsg:
		m.inflight = false
		if msg.err != nil {
			m.failStatus(msg.err)
			break
		}
		m.session.CommitJoin(msg.outcome.Room)
		m.printRoomHeader(msg.outcome.Room)
		m.printMessages(msg.outcome.History)
		if msg.outcome.VerifyErr != nil {
			m.setWarning("verification failed: " + compactSingleLine(msg.outcome.VerifyErr.Error(), 120))
		} else {
			m.setStatus("joined " + msg.outcome.Room.Name())
		}
	case actionDoneMsg:
		m.inflight = false
		if msg.err != nil {
			m.failStatus(msg.err)
		} else if strings.TrimSpace(msg.status) != "" {
			m.setStatus(msg.status)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "pgup", "ctrl+b":
			m.transcript.LineUp(8)
			return m, tea.Batch(cmds...)
		case "pgdown", "ctrl+f":
			m.transcript.LineDown(8)
			return m, tea.Batch(cmds...)
		case "enter":
			if m.inflight {
				return m, tea.Batch(cmds...)
			}
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, tea.Batch(cmds...)
			}
			m.input.SetValue("")
			cmd := m.dispatch(raw)
			if cmd != nil {
				m.inflight = true
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// dispatch routes one input line. Slash lines go through the registry;
// anything else is shorthand for sending a message while a room is open.
func (m *Model) dispatch(raw string) tea.Cmd {
	if !strings.HasPrefix(raw, "/") {
		if !m.session.InRoom() {
			m.setWarning("type /help for commands")
			return nil
		}
		res, cmd := m.cmdSend([]string{raw})
		m.applyResult(res)
		return cmd
	}

	name, args := command.Split(raw)
	name = strings.ToLower(name)
	handler, ok := m.registry.Lookup(name)
	if !ok {
		m.failStatus(fmt.Errorf("unknown command: %s", name))
		return nil
	}
	m.logger.Debug("dispatch", zap.String("command", name), zap.Int("args", len(args)))
	res, cmd := handler(m, args)
	m.applyResult(res)
	return cmd
}

// reconcileTimeline applies the filter predicates and appends the event
// to the transcript. Filtered events are dropped without buffering.
func (m *Model) reconcileTimeline(ev protocol.TimelineEvent) {
	if !m.session.AllowTimeline(ev) {
		m.logger.Debug("timeline event dropped",
			zap.String("type", ev.Type),
			zap.String("room", ev.RoomID),
		)
		return
	}
	plain, err := m.session.Client().DecryptIfNeeded(ev)
	if err != nil {
		m.failStatus(err)
		return
	}
	if plain.RoomID == "" {
		m.printNotice(plain)
		return
	}
	m.printMessage(plain)
}
