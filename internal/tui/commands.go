package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"matterm/internal/command"
	"matterm/internal/console"
)

func newCommandRegistry() *command.Registry[handlerFunc] {
	reg := command.NewRegistry[handlerFunc]()
	reg.Register("/help", (*Model).cmdHelp)
	reg.Register("/quit", (*Model).cmdQuit)
	reg.Register("/cleardevices", (*Model).cmdClearDevices)
	reg.Register("/join", (*Model).cmdJoin)
	reg.Register("/exit", (*Model).cmdExit)
	reg.Register("/send", (*Model).cmdSend)
	reg.Register("/members", (*Model).cmdMembers)
	reg.Register("/invite", (*Model).cmdInvite)
	reg.Register("/roominfo", (*Model).cmdRoomInfo)
	return reg
}

func (m *Model) cmdHelp(_ []string) (console.Result, tea.Cmd) {
	m.printHelp()
	return console.Statusf("help"), nil
}

func (m *Model) cmdQuit(_ []string) (console.Result, tea.Cmd) {
	return console.Ok(), tea.Quit
}

func (m *Model) cmdClearDevices(_ []string) (console.Result, tea.Cmd) {
	client := m.session.Client()
	return console.Statusf("clearing other devices..."), func() tea.Msg {
		if err := client.ClearOtherDevices(context.Background()); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "other devices cleared"}
	}
}

// cmdJoin resolves the index against the snapshot that was last
// rendered, then hands the awaited steps to a command. The room is
// committed only when joinDoneMsg comes back clean.
func (m *Model) cmdJoin(args []string) (console.Result, tea.Cmd) {
	if m.session.InRoom() {
		return console.Failf("exit current room first"), nil
	}
	if len(args) != 1 {
		return console.Failf("usage: /join <index>"), nil
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return console.Fail(console.ErrInvalidRoom), nil
	}
	room, err := m.session.RoomAt(index)
	if err != nil {
		return console.Fail(err), nil
	}

	client := m.session.Client()
	pageSize := m.cfg.PageSize
	return console.Statusf("joining %s...", room.Name()), func() tea.Msg {
		outcome, err := console.RunJoin(context.Background(), client, room, pageSize)
		return joinDoneMsg{outcome: outcome, err: err}
	}
}

func (m *Model) cmdExit(_ []string) (console.Result, tea.Cmd) {
	if !m.session.InRoom() {
		return console.Failf("join a room first"), nil
	}
	m.session.ExitRoom()
	m.printRoomList()
	return console.Statusf("left room view"), nil
}

func (m *Model) cmdSend(args []string) (console.Result, tea.Cmd) {
	if !m.session.InRoom() {
		return console.Failf("join a room first"), nil
	}
	body := strings.TrimSpace(strings.Join(args, " "))
	if body == "" {
		return console.Failf("usage: /send <text>"), nil
	}
	client := m.session.Client()
	roomID := m.session.Viewing().ID()
	return console.Ok(), func() tea.Msg {
		if err := client.SendMessage(context.Background(), roomID, body); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{}
	}
}

func (m *Model) cmdMembers(_ []string) (console.Result, tea.Cmd) {
	if !m.session.InRoom() {
		return console.Failf("join a room first"), nil
	}
	m.printMemberList(m.session.Viewing())
	return console.Ok(), nil
}

func (m *Model) cmdInvite(args []string) (console.Result, tea.Cmd) {
	if !m.session.InRoom() {
		return console.Failf("join a room first"), nil
	}
	if len(args) != 1 {
		return console.Failf("usage: /invite <user id>"), nil
	}
	userID := args[0]
	client := m.session.Client()
	roomID := m.session.Viewing().ID()
	return console.Ok(), func() tea.Msg {
		if err := client.Invite(context.Background(), roomID, userID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "invited " + userID}
	}
}

func (m *Model) cmdRoomInfo(_ []string) (console.Result, tea.Cmd) {
	if !m.session.InRoom() {
		return console.Failf("join a room first"), nil
	}
	m.printRoomInfo(m.session.Viewing())
	return console.Ok(), nil
}
