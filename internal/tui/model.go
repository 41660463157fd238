// Package tui is the terminal front end of the console. The bubbletea
// update loop is the single dispatch queue: command handlers and
// reconciler steps all run on it, one at a time, so session state is
// only ever touched from here.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"matterm/internal/command"
	"matterm/internal/config"
	"matterm/internal/console"
	"matterm/internal/protocol"
)

// handlerFunc is a slash-command handler. It runs on the update loop,
// mutates the model synchronously and returns the immediate outcome
// plus a command for any awaited work. A non-nil command marks the
// model inflight until its done message arrives.
type handlerFunc func(m *Model, args []string) (console.Result, tea.Cmd)

type roomListChangedMsg struct{}

type timelineEventMsg struct {
	event protocol.TimelineEvent
}

type joinDoneMsg struct {
	outcome console.JoinOutcome
	err     error
}

type actionDoneMsg struct {
	status string
	err    error
}

// Model drives the console UI.
type Model struct {
	cfg      config.Config
	session  *console.Session
	registry *command.Registry[handlerFunc]
	logger   *zap.Logger

	lines      []string
	statusLine string
	statusErr  bool
	statusWarn bool
	inflight   bool

	events chan tea.Msg

	width  int
	height int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	theme uiTheme
}

// New builds the model and subscribes to the client's async streams.
// Callbacks only enqueue; everything they carry is reconciled on the
// update loop.
func New(cfg config.Config, client protocol.Client, logger *zap.Logger) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 1000
	input.Placeholder = "Type /help for commands"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))

	transcript := viewport.New(0, 0)
	transcript.MouseWheelEnabled = true
	transcript.MouseWheelDelta = 4

	events := make(chan tea.Msg, 256)
	client.Subscribe(
		func() {
			select {
			case events <- roomListChangedMsg{}:
			default:
			}
		},
		func(ev protocol.TimelineEvent) {
			select {
			case events <- timelineEventMsg{event: ev}:
			default:
			}
		},
	)

	m := Model{
		cfg:        cfg,
		session:    console.NewSession(client),
		registry:   newCommandRegistry(),
		logger:     logger,
		statusLine: "connected as " + client.UserID(),
		events:     events,
		input:      input,
		transcript: transcript,
		spinner:    sp,
		theme:      newTheme(),
	}
	m.session.RefreshRooms()
	m.printRoomList()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		waitEvent(m.events),
	)
}

// waitEvent re-arms the async stream after each delivered message so the
// update loop stays the lone consumer.
func waitEvent(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) setStatus(line string) {
	m.statusLine = line
	m.statusErr = false
	m.statusWarn = false
}

func (m *Model) setWarning(line string) {
	m.statusLine = line
	m.statusErr = false
	m.statusWarn = true
}

func (m *Model) failStatus(err error) {
	if err == nil {
		return
	}
	m.logger.Error("command failed", zap.Error(err))
	m.statusLine = "error: " + compactSingleLine(err.Error(), 160)
	m.statusErr = true
	m.statusWarn = false
}

func (m *Model) applyResult(res console.Result) {
	if res.Err != nil {
		m.failStatus(res.Err)
		return
	}
	if res.Status != "" {
		m.setStatus(res.Status)
	}
}
