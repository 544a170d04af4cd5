package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetra-arena/internal/games/tetris"
	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

// RoomSource lists rooms and reads their current state.
type RoomSource interface {
	Rooms() []multiplayer.RoomSummary
	Snapshot(room string) (tetris.Snapshot, error)
}

// Subscriber attaches sessions to room broadcasts.
type Subscriber interface {
	Join(room string, s multiplayer.SessionHandle)
	Leave(id multiplayer.SessionID)
}

const spectatorBuffer = 16

// roomEventMsg carries one event received by the watching session.
type roomEventMsg struct {
	session *multiplayer.ChannelSession
	evt     multiplayer.Event
}

// sessionClosedMsg reports that a watching session ended.
type sessionClosedMsg struct {
	session *multiplayer.ChannelSession
}

func waitForEvent(s *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-s.Events():
			return roomEventMsg{session: s, evt: evt}
		case <-s.Done():
			return sessionClosedMsg{session: s}
		}
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SpectatorModel lists live rooms and shows the boards of the selected one.
// Room state arrives as hub events, so the view follows the simulation
// without polling it.
type SpectatorModel struct {
	source   RoomSource
	hub      Subscriber
	id       multiplayer.SessionID
	rooms    []multiplayer.RoomSummary
	cursor   int
	watching string
	session  *multiplayer.ChannelSession
	snapshot *tetris.Snapshot
	status   string
	keys     SpectatorKeyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

// NewSpectatorModel creates a spectator identified by id.
func NewSpectatorModel(source RoomSource, hub Subscriber, id multiplayer.SessionID, width, height int) SpectatorModel {
	return SpectatorModel{
		source: source,
		hub:    hub,
		id:     id,
		rooms:  source.Rooms(),
		keys:   DefaultSpectatorKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
}

// Init starts the room list refresh.
func (m SpectatorModel) Init() tea.Cmd {
	return refreshCmd(RefreshInterval)
}

// Update handles messages for the spectator.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.rooms = m.source.Rooms()
		if m.cursor >= len(m.rooms) {
			m.cursor = max(len(m.rooms)-1, 0)
		}
		return m, refreshCmd(RefreshInterval)

	case roomEventMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.apply(msg.evt)
		return m, waitForEvent(m.session)

	case sessionClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m SpectatorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unwatch()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.watching != "" {
			m.unwatch()
		}
		return m, nil
	}

	if m.watching != "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rooms)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if len(m.rooms) > 0 {
			return m, m.watch(m.rooms[m.cursor].Room)
		}
	}
	return m, nil
}

// watch subscribes to a room. The current snapshot is shown right away so
// an idle room is not blank until its next tick.
func (m *SpectatorModel) watch(room string) tea.Cmd {
	m.watching = room
	m.status = ""
	m.snapshot = nil
	if snap, err := m.source.Snapshot(room); err == nil {
		m.snapshot = &snap
	}
	m.session = multiplayer.NewChannelSession(m.id, spectatorBuffer)
	m.hub.Join(room, m.session)
	return waitForEvent(m.session)
}

func (m *SpectatorModel) unwatch() {
	if m.session == nil {
		return
	}
	m.hub.Leave(m.id)
	m.session.Close()
	m.session = nil
	m.watching = ""
	m.snapshot = nil
	m.status = ""
}

func (m *SpectatorModel) apply(evt multiplayer.Event) {
	switch e := evt.(type) {
	case multiplayer.GameStateEvent:
		snap := e.Snapshot
		m.snapshot = &snap
	case multiplayer.GameCreatedEvent:
		m.status = fmt.Sprintf("new %s game: %s", e.Mode, strings.Join(e.Players, ", "))
		if snap, err := m.source.Snapshot(e.Room); err == nil {
			m.snapshot = &snap
		}
	case multiplayer.GameStartedEvent:
		m.status = "match started"
	case multiplayer.GameOverEvent:
		m.status = fmt.Sprintf("game over: %s topped out", e.Player)
	case multiplayer.GameStoppedEvent:
		m.status = "game stopped (" + e.Reason + ")"
	case multiplayer.LobbyEvent:
		m.status = fmt.Sprintf("lobby: %d waiting", len(e.Players))
	}
}

// Watching returns the room being watched, or "".
func (m SpectatorModel) Watching() string {
	return m.watching
}

// Snapshot returns the last room state received, if any.
func (m SpectatorModel) Snapshot() (tetris.Snapshot, bool) {
	if m.snapshot == nil {
		return tetris.Snapshot{}, false
	}
	return *m.snapshot, true
}

// Status returns the last lifecycle message shown under the boards.
func (m SpectatorModel) Status() string {
	return m.status
}

// View renders the room list or the watched room.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.watching != "" {
		m.viewRoom(&b)
	} else {
		m.viewList(&b)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m SpectatorModel) viewList(b *strings.Builder) {
	b.WriteString(titleStyle.Render("LIVE ROOMS"))
	b.WriteString("\n\n")

	if len(m.rooms) == 0 {
		b.WriteString(dimStyle.Italic(true).Render("No rooms yet."))
		b.WriteString("\n")
		return
	}

	for i, r := range m.rooms {
		state := "waiting"
		if r.Running {
			state = "running"
		}
		line := fmt.Sprintf("%-16s %-8s %-8s %s", r.Room, r.Mode, state, strings.Join(r.Players, ", "))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
}

func (m SpectatorModel) viewRoom(b *strings.Builder) {
	if m.snapshot == nil {
		b.WriteString(titleStyle.Render("ROOM " + m.watching))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Waiting for the room to start..."))
		b.WriteString("\n")
		return
	}

	snap := m.snapshot
	state := "waiting"
	if snap.IsRunning {
		state = "running"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("ROOM %s  %s  %s  piece %d/%d",
		snap.Room, snap.Mode, state, snap.CurrentPieceIndex, snap.PieceSequenceLength)))
	b.WriteString("\n\n")
	b.WriteString(RenderRoom(*snap))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}
}
