// Package console is the terminal operator console. It drives a running
// server through the HTTP command API and follows its state over the
// websocket.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/server"
	"github.com/mduijf/mhmot/internal/timer"
	"github.com/mduijf/mhmot/internal/updater"
)

const (
	commandTimeout = 15 * time.Second
	sidebarWidth   = 32
	maxDetailWidth = 120
)

// Executor runs commands against the server
type Executor interface {
	Execute(ctx context.Context, name string, args any) (json.RawMessage, error)
	GameState(ctx context.Context) (*game.Snapshot, error)
}

type (
	stateMsg struct {
		snap *game.Snapshot
		err  error
	}
	resultMsg struct {
		cmd  Command
		data json.RawMessage
		err  error
	}
	serverMsg       struct{ msg *server.Message }
	disconnectedMsg struct{}
)

// Model is the Bubble Tea model of the operator console
type Model struct {
	client  Executor
	updates <-chan *server.Message // nil without a websocket
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	entries     []string
	snapshot    *game.Snapshot
	timer       timer.State
	connected   bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewModel creates a console. updates may be nil, in which case the state
// is only refreshed after commands.
func NewModel(client Executor, updates <-chan *server.Message, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a command (collect, bet 2 20, win, round, undo, help)"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		client:      client,
		updates:     updates,
		logger:      logger.WithPrefix("console"),
		logViewport: vp,
		input:       ti,
		entries:     []string{},
		connected:   updates != nil,
		focusedPane: 1,
	}
}

// Init fetches the state and starts listening for pushes
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchState(), m.waitForUpdate())
}

func (m *Model) fetchState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		snap, err := m.client.GameState(ctx)
		return stateMsg{snap: snap, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates := m.updates
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

func (m *Model) execute(cmd Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		data, err := m.client.Execute(ctx, cmd.Name, cmd.Args)
		return resultMsg{cmd: cmd, data: data, err: err}
	}
}

// Update handles messages in the console
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case stateMsg:
		if msg.err != nil {
			m.AddLogEntry(ErrorStyle.Render("✗ state: " + msg.err.Error()))
		} else {
			m.snapshot = msg.snap
		}

	case resultMsg:
		m.handleResult(msg)

	case serverMsg:
		m.handleServerMessage(msg.msg)
		cmds = append(cmds, m.waitForUpdate())

	case disconnectedMsg:
		m.connected = false
		m.updates = nil
		m.AddLogEntry(WarningStyle.Render("Lost connection to the server; state refreshes after commands only"))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				return m, m.handleLine(line)
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleLine parses an input line and returns the command to run, if any
func (m *Model) handleLine(line string) tea.Cmd {
	cmd, err := ParseCommand(line)
	switch {
	case errors.Is(err, ErrEmptyLine):
		return nil
	case errors.Is(err, ErrQuit):
		m.quitting = true
		return tea.Quit
	case errors.Is(err, ErrHelp):
		for _, l := range strings.Split(Help, "\n") {
			m.AddLogEntry(InfoStyle.Render(l))
		}
		return nil
	case err != nil:
		m.AddLogEntry(ErrorStyle.Render("✗ " + err.Error()))
		return nil
	}

	m.AddLogEntry("> " + line)
	return m.execute(cmd)
}

func (m *Model) handleResult(msg resultMsg) {
	if msg.err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("✗ %s: %v", msg.cmd.Name, msg.err)))
		return
	}

	if snap, ok := decodeSnapshot(msg.data); ok {
		m.snapshot = snap
		m.AddLogEntry(SuccessStyle.Render("✓ " + msg.cmd.Name))
		return
	}

	if strings.HasSuffix(msg.cmd.Name, "_timer") {
		var state timer.State
		if json.Unmarshal(msg.data, &state) == nil {
			m.timer = state
		}
	}
	m.AddLogEntry(SuccessStyle.Render("✓ "+msg.cmd.Name) + " " + InfoStyle.Render(detail(msg.data)))
}

func (m *Model) handleServerMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeGameState:
		var snap *game.Snapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			m.logger.Warn("Failed to decode state", "error", err)
			return
		}
		m.snapshot = snap
	case server.MessageTypeGameEvent:
		var data server.GameEventData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			m.logger.Warn("Failed to decode event", "error", err)
			return
		}
		for _, l := range strings.Split(data.Summary, "\n") {
			m.AddLogEntry(WarningStyle.Render(l))
		}
	case server.MessageTypeTimer:
		var state timer.State
		if err := json.Unmarshal(msg.Data, &state); err == nil {
			m.timer = state
		}
	case server.MessageTypeUpdateAvailable:
		var info updater.UpdateInfo
		if err := json.Unmarshal(msg.Data, &info); err == nil {
			m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Version %s is available: %s", info.LatestVersion, info.DownloadURL)))
		}
	}
}

// decodeSnapshot recognises command results that carry the game state
func decodeSnapshot(data json.RawMessage) (*game.Snapshot, bool) {
	var head struct {
		GameID string `json:"game_id"`
	}
	if json.Unmarshal(data, &head) != nil || head.GameID == "" {
		return nil, false
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func detail(data json.RawMessage) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxDetailWidth {
		s = s[:maxDetailWidth-3] + "..."
	}
	return s
}

// View renders the console
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight)
	sidebarPane := sidebarStyle.Render(m.renderSidebar())

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.entries, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebar shows the round, the pot and every player
func (m *Model) renderSidebar() string {
	var b strings.Builder

	snap := m.snapshot
	if snap == nil {
		b.WriteString(InfoStyle.Render("No game. Type start."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d/%d ", snap.RoundNumber, game.MaxRounds)))
	b.WriteString("\n")
	switch {
	case snap.IsFinished:
		b.WriteString(PhaseStyle.Render("Game over"))
	case snap.CurrentRound == nil:
		b.WriteString(PhaseStyle.Render("Between rounds"))
	default:
		r := snap.CurrentRound
		b.WriteString(PhaseStyle.Render(r.Phase.String()))
		b.WriteString(InfoStyle.Render(fmt.Sprintf(" min %d", r.MinBet)))
		if r.Phase.IsBetting() {
			b.WriteString(WarningStyle.Render(" bets open"))
		}
	}
	b.WriteString("\n")
	b.WriteString(PotStyle.Render(fmt.Sprintf("Pot: %d", snap.Pot())))
	b.WriteString("\n\n")

	for i, p := range snap.Players {
		line := fmt.Sprintf("%d. %-12s %5d", i+1, p.Name, p.Balance)
		if p.CurrentBet > 0 {
			line += fmt.Sprintf(" +%d", p.CurrentBet)
		}
		switch {
		case !p.IsActive:
			b.WriteString(EliminatedStyle.Render(line))
		case p.HasFolded:
			b.WriteString(InfoStyle.Render(line + " fold"))
		default:
			b.WriteString(PlayerInfoStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if snap.VideoModeActive {
		b.WriteString(WarningStyle.Render("Video on"))
	} else {
		b.WriteString(InfoStyle.Render("Video off"))
	}
	b.WriteString(InfoStyle.Render(" · "))
	if snap.WritingEnabled {
		b.WriteString(SuccessStyle.Render("Writing"))
	} else {
		b.WriteString(ErrorStyle.Render("No writing"))
	}
	b.WriteString("\n")

	if m.timer.Duration > 0 {
		state := "paused"
		if m.timer.Running {
			state = "running"
		}
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Timer %ds %s", m.timer.Remaining, state)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to run • help for commands • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	if !m.connected {
		help += " • offline"
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

// AddLogEntry appends a line to the log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.entries = append(m.entries, entry)
	m.logViewport.SetContent(strings.Join(m.entries, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the log lines
func (m *Model) Log() []string {
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// Snapshot returns the last known game state
func (m *Model) Snapshot() *game.Snapshot {
	return m.snapshot
}
