// Package tui implements the Bubble Tea terminal client for czarbot.
// It renders the room chat log in a scrollable viewport and drives the
// game through dot-commands typed into the input pane.
package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/czarbot/czarbot/internal/client"
	"github.com/czarbot/czarbot/internal/server"
)

// serverMsg wraps an incoming server message for the Bubble Tea loop.
type serverMsg struct {
	msg *server.Message
}

// disconnectedMsg signals that the reader goroutine stopped.
type disconnectedMsg struct{}

// Model is the Bubble Tea model for the game client.
type Model struct {
	name   string
	room   string
	conn   *client.Client
	logger *log.Logger

	// UI components
	logViewport  viewport.Model
	commandInput textinput.Model

	// Game state mirrored from server messages
	chatLog     []string
	hand        []string
	prompt      string
	judge       string
	required    int
	submissions []string

	incoming chan *server.Message

	width       int
	height      int
	initialized bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input
}

// NewModel creates the client model and wires the connection's message
// handlers into the Bubble Tea message loop.
func NewModel(conn *client.Client, name, room string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Commands: .play [points], .ready, .choose 1 [2], .pick 1, .score, .quit"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		name:         name,
		room:         room,
		conn:         conn,
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		commandInput: ti,
		incoming:     make(chan *server.Message, 64),
		focusedPane:  1,
	}

	for _, mt := range []server.MessageType{
		server.MessageTypeWelcome,
		server.MessageTypeError,
		server.MessageTypeNotice,
		server.MessageTypeRoomJoined,
		server.MessageTypeGameCreated,
		server.MessageTypePlayerJoined,
		server.MessageTypePlayerLeft,
		server.MessageTypeRoundStart,
		server.MessageTypeHand,
		server.MessageTypePlayerChose,
		server.MessageTypePickStart,
		server.MessageTypeRoundResult,
		server.MessageTypeScores,
		server.MessageTypeGameOver,
	} {
		conn.OnMessage(mt, func(msg *server.Message) {
			select {
			case m.incoming <- msg:
			default:
				// Drop rather than block the reader.
			}
		})
	}

	return m
}

// Init introduces the client to the server and starts listening.
func (m *Model) Init() tea.Cmd {
	if err := m.conn.Hello(m.name); err != nil {
		m.logger.Error("Failed to send hello", "error", err)
	}
	if err := m.conn.JoinRoom(m.room); err != nil {
		m.logger.Error("Failed to join room", "error", err)
	}
	return tea.Batch(textinput.Blink, m.waitForMessage())
}

func (m *Model) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.incoming
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

// Update handles messages in the TUI.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case disconnectedMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case serverMsg:
		for _, line := range m.applyMessage(msg.msg) {
			m.addLogEntry(line)
		}
		cmds = append(cmds, m.waitForMessage())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			_ = m.conn.Disconnect()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.commandInput.Focus()
			} else {
				m.focusedPane = 0
				m.commandInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.commandInput.Value())
				m.commandInput.SetValue("")
				if cmd := m.processCommand(input); cmd != nil {
					return m, cmd
				}
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
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.commandInput, cmd = m.commandInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processCommand parses and executes one dot-command. Hand and
// submission numbers are 1-based on screen.
func (m *Model) processCommand(input string) tea.Cmd {
	if input == "" {
		return nil
	}
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case ".play":
		points := 0
		if len(args) > 0 {
			if points, err = strconv.Atoi(args[0]); err != nil {
				m.addLogEntry(ErrorStyle.Render("Usage: .play [points]"))
				return nil
			}
		}
		err = m.conn.Play(points)

	case ".ready":
		err = m.conn.Ready()

	case ".choose":
		indices, convErr := parseIndices(args)
		if convErr != nil {
			m.addLogEntry(ErrorStyle.Render("Usage: .choose <card number> [card number...]"))
			return nil
		}
		err = m.conn.Choose(indices)

	case ".pick":
		if len(args) != 1 {
			m.addLogEntry(ErrorStyle.Render("Usage: .pick <submission number>"))
			return nil
		}
		index, convErr := strconv.Atoi(args[0])
		if convErr != nil || index < 1 {
			m.addLogEntry(ErrorStyle.Render("Usage: .pick <submission number>"))
			return nil
		}
		err = m.conn.Pick(index - 1)

	case ".score":
		err = m.conn.Score()

	case ".leave":
		err = m.conn.LeaveRoom()

	case ".quit":
		m.quitting = true
		_ = m.conn.Disconnect()
		return tea.Sequence(tea.ClearScreen, tea.Quit)

	default:
		m.addLogEntry(InfoStyle.Render("Unknown command: " + command))
		return nil
	}

	if err != nil {
		m.addLogEntry(ErrorStyle.Render("Send failed: " + err.Error()))
	}
	return nil
}

// parseIndices converts 1-based screen numbers to 0-based hand indices.
func parseIndices(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no card numbers")
	}
	indices := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad card number %q", arg)
		}
		indices[i] = n - 1
	}
	return indices, nil
}

// applyMessage folds a server message into the model and returns the
// chat lines it produces.
func (m *Model) applyMessage(msg *server.Message) []string {
	switch msg.Type {
	case server.MessageTypeWelcome:
		var data server.WelcomeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		return []string{SuccessStyle.Render("Connected as " + data.Name)}

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		return []string{ErrorStyle.Render(data.Message)}

	case server.MessageTypeNotice:
		var data server.NoticeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		return []string{NoticeStyle.Render(data.Text)}

	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.room = data.Room
		return []string{SuccessStyle.Render(fmt.Sprintf("Joined %s with %s",
			data.Room, strings.Join(data.Members, ", ")))}

	case server.MessageTypeRoundStart:
		var data server.RoundStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.prompt = data.Prompt
		m.judge = data.Judge
		m.required = data.Required
		m.submissions = nil
		lines := []string{
			PromptStyle.Render(data.Prompt),
			JudgeStyle.Render(data.Judge + " is judging this round."),
		}
		if data.Judge == m.name {
			lines = append(lines, JudgeStyle.Render("Sit back while the others choose."))
		}
		return lines

	case server.MessageTypeHand:
		var data server.HandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.hand = data.Cards
		m.prompt = data.Prompt
		m.judge = data.Judge
		m.required = data.Required
		return nil

	case server.MessageTypePlayerChose:
		var data server.PlayerChoseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		line := fmt.Sprintf("%s made their choice. Waiting on: %s",
			data.Player, strings.Join(data.StillChoosing, ", "))
		return []string{InfoStyle.Render(line)}

	case server.MessageTypePickStart:
		var data server.PickStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.submissions = data.Submissions
		lines := []string{PromptStyle.Render("All answers are in:")}
		for i, submission := range data.Submissions {
			lines = append(lines, CardStyle.Render(fmt.Sprintf("  %d. %s", i+1, submission)))
		}
		if data.Judge == m.name {
			lines = append(lines, JudgeStyle.Render("Pick your favorite with .pick <number>"))
		}
		return lines

	case server.MessageTypeRoundResult:
		var data server.RoundResultData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.submissions = nil
		return []string{SuccessStyle.Render(fmt.Sprintf("%s wins the round with '%s' (%d points).",
			data.Winner, data.Text, data.Points))}

	case server.MessageTypeScores:
		var data server.ScoresData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		return scoreTable("Scores:", data.Scores)

	case server.MessageTypeGameOver:
		var data server.GameOverData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil
		}
		m.hand = nil
		m.prompt = ""
		m.judge = ""
		m.submissions = nil
		return scoreTable(WarningStyle.Render("Game over!"), data.Scores)

	case server.MessageTypeGameCreated, server.MessageTypePlayerJoined, server.MessageTypePlayerLeft:
		// The accompanying notices already narrate these.
		return nil
	}
	return nil
}

func scoreTable(header string, scores []server.ScoreLine) []string {
	lines := []string{header}
	for _, s := range scores {
		lines = append(lines, fmt.Sprintf("  %s: %d point(s) (%dW/%dL/%dQ lifetime)",
			s.Name, s.Points, s.Wins, s.Losses, s.Quits))
	}
	return lines
}

func (m *Model) addLogEntry(entry string) {
	m.chatLog = append(m.chatLog, entry)
	m.logViewport.SetContent(strings.Join(m.chatLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	handContent := m.renderHandPane()
	handHeight := lipgloss.Height(handContent)
	handWidth := m.width - 2
	if handWidth < 1 {
		handWidth = 1
	}
	innerHandHeight := handHeight - 2
	if innerHandHeight < 1 {
		innerHandHeight = 1
	}

	handStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(handWidth).
		Height(innerHandHeight)
	if m.focusedPane == 1 {
		handStyle = handStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	handPane := handStyle.Render(handContent)

	logWidth := m.width - 4
	logHeight := m.height - handHeight - 4
	if logWidth < 1 {
		logWidth = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Top, logPane, handPane)
}

// renderHandPane renders the prompt, the player's hand, and the input.
func (m *Model) renderHandPane() string {
	var content strings.Builder

	if m.prompt != "" {
		content.WriteString(PromptStyle.Render(m.prompt))
		if m.judge == m.name {
			content.WriteString("  ")
			content.WriteString(JudgeStyle.Render("(you are the judge)"))
		} else if m.required > 1 {
			content.WriteString("  ")
			content.WriteString(InfoStyle.Render(fmt.Sprintf("(play %d cards)", m.required)))
		}
		content.WriteString("\n")
	}

	if len(m.hand) > 0 && m.judge != m.name {
		for i, card := range m.hand {
			content.WriteString(CardStyle.Render(fmt.Sprintf("%2d. %s", i+1, card)))
			content.WriteString("\n")
		}
	}

	content.WriteString(m.commandInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}
