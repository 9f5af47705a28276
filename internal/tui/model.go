package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrag/internal/domain"
)

// QueryPort is the TUI-facing subset of the query service.
type QueryPort interface {
	AnswerQuery(ctx context.Context, query, documentID, collection string, history []domain.ConversationTurn) (domain.QueryResult, error)
}

// Model is the Bubble Tea model for the chat application. Each answered
// query becomes a conversation turn fed back into the next one.
type Model struct {
	service    QueryPort
	input      textinput.Model
	viewport   viewport.Model
	history    []domain.ConversationTurn
	transcript []string
	documentID string
	collection string
	docName    string
	status     string
	ready      bool
	busy       bool
}

// New creates a new chat model bound to one document.
func New(service QueryPort, documentID, collection, docName string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the document and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:    service,
		input:      ti,
		viewport:   vp,
		documentID: documentID,
		collection: collection,
		docName:    docName,
		status:     "Ready. Type a question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

type answerMsg struct {
	query  string
	result domain.QueryResult
	err    error
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		}
		m.transcript = append(m.transcript, renderExchange(msg.query, msg.result))
		m.history = append(m.history, domain.ConversationTurn{User: msg.query, Assistant: msg.result.Answer})
		m.status = statusFor(msg.result)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				m.input.SetValue("")
				history := m.history
				return m, func() tea.Msg {
					res, err := m.service.AnswerQuery(context.Background(), q, m.documentID, m.collection, history)
					return answerMsg{query: q, result: res, err: err}
				}
			}
		case "up":
			m.viewport.LineUp(3)
			return m, nil
		case "down":
			m.viewport.LineDown(3)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docrag: " + m.docName)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No questions yet."
	}
	return strings.Join(m.transcript, "\n\n")
}

func renderExchange(query string, res domain.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(userStyle.Render("You: ") + query + "\n")
	sb.WriteString(answerStyle.Render(res.Answer))
	if len(res.Sources) > 0 {
		sb.WriteString("\n" + sourceStyle.Render(renderSources(res.Sources)))
	}
	return sb.String()
}

func renderSources(sources []domain.Source) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("[%d] %s p.%d (%.2f)", s.Ordinal, s.Document, s.Page, s.Score)
	}
	return "Sources: " + strings.Join(parts, "  ")
}

func statusFor(res domain.QueryResult) string {
	if res.Failure != domain.FailureNone {
		return "Degraded answer: " + res.Failure.String()
	}
	return fmt.Sprintf("Answered with %d sources", len(res.Sources))
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle        = lipgloss.NewStyle()
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
