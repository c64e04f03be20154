package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// ChatPort is the TUI-facing subset of the engine.
type ChatPort interface {
	Query(ctx context.Context, namespace, question string, history []domain.Turn) (domain.Answer, error)
}

// Model is the Bubble Tea model for the chat application. It owns the
// conversation history and feeds it back into every query so follow-up
// questions get rewritten into standalone ones.
type Model struct {
	engine     ChatPort
	namespace  string
	input      textinput.Model
	viewport   viewport.Model
	history    []domain.Turn
	transcript []string
	status     string
	ready      bool
}

// New creates a new chat model bound to a namespace.
func New(engine ChatPort, namespace, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{engine: engine, namespace: namespace, input: ti, viewport: vp, status: "Ready."}
	if banner != "" {
		m.transcript = append(m.transcript, bannerStyle.Render(banner))
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m = m.ask(q)
				m.input.SetValue("")
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) Model {
	answer, err := m.engine.Query(context.Background(), m.namespace, question, m.history)
	m.transcript = append(m.transcript, questionStyle.Render("You: ")+question)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
		m.viewport.GotoBottom()
		return m
	}
	entry := answerStyle.Render("docqa: ") + answer.Text
	if len(answer.SourceIDs) > 0 {
		entry += "\n" + sourceStyle.Render("sources: "+strings.Join(answer.SourceIDs, ", "))
	}
	m.transcript = append(m.transcript, entry)
	m.history = append(m.history,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer.Text},
	)
	m.status = "Answered."
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
	return m
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docqa: ask your documents")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bannerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
