// Package tui renders the concierge widget in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"concierge-backend/internal/widget"
)

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Foreground  = lipgloss.Color("#f8f8f2")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
)

var (
	headerStyle  = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Padding(0, 1)
	typingStyle  = lipgloss.NewStyle().Foreground(Comment).Italic(true).MarginLeft(1)
	promptsStyle = lipgloss.NewStyle().Foreground(Comment).MarginLeft(1)
)

var roleToStyle = map[widget.Role]lipgloss.Style{
	widget.RoleUser:      lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Background(Background).Foreground(Pink),
	widget.RoleAssistant: lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Background(Background).Foreground(Cyan),
}

var roleToLabel = map[widget.Role]string{
	widget.RoleUser:      "You",
	widget.RoleAssistant: "Concierge",
}

const (
	headerText  = "WBC Training · AI Concierge"
	typingText  = "Concierge is typing..."
	wrapDefault = 80
)

// updatedMsg is delivered whenever the widget state changes.
type updatedMsg struct{}

type Model struct {
	ctx      context.Context
	widget   *widget.Widget
	viewport viewport.Model
	textarea textarea.Model
	width    int
}

func New(ctx context.Context, w *widget.Widget) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about courses, booking or directions..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	w.Open()

	m := Model{
		ctx:      ctx,
		widget:   w,
		textarea: ta,
		viewport: viewport.New(wrapDefault, 20),
		width:    wrapDefault,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribe(),
	)
}

func (m Model) subscribe() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.widget.Updates():
			return updatedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// send runs the request off the UI goroutine. The widget signals the result
// through Updates.
func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		m.widget.Send(m.ctx, text)
		return nil
	}
}

func (m Model) sendQuickPrompt(i int) tea.Cmd {
	return func() tea.Msg {
		m.widget.SendQuickPrompt(m.ctx, i)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updatedMsg:
		m.refresh()
		return m, m.subscribe()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "ctrl+l":
			m.widget.Clear()
			return m, nil
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" || m.widget.Sending() {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.send(v)
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
			if m.widget.Sending() {
				return m, nil
			}
			return m, m.sendQuickPrompt(int(key[len(key)-1] - '1'))
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	case cursor.BlinkMsg:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m Model) View() string {
	return fmt.Sprintf("%s\n%s\n\n%s",
		headerStyle.Render(headerText),
		m.viewport.View(),
		m.textarea.View(),
	) + "\n"
}

func (m *Model) refresh() {
	m.viewport.SetContent(Render(m.widget.Transcript(), m.widget.Sending(), m.widget.QuickPrompts(), m.width))
	m.viewport.GotoBottom()
}

// Render draws the transcript followed by the typing indicator and any quick
// prompts.
func Render(transcript []widget.Message, sending bool, quickPrompts []string, width int) string {
	wrap := width - 4
	if wrap <= 0 {
		wrap = wrapDefault
	}

	var sb strings.Builder
	for _, msg := range transcript {
		sb.WriteString(formatMessage(msg, wrap))
		sb.WriteString("\n")
	}
	if sending {
		sb.WriteString(typingStyle.Render(typingText))
		sb.WriteString("\n")
	}
	if len(quickPrompts) > 0 && !sending {
		var prompts []string
		for i, p := range quickPrompts {
			if i >= 9 {
				break
			}
			prompts = append(prompts, fmt.Sprintf("[alt+%d] %s", i+1, p))
		}
		sb.WriteString(promptsStyle.Render(wordwrap.String(strings.Join(prompts, "  "), wrap)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatMessage(msg widget.Message, wrap int) string {
	style, ok := roleToStyle[msg.Role]
	if !ok {
		return msg.Text
	}
	wrapped := wordwrap.String(roleToLabel[msg.Role]+": "+strings.TrimSpace(msg.Text), wrap)
	return style.Render(wrapped)
}
