package tui

import (
	"fmt"
	"strings"

	"partselect-chat/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#337778"))
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1b3875"))
	assistantStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#337778"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle       = lipgloss.NewStyle().Faint(true)
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#337778"))
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.suggestionsLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • f1-f3 suggestions • pgup/pgdn scroll • esc quit"))
	return b.String()
}

// transcript renders every turn with content. Empty turns have no bubble.
func (m Model) transcript() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("PartSelect Chat"))
	b.WriteString("\n\n")

	for _, turn := range m.conv.Turns() {
		if turn.Content == "" {
			continue
		}
		label := assistantStyle.Render("Assistant")
		if turn.Role == domain.RoleUser {
			label = userStyle.Render("You")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(turn.Content))
		b.WriteString("\n\n")
	}

	if m.sending {
		b.WriteString(m.spinner.View())
		b.WriteString(" thinking...")
	}
	return b.String()
}

func (m Model) suggestionsLine() string {
	parts := make([]string, 0, len(domain.SuggestedQuestions))
	for i, q := range domain.SuggestedQuestions {
		parts = append(parts, fmt.Sprintf("[F%d] %s", i+1, q))
	}
	return suggestionStyle.Render(strings.Join(parts, "  "))
}
