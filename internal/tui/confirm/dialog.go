// Package confirm is a yes/no dialog for destructive TUI actions.
package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultMsg is emitted once the dialog is answered.
type ResultMsg struct {
	Confirmed bool
	Action    string
	Target    string
}

// Model is the dialog state. The zero value is inactive.
type Model struct {
	Title   string
	Message string
	Action  string
	Target  string
	active  bool
	yes     bool
}

// New returns an active dialog with "No" preselected.
func New(title, message, action, target string) Model {
	return Model{
		Title:   title,
		Message: message,
		Action:  action,
		Target:  target,
		active:  true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) result(confirmed bool) tea.Cmd {
	res := ResultMsg{Confirmed: confirmed, Action: m.Action, Target: m.Target}
	return func() tea.Msg { return res }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.active = false
		return m, m.result(true)
	case "n", "N", "esc", "q":
		m.active = false
		return m, m.result(false)
	case "enter":
		m.active = false
		return m, m.result(m.yes)
	case "tab", "left", "right", "h", "l":
		m.yes = !m.yes
	}
	return m, nil
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F59E0B")).
		Padding(1, 2).
		Width(56)

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")).Render(m.Title)

	yes := lipgloss.NewStyle().Padding(0, 1)
	no := lipgloss.NewStyle().Padding(0, 1)
	if m.yes {
		yes = yes.Bold(true).Background(lipgloss.Color("#10B981")).Foreground(lipgloss.Color("#F9FAFB"))
		no = no.Foreground(lipgloss.Color("#6B7280"))
	} else {
		yes = yes.Foreground(lipgloss.Color("#6B7280"))
		no = no.Bold(true).Background(lipgloss.Color("#EF4444")).Foreground(lipgloss.Color("#F9FAFB"))
	}

	return box.Render(fmt.Sprintf("%s\n\n%s\n\n%s  %s\n\ny/n to confirm, esc to cancel",
		title, m.Message, yes.Render("Yes"), no.Render("No")))
}
