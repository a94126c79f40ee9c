package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("244")
	colorOK      = lipgloss.Color("42")
	colorWarn    = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("203")
	colorBarBg   = lipgloss.Color("#111827")
	colorActiveT = lipgloss.Color("#F9FAFB")

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorActiveT).Background(colorAccent).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	labelStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	disabledStyle    = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	errorStyle       = lipgloss.NewStyle().Foreground(colorError)
	boxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
)

func renderStatusBar(status string, isErr bool, hints string, width int) string {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if isErr {
		st = st.Foreground(colorError)
	}
	left := st.Render("  " + status)
	right := lipgloss.NewStyle().Foreground(colorMuted).Render(hints + " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	pad := lipgloss.NewStyle().Width(gap).Render("")
	return lipgloss.NewStyle().Background(colorBarBg).Width(width).Render(left + pad + right)
}
