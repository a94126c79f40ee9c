package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"logmon/internal/session"
	"logmon/internal/tui/confirm"
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Sessions() []*session.Session
	AddSession(logPath string, filters ...string) (*session.Session, error)
	SetLogPath(id, logPath string) error
	CloseSession(id string) error
	ReopenSession(logPath string) (*session.Session, error)
	ParkedPaths() []string
	DeleteSession(id string) error
	LastSaveError() error
}

// Options tunes the TUI.
type Options struct {
	// ShowHelp opens the key overview on start, used on first run.
	ShowHelp bool
	// Notice is shown in the status bar on start.
	Notice string
}

const refreshInterval = time.Second

type promptKind int

const (
	promptPath promptKind = iota
	promptAddFilter
	promptEditFilter
	promptRename
	promptDumpFile
	promptExportCSV
	promptReopen
)

type prompt struct {
	kind      promptKind
	label     string
	hint      string
	sessionID string
	index     int
	input     textinput.Model
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	sessions []*session.Session
	active   int
	cursors  map[string]int

	prompt   *prompt
	confirm  confirm.Model
	showHelp bool

	status    string
	statusErr bool

	width  int
	height int
}

// New constructs a TUI model over ctrl.
func New(ctrl Controller, opts Options) *Model {
	m := &Model{
		controller: ctrl,
		cursors:    make(map[string]int),
		showHelp:   opts.ShowHelp,
		status:     "Ready",
		width:      80,
	}
	if opts.Notice != "" {
		m.status = opts.Notice
	}
	m.refresh()
	return m
}

// Run spins up the Bubble Tea program.
func Run(ctrl Controller, opts Options) error {
	prog := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

type tickMsg time.Time

type opResultMsg struct {
	status string
	err    error
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case opResultMsg:
		m.refresh()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.status)
		}
		return m, nil

	case confirm.ResultMsg:
		return m, m.handleConfirm(msg)

	case tea.KeyMsg:
		if m.confirm.IsActive() {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.prompt != nil {
			return m, m.updatePrompt(msg)
		}
		if m.showHelp {
			m.showHelp = false
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.sessions = m.controller.Sessions()
	if m.active >= len(m.sessions) {
		m.active = len(m.sessions) - 1
	}
	if m.active < 0 {
		m.active = 0
	}
}

func (m *Model) current() *session.Session {
	if m.active < 0 || m.active >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.active]
}

func (m *Model) cursor(s *session.Session) int {
	n := len(s.Filters())
	c := m.cursors[s.ID()]
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	m.cursors[s.ID()] = c
	return c
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = "Error: " + err.Error()
	m.statusErr = true
}

// afterChange reports a failed save of the monitor config.
func (m *Model) afterChange(ok string) {
	if err := m.controller.LastSaveError(); err != nil {
		m.setError(fmt.Errorf("could not save config: %w", err))
		return
	}
	if ok != "" {
		m.setStatus(ok)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.current()

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = true
	case key.Matches(msg, keys.NextTab):
		if len(m.sessions) > 0 {
			m.active = (m.active + 1) % len(m.sessions)
		}
	case key.Matches(msg, keys.PrevTab):
		if len(m.sessions) > 0 {
			m.active = (m.active - 1 + len(m.sessions)) % len(m.sessions)
		}
	case key.Matches(msg, keys.NewTab):
		ns, err := m.controller.AddSession("")
		if err != nil {
			m.setError(err)
			return nil
		}
		m.refresh()
		m.active = len(m.sessions) - 1
		return m.openPrompt(promptPath, ns, 0, "Log file", "", "path of the log file to monitor")
	case key.Matches(msg, keys.Reopen):
		parked := m.controller.ParkedPaths()
		if len(parked) == 0 {
			m.setStatus("No closed configs to reopen")
			return nil
		}
		return m.openPrompt(promptReopen, nil, 0, "Reopen", parked[0], "closed: "+strings.Join(parked, ", "))
	}

	if s == nil {
		if isSessionKey(msg) {
			m.setStatus("No log tab open. Press n to add one.")
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if c := m.cursor(s); c > 0 {
			m.cursors[s.ID()] = c - 1
		}
	case key.Matches(msg, keys.Down):
		if c := m.cursor(s); c < len(s.Filters())-1 {
			m.cursors[s.ID()] = c + 1
		}
	case key.Matches(msg, keys.Path):
		return m.openPrompt(promptPath, s, 0, "Log file", s.LogPath(), "path of the log file to monitor")
	case key.Matches(msg, keys.Add):
		return m.openPrompt(promptAddFilter, s, 0, "Add filter", "", "lines must contain this text")
	case key.Matches(msg, keys.Edit):
		fs := s.Filters()
		if len(fs) == 0 {
			return nil
		}
		c := m.cursor(s)
		return m.openPrompt(promptEditFilter, s, c, "Edit filter", fs[c].Text, "")
	case key.Matches(msg, keys.Remove):
		if len(s.Filters()) == 0 {
			return nil
		}
		if err := s.RemoveFilter(m.cursor(s)); err != nil {
			m.setError(err)
			return nil
		}
		m.afterChange("Filter removed")
	case key.Matches(msg, keys.Toggle):
		fs := s.Filters()
		if len(fs) == 0 {
			return nil
		}
		c := m.cursor(s)
		if err := s.ToggleFilter(c, !fs[c].Enabled); err != nil {
			m.setError(err)
			return nil
		}
		m.afterChange("")
	case key.Matches(msg, keys.Start):
		m.setStatus("Starting monitor…")
		return startCmd(s)
	case key.Matches(msg, keys.Stop):
		return stopCmd(s)
	case key.Matches(msg, keys.DumpTerm):
		return dumpTerminalCmd(s)
	case key.Matches(msg, keys.DumpFile):
		return m.openPrompt(promptDumpFile, s, 0, "Dump to file", suggestName(s.LogPath(), ".txt"), "destination file, overwritten")
	case key.Matches(msg, keys.ExportCSV):
		return m.openPrompt(promptExportCSV, s, 0, "Export CSV", suggestName(s.LogPath(), ".csv"), "destination file, overwritten")
	case key.Matches(msg, keys.Rename):
		return m.openPrompt(promptRename, s, 0, "Tab name", s.Title(), "")
	case key.Matches(msg, keys.Close):
		if err := m.controller.CloseSession(s.ID()); err != nil {
			m.setError(err)
			return nil
		}
		m.refresh()
		m.setStatus(fmt.Sprintf("Closed %s (config kept, o to reopen)", s.Title()))
	case key.Matches(msg, keys.Delete):
		m.confirm = confirm.New("Delete log config",
			fmt.Sprintf("Stop monitoring and remove the saved filters for %s?", s.Title()),
			"delete", s.ID())
	}
	return nil
}

func isSessionKey(msg tea.KeyMsg) bool {
	for _, b := range []key.Binding{keys.Path, keys.Add, keys.Edit, keys.Remove, keys.Toggle, keys.Start,
		keys.Stop, keys.DumpTerm, keys.DumpFile, keys.ExportCSV, keys.Rename, keys.Close, keys.Delete} {
		if key.Matches(msg, b) {
			return true
		}
	}
	return false
}

func suggestName(logPath, ext string) string {
	base := filepath.Base(logPath)
	if logPath == "" || base == "." || base == "/" {
		return "log" + ext
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func (m *Model) openPrompt(kind promptKind, s *session.Session, index int, label, value, hint string) tea.Cmd {
	ti := textinput.New()
	ti.Prompt = label + ": "
	ti.CharLimit = 4096
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	p := &prompt{kind: kind, label: label, hint: hint, index: index, input: ti}
	if s != nil {
		p.sessionID = s.ID()
	}
	m.prompt = p
	return textinput.Blink
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		return nil
	case tea.KeyEnter:
		p := m.prompt
		m.prompt = nil
		return m.submitPrompt(p, strings.TrimSpace(p.input.Value()))
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

func (m *Model) sessionByID(id string) *session.Session {
	for _, s := range m.sessions {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

func (m *Model) submitPrompt(p *prompt, value string) tea.Cmd {
	if p.kind == promptReopen {
		if value == "" {
			return nil
		}
		s, err := m.controller.ReopenSession(value)
		if err != nil {
			m.setError(err)
			return nil
		}
		m.refresh()
		m.focus(s)
		m.setStatus("Reopened " + s.Title())
		return nil
	}

	s := m.sessionByID(p.sessionID)
	if s == nil {
		m.setError(errors.New("the log tab is no longer open"))
		return nil
	}

	switch p.kind {
	case promptPath:
		if err := m.controller.SetLogPath(s.ID(), value); err != nil {
			m.setError(err)
			return nil
		}
		m.afterChange("Log file set to " + valueOr(s.LogPath(), "(none)"))
	case promptAddFilter:
		if s.AddFilter(value) {
			m.cursors[s.ID()] = len(s.Filters()) - 1
			m.afterChange("Filter added")
		}
	case promptEditFilter:
		changed, err := s.EditFilter(p.index, value)
		if err != nil {
			m.setError(err)
			return nil
		}
		if changed {
			m.afterChange("Filter updated")
		}
	case promptRename:
		s.SetTitle(value)
	case promptDumpFile:
		if value == "" {
			return nil
		}
		return dumpFileCmd(s, value)
	case promptExportCSV:
		if value == "" {
			return nil
		}
		return exportCSVCmd(s, value)
	}
	return nil
}

func (m *Model) focus(s *session.Session) {
	for i, other := range m.sessions {
		if other == s {
			m.active = i
			return
		}
	}
}

func (m *Model) handleConfirm(msg confirm.ResultMsg) tea.Cmd {
	if !msg.Confirmed || msg.Action != "delete" {
		return nil
	}
	s := m.sessionByID(msg.Target)
	title := "log config"
	if s != nil {
		title = s.Title()
	}
	err := m.controller.DeleteSession(msg.Target)
	m.refresh()
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus("Deleted " + title)
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(m.renderHelp())
	case m.confirm.IsActive():
		b.WriteString(m.confirm.View())
	default:
		b.WriteString(m.renderSession())
	}
	b.WriteString("\n")

	if m.prompt != nil {
		body := m.prompt.input.View()
		if m.prompt.hint != "" {
			body += "\n" + labelStyle.Render(m.prompt.hint+" • enter to accept, esc to cancel")
		}
		b.WriteString(boxStyle.Render(body))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusBar(m.status, m.statusErr, "? help • q quit", m.width))
	return b.String()
}

func (m *Model) renderTabs() string {
	if len(m.sessions) == 0 {
		return inactiveTabStyle.Render("logmon")
	}
	tabs := make([]string, 0, len(m.sessions))
	for i, s := range m.sessions {
		title := s.Title()
		if s.State() == session.Running {
			title = "● " + title
		}
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func stateLine(s *session.Session) string {
	switch s.State() {
	case session.Running:
		return lipgloss.NewStyle().Foreground(colorOK).Render(fmt.Sprintf("Monitoring (pid %d)", s.PID()))
	case session.StoppedExternally:
		return lipgloss.NewStyle().Foreground(colorWarn).Render("Stopped externally")
	default:
		return labelStyle.Render("Idle")
	}
}

func (m *Model) renderSession() string {
	s := m.current()
	if s == nil {
		return labelStyle.Render("No logs configured. Press n to add one, o to reopen a closed one.")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Log file: "))
	if p := s.LogPath(); p != "" {
		b.WriteString(p)
	} else {
		b.WriteString(errorStyle.Render("(none, press p)"))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Monitor:  "))
	b.WriteString(stateLine(s))
	b.WriteString("\n\n")

	fs := s.Filters()
	if len(fs) == 0 {
		b.WriteString(labelStyle.Render("No filters. Press a to add one; every line is shown."))
		return b.String()
	}
	b.WriteString(labelStyle.Render("Filters (all enabled filters must match):"))
	b.WriteString("\n")
	c := m.cursor(s)
	for i, f := range fs {
		mark := "[ ]"
		text := disabledStyle.Render(f.Text)
		if f.Enabled {
			mark = "[x]"
			text = f.Text
		}
		line := fmt.Sprintf("  %s %s", mark, text)
		if i == c {
			line = cursorStyle.Render("> ") + fmt.Sprintf("%s %s", mark, text)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderHelp() string {
	var cols []string
	for _, group := range keys.helpGroups() {
		var b strings.Builder
		for _, k := range group {
			h := k.Help()
			b.WriteString(cursorStyle.Render(fmt.Sprintf("%-7s", h.Key)))
			b.WriteString(" ")
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(3).Render(strings.TrimRight(b.String(), "\n")))
	}
	intro := "Each tab follows one log file. Enabled filters are combined: a line is\n" +
		"shown only if it contains every one of them. Press any key to continue."
	return boxStyle.Render(intro + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func startCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.StartMonitoring(); err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: fmt.Sprintf("Monitoring %s (pid %d)", s.LogPath(), s.PID())}
	}
}

func stopCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		s.StopMonitoring()
		return opResultMsg{status: "Monitoring stopped"}
	}
}

func dumpTerminalCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.DumpToTerminal(); err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: "Opened " + s.LogPath() + " in a terminal"}
	}
}

func dumpFileCmd(s *session.Session, dst string) tea.Cmd {
	return func() tea.Msg {
		n, err := s.DumpToFile(dst)
		if err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: fmt.Sprintf("Dumped %d bytes to %s", n, dst)}
	}
}

func exportCSVCmd(s *session.Session, dst string) tea.Cmd {
	return func() tea.Msg {
		rows, err := s.ExportCSV(dst)
		if err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: fmt.Sprintf("Exported %d rows to %s", rows, dst)}
	}
}
