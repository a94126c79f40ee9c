package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func answer(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, ResultMsg) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	if cmd == nil {
		t.Fatal("expected a result command")
	}
	res, ok := cmd().(ResultMsg)
	if !ok {
		t.Fatal("expected ResultMsg")
	}
	return m, res
}

func TestEnterDefaultsToNo(t *testing.T) {
	m := New("Delete", "Delete app.log?", "delete", "app.log")
	m, res := answer(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if res.Confirmed || res.Action != "delete" || res.Target != "app.log" {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.IsActive() || m.View() != "" {
		t.Fatal("answered dialog must close")
	}
}

func TestToggleThenEnterConfirms(t *testing.T) {
	m := New("Delete", "sure?", "delete", "x")
	_, res := answer(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	if !res.Confirmed {
		t.Fatal("expected confirmation after toggling to yes")
	}
}

func TestShortcuts(t *testing.T) {
	_, res := answer(t, New("t", "m", "a", "x"), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if !res.Confirmed {
		t.Fatal("y must confirm")
	}
	_, res = answer(t, New("t", "m", "a", "x"), tea.KeyMsg{Type: tea.KeyEsc})
	if res.Confirmed {
		t.Fatal("esc must cancel")
	}
}

func TestInactiveIgnoresKeys(t *testing.T) {
	var m Model
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}); cmd != nil {
		t.Fatal("zero dialog must ignore input")
	}
}
