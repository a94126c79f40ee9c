package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	NewTab    key.Binding
	Path      key.Binding
	Add       key.Binding
	Edit      key.Binding
	Remove    key.Binding
	Toggle    key.Binding
	Start     key.Binding
	Stop      key.Binding
	DumpTerm  key.Binding
	DumpFile  key.Binding
	ExportCSV key.Binding
	Rename    key.Binding
	Close     key.Binding
	Delete    key.Binding
	Reopen    key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next log")),
	PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "previous log")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	NewTab:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new log tab")),
	Path:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "set log file")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add filter")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit filter")),
	Remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove filter")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "enable/disable filter")),
	Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start monitoring")),
	Stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop monitoring")),
	DumpTerm:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "dump to terminal")),
	DumpFile:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "dump to file")),
	ExportCSV: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "export CSV")),
	Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename tab")),
	Close:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "close tab (keep config)")),
	Delete:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete log config")),
	Reopen:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reopen closed config")),
}

func (k keyMap) helpGroups() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.NewTab, k.Path, k.Rename, k.Close, k.Delete, k.Reopen},
		{k.Up, k.Down, k.Add, k.Edit, k.Remove, k.Toggle},
		{k.Start, k.Stop, k.DumpTerm, k.DumpFile, k.ExportCSV, k.Help, k.Quit},
	}
}
