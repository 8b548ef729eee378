package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Search       key.Binding
	NextTab      key.Binding
	Tab          key.Binding
	Category     key.Binding
	Select       key.Binding
	SelectAll    key.Binding
	Clear        key.Binding
	Complete     key.Binding
	Status       key.Binding
	Delete       key.Binding
	BulkDelete   key.Binding
	BulkComplete key.Binding
	Pomodoro     key.Binding
	PomodoroStop key.Binding
	Refresh      key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextTab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "status")),
		Tab:          key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "tab")),
		Category:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Select:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Clear:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Complete:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "done")),
		Status:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		BulkDelete:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		BulkComplete: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "complete selected")),
		Pomodoro:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pomodoro")),
		PomodoroStop: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "stop timer")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Search, k.NextTab, k.Category, k.Select, k.SelectAll, k.Complete, k.Status, k.Delete, k.BulkDelete, k.BulkComplete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Search, k.NextTab, k.Tab, k.Category},
		{k.Select, k.SelectAll, k.Clear},
		{k.Complete, k.Status, k.Delete, k.BulkDelete, k.BulkComplete},
		{k.Pomodoro, k.PomodoroStop, k.Refresh, k.Quit},
	}
}
