package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search      key.Binding
	Accept      key.Binding
	Cancel      key.Binding
	MoreRep     key.Binding
	LessRep     key.Binding
	TimeRange   key.Binding
	SortRep     key.Binding
	SortJobs    key.Binding
	SortEarning key.Binding
	SortName    key.Binding
	Prev        key.Binding
	Next        key.Binding
	Retry       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Accept:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
	MoreRep:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "min rep +5")),
	LessRep:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "min rep -5")),
	TimeRange:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
	SortRep:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "sort reputation")),
	SortJobs:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "sort jobs")),
	SortEarning: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "sort earnings")),
	SortName:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "sort name")),
	Prev:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	Next:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Retry:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.MoreRep, k.LessRep, k.Prev, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Accept, k.Cancel},
		{k.MoreRep, k.LessRep, k.TimeRange},
		{k.SortRep, k.SortJobs, k.SortEarning, k.SortName},
		{k.Prev, k.Next, k.Retry, k.Help, k.Quit},
	}
}
