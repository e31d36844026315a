package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the browser's key bindings.
type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	PrevPage       key.Binding
	NextPage       key.Binding
	FirstPage      key.Binding
	LastPage       key.Binding
	PrevColumn     key.Binding
	NextColumn     key.Binding
	NextGrid       key.Binding
	PrevGrid       key.Binding
	Sort           key.Binding
	Filter         key.Binding
	ClearFilters   key.Binding
	Search         key.Binding
	Select         key.Binding
	SelectPage     key.Binding
	ClearSelection key.Binding
	Expand         key.Binding
	HideColumn     key.Binding
	ShowAll        key.Binding
	Narrower       key.Binding
	Wider          key.Binding
	PageSize       key.Binding
	Action         key.Binding
	Export         key.Binding
	Refresh        key.Binding
	Help           key.Binding
	Quit           key.Binding
}

var keys = keyMap{
	Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage:       key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
	NextPage:       key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
	FirstPage:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	LastPage:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	PrevColumn:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev column")),
	NextColumn:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next column")),
	NextGrid:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next grid")),
	PrevGrid:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev grid")),
	Sort:           key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
	Filter:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
	ClearFilters:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filters")),
	Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Select:         key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select row")),
	SelectPage:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	ClearSelection: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
	Expand:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand row")),
	HideColumn:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "hide column")),
	ShowAll:        key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "show all columns")),
	Narrower:       key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrower")),
	Wider:          key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "wider")),
	PageSize:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "page size")),
	Action:         key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "row action")),
	Export:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
	Refresh:        key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
	Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextGrid, k.Search, k.Sort, k.Filter, k.Expand, k.Action, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.FirstPage, k.LastPage, k.PageSize},
		{k.PrevColumn, k.NextColumn, k.Sort, k.Filter, k.ClearFilters, k.Search, k.Narrower, k.Wider},
		{k.Select, k.SelectPage, k.ClearSelection, k.Expand, k.Action, k.HideColumn, k.ShowAll},
		{k.NextGrid, k.PrevGrid, k.Export, k.Refresh, k.Help, k.Quit},
	}
}
