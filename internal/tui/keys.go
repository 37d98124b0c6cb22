package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap holds the bindings of the normal mode.
type KeyMap struct {
	Quit           key.Binding
	Help           key.Binding
	Add            key.Binding
	Edit           key.Binding
	Delete         key.Binding
	Undo           key.Binding
	ToggleStatus   key.Binding
	Search         key.Binding
	StatusFilter   key.Binding
	PriorityFilter key.Binding
	CycleSort      key.Binding
	ClearFilters   key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	MoveTop        key.Binding
	MoveBottom     key.Binding
	Stats          key.Binding
	Theme          key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "show/hide commands")),
		Add:            key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Edit:           key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit task")),
		Delete:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		Undo:           key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
		ToggleStatus:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle status")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search tasks")),
		StatusFilter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle status filter")),
		PriorityFilter: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority filter")),
		CycleSort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		ClearFilters:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		NextPage:       key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
		PrevPage:       key.NewBinding(key.WithKeys("left", "b"), key.WithHelp("←/b", "previous page")),
		MoveTop:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "move to top")),
		MoveBottom:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "move to bottom")),
		Stats:          key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "statistics")),
		Theme:          key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle theme")),
	}
}

// Bindings lists the normal-mode bindings in help order.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{
		k.Add, k.Edit, k.Delete, k.Undo, k.ToggleStatus,
		k.Search, k.StatusFilter, k.PriorityFilter, k.CycleSort, k.ClearFilters,
		k.NextPage, k.PrevPage, k.MoveTop, k.MoveBottom,
		k.Stats, k.Theme, k.Help, k.Quit,
	}
}

// tableKeyMap keeps only cursor movement so the table does not swallow the
// letter bindings above.
func tableKeyMap() table.KeyMap {
	return table.KeyMap{
		LineUp:     key.NewBinding(key.WithKeys("up", "k")),
		LineDown:   key.NewBinding(key.WithKeys("down", "j")),
		GotoTop:    key.NewBinding(key.WithKeys("home", "g")),
		GotoBottom: key.NewBinding(key.WithKeys("end", "G")),
	}
}
