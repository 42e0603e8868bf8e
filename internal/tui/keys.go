package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open     key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Grab     key.Binding
	Copy     key.Binding
	Manager  key.Binding
	Toggle   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Top:      key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "to top")),
		Bottom:   key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "to bottom")),
		Grab:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab/drop")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		Manager:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manager")),
		Toggle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "sidebar/table")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Add, k.Edit, k.Delete, k.Grab, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Copy, k.Manager, k.Reload},
		{k.Add, k.Edit, k.Delete},
		{k.MoveUp, k.MoveDown, k.Top, k.Bottom, k.Grab},
		{k.Toggle, k.Help, k.Quit},
	}
}
