package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings the model matches against. List navigation keys
// belong to the embedded [list.Model].
type keyMap struct {
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	dryRun  key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "tag files")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		dryRun:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle dry run")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new run")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forView lists the bindings shown in the help line of v.
func (k keyMap) forView(v ViewState) []key.Binding {
	switch v {
	case FileListView:
		return []key.Binding{k.enter, k.dryRun, k.quit}
	case ConfirmView:
		return []key.Binding{k.yes, k.no, k.dryRun}
	case TagView:
		return []key.Binding{k.quit}
	}
	return []key.Binding{k.restart, k.quit}
}
