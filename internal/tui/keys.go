package tui

import (
	"github.com/charmbracelet/bubbles/key"

	listview "github.com/nullishamy/dakko/internal/tui/list"
)

// browserKeyMap holds the bindings handled by the browser itself.
type browserKeyMap struct {
	Filter      key.Binding
	ClearFilter key.Binding
	Apply       key.Binding
	Append      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply filter"),
		),
		Append: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "load more"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpKeyMap merges the list navigation keys with the browser keys for
// bubbles/help.
type helpKeyMap struct {
	list    listview.KeyMap
	browser browserKeyMap
}

// ShortHelp implements help.KeyMap.
func (h helpKeyMap) ShortHelp() []key.Binding {
	return append(h.list.ShortHelp(), h.browser.Filter, h.browser.Help, h.browser.Quit)
}

// FullHelp implements help.KeyMap.
func (h helpKeyMap) FullHelp() [][]key.Binding {
	return append(h.list.FullHelp(),
		[]key.Binding{h.browser.Filter, h.browser.ClearFilter},
		[]key.Binding{h.browser.Append, h.browser.Help, h.browser.Quit},
	)
}
