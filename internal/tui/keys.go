package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send          key.Binding
	Newline       key.Binding
	Clear         key.Binding
	ToggleInclude key.Binding
	ToggleDiff    key.Binding
	ApplyAll      key.Binding
	Insert        key.Binding
	Copy          key.Binding
	Mention       key.Binding
	OpenNote      key.Binding
	DropMention   key.Binding
	ClearMentions key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	HistoryPrev   key.Binding
	HistoryNext   key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:       key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "newline")),
		Clear:         key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		ToggleInclude: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "include note")),
		ToggleDiff:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "diff")),
		ApplyAll:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "apply all")),
		Insert:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "insert")),
		Copy:          key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Mention:       key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "mention")),
		OpenNote:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "open note")),
		DropMention:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "drop mention")),
		ClearMentions: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "clear mentions")),
		ScrollUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		HistoryPrev:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous input")),
		HistoryNext:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next input")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Mention, k.ToggleInclude, k.ToggleDiff, k.ApplyAll, k.Insert, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Newline, k.Clear, k.Quit},
		{k.Mention, k.OpenNote, k.DropMention, k.ClearMentions},
		{k.ToggleInclude, k.ToggleDiff, k.ApplyAll, k.Insert, k.Copy},
		{k.ScrollUp, k.ScrollDown, k.HistoryPrev, k.HistoryNext},
	}
}
