package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/nikiai/schema"
)

type pickerMode int

const (
	pickClosed pickerMode = iota
	pickMention
	pickActive
)

type noteItem struct {
	ref    schema.NoteRef
	active bool
}

func (i noteItem) Title() string {
	if i.active {
		return i.ref.Basename + " (active)"
	}
	return i.ref.Basename
}

func (i noteItem) Description() string { return string(i.ref.Path) }
func (i noteItem) FilterValue() string { return string(i.ref.Path) }

// picker is the note selector shown for mentions and for switching the active note.
type picker struct {
	mode   pickerMode
	search textinput.Model
	list   list.Model
	err    error
}

func newPicker() picker {
	search := textinput.New()
	search.Placeholder = "Search notes..."
	search.Prompt = "@ "
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 40, 12)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	return picker{search: search, list: l}
}

func (p picker) open() bool {
	return p.mode != pickClosed
}

func (p *picker) show(mode pickerMode) tea.Cmd {
	p.mode = mode
	p.err = nil
	p.search.Reset()
	p.list.Select(0)
	return p.search.Focus()
}

func (p *picker) hide() {
	p.mode = pickClosed
	p.search.Blur()
}

func (p *picker) setSize(width, height int) {
	p.search.Width = max(width-6, 10)
	p.list.SetSize(max(width-4, 10), max(height, 4))
}

func (p *picker) setResults(refs []schema.NoteRef, active schema.NotePath, err error) tea.Cmd {
	p.err = err
	items := make([]list.Item, 0, len(refs))
	for _, ref := range refs {
		items = append(items, noteItem{ref: ref, active: ref.Path == active})
	}
	return p.list.SetItems(items)
}

func (p picker) selected() (schema.NoteRef, bool) {
	item, ok := p.list.SelectedItem().(noteItem)
	if !ok {
		return schema.NoteRef{}, false
	}
	return item.ref, true
}
