// Package tui implements the terminal chat panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pkt.systems/nikiai/core"
	"pkt.systems/nikiai/internal/eventbus"
	"pkt.systems/nikiai/internal/format"
	"pkt.systems/nikiai/internal/vault"
	"pkt.systems/nikiai/schema"
)

// EmptyText is shown before the first message.
const EmptyText = "Start a conversation with Niki AI."

// Options configures the panel.
type Options struct {
	// Theme is the markdown theme passed to format.NewMarkdownRenderer.
	Theme string
	// NoteEvents delivers vault changes; nil disables change notices.
	NoteEvents <-chan vault.Event
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
	// Bus receives session events; nil creates a private bus.
	Bus *eventbus.Bus
}

type replyMsg struct {
	msg schema.Message
	err error
}

type changesMsg struct {
	index int
	count int
	err   error
}

type sessionEventMsg schema.SessionEvent

type noteEventMsg vault.Event

type copiedMsg struct {
	err error
}

// Model is the Bubble Tea model of the panel.
type Model struct {
	ctx      context.Context
	session  *core.Session
	events   <-chan schema.SessionEvent
	stop     func()
	notes    <-chan vault.Event
	copyText func(string) error

	keys     keyMap
	styles   styles
	md       *format.MarkdownRenderer
	help     help.Model
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	picker   picker

	width    int
	height   int
	showDiff bool
	notice   string

	// histIdx is the recalled input position; -1 while editing a draft.
	histIdx int
	draft   string
}

// New builds the panel model and subscribes it to session events.
func New(ctx context.Context, session *core.Session, opts Options) Model {
	input := textarea.New()
	input.Placeholder = "Ask Niki AI..."
	input.ShowLineNumbers = false
	input.Prompt = "┃ "
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	bus := opts.Bus
	if bus == nil {
		bus = eventbus.New(nil)
		session.SetEventSink(bus)
	}
	events, stop := bus.Subscribe()

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	m := Model{
		ctx:      ctx,
		session:  session,
		events:   events,
		stop:     stop,
		notes:    opts.NoteEvents,
		copyText: copyText,
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
		md:       format.NewMarkdownRenderer(opts.Theme, 78),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		input:    input,
		spinner:  spin,
		picker:   newPicker(),
		width:    80,
		height:   24,
		histIdx:  -1,
	}
	m.refresh()
	return m
}

// Run starts the panel and blocks until the user quits.
func Run(ctx context.Context, session *core.Session, opts Options) error {
	model := New(ctx, session, opts)
	defer model.stop()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, waitForEvent(m.events)}
	if m.notes != nil {
		cmds = append(cmds, waitForNote(m.notes))
	}
	return tea.Batch(cmds...)
}

func waitForEvent(ch <-chan schema.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

func waitForNote(ch <-chan vault.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return noteEventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case sessionEventMsg:
		if msg.Type == schema.EventNotice {
			m.notice = msg.Notice
		}
		m.refresh()
		return m, waitForEvent(m.events)

	case noteEventMsg:
		if active := m.session.ActiveNote(); active != "" && msg.Path == active {
			if msg.Removed {
				m.notice = fmt.Sprintf("%s was removed on disk", active)
			} else {
				m.notice = fmt.Sprintf("%s changed on disk", active)
			}
		}
		return m, waitForNote(m.notes)

	case replyMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.refresh()
		if msg.msg.IsError {
			return m, nil
		}
		return m, m.parseChanges(m.session.LastReply())

	case changesMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Reply copied to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.session.Busy() {
			m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		if m.picker.open() {
			return m.updatePicker(msg)
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
		if msg.String() == "@" {
			if cmd, handled := m.mentionTrigger(); handled {
				return m, cmd
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Newline):
		return m, nil, false
	case key.Matches(msg, m.keys.Send):
		cmd := m.send()
		return m, cmd, true
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear(m.ctx)
		m.showDiff = false
		m.notice = ""
		m.refresh()
		return m, nil, true
	case key.Matches(msg, m.keys.ToggleInclude):
		m.session.SetIncludeNote(m.ctx, !m.session.IncludeNote())
		m.refresh()
		return m, nil, true
	case key.Matches(msg, m.keys.ToggleDiff):
		m.showDiff = !m.showDiff
		m.refresh()
		return m, nil, true
	case key.Matches(msg, m.keys.ApplyAll):
		if idx := m.session.LastReply(); idx >= 0 {
			if _, err := m.session.ApplyAll(m.ctx, idx); err != nil && !errors.Is(err, schema.ErrNoActiveNote) {
				m.notice = err.Error()
			}
		}
		m.refresh()
		return m, nil, true
	case key.Matches(msg, m.keys.Insert):
		if idx := m.session.LastReply(); idx >= 0 {
			if err := m.session.Insert(m.ctx, idx); err != nil && !errors.Is(err, schema.ErrNoActiveNote) {
				m.notice = err.Error()
			}
		}
		return m, nil, true
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyReply(), true
	case key.Matches(msg, m.keys.Mention):
		cmd := m.openPicker(pickMention)
		return m, cmd, true
	case key.Matches(msg, m.keys.OpenNote):
		cmd := m.openPicker(pickActive)
		return m, cmd, true
	case key.Matches(msg, m.keys.DropMention):
		if mentions := m.session.Mentions(); len(mentions) > 0 {
			m.session.RemoveMention(m.ctx, mentions[len(mentions)-1].Path)
		}
		return m, nil, true
	case key.Matches(msg, m.keys.ClearMentions):
		m.session.ClearMentions(m.ctx)
		return m, nil, true
	case key.Matches(msg, m.keys.HistoryPrev) && m.input.Line() == 0:
		handled := m.recall(-1)
		return m, nil, handled
	case key.Matches(msg, m.keys.HistoryNext) && m.histIdx >= 0 && m.input.Line() == m.input.LineCount()-1:
		handled := m.recall(1)
		return m, nil, handled
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfPageUp()
		return m, nil, true
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfPageDown()
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) send() tea.Cmd {
	value := m.input.Value()
	if strings.TrimSpace(value) == "" && len(m.session.Mentions()) == 0 {
		return nil
	}
	if m.session.Busy() {
		m.notice = "Niki is still answering"
		return nil
	}
	m.input.Reset()
	m.histIdx = -1
	m.draft = ""
	m.showDiff = false
	m.notice = ""
	ctx := m.ctx
	session := m.session
	return func() tea.Msg {
		msg, err := session.Send(ctx, value)
		return replyMsg{msg: msg, err: err}
	}
}

// recall moves through sent inputs; stepping past the newest restores the draft.
func (m *Model) recall(step int) bool {
	entries := m.session.InputHistory()
	if len(entries) == 0 {
		return false
	}
	idx := m.histIdx
	switch {
	case idx < 0 && step < 0:
		m.draft = m.input.Value()
		idx = len(entries) - 1
	case idx < 0:
		return false
	default:
		idx += step
	}
	if idx < 0 {
		return true
	}
	if idx >= len(entries) {
		m.histIdx = -1
		m.input.SetValue(m.draft)
		return true
	}
	m.histIdx = idx
	m.input.SetValue(entries[idx])
	return true
}

func (m Model) parseChanges(idx int) tea.Cmd {
	if idx < 0 {
		return nil
	}
	ctx := m.ctx
	session := m.session
	return func() tea.Msg {
		changes, err := session.CodeChanges(ctx, idx)
		return changesMsg{index: idx, count: len(changes), err: err}
	}
}

func (m Model) copyReply() tea.Cmd {
	idx := m.session.LastReply()
	if idx < 0 {
		return nil
	}
	msg, err := m.session.Message(idx)
	if err != nil {
		return nil
	}
	write := m.copyText
	return func() tea.Msg {
		return copiedMsg{err: write(msg.Content)}
	}
}

// mentionTrigger inserts the typed "@" at the cursor and lets the session
// decide whether it mentions the active note.
func (m *Model) mentionTrigger() (tea.Cmd, bool) {
	value := []rune(m.input.Value())
	cursor := cursorOffset(m.input)
	if cursor > len(value) {
		cursor = len(value)
	}
	typed := string(value[:cursor]) + "@" + string(value[cursor:])
	if _, _, open := m.session.MentionTrigger(m.ctx, typed, cursor+1); !open {
		return nil, false
	}
	return m.openPicker(pickMention), true
}

// cursorOffset returns the rune offset of the textarea cursor in its value.
func cursorOffset(input textarea.Model) int {
	lines := strings.Split(input.Value(), "\n")
	row := min(input.Line(), len(lines)-1)
	offset := 0
	for i := 0; i < row; i++ {
		offset += len([]rune(lines[i])) + 1
	}
	info := input.LineInfo()
	return offset + info.StartColumn + info.ColumnOffset
}

func (m *Model) openPicker(mode pickerMode) tea.Cmd {
	cmd := m.picker.show(mode)
	refs, err := m.session.Search("")
	return tea.Batch(cmd, m.picker.setResults(refs, m.session.ActiveNote(), err))
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.picker.hide()
		return m, nil
	case "enter":
		ref, ok := m.picker.selected()
		mode := m.picker.mode
		m.picker.hide()
		if !ok {
			return m, nil
		}
		if mode == pickActive {
			if err := m.session.SetActiveNote(m.ctx, string(ref.Path)); err != nil {
				m.notice = err.Error()
			} else {
				m.notice = "Active note: " + string(ref.Path)
			}
			m.refresh()
			return m, nil
		}
		m.session.AddMention(m.ctx, ref)
		return m, nil
	case "up", "down", "ctrl+j", "ctrl+k":
		var cmd tea.Cmd
		m.picker.list, cmd = m.picker.list.Update(msg)
		return m, cmd
	}
	before := m.picker.search.Value()
	var cmd tea.Cmd
	m.picker.search, cmd = m.picker.search.Update(msg)
	if after := m.picker.search.Value(); after != before {
		refs, err := m.session.Search(after)
		return m, tea.Batch(cmd, m.picker.setResults(refs, m.session.ActiveNote(), err))
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-2, 20))
	m.help.Width = width
	m.md.SetWidth(max(width-4, 20))
	// header, mentions, input, notice and help lines
	chrome := 1 + 1 + m.input.Height() + 1 + 1
	m.viewport.Width = width
	m.viewport.Height = max(height-chrome, 3)
	m.picker.setSize(width, max(height-chrome-2, 4))
}

func (m *Model) refresh() {
	atBottom := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0
	m.viewport.SetContent(m.renderConversation())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderConversation() string {
	messages := m.session.Messages()
	if len(messages) == 0 {
		return m.styles.Empty.Render(EmptyText)
	}
	last := m.session.LastReply()
	blocks := make([]string, 0, len(messages))
	for i, msg := range messages {
		blocks = append(blocks, m.renderMessage(i, msg, i == last))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(i int, msg schema.Message, last bool) string {
	var b strings.Builder
	if msg.Role == schema.RoleUser {
		b.WriteString(m.styles.User.Render("You"))
	} else {
		b.WriteString(m.styles.Niki.Render("Niki"))
	}
	b.WriteString("\n")
	switch {
	case msg.IsPending:
		b.WriteString(m.spinner.View() + " " + m.styles.Pending.Render(core.PendingText))
	case msg.IsError:
		b.WriteString(m.styles.Error.Render(msg.Content))
	case msg.Role == schema.RoleAssistant:
		b.WriteString(m.md.Render(msg.Content))
	default:
		b.WriteString(msg.Content)
	}
	if !last {
		return b.String()
	}
	if actions := m.renderActions(msg); actions != "" {
		b.WriteString("\n")
		b.WriteString(actions)
	}
	if m.showDiff {
		if change, result, err := m.session.Diff(m.ctx, i); err == nil {
			b.WriteString("\n")
			b.WriteString(format.RenderDiff(change.Note, result, format.DefaultDiffStyles()))
		}
	}
	return b.String()
}

func (m Model) renderActions(msg schema.Message) string {
	if !msg.ChangesParsed {
		return ""
	}
	if len(msg.CodeChanges) == 0 {
		return m.styles.Action.Render("[ctrl+o] Insert to note")
	}
	anyApplied, unapplied := false, false
	for _, change := range msg.CodeChanges {
		if change.Applied {
			anyApplied = true
		} else {
			unapplied = true
		}
	}
	label := "[ctrl+d] View changes"
	if anyApplied {
		label = "[ctrl+d] Changes applied"
	}
	actions := []string{label}
	if unapplied {
		actions = append(actions, "[ctrl+s] Apply all changes")
	}
	return m.styles.Action.Render(strings.Join(actions, "  "))
}

func (m Model) View() string {
	header := m.styles.Title.Render("Niki AI")
	active := m.session.ActiveNote()
	if active == "" {
		header += m.styles.Meta.Render("  no active note")
	} else {
		header += m.styles.Meta.Render("  " + string(active))
	}
	include := "[ ]"
	if m.session.IncludeNote() {
		include = "[x]"
	}
	header += m.styles.Meta.Render("  " + include + " Include current note")

	var body string
	if m.picker.open() {
		rows := []string{m.picker.search.View(), m.picker.list.View()}
		if m.picker.err != nil {
			rows = append(rows, m.styles.Error.Render(m.picker.err.Error()))
		}
		body = m.styles.Picker.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	} else {
		body = m.viewport.View()
	}

	parts := []string{header, body, m.renderMentions(), m.input.View(), m.styles.Notice.Render(m.notice), m.help.View(m.keys)}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderMentions() string {
	mentions := m.session.Mentions()
	if len(mentions) == 0 {
		return ""
	}
	tags := make([]string, 0, len(mentions))
	for _, ref := range mentions {
		tags = append(tags, m.styles.Tag.Render("@"+ref.Basename+" ×"))
	}
	return strings.Join(tags, " ")
}
