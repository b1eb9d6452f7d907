package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pkt.systems/nikiai/internal/assistant"
	"pkt.systems/nikiai/internal/logx"
	"pkt.systems/nikiai/internal/persist"
	"pkt.systems/nikiai/internal/prompt"
	"pkt.systems/nikiai/internal/resolver"
	"pkt.systems/nikiai/internal/vault"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

const (
	// PendingText is the content of a reply that is still running.
	PendingText = "Niki is thinking..."
	// EmptyReply replaces a blank assistant reply.
	EmptyReply = "(empty response)"
	// NotFoundText is shown when no assistant command can be resolved.
	NotFoundText = "Claude CLI not found. Configure assistant.command or add claude to PATH."
	// PickerLimit caps the number of notes offered by Search.
	PickerLimit = 10
)

// Session is a single panel conversation bound to a vault.
type Session struct {
	cfg      schema.SessionConfig
	notes    NoteStore
	resolver CommandResolver
	runner   Runner
	store    *persist.Store
	sink     EventSink
	logger   pslog.Logger
	now      func() time.Time

	// saveMu orders snapshot and write so the newest state lands last.
	saveMu sync.Mutex

	mu          sync.Mutex
	messages    []schema.Message
	mentions    []schema.NoteRef
	active      schema.NotePath
	includeNote bool
	busy        bool
	inputs      *historyBuffer
}

// NewSession constructs a session, filling missing dependencies from cfg.
func NewSession(cfg schema.SessionConfig, deps SessionDeps) (*Session, error) {
	normalized, err := schema.NormalizeSessionConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Notes == nil {
		notes, err := vault.OpenWithLogger(cfg.VaultDir, deps.Logger)
		if err != nil {
			return nil, err
		}
		deps.Notes = notes
	}
	if deps.Resolver == nil {
		deps.Resolver = resolver.New(resolver.Config{
			Command:    cfg.Command,
			WorkingDir: cfg.EffectiveWorkingDir(),
		})
	}
	if deps.Runner == nil {
		deps.Runner = assistant.NewRunner(assistant.Config{Timeout: cfg.Timeout, MaxOutput: cfg.MaxOutput})
	}
	if deps.Store == nil && cfg.StateDir != "" {
		store, err := persist.NewStoreWithLogger(cfg.StateDir, deps.Logger)
		if err != nil {
			return nil, err
		}
		deps.Store = store
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Session{
		cfg:      cfg,
		notes:    deps.Notes,
		resolver: deps.Resolver,
		runner:   deps.Runner,
		store:    deps.Store,
		sink:     deps.EventSink,
		logger:   logger,
		now:      time.Now,
		inputs:   newHistory(defaultHistoryMax),
	}, nil
}

// Config returns the normalized session config.
func (s *Session) Config() schema.SessionConfig {
	return s.cfg
}

// Notes returns the note store backing the session.
func (s *Session) Notes() NoteStore {
	return s.notes
}

// SetEventSink replaces the sink receiving session events.
func (s *Session) SetEventSink(sink EventSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Restore loads the persisted conversation for the vault. Replies that were
// still pending when the previous process stopped are marked as errors.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	snapshot, ok, err := s.store.Load(s.notes.Root())
	if err != nil || !ok {
		return false, err
	}
	for i := range snapshot.Messages {
		if snapshot.Messages[i].IsPending {
			snapshot.Messages[i].IsPending = false
			snapshot.Messages[i].IsError = true
			snapshot.Messages[i].Content = "(interrupted)"
		}
	}
	s.mu.Lock()
	s.messages = snapshot.Messages
	s.mentions = snapshot.Mentions
	s.active = snapshot.ActiveNote
	s.includeNote = snapshot.IncludeNote
	s.inputs = newHistoryFromPersisted(snapshot.Inputs)
	s.mu.Unlock()
	s.log(ctx).Debug("session restore ok", "messages", len(snapshot.Messages))
	return true, nil
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []schema.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.Message, len(s.messages))
	for i, msg := range s.messages {
		out[i] = copyMessage(msg)
	}
	return out
}

// Message returns the message at index i.
func (s *Session) Message(i int) (schema.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.messages) {
		return schema.Message{}, schema.ErrMessageNotFound
	}
	return copyMessage(s.messages[i]), nil
}

// LastReply returns the index of the newest resolved assistant reply, or -1.
func (s *Session) LastReply() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if msg.Role == schema.RoleAssistant && !msg.IsPending && !msg.IsError {
			return i
		}
	}
	return -1
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Clear drops every message.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.log(ctx).Info("session clear ok")
	s.emit(schema.SessionEvent{Type: schema.EventCleared})
	s.persist(ctx)
}

// ActiveNote returns the note currently open in the panel.
func (s *Session) ActiveNote() schema.NotePath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveNote changes the active note; an empty path clears it.
func (s *Session) SetActiveNote(ctx context.Context, note string) error {
	var p schema.NotePath
	if strings.TrimSpace(note) != "" {
		normalized, err := schema.NormalizeNotePath(note)
		if err != nil {
			return err
		}
		p = normalized
	}
	s.mu.Lock()
	s.active = p
	s.mu.Unlock()
	logx.WithNote(s.log(ctx), p).Debug("session active note set")
	s.persist(ctx)
	return nil
}

// IncludeNote reports whether the active note is attached to every request.
func (s *Session) IncludeNote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.includeNote
}

// SetIncludeNote toggles attaching the active note to requests.
func (s *Session) SetIncludeNote(ctx context.Context, include bool) {
	s.mu.Lock()
	s.includeNote = include
	s.mu.Unlock()
	s.persist(ctx)
}

// Send records input as a user message, runs the assistant and resolves the
// pending reply. Assistant failures become error messages; the returned error
// is reserved for requests that were never started.
func (s *Session) Send(ctx context.Context, input string) (schema.Message, error) {
	content := strings.TrimSpace(input)

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return schema.Message{}, schema.ErrBusy
	}
	if content == "" && len(s.mentions) == 0 {
		s.mu.Unlock()
		return schema.Message{}, schema.ErrEmptyPrompt
	}
	mentions := append([]schema.NoteRef(nil), s.mentions...)
	user := schema.Message{
		ID:        newMessageID(),
		Role:      schema.RoleUser,
		Content:   prompt.DisplayText(content, mentions),
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, user)
	s.inputs.Append(content)
	s.mentions = nil
	history := append([]schema.Message(nil), s.messages...)
	pending := schema.Message{
		ID:        newMessageID(),
		Role:      schema.RoleAssistant,
		Content:   PendingText,
		IsPending: true,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, pending)
	s.busy = true
	active := s.active
	include := s.includeNote
	s.mu.Unlock()

	s.emit(
		schema.SessionEvent{Type: schema.EventMessageAdded, Message: &user},
		schema.SessionEvent{Type: schema.EventMentionsChanged},
		schema.SessionEvent{Type: schema.EventMessageAdded, Message: &pending},
	)
	s.persist(ctx)

	log := logx.WithMessage(logx.WithNote(s.log(ctx), active), pending.ID)
	log.Info("session send start", "mentions", len(mentions), "include_note", include)

	in := prompt.Input{
		System:   s.cfg.DefaultPrompt,
		Mentions: s.readNotes(mentions),
		History:  history,
		User:     content,
	}
	if include && active != "" {
		current := s.readNote(active)
		in.Current = &current
	}
	reply, isError := s.ask(logx.ContextWithVaultLogger(ctx, log, s.notes.Root()), prompt.Build(in))

	resolved, ok := s.resolve(pending.ID, reply, isError)
	if isError {
		log.Warn("session send failed")
	} else {
		log.Info("session send ok", "reply_bytes", len(reply))
	}
	if ok {
		s.emit(schema.SessionEvent{Type: schema.EventMessageUpdated, Message: &resolved})
	}
	s.persist(ctx)
	return resolved, nil
}

func (s *Session) ask(ctx context.Context, text string) (string, bool) {
	inv, err := s.resolver.Resolve(text)
	if err != nil {
		if errors.Is(err, schema.ErrAssistantNotFound) {
			return NotFoundText, true
		}
		return FailureText(err), true
	}
	reply, err := s.runner.Run(ctx, inv)
	if err != nil {
		return FailureText(err), true
	}
	if strings.TrimSpace(reply) == "" {
		return EmptyReply, true
	}
	return strings.TrimSpace(reply), false
}

// FailureText is the reply shown when the assistant could not be run.
func FailureText(err error) string {
	return "Error: could not run the Claude CLI.\n\n" +
		"Please check:\n" +
		"1. The Claude CLI is installed:\n" +
		"   npm install -g @anthropic-ai/claude-code\n" +
		"2. The command runs in a terminal\n" +
		"3. assistant.command in the nikiai config\n\n" +
		"Details: " + err.Error()
}

func (s *Session) resolve(id schema.MessageID, content string, isError bool) (schema.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		s.messages[i].Content = content
		s.messages[i].IsError = isError
		s.messages[i].IsPending = false
		return copyMessage(s.messages[i]), true
	}
	// cleared while running
	return schema.Message{
		ID:        id,
		Role:      schema.RoleAssistant,
		Content:   content,
		IsError:   isError,
		CreatedAt: s.now(),
	}, false
}

func (s *Session) readNotes(refs []schema.NoteRef) []prompt.NoteContent {
	out := make([]prompt.NoteContent, 0, len(refs))
	for _, ref := range refs {
		out = append(out, s.readNote(ref.Path))
	}
	return out
}

func (s *Session) readNote(p schema.NotePath) prompt.NoteContent {
	content, err := s.notes.Read(p)
	return prompt.NoteContent{Path: p, Content: content, Err: err}
}

// Notify sends a notice to the event sink.
func (s *Session) Notify(format string, args ...any) {
	s.emit(schema.SessionEvent{Type: schema.EventNotice, Notice: fmt.Sprintf(format, args...)})
}

func (s *Session) emit(events ...schema.SessionEvent) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return
	}
	for _, event := range events {
		sink.OnSessionEvent(event)
	}
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.mu.Lock()
	snapshot := persist.ConversationSnapshot{
		Vault:       s.notes.Root(),
		ActiveNote:  s.active,
		IncludeNote: s.includeNote,
		Mentions:    append([]schema.NoteRef(nil), s.mentions...),
		Messages:    make([]schema.Message, len(s.messages)),
		Inputs:      s.inputs.Entries(),
	}
	for i, msg := range s.messages {
		snapshot.Messages[i] = copyMessage(msg)
	}
	s.mu.Unlock()
	if err := s.store.Save(snapshot.Vault, snapshot); err != nil {
		s.log(ctx).Warn("session persist failed", "err", err)
	}
}

func (s *Session) log(ctx context.Context) pslog.Logger {
	if ctx == nil {
		return s.logger
	}
	return logx.WithVault(ctx, s.notes.Root())
}

func copyMessage(msg schema.Message) schema.Message {
	if msg.CodeChanges != nil {
		msg.CodeChanges = append([]schema.CodeChange(nil), msg.CodeChanges...)
	}
	return msg
}
