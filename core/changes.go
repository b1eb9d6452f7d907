package core

import (
	"context"
	"fmt"

	"pkt.systems/nikiai/internal/codeblock"
	"pkt.systems/nikiai/internal/linediff"
	"pkt.systems/nikiai/internal/logx"
	"pkt.systems/nikiai/schema"
)

// CodeChanges returns the fenced code blocks of reply i as proposed
// replacements for the active note. The result is computed once and cached
// on the message.
func (s *Session) CodeChanges(ctx context.Context, i int) ([]schema.CodeChange, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.messages) {
		s.mu.Unlock()
		return nil, schema.ErrMessageNotFound
	}
	msg := s.messages[i]
	active := s.active
	s.mu.Unlock()
	if !isReply(msg) {
		return nil, schema.ErrNotAssistantReply
	}
	if msg.ChangesParsed {
		return append([]schema.CodeChange(nil), msg.CodeChanges...), nil
	}

	var changes []schema.CodeChange
	if active != "" && len(codeblock.Extract(msg.Content)) > 0 {
		original, err := s.notes.CachedRead(active)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", active, err)
		}
		changes = codeblock.Changes(msg.Content, active, original)
	}

	s.mu.Lock()
	if idx := s.indexOf(msg.ID); idx >= 0 {
		s.messages[idx].CodeChanges = changes
		s.messages[idx].ChangesParsed = true
	}
	s.mu.Unlock()
	logx.WithMessage(s.log(ctx), msg.ID).Debug("session code changes parsed", "count", len(changes))
	s.persist(ctx)
	return append([]schema.CodeChange(nil), changes...), nil
}

// Diff compares the first code change of reply i against the note content it
// was parsed from.
func (s *Session) Diff(ctx context.Context, i int) (schema.CodeChange, linediff.Result, error) {
	changes, err := s.CodeChanges(ctx, i)
	if err != nil {
		return schema.CodeChange{}, linediff.Result{}, err
	}
	if len(changes) == 0 {
		return schema.CodeChange{}, linediff.Result{}, schema.ErrNoCodeChanges
	}
	change := changes[0]
	return change, linediff.Compute(change.OriginalContent, change.NewContent), nil
}

// Apply writes code block `block` of reply i to its note.
func (s *Session) Apply(ctx context.Context, i, block int) error {
	changes, err := s.CodeChanges(ctx, i)
	if err != nil {
		return err
	}
	for _, change := range changes {
		if change.BlockIndex == block {
			return s.apply(ctx, i, change)
		}
	}
	return fmt.Errorf("%w: block %d", schema.ErrNoCodeChanges, block)
}

// ApplyAll applies every change of reply i that has not been applied yet and
// returns how many were written.
func (s *Session) ApplyAll(ctx context.Context, i int) (int, error) {
	changes, err := s.CodeChanges(ctx, i)
	if err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, schema.ErrNoCodeChanges
	}
	applied := 0
	for _, change := range changes {
		if change.Applied {
			continue
		}
		if err := s.apply(ctx, i, change); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func (s *Session) apply(ctx context.Context, i int, change schema.CodeChange) error {
	target := change.Note
	if target == "" {
		target = s.ActiveNote()
	}
	if target == "" {
		s.Notify("No active file to apply changes to.")
		return schema.ErrNoActiveNote
	}
	log := logx.WithNote(s.log(ctx), target)
	if err := s.notes.Modify(target, change.NewContent); err != nil {
		log.Warn("session apply failed", "block", change.BlockIndex, "err", err)
		s.Notify("Failed to apply changes: %v", err)
		return err
	}

	s.mu.Lock()
	var updated *schema.Message
	if i >= 0 && i < len(s.messages) {
		msg := &s.messages[i]
		for j := range msg.CodeChanges {
			if msg.CodeChanges[j].BlockIndex == change.BlockIndex {
				msg.CodeChanges[j].Applied = true
			}
		}
		copied := copyMessage(*msg)
		updated = &copied
	}
	s.mu.Unlock()

	log.Info("session apply ok", "block", change.BlockIndex)
	if updated != nil {
		s.emit(schema.SessionEvent{Type: schema.EventMessageUpdated, Message: updated})
	}
	s.Notify("Changes applied to %s", target)
	s.persist(ctx)
	return nil
}

// Insert appends reply i to the end of the active note.
func (s *Session) Insert(ctx context.Context, i int) error {
	msg, err := s.Message(i)
	if err != nil {
		return err
	}
	if !isReply(msg) {
		return schema.ErrNotAssistantReply
	}
	active := s.ActiveNote()
	if active == "" {
		s.Notify("No active note to insert into.")
		return schema.ErrNoActiveNote
	}
	log := logx.WithNote(s.log(ctx), active)
	if err := s.notes.Append(active, msg.Content); err != nil {
		log.Warn("session insert failed", "err", err)
		return err
	}
	log.Info("session insert ok", "bytes", len(msg.Content))
	s.Notify("Inserted into %s", active)
	return nil
}

func (s *Session) indexOf(id schema.MessageID) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func isReply(msg schema.Message) bool {
	return msg.Role == schema.RoleAssistant && !msg.IsPending && !msg.IsError
}
