package core

import (
	"context"

	"pkt.systems/nikiai/schema"
)

// Mentions returns the notes attached to the next request.
func (s *Session) Mentions() []schema.NoteRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.NoteRef(nil), s.mentions...)
}

// AddMention attaches ref to the next request. Duplicate paths are ignored.
func (s *Session) AddMention(ctx context.Context, ref schema.NoteRef) bool {
	s.mu.Lock()
	for _, existing := range s.mentions {
		if existing.Path == ref.Path {
			s.mu.Unlock()
			return false
		}
	}
	s.mentions = append(s.mentions, ref)
	mentions := append([]schema.NoteRef(nil), s.mentions...)
	s.mu.Unlock()
	s.log(ctx).Debug("session mention add", "note", ref.Path, "external", ref.External)
	s.emit(schema.SessionEvent{Type: schema.EventMentionsChanged, Mentions: mentions})
	s.persist(ctx)
	return true
}

// Mention resolves a typed path, absolute path or note URI and attaches it.
func (s *Session) Mention(ctx context.Context, raw string) (schema.NoteRef, error) {
	ref, err := s.notes.ResolveMention(raw)
	if err != nil {
		return schema.NoteRef{}, err
	}
	if s.AddMention(ctx, ref) {
		s.Notify("Added: %s", ref.Basename)
	}
	return ref, nil
}

// RemoveMention detaches the note with path p.
func (s *Session) RemoveMention(ctx context.Context, p schema.NotePath) bool {
	s.mu.Lock()
	kept := s.mentions[:0:0]
	for _, ref := range s.mentions {
		if ref.Path != p {
			kept = append(kept, ref)
		}
	}
	removed := len(kept) != len(s.mentions)
	s.mentions = kept
	mentions := append([]schema.NoteRef(nil), kept...)
	s.mu.Unlock()
	if removed {
		s.emit(schema.SessionEvent{Type: schema.EventMentionsChanged, Mentions: mentions})
		s.persist(ctx)
	}
	return removed
}

// ClearMentions detaches every note.
func (s *Session) ClearMentions(ctx context.Context) {
	s.mu.Lock()
	s.mentions = nil
	s.mu.Unlock()
	s.emit(schema.SessionEvent{Type: schema.EventMentionsChanged})
	s.persist(ctx)
}

// MentionTrigger handles an "@" typed at cursor (a rune offset into text).
// When the "@" starts the text or follows a space and a note is active, the
// active note is mentioned, the "@" is removed and open reports that the note
// picker should be shown.
func (s *Session) MentionTrigger(ctx context.Context, text string, cursor int) (string, int, bool) {
	runes := []rune(text)
	if cursor <= 0 || cursor > len(runes) || runes[cursor-1] != '@' {
		return text, cursor, false
	}
	if cursor > 1 && runes[cursor-2] != ' ' {
		return text, cursor, false
	}
	active := s.ActiveNote()
	if active == "" {
		return text, cursor, false
	}
	s.AddMention(ctx, s.notes.Ref(active))
	out := string(runes[:cursor-1]) + string(runes[cursor:])
	return out, cursor - 1, true
}

// Search lists notes whose path contains filter, for the mention picker.
func (s *Session) Search(filter string) ([]schema.NoteRef, error) {
	return s.notes.Search(filter, PickerLimit)
}
