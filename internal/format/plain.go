package format

import (
	"fmt"
	"strings"

	"pkt.systems/nikiai/schema"
)

const (
	// UserMarker prefixes lines typed by the user.
	UserMarker = "> "
	// ErrorMarker prefixes failed assistant replies.
	ErrorMarker = "! "
	// PendingText is shown while the assistant is working.
	PendingText = "Thinking..."
)

// PlainRenderer formats conversation messages as plain text lines.
type PlainRenderer struct{}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// FormatMessage converts a message into user-facing lines.
func (p *PlainRenderer) FormatMessage(msg schema.Message) []string {
	switch {
	case msg.IsPending:
		return []string{PendingText}
	case msg.Role == schema.RoleUser:
		return markLines(UserMarker, splitLines(msg.Content))
	case msg.IsError:
		return markLines(ErrorMarker, splitLines(msg.Content))
	case msg.Role == schema.RoleSystem:
		return markLines("# ", splitLines(msg.Content))
	default:
		lines := splitLines(msg.Content)
		if len(msg.CodeChanges) > 0 {
			lines = append(lines, "")
			lines = append(lines, FormatCodeChanges(msg.CodeChanges)...)
		}
		return lines
	}
}

// FormatConversation renders every message separated by a blank line.
func (p *PlainRenderer) FormatConversation(messages []schema.Message) []string {
	var out []string
	for i, msg := range messages {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, p.FormatMessage(msg)...)
	}
	return out
}

// FormatCodeChanges lists proposed code blocks with their applied state.
func FormatCodeChanges(changes []schema.CodeChange) []string {
	if len(changes) == 0 {
		return nil
	}
	lines := []string{"code changes:"}
	for _, change := range changes {
		prefix := "[ ]"
		if change.Applied {
			prefix = "[x]"
		}
		label := strings.TrimSpace(change.Language)
		if label == "" {
			label = "text"
		}
		target := string(change.Note)
		if target == "" {
			target = "current note"
		}
		lines = append(lines, fmt.Sprintf("%s block %d (%s) for %s", prefix, change.BlockIndex+1, label, target))
	}
	return lines
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func markLines(marker string, lines []string) []string {
	if marker == "" || len(lines) == 0 {
		return lines
	}
	marked := make([]string, 0, len(lines))
	for _, line := range lines {
		marked = append(marked, marker+line)
	}
	return marked
}
