// Package prompt assembles the text sent to the assistant.
package prompt

import (
	"fmt"
	"strings"

	"pkt.systems/nikiai/schema"
)

// UnreadableNote replaces the content of notes that could not be read.
const UnreadableNote = "(unable to read file)"

// NoteContent is a note attached to a request.
type NoteContent struct {
	Path    schema.NotePath
	Content string
	Err     error
}

// Input collects everything that goes into a request.
type Input struct {
	System   string
	Mentions []NoteContent
	// Current is the active note when "include current note" is enabled.
	Current *NoteContent
	History []schema.Message
	User    string
}

// Build joins the request sections with blank lines.
func Build(in Input) string {
	parts := make([]string, 0, len(in.Mentions)+4)
	if system := strings.TrimSpace(in.System); system != "" {
		parts = append(parts, "[System]\n"+system)
	}
	for _, note := range in.Mentions {
		parts = append(parts, fmt.Sprintf("[@ %s]\n%s", note.Path, noteBody(note)))
	}
	if in.Current != nil && !mentioned(in.Mentions, in.Current.Path) {
		parts = append(parts, fmt.Sprintf("[@ Current note: %s]\n%s", in.Current.Path, noteBody(*in.Current)))
	}
	if history := History(in.History); history != "" {
		parts = append(parts, "[Conversation]\n"+history)
	}
	parts = append(parts, "[User]\n"+in.User)
	return strings.Join(parts, "\n\n")
}

// History renders non-system messages as "ROLE: content" blocks.
func History(messages []schema.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == schema.RoleSystem {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Role)), msg.Content))
	}
	return strings.Join(lines, "\n\n")
}

// DisplayText is what the panel shows for a user message with mentions.
func DisplayText(input string, mentions []schema.NoteRef) string {
	if len(mentions) == 0 {
		return input
	}
	names := make([]string, 0, len(mentions))
	for _, ref := range mentions {
		names = append(names, "@"+ref.Basename)
	}
	return strings.Join(names, ", ") + "\n\n" + input
}

func noteBody(note NoteContent) string {
	if note.Err != nil {
		return UnreadableNote
	}
	return note.Content
}

func mentioned(notes []NoteContent, path schema.NotePath) bool {
	for _, note := range notes {
		if note.Path == path {
			return true
		}
	}
	return false
}
