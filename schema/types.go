package schema

import "time"

// MessageID identifies a chat message.
type MessageID string

// NotePath is a vault-relative (or, for external notes, absolute) note path.
type NotePath string

// Role identifies who authored a chat message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the assistant binary.
	RoleAssistant Role = "assistant"
	// RoleSystem marks local notices that are never sent to the assistant.
	RoleSystem Role = "system"
)

// Message is one entry in the panel conversation.
// A message is either pending (awaiting the assistant) or resolved.
type Message struct {
	ID          MessageID    `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	IsError     bool         `json:"is_error,omitempty"`
	IsPending   bool         `json:"is_pending,omitempty"`
	CodeChanges []CodeChange `json:"code_changes,omitempty"`
	// ChangesParsed records whether CodeChanges has been computed.
	ChangesParsed bool      `json:"changes_parsed,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CodeChange is a fenced code block proposed as a replacement for the active note.
type CodeChange struct {
	Language        string   `json:"language"`
	Note            NotePath `json:"note"`
	OriginalContent string   `json:"original_content"`
	NewContent      string   `json:"new_content"`
	BlockIndex      int      `json:"block_index"`
	Applied         bool     `json:"applied,omitempty"`
}

// NoteRef identifies a note that can be mentioned or edited.
type NoteRef struct {
	Path     NotePath `json:"path"`
	Basename string   `json:"basename"`
	// External marks notes that live outside the vault root.
	External bool `json:"external,omitempty"`
}

// ChangeType classifies a line in a diff.
type ChangeType string

const (
	// ChangeAdded marks a line present only in the modified text.
	ChangeAdded ChangeType = "added"
	// ChangeRemoved marks a line present only in the original text.
	ChangeRemoved ChangeType = "removed"
	// ChangeUnchanged marks a line common to both texts.
	ChangeUnchanged ChangeType = "unchanged"
)

// PromptPlaceholder is replaced with the escaped prompt in configured commands.
const PromptPlaceholder = "{prompt}"

// DefaultAssistantName is the binary name looked up when no command is configured.
const DefaultAssistantName = "claude"
