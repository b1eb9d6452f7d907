package schema

// EventType describes a change in a chat session.
type EventType string

const (
	// EventMessageAdded indicates a message was appended.
	EventMessageAdded EventType = "message.added"
	// EventMessageUpdated indicates a pending message resolved or a code change was applied.
	EventMessageUpdated EventType = "message.updated"
	// EventCleared indicates the conversation was cleared.
	EventCleared EventType = "conversation.cleared"
	// EventMentionsChanged indicates the mention list changed.
	EventMentionsChanged EventType = "mentions.changed"
	// EventNotice carries a short status line for the user.
	EventNotice EventType = "notice"
)

// SessionEvent is emitted by a chat session to its sink.
type SessionEvent struct {
	Type     EventType `json:"type"`
	Message  *Message  `json:"message,omitempty"`
	Mentions []NoteRef `json:"mentions,omitempty"`
	Notice   string    `json:"notice,omitempty"`
}
