package schema

import "errors"

var (
	// ErrEmptyPrompt indicates there was nothing to send.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrAssistantNotFound indicates no assistant command is configured and no binary was detected.
	ErrAssistantNotFound = errors.New("assistant binary not found")
	// ErrNoActiveNote indicates an operation needs an active note but none is set.
	ErrNoActiveNote = errors.New("no active note")
	// ErrNoteNotFound indicates a note could not be found in the vault.
	ErrNoteNotFound = errors.New("note not found")
	// ErrInvalidNotePath indicates a note path escapes the vault root.
	ErrInvalidNotePath = errors.New("invalid note path")
	// ErrMessageNotFound indicates a message index is out of range.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNoCodeChanges indicates a reply carried no fenced code blocks.
	ErrNoCodeChanges = errors.New("no code changes")
	// ErrNotAssistantReply indicates an operation needs a resolved assistant reply.
	ErrNotAssistantReply = errors.New("not a resolved assistant reply")
	// ErrBusy indicates a request is already pending.
	ErrBusy = errors.New("request already pending")
	// ErrOutputTooLarge indicates the assistant produced more output than allowed.
	ErrOutputTooLarge = errors.New("assistant output exceeds limit")
)
