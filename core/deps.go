package core

import (
	"context"

	"pkt.systems/nikiai/internal/persist"
	"pkt.systems/nikiai/internal/resolver"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

// Runner executes a resolved assistant invocation and returns its reply.
type Runner interface {
	Run(ctx context.Context, inv resolver.Invocation) (string, error)
}

// CommandResolver turns a prompt into an invocation.
type CommandResolver interface {
	Resolve(prompt string) (resolver.Invocation, error)
}

// NoteStore is the note storage a session reads from and writes to.
type NoteStore interface {
	Root() string
	Read(p schema.NotePath) (string, error)
	CachedRead(p schema.NotePath) (string, error)
	Modify(p schema.NotePath, content string) error
	Append(p schema.NotePath, content string) error
	Ref(p schema.NotePath) schema.NoteRef
	Search(filter string, limit int) ([]schema.NoteRef, error)
	ResolveMention(ref string) (schema.NoteRef, error)
}

// SessionDeps captures optional dependencies for a chat session.
type SessionDeps struct {
	Notes     NoteStore
	Resolver  CommandResolver
	Runner    Runner
	Store     *persist.Store
	EventSink EventSink
	Logger    pslog.Logger
}
