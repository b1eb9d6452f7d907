package logx

import (
	"context"

	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	vaultKey contextKey = iota
)

// WithVault annotates the logger with the vault root if present.
func WithVault(ctx context.Context, vault string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if vault != "" {
		if current, ok := ctx.Value(vaultKey).(string); ok && current == vault {
			return log
		}
		log = log.With("vault", vault)
	}
	return log
}

// WithNote annotates the logger with a note path when available.
func WithNote(log pslog.Logger, note schema.NotePath) pslog.Logger {
	if note != "" {
		log = log.With("note", note)
	}
	return log
}

// WithMessage annotates the logger with a message id when available.
func WithMessage(log pslog.Logger, id schema.MessageID) pslog.Logger {
	if id != "" {
		log = log.With("message", id)
	}
	return log
}

// ContextWithVault stores the vault marker on the context for log de-duplication.
func ContextWithVault(ctx context.Context, vault string) context.Context {
	if ctx == nil || vault == "" {
		return ctx
	}
	return context.WithValue(ctx, vaultKey, vault)
}

// ContextWithVaultLogger attaches the logger and vault marker to the context.
func ContextWithVaultLogger(ctx context.Context, log pslog.Logger, vault string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithVault(ctx, vault)
}
