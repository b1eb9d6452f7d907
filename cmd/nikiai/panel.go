package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/nikiai/core"
	"pkt.systems/nikiai/internal/appconfig"
	"pkt.systems/nikiai/internal/eventbus"
	"pkt.systems/nikiai/internal/logx"
	"pkt.systems/nikiai/internal/tui"
	"pkt.systems/nikiai/internal/vault"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

func newPanelCmd() *cobra.Command {
	var flags sessionFlags
	var fresh bool
	var logPath string
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive chat panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sc, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if logPath == "" {
				logPath = filepath.Join(cfg.StateDir, "panel.log")
			}
			logger, closeLog, err := openPanelLog(logPath)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := pslog.ContextWithLogger(cmd.Context(), logger)
			session, notes, err := openPanelSession(ctx, &flags, cfg, sc, logger, fresh)
			if err != nil {
				return err
			}
			ctx = logx.ContextWithVaultLogger(ctx, logger.With("vault", notes.Root()), notes.Root())

			noteEvents, err := notes.Watch(ctx)
			if err != nil {
				logger.Warn("panel watch failed", "err", err)
				noteEvents = nil
			}
			bus := eventbus.New(logger)
			session.SetEventSink(bus)
			audit, stopAudit := bus.Subscribe()
			defer stopAudit()
			go logPanelEvents(logger, audit)

			logger.Info("panel start", "note", session.ActiveNote(), "messages", len(session.Messages()))
			err = tui.Run(ctx, session, tui.Options{Theme: cfg.Panel.MarkdownTheme, NoteEvents: noteEvents, Bus: bus})
			logger.Info("panel stop")
			return err
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new conversation instead of resuming")
	cmd.Flags().StringVar(&logPath, "log", "", "panel log file (default: <state_dir>/panel.log)")
	return cmd
}

// openPanelSession always saves to the state store; fresh skips the restore
// and overwrites the saved conversation with an empty one.
func openPanelSession(ctx context.Context, flags *sessionFlags, cfg appconfig.Config, sc schema.SessionConfig, logger pslog.Logger, fresh bool) (*core.Session, *vault.Vault, error) {
	session, notes, err := flags.open(ctx, cfg, sc, logger, cfg.Panel.Resume && !fresh, true)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		session.Clear(ctx)
	}
	return session, notes, nil
}

func logPanelEvents(logger pslog.Logger, events <-chan schema.SessionEvent) {
	for event := range events {
		switch event.Type {
		case schema.EventNotice:
			logger.Info("panel notice", "text", event.Notice)
		case schema.EventMentionsChanged:
			logger.Debug("panel mentions", "count", len(event.Mentions))
		case schema.EventMessageAdded, schema.EventMessageUpdated:
			if event.Message != nil {
				logger.Debug("panel message", "event", event.Type, "id", event.Message.ID, "role", event.Message.Role, "pending", event.Message.IsPending)
			}
		default:
			logger.Debug("panel event", "event", event.Type)
		}
	}
}

// openPanelLog sends logs to a file while the panel owns the terminal.
func openPanelLog(path string) (pslog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open panel log: %w", err)
	}
	logger := pslog.NewWithOptions(file, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	return logger, func() { _ = file.Close() }, nil
}
