package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/nikiai/core"
	"pkt.systems/nikiai/internal/appconfig"
	"pkt.systems/nikiai/internal/vault"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

// sessionFlags are shared by commands that talk to the assistant.
type sessionFlags struct {
	cfgPath     string
	vaultDir    string
	note        string
	mentions    []string
	includeNote bool
	includeSet  bool
	command     string
	workingDir  string
	timeout     time.Duration
}

func (f *sessionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&f.vaultDir, "vault", "", "notes vault directory (default: config vault_dir or the current directory)")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "active note, relative to the vault")
	cmd.Flags().StringArrayVarP(&f.mentions, "mention", "m", nil, "attach a note by path, name or obsidian:// URI (repeatable)")
	cmd.Flags().BoolVarP(&f.includeNote, "include-note", "i", false, "attach the active note to every request")
	cmd.Flags().StringVar(&f.command, "command", "", "assistant command line; {prompt} is replaced by the prompt, otherwise it is sent on stdin")
	cmd.Flags().StringVar(&f.workingDir, "workdir", "", "working directory for the assistant (default: vault)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "assistant timeout (default: config assistant.timeout_seconds)")
}

// load merges the config file with flags that were set explicitly.
func (f *sessionFlags) load(cmd *cobra.Command) (appconfig.Config, schema.SessionConfig, error) {
	cfg, err := appconfig.Load(f.cfgPath)
	if err != nil {
		return appconfig.Config{}, schema.SessionConfig{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("vault") {
		cfg.VaultDir = f.vaultDir
	}
	if flags.Changed("command") {
		cfg.Assistant.Command = f.command
	}
	if flags.Changed("workdir") {
		cfg.Assistant.WorkingDir = f.workingDir
	}
	if flags.Changed("include-note") {
		cfg.Panel.IncludeNote = f.includeNote
		f.includeSet = true
	}
	sc := cfg.SessionConfig()
	if flags.Changed("timeout") {
		sc.Timeout = f.timeout
	}
	return cfg, sc, nil
}

// open builds a session for the vault and applies the note and mention flags.
// restore loads the saved conversation; save keeps the state store so every
// change is written back. A session that saves without restoring replaces the
// saved conversation on its first change.
func (f *sessionFlags) open(ctx context.Context, cfg appconfig.Config, sc schema.SessionConfig, logger pslog.Logger, restore, save bool) (*core.Session, *vault.Vault, error) {
	sc, err := schema.NormalizeSessionConfig(sc)
	if err != nil {
		return nil, nil, err
	}
	notes, err := vault.OpenWithLogger(sc.VaultDir, logger)
	if err != nil {
		return nil, nil, err
	}
	if !save {
		sc.StateDir = ""
	}
	session, err := core.NewSession(sc, core.SessionDeps{Notes: notes, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	restored := false
	if restore {
		restored, err = session.Restore(ctx)
		if err != nil {
			logger.Warn("session restore failed", "err", err)
		}
	}
	if f.note != "" {
		if err := session.SetActiveNote(ctx, f.note); err != nil {
			return nil, nil, err
		}
	}
	if !restored || f.includeSet {
		session.SetIncludeNote(ctx, cfg.Panel.IncludeNote)
	}
	for _, raw := range f.mentions {
		if _, err := session.Mention(ctx, raw); err != nil {
			return nil, nil, err
		}
	}
	return session, notes, nil
}
