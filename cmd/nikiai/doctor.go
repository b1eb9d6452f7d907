package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/nikiai/internal/assistant"
	"pkt.systems/nikiai/internal/resolver"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var flags sessionFlags
	var run bool
	var checkPrompt string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check how the assistant command resolves",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			_, sc, err := flags.load(cmd)
			if err != nil {
				return err
			}
			sc, err = schema.NormalizeSessionConfig(sc)
			if err != nil {
				return err
			}
			logger.Info("doctor start", "vault", sc.VaultDir)

			workDir := sc.EffectiveWorkingDir()
			res := resolver.New(resolver.Config{Command: sc.Command, WorkingDir: workDir})
			report := res.Inspect()
			writeDoctorReport(cmd.OutOrStdout(), report, workDir)
			switch {
			case report.Normalized != "":
				logger.Info("doctor command configured", "command", report.Normalized)
			case report.Detected != "":
				logger.Info("doctor assistant detected", "path", report.Detected, "node_script", report.NodeScript, "node", report.Node)
			default:
				return schema.ErrAssistantNotFound
			}
			if !run {
				logger.Info("doctor complete")
				return nil
			}
			return runDoctorAssistant(ctx, logger, res, sc, checkPrompt)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&run, "run", false, "also run the assistant with a short prompt")
	cmd.Flags().StringVar(&checkPrompt, "prompt", "Say 'ok' and exit.", "prompt used for the --run check")
	return cmd
}

func writeDoctorReport(w io.Writer, report resolver.Report, workDir string) {
	line := func(key, value string) {
		if value == "" {
			value = "-"
		}
		_, _ = fmt.Fprintf(w, "%-12s %s\n", key+":", value)
	}
	line("configured", report.Configured)
	line("command", report.Normalized)
	line("detected", report.Detected)
	if report.NodeScript {
		line("node", report.Node)
	}
	line("workdir", workDir)
	line("path", report.Path)
}

func runDoctorAssistant(ctx context.Context, logger pslog.Logger, res *resolver.Resolver, sc schema.SessionConfig, checkPrompt string) error {
	inv, err := res.Resolve(checkPrompt)
	if err != nil {
		return err
	}
	logger.Info("doctor assistant start", "mode", inv.Mode, "path", inv.Path)
	start := time.Now()
	runner := assistant.NewRunner(assistant.Config{Timeout: sc.Timeout, MaxOutput: sc.MaxOutput})
	out, err := runner.Run(ctx, inv)
	if err != nil {
		return fmt.Errorf("doctor assistant failed: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Errorf("doctor assistant returned no output")
	}
	logger.Info("doctor assistant ok", "bytes", len(out), "elapsed", time.Since(start))
	logger.Info("doctor complete")
	return nil
}
