package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/nikiai/internal/format"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

type askOptions struct {
	resume   bool
	diff     bool
	apply    bool
	insert   bool
	plain    bool
	readFrom io.Reader
}

func newAskCmd() *cobra.Command {
	var flags sessionFlags
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [prompt...|-]",
		Short: "Send one prompt to the assistant and print the reply",
		Long: "Send one prompt to the assistant and print the reply.\n" +
			"The prompt is read from stdin when no arguments are given or the only argument is \"-\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.readFrom == nil {
				opts.readFrom = cmd.InOrStdin()
			}
			return runAsk(cmd, &flags, opts, args)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&opts.resume, "continue", false, "continue the saved panel conversation and save the exchange to it")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "print a diff of the first code block against the active note")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "apply every code block of the reply to the active note")
	cmd.Flags().BoolVar(&opts.insert, "insert", false, "append the reply to the active note")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print raw markdown even on a terminal")
	return cmd
}

func runAsk(cmd *cobra.Command, flags *sessionFlags, opts askOptions, args []string) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)
	input, err := askPrompt(args, opts.readFrom)
	if err != nil {
		return err
	}
	cfg, sc, err := flags.load(cmd)
	if err != nil {
		return err
	}
	session, _, err := flags.open(ctx, cfg, sc, logger, opts.resume, opts.resume)
	if err != nil {
		return err
	}

	reply, err := session.Send(ctx, input)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rich := isTerminal(out) && !opts.plain
	if reply.IsError {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), reply.Content)
		return errors.New("assistant request failed")
	}
	if rich {
		md := format.NewMarkdownRenderer(cfg.Panel.MarkdownTheme, terminalWidth(out))
		_, err = fmt.Fprintln(out, md.Render(reply.Content))
	} else {
		_, err = fmt.Fprintln(out, reply.Content)
	}
	if err != nil {
		return err
	}

	idx := session.LastReply()
	if opts.diff {
		change, result, err := session.Diff(ctx, idx)
		switch {
		case errors.Is(err, schema.ErrNoCodeChanges):
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no code blocks to diff")
		case err != nil:
			return err
		default:
			styles := format.PlainDiffStyles()
			if rich {
				styles = format.DefaultDiffStyles()
			}
			if _, err := fmt.Fprintln(out, "\n"+format.RenderDiff(change.Note, result, styles)); err != nil {
				return err
			}
		}
	}
	if opts.apply {
		applied, err := session.ApplyAll(ctx, idx)
		if err != nil && !errors.Is(err, schema.ErrNoCodeChanges) {
			return err
		}
		logger.Info("ask apply", "note", session.ActiveNote(), "applied", applied)
	}
	if opts.insert {
		if err := session.Insert(ctx, idx); err != nil {
			return err
		}
		logger.Info("ask insert", "note", session.ActiveNote())
	}
	return nil
}

func askPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	if stdin == nil {
		return "", schema.ErrEmptyPrompt
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return string(data), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return min(width, 120)
}
