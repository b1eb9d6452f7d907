package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/nikiai/internal/format"
	"pkt.systems/nikiai/internal/linediff"
	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

func newDiffCmd() *cobra.Command {
	var plain bool
	var label string
	cmd := &cobra.Command{
		Use:   "diff <original> <modified>",
		Short: "Show a line diff between two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read original: %w", err)
			}
			modified, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read modified: %w", err)
			}
			result := linediff.Compute(string(original), string(modified))
			stats := result.Stats()
			pslog.Ctx(cmd.Context()).Debug("diff computed", "original", args[0], "modified", args[1], "added", stats.Added, "removed", stats.Removed)

			out := cmd.OutOrStdout()
			styles := format.PlainDiffStyles()
			if !plain && isTerminal(out) {
				styles = format.DefaultDiffStyles()
			}
			if label == "" {
				label = args[0]
			}
			_, err = fmt.Fprintln(out, format.RenderDiff(schema.NotePath(label), result, styles))
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	cmd.Flags().StringVar(&label, "label", "", "name shown in the header (default: original path)")
	return cmd
}
