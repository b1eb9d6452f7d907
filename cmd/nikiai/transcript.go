package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/nikiai/core"
	"pkt.systems/nikiai/internal/format"
	"pkt.systems/pslog"
)

func newTranscriptCmd() *cobra.Command {
	var flags sessionFlags
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print the saved panel conversation for a vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			_, sc, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(sc.StateDir) == "" {
				return fmt.Errorf("state_dir is not configured")
			}
			session, err := core.NewSession(sc, core.SessionDeps{Logger: logger})
			if err != nil {
				return err
			}
			restored, err := session.Restore(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !restored || len(session.Messages()) == 0 {
				_, err = fmt.Fprintln(out, "no saved conversation for "+session.Config().VaultDir)
				return err
			}
			lines := format.NewPlainRenderer().FormatConversation(session.Messages())
			_, err = fmt.Fprintln(out, strings.Join(lines, "\n"))
			return err
		},
	}
	flags.bind(cmd)
	return cmd
}
