package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edulearn/lms/internal/portal/guard"
)

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Show whether a portal view would render for the current session",
		Example: `  lmsctl open /admin/users
  lmsctl open /instructor/courses/new`,
		Args: cobra.ExactArgs(1),
		RunE: withPortal(opts, func(cmd *cobra.Command, args []string, p *portal) error {
			d := guard.NewRouter(guard.DefaultRoutes()...).Resolve(args[0], p.session.Snapshot())
			if d.Outcome == guard.Redirect {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", d.Outcome, d.Target)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Outcome)
			return nil
		}),
	}
}
