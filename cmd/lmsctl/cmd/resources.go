package cmd

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCoursesCmd(opts *rootOptions) *cobra.Command {
	courses := &cobra.Command{
		Use:   "courses",
		Short: "Browse the course catalog",
	}

	var category, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List published courses",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			q := url.Values{}
			if category != "" {
				q.Set("category", category)
			}
			if search != "" {
				q.Set("search", search)
			}
			items, err := p.client.Courses().List(cmd.Context(), q)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tLEVEL\tPRICE")
			for _, c := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", c.ID, c.Title, c.Level, c.Price)
			}
			return w.Flush()
		}),
	}
	list.Flags().StringVar(&category, "category", "", "filter by category")
	list.Flags().StringVar(&search, "search", "", "free text search")

	courses.AddCommand(list)
	return courses
}

func newNotificationsCmd(opts *rootOptions) *cobra.Command {
	notifications := &cobra.Command{
		Use:   "notifications",
		Short: "Read in-app notifications",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications for the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			if !p.session.Snapshot().Authenticated() {
				return errNotSignedIn
			}
			items, err := p.client.Notifications().List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "READ\tTITLE\tMESSAGE")
			for _, n := range items {
				read := " "
				if n.Read {
					read = "x"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", read, n.Title, n.Message)
			}
			return w.Flush()
		}),
	}

	notifications.AddCommand(list)
	return notifications
}
