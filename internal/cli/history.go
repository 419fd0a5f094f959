package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, replay or clear recent generation runs",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryClearCmd(a), newHistoryReplayCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List recent runs, newest first",
		Annotations: serviceAnnotation,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.service.History(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCOUNT\tFORMAT\tTIME")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					e.ID, e.Category, e.Count, e.Format, e.Timestamp.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "clear",
		Short:       "Remove every recorded run",
		Annotations: serviceAnnotation,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "History cleared")
			return nil
		},
	}
}

func newHistoryReplayCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:         "replay ID",
		Short:       "Regenerate a built-in run with its category, count and format",
		Annotations: serviceAnnotation,
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.service.Replay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, result, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")
	return cmd
}
