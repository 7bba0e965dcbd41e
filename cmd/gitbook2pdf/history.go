package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pressbound/gitbook2pdf/internal/archive"
	"github.com/pressbound/gitbook2pdf/internal/config"
)

// NewHistoryCmd creates the history command, which lists past
// conversions recorded in the local archive.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past conversions",
		Long:  `List conversions recorded in the local archive, newest first.`,
		RunE:  runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of conversions to list")
	cmd.Flags().String("archive-dir", config.XDGDataDir(), "Archive directory")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("archive-dir")
	if err != nil {
		return err
	}

	a, err := archive.Open(dir, archive.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("no conversion history found in %s: %w", dir, err)
	}
	defer a.Close() //nolint:errcheck // Best effort cleanup

	records, err := a.RecentConversions(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no conversions recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSITE\tPAGES\tFAILED\tOUTPUT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			r.FinishedAt.Format("2006-01-02 15:04"),
			r.BaseURL,
			r.PagesFetched,
			r.Placeholders,
			r.OutputPath,
		)
	}
	return w.Flush()
}
