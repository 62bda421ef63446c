package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytnodup/internal/history"
	"ytnodup/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var asText bool

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show the duplicate report of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := selectRun(cmd.Context(), store, args)
			if err != nil {
				return err
			}
			records, err := store.DuplicateReport(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asText {
				return report.Write(out, records)
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "Run %s recorded no duplicates\n", run.ID)
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					string(rec.ID),
					rec.Title,
					rec.Location,
					rec.Directory,
					strings.Join(rec.Alternates, "\n"),
				})
			}
			fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Path", "Located in", "May also belong in"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asText, "text", false, "Print in the dup_list.txt format")
	return cmd
}

func selectRun(ctx context.Context, store *history.Store, args []string) (history.Run, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return store.Run(ctx, strings.TrimSpace(args[0]))
	}
	return store.LatestRun(ctx)
}
