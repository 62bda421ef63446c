package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ytnodup/internal/config"
	"ytnodup/internal/preflight"
	"ytnodup/internal/services"
	"ytnodup/internal/workflow"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl URLs (or sources.urls), download new videos and write the duplicate report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if flat {
				cfg.Download.Mode = config.DownloadModeFlat
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				parts := make([]string, 0, len(failed))
				for _, r := range failed {
					parts = append(parts, r.Name+": "+r.Detail)
				}
				return services.Wrap(services.ErrConfiguration, "preflight", "directories", strings.Join(parts, "; "), nil)
			}

			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			extractor, err := ctx.newExtractor(cfg, logger)
			if err != nil {
				return fmt.Errorf("create extractor: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := workflow.NewManager(cfg, extractor, logger).Run(signalCtx, args)
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Only build the tree and report; skip downloads")
	return cmd
}

func printSummary(out io.Writer, s *workflow.Summary) {
	rows := [][]string{
		{"Run", s.RunID},
		{"Roots", strconv.Itoa(len(s.Roots))},
		{"Nodes", strconv.Itoa(s.Nodes)},
		{"Videos", strconv.Itoa(s.Leaves)},
		{"Duplicates", strconv.Itoa(s.Duplicates)},
		{"Downloaded", strconv.Itoa(s.Materialized)},
		{"Already in library", strconv.Itoa(s.AlreadyPlaced)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Expand failures", strconv.Itoa(s.ExpandFailures)},
		{"Crawl only", yesNo(s.CrawlOnly)},
		{"Report", s.ReportPath},
		{"Run log", s.RunLogPath},
		{"Elapsed", s.Duration.Round(time.Second).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
}
