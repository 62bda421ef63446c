package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytnodup/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check yt-dlp, FFmpeg and the configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configDetail := ctx.configPath
			if configDetail == "" {
				configDetail = "defaults"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, configDetail, colorize),
				renderStatusLine("Mode", statusInfo, cfg.Download.Mode, colorize),
				"",
			)

			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cfg)
			lines = append(lines, dependencyLines(statuses, colorize)...)

			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			ytdlpOK := len(statuses) > 0 && statuses[0].Available
			if ytdlpOK {
				if extractor, err := ctx.newExtractor(cfg, logger); err == nil {
					if reporter, ok := extractor.(preflight.VersionReporter); ok {
						lines = append(lines, resultLine(preflight.CheckYtdlp(cmd.Context(), reporter), statusError, colorize))
					}
				}
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			dirResults := preflight.RunAll(cfg)
			for _, r := range dirResults {
				lines = append(lines, resultLine(r, statusError, colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			missing := 0
			for _, s := range statuses {
				if s.Missing() {
					missing++
				}
			}
			if missing > 0 || len(preflight.Failed(dirResults)) > 0 {
				return fmt.Errorf("check failed: %d missing dependencies, %d directory problems",
					missing, len(preflight.Failed(dirResults)))
			}
			return nil
		},
	}
}

func resultLine(r preflight.Result, failKind statusKind, colorize bool) string {
	kind := statusOK
	if !r.Passed {
		kind = failKind
	}
	return renderStatusLine(r.Name, kind, r.Detail, colorize)
}
