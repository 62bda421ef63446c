package workflow

import (
	"context"
	"errors"
	"log/slog"

	"ytnodup/internal/logging"
	"ytnodup/internal/organizer"
	"ytnodup/internal/services"
	"ytnodup/internal/tree"
)

const (
	stageExpand   = "expand"
	stageDownload = "download"
)

func (m *Manager) crawlRoots(ctx context.Context, rs *runState, roots []string) error {
	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		rootCtx := services.WithRootURL(ctx, root)
		logging.WithContext(rootCtx, rs.logger).Info("crawling root",
			logging.Int("index", i+1),
			logging.Int("of", len(roots)),
		)
		if err := m.crawlRoot(rootCtx, rs, root); err != nil {
			return err
		}
	}
	return nil
}

// crawlRoot expands one root, drains the work queue and then the download
// queue. Only cancellation is returned; everything else is counted.
func (m *Manager) crawlRoot(ctx context.Context, rs *runState, root string) error {
	expandCtx := services.WithStage(ctx, stageExpand)
	logger := logging.WithContext(expandCtx, rs.logger)

	node, err := m.extractor.Expand(expandCtx, root)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rs.summary.ExpandFailures++
		logging.WarnWithContext(logger, "root expansion failed", "root_expand_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the URL and yt-dlp output"),
			logging.String(logging.FieldImpact, "root skipped, run continues"),
		)
	} else {
		rs.count(rs.walker.ObserveRoot(node, root))
	}

	if err := m.drainPending(expandCtx, rs, logger); err != nil {
		return err
	}
	if m.cfg.CrawlOnly() {
		m.deriveOnly(rs, logger)
		return nil
	}
	return m.drainDownloads(services.WithStage(ctx, stageDownload), rs)
}

func (m *Manager) drainPending(ctx context.Context, rs *runState, logger *slog.Logger) error {
	for {
		ref, ok := rs.state.Pending.Pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		node, err := m.extractor.Expand(ctx, ref.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rs.summary.ExpandFailures++
			logging.WarnWithContext(logger, "expansion failed, subtree dropped", "expand_failed",
				logging.String(logging.FieldIdentity, string(ref.ID)),
				logging.String("url", ref.URL),
				logging.Error(err),
				logging.String(logging.FieldImpact, "subtree not discovered, run continues"),
			)
			continue
		}
		outcome, err := rs.walker.ObserveExpanded(ref, node)
		if err != nil {
			// Refs are registered before they are queued.
			logging.ErrorWithContext(logger, "expanded reference missing from registry", "registry_inconsistent",
				logging.String(logging.FieldIdentity, string(ref.ID)),
				logging.Error(err),
			)
			continue
		}
		rs.count(outcome)
	}
}

// deriveOnly stamps paths for queued leaves without downloading them so the
// report can still name directories.
func (m *Manager) deriveOnly(rs *runState, logger *slog.Logger) {
	skipped := 0
	for {
		ref, ok := rs.state.Downloads.Pop()
		if !ok {
			break
		}
		skipped++
		if _, err := rs.deriver.Derive(ref.ID); err != nil {
			logging.WarnWithContext(logger, "path derivation failed", "derive_failed",
				logging.String(logging.FieldIdentity, string(ref.ID)),
				logging.Error(err),
			)
		}
	}
	if skipped > 0 {
		logger.Info("crawl only, downloads skipped", logging.Int("leaves", skipped))
	}
}

func (m *Manager) drainDownloads(ctx context.Context, rs *runState) error {
	logger := logging.WithContext(ctx, rs.logger)
	for {
		ref, ok := rs.state.Downloads.Pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		itemLogger := logger.With(logging.String(logging.FieldIdentity, string(ref.ID)))
		delivered := 0
		err := m.extractor.Download(ctx, ref.URL, func(d tree.Download) error {
			delivered++
			final, err := rs.organizer.Materialize(ctx, d)
			if errors.Is(err, organizer.ErrAlreadyPlaced) {
				rs.summary.AlreadyPlaced++
				itemLogger.Info("download already in library", logging.String("path", final))
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				rs.summary.Failed++
				m.logItemFailure(itemLogger, "could not place download", d.ID, err)
				return nil
			}
			rs.summary.Materialized++
			itemLogger.Info("download placed in library", logging.String("path", final))
			return nil
		})
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered == 0 {
			rs.summary.Failed++
		}
		m.logItemFailure(itemLogger, "download failed", ref.ID, err)
	}
}

func (m *Manager) logItemFailure(logger *slog.Logger, msg string, id tree.ID, err error) {
	hint := "check logs for details"
	switch {
	case errors.Is(err, services.ErrDirectoryCreation):
		hint = "check library_dir permissions and free space"
	case errors.Is(err, services.ErrValidation):
		hint = "check the title and ancestry of the item"
	case errors.Is(err, services.ErrNotFound):
		hint = "yt-dlp reported an id that was never discovered"
	case errors.Is(err, services.ErrExtraction):
		hint = "check yt-dlp output in the run log"
	}
	logging.WarnWithContext(logger, msg, "item_failed",
		logging.String(logging.FieldIdentity, string(id)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
}

func (rs *runState) count(outcome tree.Outcome) {
	if outcome.Leaf {
		rs.summary.Leaves++
	}
}
