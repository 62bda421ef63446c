package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"

	"ytnodup/internal/history"
	"ytnodup/internal/layout"
	"ytnodup/internal/logging"
	"ytnodup/internal/organizer"
	"ytnodup/internal/report"
	"ytnodup/internal/services"
	"ytnodup/internal/tree"
)

// Run crawls roots, or the configured sources when roots is empty, and
// writes the duplicate report.
func (m *Manager) Run(ctx context.Context, roots []string) (*Summary, error) {
	roots = resolveRoots(roots, m.cfg.Sources.URLs)
	if len(roots) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "resolve roots",
			"no URLs given and sources.urls is empty", nil)
	}
	if err := m.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrDirectoryCreation, "workflow", "prepare directories", "", err)
	}

	unlock, err := m.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runLog, err := logging.OpenRunLog(m.cfg.Paths.RunLog, logging.ParseLevel(m.cfg.Logging.RunLogLevel))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "open run log", m.cfg.Paths.RunLog, err)
	}
	defer runLog.Close()

	summary := &Summary{
		RunID:      m.newRunID(),
		Roots:      roots,
		StartedAt:  m.now(),
		CrawlOnly:  m.cfg.CrawlOnly(),
		ReportPath: m.cfg.Paths.ReportFile,
		RunLogPath: runLog.Path(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.TeeLogger(m.logger, runLog.Handler()).
		With(logging.String(logging.FieldRunID, summary.RunID))
	runLogger := logging.NewComponentLogger(logger, "workflow")

	rs, err := m.newRunState(summary, logger)
	if err != nil {
		return nil, err
	}

	runLogger.Info("crawl started",
		logging.Int("roots", len(roots)),
		logging.String("library_dir", m.cfg.Paths.LibraryDir),
		logging.Bool("crawl_only", summary.CrawlOnly),
	)

	var records []report.Record
	runErr := m.crawlRoots(ctx, rs, roots)
	if runErr == nil {
		records = report.Generate(rs.state)
		if err := report.WriteFile(summary.ReportPath, records); err != nil {
			runErr = services.Wrap(services.ErrDirectoryCreation, "report", "write", summary.ReportPath, err)
		} else {
			runLogger.Info("duplicate report written",
				logging.String("path", summary.ReportPath),
				logging.Int("entries", len(records)),
			)
		}
	}

	summary.Nodes = rs.state.Registry.Len()
	summary.Duplicates = rs.state.Duplicates.Len()
	summary.Duration = m.now().Sub(summary.StartedAt)

	m.recordHistory(ctx, runLogger, rs, records, runErr)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			runLogger.Warn("crawl canceled", logging.Duration("elapsed", summary.Duration))
		} else {
			logging.ErrorWithContext(runLogger, "crawl failed", "run_failed", logging.Error(runErr))
		}
		return summary, runErr
	}

	runLogger.Info("crawl finished",
		logging.Int("nodes", summary.Nodes),
		logging.Int("leaves", summary.Leaves),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("materialized", summary.Materialized),
		logging.Int("already_placed", summary.AlreadyPlaced),
		logging.Int("failed", summary.Failed),
		logging.Int("expand_failures", summary.ExpandFailures),
		logging.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

func (m *Manager) acquireLock() (func(), error) {
	lockPath := m.cfg.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "acquire lock",
			fmt.Sprintf("another ytnodup run holds %s", lockPath), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release run lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}, nil
}

func (m *Manager) newRunState(summary *Summary, logger *slog.Logger) (*runState, error) {
	state := tree.NewState()
	deriver, err := layout.NewDeriver(state, m.cfg.Paths.LibraryDir, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "library root", "", err)
	}
	org := organizer.New(deriver, m.cfg.Library.OverwriteExisting, m.cfg.Download.FinalExt, logger)
	return &runState{
		summary:   summary,
		state:     state,
		walker:    tree.NewWalker(state, logger),
		deriver:   deriver,
		organizer: org,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}, nil
}

func (m *Manager) recordHistory(ctx context.Context, logger *slog.Logger, rs *runState, records []report.Record, runErr error) {
	store, err := history.Open(m.cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or delete history.db"),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
		return
	}
	defer store.Close()

	summary := rs.summary
	run := history.Run{
		ID:           summary.RunID,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.StartedAt.Add(summary.Duration),
		Status:       history.StatusCompleted,
		Roots:        summary.Roots,
		LibraryDir:   m.cfg.Paths.LibraryDir,
		ReportPath:   summary.ReportPath,
		Nodes:        summary.Nodes,
		Leaves:       summary.Leaves,
		Duplicates:   summary.Duplicates,
		Materialized: summary.Materialized,
		Failed:       summary.Failed,
	}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		run.Status = history.StatusCanceled
		run.Error = runErr.Error()
	default:
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}

	// The run may have been canceled; the record is still written.
	writeCtx := context.WithoutCancel(ctx)
	if err := store.RecordRun(writeCtx, run, rs.state.Snapshot(), records); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
		return
	}
	logger.Debug("run recorded in history", logging.String("db", store.Path()))
}

func resolveRoots(roots, configured []string) []string {
	source := roots
	if len(source) == 0 {
		source = configured
	}
	out := make([]string, 0, len(source))
	for _, root := range source {
		if root = strings.TrimSpace(root); root != "" {
			out = append(out, root)
		}
	}
	return out
}
