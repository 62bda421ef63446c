package workflow

import (
	"log/slog"
	"time"

	"ytnodup/internal/layout"
	"ytnodup/internal/organizer"
	"ytnodup/internal/tree"
)

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Roots      []string
	StartedAt  time.Time
	Duration   time.Duration
	CrawlOnly  bool
	ReportPath string
	RunLogPath string

	Nodes        int
	Leaves       int
	Duplicates   int
	Materialized int
	// AlreadyPlaced counts downloads whose library file already existed and
	// was kept.
	AlreadyPlaced int
	Failed        int
	// ExpandFailures counts roots and references whose expansion failed.
	ExpandFailures int
}

// runState carries per-run collaborators between phases.
type runState struct {
	summary   *Summary
	state     *tree.State
	walker    *tree.Walker
	deriver   *layout.Deriver
	organizer *organizer.Organizer
	logger    *slog.Logger
}
