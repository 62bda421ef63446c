package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ytnodup/internal/report"
	"ytnodup/internal/services"
	"ytnodup/internal/tree"
)

// Status describes how a run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is the summary row of one crawl.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       Status
	Roots        []string
	LibraryDir   string
	ReportPath   string
	Nodes        int
	Leaves       int
	Duplicates   int
	Materialized int
	Failed       int
	Error        string
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, started_at, finished_at, status, roots_json, library_dir, report_path,
	node_count, leaf_count, duplicate_count, materialized_count, failed_count, error_message`

// RecordRun stores the run, its snapshot and its duplicate report rows in one
// transaction. Recording the same run id twice replaces the earlier rows.
func (s *Store) RecordRun(ctx context.Context, run Run, snap tree.Snapshot, records []report.Record) error {
	if run.ID == "" {
		return errors.New("record run: empty run id")
	}
	roots, err := json.Marshal(nonNil(run.Roots))
	if err != nil {
		return fmt.Errorf("encode roots: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", run.ID); err != nil {
			return fmt.Errorf("clear previous run rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
			string(run.Status),
			string(roots),
			run.LibraryDir,
			run.ReportPath,
			run.Nodes,
			run.Leaves,
			run.Duplicates,
			run.Materialized,
			run.Failed,
			run.Error,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, node := range snap.Nodes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (run_id, seq, identity, title, parent, path) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, i, string(node.ID), node.Title, string(node.Parent), node.Path,
			); err != nil {
				return fmt.Errorf("insert node %s: %w", node.ID, err)
			}
		}

		seq := 0
		for _, dup := range snap.Duplicates {
			for _, parent := range dup.Parents {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO duplicates (run_id, seq, identity, parent) VALUES (?, ?, ?, ?)`,
					run.ID, seq, string(dup.ID), string(parent),
				); err != nil {
					return fmt.Errorf("insert duplicate %s: %w", dup.ID, err)
				}
				seq++
			}
		}

		for i, rec := range records {
			alternates, err := json.Marshal(nonNil(rec.Alternates))
			if err != nil {
				return fmt.Errorf("encode alternates: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO report_entries (run_id, seq, identity, title, location, directory, alternates_json)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i, string(rec.ID), rec.Title, rec.Location, rec.Directory, string(alternates),
			); err != nil {
				return fmt.Errorf("insert report entry %s: %w", rec.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit record tx: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, services.Wrap(services.ErrNotFound, "history", "latest run", "no runs recorded", err)
	}
	return run, err
}

// Run returns the run with the given id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, services.Wrap(services.ErrNotFound, "history", "load run", fmt.Sprintf("run %q", id), err)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		started   string
		finished  string
		status    string
		rootsJSON string
	)
	if err := row.Scan(
		&run.ID, &started, &finished, &status, &rootsJSON, &run.LibraryDir, &run.ReportPath,
		&run.Nodes, &run.Leaves, &run.Duplicates, &run.Materialized, &run.Failed, &run.Error,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	if err := json.Unmarshal([]byte(rootsJSON), &run.Roots); err != nil {
		return Run{}, fmt.Errorf("decode roots for run %s: %w", run.ID, err)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
