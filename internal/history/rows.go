package history

import (
	"context"
	"encoding/json"
	"fmt"

	"ytnodup/internal/report"
	"ytnodup/internal/tree"
)

// DuplicateReport returns the report rows of a run in their written order.
func (s *Store) DuplicateReport(ctx context.Context, runID string) ([]report.Record, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, title, location, directory, alternates_json
		 FROM report_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query report entries: %w", err)
	}
	defer rows.Close()

	var records []report.Record
	for rows.Next() {
		var (
			rec        report.Record
			identity   string
			alternates string
		)
		if err := rows.Scan(&identity, &rec.Title, &rec.Location, &rec.Directory, &alternates); err != nil {
			return nil, fmt.Errorf("scan report entry: %w", err)
		}
		rec.ID = tree.ID(identity)
		if err := json.Unmarshal([]byte(alternates), &rec.Alternates); err != nil {
			return nil, fmt.Errorf("decode alternates for %s: %w", identity, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Nodes returns the registered identities of a run in registration order.
func (s *Store) Nodes(ctx context.Context, runID string) ([]tree.NodeRecord, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, title, parent, path FROM nodes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []tree.NodeRecord
	for rows.Next() {
		var identity, title, parent, path string
		if err := rows.Scan(&identity, &title, &parent, &path); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, tree.NodeRecord{
			ID:     tree.ID(identity),
			Title:  title,
			Parent: tree.ID(parent),
			Path:   path,
		})
	}
	return nodes, rows.Err()
}

// Duplicates returns every rediscovery of a run grouped per identity, in
// first-rediscovery order.
func (s *Store) Duplicates(ctx context.Context, runID string) ([]tree.DuplicateRecord, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, parent FROM duplicates WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	var (
		out   []tree.DuplicateRecord
		index = map[tree.ID]int{}
	)
	for rows.Next() {
		var identity, parent string
		if err := rows.Scan(&identity, &parent); err != nil {
			return nil, fmt.Errorf("scan duplicate: %w", err)
		}
		id := tree.ID(identity)
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, tree.DuplicateRecord{ID: id})
		}
		out[i].Parents = append(out[i].Parents, tree.ID(parent))
	}
	return out, rows.Err()
}
