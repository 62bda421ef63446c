// Package report renders the duplicate report: for every item reached from
// more than one container, where it was materialized and where else it could
// have gone.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"ytnodup/internal/fileutil"
	"ytnodup/internal/tree"
)

// PlaceholderSuffix marks a location that never received a directory.
const PlaceholderSuffix = "(No Directory Created)"

// RootLabel stands in for the missing parent of a configured root.
const RootLabel = "<root>"

// Record is one duplicate report entry.
type Record struct {
	ID         tree.ID
	Title      string
	Location   string
	Directory  string
	Alternates []string
}

// Placeholder returns the text used for an identity with no recorded path.
func Placeholder(id tree.ID) string {
	if id == tree.None {
		return RootLabel + PlaceholderSuffix
	}
	return string(id) + PlaceholderSuffix
}

// Generate builds one record per duplicated identity in first-rediscovery
// order.
func Generate(state *tree.State) []Record {
	ids := state.Duplicates.IDs()
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec := Record{ID: id, Location: pathOr(state, id)}
		placement, ok := state.Registry.Lookup(id)
		switch {
		case !ok:
			rec.Directory = Placeholder(tree.None)
		case placement.IsRoot():
			rec.Title = placement.Title
			rec.Directory = "."
		default:
			rec.Title = placement.Title
			rec.Directory = pathOr(state, placement.Parent)
		}
		for _, parent := range state.Duplicates.Parents(id) {
			rec.Alternates = append(rec.Alternates, pathOr(state, parent))
		}
		records = append(records, rec)
	}
	return records
}

func pathOr(state *tree.State, id tree.ID) string {
	if id != tree.None {
		if p, ok := state.Paths.Lookup(id); ok {
			return p
		}
	}
	return Placeholder(id)
}

// Write renders records in the plain-text report format.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		fmt.Fprintf(bw, "ID: [%s] Title: %s\n", rec.ID, rec.Location)
		fmt.Fprintf(bw, "Located in directory: %s\n", rec.Directory)
		bw.WriteString("May also belong in:\n")
		for _, alt := range rec.Alternates {
			fmt.Fprintf(bw, "\t%s\n", alt)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteFile replaces path with the rendered report.
func WriteFile(path string, records []Record) error {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write duplicate report: %w", err)
	}
	return nil
}
