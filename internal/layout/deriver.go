package layout

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ytnodup/internal/logging"
	"ytnodup/internal/textutil"
	"ytnodup/internal/tree"
)

// Deriver computes library paths from registry ancestry and records every
// path it produces in the run's PathMap.
type Deriver struct {
	registry *tree.Registry
	paths    *tree.PathMap
	root     string
	now      func() time.Time
	logger   *slog.Logger
}

// NewDeriver returns a deriver rooted at libraryRoot. An empty root resolves
// to the working directory.
func NewDeriver(state *tree.State, libraryRoot string, logger *slog.Logger) (*Deriver, error) {
	if libraryRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve library root: %w", err)
		}
		libraryRoot = wd
	}
	return &Deriver{
		registry: state.Registry,
		paths:    state.Paths,
		root:     libraryRoot,
		now:      time.Now,
		logger:   logging.NewComponentLogger(logger, "layout"),
	}, nil
}

// Root returns the library directory paths are joined onto.
func (d *Deriver) Root() string { return d.root }

// Derive returns the absolute path, without extension, for the item id. The
// item's sanitized title and each ancestor's relative directory are stamped
// into the PathMap as a side effect.
func (d *Deriver) Derive(id tree.ID) (string, error) {
	placement, ok := d.registry.Lookup(id)
	if !ok {
		return "", fmt.Errorf("derive path: %w: %q", tree.ErrUnknownIdentity, id)
	}
	ancestors, err := d.registry.Ancestors(id)
	if err != nil {
		return "", fmt.Errorf("derive path: %w", err)
	}

	title := placement.Title
	if rewritten, changed := RewriteTitle(title, d.now()); changed {
		d.logger.Debug("date moved to front of title",
			logging.String(logging.FieldIdentity, string(id)),
			logging.String("title", title),
			logging.String("rewritten", rewritten),
		)
		title = rewritten
	}
	leaf := textutil.SanitizeSegmentOr(title, string(id))

	// ancestors run nearest-first; segments are built root-first.
	segments := make([]string, len(ancestors)+1)
	for i, ancestor := range ancestors {
		anc, _ := d.registry.Lookup(ancestor)
		segments[len(ancestors)-1-i] = textutil.SanitizeSegmentOr(anc.Title, string(ancestor))
	}
	segments[len(ancestors)] = leaf

	d.paths.Set(id, leaf)
	for i, ancestor := range ancestors {
		depth := len(ancestors) - i
		d.paths.Set(ancestor, filepath.Join(segments[:depth]...))
	}

	path := filepath.Join(append([]string{d.root}, segments...)...)
	d.logger.Debug("output path derived",
		logging.String(logging.FieldIdentity, string(id)),
		logging.String("path", path),
	)
	return path, nil
}
