package tree

import (
	"fmt"
	"log/slog"

	"ytnodup/internal/logging"
)

// Outcome summarizes what one observation changed.
type Outcome struct {
	// Accepted is false when the node was a rediscovery and nothing below it
	// was examined.
	Accepted   bool
	Leaf       bool
	Queued     int
	Duplicates int
}

// Walker applies first-seen-wins placement to nodes as the extractor returns
// them.
type Walker struct {
	state  *State
	logger *slog.Logger
}

// NewWalker returns a walker mutating state.
func NewWalker(state *State, logger *slog.Logger) *Walker {
	return &Walker{state: state, logger: logging.NewComponentLogger(logger, "walker")}
}

// ObserveRoot places a node obtained from a configured root URL.
func (w *Walker) ObserveRoot(node Node, url string) Outcome {
	return w.Observe(node, url, None)
}

// ObserveExpanded places the node that ref expanded into. The ref must have
// been registered when its container was processed; its registered parent
// becomes the current parent. A ref listed without a title takes the title of
// its expansion.
func (w *Walker) ObserveExpanded(ref Ref, node Node) (Outcome, error) {
	placement, ok := w.state.Registry.Lookup(ref.ID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: pending reference %q", ErrUnknownIdentity, ref.ID)
	}
	if node.Identity() == ref.ID {
		if w.state.Registry.FillTitle(ref.ID, node.DisplayTitle()) {
			w.logger.Debug("title filled from expansion",
				logging.String(logging.FieldIdentity, string(ref.ID)),
				logging.String("title", node.DisplayTitle()),
			)
		}
		return w.accept(node, ref.URL), nil
	}
	// The extractor resolved the reference to a different identity.
	return w.Observe(node, ref.URL, placement.Parent), nil
}

// Observe registers node under parent if its identity is new and then
// classifies it. A known identity is recorded as a duplicate of parent and is
// neither expanded nor queued again.
func (w *Walker) Observe(node Node, url string, parent ID) Outcome {
	id := node.Identity()
	if !w.state.Registry.Register(id, node.DisplayTitle(), parent) {
		w.state.Duplicates.Record(id, parent)
		w.logger.Info("duplicate found",
			logging.String(logging.FieldIdentity, string(id)),
			logging.String(logging.FieldParent, parentLabel(parent)),
			logging.String("title", node.DisplayTitle()),
		)
		return Outcome{Duplicates: 1}
	}
	w.logger.Debug("node registered",
		logging.String(logging.FieldIdentity, string(id)),
		logging.String(logging.FieldParent, parentLabel(parent)),
		logging.String("title", node.DisplayTitle()),
	)
	return w.accept(node, url)
}

func (w *Walker) accept(node Node, url string) Outcome {
	out := Outcome{Accepted: true}
	switch n := node.(type) {
	case Leaf:
		if url == "" {
			url = n.URL
		}
		w.state.Downloads.Push(Ref{ID: n.ID, Title: n.Title, URL: url})
		w.logger.Info("video found, queued for download",
			logging.String(logging.FieldIdentity, string(n.ID)),
			logging.String("title", n.Title),
		)
		out.Leaf = true
	case Container:
		w.logger.Info("container found",
			logging.String(logging.FieldIdentity, string(n.ID)),
			logging.String("title", n.Title),
			logging.Int("entries", len(n.Entries)),
		)
		for _, entry := range n.Entries {
			if !w.state.Registry.Register(entry.ID, entry.Title, n.ID) {
				w.state.Duplicates.Record(entry.ID, n.ID)
				w.logger.Info("duplicate found",
					logging.String(logging.FieldIdentity, string(entry.ID)),
					logging.String(logging.FieldParent, string(n.ID)),
					logging.String("title", entry.Title),
				)
				out.Duplicates++
				continue
			}
			w.state.Pending.Push(entry)
			w.logger.Debug("entry queued",
				logging.String(logging.FieldIdentity, string(entry.ID)),
				logging.String(logging.FieldParent, string(n.ID)),
				logging.String("title", entry.Title),
			)
			out.Queued++
		}
	}
	return out
}

func parentLabel(parent ID) string {
	if parent == None {
		return "<root>"
	}
	return string(parent)
}
