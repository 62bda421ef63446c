package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ytnodup/internal/config"
	"ytnodup/internal/logging"
	"ytnodup/internal/tree"
)

// Extractor expands URLs into nodes and downloads leaves. *ytdlp.Client
// satisfies it.
type Extractor interface {
	Expand(ctx context.Context, url string) (tree.Node, error)
	Download(ctx context.Context, url string, onComplete func(tree.Download) error) error
}

// Manager coordinates a crawl run.
type Manager struct {
	cfg       *config.Config
	extractor Extractor
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) ManagerOption {
	return func(m *Manager) {
		if next != nil {
			m.newRunID = next
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, extractor Extractor, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
