package logging

import (
	"context"
	"log/slog"

	"ytnodup/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for crawl run identifiers.
	FieldRunID = "run_id"
	// FieldRootURL is the standardized key for the configured root being crawled.
	FieldRootURL = "root_url"
	// FieldStage is the standardized key for the run phase.
	FieldStage = "stage"
	// FieldIdentity is the standardized key for extractor-assigned item identities.
	FieldIdentity = "id"
	// FieldParent is the standardized key for the container an item was found under.
	FieldParent = "parent"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if root, ok := services.RootURLFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRootURL, root))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
