package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	rootURLKey contextKey = "root_url"
	stageKey   contextKey = "stage"
)

// WithRunID annotates context with the crawl run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the crawl run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRootURL annotates context with the configured root currently being crawled.
func WithRootURL(ctx context.Context, url string) context.Context {
	if url == "" {
		return ctx
	}
	return context.WithValue(ctx, rootURLKey, url)
}

// RootURLFromContext returns the root URL if present.
func RootURLFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(rootURLKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the run phase (crawl, download, report).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
