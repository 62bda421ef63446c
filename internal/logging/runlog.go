package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// RunLogMarker prefixes every run log line.
const RunLogMarker = "------------- "

// RunLog is the plain-text event log written for one crawl. It is truncated
// when opened and must be closed by the caller on every exit path.
type RunLog struct {
	path    string
	file    *os.File
	handler slog.Handler
}

// OpenRunLog creates (or truncates) the run log at path and returns a sink
// whose handler accepts records at or above level.
func OpenRunLog(path string, level slog.Level) (*RunLog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("run log: empty path")
	}
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("run log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	return &RunLog{path: path, file: file, handler: NewRunLogHandler(file, level)}, nil
}

// Path returns the file backing the run log.
func (r *RunLog) Path() string { return r.path }

// Handler returns the slog handler writing into the run log.
func (r *RunLog) Handler() slog.Handler {
	if r == nil {
		return NoopHandler{}
	}
	return r.handler
}

// Close flushes and closes the file. It is safe to call more than once.
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

type runLogHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewRunLogHandler writes one line per record:
// "------------- LEVEL: message key=value ...".
func NewRunLogHandler(w io.Writer, level slog.Level) slog.Handler {
	return &runLogHandler{mu: &sync.Mutex{}, writer: w, level: level}
}

func (h *runLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *runLogHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteString(RunLogMarker)
	buf.WriteString(levelLabel(record.Level))
	buf.WriteString(": ")
	buf.WriteString(strings.TrimSpace(record.Message))
	writeKVs(&buf, collectKVs(h.groups, h.attrs, record))
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *runLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *runLogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
