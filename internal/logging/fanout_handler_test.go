package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, NoopHandler{}).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when nothing can receive records")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, NoopHandler{}); h != inner {
		t.Fatal("expected single live handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var console, runLog bytes.Buffer
	consoleHandler := newPrettyHandler(&console, levelVar(slog.LevelInfo), false)
	runLogHandler := NewRunLogHandler(&runLog, slog.LevelDebug)

	logger := slog.New(newFanoutHandler(consoleHandler, runLogHandler))
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled because the run log accepts it")
	}

	logger.Debug("entry queued", slog.String("id", "abc"))
	logger.Info("video found, queued for download")

	if strings.Contains(console.String(), "entry queued") {
		t.Fatalf("console received debug line: %q", console.String())
	}
	if !strings.Contains(console.String(), "video found") {
		t.Fatalf("console missing info line: %q", console.String())
	}
	lines := strings.Split(strings.TrimSpace(runLog.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 run log lines, got %d: %q", len(lines), runLog.String())
	}
}

func TestFanoutHandlerWithAttrsReachesAll(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), NewRunLogHandler(&buf2, slog.LevelInfo))
	slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldRunID, "r1")})).Info("test")

	if !bytes.Contains(buf1.Bytes(), []byte(`"run_id":"r1"`)) {
		t.Errorf("expected run_id in json output, got %q", buf1.String())
	}
	if !bytes.Contains(buf2.Bytes(), []byte("run_id=r1")) {
		t.Errorf("expected run_id in run log output, got %q", buf2.String())
	}
}

func TestTeeLogger(t *testing.T) {
	var baseBuf, teeBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))
	logger := TeeLogger(base, NewRunLogHandler(&teeBuf, slog.LevelInfo))

	logger.Info("teed message")

	if baseBuf.Len() == 0 {
		t.Error("expected output in base buffer")
	}
	if teeBuf.Len() == 0 {
		t.Error("expected output in tee buffer")
	}

	var onlyTee bytes.Buffer
	TeeLogger(nil, NewRunLogHandler(&onlyTee, slog.LevelInfo)).Info("no base")
	if onlyTee.Len() == 0 {
		t.Error("expected output without a base logger")
	}
}

func levelVar(level slog.Level) *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(level)
	return v
}
