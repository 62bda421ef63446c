package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"ytnodup/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "yt-dlp:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	lines := dependencyLines([]deps.Status{
		{Name: "yt-dlp", Available: false, Detail: `binary "yt-dlp" not found`},
		{Name: "FFmpeg", Available: true, Path: "/usr/bin/ffmpeg"},
		{Name: "FFmpeg", Available: false, Optional: true, Detail: "not needed"},
	}, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{"[ERROR] binary", "[OK] Ready (/usr/bin/ffmpeg)", "[WARN] not needed"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "only") {
		t.Fatalf("expected row content, got %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
