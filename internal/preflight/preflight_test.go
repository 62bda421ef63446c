package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytnodup/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		path   string
		passed bool
	}{
		{"ok", t.TempDir(), true},
		{"missing", filepath.Join(t.TempDir(), "nope"), false},
		{"not a directory", file, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckDirectoryAccess("test", tt.path)
			if result.Passed != tt.passed {
				t.Fatalf("Passed = %v, detail %q", result.Passed, result.Detail)
			}
			if result.Detail == "" {
				t.Fatal("expected non-empty detail")
			}
		})
	}
}

type versionStub struct {
	version string
	err     error
}

func (v versionStub) CheckInstalled(context.Context) (string, error) { return v.version, v.err }

func TestCheckYtdlp(t *testing.T) {
	ok := CheckYtdlp(context.Background(), versionStub{version: "2026.03.01"})
	if !ok.Passed || ok.Detail != "version 2026.03.01" {
		t.Fatalf("unexpected result: %+v", ok)
	}
	failed := CheckYtdlp(context.Background(), versionStub{err: errors.New("yt-dlp not installed")})
	if failed.Passed || failed.Detail == "" {
		t.Fatalf("unexpected result: %+v", failed)
	}
	if CheckYtdlp(context.Background(), nil).Passed {
		t.Fatal("nil reporter must fail")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllSkipsStagingWhenCrawlOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(t.TempDir(), "missing")

	results := RunAll(&cfg)
	if len(results) != 3 || len(Failed(results)) != 1 {
		t.Fatalf("expected staging failure in full mode, got %+v", results)
	}

	cfg.Download.Mode = config.DownloadModeFlat
	results = RunAll(&cfg)
	if len(results) != 2 || len(Failed(results)) != 0 {
		t.Fatalf("expected two passing checks in flat mode, got %+v", results)
	}
}

func TestCheckSystemDepsMarksFFmpegOptionalWhenCrawlOnly(t *testing.T) {
	t.Setenv("PATH", "")
	cfg := config.Default()
	cfg.Download.Mode = config.DownloadModeFlat

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected yt-dlp and ffmpeg, got %d", len(statuses))
	}
	if !statuses[0].Missing() {
		t.Fatal("yt-dlp is required")
	}
	if statuses[1].Missing() {
		t.Fatal("ffmpeg should be optional in crawl-only mode")
	}
}
