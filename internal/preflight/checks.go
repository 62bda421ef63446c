package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ytnodup/internal/config"
	"ytnodup/internal/deps"
)

// VersionReporter reports the installed extractor version.
type VersionReporter interface {
	CheckInstalled(ctx context.Context) (string, error)
}

// CheckYtdlp runs the extractor's version check with a short timeout.
func CheckYtdlp(ctx context.Context, reporter VersionReporter) Result {
	const name = "yt-dlp"
	if reporter == nil {
		return Result{Name: name, Detail: "extractor not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	version, err := reporter.CheckInstalled(checkCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Name: name, Detail: "version check timed out"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "version " + version}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the binaries a crawl with cfg will invoke.
// FFmpeg is optional in crawl-only mode.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.Extractor.YtdlpPath,
		Description: "Required for listing and downloading",
	}})
	return append(statuses, deps.CheckFFmpegForYtdlp(cfg.Extractor.YtdlpPath, cfg.CrawlOnly()))
}
