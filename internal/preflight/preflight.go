package preflight

import (
	"ytnodup/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the directories a crawl writes into. Staging is skipped in
// crawl-only mode since nothing is downloaded.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if !cfg.CrawlOnly() {
		results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
