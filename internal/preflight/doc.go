// Package preflight provides readiness checks for the binaries and
// directories a crawl depends on.
//
// The CLI "check" command renders every result. The crawl command runs
// RunAll before taking the run lock and refuses to start when a required
// directory is unusable.
package preflight
