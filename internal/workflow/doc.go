// Package workflow runs one crawl from configured root URLs to a written
// duplicate report.
//
// Manager.Run holds a cross-process file lock for the whole run and tees the
// console logger into a truncated plain-text run log. Roots are processed in
// order. Each root is expanded, its work queue drained, and its leaves
// downloaded and organized before the next root starts. The tree state lives
// for the whole run so rediscoveries are caught across roots.
//
// Failures of a single root, reference, download or move are logged and
// counted. Lock contention, a report that cannot be written, and context
// cancellation end the run. The final snapshot is written to the history
// store on a best-effort basis.
package workflow
