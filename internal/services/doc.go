// Package services defines shared utilities consumed by the crawl workflow and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, root URLs, and phase names for
//     logging.
//   - Structured error markers plus the Wrap helper that let the workflow
//     decide whether a failure is contained to one node or item, or aborts
//     the run.
//
// The yt-dlp integration lives in the ytdlp subpackage.
package services
