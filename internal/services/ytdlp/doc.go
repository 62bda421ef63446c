// Package ytdlp drives the yt-dlp command line to expand URLs into tree nodes
// and to download leaves into the staging directory.
//
// Every invocation goes through an Executor so tests can stub the process
// boundary. Calls are paced by an optional request-rate limiter and retried
// with exponential backoff when yt-dlp reports a transient failure such as a
// rate limit or network timeout. Permanent failures (removed or private
// videos, bad URLs) are returned immediately as *Error values that wrap
// services.ErrExtraction.
package ytdlp
