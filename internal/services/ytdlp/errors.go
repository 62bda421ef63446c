package ytdlp

import (
	"errors"
	"fmt"
	"strings"

	"ytnodup/internal/services"
)

// Kind classifies a yt-dlp failure.
type Kind int

const (
	KindFailed Kind = iota
	KindNotFound
	KindUnavailable
	KindRateLimited
	KindTimeout
	KindDecode
	KindNotInstalled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindDecode:
		return "decode"
	case KindNotInstalled:
		return "not_installed"
	default:
		return "failed"
	}
}

// Error describes one failed yt-dlp invocation.
type Error struct {
	Op     string
	URL    string
	Kind   Kind
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("yt-dlp ")
	b.WriteString(e.Op)
	if e.URL != "" {
		b.WriteByte(' ')
		b.WriteString(e.URL)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if msg := lastErrorLine(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// Unwrap exposes both the extraction marker and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrExtraction}
	}
	return []error{services.ErrExtraction, e.Err}
}

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindFailed:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var ytErr *Error
	if errors.As(err, &ytErr) {
		return ytErr.Retryable()
	}
	return false
}

var (
	rateLimitPatterns   = []string{"http error 429", "too many requests", "rate limit", "rate-limit"}
	unavailablePatterns = []string{"video unavailable", "private video", "has been removed", "is not available", "members-only", "join this channel", "account associated with this video has been terminated", "sign in to confirm your age"}
	notFoundPatterns    = []string{"http error 404", "not found", "does not exist", "unsupported url", "is not a valid url"}
	timeoutPatterns     = []string{"timed out", "timeout", "connection reset", "temporary failure in name resolution", "network is unreachable"}
)

// classify maps yt-dlp diagnostics onto a Kind.
func classify(stderr string) Kind {
	lowered := strings.ToLower(stderr)
	switch {
	case containsAny(lowered, rateLimitPatterns):
		return KindRateLimited
	case containsAny(lowered, unavailablePatterns):
		return KindUnavailable
	case containsAny(lowered, notFoundPatterns):
		return KindNotFound
	case containsAny(lowered, timeoutPatterns):
		return KindTimeout
	default:
		return KindFailed
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// lastErrorLine picks the most recent "ERROR:" line, or the last non-empty one.
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func newError(op, url string, kind Kind, stderr string, err error) error {
	return &Error{Op: op, URL: url, Kind: kind, Stderr: stderr, Err: err}
}

func errorf(op, url string, kind Kind, format string, args ...any) error {
	return newError(op, url, kind, "", fmt.Errorf(format, args...))
}
