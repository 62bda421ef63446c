// Package logging assembles structured slog loggers and formatting helpers used
// across ytnodup.
//
// It owns the configurable console/JSON handlers, the plain-text run log that
// is written next to the library, and the fan-out handler that joins them. The
// context helpers tag lines with run IDs, root URLs and phases so crawl code
// does not thread those attributes by hand. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
