// Package config loads, normalizes, and validates ytnodup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the YTNODUP_YTDLP_PATH and
// YTNODUP_LIBRARY_DIR environment fallbacks. Run log and report file names
// that are not absolute resolve inside the library directory.
package config
