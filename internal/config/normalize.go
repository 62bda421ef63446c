package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeExtractor()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("YTNODUP_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.RunLog, err = c.libraryRelative(c.Paths.RunLog, defaultRunLog); err != nil {
		return fmt.Errorf("paths.run_log: %w", err)
	}
	if c.Paths.ReportFile, err = c.libraryRelative(c.Paths.ReportFile, defaultReportFile); err != nil {
		return fmt.Errorf("paths.report_file: %w", err)
	}
	return nil
}

// libraryRelative resolves a bare or relative file name under the library
// directory; absolute and home-relative paths are expanded as usual.
func (c *Config) libraryRelative(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if strings.HasPrefix(value, "~") || filepath.IsAbs(value) {
		return expandPath(value)
	}
	return filepath.Join(c.Paths.LibraryDir, filepath.Clean(value)), nil
}

func (c *Config) normalizeSources() {
	urls := c.Sources.URLs[:0]
	for _, u := range c.Sources.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	c.Sources.URLs = urls
}

func (c *Config) normalizeExtractor() {
	if value, ok := os.LookupEnv("YTNODUP_YTDLP_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Extractor.YtdlpPath = strings.TrimSpace(value)
	}
	c.Extractor.YtdlpPath = strings.TrimSpace(c.Extractor.YtdlpPath)
	if c.Extractor.YtdlpPath == "" {
		c.Extractor.YtdlpPath = defaultYtdlpPath
	}
	c.Extractor.PlayerClients = trimList(c.Extractor.PlayerClients)
	c.Extractor.PlayerSkip = trimList(c.Extractor.PlayerSkip)
	c.Extractor.Skip = trimList(c.Extractor.Skip)
}

func (c *Config) normalizeDownload() {
	c.Download.Mode = strings.ToLower(strings.TrimSpace(c.Download.Mode))
	if c.Download.Mode == "" {
		c.Download.Mode = DownloadModeFull
	}
	c.Download.FinalExt = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Download.FinalExt)), ".")
	if c.Download.FinalExt == "" {
		c.Download.FinalExt = defaultFinalExt
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.RunLogLevel = strings.ToLower(strings.TrimSpace(c.Logging.RunLogLevel))
	if c.Logging.RunLogLevel == "" {
		c.Logging.RunLogLevel = defaultRunLogLevel
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
