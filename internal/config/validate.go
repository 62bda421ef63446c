package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExtractor() error {
	if c.Extractor.ExpandTimeout <= 0 {
		return errors.New("extractor.expand_timeout must be positive")
	}
	if c.Extractor.DownloadTimeout <= 0 {
		return errors.New("extractor.download_timeout must be positive")
	}
	if c.Extractor.Retries < 0 {
		return errors.New("extractor.retries must be non-negative")
	}
	if c.Extractor.FragmentRetries < 0 {
		return errors.New("extractor.fragment_retries must be non-negative")
	}
	if c.Extractor.MaxAttempts < 1 {
		return errors.New("extractor.max_attempts must be at least 1")
	}
	if c.Extractor.RequestsPerMinute < 0 {
		return errors.New("extractor.requests_per_minute must be non-negative (0 disables limiting)")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.Mode {
	case DownloadModeFull, DownloadModeFlat:
		return nil
	default:
		return fmt.Errorf("download.mode must be %q or %q, got %q", DownloadModeFull, DownloadModeFlat, c.Download.Mode)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	for key, level := range map[string]string{"logging.level": c.Logging.Level, "logging.run_log_level": c.Logging.RunLogLevel} {
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%s must be one of debug, info, warn, error; got %q", key, level)
		}
	}
	return nil
}
