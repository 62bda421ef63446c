package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the library, staging and state locations.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	StagingDir string `toml:"staging_dir"`
	StateDir   string `toml:"state_dir"`
	RunLog     string `toml:"run_log"`
	ReportFile string `toml:"report_file"`
}

// Sources lists the root URLs crawled when none are given on the command line.
type Sources struct {
	URLs []string `toml:"urls"`
}

// Extractor configures how yt-dlp is invoked.
type Extractor struct {
	YtdlpPath         string   `toml:"ytdlp_path"`
	ExpandTimeout     int      `toml:"expand_timeout"`
	DownloadTimeout   int      `toml:"download_timeout"`
	Retries           int      `toml:"retries"`
	FragmentRetries   int      `toml:"fragment_retries"`
	MaxAttempts       int      `toml:"max_attempts"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	PlayerClients     []string `toml:"player_clients"`
	PlayerSkip        []string `toml:"player_skip"`
	Skip              []string `toml:"skip"`
	ExtraArgs         []string `toml:"extra_args"`
}

// Download controls the materialization phase and yt-dlp post-processing.
type Download struct {
	Mode             string `toml:"mode"`
	FinalExt         string `toml:"final_ext"`
	Remux            bool   `toml:"remux"`
	EmbedSubs        bool   `toml:"embed_subs"`
	WriteAutoSubs    bool   `toml:"write_auto_subs"`
	MultiStreams     bool   `toml:"multi_streams"`
	ConcatMultiVideo bool   `toml:"concat_multi_video"`
}

// Library contains configuration for the materialized tree.
type Library struct {
	OverwriteExisting bool `toml:"overwrite_existing"`
}

// Logging contains configuration for console and run log output.
type Logging struct {
	Format      string `toml:"format"`
	Level       string `toml:"level"`
	RunLogLevel string `toml:"run_log_level"`
}

// Config encapsulates all configuration values for ytnodup.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Sources   Sources   `toml:"sources"`
	Extractor Extractor `toml:"extractor"`
	Download  Download  `toml:"download"`
	Library   Library   `toml:"library"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a crawl writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.StagingDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the file used to keep two crawls from running at once.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "ytnodup.lock")
}

// CrawlOnly reports whether downloads are skipped and only the tree is built.
func (c *Config) CrawlOnly() bool {
	return c.Download.Mode == DownloadModeFlat
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
