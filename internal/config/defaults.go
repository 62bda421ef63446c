package config

const (
	defaultConfigPath      = "~/.config/ytnodup/config.toml"
	projectConfigName      = "ytnodup.toml"
	defaultLibraryDir      = "."
	defaultStagingDir      = "~/.local/share/ytnodup/staging"
	defaultStateDir        = "~/.local/share/ytnodup"
	defaultRunLog          = "log.txt"
	defaultReportFile      = "dup_list.txt"
	defaultYtdlpPath       = "yt-dlp"
	defaultExpandTimeout   = 600
	defaultDownloadTimeout = 6 * 60 * 60
	defaultRetries         = 10
	defaultMaxAttempts     = 3
	defaultFinalExt        = "mkv"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRunLogLevel     = "debug"

	// DownloadModeFull downloads every discovered leaf.
	DownloadModeFull = "full"
	// DownloadModeFlat only builds the tree and writes the report.
	DownloadModeFlat = "flat"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
			RunLog:     defaultRunLog,
			ReportFile: defaultReportFile,
		},
		Extractor: Extractor{
			YtdlpPath:       defaultYtdlpPath,
			ExpandTimeout:   defaultExpandTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			Retries:         defaultRetries,
			FragmentRetries: defaultRetries,
			MaxAttempts:     defaultMaxAttempts,
			PlayerClients:   []string{"android", "web"},
			PlayerSkip:      []string{"webpage", "configs", "js"},
			Skip:            []string{"hls", "dash", "translated_subs"},
		},
		Download: Download{
			Mode:             DownloadModeFull,
			FinalExt:         defaultFinalExt,
			Remux:            true,
			EmbedSubs:        true,
			WriteAutoSubs:    true,
			MultiStreams:     true,
			ConcatMultiVideo: true,
		},
		Library: Library{
			OverwriteExisting: true,
		},
		Logging: Logging{
			Format:      defaultLogFormat,
			Level:       defaultLogLevel,
			RunLogLevel: defaultRunLogLevel,
		},
	}
}
