package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytnodup/internal/config"
	"ytnodup/internal/logging"
	"ytnodup/internal/tree"
)

const (
	stderrTailBytes = 64 * 1024
	completedPrint  = "after_move:%(.{id,filepath,ext})j"
	outputTemplate  = "%(id)s.%(ext)s"
)

// Settings holds the invocation parameters taken from configuration.
type Settings struct {
	Binary            string
	StagingDir        string
	ExpandTimeout     time.Duration
	DownloadTimeout   time.Duration
	Retries           int
	FragmentRetries   int
	MaxAttempts       int
	RequestsPerMinute int
	PlayerClients     []string
	PlayerSkip        []string
	Skip              []string
	ExtraArgs         []string
	RemuxTo           string
	EmbedSubs         bool
	WriteAutoSubs     bool
	MultiStreams      bool
	ConcatMultiVideo  bool
}

// SettingsFromConfig maps the [extractor], [download] and [paths] sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := Settings{
		Binary:            cfg.Extractor.YtdlpPath,
		StagingDir:        cfg.Paths.StagingDir,
		ExpandTimeout:     time.Duration(cfg.Extractor.ExpandTimeout) * time.Second,
		DownloadTimeout:   time.Duration(cfg.Extractor.DownloadTimeout) * time.Second,
		Retries:           cfg.Extractor.Retries,
		FragmentRetries:   cfg.Extractor.FragmentRetries,
		MaxAttempts:       cfg.Extractor.MaxAttempts,
		RequestsPerMinute: cfg.Extractor.RequestsPerMinute,
		PlayerClients:     cfg.Extractor.PlayerClients,
		PlayerSkip:        cfg.Extractor.PlayerSkip,
		Skip:              cfg.Extractor.Skip,
		ExtraArgs:         cfg.Extractor.ExtraArgs,
		EmbedSubs:         cfg.Download.EmbedSubs,
		WriteAutoSubs:     cfg.Download.WriteAutoSubs,
		MultiStreams:      cfg.Download.MultiStreams,
		ConcatMultiVideo:  cfg.Download.ConcatMultiVideo,
	}
	if cfg.Download.Remux {
		s.RemuxTo = cfg.Download.FinalExt
	}
	return s
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used for retries and skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ytdlp")
	}
}

// WithBackoff overrides the delay schedule between attempts.
func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	settings Settings
	exec     Executor
	limiter  *rate.Limiter
	backoff  Backoff
	logger   *slog.Logger
}

// New constructs a yt-dlp client.
func New(settings Settings, opts ...Option) (*Client, error) {
	settings.Binary = strings.TrimSpace(settings.Binary)
	if settings.Binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}
	client := &Client{
		settings: settings,
		exec:     commandExecutor{},
		limiter:  newLimiter(settings.RequestsPerMinute),
		backoff:  DefaultBackoff(),
		logger:   logging.NewComponentLogger(nil, "ytdlp"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Expand resolves url into its node without descending into entries.
func (c *Client) Expand(ctx context.Context, url string) (tree.Node, error) {
	var node tree.Node
	err := attempt(ctx, c.settings.MaxAttempts, c.backoff, func(ctx context.Context) error {
		var stdout bytes.Buffer
		if err := c.invoke(ctx, "expand", url, c.settings.ExpandTimeout, c.expandArgs(url), &stdout); err != nil {
			return err
		}
		decoded, skipped, err := decodeNode(stdout.Bytes(), url)
		if err != nil {
			return newError("expand", url, KindDecode, "", err)
		}
		if skipped > 0 {
			logging.WarnWithContext(c.logger, "entries without an id skipped", "ytdlp_entry_skipped",
				logging.String("url", url),
				logging.Int("skipped", skipped),
				logging.String(logging.FieldErrorHint, "entries may be deleted or private"),
				logging.String(logging.FieldImpact, "those entries are not crawled"),
			)
		}
		node = decoded
		return nil
	}, c.retryLogger("expand", url))
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Download fetches url into the staging directory and calls onComplete for
// every item yt-dlp finishes post-processing. An item is delivered at most
// once even when the invocation is retried. Errors from onComplete do not stop
// the download; they are joined into the returned error.
func (c *Client) Download(ctx context.Context, url string, onComplete func(tree.Download) error) error {
	if strings.TrimSpace(c.settings.StagingDir) == "" {
		return errorf("download", url, KindFailed, "staging directory not configured")
	}
	delivered := make(map[tree.ID]struct{})
	var callbackErrs []error
	err := attempt(ctx, c.settings.MaxAttempts, c.backoff, func(ctx context.Context) error {
		lines := &lineWriter{fn: func(line string) {
			done, ok := decodeCompleted(line)
			if !ok {
				return
			}
			if _, seen := delivered[done.ID]; seen {
				return
			}
			delivered[done.ID] = struct{}{}
			if onComplete == nil {
				return
			}
			if err := onComplete(done); err != nil {
				callbackErrs = append(callbackErrs, err)
			}
		}}
		err := c.invoke(ctx, "download", url, c.settings.DownloadTimeout, c.downloadArgs(url), lines)
		lines.Flush()
		return err
	}, c.retryLogger("download", url))
	return errors.Join(append([]error{err}, callbackErrs...)...)
}

// CheckInstalled runs yt-dlp --version and returns the reported version.
func (c *Client) CheckInstalled(ctx context.Context) (string, error) {
	var stdout bytes.Buffer
	stderr := newTailBuffer(stderrTailBytes)
	if err := c.exec.Run(ctx, c.settings.Binary, []string{"--version"}, &stdout, stderr); err != nil {
		return "", newError("version", "", KindNotInstalled, stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (c *Client) invoke(ctx context.Context, op, url string, timeout time.Duration, args []string, stdout io.Writer) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c.logger.Debug("yt-dlp invocation",
		logging.String("op", op),
		logging.String("url", url),
		logging.String("args", strings.Join(args, " ")),
	)
	stderr := newTailBuffer(stderrTailBytes)
	err := c.exec.Run(runCtx, c.settings.Binary, args, stdout, stderr)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return newError(op, url, KindTimeout, stderr.String(), fmt.Errorf("exceeded %s", timeout))
	}
	return newError(op, url, classify(stderr.String()), stderr.String(), err)
}

func (c *Client) retryLogger(op, url string) func(int, time.Duration, error) {
	return func(n int, wait time.Duration, err error) {
		logging.WarnWithContext(c.logger, "yt-dlp attempt failed, retrying", "ytdlp_retry",
			logging.String("op", op),
			logging.String("url", url),
			logging.Int("attempt", n),
			logging.Int("max_attempts", c.settings.MaxAttempts),
			logging.Duration("wait", wait),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "transient network or rate limit failure"),
			logging.String(logging.FieldImpact, "call will be retried"),
		)
	}
}

func (c *Client) commonArgs() []string {
	args := []string{
		"--no-warnings",
		"--retries", strconv.Itoa(c.settings.Retries),
		"--fragment-retries", strconv.Itoa(c.settings.FragmentRetries),
	}
	if ea := c.extractorArgs(); ea != "" {
		args = append(args, "--extractor-args", ea)
	}
	return args
}

func (c *Client) expandArgs(url string) []string {
	args := []string{"-J", "--flat-playlist"}
	args = append(args, c.commonArgs()...)
	args = append(args, c.settings.ExtraArgs...)
	return append(args, url)
}

func (c *Client) downloadArgs(url string) []string {
	args := []string{
		"--no-simulate",
		"--print", completedPrint,
		"--no-progress",
		"--ignore-errors",
		"-o", filepath.Join(c.settings.StagingDir, outputTemplate),
	}
	args = append(args, c.commonArgs()...)
	if c.settings.RemuxTo != "" {
		args = append(args, "--remux-video", c.settings.RemuxTo)
	}
	if c.settings.EmbedSubs {
		args = append(args, "--embed-subs")
	}
	if c.settings.WriteAutoSubs {
		args = append(args, "--write-auto-subs")
	}
	if c.settings.MultiStreams {
		args = append(args, "--audio-multistreams", "--video-multistreams")
	}
	if c.settings.ConcatMultiVideo {
		args = append(args, "--concat-playlist", "multi_video")
	}
	args = append(args, c.settings.ExtraArgs...)
	return append(args, url)
}

// extractorArgs renders the youtube extractor arguments, omitting empty keys.
func (c *Client) extractorArgs() string {
	var parts []string
	if len(c.settings.PlayerClients) > 0 {
		parts = append(parts, "player_client="+strings.Join(c.settings.PlayerClients, ","))
	}
	if len(c.settings.PlayerSkip) > 0 {
		parts = append(parts, "player_skip="+strings.Join(c.settings.PlayerSkip, ","))
	}
	if len(c.settings.Skip) > 0 {
		parts = append(parts, "skip="+strings.Join(c.settings.Skip, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return "youtube:" + strings.Join(parts, ";")
}
