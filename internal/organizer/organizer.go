package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"ytnodup/internal/fileutil"
	"ytnodup/internal/layout"
	"ytnodup/internal/logging"
	"ytnodup/internal/services"
	"ytnodup/internal/tree"
)

const stage = "organize"

// ErrAlreadyPlaced reports that the library already held the target and the
// staged copy was discarded instead of moved.
var ErrAlreadyPlaced = errors.New("already in library")

// Organizer moves completed downloads into the library.
type Organizer struct {
	deriver   *layout.Deriver
	overwrite bool
	fallback  string
	logger    *slog.Logger
}

// New constructs an organizer. fallbackExt is used when neither yt-dlp nor the
// staged file name reports an extension.
func New(deriver *layout.Deriver, overwrite bool, fallbackExt string, logger *slog.Logger) *Organizer {
	fallbackExt = strings.TrimPrefix(strings.TrimSpace(fallbackExt), ".")
	if fallbackExt == "" {
		fallbackExt = "mkv"
	}
	return &Organizer{
		deriver:   deriver,
		overwrite: overwrite,
		fallback:  fallbackExt,
		logger:    logging.NewComponentLogger(logger, "organizer"),
	}
}

// Materialize derives the final location of d and moves the staged file
// there, returning the final path. When the target exists and overwriting is
// disabled the staged file is removed and the target is returned together
// with ErrAlreadyPlaced.
func (o *Organizer) Materialize(ctx context.Context, d tree.Download) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger := logging.WithContext(ctx, o.logger).With(logging.String(logging.FieldIdentity, string(d.ID)))

	base, err := o.deriver.Derive(d.ID)
	if err != nil {
		if errors.Is(err, tree.ErrUnknownIdentity) {
			return "", services.Wrap(services.ErrNotFound, stage, "derive path", "download was never discovered by the crawl", err)
		}
		return "", services.Wrap(services.ErrValidation, stage, "derive path", "", err)
	}
	target := base + "." + o.extension(d)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", services.Wrap(services.ErrDirectoryCreation, stage, "create directory", filepath.Dir(target), err)
	}

	logger.Info("moving download into library",
		logging.String("from", d.FilePath),
		logging.String("to", target),
	)
	if err := fileutil.MoveFile(d.FilePath, target, o.overwrite); err != nil {
		switch {
		case errors.Is(err, fileutil.ErrTargetExists):
			if rmErr := os.Remove(d.FilePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				return "", services.Wrap(services.ErrTransient, stage, "discard staged copy", d.FilePath, rmErr)
			}
			logger.Info("library already holds download, staged copy discarded", logging.String("path", target))
			return target, ErrAlreadyPlaced
		case isLibraryUnavailable(err):
			return "", services.Wrap(services.ErrTransient, stage, "move", "library unavailable", err)
		default:
			return "", services.Wrap(services.ErrTransient, stage, "move", "", err)
		}
	}
	return target, nil
}

func (o *Organizer) extension(d tree.Download) string {
	if ext := strings.TrimPrefix(strings.TrimSpace(d.Ext), "."); ext != "" {
		return ext
	}
	if ext := strings.TrimPrefix(filepath.Ext(d.FilePath), "."); ext != "" {
		return ext
	}
	return o.fallback
}

// libraryUnavailableErrors lists syscall errors that indicate the library is unavailable.
var libraryUnavailableErrors = []error{
	syscall.ENODEV,
	syscall.ENOTCONN,
	syscall.EHOSTDOWN,
	syscall.ETIMEDOUT,
	syscall.EIO,
	syscall.ESTALE,
}

func isLibraryUnavailable(err error) bool {
	for _, target := range libraryUnavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
