// Package packagesync moves deck package files between the local package
// directory and shared storage.
package packagesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"votd/internal/fileutil"
	"votd/internal/logging"
)

// Syncer fetches and publishes package files.
type Syncer interface {
	// DownloadIfNewer refreshes the local copy of name and returns its path.
	// The path is empty when no copy exists anywhere.
	DownloadIfNewer(ctx context.Context, name string) (string, error)
	// Upload publishes the file at path.
	Upload(ctx context.Context, path string) error
}

// Local keeps packages in a directory and never talks to a remote.
type Local struct {
	dir    string
	logger *slog.Logger
}

var _ Syncer = (*Local)(nil)

// NewLocal returns a directory-only Syncer.
func NewLocal(dir string, logger *slog.Logger) *Local {
	return &Local{dir: dir, logger: logging.NewComponentLogger(logger, "packagesync")}
}

// DownloadIfNewer returns the package path when it exists in the directory.
func (l *Local) DownloadIfNewer(_ context.Context, name string) (string, error) {
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Info("no local package", logging.String("package", name))
			return "", nil
		}
		return "", fmt.Errorf("stat package %s: %w", path, err)
	}
	return path, nil
}

// Upload copies path into the package directory unless it is already there.
func (l *Local) Upload(_ context.Context, path string) error {
	target := filepath.Join(l.dir, filepath.Base(path))
	if same, err := samePath(path, target); err != nil || same {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create package dir: %w", err)
	}
	if err := fileutil.CopyFileVerified(path, target); err != nil {
		return fmt.Errorf("copy package %s: %w", path, err)
	}
	l.logger.Info("package stored", logging.String("path", target))
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
