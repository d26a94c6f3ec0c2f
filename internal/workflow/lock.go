package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"votd/internal/services"
)

// LockFileName is created in the data directory while a run is active.
const LockFileName = "votd.lock"

// RunLock is an exclusive, non-blocking process lock.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock returns a lock backed by path.
func NewRunLock(path string) *RunLock {
	return &RunLock{path: path, lock: flock.New(path)}
}

// Acquire takes the lock or fails with ErrRunAborted when another run holds it.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrRunAborted, "workflow", "lock", "create lock directory", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrRunAborted, "workflow", "lock", l.path, err)
	}
	if !ok {
		return services.Wrap(services.ErrRunAborted, "workflow", "lock",
			fmt.Sprintf("another votd run holds %s", l.path), nil)
	}
	return nil
}

// Release drops the lock.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}
