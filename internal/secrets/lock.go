package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// CacheLock is an advisory, inter-process lock on one cache location.
type CacheLock struct {
	fl *flock.Flock
}

// LockPath returns the lock file path for dir/name.
func LockPath(dir, name string) string {
	return filepath.Join(dir, name+".lock")
}

// AcquireCacheLock blocks until it holds the exclusive lock for dir/name or
// ctx is done. The cache directory is created if needed.
func AcquireCacheLock(ctx context.Context, dir, name string) (*CacheLock, error) {
	if err := os.MkdirAll(dir, keyDirPerm); err != nil {
		return nil, fmt.Errorf("%w: creating directory %s: %w", kerrors.ErrKeyPersist, dir, err)
	}

	fl := flock.New(LockPath(dir, name))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrLockTimeout, fl.Path())
		}
		return nil, fmt.Errorf("failed to lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrLockTimeout, fl.Path())
	}
	return &CacheLock{fl: fl}, nil
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (l *CacheLock) Release() error {
	return l.fl.Unlock()
}
