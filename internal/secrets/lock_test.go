package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
)

func TestAcquireCacheLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")

	lock, err := AcquireCacheLock(context.Background(), dir, "jsonsig")
	if err != nil {
		t.Fatalf("AcquireCacheLock failed: %v", err)
	}
	if _, err := os.Stat(LockPath(dir, "jsonsig")); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if _, err := AcquireCacheLock(ctx, dir, "jsonsig"); !errors.Is(err, kerrors.ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout while held, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := AcquireCacheLock(context.Background(), dir, "jsonsig")
	if err != nil {
		t.Fatalf("AcquireCacheLock after release failed: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}
}

func TestCacheLocksAreIndependentPerName(t *testing.T) {
	dir := t.TempDir()

	a, err := AcquireCacheLock(context.Background(), dir, "alpha")
	if err != nil {
		t.Fatalf("lock alpha failed: %v", err)
	}
	defer a.Release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b, err := AcquireCacheLock(ctx, dir, "beta")
	if err != nil {
		t.Fatalf("lock beta failed: %v", err)
	}
	defer b.Release()
}
