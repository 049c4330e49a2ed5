package configs

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	"github.com/PolarWolf314/jsonsig/internal/secrets"
)

const (
	// DefaultKeyCacheName is the base name of the cached key files.
	DefaultKeyCacheName = "jsonsig"

	// DefaultKeyCacheDirName is created under the working directory.
	DefaultKeyCacheDirName = "keys"

	// DefaultLockTimeout bounds how long --lock waits for another process.
	DefaultLockTimeout = 30 * time.Second
)

// Settings is the resolved set of values a run uses, after defaults, the
// config file and command-line flags have been layered.
type Settings struct {
	KeyCacheDir  string
	KeyCacheName string
	KeyBits      int
	Lock         bool
	LockTimeout  time.Duration
	Audit        bool
}

// DefaultSettings returns the built-in defaults relative to workDir.
func DefaultSettings(workDir string) Settings {
	return Settings{
		KeyCacheDir:  filepath.Join(workDir, DefaultKeyCacheDirName),
		KeyCacheName: DefaultKeyCacheName,
		KeyBits:      secrets.DefaultKeyBits,
		LockTimeout:  DefaultLockTimeout,
	}
}

// Apply overlays every value set in config onto s.
func (s *Settings) Apply(config *Config) {
	if config == nil {
		return
	}
	if config.KeyCache.Dir != "" {
		s.KeyCacheDir = config.KeyCache.Dir
	}
	if config.KeyCache.Name != "" {
		s.KeyCacheName = config.KeyCache.Name
	}
	if config.KeyCache.Bits != 0 {
		s.KeyBits = config.KeyCache.Bits
	}
	if config.KeyCache.Lock {
		s.Lock = true
	}
	if config.KeyCache.LockTimeout != 0 {
		s.LockTimeout = config.KeyCache.LockTimeout
	}
	if config.Audit.Enabled {
		s.Audit = true
	}
}

// Validate checks the settings and makes the cache directory absolute.
func (s *Settings) Validate() error {
	if s.KeyCacheName == "" {
		return fmt.Errorf("%w: key cache name must not be empty", kerrors.ErrValidation)
	}
	if strings.ContainsAny(s.KeyCacheName, `/\`) || s.KeyCacheName == "." || s.KeyCacheName == ".." {
		return fmt.Errorf("%w: key cache name %q must be a plain file name", kerrors.ErrValidation, s.KeyCacheName)
	}
	if s.KeyBits < secrets.MinKeyBits {
		return fmt.Errorf("%w: key size %d is below the %d bit minimum", kerrors.ErrValidation, s.KeyBits, secrets.MinKeyBits)
	}
	if s.KeyCacheDir == "" {
		return fmt.Errorf("%w: key cache directory must not be empty", kerrors.ErrValidation)
	}
	abs, err := filepath.Abs(s.KeyCacheDir)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %w", kerrors.ErrValidation, s.KeyCacheDir, err)
	}
	s.KeyCacheDir = abs
	return nil
}

// Location returns the cache location described by s.
func (s Settings) Location() secrets.CacheLocation {
	return secrets.CacheLocation{Dir: s.KeyCacheDir, Name: s.KeyCacheName}
}
