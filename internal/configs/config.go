package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
)

// ConfigFileName is the name of the config file inside the config directory.
const ConfigFileName = "config.toml"

// Config mirrors config.toml. Zero values mean "not set".
type Config struct {
	KeyCache KeyCacheConfig `toml:"key_cache"`
	Audit    AuditConfig    `toml:"audit"`
}

type KeyCacheConfig struct {
	Dir         string        `toml:"dir,omitempty"`
	Name        string        `toml:"name,omitempty"`
	Bits        int           `toml:"bits,omitempty"`
	Lock        bool          `toml:"lock,omitempty"`
	LockTimeout time.Duration `toml:"lock_timeout,omitempty"`
}

type AuditConfig struct {
	Enabled bool `toml:"enabled,omitempty"`
}

// DefaultConfigPath returns <user config dir>/jsonsig/config.toml, which is
// $XDG_CONFIG_HOME/jsonsig/config.toml on Linux.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "jsonsig", ConfigFileName), nil
}

// LoadConfig reads the config file at path. A missing file yields an empty
// Config. Unknown keys and malformed TOML are reported as ErrInvalidConfig.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	md, err := LoadTOML(path, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", kerrors.ErrInvalidConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", kerrors.ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	if config.KeyCache.Bits < 0 || config.KeyCache.LockTimeout < 0 {
		return nil, fmt.Errorf("%w: %s: negative values are not allowed", kerrors.ErrInvalidConfig, path)
	}

	return config, nil
}

// SaveConfig writes config to path, creating parent directories.
func SaveConfig(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}
	return nil
}
