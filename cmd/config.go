package cmd

import (
	"fmt"

	"github.com/PolarWolf314/jsonsig/internal/configs"
	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	"github.com/PolarWolf314/jsonsig/internal/secrets"
	"github.com/PolarWolf314/jsonsig/internal/ui"
	"github.com/PolarWolf314/jsonsig/internal/utils"
	"github.com/spf13/cobra"
)

var forceConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the jsonsig config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a config file holding the default settings",
	Long: `Writes the built-in defaults to the config file so they can be edited.
The file goes to --config, or <user config dir>/jsonsig/config.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = configs.DefaultConfigPath(); err != nil {
				return err
			}
		}

		exists, err := utils.FileExists(path)
		if err != nil {
			return err
		}
		if exists && !forceConfig {
			return fmt.Errorf("%w: %s already exists, use --force to overwrite", kerrors.ErrValidation, path)
		}

		config := &configs.Config{
			KeyCache: configs.KeyCacheConfig{
				Name:        configs.DefaultKeyCacheName,
				Bits:        secrets.DefaultKeyBits,
				LockTimeout: configs.DefaultLockTimeout,
			},
		}
		Logger.Debugf("Writing default config to %s", path)
		if err := configs.SaveConfig(path, config); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), ui.Success.Sprint("✓")+" Wrote config file:"+utils.FormatPaths([]string{path}))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceConfig, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

// resetConfigCommandState resets the config command's global state for testing.
func resetConfigCommandState() {
	forceConfig = false
}
