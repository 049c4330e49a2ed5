package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/PolarWolf314/jsonsig/internal/configs"
	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	logger "github.com/PolarWolf314/jsonsig/internal/logging"
	"github.com/PolarWolf314/jsonsig/internal/ui"
	"github.com/PolarWolf314/jsonsig/internal/utils"
	"github.com/PolarWolf314/jsonsig/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MaxPayloadLength is the longest payload accepted, in code points.
const MaxPayloadLength = 250

// PassphraseEnv names the environment variable holding the private key passphrase.
const PassphraseEnv = "JSONSIG_KEY_PASSPHRASE"

var (
	verbose      bool
	debug        bool
	configPath   string
	keyCacheDir  string
	keyCacheName string
	keySize      int
	lockCache    bool
	auditLog     bool
	Logger       logger.Logger

	rootCmd = &cobra.Command{
		Use:   "jsonsig <payload>",
		Short: "RSA public/private key encode and repackage an input string as JSON",
		Long: fmt.Sprintf(`jsonsig encrypts a UTF-8 string of up to %d characters with RSA-OAEP (SHA-256)
and prints a JSON document holding the message, the base64 ciphertext and the
PEM public key.

The RSA key pair is generated on first use and cached as <dir>/<name> (private,
mode 0600) and <dir>/<name>.pub (public, mode 0644). Later runs reuse it.

Settings are read from the config file, then overridden by flags. Set
%s to protect newly generated private keys with a passphrase.`, MaxPayloadLength, PassphraseEnv),
		Example: `  jsonsig "hello world"
  jsonsig --key-cache-dir /var/lib/jsonsig --key-cache-name service "hello world"`,
		Args:          payloadArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
				Out:     cmd.ErrOrStderr(),
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		RunE: runSign,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable extra status output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user config dir>/jsonsig/config.toml)")
	rootCmd.PersistentFlags().StringVar(&keyCacheDir, "key-cache-dir", "", "where cached RSA keys are stored (default <current working dir>/keys)")
	rootCmd.PersistentFlags().StringVar(&keyCacheName, "key-cache-name", configs.DefaultKeyCacheName, "the basename of the cached keys")
	rootCmd.PersistentFlags().BoolVar(&lockCache, "lock", false, "hold an advisory lock on the key cache while using it")
	rootCmd.PersistentFlags().BoolVar(&auditLog, "audit", false, "append an entry to the key cache audit log")
	rootCmd.Flags().IntVar(&keySize, "key-size", 0, "RSA modulus size in bits for newly generated keys (default 4096)")

	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), FormatError(err))
		return ExitCode(err)
	}
	return 0
}

// payloadArgs requires exactly one valid payload so the core never sees bad input.
func payloadArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one payload argument, got %d", kerrors.ErrValidation, len(args))
	}
	return ValidatePayload(args[0])
}

// ValidatePayload rejects payloads that are not UTF-8 or exceed MaxPayloadLength code points.
func ValidatePayload(payload string) error {
	if !utf8.ValidString(payload) {
		return fmt.Errorf("%w: payload must be valid UTF-8", kerrors.ErrValidation)
	}
	if n := utils.CharCount(payload); n > MaxPayloadLength {
		return fmt.Errorf("%w: input value must be %d chars or less, got %d", kerrors.ErrValidation, MaxPayloadLength, n)
	}
	return nil
}

func runSign(cmd *cobra.Command, args []string) error {
	payload := args[0]
	Logger.Infof("Starting sign command")

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	Logger.Debugf("Key cache: %s/%s (%d bits, lock=%t, audit=%t)",
		settings.KeyCacheDir, settings.KeyCacheName, settings.KeyBits, settings.Lock, settings.Audit)

	ctx, cancel := commandContext(cmd, settings)
	defer cancel()

	location := settings.Location()
	var s *spinner.Spinner
	cleanup := func() {}
	if keyPairMissing(location) {
		s, cleanup = startSpinner(fmt.Sprintf("Generating %d bit key pair...", settings.KeyBits), cmd.ErrOrStderr())
	}

	resp, err := workflows.Sign(ctx, workflows.SignOptions{
		Payload:    payload,
		Location:   location,
		KeyBits:    settings.KeyBits,
		Lock:       settings.Lock,
		Audit:      settings.Audit,
		Passphrase: passphraseFromEnv(),
		Logger:     Logger,
	})
	if err == nil && s != nil {
		privatePath, publicPath := location.Paths()
		s.FinalMSG = ui.Success.Sprint("✓") + " Generated new key pair:" + utils.FormatPaths([]string{privatePath, publicPath})
	}
	cleanup()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	Logger.Infof("Sign command completed")
	return nil
}

// resolveSettings layers defaults, the config file and explicitly set flags.
func resolveSettings(cmd *cobra.Command) (configs.Settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return configs.Settings{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	settings := configs.DefaultSettings(wd)

	path := configPath
	if path == "" {
		if path, err = configs.DefaultConfigPath(); err != nil {
			Logger.Debugf("No default config path: %v", err)
		}
	} else if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return configs.Settings{}, fmt.Errorf("%w: config file %s does not exist", kerrors.ErrInvalidConfig, path)
	}

	if path != "" {
		Logger.Debugf("Loading config from %s", path)
		config, err := configs.LoadConfig(path)
		if err != nil {
			return configs.Settings{}, err
		}
		settings.Apply(config)
	}

	flags := cmd.Flags()
	if flags.Changed("key-cache-dir") {
		settings.KeyCacheDir = keyCacheDir
	}
	if flags.Changed("key-cache-name") {
		settings.KeyCacheName = keyCacheName
	}
	if flags.Changed("key-size") {
		settings.KeyBits = keySize
	}
	if flags.Changed("lock") {
		settings.Lock = lockCache
	}
	if flags.Changed("audit") {
		settings.Audit = auditLog
	}

	if err := settings.Validate(); err != nil {
		return configs.Settings{}, err
	}
	return settings, nil
}

// commandContext bounds the run by the lock timeout when locking is enabled.
func commandContext(cmd *cobra.Command, settings configs.Settings) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if settings.Lock {
		return context.WithTimeout(ctx, settings.LockTimeout)
	}
	return context.WithCancel(ctx)
}

func passphraseFromEnv() []byte {
	if v := os.Getenv(PassphraseEnv); v != "" {
		return []byte(v)
	}
	return nil
}

// Helper functions for testing

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// ResetGlobalState resets flag variables and their Changed markers for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	keyCacheDir = ""
	keyCacheName = configs.DefaultKeyCacheName
	keySize = 0
	lockCache = false
	auditLog = false
	resetConfigCommandState()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, set := range []*pflag.FlagSet{c.PersistentFlags(), c.Flags()} {
			set.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}
