package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
)

const testKeySize = "1024"

// runCLI executes the root command with args and returns what it wrote to
// stdout and stderr. Global flag state is reset before and after the run.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	var stdout, stderr bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	t.Cleanup(func() {
		root.SetOut(nil)
		root.SetErr(nil)
		root.SetArgs(nil)
	})

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateConfig points the user config dir at an empty temp dir so a real
// config file never leaks into a test.
func isolateConfig(t *testing.T) string {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv(PassphraseEnv, "")
	return filepath.Join(configHome, "jsonsig", "config.toml")
}
