// Package shared contains testing utilities shared between integration tests.
// This file provides helpers for running the jsonsig CLI in-process against
// temporary key caches and decoding its output.
package shared

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/jsonsig/cmd"
)

// TestKeySize keeps key generation fast in integration tests.
const TestKeySize = "1024"

// Document is the decoded stdout of a sign run.
type Document struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PubKey    string `json:"pubkey"`
}

// SetupTestEnvironment isolates the user config dir and returns a fresh key cache dir.
func SetupTestEnvironment(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(cmd.PassphraseEnv, "")
	return filepath.Join(t.TempDir(), "keys")
}

// RunCLI executes the real root command with args and returns stdout and stderr.
func RunCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd.ResetGlobalState()
	t.Cleanup(cmd.ResetGlobalState)

	var stdout, stderr bytes.Buffer
	root := cmd.GetRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	defer func() {
		root.SetOut(nil)
		root.SetErr(nil)
		root.SetArgs(nil)
	}()

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// Sign runs `jsonsig <payload>` against dir and decodes the response.
func Sign(t *testing.T, dir, name, payload string) Document {
	t.Helper()
	stdout, stderr, err := RunCLI(t, "--key-cache-dir", dir, "--key-cache-name", name, "--key-size", TestKeySize, payload)
	if err != nil {
		t.Fatalf("sign failed: %v\nstderr: %s", err, stderr)
	}
	var doc Document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stdout is not a signed response: %v\n%s", err, stdout)
	}
	return doc
}

// WithStdin replaces os.Stdin with a pipe holding input while fn runs.
func WithStdin(t *testing.T, input string, fn func()) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	w.Close()

	original := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = original
		r.Close()
	}()

	fn()
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
