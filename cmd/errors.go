package cmd

import (
	"errors"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	"github.com/PolarWolf314/jsonsig/internal/ui"
)

// Exit codes returned by Execute.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitValidation      = 2
	ExitKeyLoad         = 3
	ExitKeyGeneration   = 4
	ExitKeyPersist      = 5
	ExitCryptoOperation = 6
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, kerrors.ErrValidation), errors.Is(err, kerrors.ErrInvalidConfig):
		return ExitValidation
	case errors.Is(err, kerrors.ErrKeyLoad), errors.Is(err, kerrors.ErrKeyNotFound):
		return ExitKeyLoad
	case errors.Is(err, kerrors.ErrKeyGeneration):
		return ExitKeyGeneration
	case errors.Is(err, kerrors.ErrKeyPersist), errors.Is(err, kerrors.ErrLockTimeout):
		return ExitKeyPersist
	case errors.Is(err, kerrors.ErrEncryption), errors.Is(err, kerrors.ErrDecryption):
		return ExitCryptoOperation
	default:
		return ExitFailure
	}
}

// FormatError renders err for the terminal, with a hint where one helps.
func FormatError(err error) string {
	msg := ui.Error.Sprint("✗") + " " + err.Error()

	var hint string
	switch {
	case errors.Is(err, kerrors.ErrKeyLoad):
		hint = "The cached key files are unreadable. Remove them to generate a new pair, or point " +
			ui.Flag.Sprint("--key-cache-dir") + " elsewhere"
	case errors.Is(err, kerrors.ErrKeyNotFound):
		hint = "Run " + ui.Code.Sprint("jsonsig <payload>") + " first to create a key pair"
	case errors.Is(err, kerrors.ErrLockTimeout):
		hint = "Another jsonsig process is using this key cache"
	case errors.Is(err, kerrors.ErrInvalidConfig):
		hint = "Run " + ui.Code.Sprint("jsonsig config init --force") + " to rewrite the config file"
	}
	if hint != "" {
		msg += "\n" + ui.Info.Sprint("→") + " " + hint
	}
	return msg
}
