package workflows

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	logger "github.com/PolarWolf314/jsonsig/internal/logging"
	"github.com/PolarWolf314/jsonsig/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// Signature is the base64 text from a SignedResponse.
	Signature string

	Location   secrets.CacheLocation
	Lock       bool
	Audit      bool
	Passphrase []byte
	Logger     logger.Logger
}

// Decrypt recovers the message from a signature produced by Sign using the
// cached private key. It never generates keys.
//
// Returns ErrKeyNotFound if the cache location is empty.
// Returns ErrValidation if the signature is not standard base64.
// Returns ErrDecryption if the ciphertext was not made for this key.
func Decrypt(ctx context.Context, opts DecryptOptions) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(opts.Signature))
	if err != nil {
		return "", fmt.Errorf("%w: signature is not valid base64: %v", kerrors.ErrValidation, err)
	}

	privatePath, publicPath := opts.Location.Paths()

	if opts.Lock {
		// Locking creates the cache directory, which decrypt must not do.
		if _, err := os.Stat(opts.Location.Dir); errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, privatePath)
		}
		lock, err := secrets.AcquireCacheLock(ctx, opts.Location.Dir, opts.Location.Name)
		if err != nil {
			return "", err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				opts.Logger.Warnf("Failed to release cache lock: %v", err)
			}
		}()
	}

	store := secrets.NewKeyStore(opts.Logger)
	store.Passphrase = opts.Passphrase

	kp, err := store.ReadKeys(privatePath, publicPath)
	if err != nil {
		return "", err
	}
	if kp == nil {
		return "", fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, privatePath)
	}

	plaintext, err := secrets.DecryptWithPrivateKey(ciphertext, kp.PrivateKey)
	if err != nil {
		return "", err
	}

	if opts.Audit {
		recordAudit(opts.Logger, opts.Location, "decrypt", kp)
	}

	return string(plaintext), nil
}
