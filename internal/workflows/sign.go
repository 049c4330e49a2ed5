package workflows

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/PolarWolf314/jsonsig/internal/audit"
	logger "github.com/PolarWolf314/jsonsig/internal/logging"
	"github.com/PolarWolf314/jsonsig/internal/secrets"
)

// SignOptions configures the sign workflow.
type SignOptions struct {
	// Payload is the text to encrypt. Length is validated by the caller.
	Payload string

	// Location is the key cache directory and base name.
	Location secrets.CacheLocation

	// KeyBits is the modulus size for a newly generated key. Zero means
	// secrets.DefaultKeyBits.
	KeyBits int

	// Lock holds the advisory cache lock around get-or-create. The wait is
	// bounded by the context.
	Lock bool

	// Audit appends an entry to the cache directory's audit log.
	Audit bool

	// Passphrase protects newly generated private keys and unlocks
	// encrypted cached ones.
	Passphrase []byte

	Logger logger.Logger
}

// SignedResponse is the JSON document printed by jsonsig.
type SignedResponse struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PubKey    string `json:"pubkey"`
}

// Sign obtains the cached key pair (generating it on first use), encrypts
// the payload with RSA-OAEP under the public key and returns the response.
//
// Returns ErrKeyLoad if the cache holds a corrupt key.
// Returns ErrKeyGeneration or ErrKeyPersist if a new key cannot be made or saved.
// Returns ErrEncryption if the payload exceeds the key's OAEP capacity.
// Returns ErrLockTimeout if Lock is set and the context ends first.
func Sign(ctx context.Context, opts SignOptions) (*SignedResponse, error) {
	bits := opts.KeyBits
	if bits == 0 {
		bits = secrets.DefaultKeyBits
	}

	kp, err := getOrCreateKeys(ctx, opts, bits)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debugf("Encrypting %d byte payload with RSA-OAEP/SHA-256", len(opts.Payload))
	ciphertext, err := secrets.EncryptWithPublicKey(opts.Payload, kp.PublicKey())
	if err != nil {
		return nil, err
	}

	if opts.Audit {
		recordAudit(opts.Logger, opts.Location, "sign", kp)
	}

	return BuildResponse(opts.Payload, ciphertext, kp.PublicPEM), nil
}

// ProduceSignedResponse signs payload with the default key size and no
// locking or auditing.
func ProduceSignedResponse(payload, keyCacheDir, keyCacheName string) (*SignedResponse, error) {
	return Sign(context.Background(), SignOptions{
		Payload:  payload,
		Location: secrets.CacheLocation{Dir: keyCacheDir, Name: keyCacheName},
	})
}

// BuildResponse assembles the response. The ciphertext is base64 encoded
// with the standard padded alphabet and the public key PEM is embedded as text.
func BuildResponse(payload string, ciphertext, publicPEM []byte) *SignedResponse {
	return &SignedResponse{
		Message:   payload,
		Signature: base64.StdEncoding.EncodeToString(ciphertext),
		PubKey:    string(publicPEM),
	}
}

func getOrCreateKeys(ctx context.Context, opts SignOptions, bits int) (*secrets.Keypair, error) {
	if opts.Lock {
		lock, err := secrets.AcquireCacheLock(ctx, opts.Location.Dir, opts.Location.Name)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debugf("Holding cache lock %s", secrets.LockPath(opts.Location.Dir, opts.Location.Name))
		defer func() {
			if err := lock.Release(); err != nil {
				opts.Logger.Warnf("Failed to release cache lock: %v", err)
			}
		}()
	}

	store := secrets.NewKeyStore(opts.Logger)
	store.Passphrase = opts.Passphrase

	kp, err := store.GetOrCreate(opts.Location.Dir, opts.Location.Name, bits)
	if err != nil {
		return nil, fmt.Errorf("obtaining key pair for %s: %w", opts.Location.Name, err)
	}
	return kp, nil
}

func recordAudit(log logger.Logger, loc secrets.CacheLocation, op string, kp *secrets.Keypair) {
	privatePath, _ := loc.Paths()
	event := audit.KeyLoaded
	if kp.Generated {
		event = audit.KeyGenerated
	}
	err := audit.Log(loc.Dir, audit.Entry{
		Operation:   op,
		Cache:       privatePath,
		KeyEvent:    event,
		Fingerprint: kp.Fingerprint(),
	})
	if err != nil {
		log.Warnf("Audit log not written: %v", err)
	}
}
