package errors

import "errors"

// Input errors are raised at the CLI boundary before any key material is touched.
var (
	// ErrValidation indicates the payload or a flag value was rejected.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidConfig indicates the config file is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")
)

// Key cache errors indicate failures in the key lifecycle.
var (
	// ErrKeyLoad indicates a cached key file exists but could not be parsed.
	ErrKeyLoad = errors.New("failed to load cached key")

	// ErrKeyGeneration indicates the key generation primitive failed.
	ErrKeyGeneration = errors.New("failed to generate key pair")

	// ErrKeyPersist indicates a newly generated key pair could not be written to disk.
	ErrKeyPersist = errors.New("failed to persist key pair")

	// ErrKeyNotFound indicates no cached key pair exists at the requested location.
	ErrKeyNotFound = errors.New("key pair not found")

	// ErrLockTimeout indicates the cache lock could not be acquired in time.
	ErrLockTimeout = errors.New("timed out waiting for key cache lock")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryption indicates the payload could not be encrypted under the public key.
	ErrEncryption = errors.New("failed to encrypt payload")

	// ErrDecryption indicates the ciphertext could not be decrypted with the private key.
	ErrDecryption = errors.New("failed to decrypt payload")
)
