// Package errors provides typed error values for jsonsig.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. The CLI maps
// each of them to its own exit code.
//
// # Error Categories
//
//   - Input errors: rejected before the core runs (ErrValidation, ErrInvalidConfig)
//   - Key cache errors: load, generation and persistence failures (ErrKeyLoad,
//     ErrKeyGeneration, ErrKeyPersist, ErrKeyNotFound, ErrLockTimeout)
//   - Crypto errors: OAEP failures (ErrEncryption, ErrDecryption)
//
// A corrupt cache file is reported as ErrKeyLoad. A missing one is not an
// error at all; the key store treats it as a cache miss.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return nil, fmt.Errorf("%w: parsing %s: %v", kerrors.ErrKeyLoad, path, err)
//
// Handle errors in the CLI layer:
//
//	resp, err := workflows.Sign(ctx, opts)
//	if errors.Is(err, kerrors.ErrKeyLoad) {
//	    // Tell the user the cache is corrupt
//	}
package errors
