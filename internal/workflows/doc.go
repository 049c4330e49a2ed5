// Package workflows provides high-level orchestration for jsonsig commands.
//
// Workflows tie the key store, the encryptor and the audit log together,
// independent of CLI concerns like flag parsing, spinners and output
// formatting. The cmd package parses and validates input, calls a workflow
// and prints the result.
//
// # Available Workflows
//
//   - Sign: get-or-create the cached key pair, encrypt the payload, build the
//     {message, signature, pubkey} response
//   - Decrypt: reverse a signature with the cached private key
//
// # Error Handling
//
// Workflows return errors wrapping the sentinels in internal/errors so the
// CLI can pick an exit code with errors.Is:
//
//	resp, err := workflows.Sign(ctx, opts)
//	if errors.Is(err, kerrors.ErrKeyLoad) {
//	    // The cache is corrupt; tell the user which file
//	}
package workflows
