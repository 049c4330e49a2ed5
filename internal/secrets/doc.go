// Package secrets manages the cached RSA key pair and the RSA-OAEP
// encryption that jsonsig performs with it.
//
// # Key Cache
//
// A cache location is a directory and a base name. It maps to two files:
//
//   - <dir>/<name>      private key, PEM, mode 0600
//   - <dir>/<name>.pub  public key, PEM, mode 0644
//
// Both files must exist for a cache hit. If either is missing the location
// is treated as empty and a fresh pair is generated and written. A file that
// exists but does not parse, or a public key that does not match the
// private key, is reported as ErrKeyLoad and never silently replaced.
//
// Files are written through a temp file and renamed into place, so a crash
// mid-write leaves either the old file or no file under the final name.
//
// Private keys are read in PKCS#1, PKCS#8, passphrase protected PKCS#8 and
// OpenSSH formats. New keys are written as PKCS#1, or as encrypted PKCS#8
// when the KeyStore has a passphrase.
//
// # Encryption
//
// Payloads are encrypted with RSA-OAEP using SHA-256. The capacity of one
// block is the key size in bytes minus 66, so a 4096 bit key holds up to 446
// bytes of plaintext.
//
// # Concurrency
//
// Nothing in the key store synchronises separate processes. Callers that
// may race on first use can wrap GetOrCreate in AcquireCacheLock.
package secrets
