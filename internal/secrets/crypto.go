package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
)

// MaxPlaintextLength returns the largest message in bytes that RSA-OAEP with
// SHA-256 can encrypt under pub.
func MaxPlaintextLength(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}

// EncryptWithPublicKey encrypts the UTF-8 bytes of payload with RSA-OAEP,
// using SHA-256 for both the label hash and MGF1.
func EncryptWithPublicKey(payload string, publicKey *rsa.PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("%w: no public key", kerrors.ErrEncryption)
	}

	msg := []byte(payload)
	if limit := MaxPlaintextLength(publicKey); len(msg) > limit {
		return nil, fmt.Errorf("%w: payload is %d bytes but a %d bit key holds at most %d",
			kerrors.ErrEncryption, len(msg), publicKey.N.BitLen(), limit)
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrEncryption, err)
	}
	return ciphertext, nil
}

// DecryptWithPrivateKey reverses EncryptWithPublicKey.
func DecryptWithPrivateKey(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("%w: no private key", kerrors.ErrDecryption)
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrDecryption, err)
	}
	return plaintext, nil
}
