package secrets

import (
	"errors"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
)

func TestEncryptWithPublicKey(t *testing.T) {
	kp, err := newTestStore().GenerateKeys(testKeyBits)
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}

	payload := "testing payload stuff, ünïcode ✓"
	ciphertext, err := EncryptWithPublicKey(payload, kp.PublicKey())
	if err != nil {
		t.Fatalf("EncryptWithPublicKey failed: %v", err)
	}
	if len(ciphertext) != testKeyBits/8 {
		t.Errorf("ciphertext length = %d, want %d", len(ciphertext), testKeyBits/8)
	}

	again, err := EncryptWithPublicKey(payload, kp.PublicKey())
	if err != nil {
		t.Fatalf("EncryptWithPublicKey failed: %v", err)
	}
	if string(again) == string(ciphertext) {
		t.Error("OAEP encryption should be randomized")
	}

	plaintext, err := DecryptWithPrivateKey(ciphertext, kp.PrivateKey)
	if err != nil {
		t.Fatalf("DecryptWithPrivateKey failed: %v", err)
	}
	if string(plaintext) != payload {
		t.Errorf("plaintext = %q, want %q", plaintext, payload)
	}
}

func TestEncryptWithPublicKeyCapacity(t *testing.T) {
	kp, err := newTestStore().GenerateKeys(testKeyBits)
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}

	limit := MaxPlaintextLength(kp.PublicKey())
	if limit != testKeyBits/8-66 {
		t.Errorf("MaxPlaintextLength = %d, want %d", limit, testKeyBits/8-66)
	}

	if _, err := EncryptWithPublicKey(strings.Repeat("a", limit), kp.PublicKey()); err != nil {
		t.Errorf("payload at capacity should encrypt: %v", err)
	}

	// 250 characters is a usability bound, not a guarantee for small keys.
	_, err = EncryptWithPublicKey(strings.Repeat("a", 250), kp.PublicKey())
	if !errors.Is(err, kerrors.ErrEncryption) {
		t.Errorf("expected ErrEncryption over capacity, got %v", err)
	}
}

func TestEncryptWithNilKey(t *testing.T) {
	if _, err := EncryptWithPublicKey("x", nil); !errors.Is(err, kerrors.ErrEncryption) {
		t.Errorf("expected ErrEncryption, got %v", err)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	store := newTestStore()
	a, err := store.GenerateKeys(testKeyBits)
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}
	b, err := store.GenerateKeys(testKeyBits)
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}

	ciphertext, err := EncryptWithPublicKey("secret", a.PublicKey())
	if err != nil {
		t.Fatalf("EncryptWithPublicKey failed: %v", err)
	}
	if _, err := DecryptWithPrivateKey(ciphertext, b.PrivateKey); !errors.Is(err, kerrors.ErrDecryption) {
		t.Errorf("expected ErrDecryption, got %v", err)
	}
}
