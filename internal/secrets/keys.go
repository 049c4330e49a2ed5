package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	logger "github.com/PolarWolf314/jsonsig/internal/logging"
	"github.com/PolarWolf314/jsonsig/internal/utils"
	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/ssh"
)

const (
	// DefaultKeyBits is the modulus size used for newly generated keys.
	DefaultKeyBits = 4096

	// MinKeyBits is the smallest modulus GenerateKeys accepts.
	MinKeyBits = 1024

	// PrivateKeyPerm is owner read/write only.
	PrivateKeyPerm fs.FileMode = 0600

	// PublicKeyPerm is owner read/write, group and other read.
	PublicKeyPerm fs.FileMode = 0644

	keyDirPerm fs.FileMode = 0700
)

// PEM block types.
const (
	pemTypeRSAPrivate       = "RSA PRIVATE KEY"
	pemTypePKCS8Private     = "PRIVATE KEY"
	pemTypeEncryptedPrivate = "ENCRYPTED PRIVATE KEY"
	pemTypeOpenSSHPrivate   = "OPENSSH PRIVATE KEY"
	pemTypePublic           = "PUBLIC KEY"
)

// ErrPassphraseRequired is returned when a cached private key is encrypted
// and no passphrase was supplied.
var ErrPassphraseRequired = errors.New("private key is passphrase protected")

// Keypair holds an RSA private key together with the exact PEM bytes of both
// halves. The PEM fields are never populated independently.
type Keypair struct {
	PrivateKey *rsa.PrivateKey
	PrivatePEM []byte
	PublicPEM  []byte

	// Generated is true when the pair was created by the call that returned it.
	Generated bool
}

// PublicKey returns the public half of the pair.
func (k *Keypair) PublicKey() *rsa.PublicKey {
	return &k.PrivateKey.PublicKey
}

// Bits returns the modulus size in bits.
func (k *Keypair) Bits() int {
	return k.PrivateKey.N.BitLen()
}

// Fingerprint returns the OpenSSH style SHA256 fingerprint of the public key.
func (k *Keypair) Fingerprint() string {
	pub, err := ssh.NewPublicKey(k.PublicKey())
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}

// KeyStore reads, generates and caches RSA key pairs on disk.
type KeyStore struct {
	Logger logger.Logger

	// Passphrase, when set, encrypts newly generated private keys as PKCS#8
	// and decrypts passphrase protected cached keys.
	Passphrase []byte
}

// NewKeyStore returns a KeyStore that logs through log.
func NewKeyStore(log logger.Logger) *KeyStore {
	return &KeyStore{Logger: log}
}

// ReadKeys loads a cached key pair. It returns (nil, nil) when either file
// is missing, which callers treat as a cache miss. A file that exists but
// cannot be parsed yields an error wrapping ErrKeyLoad.
func (s *KeyStore) ReadKeys(privatePath, publicPath string) (*Keypair, error) {
	privData, ok, err := s.readIfExists(privatePath)
	if err != nil || !ok {
		return nil, err
	}
	pubData, ok, err := s.readIfExists(publicPath)
	if err != nil || !ok {
		return nil, err
	}

	s.Logger.Debugf("Reading existing private key from %s", privatePath)
	privateKey, err := ParsePrivateKeyPEM(privData, s.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", kerrors.ErrKeyLoad, privatePath, err)
	}

	s.Logger.Debugf("Reading existing public key from %s", publicPath)
	publicKey, err := ParsePublicKeyPEM(pubData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", kerrors.ErrKeyLoad, publicPath, err)
	}
	if !publicKey.Equal(&privateKey.PublicKey) {
		return nil, fmt.Errorf("%w: public key at %s does not belong to private key at %s", kerrors.ErrKeyLoad, publicPath, privatePath)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PrivatePEM: privData,
		PublicPEM:  pubData,
	}, nil
}

// readIfExists returns ok=false without an error when path is absent.
func (s *KeyStore) readIfExists(path string) ([]byte, bool, error) {
	exists, err := utils.FileExists(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", kerrors.ErrKeyLoad, err)
	}
	if !exists {
		s.Logger.Debugf("No cached key at %s", path)
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading %s: %w", kerrors.ErrKeyLoad, path, err)
	}
	return data, true, nil
}

// GenerateKeys creates a new RSA key pair of the given size and encodes both
// halves as PEM. Sizes below MinKeyBits are rejected.
func (s *KeyStore) GenerateKeys(bits int) (*Keypair, error) {
	if bits < MinKeyBits {
		return nil, fmt.Errorf("%w: key size %d is below the %d bit minimum", kerrors.ErrKeyGeneration, bits, MinKeyBits)
	}

	s.Logger.Debugf("Generating new %d bit key pair...", bits)
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrKeyGeneration, err)
	}

	privPEM, err := MarshalPrivateKeyPEM(privateKey, s.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrKeyGeneration, err)
	}
	pubPEM, err := MarshalPublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrKeyGeneration, err)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PrivatePEM: privPEM,
		PublicPEM:  pubPEM,
		Generated:  true,
	}, nil
}

// CacheKeys writes the pair to disk, creating parent directories as needed.
// The private key is written 0600 and the public key 0644. Each file is
// replaced atomically, private first.
func (s *KeyStore) CacheKeys(kp *Keypair, privatePath, publicPath string) error {
	if kp == nil || len(kp.PrivatePEM) == 0 || len(kp.PublicPEM) == 0 {
		return fmt.Errorf("%w: key pair is incomplete", kerrors.ErrKeyPersist)
	}

	for _, dir := range []string{filepath.Dir(privatePath), filepath.Dir(publicPath)} {
		if err := os.MkdirAll(dir, keyDirPerm); err != nil {
			return fmt.Errorf("%w: creating directory %s: %w", kerrors.ErrKeyPersist, dir, err)
		}
	}

	s.Logger.Debugf("Caching new private key in %s", privatePath)
	if err := utils.WriteFileAtomic(privatePath, kp.PrivatePEM, PrivateKeyPerm); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrKeyPersist, err)
	}

	s.Logger.Debugf("Caching new public key in %s", publicPath)
	if err := utils.WriteFileAtomic(publicPath, kp.PublicPEM, PublicKeyPerm); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrKeyPersist, err)
	}

	return nil
}

// GetOrCreate returns the key pair cached at dir/name, generating and caching
// a new one when either file is missing. A cache hit is returned unchanged.
func (s *KeyStore) GetOrCreate(dir, name string, bits int) (*Keypair, error) {
	privatePath, publicPath := ResolvePaths(dir, name)

	kp, err := s.ReadKeys(privatePath, publicPath)
	if err != nil {
		return nil, err
	}
	if kp != nil {
		s.Logger.Infof("Using cached %d bit key pair %s", kp.Bits(), kp.Fingerprint())
		return kp, nil
	}

	s.Logger.Infof("No complete key pair at %s, generating a new one", privatePath)
	kp, err = s.GenerateKeys(bits)
	if err != nil {
		return nil, err
	}
	if err := s.CacheKeys(kp, privatePath, publicPath); err != nil {
		return nil, err
	}
	s.Logger.Infof("Cached new key pair %s", kp.Fingerprint())

	return kp, nil
}

// ParsePrivateKeyPEM decodes an RSA private key stored as PKCS#1, PKCS#8,
// passphrase protected PKCS#8 or OpenSSH PEM.
func ParsePrivateKeyPEM(data []byte, passphrase []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing private key")
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case pemTypeRSAPrivate:
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case pemTypePKCS8Private:
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pemTypeEncryptedPrivate:
		if len(passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, passphrase)
	case pemTypeOpenSSHPrivate:
		key, err = parseOpenSSHPrivateKey(data, passphrase)
	default:
		return nil, fmt.Errorf("unsupported private key PEM type %q", block.Type)
	}
	if err != nil {
		return nil, err
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	if err := rsaKey.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RSA private key: %w", err)
	}
	return rsaKey, nil
}

// parseOpenSSHPrivateKey only uses the passphrase when the key turns out to
// be encrypted, so an unencrypted key still loads with a passphrase set.
func parseOpenSSHPrivateKey(data []byte, passphrase []byte) (any, error) {
	key, err := ssh.ParseRawPrivateKey(data)
	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return key, err
	}
	if len(passphrase) == 0 {
		return nil, ErrPassphraseRequired
	}
	return ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
}

// ParsePublicKeyPEM decodes a PKIX "PUBLIC KEY" PEM block holding an RSA key.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypePublic {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}

// MarshalPrivateKeyPEM encodes key as PKCS#1 "RSA PRIVATE KEY", or as
// "ENCRYPTED PRIVATE KEY" PKCS#8 when a passphrase is given.
func MarshalPrivateKeyPEM(key *rsa.PrivateKey, passphrase []byte) ([]byte, error) {
	if len(passphrase) > 0 {
		der, err := pkcs8.MarshalPrivateKey(key, passphrase, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt private key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: pemTypeEncryptedPrivate, Bytes: der}), nil
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemTypeRSAPrivate,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}

// MarshalPublicKeyPEM encodes pub as a PKIX "PUBLIC KEY" block.
func MarshalPublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublic, Bytes: der}), nil
}
