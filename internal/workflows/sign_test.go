package workflows

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/jsonsig/internal/audit"
	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	logger "github.com/PolarWolf314/jsonsig/internal/logging"
	"github.com/PolarWolf314/jsonsig/internal/secrets"
)

const testKeyBits = 1024

func testSignOptions(t *testing.T, payload string) SignOptions {
	t.Helper()
	return SignOptions{
		Payload:  payload,
		Location: secrets.CacheLocation{Dir: filepath.Join(t.TempDir(), "keys"), Name: "jsonsig.test"},
		KeyBits:  testKeyBits,
		Logger:   logger.Logger{Out: io.Discard},
	}
}

func TestSignHelloWorld(t *testing.T) {
	opts := testSignOptions(t, "hello world")

	resp, err := Sign(context.Background(), opts)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if resp.Message != "hello world" {
		t.Errorf("message = %q, want %q", resp.Message, "hello world")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil {
		t.Fatalf("signature is not standard base64: %v", err)
	}
	if len(ciphertext) != testKeyBits/8 {
		t.Errorf("decoded signature length = %d, want %d", len(ciphertext), testKeyBits/8)
	}
	if strings.ContainsAny(resp.Signature, "\n-_") {
		t.Errorf("signature should be unwrapped standard base64, got %q", resp.Signature)
	}

	if !strings.HasPrefix(resp.PubKey, "-----BEGIN PUBLIC KEY-----\n") {
		t.Errorf("pubkey missing PEM header: %q", resp.PubKey)
	}
	if !strings.HasSuffix(resp.PubKey, "-----END PUBLIC KEY-----\n") {
		t.Errorf("pubkey missing PEM footer: %q", resp.PubKey)
	}

	// The signature must decrypt back to the message with the cached private key.
	privatePath, publicPath := opts.Location.Paths()
	kp, err := secrets.NewKeyStore(opts.Logger).ReadKeys(privatePath, publicPath)
	if err != nil || kp == nil {
		t.Fatalf("ReadKeys failed: %v", err)
	}
	plaintext, err := secrets.DecryptWithPrivateKey(ciphertext, kp.PrivateKey)
	if err != nil {
		t.Fatalf("DecryptWithPrivateKey failed: %v", err)
	}
	if string(plaintext) != "hello world" {
		t.Errorf("decrypted %q", plaintext)
	}
	if resp.PubKey != string(kp.PublicPEM) {
		t.Error("pubkey differs from the cached public key file")
	}
}

func TestSignResponseJSONShape(t *testing.T) {
	payloads := []string{
		"",
		"hello world",
		"ünïcödé ✓ 日本語 🔑",
		`quotes " and \ backslashes`,
		strings.Repeat("x", 62),
	}

	opts := testSignOptions(t, "")
	for _, payload := range payloads {
		opts.Payload = payload
		resp, err := Sign(context.Background(), opts)
		if err != nil {
			t.Fatalf("Sign(%q) failed: %v", payload, err)
		}

		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			t.Fatalf("MarshalIndent failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		keys := make([]string, 0, len(decoded))
		for k, v := range decoded {
			keys = append(keys, k)
			if _, ok := v.(string); !ok {
				t.Errorf("field %s is %T, want string", k, v)
			}
		}
		sort.Strings(keys)
		if strings.Join(keys, ",") != "message,pubkey,signature" {
			t.Errorf("JSON keys = %v", keys)
		}
		if decoded["message"] != payload {
			t.Errorf("message = %q, want %q", decoded["message"], payload)
		}
	}
}

func TestSignReusesCachedKeys(t *testing.T) {
	opts := testSignOptions(t, "first")

	first, err := Sign(context.Background(), opts)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	opts.Payload = "second"
	second, err := Sign(context.Background(), opts)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if first.PubKey != second.PubKey {
		t.Error("second run should reuse the cached public key")
	}
}

func TestSignDistinctCacheNames(t *testing.T) {
	opts := testSignOptions(t, "payload")
	a, err := Sign(context.Background(), opts)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	opts.Location.Name = "other"
	b, err := Sign(context.Background(), opts)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if a.PubKey == b.PubKey {
		t.Error("different cache names should produce different keys")
	}
}

func TestSignCorruptCache(t *testing.T) {
	opts := testSignOptions(t, "payload")
	privatePath, publicPath := opts.Location.Paths()
	if err := os.MkdirAll(opts.Location.Dir, 0700); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(privatePath, []byte("corrupt"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(publicPath, []byte("corrupt"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Sign(context.Background(), opts); !errors.Is(err, kerrors.ErrKeyLoad) {
		t.Errorf("expected ErrKeyLoad, got %v", err)
	}
}

func TestSignPayloadOverKeyCapacity(t *testing.T) {
	opts := testSignOptions(t, strings.Repeat("a", 250))
	if _, err := Sign(context.Background(), opts); !errors.Is(err, kerrors.ErrEncryption) {
		t.Errorf("expected ErrEncryption for a 1024 bit key, got %v", err)
	}
}

func TestSignWithLock(t *testing.T) {
	opts := testSignOptions(t, "locked")
	opts.Lock = true

	if _, err := Sign(context.Background(), opts); err != nil {
		t.Fatalf("Sign with lock failed: %v", err)
	}

	held, err := secrets.AcquireCacheLock(context.Background(), opts.Location.Dir, opts.Location.Name)
	if err != nil {
		t.Fatalf("lock should be released after Sign: %v", err)
	}
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := Sign(ctx, opts); !errors.Is(err, kerrors.ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout while another holder has the lock, got %v", err)
	}
}

func TestSignAudit(t *testing.T) {
	opts := testSignOptions(t, "audited")
	opts.Audit = true

	for i := 0; i < 2; i++ {
		if _, err := Sign(context.Background(), opts); err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
	}

	entries, err := audit.ReadEntries(opts.Location.Dir)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].KeyEvent != audit.KeyGenerated || entries[1].KeyEvent != audit.KeyLoaded {
		t.Errorf("key events = %q, %q", entries[0].KeyEvent, entries[1].KeyEvent)
	}
	if entries[0].Fingerprint == "" || entries[0].Fingerprint != entries[1].Fingerprint {
		t.Error("both entries should carry the same fingerprint")
	}

	data, err := os.ReadFile(audit.LogPath(opts.Location.Dir))
	if err != nil {
		t.Fatalf("read audit log failed: %v", err)
	}
	if bytes.Contains(data, []byte("audited")) {
		t.Error("audit log must not contain the payload")
	}
}

func TestProduceSignedResponseUsesCache(t *testing.T) {
	dir := t.TempDir()
	store := secrets.NewKeyStore(logger.Logger{Out: io.Discard})
	kp, err := store.GetOrCreate(dir, "jsonsig", testKeyBits)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	resp, err := ProduceSignedResponse("hello world", dir, "jsonsig")
	if err != nil {
		t.Fatalf("ProduceSignedResponse failed: %v", err)
	}
	if resp.PubKey != string(kp.PublicPEM) {
		t.Error("expected the pre-populated cache to be used")
	}
}

func TestBuildResponse(t *testing.T) {
	resp := BuildResponse("msg", []byte{0xfb, 0xff, 0x00}, []byte("PEM\n"))
	if resp.Signature != "+/8A" {
		t.Errorf("signature = %q, want standard alphabet %q", resp.Signature, "+/8A")
	}
	if resp.PubKey != "PEM\n" || resp.Message != "msg" {
		t.Errorf("unexpected response %+v", resp)
	}
}
