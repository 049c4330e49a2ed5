package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileName is the audit log kept inside the key cache directory.
const FileName = "audit.jsonl"

// Key events recorded in Entry.KeyEvent.
const (
	KeyGenerated = "generated"
	KeyLoaded    = "loaded"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp   string `json:"ts"`                    // RFC3339 with microseconds.
	ID          string `json:"id"`                    // Unique per entry.
	Operation   string `json:"op"`                    // sign or decrypt.
	Cache       string `json:"cache"`                 // Private key path.
	KeyEvent    string `json:"key_event,omitempty"`   // generated or loaded.
	Fingerprint string `json:"fingerprint,omitempty"` // SHA256 fingerprint of the public key.
}

// LogPath returns the path of the audit log for a cache directory.
func LogPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Log appends entry to the audit log in dir, filling in the timestamp and ID
// when they are empty. Callers decide whether a failure matters; the sign
// workflow only warns.
func Log(dir string, entry Entry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	// #nosec G302 -- the audit log holds no secrets.
	f, err := os.OpenFile(LogPath(dir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// ReadEntries reads all entries from the audit log in dir.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(dir string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
