// Package credfile persists the session credential envelope as a single JSON
// document on disk. Writes go through a temp file and rename so the three
// persisted values change as one unit.
package credfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lindero/lindero-auth/internal/session"
)

// Store is a file-backed session.CredentialStore.
type Store struct {
	path string
}

// New returns a store writing to path. The parent directory is created on
// first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the envelope. A missing file means no session; a malformed file
// is treated the same way rather than surfacing a fatal error.
func (s *Store) Load() (session.Envelope, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Envelope{}, false, nil
		}
		return session.Envelope{}, false, fmt.Errorf("read credentials: %w", err)
	}

	var env session.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return session.Envelope{}, false, nil
	}
	if env.Token == "" {
		return session.Envelope{}, false, nil
	}
	return env, true, nil
}

// Save writes the envelope atomically.
func (s *Store) Save(env session.Envelope) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// Clear removes the stored envelope. Absence is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
