package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"mattter-gateway/internal/domain"
)

// Credentials is the persisted token/user pair. Both are cleared together
// on logout; only the session store ever writes them.
type Credentials struct {
	Token string             `json:"token,omitempty"`
	User  *domain.UserRecord `json:"user,omitempty"`
}

// CredentialStore abstracts where credentials live between runs. The file
// store is the default; the memory store backs tests and ephemeral sessions.
type CredentialStore interface {
	// Load returns the saved credentials, or a zero value when nothing is
	// persisted.
	Load() (Credentials, error)

	// Save replaces the persisted credentials.
	Save(Credentials) error

	// Clear removes any persisted credentials. Idempotent.
	Clear() error
}

// FileStore persists credentials as a JSON file with owner-only permissions.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (Credentials, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupt file is treated as no credentials rather than a hard
		// failure; the next save rewrites it.
		return Credentials{}, nil
	}
	return creds, nil
}

func (f *FileStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

// MemoryStore keeps credentials in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *MemoryStore) Save(creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
