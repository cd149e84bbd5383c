package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"taskpro/internal/service"
)

// TokenStore persists the session between runs.
type TokenStore interface {
	// Load returns an error satisfying errors.Is(err, os.ErrNotExist) when
	// nothing is stored.
	Load() (service.Identity, error)
	Save(id service.Identity) error
	Clear() error
}

// FileStore keeps the session as JSON in a single file with mode 0600.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the stored identity.
func (f *FileStore) Load() (service.Identity, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return service.Identity{}, err
	}
	var id service.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return service.Identity{}, fmt.Errorf("invalid session file: %w", err)
	}
	if id.UserID == "" || id.Token == nil || id.Token.AccessToken == "" {
		return service.Identity{}, fmt.Errorf("invalid session file: missing token")
	}
	return id, nil
}

// Save writes id, creating the parent directory with mode 0700.
func (f *FileStore) Save(id service.Identity) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Clear deletes the file.
func (f *FileStore) Clear() error {
	return os.Remove(f.Path)
}
