package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tokenFileName = "token.txt"

// FileTokenRepository stores the bearer credential as a single plain-text
// file under the cache directory.
type FileTokenRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileTokenRepository(dir string) *FileTokenRepository {
	return &FileTokenRepository{dir: dir}
}

func (r *FileTokenRepository) path() string {
	return filepath.Join(r.dir, tokenFileName)
}

// Load returns the cached token, or "" when the cache entry is absent.
func (r *FileTokenRepository) Load() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token, creating the cache directory as needed.
func (r *FileTokenRepository) Save(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path(), []byte(token), 0o600)
}

// Delete removes the cache entry. Deleting an absent entry is not an error.
func (r *FileTokenRepository) Delete() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
