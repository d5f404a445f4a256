package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore persists uploads on disk. It backs the fallback path when the
// remote store is unavailable.
type LocalStore struct {
	dir string
}

// NewLocal creates the uploads directory if needed.
func NewLocal(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("assets: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the file under the uploads dir and returns its path.
func (s *LocalStore) Save(name string, r io.Reader) (string, error) {
	name = sanitizeName(name)
	if name == "" {
		return "", fmt.Errorf("assets: file name is required")
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("assets: create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("assets: write file: %w", err)
	}
	return path, nil
}

// Remove deletes a previously saved file. Missing files are not an error.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	// Refuse paths outside the uploads dir.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, dir+string(filepath.Separator)) {
		return fmt.Errorf("assets: path outside upload dir")
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
