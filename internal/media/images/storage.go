// Package images stores downloaded catalog pictures on local disk.
package images

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages the uploads directory.
// Thread-safe for concurrent operations.
type Storage struct {
	dir    string
	prefix string
	mu     sync.RWMutex // Protects file operations and Reset
}

// NewStorage creates the uploads directory if needed. Saved files are
// reported to callers as prefix + "/" + filename (e.g. /uploads/apple_1a2b3c4d.jpg).
func NewStorage(dir, prefix string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads directory cannot be empty")
	}
	if prefix == "" {
		prefix = "/uploads"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &Storage{
		dir:    dir,
		prefix: strings.TrimSuffix(prefix, "/"),
	}, nil
}

// Dir returns the uploads directory.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes data under filename and returns its public path.
// filename must be a bare name with no directory components.
func (s *Storage) Save(filename string, data []byte) (string, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.WriteFile(s.Path(filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.PublicPath(filename), nil
}

// Exists checks if a file with this name is stored.
func (s *Storage) Exists(filename string) bool {
	if checkName(filename) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *Storage) Delete(filename string) error {
	if err := checkName(filename); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Count returns the number of regular files directly inside the uploads directory.
func (s *Storage) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count()
}

func (s *Storage) count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n, nil
}

// Reset removes the whole uploads directory and recreates it empty.
// It returns how many files existed before removal. A failed count does not
// stop the removal; the count error is returned alongside.
func (s *Storage) Reset() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, countErr := s.count()

	if err := os.RemoveAll(s.dir); err != nil {
		return 0, fmt.Errorf("failed to remove uploads directory: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return n, fmt.Errorf("failed to recreate uploads directory: %w", err)
	}
	if countErr != nil {
		return n, fmt.Errorf("failed to count uploads: %w", countErr)
	}
	return n, nil
}

// Path returns the filesystem path for a stored file.
func (s *Storage) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// PublicPath returns the path callers store on entities.
func (s *Storage) PublicPath(filename string) string {
	return path.Join(s.prefix, filename)
}

func checkName(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if filename != filepath.Base(filename) || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return nil
}
