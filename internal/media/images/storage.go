// Package images stores gallery uploads and export blobs on the filesystem
// and maps stored names to public URLs.
package images

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages blob filesystem operations. Thread-safe.
// Names are slash-separated relative paths, e.g. "gallery/user-1/abc.png"
// or "exports/tok.png".
type Storage struct {
	basePath  string
	publicURL string
	mu        sync.RWMutex
}

// NewStorage creates a Storage rooted at {basePath}/media. publicURL is the
// base under which the stored files are served, e.g.
// "http://localhost:8080/media".
func NewStorage(basePath, publicURL string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "media")
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &Storage{
		basePath:  storagePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Save stores blob data under name and returns its public URL.
func (s *Storage) Save(name string, r io.Reader) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read blob data: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("blob data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}

	return s.URL(name), nil
}

// Get retrieves blob data by name.
func (s *Storage) Get(name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read blob file: %w", err)
	}
	return data, nil
}

// Exists checks whether a blob exists.
func (s *Storage) Exists(name string) bool {
	p, err := s.path(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(p)
	return err == nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *Storage) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob file: %w", err)
	}
	return nil
}

// List returns the names of all blobs under prefix, for the image picker.
func (s *Storage) List(prefix string) ([]string, error) {
	root, err := s.path(prefix)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // empty prefix lists as empty
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return names, nil
}

// Hash computes the SHA256 of a blob, hex-encoded for ETag validation.
func (s *Storage) Hash(name string) (string, error) {
	data, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// URL maps a blob name to its public URL.
func (s *Storage) URL(name string) string {
	return s.publicURL + "/" + path.Clean(name)
}

// FilePath resolves a blob name to its filesystem path, for HTTP file
// serving.
func (s *Storage) FilePath(name string) (string, error) {
	return s.path(name)
}

// path joins name under the storage root, rejecting traversal.
func (s *Storage) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("blob name cannot be empty")
	}
	clean := path.Clean(filepath.ToSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid blob name: %s", name)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}
