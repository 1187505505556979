package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore stores media files under a directory on disk, one
// subdirectory per usage area. Files are served back under /media/.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local file store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Root returns the store's root directory
func (s *LocalStore) Root() string {
	return s.root
}

// Save writes a file into the given folder, creating it if needed
func (s *LocalStore) Save(ctx context.Context, folder, filename string, r io.Reader) error {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}

// Remove deletes a file from the given folder
func (s *LocalStore) Remove(ctx context.Context, folder, filename string) error {
	if err := os.Remove(filepath.Join(s.root, folder, filename)); err != nil {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// URL returns the path the file is served under
func (s *LocalStore) URL(folder, filename string) string {
	return "/media/" + folder + "/" + filename
}
