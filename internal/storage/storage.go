// Package storage keeps uploaded media in a filesystem rooted at MEDIA_ROOT.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidPath is returned for keys that escape the media root.
var ErrInvalidPath = errors.New("storage: invalid path")

// BlobStore saves and removes media files by relative key.
type BlobStore struct {
	fs afero.Fs
}

// NewBlobStore wraps fs. Keys are relative slash-separated paths.
func NewBlobStore(fs afero.Fs) *BlobStore {
	return &BlobStore{fs: fs}
}

// NewDiskBlobStore stores files under root on the local disk, creating it if needed.
func NewDiskBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewBlobStore(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewMemBlobStore keeps files in memory.
func NewMemBlobStore() *BlobStore {
	return NewBlobStore(afero.NewMemMapFs())
}

// cleanKey validates a relative key and returns its rooted filesystem path.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return "/" + cleaned, nil
}

// Save writes data at key, replacing any previous content.
func (s *BlobStore) Save(key string, data []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, key, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Read returns the blob at key.
func (s *BlobStore) Read(key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(s.fs, key)
}

// Exists reports whether key holds a file.
func (s *BlobStore) Exists(key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, key)
}

// Delete removes the blob at key. Missing blobs are not an error.
func (s *BlobStore) Delete(key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// HTTPFileSystem exposes the store for static serving.
func (s *BlobStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir("/")
}
