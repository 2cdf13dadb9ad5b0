// Package storage holds uploaded quiz photos. Keys are caller-generated and
// must be unique per upload; the store never overwrites silently by accident
// because colliding keys simply replace the same object (last write wins, as
// with any plain object store).
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes objects under a root directory and serves them through a
// public base URL (the HTTP server mounts the root as a static file tree).
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload persists the payload under key and returns its durable public URL.
func (s *DiskStore) Upload(_ context.Context, key string, data []byte) (string, error) {
	key = filepath.Base(key) // keys are flat file names, never paths
	if key == "" || key == "." {
		return "", fmt.Errorf("empty storage key")
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create storage root: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Root returns the directory the store writes to, for static file serving.
func (s *DiskStore) Root() string {
	return s.root
}
