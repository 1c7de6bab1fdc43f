// Package storage abstracts where downloaded product images end up. The
// storefront serves its uploads directory directly, so the local provider is
// the production one; the interface leaves room for an object-store backend.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists a blob under a relative path and returns its public URL.
type Storage interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// Local writes files under a root directory served at baseURL.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local-disk storage provider.
func NewLocal(root, baseURL string) *Local {
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes data to root/path, creating parent directories as needed.
func (l *Local) Put(_ context.Context, path string, data []byte) (string, error) {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || strings.HasPrefix(path, "..") {
		return "", fmt.Errorf("invalid storage path: %q", path)
	}

	dest := filepath.Join(l.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return l.baseURL + "/" + path, nil
}
