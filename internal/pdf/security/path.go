// Package security confines file access by path to one work directory.
package security

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator resolves caller-supplied paths inside a work directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does not
// have to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("work directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute work directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the work directory. Paths that leave it, directly or through a symlink,
// are rejected.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a null byte")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	clean := filepath.Clean(path)

	if !within(clean, v.root) {
		return "", fmt.Errorf("path is outside work directory: %s", path)
	}

	// Compare real locations when both exist
	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}
	if resolved, err := filepath.EvalSymlinks(clean); err == nil && !within(resolved, realRoot) {
		return "", fmt.Errorf("path is outside work directory: %s", path)
	}

	return clean, nil
}

// ReadFile reads a file inside the work directory
func (v *PathValidator) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := v.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", path)
	}
	return os.ReadFile(resolved)
}

// WriteFile writes data inside the work directory, creating parent
// directories as needed.
func (v *PathValidator) WriteFile(path string, data []byte) (string, error) {
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o750); err != nil {
		return "", fmt.Errorf("cannot create directory: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return "", fmt.Errorf("cannot write file: %w", err)
	}
	return resolved, nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
