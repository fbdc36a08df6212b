package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultFolderPath is where DiskStore keeps content when no path is configured.
const DefaultFolderPath = "/tmp/files_manager"

// DiskStore saves content as flat files under a base directory.
type DiskStore struct {
	basePath string
}

// NewDiskStore creates the base directory if missing.
func NewDiskStore(basePath string) (*DiskStore, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = DefaultFolderPath
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{basePath: basePath}, nil
}

// Write stores data under a random file name and returns that name.
func (d *DiskStore) Write(_ context.Context, data []byte) (string, error) {
	handle := uuid.NewString()
	if err := os.WriteFile(filepath.Join(d.basePath, handle), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return handle, nil
}

// Read returns the content behind handle.
func (d *DiskStore) Read(_ context.Context, handle string) ([]byte, error) {
	target, err := d.resolve(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Delete removes the content behind handle; missing content is not an error.
func (d *DiskStore) Delete(_ context.Context, handle string) error {
	target, err := d.resolve(handle)
	if err != nil {
		return nil
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve keeps handles inside basePath.
func (d *DiskStore) resolve(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || handle != filepath.Base(handle) || handle == "." || handle == ".." {
		return "", ErrBlobNotFound
	}
	return filepath.Join(d.basePath, handle), nil
}
