package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// FileSystemStore is a filesystem-based implementation of the ObjectStore
// interface. Keys are hierarchical paths and map directly onto directories
// under the root:
//
//	<root>/
//	  objects/
//	    <key>            (the blob)
//	    <key>.info.json  (content type + sidecar metadata)
type FileSystemStore struct {
	root       string
	objectsDir string
}

// NewFileSystemStore creates a filesystem object store rooted at the given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	objectsDir := filepath.Join(root, "objects")
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	return &FileSystemStore{root: root, objectsDir: objectsDir}, nil
}

// Put stores a blob at key, creating intermediate directories as needed.
func (s *FileSystemStore) Put(_ context.Context, key string, r io.Reader, size int64, info screenshot.ObjectInfo) error {
	destPath := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create object file: %w", err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to write object: %w", err)
	}
	if written != size {
		os.Remove(destPath)
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	infoData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode object info: %w", err)
	}
	if err := os.WriteFile(destPath+".info.json", infoData, 0644); err != nil {
		return fmt.Errorf("failed to write object info: %w", err)
	}
	return nil
}

// Get writes the blob at key to w.
func (s *FileSystemStore) Get(_ context.Context, key string, w io.Writer) error {
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object not found: %s", key)
		}
		return fmt.Errorf("failed to open object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	return nil
}

// Delete removes the blob at key and its info sidecar.
func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	destPath := s.objectPath(key)
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	if err := os.Remove(destPath + ".info.json"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object info: %w", err)
	}
	return nil
}

// ValidateSetup verifies the root directory is writable.
func (s *FileSystemStore) ValidateSetup(context.Context) error {
	probe := filepath.Join(s.objectsDir, ".probe")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return fmt.Errorf("objects directory not writable: %w", err)
	}
	return os.Remove(probe)
}

func (s *FileSystemStore) objectPath(key string) string {
	return filepath.Join(s.objectsDir, filepath.FromSlash(key))
}

// Compile-time check that FileSystemStore implements the ObjectStore interface.
var _ screenshot.ObjectStore = (*FileSystemStore)(nil)
