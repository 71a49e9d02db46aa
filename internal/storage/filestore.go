package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps the raw uploaded CSV bytes on the local filesystem so
// the full row set can be re-read for the rows endpoint and report chart.
type FileStore struct {
	dir string
}

// NewFileStore creates the blob directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the blob under a fresh uuid-based name and returns it.
// A partial write is removed before the error is returned.
func (fs *FileStore) Save(r io.Reader) (string, int64, error) {
	name := uuid.New().String() + ".csv"
	path := filepath.Join(fs.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	return name, size, nil
}

// Open returns a reader over a stored blob. The name must be one returned
// by Save; path separators are rejected.
func (fs *FileStore) Open(storedName string) (io.ReadCloser, error) {
	if err := validateStoredName(storedName); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(fs.dir, storedName))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored blob. Used to clean up when a dataset create
// fails after the blob was written.
func (fs *FileStore) Remove(storedName string) error {
	if err := validateStoredName(storedName); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(fs.dir, storedName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

func validateStoredName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid stored name: %q", name)
	}
	return nil
}
