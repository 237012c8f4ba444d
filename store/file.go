package store

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore persists each partition as one flat JSON file at
// root/<lang>/<context>.json. Saves go through a temporary file in the same
// directory followed by a rename, so a concurrent Load never observes a
// half-written partition.
type FileStore struct{}

// NewFileStore creates a filesystem-backed store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads the partition file. A missing file is an empty partition.
func (s *FileStore) Load(_ context.Context, p Partition) (map[string]string, []string, error) {
	data, err := os.ReadFile(p.Path()) // #nosec G304 - partition paths are caller-provided
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil, nil
		}
		return nil, nil, &CorruptError{Path: p.Path(), Cause: err}
	}

	values, order, err := decodeEntries(data)
	if err != nil {
		return nil, nil, &CorruptError{Path: p.Path(), Cause: err}
	}
	return values, order, nil
}

// Save atomically replaces the partition file, creating the language
// directory on demand.
func (s *FileStore) Save(_ context.Context, p Partition, values map[string]string, order []string) error {
	path := p.Path()

	data, err := encodeEntries(values, order)
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Cause: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Cause: err}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// Verify FileStore implements Store.
var _ Store = (*FileStore)(nil)
