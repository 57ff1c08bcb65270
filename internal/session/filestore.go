package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage keeps the record as one JSON document. Writes go through a
// temporary file and a rename so a reader never sees half a record.
type FileStorage struct {
	Path string
}

// NewFileStorage returns a FileStorage rooted at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) Load(context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session.FileStorage.Load: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("session.FileStorage.Load: %w", err)
	}
	return values, nil
}

func (f *FileStorage) Save(_ context.Context, rec Record) error {
	data, err := json.MarshalIndent(rec.Values(), "", "  ")
	if err != nil {
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("session.FileStorage.Save: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear(context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session.FileStorage.Clear: %w", err)
	}
	return nil
}
