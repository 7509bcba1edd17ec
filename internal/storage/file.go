package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV keeps every slot in its own file under a directory.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(slot string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(slot)
	return filepath.Join(f.dir, name+".json")
}

func (f *FileKV) Get(slot string) (string, bool, error) {
	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Put writes to a temporary file and renames it over the slot.
func (f *FileKV) Put(slot, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".slot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(slot))
}

func (f *FileKV) Close() error { return nil }
