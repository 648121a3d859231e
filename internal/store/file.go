package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lox/chipholdem/internal/game"
)

// File stores one JSON document per room in a directory.
type File struct {
	dir string
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(code string) string {
	return filepath.Join(f.dir, code+".json")
}

func (f *File) Load(ctx context.Context, code string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkCode(code); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(code))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decode(data)
}

func (f *File) Save(ctx context.Context, code string, snap *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCode(code); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path(code), data, 0o644)
}

func (f *File) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over filename, so a reader sees either the old snapshot or the new one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	committed = true
	return nil
}
