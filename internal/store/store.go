// Package store persists room snapshots. Every implementation offers
// last-write-wins semantics scoped to a single room code.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lox/chipholdem/internal/game"
)

// ErrNotFound is returned by Load when no snapshot exists for a code.
var ErrNotFound = errors.New("snapshot not found")

// Store loads and saves room snapshots.
type Store interface {
	Load(ctx context.Context, code string) (*game.Snapshot, error)
	Save(ctx context.Context, code string, snap *game.Snapshot) error
	Close() error
}

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// Open creates a store of the given kind. path is a directory for file
// stores and a database file for sqlite.
func Open(kind, path string) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindFile:
		return NewFile(path)
	case KindSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

func encode(snap *game.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// checkCode rejects codes that cannot safely be used as a file name or key.
func checkCode(code string) error {
	if code == "" {
		return errors.New("empty room code")
	}
	if strings.IndexFunc(code, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) >= 0 {
		return fmt.Errorf("invalid room code %q", code)
	}
	return nil
}
