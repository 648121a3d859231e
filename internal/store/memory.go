package store

import (
	"context"
	"sync"

	"github.com/lox/chipholdem/internal/game"
)

// Memory keeps encoded snapshots in a map. Snapshots are stored encoded so
// callers never share state with the store.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string][]byte
	saves int
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, code string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkCode(code); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (m *Memory) Save(ctx context.Context, code string, snap *game.Snapshot) error {
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
	m.mu.Lock()
	m.rooms[code] = data
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many snapshots have been written.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *Memory) Close() error {
	return nil
}
