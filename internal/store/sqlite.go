package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lox/chipholdem/internal/game"
)

// SQLite stores snapshots in a single rooms table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store needs a database path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// go-sqlite3 serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			code TEXT PRIMARY KEY,
			snapshot TEXT NOT NULL,
			hand_number INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create rooms table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, code string) (*game.Snapshot, error) {
	if err := checkCode(code); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM rooms WHERE code = ?", code).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return decode([]byte(data))
}

func (s *SQLite) Save(ctx context.Context, code string, snap *game.Snapshot) error {
	if err := checkCode(code); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rooms (code, snapshot, hand_number, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(code) DO UPDATE SET
			snapshot = excluded.snapshot,
			hand_number = excluded.hand_number,
			updated_at = excluded.updated_at
	`, code, string(data), snap.Hand.Number)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
