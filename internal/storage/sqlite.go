package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"steptrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the serialized state in a single-row table. The row
// is replaced wholesale on every save, matching the one-key contract.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.AppState, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewAppState(), nil
	}
	if err != nil {
		return core.NewAppState(), fmt.Errorf("read state row: %w", err)
	}

	state, err := decodeState(payload)
	if err != nil {
		return core.NewAppState(), err
	}

	slog.DebugContext(ctx, "State loaded from SQLite", "entries", len(state.Entries))
	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state core.AppState) error {
	payload, err := encodeState(state, time.Now().UTC())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write state row: %w", err)
	}

	slog.DebugContext(ctx, "State saved to SQLite",
		"entries", len(state.Entries),
		"payments", len(state.Payments))
	return nil
}
