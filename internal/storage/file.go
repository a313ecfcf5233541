package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"steptrack/internal/core"
)

// FileStore keeps the serialized state in a single JSON file. Saves go
// through a temp file and rename so a crash mid-write leaves the prior
// snapshot intact.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (core.AppState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.NewAppState(), nil
	}
	if err != nil {
		return core.NewAppState(), fmt.Errorf("read data file: %w", err)
	}

	state, err := decodeState(data)
	if err != nil {
		return core.NewAppState(), err
	}

	slog.DebugContext(ctx, "State loaded from file", "path", s.path, "entries", len(state.Entries))
	return state, nil
}

func (s *FileStore) Save(ctx context.Context, state core.AppState) error {
	data, err := encodeState(state, time.Now().UTC())
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace data file: %w", err)
	}

	slog.DebugContext(ctx, "State saved to file", "path", s.path, "entries", len(state.Entries))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
