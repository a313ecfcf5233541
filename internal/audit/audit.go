// Package audit appends tracker events to a durable line-delimited JSON
// log. The worker uses it to keep an immutable record of who changed
// what, independent of the mutable application state.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"steptrack/internal/events"
)

type Log struct {
	mu   sync.Mutex
	file *os.File
}

func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Log{file: f}, nil
}

// Append writes one event as a JSON line and syncs it to disk before
// returning, so an acked AMQP message is always on stable storage.
func (l *Log) Append(event events.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync audit log: %w", err)
	}
	return nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
