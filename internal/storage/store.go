// Package storage persists the whole application state as one document.
// Every store holds a single serialized snapshot under one logical key
// and replaces it wholesale on save.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"steptrack/internal/core"
)

// Store is the durable round-trip for the application state.
//
// Load returns the last saved state, or an empty state with a nil error
// when nothing has been saved yet. A decode failure returns an empty
// state together with the error; callers are expected to log it and
// start fresh rather than abort.
type Store interface {
	Load(ctx context.Context) (core.AppState, error)
	Save(ctx context.Context, state core.AppState) error
	Close() error
}

// document is the on-disk shape: the state plus the save timestamp.
type document struct {
	Entries   []core.Entry       `json:"entries"`
	Payments  core.PaymentLedger `json:"payments"`
	Timestamp time.Time          `json:"timestamp"`
}

func encodeState(state core.AppState, now time.Time) ([]byte, error) {
	doc := document{
		Entries:   state.Entries,
		Payments:  state.Payments,
		Timestamp: now,
	}
	if doc.Entries == nil {
		doc.Entries = []core.Entry{}
	}
	if doc.Payments == nil {
		doc.Payments = core.PaymentLedger{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (core.AppState, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.NewAppState(), fmt.Errorf("decode state: %w", err)
	}
	state := core.AppState{Entries: doc.Entries, Payments: doc.Payments}
	if state.Entries == nil {
		state.Entries = []core.Entry{}
	}
	if state.Payments == nil {
		state.Payments = core.PaymentLedger{}
	}
	return state, nil
}
