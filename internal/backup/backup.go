// Package backup serializes the application state to a transportable,
// versioned JSON file and parses such files back. Import is all or
// nothing: a file missing the expected top-level shape is rejected
// without touching existing state.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"steptrack/internal/core"
)

// Version tags exported files. Informational only; import does not
// validate it.
const Version = "1.0"

var ErrInvalidFormat = errors.New("invalid backup file format")

type file struct {
	Entries   []core.Entry       `json:"entries"`
	Payments  core.PaymentLedger `json:"payments"`
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
}

// Export renders the state as indented JSON with a version tag and
// export timestamp.
func Export(state core.AppState, now time.Time) ([]byte, error) {
	f := file{
		Entries:   state.Entries,
		Payments:  state.Payments,
		Timestamp: now,
		Version:   Version,
	}
	if f.Entries == nil {
		f.Entries = []core.Entry{}
	}
	if f.Payments == nil {
		f.Payments = core.PaymentLedger{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Import parses backup bytes into a state. The top-level object must
// carry both an "entries" collection and a "payments" mapping (either
// may be empty); anything else fails with ErrInvalidFormat.
func Import(data []byte) (core.AppState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return core.AppState{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	rawEntries, hasEntries := probe["entries"]
	rawPayments, hasPayments := probe["payments"]
	if !hasEntries || !hasPayments {
		return core.AppState{}, ErrInvalidFormat
	}

	state := core.NewAppState()
	if err := json.Unmarshal(rawEntries, &state.Entries); err != nil {
		return core.AppState{}, fmt.Errorf("%w: entries: %v", ErrInvalidFormat, err)
	}
	if err := json.Unmarshal(rawPayments, &state.Payments); err != nil {
		return core.AppState{}, fmt.Errorf("%w: payments: %v", ErrInvalidFormat, err)
	}
	if state.Entries == nil {
		state.Entries = []core.Entry{}
	}
	if state.Payments == nil {
		state.Payments = core.PaymentLedger{}
	}
	return state, nil
}

// Filename is the download name for a backup taken at the given time,
// e.g. "steps-tracker-backup-2025-03-10.json".
func Filename(now time.Time) string {
	return "steps-tracker-backup-" + now.UTC().Format("2006-01-02") + ".json"
}
