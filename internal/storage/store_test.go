package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"steptrack/internal/core"
)

func sampleState() core.AppState {
	state := core.NewAppState()
	state.Entries = []core.Entry{
		{
			ID:          "e1",
			Participant: "Sam",
			Date:        core.NewDate(2025, 1, 1),
			Steps:       12000,
			CreatedAt:   time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			ID:          "e2",
			Participant: "Joy",
			Date:        core.NewDate(2025, 1, 2),
			Steps:       4000,
			CreatedAt:   time.Date(2025, 1, 2, 21, 30, 0, 0, time.UTC),
		},
	}
	state.Payments["Joy"] = true
	return state
}

func assertStateEqual(t *testing.T, got, want core.AppState) {
	t.Helper()
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("entry count = %d, want %d", len(got.Entries), len(want.Entries))
	}
	for i := range want.Entries {
		g, w := got.Entries[i], want.Entries[i]
		if g.ID != w.ID || g.Participant != w.Participant || g.Steps != w.Steps {
			t.Fatalf("entry %d mismatch: %+v != %+v", i, g, w)
		}
		if !g.Date.Equal(w.Date) {
			t.Fatalf("entry %d date mismatch: %s != %s", i, g.Date, w.Date)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Fatalf("entry %d createdAt mismatch: %s != %s", i, g.CreatedAt, w.CreatedAt)
		}
	}
	if len(got.Payments) != len(want.Payments) {
		t.Fatalf("payment count = %d, want %d", len(got.Payments), len(want.Payments))
	}
	for k, v := range want.Payments {
		if got.Payments[k] != v {
			t.Fatalf("payment %s = %v, want %v", k, got.Payments[k], v)
		}
	}
}

func testRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	initial, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	if len(initial.Entries) != 0 || len(initial.Payments) != 0 {
		t.Fatalf("fresh store is not empty: %+v", initial)
	}

	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	assertStateEqual(t, got, want)

	// A second save replaces the snapshot wholesale.
	want.Entries = want.Entries[:1]
	want.Payments = core.PaymentLedger{}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load after second save: %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	testRoundTrip(t, NewMemoryStore())
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	testRoundTrip(t, store)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()
	testRoundTrip(t, store)
}

func TestFileStoreMalformedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	state, err := store.Load(context.Background())
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(state.Entries) != 0 || len(state.Payments) != 0 {
		t.Fatalf("malformed load must yield empty state, got %+v", state)
	}
}

func TestMemoryStoreMalformedPayload(t *testing.T) {
	store := NewMemoryStore()
	store.Corrupt()

	state, err := store.Load(context.Background())
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(state.Entries) != 0 {
		t.Fatalf("malformed load must yield empty state")
	}
}
