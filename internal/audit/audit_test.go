package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"steptrack/internal/events"
)

func TestAppendWritesOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer log.Close()

	for _, kind := range []events.Kind{events.KindEntryAdded, events.KindEntryDeleted} {
		e := events.Event{Kind: kind, EntryID: "e1", Timestamp: time.Now().UTC()}
		if err := log.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	var kinds []events.Kind
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e events.Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		kinds = append(kinds, e.Kind)
	}
	if len(kinds) != 2 || kinds[0] != events.KindEntryAdded || kinds[1] != events.KindEntryDeleted {
		t.Fatalf("unexpected log contents: %v", kinds)
	}
}

func TestOpenAppendsToExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Append(events.Event{Kind: events.KindDataCleared, Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := second.Append(events.Event{Kind: events.KindDataRestored, Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	second.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 records, got %d", lines)
	}
}
