package backup

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"steptrack/internal/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	state := core.NewAppState()
	proof := "screenshot.png"
	state.Entries = []core.Entry{
		{
			ID:          "e1",
			Participant: "Sam",
			Date:        core.NewDate(2025, 2, 14),
			Steps:       11500,
			Proof:       &proof,
			CreatedAt:   time.Date(2025, 2, 14, 19, 0, 0, 0, time.UTC),
		},
		{
			ID:          "e2",
			Participant: "Joy",
			Date:        core.NewDate(2025, 2, 15),
			Steps:       3000,
			CreatedAt:   time.Date(2025, 2, 15, 8, 0, 0, 0, time.UTC),
		},
	}
	state.Payments["Sam"] = true
	state.Payments["Joy"] = false

	data, err := Export(state, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entry count = %d", len(got.Entries))
	}
	e := got.Entries[0]
	if e.ID != "e1" || e.Participant != "Sam" || e.Steps != 11500 {
		t.Fatalf("entry mismatch: %+v", e)
	}
	if !e.Date.Equal(core.NewDate(2025, 2, 14)) {
		t.Fatalf("date mismatch: %s", e.Date)
	}
	if e.Proof == nil || *e.Proof != "screenshot.png" {
		t.Fatalf("proof mismatch: %v", e.Proof)
	}
	if got.Entries[1].Proof != nil {
		t.Fatalf("absent proof should stay nil")
	}
	if !got.Payments["Sam"] || got.Payments["Joy"] {
		t.Fatalf("payments mismatch: %+v", got.Payments)
	}
}

func TestExportCarriesVersionTag(t *testing.T) {
	data, err := Export(core.NewAppState(), time.Now())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["version"]) != `"1.0"` {
		t.Fatalf("version = %s", raw["version"])
	}
	if _, ok := raw["timestamp"]; !ok {
		t.Fatalf("missing timestamp")
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty object", `{}`},
		{"entries only", `{"entries": []}`},
		{"payments only", `{"payments": {}}`},
		{"not json", `steps`},
		{"entries wrong type", `{"entries": 42, "payments": {}}`},
		{"payments wrong type", `{"entries": [], "payments": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Import([]byte(tc.data)); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("got %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestImportAcceptsEmptyCollections(t *testing.T) {
	state, err := Import([]byte(`{"entries": [], "payments": {}}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(state.Entries) != 0 || len(state.Payments) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestImportIgnoresVersionAndTimestamp(t *testing.T) {
	payload := `{"entries": [], "payments": {}, "version": "9.9", "timestamp": "whenever"}`
	if _, err := Import([]byte(payload)); err != nil {
		t.Fatalf("version/timestamp must not be validated: %v", err)
	}
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(got, "steps-tracker-backup-2025-03-10") || !strings.HasSuffix(got, ".json") {
		t.Fatalf("filename = %s", got)
	}
}
