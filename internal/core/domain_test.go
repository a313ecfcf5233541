package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-01-31" {
		t.Fatalf("round-trip mismatch: %s", d)
	}

	bads := []string{"", "31-01-2025", "2025-13-01", "not a date"}
	for i, s := range bads {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 6, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-06-15"` {
		t.Fatalf("unexpected encoding: %s", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round-trip mismatch: %s != %s", back, d)
	}
}

func TestEntryValidate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"valid", Entry{Participant: "Sam", Date: NewDate(2025, 3, 9), Steps: 12000}, nil},
		{"today is allowed", Entry{Participant: "Sam", Date: NewDate(2025, 3, 10), Steps: 0}, nil},
		{"empty participant", Entry{Participant: "  ", Date: NewDate(2025, 3, 9), Steps: 100}, ErrEmptyParticipant},
		{"zero date", Entry{Participant: "Sam", Steps: 100}, ErrInvalidDate},
		{"future date", Entry{Participant: "Sam", Date: NewDate(2025, 3, 11), Steps: 100}, ErrFutureDate},
		{"negative steps", Entry{Participant: "Sam", Date: NewDate(2025, 3, 9), Steps: -1}, ErrNegativeSteps},
	}
	for _, tc := range cases {
		if got := tc.entry.Validate(now); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAppStateClone(t *testing.T) {
	s := NewAppState()
	s.Entries = append(s.Entries, Entry{ID: "a", Participant: "Sam", Date: NewDate(2025, 1, 1), Steps: 1})
	s.Payments["Sam"] = true

	c := s.Clone()
	c.Entries[0].Steps = 99
	c.Payments["Sam"] = false

	if s.Entries[0].Steps != 1 {
		t.Fatalf("clone shares entry slice")
	}
	if !s.Payments["Sam"] {
		t.Fatalf("clone shares payment map")
	}
}

func TestFindByParticipantAndDate(t *testing.T) {
	s := NewAppState()
	s.Entries = append(s.Entries, Entry{ID: "a", Participant: "Sam", Date: NewDate(2025, 1, 1), Steps: 5000})

	if _, ok := s.FindByParticipantAndDate("Sam", NewDate(2025, 1, 1)); !ok {
		t.Fatalf("expected match")
	}
	if _, ok := s.FindByParticipantAndDate("Sam", NewDate(2025, 1, 2)); ok {
		t.Fatalf("unexpected match on other date")
	}
	if _, ok := s.FindByParticipantAndDate("Joy", NewDate(2025, 1, 1)); ok {
		t.Fatalf("unexpected match on other participant")
	}
}
