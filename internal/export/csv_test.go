package export

import (
	"strings"
	"testing"

	"steptrack/internal/core"
)

func TestTrackerCSV(t *testing.T) {
	entries := []core.Entry{
		{ID: "1", Participant: "Sam", Date: core.NewDate(2025, 1, 2), Steps: 12000},
		{ID: "2", Participant: "Joy", Date: core.NewDate(2025, 1, 1), Steps: 4000},
	}

	data, err := Tracker(entries, core.DefaultRules)
	if err != nil {
		t.Fatalf("tracker csv: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d", len(lines))
	}
	if lines[0] != "Date,Name,Steps,Status,Amount Owed" {
		t.Fatalf("header = %q", lines[0])
	}
	// Collection order preserved: Sam's later date stays first.
	if lines[1] != "2025-01-02,Sam,12000,OK,0" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "2025-01-01,Joy,4000,Missed,50" {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestTrackerCSVEmpty(t *testing.T) {
	data, err := Tracker(nil, core.DefaultRules)
	if err != nil {
		t.Fatalf("tracker csv: %v", err)
	}
	if strings.TrimRight(string(data), "\n") != "Date,Name,Steps,Status,Amount Owed" {
		t.Fatalf("empty export should be header only, got %q", data)
	}
}

func TestSummaryCSV(t *testing.T) {
	summaries := []core.ParticipantSummary{
		{Participant: "Sam", TotalDays: 3, DaysMissed: 1, AmountOwed: core.Money{Units: 50}, CompletionRate: 66.66666, IsPaid: true},
		{Participant: "Joy", TotalDays: 0},
		{Participant: "Ramon", TotalDays: 2, DaysMissed: 2, AmountOwed: core.Money{Units: 100}, CompletionRate: 0},
	}

	data, err := Summary(summaries)
	if err != nil {
		t.Fatalf("summary csv: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("participants with zero days must be skipped, got %d lines", len(lines))
	}
	if lines[0] != "Name,Total Days,Days Missed,Amount Owed,Completion Rate,Payment Status" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "Sam,3,1,50,66.7%,Paid" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "Ramon,2,2,100,0.0%,Unpaid" {
		t.Fatalf("row 2 = %q", lines[2])
	}
}
