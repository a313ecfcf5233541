// Package export renders the two CSV downloads: the per-entry daily
// tracker and the per-participant payment summary.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"steptrack/internal/core"
)

// TrackerFilename and SummaryFilename are the download names.
const (
	TrackerFilename = "daily-tracker.csv"
	SummaryFilename = "payment-summary.csv"
)

// Tracker renders one row per entry in the order given (collection
// order, not re-sorted). Amounts are bare integers with no currency
// symbol.
func Tracker(entries []core.Entry, rules core.Rules) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Name", "Steps", "Status", "Amount Owed"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Date.String(),
			e.Participant,
			strconv.Itoa(e.Steps),
			string(rules.Status(e.Steps)),
			rules.AmountOwed(e.Steps).String(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary renders one row per participant with at least one entry, in
// the order given (roster order).
func Summary(summaries []core.ParticipantSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Name", "Total Days", "Days Missed", "Amount Owed", "Completion Rate", "Payment Status"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, s := range summaries {
		if s.TotalDays == 0 {
			continue
		}
		status := "Unpaid"
		if s.IsPaid {
			status = "Paid"
		}
		row := []string{
			s.Participant,
			strconv.Itoa(s.TotalDays),
			strconv.Itoa(s.DaysMissed),
			s.AmountOwed.String(),
			core.FormatCompletionRate(s.CompletionRate),
			status,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
