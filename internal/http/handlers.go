package http

import (
	"log/slog"
	"net/http"
	"time"

	"steptrack/internal/core"
	"steptrack/internal/tracker"
)

type entryRow struct {
	ID       string
	Date     string
	Name     string
	Steps    int
	Status   core.Status
	Owed     core.Money
	HasProof bool
	Proof    string
}

func (s *Server) entryRows(entries []core.Entry) []entryRow {
	rules := s.tracker.Rules()
	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		row := entryRow{
			ID:     e.ID,
			Date:   e.Date.String(),
			Name:   e.Participant,
			Steps:  e.Steps,
			Status: rules.Status(e.Steps),
			Owed:   rules.AmountOwed(e.Steps),
		}
		if e.Proof != nil && *e.Proof != "" {
			row.HasProof = true
			row.Proof = *e.Proof
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := struct {
		Participants []string
		Today        string
		TargetSteps  int
		Penalty      core.Money
		IsAdmin      bool
	}{
		Participants: s.tracker.Roster(),
		Today:        core.DateOf(time.Now()).String(),
		TargetSteps:  s.tracker.Rules().TargetSteps,
		Penalty:      s.tracker.Rules().Penalty,
		IsAdmin:      s.isAdmin(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "index.html")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleTrackerView renders the filterable entry table partial.
func (s *Server) handleTrackerView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter := tracker.Filter{Name: sanitizeInput(r.URL.Query().Get("name"))}
	if v := sanitizeInput(r.URL.Query().Get("from")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			filter.From = d
		}
	}
	if v := sanitizeInput(r.URL.Query().Get("to")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			filter.To = d
		}
	}

	entries := s.tracker.Entries(filter)
	rows := s.entryRows(entries)

	var owed core.Money
	for _, row := range rows {
		owed = owed.Add(row.Owed)
	}

	data := struct {
		Rows         []entryRow
		Participants []string
		FilterName   string
		EntryCount   int
		TotalOwed    core.Money
		IsAdmin      bool
	}{
		Rows:         rows,
		Participants: s.tracker.Roster(),
		FilterName:   filter.Name,
		EntryCount:   len(rows),
		TotalOwed:    owed,
		IsAdmin:      s.isAdmin(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "tracker_view.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "tracker_view.html")
		_, _ = w.Write([]byte(`<div class="error">Error rendering tracker</div>`))
	}
}

// handleSummaryView renders the per-participant summary table with
// grand totals.
func (s *Server) handleSummaryView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summaries := s.tracker.Summaries()
	totals := s.tracker.Totals()

	// Participants without entries stay out of the table.
	rows := make([]core.ParticipantSummary, 0, len(summaries))
	for _, sum := range summaries {
		if sum.TotalDays > 0 {
			rows = append(rows, sum)
		}
	}

	data := struct {
		Rows           []core.ParticipantSummary
		TotalOwed      core.Money
		TotalCollected core.Money
		IsAdmin        bool
	}{
		Rows:           rows,
		TotalOwed:      totals.TotalOwed,
		TotalCollected: totals.TotalCollected,
		IsAdmin:        s.isAdmin(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary_view.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "summary_view.html")
		_, _ = w.Write([]byte(`<div class="error">Error rendering summary</div>`))
	}
}

// handleRecentView renders the latest submissions panel.
func (s *Server) handleRecentView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := struct {
		Rows []entryRow
	}{
		Rows: s.entryRows(s.tracker.RecentEntries(10)),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "recent_view.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "recent_view.html")
		_, _ = w.Write([]byte(`<div class="error">Error rendering recent entries</div>`))
	}
}
