package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"steptrack/internal/core"
)

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	participant := sanitizeInput(r.FormValue("participant"))
	dateStr := sanitizeInput(r.FormValue("date"))
	proof := optionalFormValue(r, "proof")
	proofData := optionalFormValue(r, "proofData")

	date, err := core.ParseDate(dateStr)
	if err != nil {
		UnprocessableEntityError("Invalid date, use YYYY-MM-DD").Write(w)
		return
	}

	steps, err := parseSteps(r.FormValue("steps"))
	if err != nil {
		UnprocessableEntityError("Steps must be a whole number, zero or more").Write(w)
		return
	}

	entry, err := s.tracker.AddEntry(r.Context(), participant, date, steps, proof, proofData)
	if err != nil {
		s.writeEntryError(w, r, err, participant, dateStr)
		return
	}

	slog.InfoContext(r.Context(), "Entry recorded",
		"entry_id", entry.ID,
		"participant", entry.Participant,
		"date", entry.Date.String(),
		"steps", entry.Steps,
		"component", "entry_handler",
		"operation", "add")

	status := s.tracker.Rules().Status(entry.Steps)
	msg := fmt.Sprintf("%s: %d steps on %s (%s)",
		template.HTMLEscapeString(entry.Participant), entry.Steps, entry.Date.String(), status)

	NewHTMXResponse().
		TriggerEntryChanged().
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		Write(w)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := sanitizeInput(r.FormValue("id"))
	if id == "" {
		BadRequestError("Missing entry id").Write(w)
		return
	}

	steps, err := parseSteps(r.FormValue("steps"))
	if err != nil {
		UnprocessableEntityError("Steps must be a whole number, zero or more").Write(w)
		return
	}

	entry, err := s.tracker.EditEntry(r.Context(), id, steps)
	if err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			NotFoundError("Entry not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to edit entry", "error", err, "entry_id", id)
		InternalServerError("Error saving entry").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Entry updated",
		"entry_id", entry.ID,
		"steps", entry.Steps,
		"component", "entry_handler",
		"operation", "edit")

	NewHTMXResponse().
		TriggerEntryChanged().
		TriggerSuccessNotification("Entry updated").
		Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		MethodNotAllowedError("POST, DELETE").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := sanitizeInput(r.FormValue("id"))
	if id == "" {
		BadRequestError("Missing entry id").Write(w)
		return
	}

	deleted, err := s.tracker.DeleteEntry(r.Context(), id)
	if err != nil && !errors.Is(err, core.ErrEntryNotFound) {
		slog.ErrorContext(r.Context(), "Failed to delete entry", "error", err, "entry_id", id)
		InternalServerError("Error deleting entry").Write(w)
		return
	}
	if !deleted {
		NotFoundError("Entry not found").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Entry deleted",
		"entry_id", id,
		"component", "entry_handler",
		"operation", "delete")

	NewHTMXResponse().
		TriggerEntryChanged().
		TriggerSuccessNotification("Entry deleted").
		Write(w)
}

func (s *Server) handleTogglePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	participant := sanitizeInput(r.FormValue("participant"))
	if participant == "" {
		BadRequestError("Missing participant").Write(w)
		return
	}

	paid, err := s.tracker.TogglePayment(r.Context(), participant)
	if err != nil {
		if errors.Is(err, core.ErrUnknownParticipant) {
			UnprocessableEntityError("Unknown participant").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to toggle payment", "error", err, "participant", participant)
		InternalServerError("Error saving payment status").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Payment flag toggled",
		"participant", participant,
		"paid", paid,
		"component", "payment_handler",
		"operation", "toggle")

	msg := template.HTMLEscapeString(participant) + " marked as unpaid"
	if paid {
		msg = template.HTMLEscapeString(participant) + " marked as paid"
	}

	NewHTMXResponse().
		TriggerPaymentChanged().
		TriggerSuccessNotification(msg).
		Write(w)
}

// writeEntryError maps domain validation failures onto HTMX error
// responses. Every rejection is a 4xx; only persistence failures are 500s.
func (s *Server) writeEntryError(w http.ResponseWriter, r *http.Request, err error, participant, date string) {
	switch {
	case errors.Is(err, core.ErrDuplicateEntry):
		UnprocessableEntityError(fmt.Sprintf("%s already has an entry for %s", participant, date)).Write(w)
	case errors.Is(err, core.ErrEmptyParticipant):
		UnprocessableEntityError("Pick a participant").Write(w)
	case errors.Is(err, core.ErrUnknownParticipant):
		UnprocessableEntityError("Unknown participant").Write(w)
	case errors.Is(err, core.ErrFutureDate):
		UnprocessableEntityError("Date cannot be in the future").Write(w)
	case errors.Is(err, core.ErrInvalidDate):
		UnprocessableEntityError("Invalid date").Write(w)
	case errors.Is(err, core.ErrNegativeSteps):
		UnprocessableEntityError("Steps cannot be negative").Write(w)
	default:
		slog.ErrorContext(r.Context(), "Failed to save entry",
			"error", err,
			"participant", participant,
			"date", date,
			"component", "entry_handler",
			"operation", "add")
		InternalServerError("Error saving entry").Write(w)
	}
}
