package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"steptrack/internal/backup"
	"steptrack/internal/export"
)

// maxRestoreBytes bounds uploaded backup files. Proof screenshots are
// stored inline as data URLs, so backups can get large.
const maxRestoreBytes = 32 << 20

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	if err := s.tracker.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear data", "error", err)
		InternalServerError("Error clearing data").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "All data cleared",
		"component", "admin_handler",
		"operation", "clear")

	NewHTMXResponse().
		TriggerEntryChanged().
		TriggerPaymentChanged().
		TriggerSuccessNotification("All data cleared").
		Write(w)
}

// handleBackup streams the full state as a versioned JSON download.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := time.Now()
	data, err := backup.Export(s.tracker.Snapshot(), now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build backup", "error", err)
		http.Error(w, "Error building backup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename(now)))
	_, _ = w.Write(data)
}

// handleRestore replaces the whole state with an uploaded backup file.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes)
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		slog.ErrorContext(r.Context(), "Parse multipart form error", "error", err)
		BadRequestError("Invalid upload").Write(w)
		return
	}

	upload, _, err := r.FormFile("backup")
	if err != nil {
		BadRequestError("Missing backup file").Write(w)
		return
	}
	defer upload.Close()

	data, err := io.ReadAll(upload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Read upload error", "error", err)
		BadRequestError("Error reading upload").Write(w)
		return
	}

	state, err := backup.Import(data)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidFormat) {
			UnprocessableEntityError("Invalid backup file format").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to parse backup", "error", err)
		UnprocessableEntityError("Invalid backup file").Write(w)
		return
	}

	if err := s.tracker.Restore(r.Context(), state); err != nil {
		slog.ErrorContext(r.Context(), "Failed to restore backup", "error", err)
		InternalServerError("Error restoring backup").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Backup restored",
		"entries", len(state.Entries),
		"component", "admin_handler",
		"operation", "restore")

	NewHTMXResponse().
		TriggerEntryChanged().
		TriggerPaymentChanged().
		TriggerSuccessNotification(fmt.Sprintf("Restored %d entries", len(state.Entries))).
		Write(w)
}

func (s *Server) handleExportTracker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := export.Tracker(s.tracker.EntriesInOrder(), s.tracker.Rules())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to export tracker CSV", "error", err)
		http.Error(w, "Error building export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.TrackerFilename))
	_, _ = w.Write(data)
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := export.Summary(s.tracker.Summaries())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to export summary CSV", "error", err)
		http.Error(w, "Error building export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.SummaryFilename))
	_, _ = w.Write(data)
}
