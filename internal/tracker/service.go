// Package tracker is the application service that owns the single
// AppState value. Every mutation goes validate → mutate → persist →
// publish, holding the lock so HTTP handlers cannot interleave.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"steptrack/internal/core"
	"steptrack/internal/events"
	"steptrack/internal/storage"
)

// Publisher is the optional event sink for mutations. Publish failures
// never fail the mutation; the state change and its persistence are the
// source of truth.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	Store     storage.Store
	Publisher Publisher // optional
	Rules     core.Rules
	Roster    []string
}

type Tracker struct {
	mu        sync.RWMutex
	state     core.AppState
	store     storage.Store
	publisher Publisher
	rules     core.Rules
	roster    []string
}

// Filter narrows the tracker view. Zero values leave a dimension
// unbounded; Name matches as a case-insensitive substring; the date
// bounds are inclusive.
type Filter struct {
	Name string
	From core.Date
	To   core.Date
}

// New loads the persisted state and returns a ready tracker. A load
// failure is not fatal: the tracker starts with an empty state and logs
// a warning, so a corrupt snapshot never takes the app down.
func New(ctx context.Context, cfg Config) (*Tracker, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("tracker: store is required")
	}
	if cfg.Rules.TargetSteps == 0 {
		cfg.Rules = core.DefaultRules
	}

	state, err := cfg.Store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load saved state, starting fresh", "error", err)
		state = core.NewAppState()
	}

	return &Tracker{
		state:     state,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		rules:     cfg.Rules,
		roster:    append([]string(nil), cfg.Roster...),
	}, nil
}

// Rules returns the step target and penalty in effect.
func (t *Tracker) Rules() core.Rules {
	return t.rules
}

// Roster returns the configured participant list in order.
func (t *Tracker) Roster() []string {
	return append([]string(nil), t.roster...)
}

// AddEntry records a new entry. A second entry for the same
// (participant, date) pair is rejected with ErrDuplicateEntry; changing
// steps for an existing pair must go through EditEntry.
//
// On a persistence failure the entry still stands in memory and is
// returned alongside the error, so callers can surface the storage
// problem without losing the submission.
func (t *Tracker) AddEntry(ctx context.Context, participant string, date core.Date, steps int, proof, proofData *string) (core.Entry, error) {
	entry := core.Entry{
		ID:          uuid.NewString(),
		Participant: participant,
		Date:        date,
		Steps:       steps,
		Proof:       proof,
		ProofData:   proofData,
		CreatedAt:   time.Now().UTC(),
	}

	if err := entry.Validate(time.Now()); err != nil {
		mutationsRejected.WithLabelValues("add").Inc()
		return core.Entry{}, err
	}
	if !t.onRoster(participant) {
		mutationsRejected.WithLabelValues("add").Inc()
		return core.Entry{}, core.ErrUnknownParticipant
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.state.FindByParticipantAndDate(participant, date); exists {
		mutationsRejected.WithLabelValues("add").Inc()
		return core.Entry{}, core.ErrDuplicateEntry
	}

	t.state.Entries = append(t.state.Entries, entry)
	mutationsTotal.WithLabelValues("add").Inc()

	slog.InfoContext(ctx, "Entry added",
		"entry_id", entry.ID,
		"participant", participant,
		"date", date.String(),
		"steps", steps)

	err := t.persistLocked(ctx)
	t.publish(ctx, entryEvent(events.KindEntryAdded, entry))
	return entry, err
}

// EditEntry changes the step count of an existing entry. Participant
// and date are immutable after creation.
func (t *Tracker) EditEntry(ctx context.Context, id string, steps int) (core.Entry, error) {
	if steps < 0 {
		mutationsRejected.WithLabelValues("edit").Inc()
		return core.Entry{}, core.ErrNegativeSteps
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i := range t.state.Entries {
		if t.state.Entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		mutationsRejected.WithLabelValues("edit").Inc()
		return core.Entry{}, core.ErrEntryNotFound
	}

	t.state.Entries[idx].Steps = steps
	entry := t.state.Entries[idx]
	mutationsTotal.WithLabelValues("edit").Inc()

	slog.InfoContext(ctx, "Entry edited", "entry_id", id, "steps", steps)

	err := t.persistLocked(ctx)
	t.publish(ctx, entryEvent(events.KindEntryEdited, entry))
	return entry, err
}

// DeleteEntry removes the entry with the given id. A missing id is
// reported as ErrEntryNotFound; the bool tells whether a removal
// actually happened.
func (t *Tracker) DeleteEntry(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i := range t.state.Entries {
		if t.state.Entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		mutationsRejected.WithLabelValues("delete").Inc()
		return false, core.ErrEntryNotFound
	}

	entry := t.state.Entries[idx]
	t.state.Entries = append(t.state.Entries[:idx], t.state.Entries[idx+1:]...)
	mutationsTotal.WithLabelValues("delete").Inc()

	slog.InfoContext(ctx, "Entry deleted", "entry_id", id, "participant", entry.Participant)

	err := t.persistLocked(ctx)
	t.publish(ctx, entryEvent(events.KindEntryDeleted, entry))
	return true, err
}

// TogglePayment flips a roster participant's paid flag and returns the
// new value. The flag never changes what they owe; it only marks the
// owed amount as collected in the grand totals.
func (t *Tracker) TogglePayment(ctx context.Context, participant string) (bool, error) {
	if !t.onRoster(participant) {
		mutationsRejected.WithLabelValues("toggle_payment").Inc()
		return false, core.ErrUnknownParticipant
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	paid := !t.state.Payments[participant]
	t.state.Payments[participant] = paid
	mutationsTotal.WithLabelValues("toggle_payment").Inc()

	slog.InfoContext(ctx, "Payment toggled", "participant", participant, "paid", paid)

	err := t.persistLocked(ctx)
	event := events.NewEvent(events.KindPaymentToggled)
	event.Participant = participant
	event.Paid = &paid
	t.publish(ctx, event)
	return paid, err
}

// ClearAll wipes every entry and payment record.
func (t *Tracker) ClearAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = core.NewAppState()
	mutationsTotal.WithLabelValues("clear_all").Inc()

	slog.WarnContext(ctx, "All data cleared")

	err := t.persistLocked(ctx)
	t.publish(ctx, events.NewEvent(events.KindDataCleared))
	return err
}

// Restore replaces the whole state with a snapshot parsed from a backup
// file. The caller validates the snapshot first; an invalid file never
// reaches this point.
func (t *Tracker) Restore(ctx context.Context, state core.AppState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = state.Clone()
	mutationsTotal.WithLabelValues("restore").Inc()

	slog.InfoContext(ctx, "State restored from backup",
		"entries", len(state.Entries),
		"payments", len(state.Payments))

	err := t.persistLocked(ctx)
	t.publish(ctx, events.NewEvent(events.KindDataRestored))
	return err
}

// Snapshot returns a deep copy of the current state for export.
func (t *Tracker) Snapshot() core.AppState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

// Entries returns the filtered tracker view, newest date first.
func (t *Tracker) Entries(filter Filter) []core.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	name := strings.ToLower(strings.TrimSpace(filter.Name))
	var out []core.Entry
	for _, e := range t.state.Entries {
		if name != "" && !strings.Contains(strings.ToLower(e.Participant), name) {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

// EntriesInOrder returns all entries in insertion order, the order the
// tracker CSV export uses.
func (t *Tracker) EntriesInOrder() []core.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]core.Entry(nil), t.state.Entries...)
}

// RecentEntries returns up to n entries by creation time, newest first.
func (t *Tracker) RecentEntries(n int) []core.Entry {
	t.mu.RLock()
	out := append([]core.Entry(nil), t.state.Entries...)
	t.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary aggregates one participant's entries.
func (t *Tracker) Summary(participant string) core.ParticipantSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rules.Summary(t.state, participant)
}

// Summaries returns every roster participant's aggregate, in roster order.
func (t *Tracker) Summaries() []core.ParticipantSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]core.ParticipantSummary, 0, len(t.roster))
	for _, p := range t.roster {
		out = append(out, t.rules.Summary(t.state, p))
	}
	return out
}

// Totals returns the grand totals over the whole roster.
func (t *Tracker) Totals() core.GrandTotals {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rules.Totals(t.state, t.roster)
}

// persistLocked saves the full state. The caller holds the write lock.
// On failure the in-memory mutation stands: the user keeps what they
// entered, and the error tells the caller persistence is behind.
func (t *Tracker) persistLocked(ctx context.Context) error {
	if err := t.store.Save(ctx, t.state); err != nil {
		saveFailures.Inc()
		slog.ErrorContext(ctx, "Failed to persist state", "error", err)
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (t *Tracker) publish(ctx context.Context, event events.Event) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish tracker event", "kind", event.Kind, "error", err)
	}
}

func (t *Tracker) onRoster(participant string) bool {
	for _, p := range t.roster {
		if p == participant {
			return true
		}
	}
	return false
}

func entryEvent(kind events.Kind, entry core.Entry) events.Event {
	event := events.NewEvent(kind)
	event.EntryID = entry.ID
	event.Participant = entry.Participant
	event.Date = entry.Date.String()
	event.Steps = entry.Steps
	return event
}
