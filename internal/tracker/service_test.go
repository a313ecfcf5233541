package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"steptrack/internal/core"
	"steptrack/internal/events"
	"steptrack/internal/storage"
)

var testRoster = []string{"Sam", "Joy", "Ramon"}

func newTestTracker(t *testing.T) (*Tracker, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	tr, err := New(context.Background(), Config{
		Store:  store,
		Rules:  core.DefaultRules,
		Roster: testRoster,
	})
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr, store
}

func yesterday() core.Date {
	return core.DateOf(time.Now().AddDate(0, 0, -1))
}

func TestAddEntryDuplicateRejected(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	date := yesterday()

	if _, err := tr.AddEntry(ctx, "Sam", date, 12000, nil, nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := tr.AddEntry(ctx, "Sam", date, 500, nil, nil); !errors.Is(err, core.ErrDuplicateEntry) {
		t.Fatalf("second add: got %v, want ErrDuplicateEntry", err)
	}

	entries := tr.EntriesInOrder()
	if len(entries) != 1 {
		t.Fatalf("entry count = %d, want 1", len(entries))
	}
	if entries[0].Steps != 12000 {
		t.Fatalf("surviving entry has steps %d", entries[0].Steps)
	}
}

func TestAddEntryValidation(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		participant string
		date        core.Date
		steps       int
		want        error
	}{
		{"empty participant", "", yesterday(), 100, core.ErrEmptyParticipant},
		{"off roster", "Nobody", yesterday(), 100, core.ErrUnknownParticipant},
		{"future date", "Sam", core.DateOf(time.Now().AddDate(0, 0, 1)), 100, core.ErrFutureDate},
		{"negative steps", "Sam", yesterday(), -5, core.ErrNegativeSteps},
	}
	for _, tc := range cases {
		if _, err := tr.AddEntry(ctx, tc.participant, tc.date, tc.steps, nil, nil); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
	if len(tr.EntriesInOrder()) != 0 {
		t.Fatalf("rejected adds must not mutate state")
	}
}

func TestEditEntry(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	entry, err := tr.AddEntry(ctx, "Sam", yesterday(), 12000, nil, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	edited, err := tr.EditEntry(ctx, entry.ID, 500)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Steps != 500 {
		t.Fatalf("steps = %d", edited.Steps)
	}
	if edited.Participant != "Sam" || !edited.Date.Equal(entry.Date) {
		t.Fatalf("edit must not change participant or date: %+v", edited)
	}

	if _, err := tr.EditEntry(ctx, "missing", 100); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("missing id: got %v", err)
	}
	if _, err := tr.EditEntry(ctx, entry.ID, -1); !errors.Is(err, core.ErrNegativeSteps) {
		t.Fatalf("negative steps: got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	entry, err := tr.AddEntry(ctx, "Sam", yesterday(), 12000, nil, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	removed, err := tr.DeleteEntry(ctx, entry.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if removed, err := tr.DeleteEntry(ctx, entry.ID); removed || !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	date := yesterday()

	entry, err := tr.AddEntry(ctx, "Sam", date, 12000, nil, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := tr.AddEntry(ctx, "Sam", date, 500, nil, nil); !errors.Is(err, core.ErrDuplicateEntry) {
		t.Fatalf("duplicate add: %v", err)
	}

	if _, err := tr.EditEntry(ctx, entry.ID, 500); err != nil {
		t.Fatalf("edit: %v", err)
	}
	rules := tr.Rules()
	if rules.Status(500) != core.StatusMissed {
		t.Fatalf("status after edit should be Missed")
	}
	s := tr.Summary("Sam")
	if s.AmountOwed.Units != 50 {
		t.Fatalf("amount owed = %d, want 50", s.AmountOwed.Units)
	}

	if removed, err := tr.DeleteEntry(ctx, entry.ID); err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if got := tr.Summary("Sam").TotalDays; got != 0 {
		t.Fatalf("total days after delete = %d, want 0", got)
	}
}

func TestTogglePaymentIndependentOfOwed(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.AddEntry(ctx, "Joy", yesterday(), 100, nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	before := tr.Totals()
	paid, err := tr.TogglePayment(ctx, "Joy")
	if err != nil || !paid {
		t.Fatalf("toggle: paid=%v err=%v", paid, err)
	}
	after := tr.Totals()

	if after.TotalOwed != before.TotalOwed {
		t.Fatalf("toggling payment changed total owed")
	}
	if after.TotalCollected.Units != 50 {
		t.Fatalf("collected = %d, want 50", after.TotalCollected.Units)
	}
	if got := tr.Summary("Joy").AmountOwed.Units; got != 50 {
		t.Fatalf("amount owed changed by payment: %d", got)
	}

	if paid, err := tr.TogglePayment(ctx, "Joy"); err != nil || paid {
		t.Fatalf("second toggle: paid=%v err=%v", paid, err)
	}
	if _, err := tr.TogglePayment(ctx, "Nobody"); !errors.Is(err, core.ErrUnknownParticipant) {
		t.Fatalf("off-roster toggle: %v", err)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first, err := New(ctx, Config{Store: store, Roster: testRoster})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := first.AddEntry(ctx, "Sam", yesterday(), 8000, nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := first.TogglePayment(ctx, "Sam"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	second, err := New(ctx, Config{Store: store, Roster: testRoster})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(second.EntriesInOrder()) != 1 {
		t.Fatalf("entries lost on reload")
	}
	if !second.Summary("Sam").IsPaid {
		t.Fatalf("payment flag lost on reload")
	}
}

func TestCorruptStateStartsFresh(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Corrupt()

	tr, err := New(context.Background(), Config{Store: store, Roster: testRoster})
	if err != nil {
		t.Fatalf("corrupt snapshot must not be fatal: %v", err)
	}
	if len(tr.EntriesInOrder()) != 0 {
		t.Fatalf("expected empty state")
	}
}

type failingStore struct {
	*storage.MemoryStore
	fail bool
}

func (s *failingStore) Save(ctx context.Context, state core.AppState) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, state)
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	ctx := context.Background()

	tr, err := New(ctx, Config{Store: store, Roster: testRoster})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	store.fail = true
	entry, err := tr.AddEntry(ctx, "Sam", yesterday(), 9000, nil, nil)
	if err == nil {
		t.Fatalf("expected save error to be surfaced")
	}
	if entry.ID == "" {
		t.Fatalf("entry should be returned even when save fails")
	}
	if len(tr.EntriesInOrder()) != 1 {
		t.Fatalf("in-memory mutation must stand after save failure")
	}
}

func TestEntriesFilterAndOrder(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	base := time.Now().AddDate(0, 0, -10)

	for i, p := range []string{"Sam", "Joy", "Ramon", "Sam"} {
		date := core.DateOf(base.AddDate(0, 0, i))
		if _, err := tr.AddEntry(ctx, p, date, 10000+i, nil, nil); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	all := tr.Entries(Filter{})
	if len(all) != 4 {
		t.Fatalf("entry count = %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("view not sorted newest first")
		}
	}

	sams := tr.Entries(Filter{Name: "sam"})
	if len(sams) != 2 {
		t.Fatalf("name filter matched %d entries", len(sams))
	}

	ranged := tr.Entries(Filter{
		From: core.DateOf(base.AddDate(0, 0, 1)),
		To:   core.DateOf(base.AddDate(0, 0, 2)),
	})
	if len(ranged) != 2 {
		t.Fatalf("date filter matched %d entries, want 2 (bounds inclusive)", len(ranged))
	}
}

func TestRecentEntriesOrderedByCreation(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	older := core.DateOf(time.Now().AddDate(0, 0, -5))
	newer := core.DateOf(time.Now().AddDate(0, 0, -1))

	// Insert the newer date first: recent ordering follows creation
	// time, not entry date.
	first, _ := tr.AddEntry(ctx, "Sam", newer, 100, nil, nil)
	time.Sleep(5 * time.Millisecond)
	second, _ := tr.AddEntry(ctx, "Joy", older, 200, nil, nil)

	recent := tr.RecentEntries(10)
	if len(recent) != 2 {
		t.Fatalf("recent count = %d", len(recent))
	}
	if recent[0].ID != second.ID || recent[1].ID != first.ID {
		t.Fatalf("recent order wrong: %s, %s", recent[0].ID, recent[1].ID)
	}

	if got := tr.RecentEntries(1); len(got) != 1 {
		t.Fatalf("limit not applied")
	}
}

func TestClearAllAndRestore(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.AddEntry(ctx, "Sam", yesterday(), 100, nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := tr.TogglePayment(ctx, "Sam"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := tr.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(tr.EntriesInOrder()) != 0 || tr.Summary("Sam").IsPaid {
		t.Fatalf("clear incomplete")
	}

	restored := core.NewAppState()
	restored.Entries = []core.Entry{{
		ID: "r1", Participant: "Joy", Date: core.NewDate(2025, 1, 1), Steps: 4000,
		CreatedAt: time.Now().UTC(),
	}}
	restored.Payments["Joy"] = true
	if err := tr.Restore(ctx, restored); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(tr.EntriesInOrder()) != 1 || !tr.Summary("Joy").IsPaid {
		t.Fatalf("restore incomplete")
	}
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func TestMutationsPublishEvents(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &recordingPublisher{}
	ctx := context.Background()

	tr, err := New(ctx, Config{Store: store, Publisher: pub, Roster: testRoster})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	entry, _ := tr.AddEntry(ctx, "Sam", yesterday(), 100, nil, nil)
	tr.EditEntry(ctx, entry.ID, 200)
	tr.TogglePayment(ctx, "Sam")
	tr.DeleteEntry(ctx, entry.ID)
	tr.ClearAll(ctx)

	want := []events.Kind{
		events.KindEntryAdded,
		events.KindEntryEdited,
		events.KindPaymentToggled,
		events.KindEntryDeleted,
		events.KindDataCleared,
	}
	if len(pub.published) != len(want) {
		t.Fatalf("published %d events, want %d", len(pub.published), len(want))
	}
	for i, k := range want {
		if pub.published[i].Kind != k {
			t.Fatalf("event %d = %s, want %s", i, pub.published[i].Kind, k)
		}
	}
}
