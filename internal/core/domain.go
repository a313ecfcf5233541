package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	// StatusOnTarget marks an entry that met the daily step target.
	StatusOnTarget Status = "OK"
	// StatusMissed marks an entry below the daily step target.
	StatusMissed Status = "Missed"
)

const dateLayout = "2006-01-02"

type (
	Status string

	// Date is a calendar date with day granularity. The time component is
	// always midnight UTC so dates compare and serialize consistently.
	Date struct {
		time.Time
	}

	// Entry is one participant's reported step count for one calendar date.
	Entry struct {
		ID          string    `json:"id"`
		Participant string    `json:"participant"`
		Date        Date      `json:"date"`
		Steps       int       `json:"steps"`
		Proof       *string   `json:"proof"`
		ProofData   *string   `json:"proofData"`
		CreatedAt   time.Time `json:"timestamp"`
	}

	// PaymentLedger maps a participant name to a "has paid" flag.
	// A missing key means unpaid.
	PaymentLedger map[string]bool

	// AppState is the full persisted unit: all entries plus the payment
	// ledger. It is loaded wholesale at startup and saved wholesale after
	// every mutation.
	AppState struct {
		Entries  []Entry       `json:"entries"`
		Payments PaymentLedger `json:"payments"`
	}
)

var (
	ErrDuplicateEntry     = errors.New("entry already exists for this participant and date")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEmptyParticipant   = errors.New("participant is required")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrInvalidDate        = errors.New("invalid date")
	ErrFutureDate         = errors.New("date cannot be in the future")
	ErrNegativeSteps      = errors.New("step count must not be negative")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the invariants a new entry must satisfy before it is
// accepted: a named participant, a real past-or-today date, non-negative
// steps. Roster membership is checked by the tracker service, which owns
// the configured participant list.
func (e Entry) Validate(now time.Time) error {
	if strings.TrimSpace(e.Participant) == "" {
		return ErrEmptyParticipant
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.Date.After(DateOf(now)) {
		return ErrFutureDate
	}
	if e.Steps < 0 {
		return ErrNegativeSteps
	}
	return nil
}

// NewAppState returns an empty, fully initialized state.
func NewAppState() AppState {
	return AppState{Entries: []Entry{}, Payments: PaymentLedger{}}
}

// Clone returns a deep copy so callers can hand out state without
// exposing internal slices and maps to mutation.
func (s AppState) Clone() AppState {
	out := AppState{
		Entries:  make([]Entry, len(s.Entries)),
		Payments: make(PaymentLedger, len(s.Payments)),
	}
	copy(out.Entries, s.Entries)
	for k, v := range s.Payments {
		out.Payments[k] = v
	}
	return out
}

// FindEntry returns the entry with the given id, if present.
func (s AppState) FindEntry(id string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByParticipantAndDate returns the entry for a (participant, date)
// pair, if present. At most one such entry can exist.
func (s AppState) FindByParticipantAndDate(participant string, date Date) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Participant == participant && e.Date.Equal(date) {
			return e, true
		}
	}
	return Entry{}, false
}
