package events

import (
	"encoding/json"
	"time"
)

// Kind identifies the tracker mutation an event describes.
type Kind string

const (
	KindEntryAdded     Kind = "entry_added"
	KindEntryEdited    Kind = "entry_edited"
	KindEntryDeleted   Kind = "entry_deleted"
	KindPaymentToggled Kind = "payment_toggled"
	KindDataCleared    Kind = "data_cleared"
	KindDataRestored   Kind = "data_restored"
)

// Event is the message published after every successful mutation.
// Fields beyond Kind and Timestamp are populated per kind.
type Event struct {
	Kind        Kind      `json:"kind"`
	EntryID     string    `json:"entry_id,omitempty"`
	Participant string    `json:"participant,omitempty"`
	Date        string    `json:"date,omitempty"`
	Steps       int       `json:"steps,omitempty"`
	Paid        *bool     `json:"paid,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEvent creates an event of the given kind stamped with the current time.
func NewEvent(kind Kind) Event {
	return Event{Kind: kind, Timestamp: time.Now().UTC()}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event from JSON bytes.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
