package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

// Event kinds carried on the ledger events queue.
const (
	KindEntryAppended = "entry-appended"
	KindLedgerCleared = "ledger-cleared"
	KindEntryDeleted  = "entry-deleted"
)

// LedgerEvent is the wire format for all ledger mutations. Entry fields are
// only set for entry-appended events.
type LedgerEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Ledger    string    `json:"ledger"`
	Timestamp time.Time `json:"timestamp"`

	RowRef      string    `json:"rowRef,omitempty"`
	EntryTime   time.Time `json:"entryTime,omitzero"`
	Category    string    `json:"category,omitempty"`
	Name        string    `json:"name,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
}

func newEvent(kind string, ref ledger.Ref) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Ledger:    string(ref),
		Timestamp: time.Now(),
	}
}

func newAppendedEvent(ref ledger.Ref, e core.Entry, rowRef string) LedgerEvent {
	ev := newEvent(KindEntryAppended, ref)
	ev.RowRef = rowRef
	ev.EntryTime = e.Timestamp
	ev.Category = e.Category
	ev.Name = e.Name
	ev.AmountCents = e.Amount.Cents
	return ev
}

// Entry reconstructs the ledger entry carried by an entry-appended event.
func (ev LedgerEvent) Entry() core.Entry {
	return core.Entry{
		Timestamp: ev.EntryTime,
		Category:  ev.Category,
		Name:      ev.Name,
		Amount:    core.Money{Cents: ev.AmountCents},
	}
}

func (ev LedgerEvent) toJSON() ([]byte, error) {
	return json.Marshal(ev)
}

func eventFromJSON(data []byte) (LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return LedgerEvent{}, err
	}
	return ev, nil
}
