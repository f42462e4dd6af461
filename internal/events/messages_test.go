package events

import (
	"strings"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

func TestLedgerEvent_JSON(t *testing.T) {
	entry := core.Entry{
		Timestamp: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Category:  "food",
		Name:      "lunch",
		Amount:    core.Money{Cents: 1250},
	}
	ev := newAppendedEvent(ledger.Ref("abc123"), entry, "Sheet1!A2:D2")

	if ev.ID == "" {
		t.Fatal("event id must be set")
	}
	if ev.Kind != KindEntryAppended {
		t.Fatalf("kind = %q", ev.Kind)
	}

	body, err := ev.toJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := eventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != ev.ID || decoded.Kind != KindEntryAppended || decoded.Ledger != "abc123" {
		t.Fatalf("decoded envelope: %+v", decoded)
	}
	if decoded.RowRef != "Sheet1!A2:D2" {
		t.Fatalf("row ref = %q", decoded.RowRef)
	}
	if got := decoded.Entry(); got != entry {
		t.Fatalf("reconstructed entry = %+v, want %+v", got, entry)
	}
}

func TestLedgerEvent_NonAppendKindsOmitEntryFields(t *testing.T) {
	for _, kind := range []string{KindLedgerCleared, KindEntryDeleted} {
		ev := newEvent(kind, ledger.Ref("abc123"))
		body, err := ev.toJSON()
		if err != nil {
			t.Fatalf("%s: marshal: %v", kind, err)
		}
		s := string(body)
		for _, field := range []string{"entryTime", "rowRef", "category", "name", "amountCents"} {
			if strings.Contains(s, field) {
				t.Fatalf("%s event must not carry %q on the wire: %s", kind, field, s)
			}
		}

		decoded, err := eventFromJSON(body)
		if err != nil {
			t.Fatalf("%s: unmarshal: %v", kind, err)
		}
		if decoded.Kind != kind || decoded.Ledger != "abc123" {
			t.Fatalf("%s: decoded %+v", kind, decoded)
		}
	}
}

func TestEventFromJSON_Malformed(t *testing.T) {
	if _, err := eventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
