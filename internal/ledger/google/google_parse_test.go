package google

import (
	"errors"
	"fmt"
	"testing"

	"ledgerbot/internal/ledger"

	"google.golang.org/api/googleapi"
)

func TestIsHeaderRow(t *testing.T) {
	if !isHeaderRow([]any{"Timestamp", "Category", "Name", "Amount"}) {
		t.Fatalf("exact header not recognized")
	}
	if !isHeaderRow([]any{" timestamp ", "CATEGORY", "name", "amount"}) {
		t.Fatalf("header match should ignore case and surrounding space")
	}
	if isHeaderRow([]any{"Timestamp", "Category", "Name"}) {
		t.Fatalf("short row accepted as header")
	}
	if isHeaderRow([]any{"2026-08-01T10:00:00Z", "food", "coffee", "3.50"}) {
		t.Fatalf("data row accepted as header")
	}
}

func TestParseRow(t *testing.T) {
	e, ok := parseRow([]any{"2026-08-01T10:00:00Z", "food", "coffee", "3.50"})
	if !ok {
		t.Fatalf("valid row rejected")
	}
	if e.Category != "food" || e.Name != "coffee" || e.Amount.Cents != 350 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Fatalf("timestamp not parsed")
	}

	// Unparsable timestamp keeps the row but zeroes the timestamp
	e, ok = parseRow([]any{"yesterday-ish", "food", "coffee", "3.50"})
	if !ok || !e.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got ok=%v ts=%v", ok, e.Timestamp)
	}

	// Non-numeric amount makes the row unusable
	if _, ok := parseRow([]any{"2026-08-01T10:00:00Z", "food", "coffee", "a lot"}); ok {
		t.Fatalf("row with non-numeric amount accepted")
	}
	if _, ok := parseRow([]any{"2026-08-01T10:00:00Z", "food"}); ok {
		t.Fatalf("short row accepted")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{&googleapi.Error{Code: 503}, ledger.ErrUnavailable},
		{&googleapi.Error{Code: 429}, ledger.ErrUnavailable},
		{&googleapi.Error{Code: 400}, ledger.ErrRejected},
		{&googleapi.Error{Code: 403}, ledger.ErrRejected},
		{fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 500}), ledger.ErrUnavailable},
		{errors.New("dial tcp: connection refused"), ledger.ErrUnavailable},
	}
	for _, c := range cases {
		if got := classify(c.err); !errors.Is(got, c.want) {
			t.Fatalf("classify(%v) = %v, want %v", c.err, got, c.want)
		}
	}
	if classify(nil) != nil {
		t.Fatalf("classify(nil) should be nil")
	}
}
