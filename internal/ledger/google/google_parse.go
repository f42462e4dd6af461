package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"

	"google.golang.org/api/googleapi"
)

// Timestamp layouts accepted when reading rows back. Rows written by this
// adapter use RFC 3339; the date-only fallback covers hand-edited sheets.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func headerValues() []any {
	out := make([]any, len(ledger.Header))
	for i, h := range ledger.Header {
		out[i] = h
	}
	return out
}

func entryValues(e core.Entry) []any {
	return []any{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Category,
		e.Name,
		core.FormatCents(e.Amount.Cents),
	}
}

func isHeaderRow(row []any) bool {
	if len(row) < len(ledger.Header) {
		return false
	}
	for i, want := range ledger.Header {
		if !strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[i])), want) {
			return false
		}
	}
	return true
}

// parseRow converts one sheet row into an Entry. A row with an unparsable
// amount is unusable and reported with ok=false; an unparsable timestamp
// only zeroes the Timestamp so aggregation can still count the amount.
func parseRow(row []any) (core.Entry, bool) {
	cols := toStrings(row)
	if len(cols) < 4 {
		return core.Entry{}, false
	}
	cents, err := core.ParseDecimalToCents(cols[3])
	if err != nil {
		return core.Entry{}, false
	}
	var ts time.Time
	for _, layout := range timestampLayouts {
		if t, perr := time.Parse(layout, cols[0]); perr == nil {
			ts = t
			break
		}
	}
	return core.Entry{
		Timestamp: ts,
		Category:  cols[1],
		Name:      cols[2],
		Amount:    core.Money{Cents: cents},
	}, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// classify maps Google API failures onto the ledger error taxonomy: 5xx and
// throttling are transient, every other HTTP error is permanent, and
// anything else (network, timeout) counts as unavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 || gerr.Code >= 500 {
			return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
}
