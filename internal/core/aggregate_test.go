package core

import (
	"math"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func TestWindowedSumOneDayExcludesOlderEntries(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")
	entries := []Entry{
		{Timestamp: now, Amount: Money{Cents: 100}},
		{Timestamp: now.Add(-25 * time.Hour), Amount: Money{Cents: 200}},
	}

	if got := WindowedSum(entries, now, 1); got.Cents != 100 {
		t.Fatalf("1-day window: got %d cents, want 100", got.Cents)
	}
	if got := WindowedSum(entries, now, 7); got.Cents != 300 {
		t.Fatalf("7-day window: got %d cents, want 300", got.Cents)
	}
}

func TestWindowedSumInclusiveBounds(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")
	entries := []Entry{
		{Timestamp: now, Amount: Money{Cents: 1}},
		{Timestamp: now.Add(-24 * time.Hour), Amount: Money{Cents: 2}},
		{Timestamp: now.Add(time.Second), Amount: Money{Cents: 4}}, // future, excluded
	}
	if got := WindowedSum(entries, now, 1); got.Cents != 3 {
		t.Fatalf("got %d cents, want 3 (both window edges inclusive)", got.Cents)
	}
}

func TestWindowedSumSkipsZeroTimestamps(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")
	entries := []Entry{
		{Amount: Money{Cents: 500}}, // unparsable timestamp
		{Timestamp: now, Amount: Money{Cents: 50}},
	}
	if got := WindowedSum(entries, now, 7); got.Cents != 50 {
		t.Fatalf("got %d cents, want 50", got.Cents)
	}
}

func TestCategoryRatio(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")
	entries := []Entry{
		{Timestamp: now, Category: "A", Amount: Money{Cents: 10000}},
		{Timestamp: now, Category: "B", Amount: Money{Cents: 30000}},
	}
	shares := CategoryRatio(entries)
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].Name != "A" || shares[1].Name != "B" {
		t.Fatalf("first-seen order not preserved: %+v", shares)
	}
	if math.Abs(shares[0].Percent-25.0) > 1e-9 || math.Abs(shares[1].Percent-75.0) > 1e-9 {
		t.Fatalf("got %.4f%% / %.4f%%, want 25%% / 75%%", shares[0].Percent, shares[1].Percent)
	}
	if total := shares[0].Percent + shares[1].Percent; math.Abs(total-100.0) > 1e-9 {
		t.Fatalf("shares sum to %.4f, want 100", total)
	}
}

func TestCategoryRatioZeroTotal(t *testing.T) {
	if shares := CategoryRatio(nil); shares != nil {
		t.Fatalf("expected empty result for no entries, got %+v", shares)
	}
	zero := []Entry{{Category: "A", Amount: Money{Cents: 0}}}
	if shares := CategoryRatio(zero); shares != nil {
		t.Fatalf("expected empty result for all-zero amounts, got %+v", shares)
	}
}
