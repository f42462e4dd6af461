package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(cat, name string, cents int64) core.Entry {
	return core.Entry{
		Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Category:  cat,
		Name:      name,
		Amount:    core.Money{Cents: cents},
	}
}

func TestAppendListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const ref = ledger.Ref("sheet-1")

	if err := s.EnsureSchema(ctx, ref); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	rowRef, err := s.Append(ctx, ref, entry("food", "coffee", 350))
	if err != nil || rowRef == "" {
		t.Fatalf("append: ref=%q err=%v", rowRef, err)
	}
	_, _ = s.Append(ctx, ref, entry("travel", "bus", 220))
	_, _ = s.Append(ctx, "other-sheet", entry("food", "tea", 100))

	entries, err := s.ListAll(ctx, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "coffee" || entries[1].Name != "bus" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Amount.Cents != 350 || entries[0].Timestamp.IsZero() {
		t.Fatalf("round trip lost data: %+v", entries[0])
	}
}

func TestDeleteLastAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const ref = ledger.Ref("sheet-1")

	deleted, err := s.DeleteLast(ctx, ref)
	if err != nil || deleted {
		t.Fatalf("empty ledger: deleted=%v err=%v", deleted, err)
	}

	_, _ = s.Append(ctx, ref, entry("food", "coffee", 350))
	_, _ = s.Append(ctx, ref, entry("food", "tea", 250))

	deleted, err = s.DeleteLast(ctx, ref)
	if err != nil || !deleted {
		t.Fatalf("delete last: deleted=%v err=%v", deleted, err)
	}
	entries, _ := s.ListAll(ctx, ref)
	if len(entries) != 1 || entries[0].Name != "coffee" {
		t.Fatalf("wrong row deleted: %+v", entries)
	}

	if err := s.Clear(ctx, ref); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ = s.ListAll(ctx, ref)
	if len(entries) != 0 {
		t.Fatalf("not empty after clear: %+v", entries)
	}
}
