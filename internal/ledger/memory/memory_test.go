package memory

import (
	"context"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

func entry(cat, name string, cents int64) core.Entry {
	return core.Entry{
		Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Category:  cat,
		Name:      name,
		Amount:    core.Money{Cents: cents},
	}
}

func TestAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()
	const ref = ledger.Ref("sheet-1")

	ref1, err := s.Append(ctx, ref, entry("food", "coffee", 350))
	if err != nil || ref1 != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref1, err)
	}
	if _, err := s.Append(ctx, ref, entry("travel", "bus", 220)); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := s.ListAll(ctx, ref)
	if err != nil || len(entries) != 2 {
		t.Fatalf("unexpected list: entries=%v err=%v", entries, err)
	}
	if entries[0].Name != "coffee" || entries[1].Name != "bus" {
		t.Fatalf("order not preserved: %+v", entries)
	}

	// Ledgers are isolated per ref
	other, _ := s.ListAll(ctx, "sheet-2")
	if len(other) != 0 {
		t.Fatalf("expected empty ledger for other ref, got %v", other)
	}
}

func TestAppendRejectsInvalidEntry(t *testing.T) {
	s := New()
	bad := entry("", "coffee", 350)
	if _, err := s.Append(context.Background(), "r", bad); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestClearAndDeleteLast(t *testing.T) {
	s := New()
	ctx := context.Background()
	const ref = ledger.Ref("sheet-1")

	// DeleteLast on a fresh ledger is a no-op, not an error
	deleted, err := s.DeleteLast(ctx, ref)
	if err != nil || deleted {
		t.Fatalf("expected no-op delete, got deleted=%v err=%v", deleted, err)
	}

	_, _ = s.Append(ctx, ref, entry("food", "coffee", 350))
	_, _ = s.Append(ctx, ref, entry("food", "tea", 250))

	deleted, err = s.DeleteLast(ctx, ref)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got deleted=%v err=%v", deleted, err)
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
		t.Fatalf("ledger not empty after clear: %+v", entries)
	}
}
