// Package worker mirrors ledger events into a local SQLite copy, giving a
// queryable replica of every linked ledger when the primary backend is the
// remote spreadsheet store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerbot/internal/events"
	"ledgerbot/internal/ledger"
)

type Mirror struct {
	store ledger.Store
}

func NewMirror(store ledger.Store) *Mirror {
	return &Mirror{store: store}
}

// HandleEvent applies one ledger event to the mirror store.
func (m *Mirror) HandleEvent(ctx context.Context, ev events.LedgerEvent) error {
	ref := ledger.Ref(ev.Ledger)

	switch ev.Kind {
	case events.KindEntryAppended:
		if err := m.store.EnsureSchema(ctx, ref); err != nil {
			return fmt.Errorf("ensure mirror schema: %w", err)
		}
		rowRef, err := m.store.Append(ctx, ref, ev.Entry())
		if err != nil {
			return fmt.Errorf("mirror append: %w", err)
		}
		slog.InfoContext(ctx, "Mirrored appended entry",
			"event_id", ev.ID, "ledger", ev.Ledger, "row_ref", rowRef)
		return nil

	case events.KindLedgerCleared:
		if err := m.store.Clear(ctx, ref); err != nil {
			return fmt.Errorf("mirror clear: %w", err)
		}
		slog.InfoContext(ctx, "Mirrored ledger clear", "event_id", ev.ID, "ledger", ev.Ledger)
		return nil

	case events.KindEntryDeleted:
		deleted, err := m.store.DeleteLast(ctx, ref)
		if err != nil {
			return fmt.Errorf("mirror delete-last: %w", err)
		}
		if !deleted {
			// Mirror already behind the primary; nothing to remove.
			slog.WarnContext(ctx, "Delete event on empty mirror", "event_id", ev.ID, "ledger", ev.Ledger)
		}
		return nil
	}

	slog.WarnContext(ctx, "Ignoring event of unknown kind", "event_id", ev.ID, "kind", ev.Kind)
	return nil
}
