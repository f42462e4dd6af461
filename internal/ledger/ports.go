// Package ledger defines the narrow contract the dialogue engine uses to
// talk to a user's backing store, plus the error taxonomy shared by all
// adapters.
package ledger

import (
	"context"
	"errors"

	"ledgerbot/internal/core"
)

// Ref identifies one linked ledger (for the Google adapter, a spreadsheet id).
type Ref string

// Header is the expected first row of every ledger.
var Header = [4]string{"Timestamp", "Category", "Name", "Amount"}

// Store is the port every ledger backend implements. All calls are blocking
// and network-bound underneath; adapters impose their own timeout and report
// expiry as ErrUnavailable.
type Store interface {
	// EnsureSchema makes sure the header row is present. Idempotent: repeated
	// calls never duplicate the header.
	EnsureSchema(ctx context.Context, ref Ref) error

	// Append adds one row and returns an adapter-specific row reference.
	// A record is never partially written.
	Append(ctx context.Context, ref Ref, e core.Entry) (rowRef string, err error)

	// Clear removes all data rows and re-applies the header. The
	// post-condition is always "empty ledger with header present".
	Clear(ctx context.Context, ref Ref) error

	// DeleteLast removes the last data row if one exists beyond the header.
	// deleted reports whether a row was removed; an empty ledger is a no-op,
	// not an error.
	DeleteLast(ctx context.Context, ref Ref) (deleted bool, err error)

	// ListAll returns all data rows in order. Rows with a non-numeric amount
	// are skipped and logged as data-quality warnings; rows with an
	// unparsable timestamp are returned with a zero Timestamp.
	ListAll(ctx context.Context, ref Ref) ([]core.Entry, error)
}

var (
	// ErrUnavailable marks transient backend failures, including timeouts.
	ErrUnavailable = errors.New("ledger store unavailable")

	// ErrRejected marks permanent failures (malformed payload, schema
	// mismatch, revoked access). Retrying without intervention cannot help.
	ErrRejected = errors.New("ledger store rejected request")
)
