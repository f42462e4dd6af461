// Package sqlite persists ledgers in a local SQLite database. It backs the
// DATA_BACKEND=sqlite mode and the mirror kept by the event worker.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrateUp brings the schema to the latest embedded migration. It opens its
// own connection because closing the migrate instance closes the database
// handle it was given.
func migrateUp(dbPath string) error {
	mdb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("migrate: open %s: %w", dbPath, err)
	}
	defer mdb.Close()

	driver, err := migratesqlite.WithInstance(mdb, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate: wrap driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate: load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: apply: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureSchema is satisfied by the migrations run at open time; the header
// row of the sheet model has no SQL equivalent.
func (s *Store) EnsureSchema(ctx context.Context, _ ledger.Ref) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, ref ledger.Ref, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (ledger_ref, ts, category, name, amount_cents) VALUES (?, ?, ?, ?, ?)`,
		string(ref), e.Timestamp.UTC().Format(time.RFC3339), e.Category, e.Name, e.Amount.Cents)
	if err != nil {
		return "", fmt.Errorf("%w: insert entry: %v", ledger.ErrUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("%w: last insert id: %v", ledger.ErrUnavailable, err)
	}
	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id, "ledger", string(ref), "category", e.Category, "amount_cents", e.Amount.Cents)
	return fmt.Sprintf("sqlite:%d", id), nil
}

func (s *Store) Clear(ctx context.Context, ref ledger.Ref) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE ledger_ref = ?`, string(ref)); err != nil {
		return fmt.Errorf("%w: clear ledger: %v", ledger.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) DeleteLast(ctx context.Context, ref ledger.Ref) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = (SELECT MAX(id) FROM entries WHERE ledger_ref = ?)`,
		string(ref))
	if err != nil {
		return false, fmt.Errorf("%w: delete last entry: %v", ledger.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", ledger.ErrUnavailable, err)
	}
	return n > 0, nil
}

func (s *Store) ListAll(ctx context.Context, ref ledger.Ref) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, category, name, amount_cents FROM entries WHERE ledger_ref = ? ORDER BY id`,
		string(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", ledger.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		var ts, category, name string
		var cents int64
		if err := rows.Scan(&ts, &category, &name, &cents); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", ledger.ErrUnavailable, err)
		}
		parsed, perr := time.Parse(time.RFC3339, ts)
		if perr != nil {
			slog.WarnContext(ctx, "Entry with unparsable timestamp", "ledger", string(ref), "ts", ts)
		}
		out = append(out, core.Entry{
			Timestamp: parsed,
			Category:  category,
			Name:      name,
			Amount:    core.Money{Cents: cents},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate entries: %v", ledger.ErrUnavailable, err)
	}
	return out, nil
}
