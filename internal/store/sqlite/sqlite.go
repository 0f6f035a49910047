/*
Package sqlite provides a file-based ledger source for reporting batches.

It implements esocial.StoreAPI over SQLite so batches can be generated
offline from an exported payroll ledger, and offers the writes needed to
build such a ledger (SaveEmployer, AddEntry, ImportBatch).

KEY TABLES:

	employers:    one 14-digit registry number per tenant
	entries:      per-worker ficha for a tenant and period (YYYYMM)
	entry_lines:  ledger lines of an entry, kept in ledger order

Amounts are stored as decimal text so they round-trip exactly.

USAGE:

	store, err := sqlite.New("./ledger.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"esocial/internal/domain/esocial"
)

// Store implements esocial.StoreAPI using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath and migrates its schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employers (
		tenant_id TEXT PRIMARY KEY,
		registry TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		period TEXT NOT NULL,
		tax_id TEXT NOT NULL DEFAULT '',
		enrollment TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		registration TEXT NOT NULL DEFAULT '',
		category_code TEXT NOT NULL DEFAULT '',
		gross_earnings TEXT NOT NULL DEFAULT '0',
		total_deductions TEXT NOT NULL DEFAULT '0',
		net_pay TEXT NOT NULL DEFAULT '0',
		social_security_base TEXT NOT NULL DEFAULT '0',
		social_security_withheld TEXT NOT NULL DEFAULT '0',
		income_tax_base TEXT NOT NULL DEFAULT '0',
		income_tax_withheld TEXT NOT NULL DEFAULT '0',
		dependents INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_tenant_period
		ON entries(tenant_id, period, id);

	CREATE TABLE IF NOT EXISTS entry_lines (
		entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		rubric TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (entry_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveEmployer records the tenant's registry number, replacing any previous one.
func (s *Store) SaveEmployer(ctx context.Context, tenantID, registry string) error {
	employer, err := esocial.NewEmployerIdentity(registry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employers (tenant_id, registry, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			registry = excluded.registry,
			updated_at = excluded.updated_at
	`, tenantID, employer.Registry, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) EmployerRegistry(ctx context.Context, tenantID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var registry string
	err := s.db.QueryRowContext(ctx, "SELECT registry FROM employers WHERE tenant_id = ?", tenantID).Scan(&registry)
	if errors.Is(err, sql.ErrNoRows) {
		return "", esocial.ErrEmployerNotConfigured
	}
	if err != nil {
		return "", err
	}
	return registry, nil
}

// AddEntry appends a worker's ficha to the tenant's period.
func (s *Store) AddEntry(ctx context.Context, tenantID string, period esocial.Period, entry esocial.Entry) error {
	if err := period.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntry(ctx, tx, tenantID, period, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// ImportBatch replaces the tenant's employer and period entries in one
// transaction.
func (s *Store) ImportBatch(ctx context.Context, tenantID string, period esocial.Period, employer esocial.EmployerIdentity, entries []esocial.Entry) error {
	if err := period.Validate(); err != nil {
		return err
	}
	normalized, err := esocial.NewEmployerIdentity(employer.Registry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO employers (tenant_id, registry, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			registry = excluded.registry,
			updated_at = excluded.updated_at
	`, tenantID, normalized.Registry, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE tenant_id = ? AND period = ?", tenantID, period.Compact()); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := insertEntry(ctx, tx, tenantID, period, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, tenantID string, period esocial.Period, entry esocial.Entry) error {
	w, f := entry.Worker, entry.Ficha
	res, err := tx.ExecContext(ctx, `
		INSERT INTO entries
		(tenant_id, period, tax_id, enrollment, name, registration, category_code,
		 gross_earnings, total_deductions, net_pay, social_security_base, social_security_withheld,
		 income_tax_base, income_tax_withheld, dependents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tenantID, period.Compact(),
		w.TaxID, w.Enrollment, w.Name, w.Registration, w.CategoryCode,
		f.GrossEarnings.String(), f.TotalDeductions.String(), f.NetPay.String(),
		f.SocialSecurityBase.String(), f.SocialSecurityWithheld.String(),
		f.IncomeTaxBase.String(), f.IncomeTaxWithheld.String(),
		f.Dependents,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, line := range f.Lines {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_lines (entry_id, position, rubric, kind, amount) VALUES (?, ?, ?, ?, ?)",
			entryID, i, line.Rubric, string(line.Kind), line.Amount.String(),
		); err != nil {
			return fmt.Errorf("failed to insert entry line: %w", err)
		}
	}
	return nil
}

// ListBatchEntries returns the period's entries in insertion order.
func (s *Store) ListBatchEntries(ctx context.Context, tenantID string, period esocial.Period) ([]esocial.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tax_id, enrollment, name, registration, category_code,
		       gross_earnings, total_deductions, net_pay, social_security_base, social_security_withheld,
		       income_tax_base, income_tax_withheld, dependents
		FROM entries
		WHERE tenant_id = ? AND period = ?
		ORDER BY id
	`, tenantID, period.Compact())
	if err != nil {
		return nil, err
	}

	var ids []int64
	var entries []esocial.Entry
	for rows.Next() {
		var id int64
		var e esocial.Entry
		var amounts [7]string
		if err := rows.Scan(&id,
			&e.Worker.TaxID, &e.Worker.Enrollment, &e.Worker.Name, &e.Worker.Registration, &e.Worker.CategoryCode,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
			&e.Ficha.Dependents,
		); err != nil {
			rows.Close()
			return nil, err
		}
		targets := []*esocial.Money{
			&e.Ficha.GrossEarnings, &e.Ficha.TotalDeductions, &e.Ficha.NetPay,
			&e.Ficha.SocialSecurityBase, &e.Ficha.SocialSecurityWithheld,
			&e.Ficha.IncomeTaxBase, &e.Ficha.IncomeTaxWithheld,
		}
		for i, raw := range amounts {
			if *targets[i], err = esocial.MoneyFromString(raw); err != nil {
				rows.Close()
				return nil, fmt.Errorf("entry %d: %w", id, err)
			}
		}
		ids = append(ids, id)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	lines, err := s.linesFor(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		entries[i].Ficha.Lines = lines[id]
	}
	return entries, nil
}

func (s *Store) linesFor(ctx context.Context, tenantID string, period esocial.Period) (map[int64][]esocial.LedgerLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.entry_id, l.rubric, l.kind, l.amount
		FROM entry_lines l
		JOIN entries e ON e.id = l.entry_id
		WHERE e.tenant_id = ? AND e.period = ?
		ORDER BY l.entry_id, l.position
	`, tenantID, period.Compact())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64][]esocial.LedgerLine{}
	for rows.Next() {
		var entryID int64
		var line esocial.LedgerLine
		var kind, amount string
		if err := rows.Scan(&entryID, &line.Rubric, &kind, &amount); err != nil {
			return nil, err
		}
		line.Kind = esocial.LineKind(kind)
		if line.Amount, err = esocial.MoneyFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %d line: %w", entryID, err)
		}
		out[entryID] = append(out[entryID], line)
	}
	return out, rows.Err()
}
