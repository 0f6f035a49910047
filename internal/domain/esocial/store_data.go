package esocial

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployerNotConfigured = errors.New("institution registry number is not configured")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployerRegistry(ctx context.Context, tenantID string) (string, error) {
	var registry string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(registry_number, '')
    FROM institutions
    WHERE tenant_id = $1
  `, tenantID).Scan(&registry)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployerNotConfigured
	}
	if err != nil {
		return "", err
	}
	return registry, nil
}

func (s *Store) ListBatchEntries(ctx context.Context, tenantID string, period Period) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id,
           COALESCE(e.national_id, ''), COALESCE(e.social_security_number, ''),
           TRIM(e.first_name || ' ' || e.last_name), COALESCE(e.employee_number, ''), COALESCE(e.worker_category, ''),
           r.gross::text, r.deductions::text, r.net::text,
           r.social_security_base::text, r.social_security_withheld::text,
           r.income_tax_base::text, r.income_tax_withheld::text, r.dependents
    FROM payroll_results r
    JOIN employees e ON r.employee_id = e.id
    JOIN payroll_periods p ON r.period_id = p.id
    WHERE r.tenant_id = $1
      AND EXTRACT(YEAR FROM p.start_date) = $2
      AND EXTRACT(MONTH FROM p.start_date) = $3
      AND p.status IN ('reviewed', 'finalized')
    ORDER BY e.employee_number, e.id
  `, tenantID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		entries []Entry
		ids     []string
	)
	for rows.Next() {
		var (
			resultID string
			entry    Entry
			amounts  [7]string
		)
		w := &entry.Worker
		if err := rows.Scan(&resultID, &w.TaxID, &w.Enrollment, &w.Name, &w.Registration, &w.CategoryCode,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
			&entry.Ficha.Dependents); err != nil {
			return nil, err
		}
		f := &entry.Ficha
		targets := []*Money{&f.GrossEarnings, &f.TotalDeductions, &f.NetPay, &f.SocialSecurityBase, &f.SocialSecurityWithheld, &f.IncomeTaxBase, &f.IncomeTaxWithheld}
		for i, raw := range amounts {
			m, err := MoneyFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("payroll result %s: %w", resultID, err)
			}
			*targets[i] = m
		}
		entries = append(entries, entry)
		ids = append(ids, resultID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lines, err := s.resultLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		entries[i].Ficha.Lines = lines[id]
	}
	return entries, nil
}

func (s *Store) resultLines(ctx context.Context, resultIDs []string) (map[string][]LedgerLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT result_id, rubric_code, line_kind, amount::text
    FROM payroll_result_lines
    WHERE result_id = ANY($1::uuid[])
    ORDER BY result_id, position
  `, resultIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]LedgerLine{}
	for rows.Next() {
		var resultID, rubric, kind, amount string
		if err := rows.Scan(&resultID, &rubric, &kind, &amount); err != nil {
			return nil, err
		}
		m, err := MoneyFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("payroll result %s line %s: %w", resultID, rubric, err)
		}
		out[resultID] = append(out[resultID], LedgerLine{Rubric: rubric, Kind: LineKind(kind), Amount: m})
	}
	return out, rows.Err()
}
