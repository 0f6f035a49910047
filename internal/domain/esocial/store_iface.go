package esocial

import "context"

// StoreAPI reads the batch input the payroll ledger left in the database.
type StoreAPI interface {
	EmployerRegistry(ctx context.Context, tenantID string) (string, error)
	ListBatchEntries(ctx context.Context, tenantID string, period Period) ([]Entry, error)
}
