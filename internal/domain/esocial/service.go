package esocial

import (
	"context"
	"errors"
)

// Batch is a generated batch together with the inputs it was built from.
type Batch struct {
	Period   Period           `json:"period"`
	Employer EmployerIdentity `json:"employer"`
	Events   []GeneratedEvent `json:"events"`
	Summary  Summary          `json:"summary"`
}

type Service struct {
	store     StoreAPI
	generator *Generator
}

func NewService(store StoreAPI, generator *Generator) *Service {
	return &Service{store: store, generator: generator}
}

func (s *Service) Generator() *Generator {
	return s.generator
}

// Generate runs a batch over caller-supplied input.
func (s *Service) Generate(ctx context.Context, period Period, employer EmployerIdentity, entries []Entry) (Batch, error) {
	events, err := s.generator.GenerateBatch(ctx, period, employer, entries)
	if err != nil {
		return Batch{}, err
	}
	normalized, _ := employer.Normalize()
	return Batch{Period: period, Employer: normalized, Events: events, Summary: Summarize(events)}, nil
}

// GenerateForTenant loads the tenant's ledger for the period and runs a batch.
func (s *Service) GenerateForTenant(ctx context.Context, tenantID string, period Period) (Batch, error) {
	if s.store == nil {
		return Batch{}, errors.New("esocial store is not configured")
	}
	if err := periodPrecondition(period); err != nil {
		return Batch{}, err
	}
	registry, err := s.store.EmployerRegistry(ctx, tenantID)
	if errors.Is(err, ErrEmployerNotConfigured) {
		return Batch{}, &PreconditionError{Field: "employer.registry", Reason: err.Error(), Err: ErrMissingEmployer}
	}
	if err != nil {
		return Batch{}, err
	}
	employer, err := NewEmployerIdentity(registry)
	if err != nil {
		return Batch{}, err
	}
	entries, err := s.store.ListBatchEntries(ctx, tenantID, period)
	if err != nil {
		return Batch{}, err
	}
	return s.Generate(ctx, period, employer, entries)
}
