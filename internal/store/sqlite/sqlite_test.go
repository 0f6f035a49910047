package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esocial/internal/domain/esocial"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(name string) esocial.Entry {
	return esocial.Entry{
		Worker: esocial.WorkerRecord{
			TaxID:        "123.456.789-00",
			Enrollment:   "12345678901",
			Name:         name,
			Registration: "MAT-" + name,
			CategoryCode: "101",
		},
		Ficha: esocial.FichaSnapshot{
			GrossEarnings:          esocial.MustMoney("5000.00"),
			TotalDeductions:        esocial.MustMoney("500.10"),
			NetPay:                 esocial.MustMoney("4499.90"),
			SocialSecurityWithheld: esocial.MustMoney("500.10"),
			Dependents:             2,
			Lines: []esocial.LedgerLine{
				{Rubric: "1000", Kind: esocial.LineEarning, Amount: esocial.MustMoney("4000.00")},
				{Rubric: "1010", Kind: esocial.LineEarning, Amount: esocial.MustMoney("1000.00")},
				{Rubric: "9201", Kind: esocial.LineTaxWithholding, Amount: esocial.MustMoney("500.10")},
			},
		},
	}
}

func TestEmployerRegistry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.EmployerRegistry(ctx, "acme")
	assert.ErrorIs(t, err, esocial.ErrEmployerNotConfigured)

	require.NoError(t, store.SaveEmployer(ctx, "acme", "12.345.678/0001-95"))
	registry, err := store.EmployerRegistry(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "12345678000195", registry)

	assert.Error(t, store.SaveEmployer(ctx, "acme", "123"))
}

func TestEntriesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := esocial.NewPeriod(2025, 3)

	require.NoError(t, store.AddEntry(ctx, "acme", period, sampleEntry("Ana")))
	require.NoError(t, store.AddEntry(ctx, "acme", period, sampleEntry("Bruno")))
	require.NoError(t, store.AddEntry(ctx, "acme", esocial.NewPeriod(2025, 4), sampleEntry("Carla")))
	require.NoError(t, store.AddEntry(ctx, "other", period, sampleEntry("Davi")))

	entries, err := store.ListBatchEntries(ctx, "acme", period)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].Worker.Name)
	assert.Equal(t, "Bruno", entries[1].Worker.Name)

	want := sampleEntry("Ana")
	got := entries[0]
	assert.Equal(t, want.Worker, got.Worker)
	assert.True(t, want.Ficha.NetPay.Equal(got.Ficha.NetPay))
	assert.Equal(t, "500.10", got.Ficha.SocialSecurityWithheld.String())
	assert.Equal(t, 2, got.Ficha.Dependents)
	require.Len(t, got.Ficha.Lines, 3)
	assert.Equal(t, "1010", got.Ficha.Lines[1].Rubric)
	assert.Equal(t, esocial.LineTaxWithholding, got.Ficha.Lines[2].Kind)
	assert.Equal(t, "500.10", got.Ficha.Lines[2].Amount.String())
}

func TestAddEntryRejectsBadPeriod(t *testing.T) {
	store := newTestStore(t)
	err := store.AddEntry(context.Background(), "acme", esocial.Period{}, sampleEntry("Ana"))
	assert.ErrorIs(t, err, esocial.ErrEmptyPeriod)
}

func TestImportBatchReplacesPeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := esocial.NewPeriod(2025, 3)
	employer := esocial.EmployerIdentity{Registry: "12345678000195"}

	require.NoError(t, store.ImportBatch(ctx, "acme", period, employer, []esocial.Entry{sampleEntry("Ana"), sampleEntry("Bruno")}))
	require.NoError(t, store.ImportBatch(ctx, "acme", period, employer, []esocial.Entry{sampleEntry("Carla")}))

	entries, err := store.ListBatchEntries(ctx, "acme", period)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Carla", entries[0].Worker.Name)
	assert.Len(t, entries[0].Ficha.Lines, 3)
}

func TestStoreFeedsService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := esocial.NewPeriod(2025, 3)
	require.NoError(t, store.ImportBatch(ctx, "acme", period, esocial.EmployerIdentity{Registry: "12345678000195"},
		[]esocial.Entry{sampleEntry("Ana"), sampleEntry("Bruno")}))

	generator, err := esocial.NewGenerator(esocial.DefaultOptions(), nil)
	require.NoError(t, err)
	batch, err := esocial.NewService(store, generator).GenerateForTenant(ctx, "acme", period)
	require.NoError(t, err)
	assert.Equal(t, 5, batch.Summary.Total)
	assert.Equal(t, 5, batch.Summary.Valid)
	assert.Contains(t, batch.Events[0].XML, "<vrRubr>4000.00</vrRubr>")
}
