package esocial

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRegistry = "12.345.678/0001-95"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEmployer(t *testing.T) EmployerIdentity {
	t.Helper()
	e, err := NewEmployerIdentity(testRegistry)
	require.NoError(t, err)
	return e
}

func testGenerator(t *testing.T, workers int) *Generator {
	t.Helper()
	opts := DefaultOptions()
	opts.Workers = workers
	g, err := NewGenerator(opts, testLogger())
	require.NoError(t, err)
	return g
}

func validWorker() WorkerRecord {
	return WorkerRecord{
		TaxID:        "123.456.789-00",
		Enrollment:   "12345678901",
		Name:         "Maria da Silva",
		Registration: "MAT001",
		CategoryCode: "101",
	}
}

func scenarioEntry() Entry {
	return Entry{
		Worker: validWorker(),
		Ficha: FichaSnapshot{
			GrossEarnings:          MustMoney("5000.00"),
			TotalDeductions:        MustMoney("500.00"),
			NetPay:                 MustMoney("4500.00"),
			SocialSecurityBase:     MustMoney("5000.00"),
			SocialSecurityWithheld: MustMoney("500.00"),
			IncomeTaxWithheld:      MustMoney("0.00"),
		},
	}
}
