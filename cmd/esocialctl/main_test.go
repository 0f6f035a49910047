package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerJSON = `{
  "employer": {"registry": "12.345.678/0001-95"},
  "entries": [
    {
      "worker": {"taxId": "123.456.789-00", "enrollment": "12345678901", "name": "Maria da Silva", "registration": "MAT001", "categoryCode": "101"},
      "ficha": {"grossEarnings": "5000.00", "netPay": "4500.00", "socialSecurityWithheld": "500.00"}
    },
    {
      "worker": {"taxId": "", "enrollment": "", "name": "Joao", "registration": "MAT002", "categoryCode": "101"},
      "ficha": {"grossEarnings": "3000.00", "netPay": "3000.00"}
    }
  ]
}`

func TestRunImportsAndWritesEvents(t *testing.T) {
	dir := t.TempDir()
	importPath := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(importPath, []byte(ledgerJSON), 0o644))
	outDir := filepath.Join(dir, "out")
	pdfPath := filepath.Join(dir, "summary.pdf")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-db", filepath.Join(dir, "ledger.db"),
		"-period", "03/2025",
		"-import", importPath,
		"-out", outDir,
		"-pdf", pdfPath,
		"-workers", "2",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	files, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, files, 5)
	for _, f := range files {
		assert.True(t, strings.HasPrefix(f.Name(), "ID1"))
		assert.True(t, strings.HasSuffix(f.Name(), ".xml"))
	}

	assert.Contains(t, stdout.String(), "5 events, 3 valid, 2 invalid")
	assert.Contains(t, stdout.String(), "Joao")

	info, err := os.Stat(pdfPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunRejectsMissingEmployer(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-db", filepath.Join(dir, "ledger.db"),
		"-period", "2025-03",
		"-out", filepath.Join(dir, "out"),
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "batch rejected")

	_, err := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRejectsBadPeriod(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-period", "March"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid -period")
}
