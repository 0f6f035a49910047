// Command esocialctl generates a reporting batch from a SQLite ledger and
// writes one XML file per event.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"esocial/internal/domain/esocial"
	"esocial/internal/platform/config"
	"esocial/internal/store/sqlite"
)

// importFile is the JSON layout accepted by -import.
type importFile struct {
	Employer esocial.EmployerIdentity `json:"employer"`
	Entries  []esocial.Entry          `json:"entries"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	opts := cfg.ESocial

	fs := flag.NewFlagSet("esocialctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "ledger.db", "SQLite ledger path")
	tenant := fs.String("tenant", "default", "tenant whose ledger is read")
	rawPeriod := fs.String("period", "", "reporting period (MM/YYYY or YYYY-MM)")
	outDir := fs.String("out", "out", "directory for generated XML files")
	pdfPath := fs.String("pdf", "", "optional path for a summary PDF")
	importPath := fs.String("import", "", "optional JSON file with employer and entries to load first")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "concurrent workers")
	fs.StringVar(&opts.Environment, "env", opts.Environment, "environment indicator (1 production, 2 restricted)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	period, err := esocial.ParsePeriod(*rawPeriod)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -period: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "open ledger: %v\n", err)
		return 1
	}
	defer store.Close()

	if *importPath != "" {
		if err := importLedger(ctx, store, *importPath, *tenant, period); err != nil {
			fmt.Fprintf(stderr, "import: %v\n", err)
			return 1
		}
	}

	generator, err := esocial.NewGenerator(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	batch, err := esocial.NewService(store, generator).GenerateForTenant(ctx, *tenant, period)
	if err != nil {
		var pre *esocial.PreconditionError
		if errors.As(err, &pre) {
			fmt.Fprintf(stderr, "batch rejected: %v\n", pre)
			return 1
		}
		fmt.Fprintf(stderr, "generate: %v\n", err)
		return 1
	}

	if err := writeEvents(*outDir, batch.Events); err != nil {
		fmt.Fprintf(stderr, "write events: %v\n", err)
		return 1
	}
	if *pdfPath != "" {
		if err := writePDF(*pdfPath, batch); err != nil {
			fmt.Fprintf(stderr, "write pdf: %v\n", err)
			return 1
		}
	}

	printSummary(stdout, batch)
	return 0
}

func importLedger(ctx context.Context, store *sqlite.Store, path, tenant string, period esocial.Period) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file importFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return store.ImportBatch(ctx, tenant, period, file.Employer, file.Entries)
}

func writeEvents(dir string, events []esocial.GeneratedEvent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, ev := range events {
		path := filepath.Join(dir, ev.ID.String()+".xml")
		if err := os.WriteFile(path, []byte(ev.XML), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writePDF(path string, batch esocial.Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := esocial.WriteSummaryPDF(f, batch.Period, batch.Employer, batch.Summary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, batch esocial.Batch) {
	s := batch.Summary
	fmt.Fprintf(w, "period %s employer %s: %d events, %d valid, %d invalid\n",
		batch.Period, batch.Employer.Registry, s.Total, s.Valid, s.Invalid)
	for _, p := range s.Problems {
		fmt.Fprintf(w, "  %s %s %s\n", p.EventID, p.Kind, p.WorkerName)
		for _, msg := range p.Violations {
			fmt.Fprintf(w, "    - %s\n", msg)
		}
	}
}
