package esocial

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// GeneratedEvent is the unit handed back to the caller for one event.
type GeneratedEvent struct {
	Kind       EventKind
	WorkerName string
	XML        string
	ID         EventID
	Outcome    ValidationOutcome
}

func (e GeneratedEvent) Valid() bool {
	return e.Outcome.Valid()
}

func (e GeneratedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       EventKind `json:"kind"`
		WorkerName string    `json:"workerName,omitempty"`
		ID         string    `json:"id"`
		Sequence   int64     `json:"sequence"`
		Valid      bool      `json:"valid"`
		Violations []string  `json:"violations"`
		XML        string    `json:"xml"`
	}{
		Kind:       e.Kind,
		WorkerName: e.WorkerName,
		ID:         e.ID.String(),
		Sequence:   e.ID.Sequence,
		Valid:      e.Outcome.Valid(),
		Violations: e.Outcome.Messages(),
		XML:        e.XML,
	})
}

type Generator struct {
	opts   Options
	logger *slog.Logger
}

func NewGenerator(opts Options, logger *slog.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("esocial options: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{opts: opts, logger: logger}, nil
}

func (g *Generator) Options() Options {
	return g.opts
}

// workerJob carries the sequence numbers reserved for one worker before the
// batch fans out, so numbering never depends on scheduling.
type workerJob struct {
	index      int
	entry      Entry
	remunSeq   int64
	paymentSeq int64
}

// GenerateBatch compiles the events for one period. Only a missing employer
// identity or an empty period abort the call; per-worker problems are
// returned on the events they describe.
func (g *Generator) GenerateBatch(ctx context.Context, period Period, employer EmployerIdentity, entries []Entry) ([]GeneratedEvent, error) {
	if err := periodPrecondition(period); err != nil {
		return nil, err
	}
	employer, err := employer.Normalize()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	header := NewHeader(period, employer, g.opts)
	seq := NewSequencer(1)

	jobs := make([]workerJob, len(entries))
	for i, entry := range entries {
		jobs[i] = workerJob{index: i, entry: entry, remunSeq: seq.Next(), paymentSeq: seq.Next()}
	}

	results := make([]GeneratedEvent, 2*len(entries)+1)
	if err := g.run(ctx, header, jobs, results); err != nil {
		return nil, err
	}

	closure := ComposeClosure(header, len(entries))
	results[len(results)-1] = g.build(closure, NextEventID(closure.Family(), employer.Root, seq.Next()), "", nil)

	summary := Summarize(results)
	g.logger.Info("esocial batch generated",
		"period", period.String(),
		"employerRoot", employer.Root,
		"workers", len(entries),
		"events", summary.Total,
		"valid", summary.Valid,
		"invalid", summary.Invalid,
		"durationMs", time.Since(started).Milliseconds(),
	)
	return results, nil
}

func (g *Generator) run(ctx context.Context, header Header, jobs []workerJob, results []GeneratedEvent) error {
	workers := g.opts.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers <= 1 {
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.processWorker(header, job, results)
		}
		return nil
	}

	workCh := make(chan workerJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workCh {
				g.processWorker(header, job, results)
			}
		}()
	}

	var cancelled error
	for _, job := range jobs {
		if cancelled = ctx.Err(); cancelled != nil {
			break
		}
		select {
		case workCh <- job:
		case <-ctx.Done():
			cancelled = ctx.Err()
		}
		if cancelled != nil {
			break
		}
	}
	close(workCh)
	wg.Wait()
	return cancelled
}

// processWorker writes the worker's two events into their reserved slots.
func (g *Generator) processWorker(header Header, job workerJob, results []GeneratedEvent) {
	violations := ValidateWorker(job.entry.Worker)
	name := strings.TrimSpace(job.entry.Worker.Name)
	if len(violations) > 0 {
		g.logger.Warn("esocial worker record invalid",
			"period", header.Period.String(),
			"registration", job.entry.Worker.Registration,
			"violations", len(violations),
		)
	}

	remunViolations := append(ValidateEstablishment(header.Employer), violations...)
	remun := ComposeRemuneration(header, job.entry, g.opts)
	results[2*job.index] = g.build(remun, NextEventID(remun.Family(), header.Employer.Root, job.remunSeq), name, remunViolations)

	payment := ComposePayment(header, job.entry, g.opts)
	results[2*job.index+1] = g.build(payment, NextEventID(payment.Family(), header.Employer.Root, job.paymentSeq), name, violations)
}

func (g *Generator) build(event ComposedEvent, id EventID, workerName string, violations []Violation) GeneratedEvent {
	text, err := Render(event, id)
	var structural []Violation
	if err != nil {
		structural = []Violation{{Code: ViolationStructural, Message: err.Error()}}
	} else if ok, found := BasicStructuralCheck(text); !ok {
		structural = found
	}
	return GeneratedEvent{
		Kind:       event.Kind(),
		WorkerName: workerName,
		XML:        text,
		ID:         id,
		Outcome:    NewOutcome(violations, structural),
	}
}
