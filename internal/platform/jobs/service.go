package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobESocialBatch = "esocial_batch"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is the recorded outcome of one job execution.
type Run struct {
	ID       string
	Type     string
	TenantID string
	Status   string
	Duration time.Duration
}

// Service records job executions in job_runs. Without a database the runs
// are only logged.
type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (Run, any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) runJob(ctx context.Context, j job) (Run, any, error) {
	started := time.Now()
	record := Run{Type: j.Type, TenantID: j.TenantID, Status: StatusRunning}
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, nullIfEmpty(j.TenantID), j.Type, StatusRunning).Scan(&record.ID); err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	details, err := j.Run(ctx)
	record.Status = StatusCompleted
	if err != nil {
		record.Status = StatusFailed
		details = map[string]any{"error": err.Error()}
	}
	record.Duration = time.Since(started)

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if s.DB != nil {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, record.Status, detailsJSON, record.ID); updErr != nil {
			slog.Warn("job run update failed", "runId", record.ID, "err", updErr)
		}
	}
	slog.Info("job run finished",
		"runId", record.ID,
		"jobType", j.Type,
		"tenantId", j.TenantID,
		"status", record.Status,
		"durationMs", record.Duration.Milliseconds(),
	)
	if err != nil {
		return record, nil, err
	}
	return record, details, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
