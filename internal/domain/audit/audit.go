package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionESocialBatchGenerate = "esocial.batch.generate"
	ActionESocialBatchReject   = "esocial.batch.reject"

	EntityESocialBatch = "esocial_batch"
)

// Event is one audit trail row. After holds the JSON state the action
// produced, such as a batch summary.
type Event struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	After      any
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record writes the event. Without a database it is a no-op.
func (s *Service) Record(ctx context.Context, evt Event) error {
	if s == nil || s.DB == nil {
		return nil
	}
	var afterJSON []byte
	if evt.After != nil {
		payload, err := json.Marshal(evt.After)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, nullIfEmpty(evt.TenantID), nullIfEmpty(evt.ActorID), evt.Action, evt.EntityType, evt.EntityID, afterJSON, evt.RequestID, evt.IP)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
