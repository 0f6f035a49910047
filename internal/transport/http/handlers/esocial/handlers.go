package esocialhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"esocial/internal/domain/audit"
	"esocial/internal/domain/esocial"
	"esocial/internal/platform/jobs"
	"esocial/internal/platform/metrics"
	"esocial/internal/transport/http/api"
	"esocial/internal/transport/http/middleware"
	"esocial/internal/transport/http/shared"
)

type Handler struct {
	Service *esocial.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Audit   *audit.Service
	Limit   func(http.Handler) http.Handler
}

func NewHandler(service *esocial.Service, jobsService *jobs.Service, collector *metrics.Collector) *Handler {
	if jobsService == nil {
		jobsService = jobs.New(nil)
	}
	return &Handler{Service: service, Jobs: jobsService, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/esocial", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		if h.Limit != nil {
			r.Use(h.Limit)
		}
		r.Post("/batches", h.handleGenerateBatch)
		r.Post("/periods/{period}/batches", h.handleGenerateForPeriod)
	})
}

type batchPayload struct {
	Period   string                   `json:"period"`
	Employer esocial.EmployerIdentity `json:"employer"`
	Entries  []esocial.Entry          `json:"entries"`
}

type batchResponse struct {
	RunID    string                   `json:"runId"`
	Period   string                   `json:"period"`
	Employer esocial.EmployerIdentity `json:"employer"`
	Summary  esocial.Summary          `json:"summary"`
	Events   []esocial.GeneratedEvent `json:"events"`
}

func (h *Handler) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload batchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid request body", requestID)
		return
	}

	v := shared.NewValidator()
	period, _ := v.Period("period", payload.Period)
	if v.Reject(w, requestID) {
		return
	}

	h.run(w, r, user.TenantID, func(ctx context.Context) (esocial.Batch, error) {
		return h.Service.Generate(ctx, period, payload.Employer, payload.Entries)
	})
}

func (h *Handler) handleGenerateForPeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	v.Required("period", chi.URLParam(r, "period"), "is required")
	period, _ := v.Period("period", chi.URLParam(r, "period"))
	if v.Reject(w, requestID) {
		return
	}

	h.run(w, r, user.TenantID, func(ctx context.Context) (esocial.Batch, error) {
		return h.Service.GenerateForTenant(ctx, user.TenantID, period)
	})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, tenantID string, generate func(context.Context) (esocial.Batch, error)) {
	requestID := middleware.GetRequestID(r.Context())

	var batch esocial.Batch
	run, _, err := h.Jobs.RunNow(r.Context(), jobs.JobESocialBatch, tenantID, func(ctx context.Context) (any, error) {
		generated, err := generate(ctx)
		if err != nil {
			return nil, err
		}
		batch = generated
		return batch.Summary, nil
	})
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordBatchFailure()
		}
		if esocial.IsPrecondition(err) {
			h.record(r, tenantID, audit.ActionESocialBatchReject, run.ID, map[string]string{"error": err.Error()})
		}
		h.fail(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordBatch(batch.Summary.Valid, batch.Summary.Invalid)
	}
	h.record(r, tenantID, audit.ActionESocialBatchGenerate, run.ID, batch.Summary)

	if strings.EqualFold(r.URL.Query().Get("format"), "pdf") {
		var buf bytes.Buffer
		if err := esocial.WriteSummaryPDF(&buf, batch.Period, batch.Employer, batch.Summary); err != nil {
			slog.Error("esocial summary pdf failed", "runId", run.ID, "err", err)
			api.Fail(w, http.StatusInternalServerError, "esocial_pdf_failed", "failed to render summary", requestID)
			return
		}
		api.Document(w, "application/pdf", "esocial-"+batch.Period.Compact()+".pdf", buf.Bytes())
		return
	}

	api.Success(w, batchResponse{
		RunID:    run.ID,
		Period:   batch.Period.String(),
		Employer: batch.Employer,
		Summary:  batch.Summary,
		Events:   batch.Events,
	}, requestID)
}

func (h *Handler) record(r *http.Request, tenantID, action, runID string, after any) {
	user, _ := middleware.GetUser(r.Context())
	err := h.Audit.Record(r.Context(), audit.Event{
		TenantID:   tenantID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: audit.EntityESocialBatch,
		EntityID:   runID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         r.RemoteAddr,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "runId", runID, "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	var pre *esocial.PreconditionError
	switch {
	case errors.As(err, &pre):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "precondition_failed", pre.Error(),
			map[string]string{"field": pre.Field, "reason": pre.Reason}, requestID)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		api.Fail(w, http.StatusServiceUnavailable, "esocial_batch_cancelled", "batch generation was cancelled", requestID)
	default:
		slog.Error("esocial batch failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "esocial_batch_failed", "failed to generate batch", requestID)
	}
}
