package esocialhandler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esocial/internal/domain/auth"
	"esocial/internal/domain/esocial"
	"esocial/internal/platform/metrics"
	"esocial/internal/transport/http/middleware"
)

type stubStore struct {
	registry string
	entries  []esocial.Entry
}

func (s *stubStore) EmployerRegistry(context.Context, string) (string, error) {
	if s.registry == "" {
		return "", esocial.ErrEmployerNotConfigured
	}
	return s.registry, nil
}

func (s *stubStore) ListBatchEntries(context.Context, string, esocial.Period) ([]esocial.Entry, error) {
	return s.entries, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type batchBody struct {
	RunID   string          `json:"runId"`
	Period  string          `json:"period"`
	Summary esocial.Summary `json:"summary"`
	Events  []struct {
		Kind       string   `json:"kind"`
		ID         string   `json:"id"`
		Valid      bool     `json:"valid"`
		Violations []string `json:"violations"`
		XML        string   `json:"xml"`
	} `json:"events"`
}

const entryJSON = `{
  "worker": {"taxId": "123.456.789-00", "enrollment": "12345678901", "name": "Maria da Silva", "registration": "MAT001", "categoryCode": "101"},
  "ficha": {"grossEarnings": "5000.00", "totalDeductions": "500.00", "netPay": "4500.00", "socialSecurityWithheld": "500.00"}
}`

func newTestRouter(t *testing.T, store esocial.StoreAPI) (http.Handler, *metrics.Collector) {
	t.Helper()
	generator, err := esocial.NewGenerator(esocial.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	collector := metrics.New()
	handler := NewHandler(esocial.NewService(store, generator), nil, collector)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	router.Route("/api/v1", handler.RegisterRoutes)
	return router, collector
}

func bearer(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "u1", TenantID: "t1", RoleName: role}, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func bearerValid(t *testing.T) string {
	return bearer(t, auth.RolePayroll, time.Hour)
}

func post(t *testing.T, router http.Handler, path, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (envelope, batchBody) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var body batchBody
	if env.Success {
		require.NoError(t, json.Unmarshal(env.Data, &body))
	}
	return env, body
}

func TestGenerateBatchFromPayload(t *testing.T) {
	router, collector := newTestRouter(t, nil)
	body := `{"period": "03/2025", "employer": {"registry": "12.345.678/0001-95"}, "entries": [` + entryJSON + `]}`

	rec := post(t, router, "/api/v1/esocial/batches", body, bearerValid(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env, batch := decode(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, "03/2025", batch.Period)
	assert.Equal(t, 3, batch.Summary.Total)
	assert.Equal(t, 3, batch.Summary.Valid)
	require.Len(t, batch.Events, 3)
	assert.Equal(t, "remuneration", batch.Events[0].Kind)
	assert.Equal(t, "payment", batch.Events[1].Kind)
	assert.Equal(t, "closure", batch.Events[2].Kind)
	for _, ev := range batch.Events {
		assert.Len(t, ev.ID, 36)
		assert.True(t, ev.Valid)
		assert.Contains(t, ev.XML, `Id="`+ev.ID+`"`)
	}

	snap := collector.Snapshot()
	assert.Equal(t, uint64(1), snap["batchesTotal"])
	assert.Equal(t, uint64(3), snap["eventsValidTotal"])
}

func TestGenerateBatchReportsInvalidWorkers(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	invalid := strings.Replace(entryJSON, `"123.456.789-00"`, `"123"`, 1)
	body := `{"period": "2025-03", "employer": {"registry": "12345678000195"}, "entries": [` + invalid + `]}`

	rec := post(t, router, "/api/v1/esocial/batches", body, bearerValid(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, batch := decode(t, rec)
	assert.Equal(t, 3, batch.Summary.Total)
	assert.Equal(t, 2, batch.Summary.Invalid)
	require.Len(t, batch.Summary.Problems, 2)
	assert.False(t, batch.Events[0].Valid)
	assert.NotEmpty(t, batch.Events[0].Violations)
	assert.True(t, batch.Events[2].Valid)
}

func TestGenerateBatchPreconditionFailure(t *testing.T) {
	router, collector := newTestRouter(t, nil)
	body := `{"period": "03/2025", "employer": {"registry": ""}, "entries": [` + entryJSON + `]}`

	rec := post(t, router, "/api/v1/esocial/batches", body, bearerValid(t))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env, _ := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "precondition_failed", env.Error.Code)
	assert.Equal(t, uint64(1), collector.Snapshot()["batchesFailedTotal"])
}

func TestGenerateBatchEmptyPeriodIsPrecondition(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	body := `{"employer": {"registry": "12345678000195"}, "entries": []}`

	rec := post(t, router, "/api/v1/esocial/batches", body, bearerValid(t))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateBatchRejectsMalformedInput(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := post(t, router, "/api/v1/esocial/batches", `{"period":`, bearerValid(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, router, "/api/v1/esocial/batches", `{"period": "2025/13"}`, bearerValid(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env, _ := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestGenerateBatchRequiresAuthorizedUser(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	body := `{"period": "03/2025", "employer": {"registry": "12345678000195"}}`

	assert.Equal(t, http.StatusUnauthorized, post(t, router, "/api/v1/esocial/batches", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(t, router, "/api/v1/esocial/batches", body, bearer(t, auth.RolePayroll, -time.Minute)).Code)
	assert.Equal(t, http.StatusForbidden, post(t, router, "/api/v1/esocial/batches", body, bearer(t, "Employee", time.Hour)).Code)
}

func TestGenerateForPeriodLoadsTenantLedger(t *testing.T) {
	var entry esocial.Entry
	require.NoError(t, json.Unmarshal([]byte(entryJSON), &entry))
	store := &stubStore{registry: "12345678000195", entries: []esocial.Entry{entry, entry}}
	router, _ := newTestRouter(t, store)

	rec := post(t, router, "/api/v1/esocial/periods/2025-03/batches", "", bearerValid(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, batch := decode(t, rec)
	assert.Equal(t, 5, batch.Summary.Total)
	require.Len(t, batch.Events, 5)
	assert.Equal(t, "closure", batch.Events[4].Kind)
	assert.Contains(t, batch.Events[4].XML, "<evtRemun>S</evtRemun>")
}

func TestGenerateForPeriodWithoutRegistry(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{})

	rec := post(t, router, "/api/v1/esocial/periods/2025-03/batches", "", bearerValid(t))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateForPeriodRejectsBadPeriod(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{registry: "12345678000195"})

	rec := post(t, router, "/api/v1/esocial/periods/not-a-period/batches", "", bearerValid(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateBatchAsPDF(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	body := `{"period": "03/2025", "employer": {"registry": "12345678000195"}, "entries": [` + entryJSON + `]}`

	rec := post(t, router, "/api/v1/esocial/batches?format=pdf", body, bearerValid(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "esocial-202503.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
