package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/observability"
	"github.com/aretw0/clearance/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStateEnter(ctx, &domain.TurnEvent{To: "ASK_NAME"})
	hooks.OnStateEnter(ctx, &domain.TurnEvent{To: "ASK_NAME"})
	hooks.OnValidationError(ctx, &domain.TurnEvent{From: "ASK_ARREST_DATE"})
	hooks.OnFallback(ctx, &domain.TurnEvent{From: "GONE"})
	hooks.OnResult(ctx, &domain.ResultEvent{Bucket: domain.BucketEligible, Status: domain.StatusEligibleExpunction})

	body := scrape(t, m)
	assert.Contains(t, body, `clearance_state_visits_total{state="ASK_NAME"} 2`)
	assert.Contains(t, body, `clearance_validation_errors_total{state="ASK_ARREST_DATE"} 1`)
	assert.Contains(t, body, `clearance_fallbacks_total{from="GONE"} 1`)
	assert.Contains(t, body, `clearance_eligibility_results_total{bucket="eligible",status="eligible_expunction"} 1`)
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveRecord("lead", nil)
	m.ObserveRequest("/api/health", "GET", "200", 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `clearance_recorded_total{kind="lead",outcome="ok"} 1`)
	assert.Contains(t, body, "clearance_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestCompose(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnStateEnter: func(context.Context, *domain.TurnEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnStateEnter: func(context.Context, *domain.TurnEvent) { order = append(order, "second") },
		OnResult:     func(context.Context, *domain.ResultEvent) { order = append(order, "result") },
	}

	hooks := observability.Compose(first, domain.LifecycleHooks{}, second)
	hooks.OnStateEnter(context.Background(), &domain.TurnEvent{})
	hooks.OnResult(context.Background(), &domain.ResultEvent{})

	assert.Equal(t, []string{"first", "second", "result"}, order)
	assert.Nil(t, hooks.OnFallback)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hooks := observability.LoggingHooks(logger)

	hooks.OnResult(context.Background(), &domain.ResultEvent{
		TurnEvent: domain.TurnEvent{SessionID: "s1"},
		Bucket:    domain.BucketNeedsReview,
		Status:    domain.StatusNeedsDiscovery,
	})
	assert.Contains(t, buf.String(), `"msg":"eligibility_check"`)
	assert.Contains(t, buf.String(), `"status":"needs_discovery"`)
}

type failingRecorder struct{ ports.NopRecorder }

func (failingRecorder) RecordEvent(context.Context, domain.AnalyticsEvent) error {
	return errors.New("disk full")
}

func TestInstrumentRecorder(t *testing.T) {
	m := observability.NewMetrics()
	rec := observability.InstrumentRecorder(failingRecorder{}, m)
	ctx := context.Background()

	require.NoError(t, rec.RecordLead(ctx, domain.Lead{SessionID: "s1"}))
	require.NoError(t, rec.RecordLead(ctx, domain.Lead{SessionID: "s2"}))
	require.Error(t, rec.RecordEvent(ctx, domain.AnalyticsEvent{Name: "lead_captured"}))

	body := scrape(t, m)
	assert.Contains(t, body, `clearance_recorded_total{kind="lead",outcome="ok"} 2`)
	assert.Contains(t, body, `clearance_recorded_total{kind="event",outcome="error"} 1`)
}
