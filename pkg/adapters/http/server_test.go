package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/sanitize"
	httpAdapter "github.com/aretw0/clearance/pkg/adapters/http"
	"github.com/aretw0/clearance/pkg/adapters/memory"
	"github.com/aretw0/clearance/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	handler  http.Handler
	recorder *memory.Recorder
}

func newFixture(t *testing.T, opts ...httpAdapter.Option) *fixture {
	t.Helper()
	rec := memory.NewRecorder()
	eng, err := clearance.New(
		clearance.WithRecorder(rec),
		clearance.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	base := []httpAdapter.Option{
		httpAdapter.WithClock(func() time.Time { return fixedNow }),
		httpAdapter.WithAllowedOrigins("http://localhost:3001"),
	}
	return &fixture{handler: httpAdapter.NewHandler(eng, append(base, opts...)...), recorder: rec}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (f *fixture) advance(t *testing.T, sessionID string, inputs ...string) map[string]any {
	t.Helper()
	var out map[string]any
	for _, in := range inputs {
		var rec *httptest.ResponseRecorder
		rec, out = f.do(t, "POST", "/api/flow/advance", `{"sessionId":"`+sessionID+`","input":`+in+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, out := f.do(t, "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "2026-10-16T12:00:00Z", out["timestamp"])
}

func TestFlowState(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/flow/state", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["sessionId"], 36)
	assert.Equal(t, "GREETING", out["step"])
	assert.Nil(t, out["inputType"])
	assert.Contains(t, out["messageHtml"], "<p>")
	assert.Len(t, out["quickReplies"], 2)

	_, out = f.do(t, "POST", "/api/flow/state", `{"sessionId":"s1"}`)
	assert.Equal(t, "s1", out["sessionId"])

	rec, out = f.do(t, "POST", "/api/flow/state", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", out["error"])
}

func TestFlowAdvance_FullConversation(t *testing.T) {
	f := newFixture(t)

	out := f.advance(t, "s1", `"start_check"`, `"tx_yes"`, `"no"`, `"Dana <b>Smith</b>"`)
	assert.Equal(t, "ASK_CONTACT", out["step"])
	assert.Equal(t, "contact_form", out["inputType"])

	out = f.advance(t, "s1", `{"email":"<i>dana@example.com</i>","phone":5125550100}`)
	assert.Equal(t, "ASK_OFFENSE_LEVEL", out["step"])

	leads := f.recorder.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "dana@example.com", leads[0].Email)
	assert.Equal(t, "5125550100", leads[0].Phone)
	assert.Equal(t, "Dana", leads[0].Name)

	out = f.advance(t, "s1", `"misdemeanor"`, `"single"`, `"dismissed"`, `"April 2020"`, `"standard"`)
	assert.Equal(t, "ELIGIBILITY_RESULT", out["step"])
	result, ok := out["eligibilityResult"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "eligible_expunction", result["status"])
	assert.Equal(t, "April 1, 2022", result["eligibleOnDate"])
	assert.NotEmpty(t, result["nextSteps"])
	assert.NotContains(t, result, "next_steps")
	assert.NotContains(t, result, "eligible_on_date")
	assert.Equal(t, "retain_standard", out["quickReplies"].([]any)[0].(map[string]any)["id"])

	events := f.recorder.Events()
	require.Len(t, events, 2)
	assert.Equal(t, clearance.EventEligibilityCheck, events[1].Name)
}

func TestFlowAdvance_Rejections(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/flow/advance", `{"input":"start_check"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sessionId required", out["error"])

	rec, out = f.do(t, "POST", "/api/flow/advance", `{"sessionId":"s1","input":"my ssn is 123-45-6789"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, sanitize.SensitiveDataMessage, out["error"])

	rec, _ = f.do(t, "POST", "/api/flow/advance", `{"sessionId":"s1","input":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.advance(t, "s1", `"start_check"`, `"tx_yes"`, `"no"`)
	out = f.advance(t, "s1", `"   "`)
	assert.Equal(t, "ASK_NAME", out["step"])
	assert.Equal(t, "Please share at least your first name so we can continue.", out["validationError"])
}

func TestFlowAdvance_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	body := `{"sessionId":"s1","input":"` + strings.Repeat("a", httpAdapter.DefaultMaxBodyBytes) + `"}`
	rec, _ := f.do(t, "POST", "/api/flow/advance", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/eligibility",
		`{"jurisdiction":"TX","offense_level":"misdemeanor","case_outcome":"dismissed","arrest_date":"04/2020","dismissed_category":"standard"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "eligible_expunction", out["status"])
	assert.Contains(t, out, "nextSteps")
	assert.Contains(t, out, "eligibleOnDate")
	assert.Equal(t, "likely", out["eligible"])

	rec, out = f.do(t, "POST", "/api/eligibility", `{"jurisdiction":"TX","case_outcome":"unfiled","arrest_date":"last spring"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "arrest_date")
}

func TestEligibilityContext(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/eligibility/context",
		`{"bucket":"eligible","status":"eligible_expunction","pathway":"expunction","reason":"r","nextSteps":"n","eligibleOnDate":"April 1, 2022","disclaimer":"d"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out["context"], "**Pathway**: expunction")

	rec, _ = f.do(t, "POST", "/api/eligibility/context", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLead(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/lead", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "At least one contact field required.", out["error"])

	rec, out = f.do(t, "POST", "/api/lead", `{"name":"  Dana  ","phone":"512 555 0100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Thank you! Our team will be in touch.", out["message"])

	leads := f.recorder.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "Dana", leads[0].Name)
	assert.Equal(t, clearance.UnknownSession, leads[0].SessionID)
	assert.Empty(t, f.recorder.Events())
}

func TestEvent(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, "POST", "/api/event", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "event required", out["error"])

	rec, out = f.do(t, "POST", "/api/event", `{"event":"widget_opened","data":{"page":"/"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	require.Len(t, f.recorder.Events(), 1)
	assert.Equal(t, "/", f.recorder.Events()[0].Data["page"])
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	rec, out := f.do(t, "GET", "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["services"])
	assert.NotEmpty(t, out["offense_categories"])
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, httpAdapter.WithRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		rec, _ := f.do(t, "POST", "/api/flow/state", `{"sessionId":"s1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, out := f.do(t, "POST", "/api/flow/state", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please slow down.", out["error"])
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec, _ = f.do(t, "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("OPTIONS", "/api/flow/state", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics()
	f := newFixture(t, httpAdapter.WithMetrics(m))

	f.do(t, "GET", "/api/health", "")
	rec, _ := f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clearance_http_request_duration_seconds_count{code="200",method="GET",route="/api/health"} 1`)

	rec, _ = newFixture(t).do(t, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
