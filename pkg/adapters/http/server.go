package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/logging"
	"github.com/aretw0/clearance/internal/sanitize"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/aretw0/clearance/pkg/observability"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// Defaults for the public surface.
const (
	DefaultRateLimit    = 20
	DefaultRateWindow   = time.Minute
	DefaultMaxBodyBytes = 16 << 10
)

// User-facing error messages.
const (
	msgBadBody        = "Invalid request body."
	msgSessionID      = "sessionId required"
	msgEmptyLead      = "At least one contact field required."
	msgEventRequired  = "event required"
	msgInternal       = "Internal server error."
	msgLeadThankYou   = "Thank you! Our team will be in touch."
	msgTooManyRequest = "Too many requests. Please slow down."
)

// Engine defines what the HTTP surface needs from the intake core.
type Engine interface {
	State(ctx context.Context, sessionID string) (domain.View, error)
	Advance(ctx context.Context, sessionID string, input any) (*domain.Turn, error)
	Evaluate(data domain.CollectedData) *domain.EligibilityResult
	EligibilityContext(result *domain.EligibilityResult) string
	CaptureLead(ctx context.Context, sessionID string, form domain.ContactForm) error
	RecordEvent(ctx context.Context, sessionID, name string, data map[string]any) error
	Catalog() eligibility.Catalog
}

var _ Engine = (*clearance.Engine)(nil)

// Server holds the handlers of the public API.
type Server struct {
	engine    Engine
	sanitizer *sanitize.Sanitizer
	markdown  goldmark.Markdown
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	allowedOrigins []string
	rateLimit      int
	rateWindow     time.Duration
	maxBodyBytes   int64
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request durations and serves GET /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAllowedOrigins sets the CORS allow-list. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRateLimit allows limit requests per client IP per window.
// A non-positive limit disables rate limiting.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = limit
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithMaxInputSize bounds free-text answers.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.sanitizer = sanitize.New(n)
	}
}

// WithClock overrides the clock used by the rate limiter and health check.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:       engine,
		sanitizer:    sanitize.New(sanitize.DefaultMaxInputSize),
		markdown:     goldmark.New(),
		logger:       logging.NewNop(),
		now:          time.Now,
		rateLimit:    DefaultRateLimit,
		rateWindow:   DefaultRateWindow,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(CORS(s.allowedOrigins))

	r.Get("/api/health", s.Health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(newRateLimiter(s.rateLimit, s.rateWindow, s.now).Middleware)
		}
		r.Use(limitBody(s.maxBodyBytes))

		r.Post("/api/flow/state", s.FlowState)
		r.Post("/api/flow/advance", s.FlowAdvance)
		r.Post("/api/eligibility", s.Evaluate)
		r.Post("/api/eligibility/context", s.EligibilityContext)
		r.Post("/api/lead", s.Lead)
		r.Post("/api/event", s.Event)
		r.Get("/api/catalog", s.Catalog)
	})

	return r
}

// flowResponse is the widget's view of a turn.
type flowResponse struct {
	SessionID         string                    `json:"sessionId"`
	Step              domain.StateID            `json:"step"`
	Message           string                    `json:"message"`
	MessageHTML       string                    `json:"messageHtml"`
	QuickReplies      []domain.QuickReply       `json:"quickReplies"`
	InputType         *domain.InputType         `json:"inputType"`
	EligibilityResult *resultResponse `json:"eligibilityResult,omitempty"`
	ValidationError   string          `json:"validationError,omitempty"`
}

// resultResponse is the widget's view of an eligibility result.
type resultResponse struct {
	Bucket         domain.Bucket     `json:"bucket"`
	Status         domain.Status     `json:"status"`
	Pathway        domain.Pathway    `json:"pathway,omitempty"`
	Eligible       string            `json:"eligible"`
	Confidence     domain.Confidence `json:"confidence"`
	Reason         string            `json:"reason"`
	NextSteps      string            `json:"nextSteps"`
	Disclaimer     string            `json:"disclaimer"`
	EligibleOnDate *string           `json:"eligibleOnDate"`
	EligibleOn     *time.Time        `json:"eligibleOn,omitempty"`
	YearsRemaining *float64          `json:"yearsRemaining,omitempty"`
}

func newResultResponse(r *domain.EligibilityResult) *resultResponse {
	if r == nil {
		return nil
	}
	resp := &resultResponse{
		Bucket:         r.Bucket,
		Status:         r.Status,
		Pathway:        r.Pathway,
		Eligible:       r.Eligible,
		Confidence:     r.Confidence,
		Reason:         r.Reason,
		NextSteps:      r.NextSteps,
		Disclaimer:     r.Disclaimer,
		EligibleOn:     r.EligibleOn,
		YearsRemaining: r.YearsRemaining,
	}
	if r.EligibleOnDate != "" {
		date := r.EligibleOnDate
		resp.EligibleOnDate = &date
	}
	return resp
}

func (r resultResponse) result() *domain.EligibilityResult {
	out := &domain.EligibilityResult{
		Bucket:         r.Bucket,
		Status:         r.Status,
		Pathway:        r.Pathway,
		Eligible:       r.Eligible,
		Confidence:     r.Confidence,
		Reason:         r.Reason,
		NextSteps:      r.NextSteps,
		Disclaimer:     r.Disclaimer,
		EligibleOn:     r.EligibleOn,
		YearsRemaining: r.YearsRemaining,
	}
	if r.EligibleOnDate != nil {
		out.EligibleOnDate = *r.EligibleOnDate
	}
	return out
}

func (s *Server) flowResponse(sessionID string, v domain.View) flowResponse {
	resp := flowResponse{
		SessionID:    sessionID,
		Step:         v.StateID,
		Message:      v.Prompt,
		MessageHTML:  s.renderMarkdown(v.Prompt),
		QuickReplies: v.QuickReplies,
	}
	if resp.QuickReplies == nil {
		resp.QuickReplies = []domain.QuickReply{}
	}
	if v.InputType != "" {
		t := v.InputType
		resp.InputType = &t
	}
	return resp
}

func (s *Server) renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

type stateRequest struct {
	SessionID string `json:"sessionId"`
}

// FlowState handles POST /api/flow/state. A missing session id starts a
// new session under a fresh id, returned in the response.
func (s *Server) FlowState(w http.ResponseWriter, r *http.Request) {
	var body stateRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	view, err := s.engine.State(r.Context(), body.SessionID)
	if err != nil {
		s.internalError(w, r, "flow state failed", err)
		return
	}
	JSON(w, http.StatusOK, s.flowResponse(body.SessionID, view))
}

type advanceRequest struct {
	SessionID string          `json:"sessionId"`
	Input     json.RawMessage `json:"input"`
}

// FlowAdvance handles POST /api/flow/advance.
func (s *Server) FlowAdvance(w http.ResponseWriter, r *http.Request) {
	var body advanceRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.SessionID == "" {
		Error(w, http.StatusBadRequest, msgSessionID)
		return
	}

	input, err := s.parseInput(body.Input)
	if err != nil {
		s.rejectInput(w, r, err)
		return
	}

	turn, err := s.engine.Advance(r.Context(), body.SessionID, input)
	if err != nil {
		s.internalError(w, r, "flow advance failed", err)
		return
	}

	resp := s.flowResponse(body.SessionID, turn.View)
	resp.EligibilityResult = newResultResponse(turn.EligibilityResult)
	resp.ValidationError = turn.ValidationMessage()
	JSON(w, http.StatusOK, resp)
}

// parseInput accepts a string (quick-reply id or free text), an object
// (contact and lead forms), a number, or nothing.
func (s *Server) parseInput(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return s.sanitizer.Answer(text)
	}

	var form map[string]any
	if err := json.Unmarshal(raw, &form); err == nil {
		return s.sanitizeForm(form)
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return s.sanitizer.Answer(number.String())
	}
	return nil, errInvalidInput
}

var errInvalidInput = errors.New("input must be a string or an object")

func (s *Server) sanitizeForm(form map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(form))
	for k, v := range form {
		str, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		clean, err := s.sanitizer.Text(str)
		if err != nil {
			return nil, err
		}
		out[k] = clean
	}
	return out, nil
}

func (s *Server) rejectInput(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("input rejected", "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
	if errors.Is(err, sanitize.ErrSensitiveData) {
		Error(w, http.StatusBadRequest, sanitize.SensitiveDataMessage)
		return
	}
	Error(w, http.StatusBadRequest, "Invalid input: "+err.Error())
}

// Evaluate handles POST /api/eligibility: direct classification of answers.
// Dates may use any accepted spelling; they are normalized first.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var data domain.CollectedData
	if !s.decode(w, r, &data) {
		return
	}
	if field, ok := eligibility.NormalizeDates(&data); !ok {
		Error(w, http.StatusBadRequest, "Invalid "+field+": use YYYY, MM/YYYY, or Month YYYY.")
		return
	}
	JSON(w, http.StatusOK, newResultResponse(s.engine.Evaluate(data)))
}

// EligibilityContext handles POST /api/eligibility/context.
func (s *Server) EligibilityContext(w http.ResponseWriter, r *http.Request) {
	var body resultResponse
	if !s.decode(w, r, &body) {
		return
	}
	if body.Status == "" {
		Error(w, http.StatusBadRequest, "status required")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"context": s.engine.EligibilityContext(body.result())})
}

type leadRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Lead handles POST /api/lead.
func (s *Server) Lead(w http.ResponseWriter, r *http.Request) {
	var body leadRequest
	if !s.decode(w, r, &body) {
		return
	}

	var form domain.ContactForm
	for _, f := range []struct {
		in  string
		out *string
	}{{body.Name, &form.Name}, {body.Email, &form.Email}, {body.Phone, &form.Phone}} {
		clean, err := s.sanitizer.Text(f.in)
		if err != nil {
			s.rejectInput(w, r, err)
			return
		}
		*f.out = clean
	}

	err := s.engine.CaptureLead(r.Context(), body.SessionID, form)
	switch {
	case errors.Is(err, clearance.ErrEmptyLead):
		Error(w, http.StatusBadRequest, msgEmptyLead)
	case err != nil:
		s.internalError(w, r, "lead capture failed", err)
	default:
		JSON(w, http.StatusOK, map[string]any{"success": true, "message": msgLeadThankYou})
	}
}

type eventRequest struct {
	SessionID string         `json:"sessionId"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
}

// Event handles POST /api/event.
func (s *Server) Event(w http.ResponseWriter, r *http.Request) {
	var body eventRequest
	if !s.decode(w, r, &body) {
		return
	}
	err := s.engine.RecordEvent(r.Context(), body.SessionID, body.Event, body.Data)
	switch {
	case errors.Is(err, clearance.ErrEmptyEvent):
		Error(w, http.StatusBadRequest, msgEventRequired)
	case err != nil:
		s.internalError(w, r, "event failed", err)
	default:
		JSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// Catalog handles GET /api/catalog.
func (s *Server) Catalog(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, s.engine.Catalog())
}

// Health handles GET /api/health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return false
		}
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		Error(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
	Error(w, http.StatusInternalServerError, msgInternal)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
