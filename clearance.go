package clearance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/internal/logging"
	"github.com/aretw0/clearance/internal/presentation/graph"
	"github.com/aretw0/clearance/internal/runtime"
	"github.com/aretw0/clearance/pkg/adapters/memory"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/aretw0/clearance/pkg/ports"
	"github.com/aretw0/clearance/pkg/session"
)

// Analytics event names handed to the Recorder.
const (
	EventContactCapturedEarly = "contact_captured_early"
	EventEligibilityCheck     = "eligibility_check"
	EventLeadCaptured         = "lead_captured"
)

// LeadInProgress marks leads captured before a result exists.
const LeadInProgress = "in_progress"

// UnknownSession is recorded when a lead or event arrives without a session id.
const UnknownSession = "unknown"

var (
	// ErrEmptyLead is returned when a lead carries no contact field.
	ErrEmptyLead = errors.New("at least one contact field required")
	// ErrEmptyEvent is returned when an analytics event has no name.
	ErrEmptyEvent = errors.New("event name required")
	// ErrMissingSessionID is returned by turn operations called without an id.
	ErrMissingSessionID = errors.New("session id required")
)

// Engine is the high-level entry point for clearance.
// It owns the session lifecycle around the pure runtime and forwards
// leads and analytics to the Recorder.
type Engine struct {
	rules    *eligibility.Rules
	runtime  *runtime.Engine
	sessions *session.Manager
	store    ports.SessionStore
	locker   ports.DistributedLocker
	recorder ports.Recorder
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRules replaces the embedded statutory rules and service table.
func WithRules(rules *eligibility.Rules) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed turn locking across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithRecorder sets where leads and analytics events go.
func WithRecorder(recorder ports.Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides "now" for date arithmetic and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes an Engine. With no options it evaluates against the
// embedded Texas rules, keeps sessions in memory and records nothing.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.now == nil {
		eng.now = time.Now
	}
	if eng.rules == nil {
		eng.rules = eligibility.DefaultRules()
	}
	if eng.store == nil {
		eng.store = memory.NewStore(memory.WithClock(eng.now))
	}
	if eng.recorder == nil {
		eng.recorder = ports.NopRecorder{}
	}

	evaluator, err := eligibility.New(eng.rules, eligibility.WithClock(eng.now))
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	eng.runtime, err = runtime.NewEngine(intake.Texas(eng.rules), evaluator,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithClock(eng.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid state table: %w", err)
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithClock(eng.now),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// State returns the current prompt of a session, creating it on first contact.
func (e *Engine) State(ctx context.Context, sessionID string) (domain.View, error) {
	if sessionID == "" {
		return domain.View{}, ErrMissingSessionID
	}
	s, err := e.sessions.LoadOrStart(ctx, sessionID, e.runtime.Table().Initial())
	if err != nil {
		return domain.View{}, err
	}
	return e.runtime.Render(ctx, s)
}

// Advance applies one answer to a session, creating it on first contact.
//
// A form carrying an email or phone is recorded as an early lead before the
// turn completes, so a visitor who abandons the flow can still be reached.
// Recorder failures are logged and never fail the turn.
func (e *Engine) Advance(ctx context.Context, sessionID string, input any) (*domain.Turn, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	var (
		turn  *domain.Turn
		early *domain.Lead
		form  domain.ContactForm
	)
	s, err := e.sessions.Update(ctx, sessionID, e.runtime.Table().Initial(), func(ctx context.Context, s *domain.Session) error {
		if f, ok := runtime.DecodeForm(input); ok && (f.Email != "" || f.Phone != "") {
			form = f
			name := s.CollectedData.FirstName
			if name == "" {
				name = f.Name
			}
			lead := e.newLead(s, domain.ContactForm{Name: name, Email: f.Email, Phone: f.Phone})
			lead.EligibilityResult = LeadInProgress
			early = &lead
		}
		var err error
		turn, err = e.runtime.Advance(ctx, s, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if early != nil {
		e.recordLead(ctx, *early)
		e.recordEvent(ctx, sessionID, EventContactCapturedEarly, map[string]any{"hasEmail": form.Email != ""})
	}
	if turn.EligibilityResult != nil {
		e.recordEvent(ctx, sessionID, EventEligibilityCheck, map[string]any{
			"offenseLevel": string(s.CollectedData.OffenseLevel),
			"outcome":      string(s.CollectedData.CaseOutcome),
			"bucket":       string(turn.EligibilityResult.Bucket),
			"status":       string(turn.EligibilityResult.Status),
		})
	}
	return turn, nil
}

// Evaluate classifies answers directly, without a conversation.
func (e *Engine) Evaluate(data domain.CollectedData) *domain.EligibilityResult {
	return e.runtime.Evaluate(data)
}

// EligibilityContext renders a result as the markdown block handed to a
// free-form chat assistant.
func (e *Engine) EligibilityContext(result *domain.EligibilityResult) string {
	return eligibility.BuildContext(result)
}

// CaptureLead records a contact request. The session is optional; when it
// exists its jurisdiction, offense level and status enrich the lead.
func (e *Engine) CaptureLead(ctx context.Context, sessionID string, form domain.ContactForm) error {
	if form.IsEmpty() {
		return ErrEmptyLead
	}

	var s *domain.Session
	if sessionID != "" {
		loaded, err := e.sessions.Load(ctx, sessionID)
		switch {
		case err == nil:
			s = loaded
		case !errors.Is(err, domain.ErrSessionNotFound):
			return err
		}
	}

	lead := e.newLead(s, form)
	if sessionID == "" {
		lead.SessionID = UnknownSession
	} else {
		lead.SessionID = sessionID
	}
	e.recordLead(ctx, lead)

	if sessionID != "" {
		e.recordEvent(ctx, sessionID, EventLeadCaptured, map[string]any{
			"hasEmail": form.Email != "",
			"hasPhone": form.Phone != "",
		})
	}
	return nil
}

// RecordEvent forwards a free-form analytics event.
func (e *Engine) RecordEvent(ctx context.Context, sessionID, name string, data map[string]any) error {
	if name == "" {
		return ErrEmptyEvent
	}
	if sessionID == "" {
		sessionID = UnknownSession
	}
	e.recordEvent(ctx, sessionID, name, data)
	return nil
}

// Inspect returns a copy of the stored session.
func (e *Engine) Inspect(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Graph renders the state table as a Mermaid flowchart. With a session id,
// the visited path and the current state are highlighted.
func (e *Engine) Graph(ctx context.Context, sessionID string) (string, error) {
	var overlay *graph.Overlay
	if sessionID != "" {
		s, err := e.sessions.Load(ctx, sessionID)
		if err != nil {
			return "", err
		}
		overlay = graph.OverlayFor(s)
	}
	return graph.GenerateMermaid(e.runtime.Table(), overlay), nil
}

// Catalog returns the offense categories, jurisdictions and services.
func (e *Engine) Catalog() eligibility.Catalog {
	return e.rules.Catalog()
}

// Rules returns the active rules.
func (e *Engine) Rules() *eligibility.Rules {
	return e.rules
}

// Table returns the intake state table.
func (e *Engine) Table() *intake.Table {
	return e.runtime.Table()
}

// Sessions exposes the session manager for listing and deletion.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

func (e *Engine) newLead(s *domain.Session, form domain.ContactForm) domain.Lead {
	lead := domain.Lead{
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		CreatedAt: e.now(),
	}
	if s != nil {
		lead.SessionID = s.ID
		lead.Jurisdiction = string(s.CollectedData.Jurisdiction)
		lead.OffenseType = string(s.CollectedData.OffenseLevel)
		lead.EligibilityResult = string(s.Status)
	}
	return lead
}

func (e *Engine) recordLead(ctx context.Context, lead domain.Lead) {
	if err := e.recorder.RecordLead(ctx, lead); err != nil {
		e.logger.Warn("failed to record lead", "session_id", lead.SessionID, "error", err)
	}
}

func (e *Engine) recordEvent(ctx context.Context, sessionID, name string, data map[string]any) {
	event := domain.AnalyticsEvent{SessionID: sessionID, Name: name, Data: data, CreatedAt: e.now()}
	if err := e.recorder.RecordEvent(ctx, event); err != nil {
		e.logger.Warn("failed to record event", "session_id", sessionID, "event", name, "error", err)
	}
}
