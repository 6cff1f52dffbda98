package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/internal/logging"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
)

// ErrNilSession is returned when a turn is attempted without a session.
var ErrNilSession = errors.New("nil session")

// Engine runs turns of the intake conversation against a state table.
// It holds no per-session state and performs no I/O, so one Engine can serve
// any number of sessions as long as each session has a single writer.
type Engine struct {
	table     *intake.Table
	evaluator *eligibility.Evaluator
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	now       func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine. The table is validated up front.
func NewEngine(table *intake.Table, evaluator *eligibility.Evaluator, opts ...Option) (*Engine, error) {
	if table == nil || evaluator == nil {
		return nil, errors.New("runtime: table and evaluator are required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		table:     table,
		evaluator: evaluator,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Table exposes the state table, e.g. for graph rendering.
func (e *Engine) Table() *intake.Table {
	return e.table
}

// Evaluator exposes the rules engine.
func (e *Engine) Evaluator() *eligibility.Evaluator {
	return e.evaluator
}

// NewSession creates a session positioned at the initial state.
func (e *Engine) NewSession(id string) *domain.Session {
	return domain.NewSession(id, e.table.Initial(), e.now())
}

// Render is the read-only rendering of the current state.
func (e *Engine) Render(ctx context.Context, s *domain.Session) (domain.View, error) {
	if s == nil {
		return domain.View{}, ErrNilSession
	}
	state := e.resolve(ctx, s, s.CurrentStateID)
	return e.view(state, s), nil
}

// Advance applies one answer to the session and returns the next prompt.
//
// input is a reply id or free text (string), or a contact/lead form
// (domain.ContactForm or a map). Validation failures do not advance the
// session; they come back on Turn.ValidationError with the prompt re-rendered.
func (e *Engine) Advance(ctx context.Context, s *domain.Session, input any) (*domain.Turn, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	now := e.now()
	s.LastAccess = now

	from := s.CurrentStateID
	state := e.resolve(ctx, s, from)
	if state.ID != from {
		s.CurrentStateID = state.ID
	}

	reply := replyText(input)
	logged := reply
	if state.InputType.Redacted() {
		logged = domain.RedactedInput
	}
	s.Events = append(s.Events, domain.Event{State: state.ID, Input: logged, Timestamp: now})

	if verr := e.coerce(state, s, reply, input); verr != nil {
		e.logger.Debug("answer rejected", "session_id", s.ID, "state", state.ID, "field", verr.Field)
		if e.hooks.OnValidationError != nil {
			e.hooks.OnValidationError(ctx, &domain.TurnEvent{
				Type:      domain.EventValidationError,
				Timestamp: now,
				SessionID: s.ID,
				From:      state.ID,
				To:        state.ID,
			})
		}
		view := e.view(state, s)
		view.Prompt = verr.Message + "\n\n" + view.Prompt
		return &domain.Turn{View: view, ValidationError: verr}, nil
	}

	route := state.Next(reply, snapshot(s))
	if route.Next == "" {
		route.Next = e.table.Fallback()
	}
	switch {
	case route.Restart:
		s.CollectedData = restartData(s.CollectedData)
		s.EligibilityResult = nil
		s.Bucket, s.Status = "", ""
		s.ReturnAfterLead = ""
	case route.Detour != "":
		s.ReturnAfterLead = route.Detour
	case route.Resumed:
		s.ReturnAfterLead = ""
	}

	next := e.resolve(ctx, s, route.Next)
	s.CurrentStateID = next.ID
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, &domain.TurnEvent{
			Type:      domain.EventStateEnter,
			Timestamp: now,
			SessionID: s.ID,
			From:      state.ID,
			To:        next.ID,
		})
	}

	turn := &domain.Turn{View: e.view(next, s)}
	if next.ID == e.table.Result() {
		result := e.evaluator.Evaluate(s.CollectedData.Clone())
		s.EligibilityResult = result
		s.Bucket = result.Bucket
		s.Status = result.Status
		turn.EligibilityResult = result
		turn.QuickReplies = intake.ResultReplies(result, e.evaluator.Rules())

		e.logger.Info("eligibility evaluated",
			"session_id", s.ID, "bucket", result.Bucket, "status", result.Status)
		if e.hooks.OnResult != nil {
			e.hooks.OnResult(ctx, &domain.ResultEvent{
				TurnEvent: domain.TurnEvent{
					Type:      domain.EventEligibility,
					Timestamp: now,
					SessionID: s.ID,
					From:      state.ID,
					To:        next.ID,
				},
				OffenseLevel: s.CollectedData.OffenseLevel,
				Outcome:      s.CollectedData.CaseOutcome,
				Bucket:       result.Bucket,
				Status:       result.Status,
			})
		}
	}
	return turn, nil
}

// Evaluate classifies collected answers without touching any session.
func (e *Engine) Evaluate(data domain.CollectedData) *domain.EligibilityResult {
	return e.evaluator.Evaluate(data.Clone())
}

// resolve looks a state up, falling back to free chat when the id is unknown.
func (e *Engine) resolve(ctx context.Context, s *domain.Session, id domain.StateID) *intake.State {
	if state, ok := e.table.Get(id); ok {
		return state
	}
	cfgErr := &domain.ConfigurationError{StateID: id, Detail: "unknown state identifier"}
	e.logger.Warn("falling back to free chat", "session_id", s.ID, "error", cfgErr)
	if e.hooks.OnFallback != nil {
		e.hooks.OnFallback(ctx, &domain.TurnEvent{
			Type:      domain.EventFallback,
			Timestamp: e.now(),
			SessionID: s.ID,
			From:      id,
			To:        e.table.Fallback(),
		})
	}
	state, _ := e.table.Get(e.table.Fallback())
	return state
}

func (e *Engine) view(state *intake.State, s *domain.Session) domain.View {
	v := domain.View{
		StateID:      state.ID,
		Prompt:       state.Prompt.Render(snapshot(s)),
		QuickReplies: state.Replies(),
		InputType:    state.InputType,
	}
	if state.ID == e.table.Result() && s.EligibilityResult != nil {
		v.QuickReplies = intake.ResultReplies(s.EligibilityResult, e.evaluator.Rules())
	}
	return v
}

func snapshot(s *domain.Session) intake.Snapshot {
	return intake.Snapshot{Data: s.CollectedData.Clone(), ReturnAfterLead: s.ReturnAfterLead}
}

// restartData keeps who the visitor is and forgets everything about the case.
func restartData(d domain.CollectedData) domain.CollectedData {
	return domain.CollectedData{FirstName: d.FirstName, Email: d.Email, Phone: d.Phone}
}

func replyText(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case domain.ContactForm, *domain.ContactForm, map[string]any, map[string]string:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
