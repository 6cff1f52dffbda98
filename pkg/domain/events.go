package domain

import (
	"context"
	"time"
)

// RedactedInput replaces contact-bearing answers in the audit log.
const RedactedInput = "[contact]"

// Event is one entry of the append-only audit trail kept on a Session.
type Event struct {
	State     StateID   `json:"state"`
	Input     string    `json:"input"`
	Timestamp time.Time `json:"timestamp"`
}

// EventType defines the category of a lifecycle notification.
type EventType string

const (
	EventStateEnter      EventType = "state_enter"
	EventValidationError EventType = "validation_error"
	EventEligibility     EventType = "eligibility_check"
	EventFallback        EventType = "config_fallback"
)

// TurnEvent describes a single processed turn.
type TurnEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	From      StateID   `json:"from"`
	To        StateID   `json:"to"`
}

// ResultEvent is emitted whenever the rules engine classifies a session.
type ResultEvent struct {
	TurnEvent
	OffenseLevel OffenseLevel `json:"offense_level,omitempty"`
	Outcome      CaseOutcome  `json:"outcome,omitempty"`
	Bucket       Bucket       `json:"bucket"`
	Status       Status       `json:"status"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnStateEnter      func(context.Context, *TurnEvent)
	OnValidationError func(context.Context, *TurnEvent)
	OnResult          func(context.Context, *ResultEvent)
	OnFallback        func(context.Context, *TurnEvent)
}
