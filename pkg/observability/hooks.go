package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/clearance/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Events carry no contact details.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.TurnEvent) {
			logger.Debug("state_enter", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
		OnValidationError: func(_ context.Context, e *domain.TurnEvent) {
			logger.Info("validation_error", "session_id", e.SessionID, "state", e.From)
		},
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			logger.Info("eligibility_check",
				"session_id", e.SessionID,
				"offense_level", e.OffenseLevel,
				"outcome", e.Outcome,
				"bucket", e.Bucket,
				"status", e.Status,
			)
		},
		OnFallback: func(_ context.Context, e *domain.TurnEvent) {
			logger.Warn("fallback", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
	}
}

// Compose chains hooks; each callback runs in argument order.
func Compose(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnStateEnter = chain(out.OnStateEnter, h.OnStateEnter)
		out.OnValidationError = chain(out.OnValidationError, h.OnValidationError)
		out.OnFallback = chain(out.OnFallback, h.OnFallback)
		out.OnResult = chain(out.OnResult, h.OnResult)
	}
	return out
}

func chain[E any](first, second func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		second(ctx, e)
	}
}
