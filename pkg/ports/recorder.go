package ports

import (
	"context"

	"github.com/aretw0/clearance/pkg/domain"
)

// Recorder receives the host-side records of a conversation.
// Implementations must be safe for concurrent use. Failures are reported to
// the caller but never abort a conversation.
type Recorder interface {
	RecordLead(ctx context.Context, lead domain.Lead) error
	RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordLead(context.Context, domain.Lead) error { return nil }

func (NopRecorder) RecordEvent(context.Context, domain.AnalyticsEvent) error { return nil }
