package observability

import (
	"context"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/ports"
)

// InstrumentRecorder counts every call made to next.
func InstrumentRecorder(next ports.Recorder, m *Metrics) ports.Recorder {
	return &instrumentedRecorder{next: next, metrics: m}
}

type instrumentedRecorder struct {
	next    ports.Recorder
	metrics *Metrics
}

func (r *instrumentedRecorder) RecordLead(ctx context.Context, lead domain.Lead) error {
	err := r.next.RecordLead(ctx, lead)
	r.metrics.ObserveRecord("lead", err)
	return err
}

func (r *instrumentedRecorder) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	err := r.next.RecordEvent(ctx, event)
	r.metrics.ObserveRecord("event", err)
	return err
}
