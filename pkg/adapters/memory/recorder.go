package memory

import (
	"context"
	"sync"

	"github.com/aretw0/clearance/pkg/domain"
)

// Recorder keeps leads and analytics events in memory.
// It backs the CLI and tests when no database is configured.
type Recorder struct {
	mu     sync.Mutex
	leads  []domain.Lead
	events []domain.AnalyticsEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordLead(_ context.Context, lead domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
	return nil
}

func (r *Recorder) RecordEvent(_ context.Context, event domain.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Leads returns a copy of the recorded leads.
func (r *Recorder) Leads() []domain.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Lead(nil), r.leads...)
}

// Events returns a copy of the recorded analytics events.
func (r *Recorder) Events() []domain.AnalyticsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), r.events...)
}
