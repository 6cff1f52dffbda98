package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/clearance/pkg/adapters/sqlite"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRecorder(t *testing.T) *sqlite.Recorder {
	t.Helper()
	r, err := sqlite.Open(filepath.Join(t.TempDir(), "nested", "clearance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRecorder_Leads(t *testing.T) {
	var _ ports.Recorder = (*sqlite.Recorder)(nil)
	r := openRecorder(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordLead(ctx, domain.Lead{
		SessionID: "s1", Email: "dana@example.com", Jurisdiction: "TX",
		EligibilityResult: "in_progress", CreatedAt: at,
	}))
	require.NoError(t, r.RecordLead(ctx, domain.Lead{
		SessionID: "s1", Name: "Dana", Phone: "5125550100", Jurisdiction: "TX",
		OffenseType: "misdemeanor", EligibilityResult: "eligible_expunction", CreatedAt: at,
	}))
	require.NoError(t, r.RecordLead(ctx, domain.Lead{SessionID: "s2", Name: "Other"}))

	leads, err := r.Leads(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "in_progress", leads[0].EligibilityResult, "rows come back in insertion order")
	assert.Equal(t, "eligible_expunction", leads[1].EligibilityResult)
	assert.Equal(t, at, leads[1].CreatedAt)
}

func TestRecorder_Events(t *testing.T) {
	r := openRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordEvent(ctx, domain.AnalyticsEvent{
		SessionID: "s1", Name: "eligibility_check",
		Data: map[string]any{"bucket": "eligible", "status": "eligible_expunction"},
	}))
	require.NoError(t, r.RecordEvent(ctx, domain.AnalyticsEvent{SessionID: "s1", Name: "widget_opened"}))

	events, err := r.Events(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "eligibility_check", events[0].Name)
	assert.Equal(t, "eligible", events[0].Data["bucket"])
	assert.Nil(t, events[1].Data)
}

func TestRecorder_ConcurrentWrites(t *testing.T) {
	r := openRecorder(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.RecordEvent(ctx, domain.AnalyticsEvent{SessionID: "busy", Name: "tick"}))
		}()
	}
	wg.Wait()

	events, err := r.Events(ctx, "busy")
	require.NoError(t, err)
	assert.Len(t, events, 25)
}

func TestRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clearance.db")
	ctx := context.Background()

	r, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordLead(ctx, domain.Lead{SessionID: "s1", Email: "a@b.co"}))
	require.NoError(t, r.Close())

	r, err = sqlite.Open(path)
	require.NoError(t, err)
	defer r.Close()
	leads, err := r.Leads(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}
