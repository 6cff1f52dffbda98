package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests that every SessionStore
// implementation must pass.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	now := time.Now().UTC().Truncate(time.Second)

	newSession := func(id string) *domain.Session {
		s := domain.NewSession(id, "GREETING", now)
		s.CollectedData.FirstName = "Dana"
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		id := prefix + "-roundtrip"
		s := newSession(id)
		s.CurrentStateID = "ASK_ARREST_DATE"
		s.CollectedData.LifetimeBar = domain.Bool(false)
		s.CollectedData.ArrestDate = "2021-04"
		s.Events = append(s.Events, domain.Event{State: "ASK_CONTACT", Input: domain.RedactedInput, Timestamp: now})
		s.EligibilityResult = &domain.EligibilityResult{Bucket: domain.BucketEligible, Status: domain.StatusEligibleExpunction}
		s.Bucket, s.Status = s.EligibilityResult.Bucket, s.EligibilityResult.Status

		require.NoError(t, store.Save(ctx, s))
		t.Cleanup(func() { _ = store.Delete(ctx, id) })

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, s.CurrentStateID, loaded.CurrentStateID)
		assert.Equal(t, "Dana", loaded.CollectedData.FirstName)
		assert.Equal(t, "2021-04", loaded.CollectedData.ArrestDate)
		require.NotNil(t, loaded.CollectedData.LifetimeBar, "tri-state answers must survive persistence")
		assert.False(t, *loaded.CollectedData.LifetimeBar)
		assert.Nil(t, loaded.CollectedData.PriorHistory)
		require.Len(t, loaded.Events, 1)
		assert.Equal(t, domain.RedactedInput, loaded.Events[0].Input)
		require.NotNil(t, loaded.EligibilityResult)
		assert.Equal(t, domain.StatusEligibleExpunction, loaded.Status)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		id := prefix + "-copy"
		require.NoError(t, store.Save(ctx, newSession(id)))
		t.Cleanup(func() { _ = store.Delete(ctx, id) })

		first, err := store.Load(ctx, id)
		require.NoError(t, err)
		first.CollectedData.FirstName = "changed"

		second, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Dana", second.CollectedData.FirstName)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, store.Save(ctx, newSession(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := prefix+"-1", prefix+"-2"
		require.NoError(t, store.Save(ctx, newSession(id1)))
		require.NoError(t, store.Save(ctx, newSession(id2)))
		t.Cleanup(func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		})

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
