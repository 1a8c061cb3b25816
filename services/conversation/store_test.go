package conversation

import (
	"context"
	"testing"
	"time"

	"schedulo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeNow = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func TestMemoryStore_GetOrCreate(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	sess, created, err := s.GetOrCreate(ctx, "s1", storeNow)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.PhaseIdle, sess.Phase)

	again, created, err := s.GetOrCreate(ctx, "s1", storeNow.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sess.ID, again.ID)
}

func TestMemoryStore_SaveRoundTrip(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	sess, _, err := s.GetOrCreate(ctx, "s1", storeNow)
	require.NoError(t, err)

	sess.Phase = models.PhaseCollectingTime
	sess.UpdatedAt = storeNow.Add(time.Minute)
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCollectingTime, got.Phase)
}

func TestMemoryStore_ExpiredSessionIsReplaced(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	sess, _, err := s.GetOrCreate(ctx, "s1", storeNow)
	require.NoError(t, err)
	sess.Phase = models.PhaseBooked
	require.NoError(t, s.Save(ctx, sess))

	fresh, created, err := s.GetOrCreate(ctx, "s1", storeNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.PhaseIdle, fresh.Phase)
}

func TestMemoryStore_SaveAfterEvictionIsDropped(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	sess, _, err := s.GetOrCreate(ctx, "s1", storeNow)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "s1"))

	// The in-flight turn's save must not resurrect the session.
	require.NoError(t, s.Save(ctx, sess))
	_, err = s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_DeleteMissing(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	err := s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	_, _, err := s.GetOrCreate(ctx, "old", storeNow)
	require.NoError(t, err)
	_, _, err = s.GetOrCreate(ctx, "recent", storeNow.Add(90*time.Minute))
	require.NoError(t, err)

	removed := s.Sweep(storeNow.Add(100 * time.Minute))
	assert.Equal(t, 1, removed)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, ids)
}
