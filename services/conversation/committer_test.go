package conversation

import (
	"context"
	"testing"
	"time"

	"schedulo/models"
	"schedulo/services/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithSelection(start, end time.Time) *models.Session {
	slot := models.NewSlot(start, end)
	return &models.Session{
		ID:    "commit-test",
		Phase: models.PhaseAwaitingConfirmation,
		Draft: models.BookingDraft{
			Title:    "Team Meeting",
			Selected: &slot,
		},
	}
}

func TestCommit_CreatesEventOnce(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	bc := NewBookingCommitter(cal)
	bc.RetryDelay = time.Millisecond

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	sess := sessionWithSelection(start, start.Add(time.Hour))

	conf, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, conf.EventID)
	assert.Equal(t, "Team Meeting", conf.Title)
	assert.Same(t, conf, sess.Draft.Confirmation)

	// A second commit replays the stored confirmation.
	again, err := bc.Commit(context.Background(), sess, start)
	require.NoError(t, err)
	assert.Equal(t, conf.EventID, again.EventID)
	assert.Len(t, cal.Events(), 1)
}

func TestCommit_NoSelectionIsStale(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	bc := NewBookingCommitter(cal)

	sess := &models.Session{ID: "no-selection", Phase: models.PhaseAwaitingConfirmation}
	_, err := bc.Commit(context.Background(), sess, time.Now())
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeStaleSelection))
}

func TestCommit_RevalidationCatchesConflict(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	bc := NewBookingCommitter(cal)

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	cal.SeedBusy(start.Add(30*time.Minute), start.Add(90*time.Minute))
	sess := sessionWithSelection(start, start.Add(time.Hour))

	_, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeBookingConflict))
	assert.Empty(t, cal.Events())
	assert.Nil(t, sess.Draft.Confirmation)
}

func TestCommit_RevalidationFailureIsUnavailable(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	cal.FailNextListBusy = 1
	bc := NewBookingCommitter(cal)

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	sess := sessionWithSelection(start, start.Add(time.Hour))

	_, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeCollaboratorUnavailable))
}

func TestCommit_RetriesTransientWriteFailures(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	cal.FailNextCreate = 2
	bc := NewBookingCommitter(cal)
	bc.RetryDelay = time.Millisecond

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	sess := sessionWithSelection(start, start.Add(time.Hour))

	conf, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, conf.EventID)
	assert.Len(t, cal.Events(), 1)
}

func TestCommit_ExhaustedWriteRetriesAreUnavailable(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	cal.FailNextCreate = 3
	bc := NewBookingCommitter(cal)
	bc.RetryDelay = time.Millisecond

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	sess := sessionWithSelection(start, start.Add(time.Hour))

	_, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeCollaboratorUnavailable))
	assert.Nil(t, sess.Draft.Confirmation)
}

func TestCommit_DefaultsTitle(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	bc := NewBookingCommitter(cal)
	bc.RetryDelay = time.Millisecond

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	sess := sessionWithSelection(start, start.Add(time.Hour))
	sess.Draft.Title = ""

	conf, err := bc.Commit(context.Background(), sess, start.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Meeting", conf.Title)
}
