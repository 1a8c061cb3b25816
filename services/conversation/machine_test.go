package conversation

import (
	"context"
	"testing"
	"time"

	"schedulo/models"
	"schedulo/services/availability"
	"schedulo/services/calendar"
	"schedulo/services/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday morning, so "tomorrow" is a working Friday.
var turnNow = time.Date(2024, 12, 26, 9, 0, 0, 0, time.UTC)

func newTestConversation(cal *calendar.MockCalendarService) *DefaultConversationService {
	resolver := availability.NewDefaultResolver(cal, 9, 17, 10)
	resolver.RetryDelay = time.Millisecond
	committer := NewBookingCommitter(cal)
	committer.RetryDelay = time.Millisecond

	return NewDefaultConversationService(
		NewMemorySessionStore(24*time.Hour),
		extractor.NewRuleExtractor(),
		resolver,
		committer,
		nil,
		Options{
			SlotDisplayLimit:   3,
			SearchWindowDays:   7,
			DefaultDurationMin: 60,
			MaxTurnHistory:     20,
		},
	)
}

func turn(t *testing.T, svc *DefaultConversationService, id, message string) *models.ChatResponse {
	t.Helper()
	resp, err := svc.HandleTurn(context.Background(), id, message, turnNow)
	require.NoError(t, err)
	return resp
}

func TestConversation_HappyPath(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	friday := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)
	cal.SeedBusy(friday.Add(9*time.Hour), friday.Add(13*time.Hour))

	svc := newTestConversation(cal)
	const id = "happy-path"

	resp := turn(t, svc, id, "Hi, I'd like to schedule a meeting")
	assert.Equal(t, models.PhaseCollectingTime, resp.Phase)
	assert.Empty(t, resp.AvailableSlots)

	resp = turn(t, svc, id, "Tomorrow afternoon")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	require.Len(t, resp.AvailableSlots, 3)
	assert.Equal(t, "01:00 PM", resp.AvailableSlots[0].StartTime)

	resp = turn(t, svc, id, "The first option looks good")
	assert.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)
	assert.Contains(t, resp.Response, "Should I confirm")

	resp = turn(t, svc, id, "Yes, please confirm")
	assert.Equal(t, models.PhaseBooked, resp.Phase)
	assert.True(t, resp.BookingConfirmed)
	require.NotNil(t, resp.Confirmation)

	events := cal.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Start.Equal(friday.Add(13*time.Hour)),
		"earliest presented slot must be the one booked")
}

func TestConversation_ConfirmIsIdempotent(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "double-confirm"

	turn(t, svc, id, "book a meeting tomorrow afternoon")
	turn(t, svc, id, "option 1")
	first := turn(t, svc, id, "yes")
	require.True(t, first.BookingConfirmed)

	second := turn(t, svc, id, "yes")
	assert.Equal(t, models.PhaseBooked, second.Phase)
	assert.True(t, second.BookingConfirmed)
	assert.Equal(t, first.Confirmation.EventID, second.Confirmation.EventID)
	assert.Len(t, cal.Events(), 1)
}

func TestConversation_DirectTimeInfoSkipsGreeting(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)

	resp := turn(t, svc, "direct", "book a meeting tomorrow afternoon")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.NotEmpty(t, resp.AvailableSlots)
}

func TestConversation_NoAvailabilityStaysCollecting(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	// Occupy every working day in the search window.
	friday := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 8; d++ {
		day := friday.AddDate(0, 0, d)
		cal.SeedBusy(day.Add(9*time.Hour), day.Add(17*time.Hour))
	}

	svc := newTestConversation(cal)
	resp := turn(t, svc, "no-slots", "book a meeting tomorrow afternoon")
	assert.Equal(t, models.PhaseCollectingTime, resp.Phase)
	assert.Contains(t, resp.Response, "couldn't find any available slots")
	assert.Empty(t, resp.AvailableSlots)
}

func TestConversation_StaleSelectionForcesRepresentation(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "stale"

	resp := turn(t, svc, id, "book a meeting tomorrow afternoon")
	require.Equal(t, models.PhasePresentingSlots, resp.Phase)
	presented := resp.AvailableSlots

	// A direct availability query replaces the candidate list without
	// re-presenting it to the user.
	require.NoError(t, svc.RefreshCandidates(context.Background(), id, presented))

	resp = turn(t, svc, id, "option 1")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.Contains(t, resp.Response, "no longer current")
	assert.Empty(t, cal.Events())

	// Selecting against the re-presented list succeeds.
	resp = turn(t, svc, id, "option 1")
	assert.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)
}

func TestConversation_RefreshAfterSelectionRecoversOnUnclearInput(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "refresh-cleared-selection"

	first := turn(t, svc, id, "book a meeting tomorrow afternoon")
	require.Equal(t, models.PhasePresentingSlots, first.Phase)
	resp := turn(t, svc, id, "option 1")
	require.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)

	// A direct availability query clears the selection along with the
	// candidate list while the session awaits confirmation.
	require.NoError(t, svc.RefreshCandidates(context.Background(), id, first.AvailableSlots))

	resp = turn(t, svc, id, "hmm, let me think")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.Contains(t, resp.Response, "no longer current")
	assert.NotEmpty(t, resp.AvailableSlots)
}

func TestConversation_ConfirmAfterRefreshRepresentsSlots(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "confirm-after-refresh"

	first := turn(t, svc, id, "book a meeting tomorrow afternoon")
	require.Equal(t, models.PhasePresentingSlots, first.Phase)
	turn(t, svc, id, "option 1")

	require.NoError(t, svc.RefreshCandidates(context.Background(), id, first.AvailableSlots))

	// Confirming against the cleared selection must re-present, not
	// book and not report a calendar outage.
	resp := turn(t, svc, id, "yes")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.False(t, resp.BookingConfirmed)
	assert.Contains(t, resp.Response, "no longer current")
	assert.Empty(t, cal.Events())

	// Selecting from the re-presented list completes normally.
	resp = turn(t, svc, id, "option 1")
	require.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)
	resp = turn(t, svc, id, "yes")
	assert.Equal(t, models.PhaseBooked, resp.Phase)
	assert.Len(t, cal.Events(), 1)
}

func TestConversation_CancelFromEachPhase(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
	}{
		{"idle", nil},
		{"collecting_time", []string{"hi there"}},
		{"presenting_slots", []string{"book a meeting tomorrow afternoon"}},
		{"awaiting_confirmation", []string{"book a meeting tomorrow afternoon", "option 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := calendar.NewMockCalendarService()
			svc := newTestConversation(cal)

			for _, msg := range tt.setup {
				turn(t, svc, tt.name, msg)
			}

			resp := turn(t, svc, tt.name, "cancel")
			assert.Equal(t, models.PhaseCancelled, resp.Phase)

			// A confirm after cancellation must not book anything.
			resp = turn(t, svc, tt.name, "yes")
			assert.Equal(t, models.PhaseCancelled, resp.Phase)
			assert.False(t, resp.BookingConfirmed)
			assert.Empty(t, cal.Events())

			sess, err := svc.GetSession(context.Background(), tt.name)
			require.NoError(t, err)
			assert.Nil(t, sess.Draft.Selected)
			assert.Nil(t, sess.Draft.Date)
		})
	}
}

func TestConversation_ConflictOnConfirmRepresentsSlots(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	friday := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)
	cal.SeedBusy(friday.Add(9*time.Hour), friday.Add(13*time.Hour))

	svc := newTestConversation(cal)
	const id = "conflict"

	turn(t, svc, id, "book a meeting tomorrow afternoon")
	resp := turn(t, svc, id, "option 1")
	require.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)

	// The selected 1:00 PM slot is taken before the user confirms.
	cal.SeedBusy(friday.Add(13*time.Hour), friday.Add(14*time.Hour))

	resp = turn(t, svc, id, "yes")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.False(t, resp.BookingConfirmed)
	assert.Contains(t, resp.Response, "just taken")
	require.NotEmpty(t, resp.AvailableSlots)
	assert.Equal(t, "02:00 PM", resp.AvailableSlots[0].StartTime)
	assert.Empty(t, cal.Events())
}

func TestConversation_CollaboratorDownDuringResolution(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	cal.FailNextListBusy = 3

	svc := newTestConversation(cal)
	resp := turn(t, svc, "cal-down", "book a meeting tomorrow afternoon")
	assert.Equal(t, models.PhaseCollectingTime, resp.Phase)
	assert.Contains(t, resp.Response, "trouble reaching the calendar")
}

func TestConversation_CollaboratorDownDuringConfirm(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "confirm-down"

	turn(t, svc, id, "book a meeting tomorrow afternoon")
	turn(t, svc, id, "option 1")

	cal.FailNextListBusy = 1
	resp := turn(t, svc, id, "yes")
	assert.Equal(t, models.PhaseAwaitingConfirmation, resp.Phase)
	assert.False(t, resp.BookingConfirmed)
	assert.Contains(t, resp.Response, "trouble reaching the calendar")

	// Retrying the confirmation once the calendar recovers succeeds.
	resp = turn(t, svc, id, "yes")
	assert.Equal(t, models.PhaseBooked, resp.Phase)
	assert.True(t, resp.BookingConfirmed)
}

func TestConversation_OutOfRangeSelection(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "out-of-range"

	turn(t, svc, id, "book a meeting tomorrow afternoon")
	resp := turn(t, svc, id, "option 9")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.Contains(t, resp.Response, "not sure which slot")
}

func TestConversation_UnknownUtteranceKeepsPhase(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	const id = "unknown"

	turn(t, svc, id, "book a meeting tomorrow afternoon")
	resp := turn(t, svc, id, "asdf qwerty")
	assert.Equal(t, models.PhasePresentingSlots, resp.Phase)
	assert.NotEmpty(t, resp.AvailableSlots, "candidates are re-listed on unclear input")
}

func TestConversation_TurnHistoryIsBounded(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	svc.Opts.MaxTurnHistory = 5
	const id = "history"

	for i := 0; i < 12; i++ {
		turn(t, svc, id, "hello")
	}
	sess, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 5)
	assert.Equal(t, 12, sess.TurnCount)
}

func TestConversation_SessionLifecycleEndpointsBackedByStore(t *testing.T) {
	cal := calendar.NewMockCalendarService()
	svc := newTestConversation(cal)
	ctx := context.Background()

	turn(t, svc, "a", "hello")
	turn(t, svc, "b", "hello")

	ids, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, svc.EndSession(ctx, "a"))
	_, err = svc.GetSession(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
