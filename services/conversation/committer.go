package conversation

import (
	"context"
	"errors"
	"time"

	"schedulo/models"
	"schedulo/services/calendar"
	"schedulo/utils"

	"go.uber.org/zap"
)

const (
	defaultTitle       = "Meeting"
	defaultDescription = "Scheduled via booking assistant"
)

// BookingCommitter performs the single side-effecting calendar write
// for a session. It re-validates the selected slot immediately before
// writing and short-circuits once a confirmation is stored, so the
// collaborator's write path runs at most once per session.
type BookingCommitter struct {
	Calendar    calendar.Service
	MaxAttempts int
	RetryDelay  time.Duration
}

func NewBookingCommitter(cal calendar.Service) *BookingCommitter {
	return &BookingCommitter{
		Calendar:    cal,
		MaxAttempts: 3,
		RetryDelay:  200 * time.Millisecond,
	}
}

// Commit books the session's selected slot. Idempotent: a stored
// confirmation is returned as-is without touching the collaborator.
func (bc *BookingCommitter) Commit(ctx context.Context, sess *models.Session, now time.Time) (*models.BookingConfirmation, error) {
	if sess.Draft.Confirmation != nil {
		return sess.Draft.Confirmation, nil
	}
	slot := sess.Draft.Selected
	if slot == nil {
		return nil, NewFlowError(CodeStaleSelection, "no slot selected")
	}

	// The slot may have been taken between presentation and
	// confirmation; check before writing.
	busy, err := bc.Calendar.ListBusy(ctx, slot.Start, slot.End)
	if err != nil {
		return nil, NewFlowError(CodeCollaboratorUnavailable, "calendar unreachable during revalidation")
	}
	if len(busy) > 0 {
		return nil, NewFlowError(CodeBookingConflict, "selected slot is no longer free")
	}

	title := sess.Draft.Title
	if title == "" {
		title = defaultTitle
	}
	description := sess.Draft.Description
	if description == "" {
		description = defaultDescription
	}

	eventID, err := bc.createWithRetry(ctx, models.EventInput{
		Title:         title,
		Description:   description,
		Start:         slot.Start,
		End:           slot.End,
		AttendeeEmail: sess.Draft.AttendeeEmail,
	})
	if err != nil {
		if errors.Is(err, calendar.ErrConflict) {
			return nil, NewFlowError(CodeBookingConflict, "selected slot was booked by someone else")
		}
		return nil, NewFlowError(CodeCollaboratorUnavailable, "calendar write failed; please try again shortly")
	}

	conf := &models.BookingConfirmation{
		EventID:       eventID,
		Slot:          *slot,
		Title:         title,
		AttendeeEmail: sess.Draft.AttendeeEmail,
		BookedAt:      now,
	}
	sess.Draft.Confirmation = conf
	return conf, nil
}

// createWithRetry retries the collaborator write on transient errors.
// Conflicts are final and returned immediately.
func (bc *BookingCommitter) createWithRetry(ctx context.Context, input models.EventInput) (string, error) {
	logger := utils.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= bc.MaxAttempts; attempt++ {
		id, err := bc.Calendar.CreateEvent(ctx, input)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, calendar.ErrConflict) {
			return "", err
		}
		lastErr = err
		logger.Warn("event creation failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < bc.MaxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(bc.RetryDelay * time.Duration(attempt)):
			}
		}
	}
	return "", lastErr
}
