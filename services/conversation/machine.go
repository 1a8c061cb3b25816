package conversation

import (
	"context"
	"sync"
	"time"

	"schedulo/models"
	"schedulo/services/availability"
	"schedulo/services/extractor"
	"schedulo/utils"

	"go.uber.org/zap"
)

// Service drives booking conversations turn by turn.
type Service interface {
	// HandleTurn processes one utterance for the session. now is
	// caller-supplied so relative expressions resolve deterministically.
	HandleTurn(ctx context.Context, sessionID, message string, now time.Time) (*models.ChatResponse, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]string, error)
	EndSession(ctx context.Context, id string) error
	// RefreshCandidates replaces a session's candidate list out of
	// band (direct availability queries). The new list is not marked
	// presented, so a selection against the old one is stale.
	RefreshCandidates(ctx context.Context, sessionID string, slots []models.Slot) error
}

// ReminderScheduler queues a reminder ahead of a booked event.
type ReminderScheduler interface {
	Schedule(p models.ReminderPayload, fireAt time.Time) error
}

// Options are the documented conversation defaults.
type Options struct {
	SlotDisplayLimit   int
	SearchWindowDays   int
	DefaultDurationMin int
	MaxTurnHistory     int
}

// DefaultConversationService implements Service. One turn per session
// is processed at a time: a keyed mutex serializes turns for the same
// id while different sessions proceed in parallel.
type DefaultConversationService struct {
	Store     SessionStore
	Extractor extractor.Extractor
	Resolver  availability.Resolver
	Committer *BookingCommitter
	Reminders ReminderScheduler
	Opts      Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDefaultConversationService(
	store SessionStore,
	ext extractor.Extractor,
	resolver availability.Resolver,
	committer *BookingCommitter,
	reminders ReminderScheduler,
	opts Options,
) *DefaultConversationService {
	return &DefaultConversationService{
		Store:     store,
		Extractor: ext,
		Resolver:  resolver,
		Committer: committer,
		Reminders: reminders,
		Opts:      opts,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (svc *DefaultConversationService) sessionLock(id string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, exists := svc.locks[id]
	if !exists {
		lock = &sync.Mutex{}
		svc.locks[id] = lock
	}
	return lock
}

func (svc *DefaultConversationService) HandleTurn(ctx context.Context, sessionID, message string, now time.Time) (*models.ChatResponse, error) {
	logger := utils.GetLogger()

	lock := svc.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, _, err := svc.Store.GetOrCreate(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}

	ext := svc.Extractor.Extract(ctx, extractor.Input{
		Utterance: message,
		Phase:     sess.Phase,
		Draft:     sess.Draft,
		History:   sess.Turns,
		Now:       now,
	})

	resp := &models.ChatResponse{SessionID: sess.ID, Intent: ext.Intent}
	svc.applyTurn(ctx, sess, ext, now, resp)
	resp.Phase = sess.Phase

	sess.Turns = append(sess.Turns, models.Turn{Utterance: message, Response: resp.Response, At: now})
	if svc.Opts.MaxTurnHistory > 0 && len(sess.Turns) > svc.Opts.MaxTurnHistory {
		sess.Turns = sess.Turns[len(sess.Turns)-svc.Opts.MaxTurnHistory:]
	}
	sess.TurnCount++
	sess.UpdatedAt = now

	if err := svc.Store.Save(ctx, sess); err != nil {
		logger.Warn("failed to save session",
			zap.String("sessionID", sess.ID), zap.Error(err))
	}
	return resp, nil
}

// applyTurn runs one transition of the conversation table, mutating
// the session and filling the response.
func (svc *DefaultConversationService) applyTurn(ctx context.Context, sess *models.Session, ext models.Extraction, now time.Time, resp *models.ChatResponse) {
	d := &sess.Draft

	switch {
	case sess.Phase == models.PhaseBooked:
		// Terminal; confirm replays the stored result and the write
		// path is never touched again.
		resp.BookingConfirmed = true
		resp.Confirmation = d.Confirmation
		if ext.Intent == models.IntentConfirm {
			resp.Response = bookedResponse(d.Confirmation)
		} else {
			resp.Response = alreadyBookedResponse(d.Confirmation)
		}
		return

	case sess.Phase == models.PhaseCancelled:
		resp.Response = sessionCancelledResponse()
		return

	case ext.Intent == models.IntentCancel:
		sess.Draft = models.BookingDraft{}
		sess.Phase = models.PhaseCancelled
		resp.Response = cancelledResponse()
		return
	}

	mergeDraft(d, ext)

	switch sess.Phase {
	case models.PhaseIdle:
		switch {
		case d.HasDate():
			sess.Phase = models.PhaseCollectingTime
			svc.presentSlots(ctx, sess, now, "", resp)
		case ext.Intent == models.IntentGreeting:
			sess.Phase = models.PhaseCollectingTime
			resp.Response = greetingResponse()
		case ext.Intent == models.IntentProvideTimeInfo || ext.HasTimeInfo():
			sess.Phase = models.PhaseCollectingTime
			resp.Response = askForDateResponse()
		default:
			resp.Response = generalHelpResponse()
		}

	case models.PhaseCollectingTime:
		switch {
		case d.HasDate():
			svc.presentSlots(ctx, sess, now, "", resp)
		case ext.Intent == models.IntentSelectSlot || ext.Intent == models.IntentConfirm:
			resp.Response = "I don't see any available slots to choose from yet. " + askForDateResponse()
		case ext.Intent == models.IntentGreeting:
			resp.Response = greetingResponse()
		case ext.Intent == models.IntentProvideTimeInfo:
			resp.Response = askForDateResponse()
		default:
			resp.Response = clarifyTimeResponse()
		}

	case models.PhasePresentingSlots:
		switch {
		case ext.Intent == models.IntentSelectSlot:
			svc.selectSlot(ctx, sess, ext.SlotOrdinal, now, resp)
		case ext.Intent == models.IntentProvideTimeInfo && ext.HasTimeInfo():
			// Constraint revision invalidates the prior candidate list.
			svc.presentSlots(ctx, sess, now, "", resp)
		case ext.Intent == models.IntentConfirm:
			resp.Response = unknownSelectionResponse()
		default:
			if len(d.Candidates) > 0 {
				resp.Response = listSlotsResponse(d.Candidates)
				resp.AvailableSlots = d.Candidates
			} else {
				resp.Response = noAvailabilityResponse()
			}
		}

	case models.PhaseAwaitingConfirmation:
		switch {
		case d.Selected == nil:
			// The candidate list was replaced out of band and the
			// selection cleared with it.
			svc.representCandidates(ctx, sess, now, resp)
		case ext.Intent == models.IntentConfirm:
			svc.commit(ctx, sess, now, resp)
		case ext.Intent == models.IntentSelectSlot:
			svc.selectSlot(ctx, sess, ext.SlotOrdinal, now, resp)
		default:
			resp.Response = awaitingClarificationResponse(*d.Selected)
		}
	}
}

func mergeDraft(d *models.BookingDraft, ext models.Extraction) {
	if ext.Date != nil {
		d.Date = ext.Date
	}
	if ext.WindowStart != nil {
		d.WindowStart = ext.WindowStart
		d.WindowEnd = ext.WindowEnd
	}
	if ext.DurationMin > 0 {
		d.DurationMin = ext.DurationMin
	}
	if ext.Title != "" {
		d.Title = ext.Title
	}
	if ext.AttendeeEmail != "" {
		d.AttendeeEmail = ext.AttendeeEmail
	}
}

// presentSlots queries availability for the draft's constraints and
// presents a fresh candidate list. The phase advances to
// PresentingSlots only on a non-empty result; failures and empty
// results leave the phase unchanged.
func (svc *DefaultConversationService) presentSlots(ctx context.Context, sess *models.Session, now time.Time, prefix string, resp *models.ChatResponse) {
	d := &sess.Draft

	duration := d.DurationMin
	if duration <= 0 {
		duration = svc.Opts.DefaultDurationMin
	}

	from := *d.Date
	if sameDay(from, now) && now.After(from) {
		// Booking for today: never offer slots in the past.
		from = now
	}
	until := startOfDay(*d.Date).AddDate(0, 0, svc.Opts.SearchWindowDays)

	slots, err := svc.Resolver.Resolve(ctx, availability.Query{
		From:        from,
		Until:       until,
		DurationMin: duration,
		WindowStart: d.WindowStart,
		WindowEnd:   d.WindowEnd,
	})
	if err != nil {
		resp.Response = prefix + collaboratorDownResponse()
		return
	}

	d.CandidateGen++
	d.Selected = nil
	if len(slots) == 0 {
		d.Candidates = nil
		d.PresentedGen = d.CandidateGen
		resp.Response = prefix + noAvailabilityResponse()
		return
	}

	if len(slots) > svc.Opts.SlotDisplayLimit {
		slots = slots[:svc.Opts.SlotDisplayLimit]
	}
	d.Candidates = slots
	d.PresentedGen = d.CandidateGen
	sess.Phase = models.PhasePresentingSlots
	resp.Response = prefix + listSlotsResponse(slots)
	resp.AvailableSlots = slots
}

// selectSlot applies a 1-based selection against the candidate list.
// A selection against a list superseded since it was last presented is
// rejected and the current list is re-presented.
func (svc *DefaultConversationService) selectSlot(ctx context.Context, sess *models.Session, ordinal int, now time.Time, resp *models.ChatResponse) {
	d := &sess.Draft

	if len(d.Candidates) == 0 || d.PresentedGen != d.CandidateGen {
		svc.representCandidates(ctx, sess, now, resp)
		return
	}

	if ordinal < 1 || ordinal > len(d.Candidates) {
		resp.Response = unknownSelectionResponse()
		return
	}

	slot := d.Candidates[ordinal-1]
	d.Selected = &slot
	sess.Phase = models.PhaseAwaitingConfirmation
	resp.Response = confirmPromptResponse(slot)
}

// representCandidates recovers from a superseded or cleared selection.
// The current candidate list is re-presented as the live one; without
// candidates the draft's constraints are re-resolved or the user is
// asked for a date.
func (svc *DefaultConversationService) representCandidates(ctx context.Context, sess *models.Session, now time.Time, resp *models.ChatResponse) {
	d := &sess.Draft

	if len(d.Candidates) > 0 {
		d.PresentedGen = d.CandidateGen
		d.Selected = nil
		sess.Phase = models.PhasePresentingSlots
		resp.Response = staleSelectionResponse(d.Candidates)
		resp.AvailableSlots = d.Candidates
		return
	}
	if d.HasDate() {
		svc.presentSlots(ctx, sess, now, "Those options are no longer current. ", resp)
		return
	}
	resp.Response = askForDateResponse()
}

// commit invokes the booking committer and maps its typed failures
// back into the conversation.
func (svc *DefaultConversationService) commit(ctx context.Context, sess *models.Session, now time.Time, resp *models.ChatResponse) {
	logger := utils.GetLogger()

	conf, err := svc.Committer.Commit(ctx, sess, now)
	if err != nil {
		switch {
		case IsFlowCode(err, CodeBookingConflict):
			// The slot was taken between presentation and confirmation:
			// re-resolve rather than silently substituting.
			svc.presentSlots(ctx, sess, now, "It looks like that slot was just taken. ", resp)
			if sess.Phase != models.PhasePresentingSlots {
				sess.Phase = models.PhaseCollectingTime
				resp.Response = conflictNoAlternativesResponse()
			}
		case IsFlowCode(err, CodeStaleSelection):
			svc.representCandidates(ctx, sess, now, resp)
		default:
			resp.Response = collaboratorDownResponse()
		}
		return
	}

	sess.Phase = models.PhaseBooked
	resp.Response = bookedResponse(conf)
	resp.BookingConfirmed = true
	resp.Confirmation = conf

	if svc.Reminders != nil {
		fireAt := conf.Slot.Start.Add(-30 * time.Minute)
		if fireAt.After(now) {
			payload := models.ReminderPayload{
				EventID:  conf.EventID,
				Title:    conf.Title,
				FireDate: fireAt.Format(time.RFC3339),
				Body:     "Upcoming: " + conf.Title + " at " + conf.Slot.StartTime,
			}
			if err := svc.Reminders.Schedule(payload, fireAt); err != nil {
				logger.Warn("failed to schedule reminder",
					zap.String("eventID", conf.EventID), zap.Error(err))
			}
		}
	}
}

func (svc *DefaultConversationService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return svc.Store.Get(ctx, id)
}

func (svc *DefaultConversationService) ListSessions(ctx context.Context) ([]string, error) {
	return svc.Store.List(ctx)
}

func (svc *DefaultConversationService) EndSession(ctx context.Context, id string) error {
	return svc.Store.Delete(ctx, id)
}

func (svc *DefaultConversationService) RefreshCandidates(ctx context.Context, sessionID string, slots []models.Slot) error {
	lock := svc.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Phase.Terminal() {
		return nil
	}

	if len(slots) > svc.Opts.SlotDisplayLimit {
		slots = slots[:svc.Opts.SlotDisplayLimit]
	}
	sess.Draft.CandidateGen++
	sess.Draft.Candidates = slots
	sess.Draft.Selected = nil
	return svc.Store.Save(ctx, sess)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
