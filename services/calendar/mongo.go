package calendar

import (
	"context"
	"time"

	eventRepo "schedulo/database/repository/event"
	"schedulo/models"
)

// MongoCalendarService implements Service on top of the event
// repository. Conflict detection is a pre-insert overlap check; the
// committer re-validates right before writing, which keeps the race
// window narrow without requiring transactions.
type MongoCalendarService struct {
	Repo eventRepo.EventRepository
}

func NewMongoCalendarService(repo eventRepo.EventRepository) *MongoCalendarService {
	return &MongoCalendarService{Repo: repo}
}

func (s *MongoCalendarService) ListBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error) {
	events, err := s.Repo.FindOverlapping(ctx, start, end)
	if err != nil {
		return nil, err
	}
	busy := make([]models.BusyInterval, 0, len(events))
	for _, ev := range events {
		busy = append(busy, models.BusyInterval{Start: ev.Start, End: ev.End})
	}
	return busy, nil
}

func (s *MongoCalendarService) CreateEvent(ctx context.Context, input models.EventInput) (string, error) {
	overlapping, err := s.Repo.FindOverlapping(ctx, input.Start, input.End)
	if err != nil {
		return "", err
	}
	if len(overlapping) > 0 {
		return "", ErrConflict
	}

	ev := models.Event{
		Title:         input.Title,
		Description:   input.Description,
		Start:         input.Start,
		End:           input.End,
		AttendeeEmail: input.AttendeeEmail,
	}
	if err := s.Repo.Insert(ctx, &ev); err != nil {
		return "", err
	}
	return ev.ID, nil
}

func (s *MongoCalendarService) UpcomingEvents(ctx context.Context, now time.Time, max int) ([]models.Event, error) {
	return s.Repo.FindUpcoming(ctx, now, max)
}
