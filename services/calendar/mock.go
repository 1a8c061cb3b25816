package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"schedulo/models"

	"github.com/google/uuid"
)

// MockCalendarService is an in-memory calendar backend used in
// development and tests. Busy intervals can be seeded directly, and
// transient failures can be injected to exercise retry paths.
type MockCalendarService struct {
	mu     sync.Mutex
	events []models.Event
	busy   []models.BusyInterval

	// FailNextListBusy / FailNextCreate make the next N calls return a
	// transient error before recovering.
	FailNextListBusy int
	FailNextCreate   int
}

var errMockUnavailable = errors.New("calendar: mock backend temporarily down")

func NewMockCalendarService() *MockCalendarService {
	return &MockCalendarService{}
}

// SeedBusy marks an interval as occupied without creating an event.
func (m *MockCalendarService) SeedBusy(start, end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = append(m.busy, models.BusyInterval{Start: start, End: end})
}

func (m *MockCalendarService) ListBusy(_ context.Context, start, end time.Time) ([]models.BusyInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextListBusy > 0 {
		m.FailNextListBusy--
		return nil, errMockUnavailable
	}

	var out []models.BusyInterval
	for _, b := range m.busy {
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	for _, ev := range m.events {
		b := models.BusyInterval{Start: ev.Start, End: ev.End}
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MockCalendarService) CreateEvent(_ context.Context, input models.EventInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextCreate > 0 {
		m.FailNextCreate--
		return "", errMockUnavailable
	}

	for _, b := range m.busy {
		if b.Overlaps(input.Start, input.End) {
			return "", ErrConflict
		}
	}
	for _, ev := range m.events {
		if (models.BusyInterval{Start: ev.Start, End: ev.End}).Overlaps(input.Start, input.End) {
			return "", ErrConflict
		}
	}

	ev := models.Event{
		ID:            uuid.New().String(),
		Title:         input.Title,
		Description:   input.Description,
		Start:         input.Start,
		End:           input.End,
		AttendeeEmail: input.AttendeeEmail,
		CreatedAt:     time.Now(),
	}
	m.events = append(m.events, ev)
	return ev.ID, nil
}

func (m *MockCalendarService) UpcomingEvents(_ context.Context, now time.Time, max int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Event
	for _, ev := range m.events {
		if ev.Start.After(now) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// Events returns a copy of all stored events, for assertions in tests.
func (m *MockCalendarService) Events() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, len(m.events))
	copy(out, m.events)
	return out
}
