package calendar

import (
	"context"
	"errors"
	"time"

	"schedulo/models"
)

// ErrConflict is returned when an event cannot be created because the
// interval is already occupied.
var ErrConflict = errors.New("calendar: interval already booked")

// ErrUnavailable marks a backend failure that persisted through
// bounded retries.
var ErrUnavailable = errors.New("calendar: backend unavailable")

// Service is the narrow contract this core consumes from a calendar
// backend. Implementations own event storage; the core never inspects
// it beyond busy intervals and created event ids.
type Service interface {
	// ListBusy returns the occupied intervals intersecting [start, end).
	ListBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error)
	// CreateEvent writes one event and returns its external id, or
	// ErrConflict when the interval is taken.
	CreateEvent(ctx context.Context, input models.EventInput) (string, error)
	// UpcomingEvents lists up to max events starting after now.
	UpcomingEvents(ctx context.Context, now time.Time, max int) ([]models.Event, error)
}
