package eventRepo

import (
	"context"
	"time"

	"schedulo/models"
)

// EventRepository persists calendar events.
type EventRepository interface {
	Insert(ctx context.Context, ev *models.Event) error
	FindOverlapping(ctx context.Context, start, end time.Time) ([]models.Event, error)
	FindUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error)
}
