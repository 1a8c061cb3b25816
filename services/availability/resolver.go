package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"schedulo/models"
	"schedulo/services/calendar"
	"schedulo/utils"

	"go.uber.org/zap"
)

// Query describes one availability lookup. Window fields narrow the
// working-hours window within each day (minutes from midnight); nil
// leaves the configured default in place.
type Query struct {
	From        time.Time
	Until       time.Time
	DurationMin int
	WindowStart *int
	WindowEnd   *int
}

// Resolver computes ordered candidate slots from the calendar
// collaborator.
type Resolver interface {
	Resolve(ctx context.Context, q Query) ([]models.Slot, error)
}

// DefaultResolver slices the free complement of busy intervals within
// working hours into exact-duration candidates. Weekends are skipped.
type DefaultResolver struct {
	Calendar        calendar.Service
	WorkdayStartMin int
	WorkdayEndMin   int
	ScanLimit       int
	MaxAttempts     int
	RetryDelay      time.Duration
}

func NewDefaultResolver(cal calendar.Service, workdayStartHour, workdayEndHour, scanLimit int) *DefaultResolver {
	return &DefaultResolver{
		Calendar:        cal,
		WorkdayStartMin: workdayStartHour * 60,
		WorkdayEndMin:   workdayEndHour * 60,
		ScanLimit:       scanLimit,
		MaxAttempts:     3,
		RetryDelay:      200 * time.Millisecond,
	}
}

// Resolve returns the earliest non-conflicting candidates, at most
// ScanLimit of them. An empty result is a valid outcome, not an error.
func (r *DefaultResolver) Resolve(ctx context.Context, q Query) ([]models.Slot, error) {
	logger := utils.GetLogger()

	duration := time.Duration(q.DurationMin) * time.Minute
	if q.DurationMin <= 0 {
		duration = time.Hour
	}

	var slots []models.Slot
	day := time.Date(q.From.Year(), q.From.Month(), q.From.Day(), 0, 0, 0, 0, q.From.Location())
	for ; day.Before(q.Until) && len(slots) < r.ScanLimit; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		winStart, winEnd := r.dayWindow(q)
		dayStart := day.Add(time.Duration(winStart) * time.Minute)
		dayEnd := day.Add(time.Duration(winEnd) * time.Minute)
		if q.From.After(dayStart) {
			dayStart = q.From
		}
		if dayStart.Add(duration).After(dayEnd) {
			continue
		}

		busy, err := r.listBusy(ctx, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

		cur := dayStart
		for _, b := range busy {
			gapEnd := b.Start
			if gapEnd.After(dayEnd) {
				gapEnd = dayEnd
			}
			slots = appendCandidates(slots, cur, gapEnd, duration, r.ScanLimit)
			if b.End.After(cur) {
				cur = b.End
			}
		}
		slots = appendCandidates(slots, cur, dayEnd, duration, r.ScanLimit)
	}

	// Earliest start first; equal starts fall back to slot id so the
	// ordering is stable across queries.
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].Start.Before(slots[j].Start)
	})
	if len(slots) > r.ScanLimit {
		slots = slots[:r.ScanLimit]
	}

	logger.Debug("availability resolved",
		zap.Time("from", q.From),
		zap.Time("until", q.Until),
		zap.Int("candidates", len(slots)))
	return slots, nil
}

// dayWindow intersects the configured working hours with the query's
// requested window.
func (r *DefaultResolver) dayWindow(q Query) (int, int) {
	start, end := r.WorkdayStartMin, r.WorkdayEndMin
	if q.WindowStart != nil && *q.WindowStart > start {
		start = *q.WindowStart
	}
	if q.WindowEnd != nil && *q.WindowEnd < end {
		end = *q.WindowEnd
	}
	return start, end
}

func appendCandidates(slots []models.Slot, from, to time.Time, duration time.Duration, limit int) []models.Slot {
	for cur := from; !cur.Add(duration).After(to) && len(slots) < limit; cur = cur.Add(duration) {
		slots = append(slots, models.NewSlot(cur, cur.Add(duration)))
	}
	return slots
}

// listBusy queries the collaborator with bounded retries on transient
// failures.
func (r *DefaultResolver) listBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error) {
	logger := utils.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		busy, err := r.Calendar.ListBusy(ctx, start, end)
		if err == nil {
			return busy, nil
		}
		lastErr = err
		logger.Warn("busy-interval query failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < r.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.RetryDelay * time.Duration(attempt)):
			}
		}
	}
	return nil, fmt.Errorf("busy-interval query failed after %d attempts: %v: %w",
		r.MaxAttempts, lastErr, calendar.ErrUnavailable)
}
