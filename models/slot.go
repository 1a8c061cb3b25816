package models

import (
	"fmt"
	"time"
)

// Slot is a half-open candidate interval [Start, End) offered for
// booking. ID is derived from the interval so the same slot resolves
// to the same identifier on every query.
type Slot struct {
	ID        string    `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Date      string    `json:"date"`      // e.g., "2025-02-25"
	StartTime string    `json:"startTime"` // display form, e.g., "02:00 PM"
	EndTime   string    `json:"endTime"`
}

// NewSlot builds a Slot for the given interval.
func NewSlot(start, end time.Time) Slot {
	return Slot{
		ID:        fmt.Sprintf("%s-%dm", start.Format("20060102T1504"), int(end.Sub(start).Minutes())),
		Start:     start,
		End:       end,
		Date:      start.Format("2006-01-02"),
		StartTime: start.Format("03:04 PM"),
		EndTime:   end.Format("03:04 PM"),
	}
}

// BusyInterval is an occupied period reported by the calendar backend.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the interval intersects [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// Event is a calendar event as seen through the collaborator contract.
type Event struct {
	ID            string    `bson:"id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Start         time.Time `bson:"start" json:"start"`
	End           time.Time `bson:"end" json:"end"`
	AttendeeEmail string    `bson:"attendeeEmail,omitempty" json:"attendeeEmail,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// EventInput is the payload for creating a calendar event.
type EventInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AttendeeEmail string    `json:"attendeeEmail,omitempty"`
}

// ReminderPayload is the queued reminder for a booked event.
type ReminderPayload struct {
	EventID  string `json:"eventId"`
	Title    string `json:"title"`
	FireDate string `json:"fireDate"`
	Body     string `json:"body"`
}
