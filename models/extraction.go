package models

import "time"

// Intent classifies one utterance.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentProvideTimeInfo Intent = "provide_time_info"
	IntentSelectSlot      Intent = "select_slot"
	IntentConfirm         Intent = "confirm"
	IntentCancel          Intent = "cancel"
	IntentUnknown         Intent = "unknown"
)

// Extraction is the structured output of one extraction pass.
// Time-of-day fields are minutes from midnight; nil means the
// utterance carried no such hint. SlotOrdinal is 1-based; 0 means no
// slot reference.
type Extraction struct {
	Intent        Intent     `json:"intent"`
	Date          *time.Time `json:"date,omitempty"`
	WindowStart   *int       `json:"windowStart,omitempty"`
	WindowEnd     *int       `json:"windowEnd,omitempty"`
	DurationMin   int        `json:"durationMinutes,omitempty"`
	Title         string     `json:"title,omitempty"`
	AttendeeEmail string     `json:"attendeeEmail,omitempty"`
	SlotOrdinal   int        `json:"slotOrdinal,omitempty"`
}

// HasTimeInfo reports whether any scheduling field was extracted.
func (e *Extraction) HasTimeInfo() bool {
	return e.Date != nil || e.WindowStart != nil || e.DurationMin > 0
}
