package models

import "time"

// Phase is the discrete stage of a booking conversation.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseCollectingTime       Phase = "collecting_time"
	PhasePresentingSlots      Phase = "presenting_slots"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseBooked               Phase = "booked"
	PhaseCancelled            Phase = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseBooked || p == PhaseCancelled
}

// Turn is one utterance/response pair kept as extraction context.
type Turn struct {
	Utterance string    `json:"utterance"`
	Response  string    `json:"response"`
	At        time.Time `json:"at"`
}

// Session holds one user's ongoing booking conversation.
type Session struct {
	ID        string       `json:"id"`
	Phase     Phase        `json:"phase"`
	Draft     BookingDraft `json:"draft"`
	Turns     []Turn       `json:"turns,omitempty"`
	TurnCount int          `json:"turnCount"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// BookingDraft accumulates booking intent across turns. Time-of-day
// fields are minutes from midnight (e.g., 840 for 2:00 PM); nil means
// not yet provided.
type BookingDraft struct {
	Date          *time.Time           `json:"date,omitempty"`
	WindowStart   *int                 `json:"windowStart,omitempty"`
	WindowEnd     *int                 `json:"windowEnd,omitempty"`
	DurationMin   int                  `json:"durationMinutes,omitempty"`
	Title         string               `json:"title,omitempty"`
	Description   string               `json:"description,omitempty"`
	AttendeeEmail string               `json:"attendeeEmail,omitempty"`
	Candidates    []Slot               `json:"candidates,omitempty"`
	CandidateGen  int                  `json:"candidateGen"`
	PresentedGen  int                  `json:"presentedGen"`
	Selected      *Slot                `json:"selected,omitempty"`
	Confirmation  *BookingConfirmation `json:"confirmation,omitempty"`
}

// HasDate reports whether enough has been collected to query availability.
func (d *BookingDraft) HasDate() bool {
	return d.Date != nil
}

// BookingConfirmation is the stored result of the one committed booking.
type BookingConfirmation struct {
	EventID       string    `json:"eventId"`
	Slot          Slot      `json:"slot"`
	Title         string    `json:"title"`
	AttendeeEmail string    `json:"attendeeEmail,omitempty"`
	BookedAt      time.Time `json:"bookedAt"`
}
