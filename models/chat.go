package models

import "time"

// ChatRequest is the conversational endpoint's input.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse is one turn's reply.
type ChatResponse struct {
	Response         string               `json:"response"`
	SessionID        string               `json:"sessionId"`
	Phase            Phase                `json:"phase"`
	Intent           Intent               `json:"intent,omitempty"`
	AvailableSlots   []Slot               `json:"availableSlots,omitempty"`
	BookingConfirmed bool                 `json:"bookingConfirmed"`
	Confirmation     *BookingConfirmation `json:"confirmation,omitempty"`
}

// DirectBookingRequest is the non-conversational booking payload. It
// carries the same draft shape the conversation accumulates.
type DirectBookingRequest struct {
	Title         string    `json:"title" binding:"required"`
	Start         time.Time `json:"start" binding:"required"`
	End           time.Time `json:"end" binding:"required"`
	Description   string    `json:"description,omitempty"`
	AttendeeEmail string    `json:"attendeeEmail,omitempty"`
}

// DirectBookingResponse reports the outcome of a direct booking.
type DirectBookingResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId,omitempty"`
	Message string `json:"message"`
}

// AvailabilityRequest queries open slots over a date range.
type AvailabilityRequest struct {
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	SessionID       string    `json:"sessionId,omitempty"`
}

// AvailabilityResponse lists the resolved candidate slots.
type AvailabilityResponse struct {
	AvailableSlots []Slot `json:"availableSlots"`
	Message        string `json:"message"`
}
