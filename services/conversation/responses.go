package conversation

import (
	"fmt"
	"strings"

	"schedulo/models"
)

// Response templates. Phrasing follows the assistant's original voice;
// everything is rendered deterministically from phase + draft so a
// given state always reads the same.

func greetingResponse() string {
	return "Hello! I'm your calendar assistant. I can help you schedule meetings and check your availability. What would you like to do today?"
}

func askForDateResponse() string {
	return "I'd be happy to help you schedule a meeting! Could you please tell me your preferred date? For example, you could say 'tomorrow', 'next Friday', or a specific date."
}

func clarifyTimeResponse() string {
	return "I didn't quite catch a date or time there. You could say something like 'tomorrow at 2 PM' or 'next Friday afternoon'."
}

func listSlotsResponse(slots []models.Slot) string {
	var b strings.Builder
	b.WriteString("Great! I found some available time slots for you:\n\n")
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s from %s to %s\n", i+1, slot.Date, slot.StartTime, slot.EndTime)
	}
	b.WriteString("\nWhich option works best for you? You can say 'option 1', 'the first one', or just '1'.")
	return b.String()
}

func noAvailabilityResponse() string {
	return "I couldn't find any available slots for your requested time. Could you try a different date or time range?"
}

func staleSelectionResponse(slots []models.Slot) string {
	return "Those options are no longer current. " + listSlotsResponse(slots)
}

func unknownSelectionResponse() string {
	return "I'm not sure which slot you'd like to select. Could you please specify 'option 1', 'option 2', etc.?"
}

func confirmPromptResponse(slot models.Slot) string {
	return fmt.Sprintf("Perfect! I'll book the slot on %s from %s to %s. Should I confirm this booking?",
		slot.Date, slot.StartTime, slot.EndTime)
}

func awaitingClarificationResponse(slot models.Slot) string {
	return fmt.Sprintf("You currently have %s from %s to %s selected. Say 'yes' to confirm, pick a different option, or 'cancel' to stop.",
		slot.Date, slot.StartTime, slot.EndTime)
}

func bookedResponse(conf *models.BookingConfirmation) string {
	short := conf.EventID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf(
		"Booking confirmed! Your meeting has been scheduled.\nDate: %s\nTime: %s - %s\nTitle: %s\nEvent ID: %s...\n\nIs there anything else I can help you with?",
		conf.Slot.Date, conf.Slot.StartTime, conf.Slot.EndTime, conf.Title, short)
}

func alreadyBookedResponse(conf *models.BookingConfirmation) string {
	return fmt.Sprintf("This meeting is already booked for %s from %s to %s (event %s). Start a new conversation to schedule another one.",
		conf.Slot.Date, conf.Slot.StartTime, conf.Slot.EndTime, conf.EventID)
}

func cancelledResponse() string {
	return "No problem, I've cancelled this booking request. Start a new conversation whenever you'd like to schedule something."
}

func sessionCancelledResponse() string {
	return "This booking conversation was cancelled. Start a new conversation to schedule a meeting."
}

func conflictNoAlternativesResponse() string {
	return "It looks like that slot was just taken, and I couldn't find alternatives in the same range. Could you try a different date or time?"
}

func collaboratorDownResponse() string {
	return "I'm having trouble reaching the calendar right now. Please try again in a moment."
}

func generalHelpResponse() string {
	return "I'm here to help you schedule meetings and manage your calendar. You can ask me to 'schedule a meeting', 'check availability', or 'book an appointment'. How can I assist you today?"
}
