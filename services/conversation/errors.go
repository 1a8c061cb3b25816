package conversation

import (
	"errors"
	"fmt"
)

// Recovery codes for conversational failures. Every code maps to a
// user-facing fallback that keeps the session in a well-defined phase.
const (
	CodeExtractionAmbiguous     = "extractionAmbiguous"
	CodeNoAvailability          = "noAvailability"
	CodeStaleSelection          = "staleSelection"
	CodeBookingConflict         = "bookingConflict"
	CodeCollaboratorUnavailable = "collaboratorUnavailable"
	CodeSessionNotFound         = "sessionNotFound"
)

// FlowError is a typed conversational failure.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewFlowError(code, msg string) error {
	return &FlowError{Code: code, Message: msg}
}

// IsFlowCode reports whether err carries the given recovery code.
func IsFlowCode(err error, code string) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Code == code
}

// ErrSessionNotFound is returned for lookups of unknown or expired
// session ids.
var ErrSessionNotFound = &FlowError{Code: CodeSessionNotFound, Message: "session not found or expired"}
