package extractor

import (
	"context"
	"time"

	"schedulo/models"
)

// Input is one utterance plus the conversational context it is read
// against. Now is always caller-supplied so relative expressions
// ("tomorrow", "next Friday") resolve deterministically.
type Input struct {
	Utterance string
	Phase     models.Phase
	Draft     models.BookingDraft
	History   []models.Turn
	Now       time.Time
}

// Extractor turns one utterance into a structured Extraction. It must
// not fail: unparseable input yields IntentUnknown with empty fields,
// and the state machine decides the user-facing fallback.
type Extractor interface {
	Extract(ctx context.Context, in Input) models.Extraction
}
