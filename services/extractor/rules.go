package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"schedulo/models"
)

// RuleExtractor is the deterministic fallback extractor. It mirrors
// the keyword/regex approach of the rule-based agent and is always
// available, whether or not a model backend is configured.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var (
	greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	bookingWords  = []string{"schedule", "book", "meeting", "appointment", "call", "time"}
	availWords    = []string{"available", "availability", "free", "open", "when"}
	confirmWords  = []string{"yes", "confirm", "ok", "okay", "sure", "sounds good", "perfect", "go ahead", "book it"}
	cancelWords   = []string{"cancel", "never mind", "nevermind", "stop", "no", "nope", "nah"}

	optionRe   = regexp.MustCompile(`\boption\s*([1-9])\b`)
	bareDigit  = regexp.MustCompile(`\b([1-9])\b`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	wordBounds = map[string]*regexp.Regexp{}
)

func init() {
	for _, lists := range [][]string{greetingWords, confirmWords, cancelWords, bookingWords, availWords} {
		for _, w := range lists {
			wordBounds[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
	}
}

func containsWord(text, word string) bool {
	if re, ok := wordBounds[word]; ok {
		return re.MatchString(text)
	}
	return strings.Contains(text, word)
}

func anyWord(text string, words []string) bool {
	for _, w := range words {
		if containsWord(text, w) {
			return true
		}
	}
	return false
}

// ordinalRef returns the 1-based slot reference in the text, or 0.
// Bare digits count only while a candidate list is on the table,
// so "2" selects option 2 but "tomorrow at 2 PM" stays a time hint.
func ordinalRef(text string, presenting bool, hasTime bool) int {
	switch {
	case strings.Contains(text, "first"):
		return 1
	case strings.Contains(text, "second"):
		return 2
	case strings.Contains(text, "third"):
		return 3
	}
	if m := optionRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if strings.Contains(text, "that one") || strings.Contains(text, "looks good") {
		return 1
	}
	if presenting && !hasTime {
		if m := bareDigit.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// extractTitle maps purpose keywords to a meeting title, matching the
// original agent's vocabulary.
func extractTitle(text string) string {
	switch {
	case strings.Contains(text, "team"):
		return "Team Meeting"
	case strings.Contains(text, "client"):
		return "Client Meeting"
	case strings.Contains(text, "consultation"):
		return "Consultation"
	case strings.Contains(text, "interview"):
		return "Interview"
	case strings.Contains(text, "call"):
		return "Phone Call"
	}
	return ""
}

func (e *RuleExtractor) Extract(_ context.Context, in Input) models.Extraction {
	text := strings.ToLower(strings.TrimSpace(in.Utterance))
	presenting := in.Phase == models.PhasePresentingSlots || in.Phase == models.PhaseAwaitingConfirmation

	ext := models.Extraction{Intent: models.IntentUnknown}
	ext.Date = resolveDate(text, in.Now)
	ext.WindowStart, ext.WindowEnd = resolveWindow(text)
	ext.DurationMin = resolveDuration(text)
	ext.Title = extractTitle(text)
	if m := emailRe.FindString(in.Utterance); m != "" {
		ext.AttendeeEmail = m
	}
	ext.SlotOrdinal = ordinalRef(text, presenting, ext.WindowStart != nil)

	wordCount := len(strings.Fields(text))
	hasBooking := anyWord(text, bookingWords) || anyWord(text, availWords)

	switch {
	case anyWord(text, greetingWords) && wordCount <= 4 && !hasBooking:
		ext.Intent = models.IntentGreeting
	case anyWord(text, cancelWords):
		ext.Intent = models.IntentCancel
	case ext.SlotOrdinal > 0:
		ext.Intent = models.IntentSelectSlot
	case anyWord(text, confirmWords):
		ext.Intent = models.IntentConfirm
	case ext.HasTimeInfo() || hasBooking:
		ext.Intent = models.IntentProvideTimeInfo
	}

	return ext
}
