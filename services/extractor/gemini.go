package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"schedulo/models"
	"schedulo/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiExtractor delegates extraction to a Gemini model and coerces
// the free-form output into the structured contract. Any backend or
// coercion failure degrades to the embedded rule extractor, so the
// conversation never depends on the model being reachable.
type GeminiExtractor struct {
	model    *genai.GenerativeModel
	fallback *RuleExtractor
}

func NewGeminiExtractor(apiKey string) (*GeminiExtractor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	model.SetTemperature(0.1)
	return &GeminiExtractor{
		model:    model,
		fallback: NewRuleExtractor(),
	}, nil
}

const extractionPromptFmt = `You are an information extraction component for a calendar booking assistant.
Read the user's message and respond with a single JSON object, no prose, with these fields:
  intent: one of "greeting", "provide_time_info", "select_slot", "confirm", "cancel", "unknown"
  date: mentioned date as YYYY-MM-DD, or null (resolve relative dates like "tomorrow" or "next Friday")
  time: mentioned start time as HH:MM 24-hour, or null ("afternoon" means 12:00, "morning" 09:00, "evening" 17:00)
  end_time: end of a mentioned time range as HH:MM, or null
  duration_minutes: meeting length in minutes, or 0 if not mentioned
  title: meeting title or purpose, or ""
  attendee_email: mentioned email address, or ""
  slot_ordinal: 1-based number of a referenced presented option ("the first option" is 1), or 0

Current date: %s
Current time: %s
Conversation phase: %s

User message: %s`

type geminiExtraction struct {
	Intent          string `json:"intent"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Title           string `json:"title"`
	AttendeeEmail   string `json:"attendee_email"`
	SlotOrdinal     int    `json:"slot_ordinal"`
}

var validIntents = map[string]models.Intent{
	"greeting":          models.IntentGreeting,
	"provide_time_info": models.IntentProvideTimeInfo,
	"select_slot":       models.IntentSelectSlot,
	"confirm":           models.IntentConfirm,
	"cancel":            models.IntentCancel,
	"unknown":           models.IntentUnknown,
}

func (g *GeminiExtractor) Extract(ctx context.Context, in Input) models.Extraction {
	logger := utils.GetLogger()

	prompt := fmt.Sprintf(extractionPromptFmt,
		in.Now.Format("2006-01-02"),
		in.Now.Format("15:04"),
		in.Phase,
		in.Utterance,
	)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Warn("Gemini extraction failed, using rule fallback", zap.Error(err))
		return g.fallback.Extract(ctx, in)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		logger.Warn("Gemini returned no candidates, using rule fallback")
		return g.fallback.Extract(ctx, in)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	ext, err := g.coerce(sb.String(), in.Now)
	if err != nil {
		logger.Warn("Gemini output could not be coerced, using rule fallback", zap.Error(err))
		return g.fallback.Extract(ctx, in)
	}
	return ext
}

// coerce validates the model's JSON against the extraction contract.
func (g *GeminiExtractor) coerce(raw string, now time.Time) (models.Extraction, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var ge geminiExtraction
	if err := json.Unmarshal([]byte(raw), &ge); err != nil {
		return models.Extraction{}, fmt.Errorf("invalid extraction JSON: %w", err)
	}

	intent, ok := validIntents[strings.ToLower(ge.Intent)]
	if !ok {
		return models.Extraction{}, fmt.Errorf("unrecognized intent %q", ge.Intent)
	}

	ext := models.Extraction{
		Intent:        intent,
		Title:         ge.Title,
		AttendeeEmail: ge.AttendeeEmail,
	}
	if ge.DurationMinutes > 0 {
		ext.DurationMin = ge.DurationMinutes
	}
	if ge.SlotOrdinal > 0 {
		ext.SlotOrdinal = ge.SlotOrdinal
	}
	if ge.Date != "" && ge.Date != "null" {
		d, err := time.ParseInLocation("2006-01-02", ge.Date, now.Location())
		if err != nil {
			return models.Extraction{}, fmt.Errorf("invalid date %q: %w", ge.Date, err)
		}
		ext.Date = &d
	}
	if ge.Time != "" && ge.Time != "null" {
		start, err := parseClock(ge.Time)
		if err != nil {
			return models.Extraction{}, err
		}
		ext.WindowStart = &start
	}
	if ge.EndTime != "" && ge.EndTime != "null" {
		end, err := parseClock(ge.EndTime)
		if err != nil {
			return models.Extraction{}, err
		}
		if ext.WindowStart != nil && end > *ext.WindowStart {
			ext.WindowEnd = &end
		}
	}
	return ext, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
