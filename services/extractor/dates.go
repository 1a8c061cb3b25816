package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Day-part windows in minutes from midnight.
const (
	morningStart   = 9 * 60
	morningEnd     = 12 * 60
	afternoonStart = 12 * 60
	afternoonEnd   = 17 * 60
	eveningStart   = 17 * 60
	eveningEnd     = 20 * 60
)

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayRe  = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})\b`)

	timeRangeRe = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|to)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clockTimeRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourTimeRe  = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)

	durationRe = regexp.MustCompile(`\b(\d+)[-\s]*(hours?|hrs?|minutes?|mins?)\b`)
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the next occurrence of wd strictly after now's
// date, matching the original agent: a weekday name always means the
// upcoming one, never today.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	daysAhead := int(wd) - int(now.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return startOfDay(now.AddDate(0, 0, daysAhead))
}

// resolveDate scans lowercased text for a date expression and resolves
// it against now. Returns nil when no date is mentioned.
func resolveDate(text string, now time.Time) *time.Time {
	switch {
	case strings.Contains(text, "tomorrow"):
		d := startOfDay(now.AddDate(0, 0, 1))
		return &d
	case strings.Contains(text, "today"):
		d := startOfDay(now)
		return &d
	case strings.Contains(text, "next week"):
		d := startOfDay(now.AddDate(0, 0, 7))
		return &d
	case strings.Contains(text, "this week"):
		d := startOfDay(now.AddDate(0, 0, 1))
		return &d
	}

	for _, wd := range weekdayNames {
		if strings.Contains(text, wd.name) {
			d := nextWeekday(now, wd.day)
			return &d
		}
	}

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if t, err := time.ParseInLocation("2006-01-02", m[0], now.Location()); err == nil {
			return &t
		}
	}
	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
			return &d
		}
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 {
			d := time.Date(now.Year(), monthNames[m[1]], day, 0, 0, 0, 0, now.Location())
			if d.Before(startOfDay(now)) {
				d = d.AddDate(1, 0, 0)
			}
			return &d
		}
	}
	return nil
}

// to24h converts a 12-hour clock reading to minutes from midnight.
// Hours without an am/pm marker are taken as given ("14:00" works,
// "2:00" means 02:00).
func to24h(hour, min int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour*60 + min
}

// resolveWindow scans lowercased text for a time-of-day hint and
// returns the [start, end) window in minutes from midnight. A bare
// time ("3 PM") yields a start with nil end; day parts and ranges
// yield both.
func resolveWindow(text string) (*int, *int) {
	if m := timeRangeRe.FindStringSubmatch(text); m != nil {
		h1, _ := strconv.Atoi(m[1])
		min1 := 0
		if m[2] != "" {
			min1, _ = strconv.Atoi(m[2])
		}
		h2, _ := strconv.Atoi(m[4])
		min2 := 0
		if m[5] != "" {
			min2, _ = strconv.Atoi(m[5])
		}
		mer1 := m[3]
		if mer1 == "" {
			// "3-5 PM": the trailing meridiem governs both ends.
			mer1 = m[6]
		}
		start := to24h(h1, min1, mer1)
		end := to24h(h2, min2, m[6])
		if end > start {
			return &start, &end
		}
	}
	if m := clockTimeRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			start := to24h(h, min, m[3])
			return &start, nil
		}
	}
	if m := hourTimeRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h <= 12 {
			start := to24h(h, 0, m[2])
			return &start, nil
		}
	}

	switch {
	case strings.Contains(text, "morning"):
		s, e := morningStart, morningEnd
		return &s, &e
	case strings.Contains(text, "afternoon"):
		s, e := afternoonStart, afternoonEnd
		return &s, &e
	case strings.Contains(text, "evening"):
		s, e := eveningStart, eveningEnd
		return &s, &e
	}
	return nil, nil
}

// resolveDuration returns the mentioned meeting length in minutes,
// or 0 when the utterance carries no duration hint.
func resolveDuration(text string) int {
	if strings.Contains(text, "half an hour") || strings.Contains(text, "half hour") {
		return 30
	}
	if strings.Contains(text, "an hour") || strings.Contains(text, "one hour") {
		return 60
	}
	if strings.Contains(text, "two hour") {
		return 120
	}
	if m := durationRe.FindStringSubmatch(text); m != nil {
		value, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "hour") || strings.HasPrefix(m[2], "hr") {
			return value * 60
		}
		return value
	}
	return 0
}
