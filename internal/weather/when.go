// Package weather fetches multi-day forecasts and reduces them to a single
// day's representative reading, aggregate temperatures, and clothing advice.
package weather

import "strings"

// When is a relative day request, interpreted against the forecast
// provider's local time.
type When int

const (
	Today When = iota
	Tomorrow
	DayAfter
)

// ParseWhen normalizes a relative-day token from user text or from the
// intent classifier's wire format. Anything unrecognized is today.
func ParseWhen(raw string) When {
	text := strings.ToLower(strings.TrimSpace(raw))
	switch text {
	case "tomorrow", "明天", "明日":
		return Tomorrow
	case "day_after", "day after", "day-after", "後天", "后天", "後日":
		return DayAfter
	default:
		return Today
	}
}

// DetectWhen scans free text for a relative-day mention. 後天 is checked
// before 明天 so "後天" inside a longer sentence is not shadowed.
func DetectWhen(text string) When {
	switch {
	case strings.Contains(text, "後天"), strings.Contains(text, "后天"), strings.Contains(text, "後日"):
		return DayAfter
	case strings.Contains(text, "明天"), strings.Contains(text, "明日"):
		return Tomorrow
	default:
		return Today
	}
}

// Offset returns the day offset from the provider's base date.
func (w When) Offset() int {
	switch w {
	case Tomorrow:
		return 1
	case DayAfter:
		return 2
	default:
		return 0
	}
}

// Label returns the Chinese label used in replies.
func (w When) Label() string {
	switch w {
	case Tomorrow:
		return "明日"
	case DayAfter:
		return "後天"
	default:
		return "今日"
	}
}

// String implements fmt.Stringer with the classifier wire tokens.
func (w When) String() string {
	switch w {
	case Tomorrow:
		return "tomorrow"
	case DayAfter:
		return "day_after"
	default:
		return "today"
	}
}
