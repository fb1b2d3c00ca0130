package weather_test

import (
	"testing"

	"github.com/kevinchw/kevinbot/internal/weather"
)

func TestParseWhen(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected weather.When
	}{
		{"today", weather.Today},
		{"tomorrow", weather.Tomorrow},
		{"明天", weather.Tomorrow},
		{"明日", weather.Tomorrow},
		{"day_after", weather.DayAfter},
		{"後天", weather.DayAfter},
		{"后天", weather.DayAfter},
		{"", weather.Today},
		{"nonsense", weather.Today},
	}

	for _, tc := range testCases {
		if got := weather.ParseWhen(tc.input); got != tc.expected {
			t.Errorf("ParseWhen(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestDetectWhen(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected weather.When
	}{
		{"台北明天天氣", weather.Tomorrow},
		{"後天高雄會下雨嗎", weather.DayAfter},
		{"台中天氣", weather.Today},
		// 後天 must win even though 明天 would also be worth checking.
		{"不是明天是後天", weather.DayAfter},
	}

	for _, tc := range testCases {
		if got := weather.DetectWhen(tc.input); got != tc.expected {
			t.Errorf("DetectWhen(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestWhenOffsetAndLabel(t *testing.T) {
	t.Parallel()

	if weather.Today.Offset() != 0 || weather.Tomorrow.Offset() != 1 || weather.DayAfter.Offset() != 2 {
		t.Error("day offsets wrong")
	}
	if weather.Today.Label() != "今日" || weather.Tomorrow.Label() != "明日" || weather.DayAfter.Label() != "後天" {
		t.Error("day labels wrong")
	}
}
