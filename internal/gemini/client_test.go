package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/weather"
)

func TestParseIntentReply(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		wantCity string
		wantWhen weather.When
		wantNil  bool
	}{
		{
			name:     "well formed",
			input:    "WEATHER|台北|today",
			wantCity: "台北",
			wantWhen: weather.Today,
		},
		{
			name:     "tomorrow",
			input:    "WEATHER|Tokyo|tomorrow",
			wantCity: "Tokyo",
			wantWhen: weather.Tomorrow,
		},
		{
			name:     "surrounding whitespace and casing",
			input:    "  weather | 高雄 | day_after  ",
			wantCity: "高雄",
			wantWhen: weather.DayAfter,
		},
		{
			name:     "unknown when defaults to today",
			input:    "WEATHER|台中|someday",
			wantCity: "台中",
			wantWhen: weather.Today,
		},
		{
			name:     "trailing free text on extra lines ignored",
			input:    "WEATHER|台南|today\n補充說明...",
			wantCity: "台南",
			wantWhen: weather.Today,
		},
		{name: "explicit no", input: "NO", wantNil: true},
		{name: "lowercase no", input: "no", wantNil: true},
		{name: "empty", input: "", wantNil: true},
		{name: "free text", input: "這不是天氣問題", wantNil: true},
		{name: "missing when field", input: "WEATHER|台北", wantNil: true},
		{name: "too many fields", input: "WEATHER|台北|today|extra", wantNil: true},
		{name: "empty city", input: "WEATHER||today", wantNil: true},
		{name: "wrong tag", input: "FORECAST|台北|today", wantNil: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := gemini.ParseIntentReply(tc.input)
			if tc.wantNil {
				if got != nil {
					t.Errorf("ParseIntentReply(%q) = %+v, want nil", tc.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseIntentReply(%q) = nil, want intent", tc.input)
			}
			if got.City != tc.wantCity || got.When != tc.wantWhen {
				t.Errorf("ParseIntentReply(%q) = {%q, %v}, want {%q, %v}",
					tc.input, got.City, got.When, tc.wantCity, tc.wantWhen)
			}
		})
	}
}

func TestNewClientWithoutAPIKey(t *testing.T) {
	t.Parallel()

	client, err := gemini.NewClient(context.Background(), config.GeminiConfig{}, nil)
	if err != nil {
		t.Fatalf("NewClient without API key returned error: %v", err)
	}

	if _, err := client.ClassifyWeatherIntent(context.Background(), "台北天氣"); !errors.Is(err, gemini.ErrNotConfigured) {
		t.Errorf("ClassifyWeatherIntent: got %v, want ErrNotConfigured", err)
	}
	if _, err := client.Chat(context.Background(), "你好"); !errors.Is(err, gemini.ErrNotConfigured) {
		t.Errorf("Chat: got %v, want ErrNotConfigured", err)
	}
	if _, err := client.GenerateHoroscope(context.Background(), "天蠍", "2026-09-01"); !errors.Is(err, gemini.ErrNotConfigured) {
		t.Errorf("GenerateHoroscope: got %v, want ErrNotConfigured", err)
	}
	if _, err := client.GenerateCalories(context.Background(), []string{"雞排"}); !errors.Is(err, gemini.ErrNotConfigured) {
		t.Errorf("GenerateCalories: got %v, want ErrNotConfigured", err)
	}
}
