package weather_test

import (
	"math"
	"strings"
	"testing"

	"github.com/kevinchw/kevinbot/internal/weather"
)

func TestAdviseBands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		temp   float64
		warmth float64
	}{
		{"scorching", 35, 1},
		{"band edge 33 is warmest", 33, 1},
		{"hot", 29, 1.5},
		{"band edge 27 goes warmer", 27, 1.5},
		{"mild", 24, 2},
		{"band edge 22 goes warmer", 22, 2},
		{"cool", 19, 3},
		{"chilly", 14, 3.5},
		{"cold", 9, 4},
		{"freezing", 3, 5},
		{"below zero", -2, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := weather.Advise(tc.temp, nil, 0)
			if got.Warmth != tc.warmth {
				t.Errorf("Advise(%v).Warmth = %v, want %v", tc.temp, got.Warmth, tc.warmth)
			}
			if got.Top == "" || got.Bottom == "" || got.Outer == "" || got.WarmthLabel == "" {
				t.Errorf("Advise(%v) returned empty fields: %+v", tc.temp, got)
			}
		})
	}
}

func TestAdvisePrefersFeelsLike(t *testing.T) {
	t.Parallel()

	feels := 10.0
	got := weather.Advise(25, &feels, 0)
	if got.Warmth != 4 {
		t.Errorf("Warmth = %v, want 4 (driven by feels-like 10)", got.Warmth)
	}
}

func TestAdviseRainNote(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		pop  float64
		want string
	}{
		{"dry", 0.1, ""},
		{"mild tier at threshold", 0.2, "折傘"},
		{"mild tier", 0.4, "折傘"},
		{"strong tier at threshold", 0.5, "帶傘或穿防水外套"},
		{"downpour", 0.9, "帶傘或穿防水外套"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := weather.Advise(25, nil, tc.pop)
			if tc.want == "" {
				if got.RainNote != "" {
					t.Errorf("RainNote = %q, want empty", got.RainNote)
				}
				return
			}
			if !strings.Contains(got.RainNote, tc.want) {
				t.Errorf("RainNote = %q, want substring %q", got.RainNote, tc.want)
			}
		})
	}
}

// A missing reading must still produce a complete outfit.
func TestAdviseNaNFallsToWarmestClothing(t *testing.T) {
	t.Parallel()

	got := weather.Advise(math.NaN(), nil, 0)
	if got.Warmth != 5 {
		t.Errorf("Warmth = %v, want 5 for NaN input", got.Warmth)
	}
}
