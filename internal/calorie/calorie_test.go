package calorie_test

import (
	"reflect"
	"testing"

	"github.com/kevinchw/kevinbot/internal/calorie"
)

func TestExtractItems(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single item",
			input:    "雞腿便當熱量多少",
			expected: []string{"雞腿便當"},
		},
		{
			name:     "leading phrase with enumeration",
			input:    "我吃了滷肉飯、貢丸湯和燙青菜,熱量多少?",
			expected: []string{"滷肉飯", "貢丸湯", "燙青菜"},
		},
		{
			name:     "mixed separators",
			input:    "珍珠奶茶加雞排的卡路里",
			expected: []string{"珍珠奶茶", "雞排"},
		},
		{
			name:     "space separated",
			input:    "吃了 牛肉麵 小籠包 熱量",
			expected: []string{"牛肉麵", "小籠包"},
		},
		{
			name:     "trigger words only",
			input:    "熱量是多少?",
			expected: nil,
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calorie.ExtractItems(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ExtractItems(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}
