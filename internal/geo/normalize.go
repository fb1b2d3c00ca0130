package geo

import "strings"

// fillerTokens are substrings stripped from a city mention before lookup:
// weather and question words, relative-day words, and country names. Order
// matters only in that longer phrases must precede their fragments.
var fillerTokens = []string{
	"會不會下雨", "會下雨嗎", "下雨嗎", "怎麼樣", "怎么样", "怎樣", "如何",
	"天氣", "天气", "氣溫", "气温", "溫度", "温度", "下雨", "降雨",
	"穿什麼", "穿什么", "穿搭", "冷不冷", "熱不熱", "好冷", "好熱", "冷嗎", "熱嗎",
	"今天", "明天", "明日", "後天", "后天", "今日", "後日",
	"請問", "请问", "台灣", "臺灣", "台湾",
	"的", "嗎", "吗", "呢", "咧", "？", "?", "！", "!", "。", "，", ",",
}

// administrative suffixes trimmed from the end of a mention (市/縣/區/鄉/鎮).
const adminSuffixes = "市縣县區区鄉乡鎮镇"

// CleanCity strips filler words and trailing administrative suffixes from a
// free-text city mention. Empty input passes through unchanged.
func CleanCity(raw string) string {
	if raw == "" {
		return raw
	}

	cleaned := strings.TrimSpace(raw)
	for _, token := range fillerTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	for {
		trimmed := strings.TrimRight(cleaned, adminSuffixes)
		if trimmed == cleaned {
			break
		}
		cleaned = trimmed
	}

	return strings.TrimSpace(cleaned)
}

// NormalizeCity cleans a city mention and snaps it to the canonical English
// name when it matches a known Taiwan city variant; otherwise the cleaned
// string is returned unchanged. Reapplying to its own output is a no-op.
func NormalizeCity(raw string) string {
	if raw == "" {
		return raw
	}

	cleaned := CleanCity(raw)
	if cleaned == "" {
		return cleaned
	}
	if canonical, ok := CanonicalTaiwanCity(cleaned); ok {
		return canonical
	}
	return cleaned
}

// IsTaiwanCity reports whether the mention matches the curated Taiwan city
// table or the outlying-island table.
func IsTaiwanCity(s string) bool {
	if _, ok := CanonicalTaiwanCity(s); ok {
		return true
	}
	_, ok := IslandByName(CleanCity(s))
	return ok
}
