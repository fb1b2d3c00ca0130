// Package horoscope implements daily zodiac readings, generated once per
// sign per day and memoized in the cache.
package horoscope

import "strings"

// Signs lists the twelve zodiac signs in canonical traditional-Chinese form,
// without the trailing 座.
var Signs = []string{
	"牡羊", "金牛", "雙子", "巨蟹", "獅子", "處女",
	"天秤", "天蠍", "射手", "魔羯", "水瓶", "雙魚",
}

// signAliases maps every accepted spelling, including simplified forms and
// common variants, onto the canonical sign name.
var signAliases = map[string]string{
	"牡羊": "牡羊", "白羊": "牡羊",
	"金牛": "金牛",
	"雙子": "雙子", "双子": "雙子",
	"巨蟹": "巨蟹",
	"獅子": "獅子", "狮子": "獅子",
	"處女": "處女", "处女": "處女",
	"天秤": "天秤", "天平": "天秤",
	"天蠍": "天蠍", "天蝎": "天蠍",
	"射手": "射手",
	"魔羯": "魔羯", "摩羯": "魔羯",
	"水瓶": "水瓶",
	"雙魚": "雙魚", "双鱼": "雙魚",
}

// ParseSign finds the first zodiac sign mentioned in text, requiring the
// trailing 座 so that place names like 獅子林 do not trigger. Returns the
// canonical sign name without the 座 suffix.
func ParseSign(text string) (string, bool) {
	best := ""
	bestIdx := -1
	for alias, canonical := range signAliases {
		if idx := strings.Index(text, alias+"座"); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best = canonical
			bestIdx = idx
		}
	}
	return best, bestIdx >= 0
}
