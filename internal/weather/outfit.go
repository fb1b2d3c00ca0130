package weather

// Outfit is clothing advice derived from one temperature reading.
type Outfit struct {
	Top         string
	Bottom      string
	Outer       string
	WarmthLabel string
	Warmth      float64
	RainNote    string
}

// Advise maps a temperature (feels-like when available) and a rain
// probability onto a clothing band. Bands are closed at their lower edge,
// so exactly 27°C lands in the 27-32 band.
func Advise(temp float64, feelsLike *float64, pop float64) Outfit {
	t := temp
	if feelsLike != nil {
		t = *feelsLike
	}

	var o Outfit
	switch {
	case t >= 33:
		o = Outfit{
			Top:         "超輕薄短袖 / 無袖排汗衫",
			Bottom:      "短褲或運動短褲",
			Outer:       "不用外套，盡量待室內補水",
			WarmthLabel: "1 / 5",
			Warmth:      1,
		}
	case t >= 27:
		o = Outfit{
			Top:         "短袖 / POLO / 透氣襯衫",
			Bottom:      "薄長褲或短褲",
			Outer:       "薄外套可有可無",
			WarmthLabel: "1-2 / 5",
			Warmth:      1.5,
		}
	case t >= 22:
		o = Outfit{
			Top:         "薄長袖或 T 恤",
			Bottom:      "長褲",
			Outer:       "輕薄外套或襯衫當外層",
			WarmthLabel: "2 / 5",
			Warmth:      2,
		}
	case t >= 17:
		o = Outfit{
			Top:         "長袖 T 恤或薄針織",
			Bottom:      "長褲",
			Outer:       "薄風衣 / 輕薄外套",
			WarmthLabel: "3 / 5",
			Warmth:      3,
		}
	case t >= 12:
		o = Outfit{
			Top:         "長袖 + 針織或薄毛衣",
			Bottom:      "長褲",
			Outer:       "中等厚度外套 / 風衣",
			WarmthLabel: "3-4 / 5",
			Warmth:      3.5,
		}
	case t >= 7:
		o = Outfit{
			Top:         "長袖 + 毛衣",
			Bottom:      "長褲 + 厚襪子",
			Outer:       "厚外套 / 大衣，騎車加圍巾",
			WarmthLabel: "4 / 5",
			Warmth:      4,
		}
	default:
		// NaN comparisons are all false, so missing readings land here too.
		o = Outfit{
			Top:         "保暖發熱衣 + 毛衣",
			Bottom:      "長褲 + 發熱褲",
			Outer:       "羽絨衣 / 厚大衣 + 圍巾 + 毛帽",
			WarmthLabel: "5 / 5",
			Warmth:      5,
		}
	}

	switch {
	case pop >= 0.5:
		o.RainNote = "降雨機率高，記得帶傘或穿防水外套。"
	case pop >= 0.2:
		o.RainNote = "可能會下雨，建議帶折傘備用。"
	}

	return o
}
