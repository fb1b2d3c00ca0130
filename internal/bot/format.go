package bot

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/kevinchw/kevinbot/internal/fortune"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/stocks"
	"github.com/kevinchw/kevinbot/internal/verse"
	"github.com/kevinchw/kevinbot/internal/weather"
)

func formatWeather(location string, agg *weather.DayAggregate, outfit weather.Outfit) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "【%s|%s天氣】\n", location, agg.When.Label())
	if agg.Degraded {
		sb.WriteString("(這個時段的預報還沒出來，先看最近的)\n")
	}

	rep := agg.Representative
	if rep.Description != "" {
		fmt.Fprintf(&sb, "狀態：%s\n", rep.Description)
	}
	if rep.Temp != nil {
		sb.WriteString("氣溫：" + formatTemp(*rep.Temp))
		if agg.MinTemp != nil && agg.MaxTemp != nil {
			fmt.Fprintf(&sb, "(%s ~ %s)", formatTemp(*agg.MinTemp), formatTemp(*agg.MaxTemp))
		}
		sb.WriteString("\n")
	}
	if rep.FeelsLike != nil {
		sb.WriteString("體感：" + formatTemp(*rep.FeelsLike))
		if agg.MinFeelsLike != nil && agg.MaxFeelsLike != nil {
			fmt.Fprintf(&sb, "(%s ~ %s)", formatTemp(*agg.MinFeelsLike), formatTemp(*agg.MaxFeelsLike))
		}
		sb.WriteString("\n")
	}
	if rep.Humidity != nil {
		fmt.Fprintf(&sb, "濕度：%.0f%%\n", *rep.Humidity)
	}
	fmt.Fprintf(&sb, "降雨機率：%.0f%%\n", agg.MaxPop*100)

	sb.WriteString("\n【穿搭建議】\n")
	fmt.Fprintf(&sb, "上身:%s\n", outfit.Top)
	fmt.Fprintf(&sb, "下身:%s\n", outfit.Bottom)
	fmt.Fprintf(&sb, "外套:%s\n", outfit.Outer)
	fmt.Fprintf(&sb, "保暖度:%s", outfit.WarmthLabel)
	if outfit.RainNote != "" {
		sb.WriteString("\n" + outfit.RainNote)
	}

	return sb.String()
}

func formatTemp(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

func formatQuote(q *stocks.Quote) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "【%s", q.Code)
	if q.Name != "" {
		fmt.Fprintf(&sb, " %s", q.Name)
	}
	sb.WriteString("】\n")

	if q.Price != nil {
		fmt.Fprintf(&sb, "成交價：%.2f", *q.Price)
		if q.PriceDerived {
			sb.WriteString("(以昨收參考)")
		}
		sb.WriteString("\n")
		if !q.PriceDerived && q.PrevClose != nil && *q.PrevClose != 0 {
			change := *q.Price - *q.PrevClose
			fmt.Fprintf(&sb, "漲跌：%+.2f (%+.2f%%)\n", change, change / *q.PrevClose*100)
		}
	} else {
		sb.WriteString("成交價：-\n")
	}

	fmt.Fprintf(&sb, "開盤:%s 高:%s 低:%s\n",
		formatPrice(q.Open), formatPrice(q.High), formatPrice(q.Low))
	fmt.Fprintf(&sb, "昨收:%s\n", formatPrice(q.PrevClose))
	if q.Volume != nil {
		fmt.Fprintf(&sb, "成交量:%.0f", *q.Volume)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatLot(lot fortune.Lot) string {
	return fmt.Sprintf("🎋 你抽到了【%s】\n\n%s\n\n籤意:%s", lot.Level, lot.Poem, lot.Meaning)
}

func formatHoroscope(r *gemini.HoroscopeReading) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✨ %s座今日運勢(%s)\n\n", r.Sign, r.Date)
	fmt.Fprintf(&sb, "整體:%s\n", r.Overall)
	fmt.Fprintf(&sb, "愛情:%s\n", r.Love)
	fmt.Fprintf(&sb, "事業:%s\n", r.Career)
	fmt.Fprintf(&sb, "財運:%s\n\n", r.Wealth)
	fmt.Fprintf(&sb, "幸運色:%s\n", r.LuckyColor)
	fmt.Fprintf(&sb, "幸運數字:%d", r.LuckyNumber)
	if r.Advice != "" {
		fmt.Fprintf(&sb, "\n\n💡 %s", r.Advice)
	}
	return sb.String()
}

// horoscopeFlexMessage renders the reading as a card; the alt text carries
// the full plain rendering for clients without flex support.
func horoscopeFlexMessage(r *gemini.HoroscopeReading) *messaging_api.FlexMessage {
	contents := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{
			Text:   fmt.Sprintf("✨ %s座今日運勢", r.Sign),
			Weight: "bold",
			Size:   "lg",
		},
		&messaging_api.FlexText{
			Text:  r.Date,
			Size:  "xs",
			Color: "#999999",
		},
	}
	sections := []struct {
		label string
		text  string
	}{
		{"整體", r.Overall},
		{"愛情", r.Love},
		{"事業", r.Career},
		{"財運", r.Wealth},
	}
	for _, sec := range sections {
		if sec.text == "" {
			continue
		}
		contents = append(contents, &messaging_api.FlexText{
			Text: fmt.Sprintf("%s:%s", sec.label, sec.text),
			Wrap: true,
			Size: "sm",
		})
	}
	contents = append(contents, &messaging_api.FlexText{
		Text: fmt.Sprintf("幸運色:%s 幸運數字:%d", r.LuckyColor, r.LuckyNumber),
		Size: "sm",
	})
	if r.Advice != "" {
		contents = append(contents, &messaging_api.FlexText{
			Text:  "💡 " + r.Advice,
			Wrap:  true,
			Size:  "sm",
			Color: "#8B6F47",
		})
	}

	return &messaging_api.FlexMessage{
		AltText: formatHoroscope(r),
		Contents: &messaging_api.FlexBubble{
			Body: &messaging_api.FlexBox{
				Layout:   "vertical",
				Spacing:  "md",
				Contents: contents,
			},
		},
	}
}

func formatCalories(items []gemini.CalorieItem) string {
	var sb strings.Builder
	sb.WriteString("🍱 熱量估算\n")

	totalMin, totalMax := 0.0, 0.0
	for _, item := range items {
		fmt.Fprintf(&sb, "\n%s:%s", item.Name, formatKcalRange(item.KcalMin, item.KcalMax))
		if item.Note != "" {
			fmt.Fprintf(&sb, "\n  %s", item.Note)
		}
		totalMin += item.KcalMin
		totalMax += item.KcalMax
	}
	if len(items) > 1 {
		fmt.Fprintf(&sb, "\n\n合計%s", formatKcalRange(totalMin, totalMax))
	}

	return sb.String()
}

func formatKcalRange(min, max float64) string {
	if min == max {
		return fmt.Sprintf("約 %.0f 大卡", min)
	}
	return fmt.Sprintf("約 %.0f ~ %.0f 大卡", min, max)
}

// verseFlexMessage renders a verse as a simple card so it reads like a
// shareable quote rather than a plain chat line.
func verseFlexMessage(v verse.Verse) *messaging_api.FlexMessage {
	bubble := &messaging_api.FlexBubble{
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "md",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexText{
					Text:   "📖 今日經文",
					Weight: "bold",
					Size:   "sm",
					Color:  "#8B6F47",
				},
				&messaging_api.FlexText{
					Text: v.Text,
					Wrap: true,
					Size: "md",
				},
				&messaging_api.FlexText{
					Text:  "— " + v.Ref,
					Size:  "sm",
					Color: "#999999",
					Align: "end",
				},
			},
		},
	}
	return &messaging_api.FlexMessage{
		AltText:  v.Text + " — " + v.Ref,
		Contents: bubble,
	}
}
