package bot

import (
	"context"
	"errors"
	"math"

	"github.com/kevinchw/kevinbot/internal/calorie"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/geo"
	"github.com/kevinchw/kevinbot/internal/stocks"
	"github.com/kevinchw/kevinbot/internal/weather"
)

// Fixed fallback messages. The bot answers something in every degraded
// state instead of going silent.
const (
	msgWeatherNotConfigured = "天氣查詢功能目前沒有設定，先問我別的吧。"
	msgCityNotFound         = "查不到這個城市的天氣，再確認一下城市名稱。"
	msgForecastUnavailable  = "暫時查不到這個時間點的天氣，等等再試一次。"
	msgChatUnavailable      = "我現在腦袋有點打結，等等再跟我說一次。"
	msgAINotConfigured      = "聊天功能目前沒有設定，先問我天氣或股價吧。"
	msgStockNotFound        = "查不到這檔股票，確認一下代號或名稱。"
	msgQuoteUnavailable     = "現在拿不到報價，盤後或稍晚再試試。"
	msgHoroscopeUnavailable = "今天的運勢還沒出爐，晚點再來問。"
	msgCalorieUnavailable   = "熱量估不出來，換個說法再試一次。"
)

// answerWeather resolves a city mention and answers the forecast question.
// When the whole geocode chain fails, the provider's own location query is
// tried as a last resort before giving up.
func (b *Bot) answerWeather(ctx context.Context, reply replyTarget, rawCity string, when weather.When) {
	if !b.forecasts.Configured() {
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgWeatherNotConfigured)
		return
	}

	loc, err := b.resolver.Resolve(ctx, rawCity)
	if err != nil {
		city := geo.NormalizeCity(rawCity)
		if city == "" {
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgCityNotFound)
			return
		}
		b.answerWeatherAt(ctx, reply, geo.Location{
			Name:   city,
			Taiwan: geo.IsTaiwanCity(city),
		}, when)
		return
	}

	b.answerWeatherAt(ctx, reply, *loc, when)
}

// answerWeatherAt fetches and renders the forecast for an already resolved
// location, then records it as the user's conversation context.
func (b *Bot) answerWeatherAt(ctx context.Context, reply replyTarget, loc geo.Location, when weather.When) {
	if !b.forecasts.Configured() {
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgWeatherNotConfigured)
		return
	}

	var forecast *weather.Forecast
	var err error
	if loc.HasCoords {
		forecast, err = b.forecasts.ByCoords(ctx, loc.Lat, loc.Lon)
	} else {
		query := loc.Name
		if loc.Taiwan {
			query += ",TW"
		}
		forecast, err = b.forecasts.ByQuery(ctx, query)
	}
	if err != nil {
		b.logger.WarnContext(ctx, "Forecast fetch failed", "location", loc.Name, "error", err)
		if loc.HasCoords {
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgForecastUnavailable)
		} else {
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgCityNotFound)
		}
		return
	}

	agg, err := weather.SelectDay(forecast, when)
	if err != nil {
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgForecastUnavailable)
		return
	}

	temp := math.NaN()
	if agg.Representative.Temp != nil {
		temp = *agg.Representative.Temp
	}
	outfit := weather.Advise(temp, agg.Representative.FeelsLike, agg.MaxPop)

	name := loc.Name
	if name == "" {
		name = forecast.City
	}

	b.messenger.ReplyText(ctx, reply.token, reply.chatID, formatWeather(name, agg, outfit))
	b.ctxStore.Put(ctx, reply.userID, loc)
}

func (b *Bot) answerSideFeature(ctx context.Context, reply replyTarget, feature SideFeature, arg string) {
	switch feature {
	case FeatureFortune:
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, formatLot(b.fortunes.Draw()))

	case FeatureStock:
		quote, err := b.stocks.Query(ctx, arg)
		switch {
		case errors.Is(err, stocks.ErrUnknownSymbol):
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgStockNotFound)
		case err != nil:
			b.logger.WarnContext(ctx, "Stock query failed", "query", arg, "error", err)
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgQuoteUnavailable)
		default:
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, formatQuote(quote))
		}

	case FeatureHoroscope:
		reading, err := b.horoscopes.Reading(ctx, arg)
		if errors.Is(err, gemini.ErrNotConfigured) {
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgAINotConfigured)
			return
		}
		if err != nil {
			b.logger.WarnContext(ctx, "Horoscope failed", "sign", arg, "error", err)
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgHoroscopeUnavailable)
			return
		}
		b.messenger.Reply(ctx, reply.token, reply.chatID, horoscopeFlexMessage(reading))

	case FeatureVerse:
		b.messenger.Reply(ctx, reply.token, reply.chatID, verseFlexMessage(b.verses.Pick()))

	case FeatureCalorie:
		items := calorie.ExtractItems(arg)
		estimates, err := b.calories.Estimate(ctx, items)
		if errors.Is(err, gemini.ErrNotConfigured) {
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgAINotConfigured)
			return
		}
		if err != nil {
			b.logger.WarnContext(ctx, "Calorie estimate failed", "error", err)
			b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgCalorieUnavailable)
			return
		}
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, formatCalories(estimates))
	}
}

func (b *Bot) answerChat(ctx context.Context, reply replyTarget, text string) {
	answer, err := b.ai.Chat(ctx, text)
	if errors.Is(err, gemini.ErrNotConfigured) {
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgAINotConfigured)
		return
	}
	if err != nil {
		b.logger.WarnContext(ctx, "Chat generation failed", "error", err)
		b.messenger.ReplyText(ctx, reply.token, reply.chatID, msgChatUnavailable)
		return
	}
	b.messenger.ReplyText(ctx, reply.token, reply.chatID, answer)
}
