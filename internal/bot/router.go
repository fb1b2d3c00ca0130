// Package bot implements the message router: the access gate for group
// chats and the intent cascade that decides how each message is answered.
package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/kevinchw/kevinbot/internal/calorie"
	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/fortune"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/geo"
	"github.com/kevinchw/kevinbot/internal/horoscope"
	"github.com/kevinchw/kevinbot/internal/stocks"
	"github.com/kevinchw/kevinbot/internal/verse"
	"github.com/kevinchw/kevinbot/internal/weather"
)

// Replier delivers messages back to the chat. Satisfied by *line.Messenger.
type Replier interface {
	Reply(ctx context.Context, replyToken, chatID string, messages ...messaging_api.MessageInterface)
	ReplyText(ctx context.Context, replyToken, chatID, text string)
}

// Bot routes incoming webhook events to feature handlers.
type Bot struct {
	lineCfg    config.LineConfig
	ai         gemini.Client
	messenger  Replier
	resolver   *geo.Resolver
	forecasts  *weather.Client
	stocks     *stocks.Service
	horoscopes *horoscope.Service
	calories   *calorie.Service
	fortunes   *fortune.Drawer
	verses     *verse.Picker
	ctxStore   *ContextStore
	logger     *slog.Logger
}

// New creates the router with all feature dependencies.
func New(
	lineCfg config.LineConfig,
	ai gemini.Client,
	messenger Replier,
	resolver *geo.Resolver,
	forecasts *weather.Client,
	stockSvc *stocks.Service,
	horoscopeSvc *horoscope.Service,
	calorieSvc *calorie.Service,
	fortuneDrawer *fortune.Drawer,
	versePicker *verse.Picker,
	ctxStore *ContextStore,
	logger *slog.Logger,
) *Bot {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bot{
		lineCfg:    lineCfg,
		ai:         ai,
		messenger:  messenger,
		resolver:   resolver,
		forecasts:  forecasts,
		stocks:     stockSvc,
		horoscopes: horoscopeSvc,
		calories:   calorieSvc,
		fortunes:   fortuneDrawer,
		verses:     versePicker,
		ctxStore:   ctxStore,
		logger:     logger.With("component", "bot"),
	}
}

// HandleEvents processes webhook events sequentially. Each event runs inside
// its own error boundary so one bad event cannot take down the batch; the
// webhook handler always answers 200 regardless.
func (b *Bot) HandleEvents(ctx context.Context, events []webhook.EventInterface) {
	for _, event := range events {
		b.handleEvent(ctx, event)
	}
}

func (b *Bot) handleEvent(ctx context.Context, event webhook.EventInterface) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "Panic while handling event", "panic", r)
		}
	}()

	msgEvent, ok := event.(webhook.MessageEvent)
	if !ok {
		return
	}

	switch msg := msgEvent.Message.(type) {
	case webhook.TextMessageContent:
		b.handleTextMessage(ctx, msgEvent, msg)
	case webhook.LocationMessageContent:
		b.handleLocationMessage(ctx, msgEvent, msg)
	}
}

func (b *Bot) handleTextMessage(ctx context.Context, event webhook.MessageEvent, msg webhook.TextMessageContent) {
	text, addressed := b.gateText(event.Source, msg)
	if !addressed {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	userID, chatID := sourceIDs(event.Source)
	reply := replyTarget{token: event.ReplyToken, chatID: chatID, userID: userID}

	// Bare follow-up like "那明天呢?" reuses the last resolved location.
	if when, ok := MatchFollowUp(text); ok {
		if loc, found := b.ctxStore.Get(ctx, userID); found {
			b.answerWeatherAt(ctx, reply, *loc, when)
			return
		}
	}

	// Fast path: explicit Taiwan city plus a weather word needs no model call.
	if city, when, ok := MatchFastWeather(text); ok {
		b.answerWeather(ctx, reply, city, when)
		return
	}

	if feature, arg := MatchSideFeature(text); feature != FeatureNone {
		b.answerSideFeature(ctx, reply, feature, arg)
		return
	}

	intent, err := b.ai.ClassifyWeatherIntent(ctx, text)
	if err != nil {
		if !errors.Is(err, gemini.ErrNotConfigured) {
			b.logger.WarnContext(ctx, "Intent classification failed, falling back to chat", "error", err)
		}
	} else if intent != nil {
		b.answerWeather(ctx, reply, intent.City, intent.When)
		return
	}

	b.answerChat(ctx, reply, text)
}

func (b *Bot) handleLocationMessage(ctx context.Context, event webhook.MessageEvent, msg webhook.LocationMessageContent) {
	userID, chatID := sourceIDs(event.Source)
	reply := replyTarget{token: event.ReplyToken, chatID: chatID, userID: userID}

	name := msg.Address
	if name == "" {
		name = "你的位置"
	}
	loc := geo.Location{
		Name:      name,
		Lat:       msg.Latitude,
		Lon:       msg.Longitude,
		HasCoords: true,
	}
	b.answerWeatherAt(ctx, reply, loc, weather.Today)
}

// gateText decides whether the bot was addressed. Direct chats always pass.
// Group and room messages pass only when the bot is mentioned, either as a
// structured mention or as a leading name token; everything else is dropped
// silently. The returned text has the mention stripped.
func (b *Bot) gateText(source webhook.SourceInterface, msg webhook.TextMessageContent) (string, bool) {
	switch source.(type) {
	case webhook.GroupSource, webhook.RoomSource:
	default:
		return msg.Text, true
	}

	if msg.Mention != nil {
		for _, m := range msg.Mention.Mentionees {
			um, ok := m.(webhook.UserMentionee)
			if !ok {
				continue
			}
			if um.IsSelf || (b.lineCfg.BotUserID != "" && um.UserId == b.lineCfg.BotUserID) {
				return stripMention(msg.Text, int(um.Index), int(um.Length)), true
			}
		}
	}

	trimmed := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(trimmed)
	for _, prefix := range b.lineCfg.NamePrefixes {
		for _, candidate := range []string{prefix, "@" + prefix} {
			if strings.HasPrefix(lower, strings.ToLower(candidate)) {
				return strings.TrimSpace(trimmed[len(candidate):]), true
			}
		}
	}

	return "", false
}

// stripMention removes the rune range [index, index+length) from text. The
// platform reports mention offsets in runes, not bytes.
func stripMention(text string, index, length int) string {
	runes := []rune(text)
	if index < 0 || length <= 0 || index+length > len(runes) {
		return text
	}
	return strings.TrimSpace(string(runes[:index]) + string(runes[index+length:]))
}

func sourceIDs(source webhook.SourceInterface) (userID, chatID string) {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId, s.UserId
	case webhook.GroupSource:
		return s.UserId, s.GroupId
	case webhook.RoomSource:
		return s.UserId, s.RoomId
	}
	return "", ""
}

type replyTarget struct {
	token  string
	chatID string
	userID string
}

var followUpPattern = regexp.MustCompile(`^(?:那|那麼)?(今天|今日|明天|明日|後天|后天)(?:呢|咧|的天氣|天氣)?[?？]?$`)

// MatchFollowUp recognizes bare day-only follow-up questions.
func MatchFollowUp(text string) (weather.When, bool) {
	m := followUpPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return weather.Today, false
	}
	return weather.DetectWhen(m[1]), true
}

var weatherWords = []string{
	"天氣", "天气", "氣溫", "气温", "溫度", "温度", "下雨", "降雨",
	"穿什麼", "穿什么", "穿搭", "冷不冷", "熱不熱",
}

// MatchFastWeather recognizes messages that name a Taiwan city together with
// a weather word, which can be answered without a model round-trip.
func MatchFastWeather(text string) (string, weather.When, bool) {
	hasWeatherWord := false
	for _, w := range weatherWords {
		if strings.Contains(text, w) {
			hasWeatherWord = true
			break
		}
	}
	if !hasWeatherWord || !geo.IsTaiwanCity(text) {
		return "", weather.Today, false
	}
	return geo.NormalizeCity(text), weather.DetectWhen(text), true
}

// SideFeature identifies one of the keyword-triggered features.
type SideFeature int

const (
	FeatureNone SideFeature = iota
	FeatureFortune
	FeatureStock
	FeatureHoroscope
	FeatureVerse
	FeatureCalorie
)

var stockWords = []string{"股價", "股价", "報價", "报价", "股票", "多少錢", "多少钱"}

// stockFillers are question words stripped from the remaining query text.
// Longer phrases first so 是多少 wins over 多少.
var stockFillers = []string{"是多少", "多少", "現在", "现在", "今天", "請問", "请问"}

// MatchSideFeature checks the keyword-triggered features in a fixed order.
// The returned string is the feature argument: the stock query, the zodiac
// sign, or the raw text for calorie extraction.
func MatchSideFeature(text string) (SideFeature, string) {
	if strings.Contains(text, "抽籤") || strings.Contains(text, "求籤") ||
		strings.Contains(text, "運勢籤") || strings.Contains(text, "抽签") ||
		strings.Contains(text, "求签") || strings.Contains(text, "运势签") {
		return FeatureFortune, ""
	}

	for _, w := range stockWords {
		if strings.Contains(text, w) {
			query := text
			for _, sw := range stockWords {
				query = strings.ReplaceAll(query, sw, " ")
			}
			for _, f := range stockFillers {
				query = strings.ReplaceAll(query, f, " ")
			}
			query = strings.Trim(strings.TrimSpace(query), "?？的呢嗎吗")
			if query != "" {
				return FeatureStock, strings.TrimSpace(query)
			}
			return FeatureNone, ""
		}
	}

	if sign, ok := horoscope.ParseSign(text); ok {
		return FeatureHoroscope, sign
	}

	if strings.Contains(text, "經文") || strings.Contains(text, "金句") || strings.Contains(text, "聖經") {
		return FeatureVerse, ""
	}

	if strings.Contains(text, "熱量") || strings.Contains(text, "卡路里") ||
		strings.Contains(text, "大卡") || strings.Contains(text, "吃了") {
		if items := calorie.ExtractItems(text); len(items) > 0 {
			return FeatureCalorie, text
		}
	}

	return FeatureNone, ""
}
