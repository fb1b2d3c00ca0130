package bot_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/kevinchw/kevinbot/internal/bot"
	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/calorie"
	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/fortune"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/geo"
	"github.com/kevinchw/kevinbot/internal/horoscope"
	"github.com/kevinchw/kevinbot/internal/verse"
	"github.com/kevinchw/kevinbot/internal/weather"
)

// fakeReplier records every delivered message.
type fakeReplier struct {
	texts []string
}

func (f *fakeReplier) Reply(_ context.Context, _, _ string, messages ...messaging_api.MessageInterface) {
	for _, m := range messages {
		if tm, ok := m.(*messaging_api.TextMessage); ok {
			f.texts = append(f.texts, tm.Text)
		} else {
			f.texts = append(f.texts, "<non-text>")
		}
	}
}

func (f *fakeReplier) ReplyText(ctx context.Context, replyToken, chatID, text string) {
	f.Reply(ctx, replyToken, chatID, &messaging_api.TextMessage{Text: text})
}

// fakeAI counts classifier calls so tests can assert the fast paths never
// reach the model.
type fakeAI struct {
	classifyCalls int
	intent        *gemini.WeatherIntent
	chatReply     string
}

func (f *fakeAI) ClassifyWeatherIntent(_ context.Context, _ string) (*gemini.WeatherIntent, error) {
	f.classifyCalls++
	return f.intent, nil
}

func (f *fakeAI) Chat(_ context.Context, _ string) (string, error) {
	if f.chatReply == "" {
		return "", errors.New("chat not stubbed")
	}
	return f.chatReply, nil
}

func (f *fakeAI) GenerateHoroscope(_ context.Context, sign, date string) (*gemini.HoroscopeReading, error) {
	return &gemini.HoroscopeReading{Sign: sign, Date: date, Overall: "平順"}, nil
}

func (f *fakeAI) GenerateCalories(_ context.Context, items []string) ([]gemini.CalorieItem, error) {
	out := make([]gemini.CalorieItem, len(items))
	for i, item := range items {
		out[i] = gemini.CalorieItem{Name: item, KcalMin: 80, KcalMax: 120}
	}
	return out, nil
}

// forecastHandler serves a minimal valid forecast payload.
func forecastHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		base := time.Now().UTC().Truncate(24*time.Hour).Unix() + 4*3600 // 12:00 Taipei
		payload := map[string]any{
			"city": map[string]any{"name": "臺北市", "timezone": 28800},
			"list": []map[string]any{
				{
					"dt":      base,
					"main":    map[string]any{"temp": 24.5, "feels_like": 25.0, "humidity": 70.0},
					"weather": []map[string]any{{"description": "多雲"}},
					"pop":     0.3,
				},
				{
					"dt":      base + 86400,
					"main":    map[string]any{"temp": 20.0, "feels_like": 19.0, "humidity": 80.0},
					"weather": []map[string]any{{"description": "小雨"}},
					"pop":     0.6,
				},
				{
					"dt":      base + 2*86400,
					"main":    map[string]any{"temp": 18.0, "feels_like": 16.5, "humidity": 85.0},
					"weather": []map[string]any{{"description": "陰"}},
					"pop":     0.1,
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func geocodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "Taipei", "local_names": map[string]string{"zh": "台北"}, "lat": 25.03, "lon": 121.56},
		})
	}
}

type botFixture struct {
	bot      *bot.Bot
	replier  *fakeReplier
	ai       *fakeAI
	ctxStore *bot.ContextStore
}

func newBotFixture(t *testing.T, geocodeURL, forecastURL string) *botFixture {
	t.Helper()

	replier := &fakeReplier{}
	ai := &fakeAI{}
	cacheStore := cache.NewMemory()
	ctxStore := bot.NewContextStore(cacheStore, 30*time.Minute)

	resolver := geo.NewResolver(geo.NewOpenWeatherGeocoder("test-key", geocodeURL, 5*time.Second, nil), nil)
	forecasts := weather.NewClient("test-key", forecastURL, 5*time.Second, nil)

	lineCfg := config.LineConfig{
		BotUserID:    "Ubot",
		NamePrefixes: []string{"KevinBot", "文哥"},
	}

	return &botFixture{
		bot: bot.New(
			lineCfg, ai, replier, resolver, forecasts,
			nil, // stocks untouched by these tests
			horoscope.NewService(ai, cacheStore, nil),
			calorie.NewService(ai, cacheStore, nil),
			fortune.NewDrawer(),
			verse.NewPicker(),
			ctxStore,
			nil,
		),
		replier:  replier,
		ai:       ai,
		ctxStore: ctxStore,
	}
}

// parseEvents builds webhook events the same way the webhook endpoint does,
// by unmarshaling a callback payload.
func parseEvents(t *testing.T, payload string) []webhook.EventInterface {
	t.Helper()
	var cb webhook.CallbackRequest
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		t.Fatalf("unmarshal callback payload: %v", err)
	}
	return cb.Events
}

func userTextEvents(t *testing.T, text string) []webhook.EventInterface {
	t.Helper()
	payload := map[string]any{
		"destination": "Ubot",
		"events": []map[string]any{{
			"type":       "message",
			"mode":       "active",
			"timestamp":  1700000000000,
			"source":     map[string]any{"type": "user", "userId": "U1"},
			"replyToken": "reply-token",
			"message":    map[string]any{"type": "text", "id": "m1", "text": text},
		}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal callback payload: %v", err)
	}
	return parseEvents(t, string(raw))
}

func groupTextEvents(t *testing.T, text string, mentionees []map[string]any) []webhook.EventInterface {
	t.Helper()
	message := map[string]any{"type": "text", "id": "m1", "text": text}
	if mentionees != nil {
		message["mention"] = map[string]any{"mentionees": mentionees}
	}
	payload := map[string]any{
		"destination": "Ubot",
		"events": []map[string]any{{
			"type":       "message",
			"mode":       "active",
			"timestamp":  1700000000000,
			"source":     map[string]any{"type": "group", "groupId": "G1", "userId": "U1"},
			"replyToken": "reply-token",
			"message":    message,
		}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal callback payload: %v", err)
	}
	return parseEvents(t, string(raw))
}

func TestFastWeatherPathSkipsClassifier(t *testing.T) {
	t.Parallel()

	geocodeSrv := httptest.NewServer(geocodeHandler())
	defer geocodeSrv.Close()
	forecastSrv := httptest.NewServer(forecastHandler(t))
	defer forecastSrv.Close()

	fx := newBotFixture(t, geocodeSrv.URL, forecastSrv.URL)

	fx.bot.HandleEvents(context.Background(), userTextEvents(t, "台北天氣如何"))

	if fx.ai.classifyCalls != 0 {
		t.Errorf("classifier called %d times on the fast path, want 0", fx.ai.classifyCalls)
	}
	if len(fx.replier.texts) != 1 {
		t.Fatalf("got %d replies, want 1: %v", len(fx.replier.texts), fx.replier.texts)
	}
	reply := fx.replier.texts[0]
	if !strings.Contains(reply, "今日天氣") || !strings.Contains(reply, "穿搭建議") {
		t.Errorf("weather reply missing sections: %q", reply)
	}

	// A successful answer must establish context for follow-ups.
	if _, ok := fx.ctxStore.Get(context.Background(), "U1"); !ok {
		t.Error("context not stored after weather answer")
	}
}

func TestFollowUpReusesStoredContext(t *testing.T) {
	t.Parallel()

	forecastSrv := httptest.NewServer(forecastHandler(t))
	defer forecastSrv.Close()
	geocodeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("geocoder hit on a follow-up with stored context")
	}))
	defer geocodeSrv.Close()

	fx := newBotFixture(t, geocodeSrv.URL, forecastSrv.URL)
	fx.ctxStore.Put(context.Background(), "U1", geo.Location{
		Name: "高雄市", Lat: 22.63, Lon: 120.30, HasCoords: true, Taiwan: true,
	})

	fx.bot.HandleEvents(context.Background(), userTextEvents(t, "那後天呢？"))

	if fx.ai.classifyCalls != 0 {
		t.Errorf("classifier called on follow-up, want 0 calls")
	}
	if len(fx.replier.texts) != 1 {
		t.Fatalf("got %d replies, want 1", len(fx.replier.texts))
	}
	reply := fx.replier.texts[0]
	if !strings.Contains(reply, "高雄市") || !strings.Contains(reply, "後天天氣") {
		t.Errorf("follow-up reply wrong: %q", reply)
	}
}

func TestGroupMessageWithoutMentionDropped(t *testing.T) {
	t.Parallel()

	fx := newBotFixture(t, "http://invalid.test", "http://invalid.test")

	fx.bot.HandleEvents(context.Background(), groupTextEvents(t, "台北天氣如何", nil))

	if len(fx.replier.texts) != 0 {
		t.Errorf("unaddressed group message answered: %v", fx.replier.texts)
	}
	if fx.ai.classifyCalls != 0 {
		t.Error("classifier called for an unaddressed group message")
	}
}

func TestGroupMessageGate(t *testing.T) {
	t.Parallel()

	geocodeSrv := httptest.NewServer(geocodeHandler())
	defer geocodeSrv.Close()
	forecastSrv := httptest.NewServer(forecastHandler(t))
	defer forecastSrv.Close()

	t.Run("name prefix", func(t *testing.T) {
		t.Parallel()
		fx := newBotFixture(t, geocodeSrv.URL, forecastSrv.URL)
		fx.bot.HandleEvents(context.Background(), groupTextEvents(t, "KevinBot 台北天氣", nil))
		if len(fx.replier.texts) != 1 {
			t.Fatalf("prefixed group message not answered: %v", fx.replier.texts)
		}
	})

	t.Run("structured mention", func(t *testing.T) {
		t.Parallel()
		fx := newBotFixture(t, geocodeSrv.URL, forecastSrv.URL)
		mentionees := []map[string]any{
			{"type": "user", "index": 0, "length": 4, "userId": "Ubot", "isSelf": true},
		}
		fx.bot.HandleEvents(context.Background(), groupTextEvents(t, "@bot 台北天氣", mentionees))
		if len(fx.replier.texts) != 1 {
			t.Fatalf("mentioned group message not answered: %v", fx.replier.texts)
		}
	})
}

func TestLocationMessageAnswersToday(t *testing.T) {
	t.Parallel()

	forecastSrv := httptest.NewServer(forecastHandler(t))
	defer forecastSrv.Close()

	fx := newBotFixture(t, "http://invalid.test", forecastSrv.URL)

	payload := `{
		"destination": "Ubot",
		"events": [{
			"type": "message",
			"mode": "active",
			"timestamp": 1700000000000,
			"source": {"type": "user", "userId": "U1"},
			"replyToken": "reply-token",
			"message": {
				"type": "location",
				"id": "m2",
				"address": "台北市信義區",
				"latitude": 25.03,
				"longitude": 121.56
			}
		}]
	}`
	fx.bot.HandleEvents(context.Background(), parseEvents(t, payload))

	if len(fx.replier.texts) != 1 {
		t.Fatalf("got %d replies, want 1", len(fx.replier.texts))
	}
	if !strings.Contains(fx.replier.texts[0], "台北市信義區") {
		t.Errorf("location reply missing address: %q", fx.replier.texts[0])
	}
}

func TestUnconfiguredModelDegradesToFixedMessage(t *testing.T) {
	t.Parallel()

	ai, err := gemini.NewClient(context.Background(), config.GeminiConfig{}, nil)
	if err != nil {
		t.Fatalf("NewClient without API key returned error: %v", err)
	}

	replier := &fakeReplier{}
	cacheStore := cache.NewMemory()
	b := bot.New(
		config.LineConfig{}, ai, replier, nil, nil, nil,
		horoscope.NewService(ai, cacheStore, nil),
		calorie.NewService(ai, cacheStore, nil),
		fortune.NewDrawer(), verse.NewPicker(),
		bot.NewContextStore(cacheStore, 30*time.Minute),
		nil,
	)

	inputs := []string{"你好啊", "天蠍座今日運勢", "我今天吃了雞排和珍奶"}
	for _, input := range inputs {
		b.HandleEvents(context.Background(), userTextEvents(t, input))
	}

	if len(replier.texts) != len(inputs) {
		t.Fatalf("got %d replies, want %d: %v", len(replier.texts), len(inputs), replier.texts)
	}
	for i, reply := range replier.texts {
		if !strings.Contains(reply, "沒有設定") {
			t.Errorf("reply to %q = %q, want the not-configured message", inputs[i], reply)
		}
	}
}

func TestMatchFollowUp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		when  weather.When
		ok    bool
	}{
		{"那明天呢", weather.Tomorrow, true},
		{"那後天呢？", weather.DayAfter, true},
		{"明天呢?", weather.Tomorrow, true},
		{"今天咧", weather.Today, true},
		{"那麼明天的天氣", weather.Tomorrow, true},
		{"明天要去台北", weather.Today, false},
		{"天氣如何", weather.Today, false},
		{"", weather.Today, false},
	}

	for _, tc := range testCases {
		when, ok := bot.MatchFollowUp(tc.input)
		if ok != tc.ok || (ok && when != tc.when) {
			t.Errorf("MatchFollowUp(%q) = (%v, %v), want (%v, %v)", tc.input, when, ok, tc.when, tc.ok)
		}
	}
}

func TestMatchFastWeather(t *testing.T) {
	t.Parallel()

	city, when, ok := bot.MatchFastWeather("高雄後天會不會下雨")
	if !ok || city != "Kaohsiung" || when != weather.DayAfter {
		t.Errorf("got (%q, %v, %v), want (Kaohsiung, day_after, true)", city, when, ok)
	}

	if _, _, ok := bot.MatchFastWeather("東京天氣"); ok {
		t.Error("fast path matched a non-Taiwan city")
	}
	if _, _, ok := bot.MatchFastWeather("我愛台北"); ok {
		t.Error("fast path matched without a weather word")
	}
}

func TestMatchSideFeature(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		feature bot.SideFeature
		arg     string
	}{
		{"fortune", "我要抽籤", bot.FeatureFortune, ""},
		{"fortune luck lot", "給我一張運勢籤", bot.FeatureFortune, ""},
		{"stock by name", "台積電股價", bot.FeatureStock, "台積電"},
		{"stock by code", "股價 2330", bot.FeatureStock, "2330"},
		{"stock how much", "台積電股價多少", bot.FeatureStock, "台積電"},
		{"stock how much exactly", "請問台積電股價是多少?", bot.FeatureStock, "台積電"},
		{"stock money question", "台積電多少錢", bot.FeatureStock, "台積電"},
		{"stock bare trigger", "股票多少錢", bot.FeatureNone, ""},
		{"horoscope", "天蠍座今日運勢", bot.FeatureHoroscope, "天蠍"},
		{"verse", "給我一句經文", bot.FeatureVerse, ""},
		{"calorie", "雞腿便當熱量多少", bot.FeatureCalorie, "雞腿便當熱量多少"},
		{"calorie from ate phrase", "我今天吃了雞排和珍奶", bot.FeatureCalorie, "我今天吃了雞排和珍奶"},
		{"plain chat", "你好啊", bot.FeatureNone, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			feature, arg := bot.MatchSideFeature(tc.input)
			if feature != tc.feature || arg != tc.arg {
				t.Errorf("MatchSideFeature(%q) = (%v, %q), want (%v, %q)", tc.input, feature, arg, tc.feature, tc.arg)
			}
		})
	}
}
