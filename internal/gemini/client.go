// Package gemini implements integration with Google's Gemini API. It covers
// the bot's language tasks: weather intent classification, free-form chat,
// daily horoscope readings, and calorie estimates.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/weather"
)

// ErrNotConfigured is returned by every operation when no API key was
// configured. Callers turn it into a fixed user-facing message.
var ErrNotConfigured = errors.New("gemini: api key not configured")

// WeatherIntent is a classified weather question: which city and which day.
type WeatherIntent struct {
	City string
	When weather.When
}

// HoroscopeReading is a generated daily reading for one zodiac sign.
type HoroscopeReading struct {
	Sign        string `json:"sign"`
	Date        string `json:"date"`
	Overall     string `json:"overall"`
	Love        string `json:"love"`
	Career      string `json:"career"`
	Wealth      string `json:"wealth"`
	LuckyColor  string `json:"lucky_color"`
	LuckyNumber int    `json:"lucky_number"`
	Advice      string `json:"advice"`
}

// CalorieItem is an estimated calorie range for one food item.
type CalorieItem struct {
	Name    string  `json:"name"`
	KcalMin float64 `json:"kcal_min"`
	KcalMax float64 `json:"kcal_max"`
	Note    string  `json:"note"`
}

// Client defines the language-model operations used throughout the bot.
type Client interface {
	// ClassifyWeatherIntent returns the parsed intent, or nil when the
	// message is not a weather question.
	ClassifyWeatherIntent(ctx context.Context, message string) (*WeatherIntent, error)

	Chat(ctx context.Context, message string) (string, error)

	GenerateHoroscope(ctx context.Context, sign, date string) (*HoroscopeReading, error)

	GenerateCalories(ctx context.Context, items []string) ([]CalorieItem, error)
}

// disabledClient stands in when no API key is configured.
type disabledClient struct{}

func (disabledClient) ClassifyWeatherIntent(context.Context, string) (*WeatherIntent, error) {
	return nil, ErrNotConfigured
}

func (disabledClient) Chat(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (disabledClient) GenerateHoroscope(context.Context, string, string) (*HoroscopeReading, error) {
	return nil, ErrNotConfigured
}

func (disabledClient) GenerateCalories(context.Context, []string) ([]CalorieItem, error) {
	return nil, ErrNotConfigured
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	temperature   float32
	chatConfig    *genai.GenerateContentConfig
	modelName     string
	fallbackModel string
	chatTimeout   time.Duration
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client from the application configuration. A
// missing API key is not a boot error: the returned client answers every call
// with ErrNotConfigured so the language features degrade to fixed messages
// while the rest of the bot keeps working.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.APIKey == "" {
		log.Warn("Gemini API key not configured, language features disabled")
		return disabledClient{}, nil
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	chatCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
	}
	if cfg.ChatInstruction != "" {
		chatCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.ChatInstruction}}}
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		temperature:   cfg.Temperature,
		chatConfig:    chatCfg,
		modelName:     cfg.Model,
		fallbackModel: cfg.FallbackModel,
		chatTimeout:   cfg.ChatTimeout,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			c.log.ErrorContext(ctx, "Gemini API call failed after max retries with APIError", "error", err, "code", apiErr.Code)
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *sdkClient) ClassifyWeatherIntent(ctx context.Context, message string) (*WeatherIntent, error) {
	c.log.DebugContext(ctx, "Classifying weather intent")

	zero := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:       &zero,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: WeatherIntentInstruction}}},
	}
	contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("weather intent classification failed: %w", err)
	}

	text, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("weather intent classification failed: %w", err)
	}

	return ParseIntentReply(text), nil
}

// ParseIntentReply parses the classifier's one-line reply. Anything that does
// not match the WEATHER|city|when contract is treated as "not a weather
// question" rather than an error, since the model occasionally free-texts.
func ParseIntentReply(raw string) *WeatherIntent {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" || strings.EqualFold(line, "NO") {
		return nil
	}

	parts := strings.Split(line, "|")
	if len(parts) != 3 || !strings.EqualFold(strings.TrimSpace(parts[0]), "WEATHER") {
		return nil
	}

	city := strings.TrimSpace(parts[1])
	if city == "" {
		return nil
	}

	return &WeatherIntent{
		City: city,
		When: weather.ParseWhen(strings.TrimSpace(parts[2])),
	}
}

func (c *sdkClient) Chat(ctx context.Context, message string) (string, error) {
	c.log.DebugContext(ctx, "Generating chat reply")

	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, c.chatConfig)
	if err != nil && c.fallbackModel != "" && ctx.Err() == nil {
		c.log.WarnContext(ctx, "Primary chat model failed, trying fallback", "fallback_model", c.fallbackModel, "error", err)
		resp, err = c.generateContentWithRetries(ctx, c.fallbackModel, contents, c.chatConfig)
	}
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

var horoscopeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overall":      {Type: genai.TypeString, Description: "整體運勢,一到兩句。"},
		"love":         {Type: genai.TypeString, Description: "愛情運勢。"},
		"career":       {Type: genai.TypeString, Description: "事業學業運勢。"},
		"wealth":       {Type: genai.TypeString, Description: "財運。"},
		"lucky_color":  {Type: genai.TypeString, Description: "幸運色。"},
		"lucky_number": {Type: genai.TypeInteger, Description: "1 到 99 的幸運數字。"},
		"advice":       {Type: genai.TypeString, Description: "給這個星座今天的一句建議。"},
	},
	Required: []string{"overall", "love", "career", "wealth", "lucky_color", "lucky_number", "advice"},
}

func (c *sdkClient) GenerateHoroscope(ctx context.Context, sign, date string) (*HoroscopeReading, error) {
	c.log.DebugContext(ctx, "Generating horoscope", "sign", sign, "date", date)

	cfg := &genai.GenerateContentConfig{
		Temperature:       &c.temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: HoroscopeInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    horoscopeSchema,
	}
	prompt := fmt.Sprintf("星座:%s\n日期:%s", sign, date)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("horoscope generation failed: %w", err)
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to extract horoscope response: %w", err)
	}

	var reading HoroscopeReading
	if err := json.Unmarshal([]byte(jsonText), &reading); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse horoscope JSON from Gemini response", "error", err, "response_text", jsonText)
		return nil, fmt.Errorf("invalid horoscope JSON received: %w", err)
	}
	reading.Sign = sign
	reading.Date = date

	return &reading, nil
}

var calorieListSchema = &genai.Schema{
	Type:        genai.TypeArray,
	Description: "每一項食物的熱量估算。",
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":     {Type: genai.TypeString, Description: "食物名稱,照輸入原樣。"},
			"kcal_min": {Type: genai.TypeNumber, Description: "估算熱量下限,大卡。"},
			"kcal_max": {Type: genai.TypeNumber, Description: "估算熱量上限,大卡。"},
			"note":     {Type: genai.TypeString, Description: "一句話的估算說明。"},
		},
		Required: []string{"name", "kcal_min", "kcal_max", "note"},
	},
}

func (c *sdkClient) GenerateCalories(ctx context.Context, items []string) ([]CalorieItem, error) {
	c.log.DebugContext(ctx, "Generating calorie estimates", "item_count", len(items))
	if len(items) == 0 {
		return nil, fmt.Errorf("no food items provided")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       &c.temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: CalorieInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    calorieListSchema,
	}
	prompt := "食物清單:\n" + strings.Join(items, "\n")
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("calorie generation failed: %w", err)
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to extract calorie response: %w", err)
	}

	var estimates []CalorieItem
	if err := json.Unmarshal([]byte(jsonText), &estimates); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse calorie JSON array from Gemini response", "error", err, "response_text", jsonText)
		return nil, fmt.Errorf("invalid calorie JSON array received: %w", err)
	}

	return estimates, nil
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("request blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}
