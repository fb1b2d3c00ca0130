// Package config provides configuration loading, validation, and management
// for the KevinBot application. Values come from defaults, an optional
// config.yaml, and BOT_-prefixed environment variables.
package config

import (
	"time"
)

// Config defines the application configuration parameters for all components
// of the bot: logging, HTTP server, LINE channel, Gemini integration, weather
// providers, cache, storage, stocks, and scheduled maintenance.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Line      LineConfig      `mapstructure:"line"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Stocks    StocksConfig    `mapstructure:"stocks"`
	Context   ContextConfig   `mapstructure:"context"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port           string        `mapstructure:"port"            validate:"required"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout" validate:"min=1s,max=5m"`
}

// LineConfig holds LINE channel credentials and the identity used for the
// group-chat access gate.
type LineConfig struct {
	ChannelSecret string `mapstructure:"channel_secret" validate:"required"`
	ChannelToken  string `mapstructure:"channel_token"  validate:"required"`

	// BotUserID is the bot's own LINE user ID, matched against structured
	// mention objects in group messages.
	BotUserID string `mapstructure:"bot_user_id"`

	// NamePrefixes are leading name tokens that count as addressing the bot
	// in group/room chats ("KevinBot 桃園 明天天氣").
	NamePrefixes []string `mapstructure:"name_prefixes"`
}

// GeminiConfig holds settings for the Gemini API client.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"               validate:"required"`
	FallbackModel     string        `mapstructure:"fallback_model"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	ChatInstruction   string        `mapstructure:"chat_instruction"`
	ChatTimeout       time.Duration `mapstructure:"chat_timeout"        validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=5"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// WeatherConfig holds OpenWeather credentials and endpoints.
type WeatherConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	GeocodeURL  string        `mapstructure:"geocode_url"  validate:"required,url"`
	ForecastURL string        `mapstructure:"forecast_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s,max=1m"`
}

// RedisConfig holds cache connection settings. An empty Addr selects the
// in-memory cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig holds SQLite settings for the symbol table.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// StocksConfig holds TWSE endpoints and the maintenance-endpoint secret.
type StocksConfig struct {
	QuoteURL      string        `mapstructure:"quote_url"   validate:"required,url"`
	ListingURL    string        `mapstructure:"listing_url" validate:"required,url"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"   validate:"min=1m"`
	Timeout       time.Duration `mapstructure:"timeout"     validate:"min=1s,max=2m"`
}

// ContextConfig controls the per-user conversation context store.
type ContextConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"min=1m,max=24h"`
}

// SchedulerConfig controls the in-process maintenance job.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Cron is a standard five-field cron expression evaluated in server time.
	Cron string `mapstructure:"cron"`
}
