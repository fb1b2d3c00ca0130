package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultGeocodeURL  = "https://api.openweathermap.org/geo/1.0/direct"
	defaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	defaultQuoteURL    = "https://mis.twse.com.tw/stock/api/getStockInfo.jsp"
	defaultListingURL  = "https://www.twse.com.tw/exchangeReport/STOCK_DAY_ALL?response=open_data"

	defaultChatInstruction = "你是 Kevin 的專屬助理,語氣自然、冷靜又帶點幽默。" +
		"你是架在雲端上的 LINE Bot,回答請簡短口語。"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file
// 3. BOT_* environment variables (a local .env file is read first if present)
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow missing config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.webhook_timeout", "30s")

	viper.SetDefault("line.name_prefixes", []string{
		"@KevinBot", "KevinBot", "kevinbot", "Kevin", "kevin", "文哥",
	})

	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.fallback_model", "gemini-2.0-flash-lite")
	viper.SetDefault("gemini.temperature", 1.0)
	viper.SetDefault("gemini.chat_instruction", defaultChatInstruction)
	viper.SetDefault("gemini.chat_timeout", "25s")
	viper.SetDefault("gemini.max_retries", 2)
	viper.SetDefault("gemini.retry_delay_seconds", 2)

	viper.SetDefault("weather.geocode_url", defaultGeocodeURL)
	viper.SetDefault("weather.forecast_url", defaultForecastURL)
	viper.SetDefault("weather.timeout", "10s")

	viper.SetDefault("database.path", "storage.db")

	viper.SetDefault("stocks.quote_url", defaultQuoteURL)
	viper.SetDefault("stocks.listing_url", defaultListingURL)
	viper.SetDefault("stocks.cache_ttl", "24h")
	viper.SetDefault("stocks.timeout", "30s")

	viper.SetDefault("context.ttl", "30m")

	viper.SetDefault("scheduler.enabled", false)
	viper.SetDefault("scheduler.cron", "30 15 * * *")
}
