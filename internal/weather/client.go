package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoAPIKey is returned when the forecast provider credential is not
// configured. Callers turn it into a fixed user-facing message.
var ErrNoAPIKey = errors.New("weather: api key not configured")

// Sample is one forecast time-slot, sourced verbatim from the provider.
// Numeric fields are pointers so a missing field can be skipped in
// aggregation instead of being read as zero.
type Sample struct {
	Epoch       int64
	Temp        *float64
	FeelsLike   *float64
	Humidity    *float64
	Description string
	Pop         float64
}

// Forecast is a provider response: a local-time offset and a time-ordered
// list of multi-day samples.
type Forecast struct {
	City           string
	TimezoneOffset int64
	Samples        []Sample
}

// Client fetches forecasts from OpenWeather's free-plan forecast API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a forecast client. baseURL points at /data/2.5/forecast.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "forecast_client"),
	}
}

// Configured reports whether a provider credential is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// ByCoords fetches the forecast for a coordinate pair.
func (c *Client) ByCoords(ctx context.Context, lat, lon float64) (*Forecast, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.fetch(ctx, values)
}

// ByQuery fetches the forecast for a "city" or "city,CC" query string. Used
// as the degraded path when geocoding failed entirely.
func (c *Client) ByQuery(ctx context.Context, query string) (*Forecast, error) {
	values := url.Values{}
	values.Set("q", query)
	return c.fetch(ctx, values)
}

func (c *Client) fetch(ctx context.Context, values url.Values) (*Forecast, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	values.Set("units", "metric")
	values.Set("lang", "zh_tw")
	values.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WarnContext(ctx, "Forecast provider returned non-success status",
			"status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("forecast request returned status %d", resp.StatusCode)
	}

	var payload struct {
		City struct {
			Name     string `json:"name"`
			Timezone int64  `json:"timezone"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      *float64 `json:"temp"`
				FeelsLike *float64 `json:"feels_like"`
				Humidity  *float64 `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Pop *float64 `json:"pop"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	forecast := &Forecast{
		City:           payload.City.Name,
		TimezoneOffset: payload.City.Timezone,
		Samples:        make([]Sample, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		sample := Sample{
			Epoch:     item.Dt,
			Temp:      item.Main.Temp,
			FeelsLike: item.Main.FeelsLike,
			Humidity:  item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
		}
		if item.Pop != nil {
			sample.Pop = *item.Pop
		}
		forecast.Samples = append(forecast.Samples, sample)
	}

	return forecast, nil
}
