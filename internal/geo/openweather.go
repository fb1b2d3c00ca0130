package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// OpenWeatherGeocoder implements Geocoder against OpenWeather's direct
// geocoding API.
type OpenWeatherGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenWeatherGeocoder creates a geocoder client. baseURL points at the
// /geo/1.0/direct endpoint.
func NewOpenWeatherGeocoder(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *OpenWeatherGeocoder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpenWeatherGeocoder{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "geocoder"),
	}
}

// Lookup queries the geocoder for a single best match. It returns
// (nil, nil) when the provider answers with an empty result list.
func (g *OpenWeatherGeocoder) Lookup(ctx context.Context, query string) (*Result, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", "1")
	values.Set("appid", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload []struct {
		Name       string            `json:"name"`
		LocalNames map[string]string `json:"local_names"`
		Lat        float64           `json:"lat"`
		Lon        float64           `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil
	}

	match := payload[0]
	name := match.Name
	if zh, ok := match.LocalNames["zh"]; ok && zh != "" {
		name = zh
	}

	return &Result{Lat: match.Lat, Lon: match.Lon, Name: name}, nil
}
