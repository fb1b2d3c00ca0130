package horoscope

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/gemini"
)

// readingTTL keeps a reading cached well past the day it covers so late-night
// requests near midnight still hit.
const readingTTL = 36 * time.Hour

// Service produces one reading per sign per day. Generation goes through
// Gemini; results are memoized in the cache so every user asking about the
// same sign on the same day sees the same text.
type Service struct {
	ai     gemini.Client
	cache  cache.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(ai gemini.Client, cacheStore cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		ai:     ai,
		cache:  cacheStore,
		logger: logger.With("component", "horoscope_service"),
		now:    time.Now,
	}
}

// Reading returns today's reading for the canonical sign name (without 座).
func (s *Service) Reading(ctx context.Context, sign string) (*gemini.HoroscopeReading, error) {
	return s.readingFor(ctx, sign, s.today())
}

func (s *Service) readingFor(ctx context.Context, sign, date string) (*gemini.HoroscopeReading, error) {
	key := cacheKey(sign, date)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var reading gemini.HoroscopeReading
		if err := json.Unmarshal([]byte(raw), &reading); err == nil {
			return &reading, nil
		}
		s.logger.WarnContext(ctx, "Discarding unreadable cached horoscope", "key", key)
		s.cache.Delete(ctx, key)
	}

	reading, err := s.ai.GenerateHoroscope(ctx, sign, date)
	if err != nil {
		return nil, fmt.Errorf("horoscope for %s座 failed: %w", sign, err)
	}

	if raw, err := json.Marshal(reading); err == nil {
		s.cache.Set(ctx, key, string(raw), readingTTL)
	}

	return reading, nil
}

// Pregenerate warms the cache for every sign on the given date. Used by the
// maintenance job so the first morning request is already cached. Individual
// sign failures are logged and skipped.
func (s *Service) Pregenerate(ctx context.Context, date string) int {
	generated := 0
	for _, sign := range Signs {
		if _, err := s.readingFor(ctx, sign, date); err != nil {
			s.logger.WarnContext(ctx, "Horoscope pregeneration failed for sign", "sign", sign, "error", err)
			continue
		}
		generated++
	}
	return generated
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func cacheKey(sign, date string) string {
	return "horoscope:" + sign + ":" + date
}
