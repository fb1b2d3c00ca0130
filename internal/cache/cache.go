// Package cache provides a small key-value store with expiry, used for
// memoizing expensive computations (horoscope text, calorie estimates, the
// end-of-day stock table) and for the conversation context store. Cache
// absence is never a hard error: readers recompute on miss, and failed
// writes are logged and dropped.
package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a get/set key-value cache with per-entry TTL.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key for ttl. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes key if present.
	Delete(ctx context.Context, key string)
}

// redisStore backs Store with a shared Redis instance, usable across
// multiple bot instances.
type redisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis creates a Store backed by the given Redis client.
func NewRedis(client *redis.Client, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &redisStore{
		client: client,
		logger: logger.With("component", "cache"),
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.WarnContext(ctx, "Cache delete failed", "key", key, "error", err)
	}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// memoryStore is a concurrency-safe in-process Store for single-instance
// deployments without Redis. Expired entries are dropped lazily on read.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemory creates an in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.data[key] = entry
	s.mu.Unlock()
}

func (s *memoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}
