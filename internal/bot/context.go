package bot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/geo"
)

// storedLocation is the cache representation of a resolved location.
type storedLocation struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	HasCoords bool    `json:"has_coords"`
	Island    bool    `json:"island"`
	Taiwan    bool    `json:"taiwan"`
}

// ContextStore remembers each user's last successfully resolved location so
// bare follow-ups ("那明天呢?") can reuse it. Entries expire after the
// configured TTL.
type ContextStore struct {
	cache cache.Store
	ttl   time.Duration
}

func NewContextStore(cacheStore cache.Store, ttl time.Duration) *ContextStore {
	return &ContextStore{cache: cacheStore, ttl: ttl}
}

func contextKey(userID string) string { return "ctx:" + userID }

// Put records the user's last resolved location.
func (s *ContextStore) Put(ctx context.Context, userID string, loc geo.Location) {
	if userID == "" {
		return
	}
	raw, err := json.Marshal(storedLocation{
		Name:      loc.Name,
		Lat:       loc.Lat,
		Lon:       loc.Lon,
		HasCoords: loc.HasCoords,
		Island:    loc.Island,
		Taiwan:    loc.Taiwan,
	})
	if err != nil {
		return
	}
	s.cache.Set(ctx, contextKey(userID), string(raw), s.ttl)
}

// Get returns the user's last resolved location, if still fresh.
func (s *ContextStore) Get(ctx context.Context, userID string) (*geo.Location, bool) {
	if userID == "" {
		return nil, false
	}
	raw, ok := s.cache.Get(ctx, contextKey(userID))
	if !ok {
		return nil, false
	}
	var stored storedLocation
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.cache.Delete(ctx, contextKey(userID))
		return nil, false
	}
	return &geo.Location{
		Name:      stored.Name,
		Lat:       stored.Lat,
		Lon:       stored.Lon,
		HasCoords: stored.HasCoords,
		Island:    stored.Island,
		Taiwan:    stored.Taiwan,
	}, true
}
