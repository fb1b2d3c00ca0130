package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// ErrNoMatch is returned when every resolution attempt fails. It is a
// normal, expected outcome for unknown place names, not an upstream error.
var ErrNoMatch = errors.New("geo: no match for location")

// Result is one remote geocoder match.
type Result struct {
	Lat  float64
	Lon  float64
	Name string
}

// Geocoder is the remote lookup used by the resolver. Implementations
// return (nil, nil) when the provider answered but found nothing.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*Result, error)
}

// Location is a resolved place. When HasCoords is false, Name must still be
// usable as a provider location query.
type Location struct {
	Name      string
	Lat       float64
	Lon       float64
	HasCoords bool
	Island    bool
	Taiwan    bool
}

// Resolver turns a cleaned city mention into coordinates by running an
// ordered list of attempts until one succeeds. Remote failures inside an
// attempt fall through to the next attempt instead of failing resolution.
type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given remote geocoder.
func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		geocoder: geocoder,
		logger:   logger.With("component", "geo_resolver"),
	}
}

type attempt struct {
	name string
	run  func(ctx context.Context, city string) *Location
}

func (r *Resolver) attempts() []attempt {
	return []attempt{
		{"island_table", r.tryIsland},
		{"literal_query", r.tryLiteral},
		{"country_hint", r.tryCountryHint},
		{"taiwan_qualified", r.tryTaiwan},
		{"bare_query", r.tryBare},
	}
}

// Resolve runs the attempt chain for a city mention. The mention may be raw
// or already normalized; it is cleaned once up front.
func (r *Resolver) Resolve(ctx context.Context, city string) (*Location, error) {
	cleaned := NormalizeCity(city)
	if cleaned == "" {
		return nil, ErrNoMatch
	}

	for _, a := range r.attempts() {
		if loc := a.run(ctx, cleaned); loc != nil {
			r.logger.DebugContext(ctx, "Location resolved", "city", cleaned, "attempt", a.name, "name", loc.Name)
			return loc, nil
		}
	}

	return nil, ErrNoMatch
}

func (r *Resolver) tryIsland(_ context.Context, city string) *Location {
	island, ok := IslandByName(city)
	if !ok {
		return nil
	}
	return &Location{
		Name:      island.Name,
		Lat:       island.Lat,
		Lon:       island.Lon,
		HasCoords: true,
		Island:    true,
		Taiwan:    true,
	}
}

// tryLiteral geocodes inputs like "Japan Tokyo" or "Tokyo Japan" verbatim.
func (r *Resolver) tryLiteral(ctx context.Context, city string) *Location {
	if !strings.Contains(city, " ") {
		return nil
	}
	return r.remote(ctx, city, false)
}

func (r *Resolver) tryCountryHint(ctx context.Context, city string) *Location {
	hint, ok := CountryHint(city)
	if !ok {
		return nil
	}
	return r.remote(ctx, hint, false)
}

// tryTaiwan qualifies known Taiwan cities with ",TW" to avoid collisions
// with identically named places elsewhere.
func (r *Resolver) tryTaiwan(ctx context.Context, city string) *Location {
	canonical, ok := CanonicalTaiwanCity(city)
	if !ok {
		return nil
	}
	return r.remote(ctx, canonical+",TW", true)
}

func (r *Resolver) tryBare(ctx context.Context, city string) *Location {
	return r.remote(ctx, city, false)
}

func (r *Resolver) remote(ctx context.Context, query string, taiwan bool) *Location {
	result, err := r.geocoder.Lookup(ctx, query)
	if err != nil {
		r.logger.WarnContext(ctx, "Geocoder attempt failed, falling through", "query", query, "error", err)
		return nil
	}
	if result == nil {
		return nil
	}
	return &Location{
		Name:      result.Name,
		Lat:       result.Lat,
		Lon:       result.Lon,
		HasCoords: true,
		Taiwan:    taiwan,
	}
}
