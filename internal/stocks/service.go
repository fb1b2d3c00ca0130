package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/database"
)

// ErrUnknownSymbol is returned when a query matches no listed company.
var ErrUnknownSymbol = errors.New("stocks: unknown symbol")

// listingCacheKey mirrors the end-of-day symbol table into the shared cache
// so other bot instances can resolve names without their own refresh.
const listingCacheKey = "twse:stocks:all"

// Service resolves free-form stock queries to quotes. A query is either a
// 4-digit code ("2330") or a company name fragment ("台積電").
type Service struct {
	client   *Client
	store    database.Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(client *Client, store database.Store, cacheStore cache.Store, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		client:   client,
		store:    store,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "stocks_service"),
	}
}

// Query resolves the query to a code, fetches its quote, and backfills the
// company name from the symbol table when the feed omits it.
func (s *Service) Query(ctx context.Context, query string) (*Quote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrUnknownSymbol
	}

	code := query
	var known *database.Symbol
	if !codePattern.MatchString(query) {
		sym, err := s.store.FindSymbolByName(ctx, query)
		if errors.Is(err, database.ErrSymbolNotFound) {
			sym, err = s.cachedSymbolByName(ctx, query)
		}
		if err != nil {
			if errors.Is(err, database.ErrSymbolNotFound) {
				return nil, ErrUnknownSymbol
			}
			return nil, fmt.Errorf("symbol lookup failed: %w", err)
		}
		known = sym
		code = sym.Code
	}

	quote, err := s.client.FetchQuote(ctx, code)
	if err != nil {
		return nil, err
	}

	if quote.Name == "" {
		if known == nil {
			if sym, symErr := s.store.GetSymbolByCode(ctx, code); symErr == nil {
				known = sym
			}
		}
		if known != nil {
			quote.Name = known.Name
		}
	}

	return quote, nil
}

// cachedSymbolByName searches the cache-mirrored listing for a company name,
// exact match before substring, the same order as the store lookup. This
// covers an instance whose local symbol table has not been refreshed yet but
// shares a cache with one that has.
func (s *Service) cachedSymbolByName(ctx context.Context, name string) (*database.Symbol, error) {
	raw, ok := s.cache.Get(ctx, listingCacheKey)
	if !ok {
		return nil, database.ErrSymbolNotFound
	}

	var symbols []database.Symbol
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		s.logger.WarnContext(ctx, "Discarding unreadable cached listing", "error", err)
		s.cache.Delete(ctx, listingCacheKey)
		return nil, database.ErrSymbolNotFound
	}

	var partial *database.Symbol
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i], nil
		}
		if partial == nil && strings.Contains(symbols[i].Name, name) {
			partial = &symbols[i]
		}
	}
	if partial != nil {
		return partial, nil
	}
	return nil, database.ErrSymbolNotFound
}

// RefreshListing downloads the current exchange listing and replaces the
// symbol table. Returns the number of symbols stored.
func (s *Service) RefreshListing(ctx context.Context) (int, error) {
	symbols, err := s.client.FetchListing(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing refresh failed: %w", err)
	}

	if err := s.store.ReplaceSymbols(ctx, symbols); err != nil {
		return 0, fmt.Errorf("symbol table replace failed: %w", err)
	}

	if raw, err := json.Marshal(symbols); err == nil {
		s.cache.Set(ctx, listingCacheKey, string(raw), s.cacheTTL)
	}

	s.logger.InfoContext(ctx, "Symbol table refreshed", "count", len(symbols))
	return len(symbols), nil
}
