package stocks_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/database"
	"github.com/kevinchw/kevinbot/internal/stocks"
)

type stubStore struct {
	byCode   map[string]database.Symbol
	byName   map[string]database.Symbol
	replaced []database.Symbol
}

func (s *stubStore) Ping(context.Context) error { return nil }

func (s *stubStore) ReplaceSymbols(_ context.Context, symbols []database.Symbol) error {
	s.replaced = symbols
	return nil
}

func (s *stubStore) GetSymbolByCode(_ context.Context, code string) (*database.Symbol, error) {
	if sym, ok := s.byCode[code]; ok {
		return &sym, nil
	}
	return nil, database.ErrSymbolNotFound
}

func (s *stubStore) FindSymbolByName(_ context.Context, name string) (*database.Symbol, error) {
	if sym, ok := s.byName[name]; ok {
		return &sym, nil
	}
	return nil, database.ErrSymbolNotFound
}

func (s *stubStore) CountSymbols(context.Context) (int, error) {
	return len(s.byCode), nil
}

func quoteServer(t *testing.T, fields map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"msgArray": []map[string]string{fields}}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestQueryByName(t *testing.T) {
	t.Parallel()

	srv := quoteServer(t, map[string]string{
		"n": "台積電", "z": "1050.00", "y": "1040.00", "o": "1045.00",
		"h": "1055.00", "l": "1042.00", "v": "25,123",
	})
	defer srv.Close()

	store := &stubStore{
		byName: map[string]database.Symbol{
			"台積電": {Code: "2330", Name: "台積電", Symbol: "2330.TW"},
		},
	}
	svc := stocks.NewService(
		stocks.NewClient(srv.URL, srv.URL, 5*time.Second, nil),
		store, cache.NewMemory(), time.Hour, nil,
	)

	quote, err := svc.Query(context.Background(), "台積電")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if quote.Code != "2330" {
		t.Errorf("got code %q, want 2330", quote.Code)
	}
	if quote.Price == nil || *quote.Price != 1050.00 {
		t.Errorf("got price %v, want 1050.00", quote.Price)
	}
	if quote.Volume == nil || *quote.Volume != 25123 {
		t.Errorf("got volume %v, want 25123", quote.Volume)
	}
}

func TestQueryByCodeBackfillsName(t *testing.T) {
	t.Parallel()

	srv := quoteServer(t, map[string]string{"z": "-", "y": "33.50"})
	defer srv.Close()

	store := &stubStore{
		byCode: map[string]database.Symbol{
			"0050": {Code: "0050", Name: "元大台灣50", Symbol: "0050.TW"},
		},
	}
	svc := stocks.NewService(
		stocks.NewClient(srv.URL, srv.URL, 5*time.Second, nil),
		store, cache.NewMemory(), time.Hour, nil,
	)

	quote, err := svc.Query(context.Background(), "0050")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if quote.Name != "元大台灣50" {
		t.Errorf("got name %q, want backfilled 元大台灣50", quote.Name)
	}
	if !quote.PriceDerived {
		t.Error("price not marked as derived with no trade price in the feed")
	}
	if quote.Price == nil || *quote.Price != 33.50 {
		t.Errorf("got price %v, want 33.50 from previous close", quote.Price)
	}
}

func TestQueryFallsBackToCachedListing(t *testing.T) {
	t.Parallel()

	srv := quoteServer(t, map[string]string{"z": "1050.00", "y": "1040.00"})
	defer srv.Close()

	// Empty symbol table, but another instance has mirrored the listing.
	memCache := cache.NewMemory()
	listing, err := json.Marshal([]database.Symbol{
		{Code: "2330", Name: "台積電", Symbol: "2330.TW"},
		{Code: "2454", Name: "聯發科", Symbol: "2454.TW"},
	})
	if err != nil {
		t.Fatalf("marshal listing: %v", err)
	}
	memCache.Set(context.Background(), "twse:stocks:all", string(listing), time.Hour)

	svc := stocks.NewService(
		stocks.NewClient(srv.URL, srv.URL, 5*time.Second, nil),
		&stubStore{}, memCache, time.Hour, nil,
	)

	quote, err := svc.Query(context.Background(), "聯發科")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if quote.Code != "2454" {
		t.Errorf("got code %q, want 2454 from the cached listing", quote.Code)
	}
	if quote.Name != "聯發科" {
		t.Errorf("got name %q, want 聯發科 backfilled from the cached listing", quote.Name)
	}

	if _, err := svc.Query(context.Background(), "不存在的公司"); !errors.Is(err, stocks.ErrUnknownSymbol) {
		t.Errorf("unknown name with cached listing: got %v, want ErrUnknownSymbol", err)
	}
}

func TestQueryUnknownName(t *testing.T) {
	t.Parallel()

	svc := stocks.NewService(
		stocks.NewClient("http://invalid.test", "http://invalid.test", time.Second, nil),
		&stubStore{}, cache.NewMemory(), time.Hour, nil,
	)

	if _, err := svc.Query(context.Background(), "不存在的公司"); !errors.Is(err, stocks.ErrUnknownSymbol) {
		t.Errorf("got %v, want ErrUnknownSymbol", err)
	}
	if _, err := svc.Query(context.Background(), "  "); !errors.Is(err, stocks.ErrUnknownSymbol) {
		t.Errorf("blank query: got %v, want ErrUnknownSymbol", err)
	}
}

func TestRefreshListingReplacesTableAndMirrorsCache(t *testing.T) {
	t.Parallel()

	csvBody := strings.Join([]string{
		`"證券代號","證券名稱","成交股數"`,
		`"0050","元大台灣50","1000"`,
		`"2330","台積電","2000"`,
		`"2330P","某權證","10"`,
	}, "\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	store := &stubStore{}
	memCache := cache.NewMemory()
	svc := stocks.NewService(
		stocks.NewClient(srv.URL, srv.URL, 5*time.Second, nil),
		store, memCache, time.Hour, nil,
	)

	count, err := svc.RefreshListing(context.Background())
	if err != nil {
		t.Fatalf("RefreshListing returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d symbols, want 2", count)
	}
	if len(store.replaced) != 2 {
		t.Fatalf("store received %d symbols, want 2", len(store.replaced))
	}
	if store.replaced[1].Symbol != "2330.TW" {
		t.Errorf("got symbol %q, want 2330.TW", store.replaced[1].Symbol)
	}

	cached, ok := memCache.Get(context.Background(), "twse:stocks:all")
	if !ok {
		t.Fatal("listing not mirrored into the cache")
	}
	var mirrored []database.Symbol
	if err := json.Unmarshal([]byte(cached), &mirrored); err != nil {
		t.Fatalf("cached listing not valid JSON: %v", err)
	}
	if len(mirrored) != 2 {
		t.Errorf("cached listing has %d symbols, want 2", len(mirrored))
	}
}
