package geo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinchw/kevinbot/internal/geo"
)

// stubGeocoder answers from a fixed map and records the queries it saw.
// Queries absent from the map fail with a remote error.
type stubGeocoder struct {
	results map[string]*geo.Result
	queries []string
}

func (s *stubGeocoder) Lookup(_ context.Context, query string) (*geo.Result, error) {
	s.queries = append(s.queries, query)
	result, ok := s.results[query]
	if !ok {
		return nil, errors.New("remote unavailable")
	}
	return result, nil
}

func TestResolveIslandSkipsRemote(t *testing.T) {
	t.Parallel()

	stub := &stubGeocoder{}
	resolver := geo.NewResolver(stub, nil)

	loc, err := resolver.Resolve(context.Background(), "澎湖天氣")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !loc.Island || !loc.Taiwan || !loc.HasCoords {
		t.Errorf("island location flags wrong: %+v", loc)
	}
	if loc.Name != "Penghu" {
		t.Errorf("Name = %q, want Penghu", loc.Name)
	}
	if len(stub.queries) != 0 {
		t.Errorf("island lookup hit the remote geocoder: %v", stub.queries)
	}
}

func TestResolveFallsThroughFailedAttempts(t *testing.T) {
	t.Parallel()

	// Country hint fails remotely; the bare query succeeds. The resolver
	// must try them in order and keep going past the failure.
	stub := &stubGeocoder{
		results: map[string]*geo.Result{
			"東京": {Lat: 35.68, Lon: 139.69, Name: "東京都"},
		},
	}
	resolver := geo.NewResolver(stub, nil)

	loc, err := resolver.Resolve(context.Background(), "東京天氣")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if loc.Name != "東京都" {
		t.Errorf("Name = %q, want 東京都", loc.Name)
	}

	want := []string{"Tokyo,JP", "東京"}
	if len(stub.queries) != len(want) {
		t.Fatalf("queries = %v, want %v", stub.queries, want)
	}
	for i, q := range want {
		if stub.queries[i] != q {
			t.Errorf("query[%d] = %q, want %q", i, stub.queries[i], q)
		}
	}
}

func TestResolveTaiwanCityQualified(t *testing.T) {
	t.Parallel()

	stub := &stubGeocoder{
		results: map[string]*geo.Result{
			"Kaohsiung,TW": {Lat: 22.63, Lon: 120.30, Name: "高雄市"},
		},
	}
	resolver := geo.NewResolver(stub, nil)

	loc, err := resolver.Resolve(context.Background(), "高雄")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !loc.Taiwan {
		t.Error("Taiwan flag not set for qualified lookup")
	}
	if len(stub.queries) != 1 || stub.queries[0] != "Kaohsiung,TW" {
		t.Errorf("queries = %v, want [Kaohsiung,TW]", stub.queries)
	}
}

func TestResolveNoMatch(t *testing.T) {
	t.Parallel()

	stub := &stubGeocoder{}
	resolver := geo.NewResolver(stub, nil)

	if _, err := resolver.Resolve(context.Background(), "不存在的地方"); !errors.Is(err, geo.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}

	if _, err := resolver.Resolve(context.Background(), "今天天氣？"); !errors.Is(err, geo.ErrNoMatch) {
		t.Errorf("filler-only input: err = %v, want ErrNoMatch", err)
	}
}
