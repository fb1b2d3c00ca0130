// Package stocks provides Taiwan Stock Exchange quote lookups and the
// listed-symbol table used to resolve company names to ticker codes.
package stocks

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kevinchw/kevinbot/internal/database"
)

// ErrQuoteUnavailable is returned when the exchange answered but carried no
// data for the requested code.
var ErrQuoteUnavailable = errors.New("stocks: no quote data for code")

var codePattern = regexp.MustCompile(`^\d{4}$`)

// Quote is one real-time snapshot from the TWSE MIS feed. Numeric fields are
// pointers because the feed reports "-" outside trading hours.
type Quote struct {
	Code      string
	Name      string
	Price     *float64
	PrevClose *float64
	Open      *float64
	High      *float64
	Low       *float64
	Volume    *float64

	// PriceDerived is set when Price was filled from PrevClose because the
	// feed had no trade price.
	PriceDerived bool
}

// Client talks to the TWSE real-time quote API and the daily listing report.
type Client struct {
	quoteURL   string
	listingURL string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a TWSE client. The quote endpoint sits behind a circuit
// breaker since the MIS feed throttles aggressively during market hours.
func NewClient(quoteURL, listingURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "twse_quote",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		quoteURL:   quoteURL,
		listingURL: listingURL,
		httpClient: &http.Client{Timeout: timeout},
		circuit:    cb,
		logger:     logger.With("component", "twse_client"),
	}
}

// FetchQuote fetches the current quote for a 4-digit TWSE code.
func (c *Client) FetchQuote(ctx context.Context, code string) (*Quote, error) {
	values := url.Values{}
	values.Set("ex_ch", "tse_"+code+".tw")
	values.Set("json", "1")
	values.Set("delay", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("quote request returned status %d", resp.StatusCode)
		}

		var payload struct {
			MsgArray []map[string]string `json:"msgArray"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
			return nil, fmt.Errorf("failed to decode quote response: %w", decodeErr)
		}
		return payload.MsgArray, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.WarnContext(ctx, "Quote circuit breaker open", "code", code)
		}
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	msgArray, _ := result.([]map[string]string)
	if len(msgArray) == 0 {
		return nil, ErrQuoteUnavailable
	}

	return parseQuoteFields(code, msgArray[0]), nil
}

// parseQuoteFields maps the MIS single-letter field names onto a Quote. The
// feed uses "-" for fields with no value yet.
func parseQuoteFields(code string, fields map[string]string) *Quote {
	q := &Quote{
		Code:      code,
		Name:      fields["n"],
		Price:     parseFeedNumber(fields["z"]),
		PrevClose: parseFeedNumber(fields["y"]),
		Open:      parseFeedNumber(fields["o"]),
		High:      parseFeedNumber(fields["h"]),
		Low:       parseFeedNumber(fields["l"]),
		Volume:    parseFeedNumber(fields["v"]),
	}
	if q.Price == nil && q.PrevClose != nil {
		price := *q.PrevClose
		q.Price = &price
		q.PriceDerived = true
	}
	return q
}

func parseFeedNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// FetchListing downloads the daily STOCK_DAY_ALL report and returns the
// listed common-stock symbols. Only 4-digit codes are kept, which filters
// out warrants, ETNs, and other derivative listings.
func (c *Client) FetchListing(ctx context.Context) ([]database.Symbol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("listing request returned status %d", resp.StatusCode)
	}

	return ParseListingCSV(resp.Body)
}

// ParseListingCSV parses the STOCK_DAY_ALL open-data CSV. The first row is a
// header; the first two columns are code and name.
func ParseListingCSV(r io.Reader) ([]database.Symbol, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var symbols []database.Symbol
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse listing CSV: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(record) < 2 {
			continue
		}

		code := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if !codePattern.MatchString(code) || name == "" {
			continue
		}

		symbols = append(symbols, database.Symbol{
			Code:   code,
			Name:   name,
			Symbol: code + ".TW",
		})
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("listing CSV contained no symbols")
	}
	return symbols, nil
}
