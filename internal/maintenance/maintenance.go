// Package maintenance implements the daily refresh work: rebuilding the
// symbol table from the exchange and pregenerating the next day's
// horoscopes. It runs from the scheduler and from the refresh endpoint.
package maintenance

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kevinchw/kevinbot/internal/horoscope"
	"github.com/kevinchw/kevinbot/internal/stocks"
)

// Result reports what one maintenance run achieved.
type Result struct {
	Symbols    int `json:"symbols"`
	Horoscopes int `json:"horoscopes"`
}

// Runner executes the maintenance tasks concurrently.
type Runner struct {
	stocks     *stocks.Service
	horoscopes *horoscope.Service
	logger     *slog.Logger
	now        func() time.Time
}

func NewRunner(stockSvc *stocks.Service, horoscopeSvc *horoscope.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		stocks:     stockSvc,
		horoscopes: horoscopeSvc,
		logger:     logger.With("component", "maintenance"),
		now:        time.Now,
	}
}

// Run refreshes the symbol table and pregenerates tomorrow's horoscopes.
// Horoscope pregeneration is best-effort; only the symbol refresh can fail
// the run, since the bot cannot resolve company names without it.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := r.now()
	var result Result

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := r.stocks.RefreshListing(gctx)
		if err != nil {
			return err
		}
		result.Symbols = count
		return nil
	})

	g.Go(func() error {
		tomorrow := r.now().AddDate(0, 0, 1).Format("2006-01-02")
		result.Horoscopes = r.horoscopes.Pregenerate(gctx, tomorrow)
		return nil
	})

	err := g.Wait()
	r.logger.InfoContext(ctx, "Maintenance run finished",
		"symbols", result.Symbols,
		"horoscopes", result.Horoscopes,
		"duration", r.now().Sub(start),
		"error", err)
	return result, err
}
