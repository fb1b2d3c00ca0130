// Package main contains the entrypoint for the KevinBot LINE webhook service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kevinchw/kevinbot/internal/bot"
	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/calorie"
	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/database"
	"github.com/kevinchw/kevinbot/internal/fortune"
	"github.com/kevinchw/kevinbot/internal/gemini"
	"github.com/kevinchw/kevinbot/internal/geo"
	"github.com/kevinchw/kevinbot/internal/horoscope"
	"github.com/kevinchw/kevinbot/internal/line"
	"github.com/kevinchw/kevinbot/internal/logger"
	"github.com/kevinchw/kevinbot/internal/maintenance"
	"github.com/kevinchw/kevinbot/internal/scheduler"
	"github.com/kevinchw/kevinbot/internal/server"
	"github.com/kevinchw/kevinbot/internal/stocks"
	"github.com/kevinchw/kevinbot/internal/verse"
	"github.com/kevinchw/kevinbot/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires all components, serves until the context is cancelled, and
// returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			return 1
		}
		defer redisClient.Close()
		cacheStore = cache.NewRedis(redisClient, log)
		log.Info("Cache backend: redis", "addr", cfg.Redis.Addr)
	} else {
		cacheStore = cache.NewMemory()
		log.Info("Cache backend: in-memory")
	}

	aiClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	geocoder := geo.NewOpenWeatherGeocoder(cfg.Weather.APIKey, cfg.Weather.GeocodeURL, cfg.Weather.Timeout, log)
	resolver := geo.NewResolver(geocoder, log)
	forecasts := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.ForecastURL, cfg.Weather.Timeout, log)

	twse := stocks.NewClient(cfg.Stocks.QuoteURL, cfg.Stocks.ListingURL, cfg.Stocks.Timeout, log)
	stockSvc := stocks.NewService(twse, store, cacheStore, cfg.Stocks.CacheTTL, log)
	horoscopeSvc := horoscope.NewService(aiClient, cacheStore, log)
	calorieSvc := calorie.NewService(aiClient, cacheStore, log)

	messenger, err := line.NewMessenger(cfg.Line.ChannelToken, log)
	if err != nil {
		log.Error("Failed to create LINE messenger", "error", err)
		return 1
	}

	router := bot.New(
		cfg.Line,
		aiClient,
		messenger,
		resolver,
		forecasts,
		stockSvc,
		horoscopeSvc,
		calorieSvc,
		fortune.NewDrawer(),
		verse.NewPicker(),
		bot.NewContextStore(cacheStore, cfg.Context.TTL),
		log,
	)

	runner := maintenance.NewRunner(stockSvc, horoscopeSvc, log)

	sched, err := scheduler.New(cfg.Scheduler, runner, log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	if err := sched.Start(); err != nil {
		log.Error("Failed to start scheduler", "error", err)
		return 1
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Scheduler shutdown error", "error", err)
		}
	}()

	srv := server.New(*cfg, router, runner, store, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
		return 1
	}

	log.Info("Stopped gracefully")
	return 0
}
