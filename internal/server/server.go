// Package server exposes the HTTP surface: the LINE webhook, the stock
// refresh endpoint, and a health probe.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/kevinchw/kevinbot/internal/bot"
	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/database"
	"github.com/kevinchw/kevinbot/internal/maintenance"
)

// Server hosts the webhook and operational endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the HTTP server and its routes.
func New(
	cfg config.Config,
	router *bot.Bot,
	runner *maintenance.Runner,
	store database.Store,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "server")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: engine,
		},
		logger: log,
	}

	engine.POST("/webhook", s.webhookHandler(cfg.Line.ChannelSecret, cfg.Server, router))
	engine.POST("/api/update-stocks", s.updateStocksHandler(cfg.Stocks.RefreshSecret, runner))
	engine.GET("/healthz", s.healthHandler(store))

	return s
}

// webhookHandler verifies the channel signature, processes every event, and
// always answers 200 afterwards. LINE retries non-2xx responses, and a
// retried batch would double-deliver the events that already succeeded.
func (s *Server) webhookHandler(channelSecret string, cfg config.ServerConfig, router *bot.Bot) gin.HandlerFunc {
	return func(c *gin.Context) {
		cb, err := webhook.ParseRequest(channelSecret, c.Request)
		if err != nil {
			s.logger.Warn("Webhook parse failed", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.WebhookTimeout)
		defer cancel()

		router.HandleEvents(ctx, cb.Events)
		c.Status(http.StatusOK)
	}
}

// updateStocksHandler runs a maintenance pass on demand. Guarded by a bearer
// secret so external cron services can trigger it.
func (s *Server) updateStocksHandler(secret string, runner *maintenance.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorized(c.GetHeader("Authorization"), secret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, err := runner.Run(c.Request.Context())
		if err != nil {
			s.logger.Error("Manual maintenance run failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":         true,
			"symbols":    result.Symbols,
			"horoscopes": result.Horoscopes,
		})
	}
}

func (s *Server) healthHandler(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// authorized compares the Bearer token in constant time. An empty configured
// secret locks the endpoint rather than opening it.
func authorized(header, secret string) bool {
	if secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// Start begins serving. It blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
