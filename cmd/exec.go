package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"ipsqr-service/config"
	"ipsqr-service/internal/cache"
	"ipsqr-service/internal/handlers"
	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/relay"
	"ipsqr-service/internal/services"
	"ipsqr-service/monitoring"
	"ipsqr-service/security"
	"ipsqr-service/utils"
)

const (
	shutdownTimeout     = 10 * time.Second
	breakerMaxFailures  = 5
	breakerOpenDuration = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the decode HTTP API, metrics endpoint and PubNub relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Start(cmd.Context(), config.LoadConfig())
		},
	}
}

// Start runs the service until SIGINT or SIGTERM.
func Start(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultFormat, err := ipsqr.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		return fmt.Errorf("config DEFAULT_FORMAT: %w", err)
	}

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = utils.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache and rate limits", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	monitor := monitoring.NewMonitor()

	// Initialize services
	decoder := ipsqr.NewDecoder(ipsqr.WithLogger(logger))
	decodeService := services.NewDecodeService(decoder, newResultCache(cfg, redisClient), monitor, logger, cfg.MaxPayloadBytes)

	// Initialize handlers
	decodeHandler := handlers.NewDecodeHandler(decodeService, defaultFormat, cfg.MaxPayloadBytes)
	var checkCache func(ctx context.Context) error
	if redisClient != nil {
		checkCache = func(ctx context.Context) error { return utils.RedisHealthCheck(ctx, redisClient) }
	}
	healthHandler := handlers.NewHealthHandler(checkCache)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	e := echo.New()
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.POST("/ips/decode", decodeHandler.Decode, rateLimiter.DecodeRateLimit())
	api.GET("/ips/fields", decodeHandler.GetFields)
	e.GET("/health", healthHandler.Health)

	servers := []*http.Server{{Addr: ":" + cfg.Port, Handler: e}}
	if cfg.EnableMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitor.Handler())
		servers = append(servers, &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	if cfg.EnableRelay {
		startRelay(ctx, cfg, decodeService, defaultFormat, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, cleaning up...")
	case err = <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("server shutdown", "addr", srv.Addr, "error", serr)
		}
	}
	return err
}

// newResultCache returns nil when caching is disabled. Redis is wrapped in a
// circuit breaker; without redis results are cached in process memory.
func newResultCache(cfg *config.Config, redisClient *redis.Client) cache.Cache {
	if !cfg.EnableCache {
		return nil
	}
	if redisClient != nil {
		return cache.NewBreaker(cache.NewRedisCache(redisClient, cfg.CacheTTL), breakerMaxFailures, breakerOpenDuration)
	}
	return cache.NewMemoryCache(cfg.CacheTTL, cfg.CacheCleanupInterval)
}

func startRelay(ctx context.Context, cfg *config.Config, decodeService *services.DecodeService, format ipsqr.Format, logger *slog.Logger) {
	pn := relay.NewPubNub(relay.PubNubConfig{
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		SecretKey:    cfg.PubNubSecretKey,
		UUID:         cfg.PubNubUUID,
		ScanChannel:  cfg.PubNubScanChannel,
	}, logger)

	r := relay.New(decodeService, pn, cfg.PubNubResultChannel, format, logger)
	go r.Run(ctx, pn.Listen(ctx))

	logger.Info("relay started", "scan_channel", cfg.PubNubScanChannel, "result_channel", cfg.PubNubResultChannel)
}
