package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baechuer/paradies-dashboard/internal/api"
	"github.com/baechuer/paradies-dashboard/internal/api/handlers"
	"github.com/baechuer/paradies-dashboard/internal/config"
	"github.com/baechuer/paradies-dashboard/internal/downstream"
	"github.com/baechuer/paradies-dashboard/internal/logbook"
	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/session"
	"github.com/baechuer/paradies-dashboard/internal/tracing"
	"github.com/baechuer/paradies-dashboard/middleware"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Config and logger
	cfg := config.Load()
	logger.Init()
	zlog.Info().Msg("logger initialized")

	// 2. Tracing
	tp, err := tracing.InitTracing(ctx, tracing.Config{
		ServiceName:    "dashboard-bff",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRatio:    cfg.TracingSampleRatio,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("tracing init failed")
	}

	// 3. Redis, when any component wants it
	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = config.NewRedisClient(ctx, cfg)
		switch {
		case err == nil:
			zlog.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		case cfg.SessionBackend == config.SessionBackendRedis:
			zlog.Fatal().Err(err).Msg("redis session backend unavailable")
		default:
			// Only the rate limiter wanted Redis; it fails open without it.
			zlog.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
			rdb = nil
		}
	}

	// 4. Session
	dec, err := session.NewDecoder(cfg.JWTSecret, cfg.VerifySignature)
	if err != nil {
		zlog.Fatal().Err(err).Msg("session decoder")
	}
	if !dec.Verifies() {
		zlog.Warn().Msg("token signatures are not verified; set JWT_SECRET to enable")
	}

	var store session.Store = session.NewCookieStore(cfg.SessionCookieName, cfg.CookieSecure)
	var states logbook.StateStore = logbook.NewMemoryStateStore(cfg.SessionTTL)
	if cfg.SessionBackend == config.SessionBackendRedis {
		store = session.NewRedisStore(rdb, cfg.SessionCookieName, cfg.CookieSecure, cfg.SessionTTL)
		states = logbook.NewRedisStateStore(rdb, cfg.SessionTTL)
	}

	// 5. Upstream clients
	client := downstream.NewClient(downstream.ClientConfig{
		ReadTimeout:  cfg.UpstreamReadTimeout,
		WriteTimeout: cfg.UpstreamWriteTimeout,
	})
	users := downstream.NewUserClient(cfg.APIEndpoint, client)

	checkers := []handlers.ReadinessChecker{handlers.NewCheckFunc("user-api", users.Ping)}
	var limiter *middleware.RedisRateLimiter
	if rdb != nil {
		limiter = middleware.NewRedisRateLimiter(rdb)
		checkers = append(checkers, handlers.NewCheckFunc("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	// 6. Router
	r, err := api.NewRouter(cfg, api.Deps{
		Store:       store,
		Decoder:     dec,
		Auth:        downstream.NewAuthClient(cfg.APIEndpoint, client),
		Logbook:     logbook.NewService(users, states),
		Readiness:   handlers.NewReadinessHandler(checkers...),
		RateLimiter: limiter,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("router setup failed")
	}

	// 7. Serve until signalled
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info().Str("port", cfg.Port).Str("api", cfg.APIEndpoint).Msg("dashboard BFF starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("http shutdown")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("tracer shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
