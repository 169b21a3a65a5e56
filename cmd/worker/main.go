package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/velora-shop/backend-storefront/internal/cart"
	"github.com/velora-shop/backend-storefront/internal/catalog"
	"github.com/velora-shop/backend-storefront/internal/config"
	"github.com/velora-shop/backend-storefront/internal/events"
	"github.com/velora-shop/backend-storefront/internal/lock"
	"github.com/velora-shop/backend-storefront/internal/obs"
	"github.com/velora-shop/backend-storefront/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "storefront"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	bus := &events.Bus{
		Store: events.PGStore{Pool: pool},
		Notifiers: []events.Notifier{
			events.LogNotifier{Logger: logger},
			events.MetricsNotifier{},
		},
	}

	cartSvc := &cart.Service{
		Store:    cart.RedisStore{Client: redisClient, TTL: cfg.CartTTL},
		Products: &catalog.Service{Pool: pool},
		Events:   bus,
	}

	redisOpts, _ := redis.ParseURL(cfg.RedisURL)
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB},
		asynq.Config{
			Concurrency: envInt("WORKER_CONCURRENCY", 5),
			Logger:      asynqLogger{logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeCartExpire, tasks.CartExpireWorker{
		Svc:     cartSvc,
		Locker:  lock.Locker{R: redisClient},
		LockTTL: 30 * time.Second,
	})

	logger.Info().Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msgf("%v", args) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msgf("%v", args) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msgf("%v", args) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msgf("%v", args) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msgf("%v", args) }

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}
