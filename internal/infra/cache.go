package infra

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

var (
	cacheOnce sync.Once
	cache     *redis.Client
	cacheErr  error
)

// NewCacheClient returns the process-wide redis client backing the price
// snapshot when price_cache.backend is redis.
func NewCacheClient(c context.Context, cfg config.Cache) (*redis.Client, error) {
	c, span := otel.Tracer.Start(c, "infra NewCacheClient")
	defer span.End()

	cacheOnce.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "infra NewCacheClient").
			Str(log.KeyRequestHost, fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)).
			Logger()

		logger = logger.With().Str(log.KeyProcess, "initializing redis client").Logger()
		logger.Info().Msg("initializing redis client")
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.Database,
		})
		logger.Info().Msg("initialized redis client")

		logger = logger.With().Str(log.KeyProcess, "initializing redis otel tracing").Logger()
		logger.Info().Msg("initializing redis otel tracing")
		if err := redisotel.InstrumentTracing(client, redisotel.WithAttributes(semconv.DBSystemRedis)); err != nil {
			cacheErr = fmt.Errorf("failed initializing otel redis tracing with error=%w", err)
			otel.RecordError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		logger.Info().Msg("initialized redis otel tracing")

		logger = logger.With().Str(log.KeyProcess, "initializing redis otel metric").Logger()
		logger.Info().Msg("initializing redis otel metric")
		if err := redisotel.InstrumentMetrics(client, redisotel.WithAttributes(semconv.DBSystemRedis)); err != nil {
			cacheErr = fmt.Errorf("failed initializing otel redis metric with error=%w", err)
			otel.RecordError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		logger.Info().Msg("initialized redis otel metric")

		logger = logger.With().Str(log.KeyProcess, "pinging connection to redis").Logger()
		logger.Info().Msg("pinging connection to redis")
		if err := client.Ping(c).Err(); err != nil {
			cacheErr = fmt.Errorf("failed to pinging to redis with error=%w", err)
			otel.RecordError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		logger.Info().Msg("pinged connection to redis")

		cache = client
		logger.Info().Msg("initialized cache")
	})
	return cache, cacheErr
}
