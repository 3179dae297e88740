package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/pricecache"
)

// newPriceCache builds the price cache over the configured durable store. The
// returned close func releases the redis connection when one was opened.
func newPriceCache(
	c context.Context,
	cfg *config.Config,
) (*pricecache.PriceCache, func(), error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main newPriceCache").
		Str("backend", cfg.PriceCache.Backend).
		Logger()

	switch cfg.PriceCache.Backend {
	case config.PriceCacheBackendRedis:
		logger = logger.With().
			Str(log.KeyProcess, "initializing redis price store").
			Str(log.KeyCacheKey, cfg.PriceCache.Key).
			Logger()
		logger.Info().Msg("initializing redis price store")
		c = logger.WithContext(c)
		client, err := infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			err = fmt.Errorf("failed initializing redis price store with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, nil, err
		}
		logger.Info().Msg("initialized redis price store")

		closeFunc := func() {
			logger.Info().Msg("shutting down cache connection")
			if err := client.Close(); err != nil {
				err = fmt.Errorf("failed closing cache with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache connection")
		}
		return pricecache.New(pricecache.NewRedisStore(client, cfg.PriceCache.Key)), closeFunc, nil
	default:
		logger = logger.With().
			Str(log.KeyProcess, "initializing file price store").
			Str(log.KeyFilePath, cfg.PriceCache.Path).
			Logger()
		logger.Info().Msg("initialized file price store")
		return pricecache.New(pricecache.NewFileStore(cfg.PriceCache.Path)), func() {}, nil
	}
}
