package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/upstream"
	productCmd "github.com/Alturino/storefront/product/cmd"
)

func runFetchProducts(c context.Context, cfg *config.Config, order string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runFetchProducts").
		Str(log.KeyOrder, order).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing price cache").Logger()
	logger.Info().Msg("initializing price cache")
	c = logger.WithContext(c)
	prices, closePrices, err := newPriceCache(c, cfg)
	if err != nil {
		return err
	}
	defer closePrices()
	logger.Info().Msg("initialized price cache")

	logger = logger.With().Str(log.KeyProcess, "fetching products").Logger()
	logger.Info().Msg("fetching products")
	c = logger.WithContext(c)
	products, err := productCmd.FetchSortedProducts(c, upstream.NewClient(cfg.Upstream), prices, order)
	if err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyProductCount, len(products)).Msg("fetched products and stored price snapshot")

	return nil
}
