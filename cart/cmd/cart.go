package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/pricecache"
)

// AttachCartModule mounts the cart and checkout routes on router.
func AttachCartModule(
	c context.Context,
	router *mux.Router,
	upstream service.CartClient,
	prices *pricecache.PriceCache,
	payments payment.Provider,
) {
	c, span := otel.Tracer.Start(c, "AttachCartModule")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachCartModule").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing cartService").Logger()
	logger.Info().Msg("initializing cartService")
	cartService := service.NewCartService(upstream, prices, payments)
	logger.Info().Msg("initialized cartService")

	logger = logger.With().Str(log.KeyProcess, "attaching cart controller").Logger()
	logger.Info().Msg("attaching cart controller")
	controller.AttachCartController(router, &cartService)
	logger.Info().Msg("attached cart controller")
}
