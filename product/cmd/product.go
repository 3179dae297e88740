package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/pricecache"
	"github.com/Alturino/storefront/product/internal/controller"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

// AttachProductModule mounts GET /products on router.
func AttachProductModule(
	c context.Context,
	router *mux.Router,
	upstream service.ProductFetcher,
	prices *pricecache.PriceCache,
) {
	c, span := otel.Tracer.Start(c, "AttachProductModule")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachProductModule").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing productService").Logger()
	logger.Info().Msg("initializing productService")
	productService := service.NewProductService(upstream, prices)
	logger.Info().Msg("initialized productService")

	logger = logger.With().Str(log.KeyProcess, "attaching product controller").Logger()
	logger.Info().Msg("attaching product controller")
	controller.AttachProductController(router, &productService)
	logger.Info().Msg("attached product controller")
}

// FetchSortedProducts runs one catalog fetch outside of the http server.
func FetchSortedProducts(
	c context.Context,
	upstream service.ProductFetcher,
	prices *pricecache.PriceCache,
	order string,
) ([]response.Product, error) {
	return service.NewProductService(upstream, prices).GetSortedProducts(c, request.Order(order))
}
