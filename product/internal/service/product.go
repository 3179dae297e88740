package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/pricecache"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

type ProductFetcher interface {
	GetProducts(c context.Context) ([]response.Product, error)
}

type ProductService struct {
	upstream ProductFetcher
	prices   *pricecache.PriceCache
}

func NewProductService(upstream ProductFetcher, prices *pricecache.PriceCache) ProductService {
	return ProductService{upstream: upstream, prices: prices}
}

// GetSortedProducts fetches the whole catalog, stable-sorts it by price and
// installs it as the new price snapshot. Nothing is fetched when order is
// invalid, and the snapshot is untouched when the fetch fails.
func (svc ProductService) GetSortedProducts(
	c context.Context,
	order request.Order,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService GetSortedProducts")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyOrder, string(order)))

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService GetSortedProducts").
		Str(log.KeyOrder, string(order)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating order").Logger()
	logger.Trace().Msg("validating order")
	if err := order.Validate(); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("validated order")

	logger = logger.With().Str(log.KeyProcess, "fetching products").Logger()
	logger.Trace().Msg("fetching products")
	span.AddEvent("fetching products")
	c = logger.WithContext(c)
	products, err := svc.upstream.GetProducts(c)
	if err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("fetched products")
	logger = logger.With().Int(log.KeyProductCount, len(products)).Logger()
	logger.Info().Msg("fetched products")

	logger = logger.With().Str(log.KeyProcess, "sorting products").Logger()
	logger.Trace().Msg("sorting products")
	sorted := SortByPrice(products, order)
	logger.Trace().Msg("sorted products")

	logger = logger.With().Str(log.KeyProcess, "replacing price snapshot").Logger()
	logger.Trace().Msg("replacing price snapshot")
	span.AddEvent("replacing price snapshot")
	c = logger.WithContext(c)
	if err := svc.prices.Replace(c, sorted); err != nil {
		err = fmt.Errorf("failed replacing price snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("replaced price snapshot")
	logger.Info().Msg("replaced price snapshot")

	return sorted, nil
}

// SortByPrice returns a stable-sorted copy; products with equal prices keep
// their upstream order in both directions.
func SortByPrice(products []response.Product, order request.Order) []response.Product {
	sorted := slices.Clone(products)
	if sorted == nil {
		sorted = []response.Product{}
	}
	slices.SortStableFunc(sorted, func(a, b response.Product) int {
		if order == request.OrderDesc {
			return b.Price.Cmp(a.Price)
		}
		return a.Price.Cmp(b.Price)
	})
	return sorted
}
