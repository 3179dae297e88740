package pricecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/product/pkg/response"
)

// Store persists the full product list of the last successful catalog fetch.
// Save replaces the previous snapshot as a whole; Load returns
// ErrPriceCacheMissing when nothing was ever saved and any other error when the
// saved snapshot cannot be read.
type Store interface {
	Save(c context.Context, products []response.Product) error
	Load(c context.Context) ([]response.Product, error)
}

// Snapshot is an immutable view of one catalog fetch.
type Snapshot struct {
	products []response.Product
	prices   map[int]decimal.Decimal
}

func NewSnapshot(products []response.Product) *Snapshot {
	owned := make([]response.Product, len(products))
	copy(owned, products)
	prices := make(map[int]decimal.Decimal, len(owned))
	for _, p := range owned {
		prices[p.ID] = p.Price
	}
	return &Snapshot{products: owned, prices: prices}
}

func (s *Snapshot) Price(productId int) (decimal.Decimal, bool) {
	price, ok := s.prices[productId]
	return price, ok
}

func (s *Snapshot) Len() int { return len(s.products) }

func (s *Snapshot) Products() []response.Product {
	out := make([]response.Product, len(s.products))
	copy(out, s.products)
	return out
}

// PriceCache is the process-wide price lookup. Readers take one Snapshot per
// operation; Replace persists first and swaps the pointer after, so a reader
// sees either the previous or the new complete snapshot.
type PriceCache struct {
	store   Store
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func New(store Store) *PriceCache {
	return &PriceCache{store: store}
}

func (p *PriceCache) Replace(c context.Context, products []response.Product) error {
	c, span := otel.Tracer.Start(c, "PriceCache Replace")
	defer span.End()
	span.SetAttributes(attribute.Int(log.KeyProductCount, len(products)))

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "PriceCache Replace").
		Int(log.KeyProductCount, len(products)).
		Logger()

	snapshot := NewSnapshot(products)

	p.mu.Lock()
	defer p.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "persisting snapshot").Logger()
	logger.Trace().Msg("persisting snapshot")
	span.AddEvent("persisting snapshot")
	c = logger.WithContext(c)
	if err := p.store.Save(c, snapshot.products); err != nil {
		err = fmt.Errorf("%w with error=%w", inErrors.ErrPriceCachePersist, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("persisted snapshot")
	logger.Trace().Msg("persisted snapshot")

	p.current.Store(snapshot)
	metrics.PriceCacheSwaps.Inc()
	metrics.PriceCacheProducts.Set(float64(snapshot.Len()))
	logger.Info().Msg("swapped price snapshot")
	return nil
}

// Snapshot returns the current snapshot, loading the durable one on first use.
func (p *PriceCache) Snapshot(c context.Context) (*Snapshot, error) {
	if s := p.current.Load(); s != nil {
		return s, nil
	}

	c, span := otel.Tracer.Start(c, "PriceCache Snapshot")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "PriceCache Snapshot").
		Str(log.KeyProcess, "loading snapshot").
		Logger()

	p.mu.Lock()
	defer p.mu.Unlock()
	if s := p.current.Load(); s != nil {
		return s, nil
	}

	logger.Trace().Msg("loading snapshot from store")
	span.AddEvent("loading snapshot from store")
	c = logger.WithContext(c)
	products, err := p.store.Load(c)
	if err != nil {
		if !errors.Is(err, inErrors.ErrPriceCacheMissing) {
			err = fmt.Errorf("%w with error=%w", inErrors.ErrPriceCacheLoad, err)
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	snapshot := NewSnapshot(products)
	p.current.Store(snapshot)
	metrics.PriceCacheProducts.Set(float64(snapshot.Len()))
	logger.Info().Int(log.KeyProductCount, snapshot.Len()).Msg("loaded snapshot from store")
	return snapshot, nil
}
