package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/pricecache"
	"github.com/Alturino/storefront/internal/upstream"
)

type CartClient interface {
	FindCartsByUserId(c context.Context, userId int) ([]request.Cart, error)
	InsertCart(c context.Context, body json.RawMessage) (upstream.Response, error)
	UpdateCart(c context.Context, cartId int, body json.RawMessage) (upstream.Response, error)
	RemoveCart(c context.Context, cartId int) (upstream.Response, error)
}

type CartService struct {
	upstream CartClient
	prices   *pricecache.PriceCache
	payments payment.Provider
}

func NewCartService(
	upstream CartClient,
	prices *pricecache.PriceCache,
	payments payment.Provider,
) CartService {
	return CartService{upstream: upstream, prices: prices, payments: payments}
}

// FindCartsByUserId returns every cart of userId with each item priced from
// one price snapshot and the cart total computed. Items that already carry a
// price keep it.
func (svc CartService) FindCartsByUserId(c context.Context, userId int) ([]response.Cart, error) {
	c, span := otel.Tracer.Start(
		c,
		"CartService FindCartsByUserId",
		trace.WithAttributes(attribute.Int(log.KeyUserID, userId)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService FindCartsByUserId").
		Int(log.KeyUserID, userId).
		Logger()

	if userId < 1 {
		err := fmt.Errorf("%w: userId=%d must be positive", inErrors.ErrInvalidArgument, userId)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "loading price snapshot").Logger()
	logger.Trace().Msg("loading price snapshot")
	span.AddEvent("loading price snapshot")
	c = logger.WithContext(c)
	snapshot, err := svc.prices.Snapshot(c)
	if err != nil {
		err = fmt.Errorf("failed loading price snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("loaded price snapshot")
	logger.Trace().Int(log.KeyProductCount, snapshot.Len()).Msg("loaded price snapshot")

	logger = logger.With().Str(log.KeyProcess, "finding carts").Logger()
	logger.Trace().Msg("finding carts")
	span.AddEvent("finding carts")
	c = logger.WithContext(c)
	carts, err := svc.upstream.FindCartsByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding carts with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found carts")
	logger.Trace().Int(log.KeyCarts, len(carts)).Msg("found carts")

	logger = logger.With().Str(log.KeyProcess, "pricing carts").Logger()
	logger.Trace().Msg("pricing carts")
	span.AddEvent("pricing carts")
	priced := make([]response.Cart, 0, len(carts))
	for _, cart := range carts {
		p, err := PriceCart(snapshot, cart)
		if err != nil {
			err = fmt.Errorf("failed pricing cartId=%d with error=%w", cart.ID, err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		priced = append(priced, p)
	}
	span.AddEvent("priced carts")
	logger.Info().Int(log.KeyCarts, len(priced)).Msg("priced carts")

	return priced, nil
}

// PriceCart fills missing item prices from snapshot and sums price × quantity.
func PriceCart(snapshot *pricecache.Snapshot, cart request.Cart) (response.Cart, error) {
	priced := response.Cart{
		ID:       cart.ID,
		UserId:   cart.UserId,
		Date:     cart.Date,
		Products: make([]response.CartItem, 0, len(cart.Products)),
		Total:    decimal.Zero,
	}
	for _, item := range cart.Products {
		var price decimal.Decimal
		if item.Price != nil {
			price = *item.Price
		} else {
			p, ok := snapshot.Price(item.ProductId)
			if !ok {
				return response.Cart{}, &inErrors.UnknownProductError{ProductID: item.ProductId}
			}
			price = p
		}
		priced.Products = append(priced.Products, response.CartItem{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			Price:     price,
		})
		priced.Total = priced.Total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return priced, nil
}

// InsertCart forwards body to the upstream unchanged.
func (svc CartService) InsertCart(c context.Context, body json.RawMessage) (upstream.Response, error) {
	c, span := otel.Tracer.Start(c, "CartService InsertCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService InsertCart").
		Str(log.KeyProcess, "inserting cart").
		Logger()

	logger.Trace().Msg("inserting cart")
	span.AddEvent("inserting cart")
	c = logger.WithContext(c)
	resp, err := svc.upstream.InsertCart(c, body)
	if err != nil {
		err = fmt.Errorf("failed inserting cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return upstream.Response{}, err
	}
	span.AddEvent("inserted cart")
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("inserted cart")

	return resp, nil
}

func (svc CartService) UpdateCart(
	c context.Context,
	cartId int,
	body json.RawMessage,
) (upstream.Response, error) {
	c, span := otel.Tracer.Start(
		c,
		"CartService UpdateCart",
		trace.WithAttributes(attribute.Int(log.KeyCartID, cartId)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService UpdateCart").
		Int(log.KeyCartID, cartId).
		Str(log.KeyProcess, "updating cart").
		Logger()

	logger.Trace().Msg("updating cart")
	span.AddEvent("updating cart")
	c = logger.WithContext(c)
	resp, err := svc.upstream.UpdateCart(c, cartId, body)
	if err != nil {
		err = fmt.Errorf("failed updating cartId=%d with error=%w", cartId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return upstream.Response{}, err
	}
	span.AddEvent("updated cart")
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("updated cart")

	return resp, nil
}

func (svc CartService) RemoveCart(c context.Context, cartId int) (upstream.Response, error) {
	c, span := otel.Tracer.Start(
		c,
		"CartService RemoveCart",
		trace.WithAttributes(attribute.Int(log.KeyCartID, cartId)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService RemoveCart").
		Int(log.KeyCartID, cartId).
		Str(log.KeyProcess, "removing cart").
		Logger()

	logger.Trace().Msg("removing cart")
	span.AddEvent("removing cart")
	c = logger.WithContext(c)
	resp, err := svc.upstream.RemoveCart(c, cartId)
	if err != nil {
		err = fmt.Errorf("failed removing cartId=%d with error=%w", cartId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return upstream.Response{}, err
	}
	span.AddEvent("removed cart")
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("removed cart")

	return resp, nil
}
