package service

import (
	"context"
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
)

const MessageCheckoutSuccess = "Payment successful"

var minorUnits = decimal.NewFromInt(100)

// AmountInMinorUnits converts a cart total to cents, rounding half away from zero.
func AmountInMinorUnits(total decimal.Decimal) int64 {
	return total.Mul(minorUnits).Round(0).IntPart()
}

// CheckoutCart prices the carts of param.UserId, picks param.CartId and
// creates one payment intent for its total. No idempotency key is sent, so a
// retried checkout creates a second intent.
func (svc CartService) CheckoutCart(
	c context.Context,
	param request.CheckoutCart,
) (response.Checkout, error) {
	requestId := log.RequestIDFromContext(c)
	c, span := otel.Tracer.Start(
		c,
		"CartService CheckoutCart",
		trace.WithAttributes(
			attribute.String(log.KeyRequestID, requestId),
			attribute.Int(log.KeyUserID, param.UserId),
			attribute.Int(log.KeyCartID, param.CartId),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService CheckoutCart").
		Int(log.KeyUserID, param.UserId).
		Int(log.KeyCartID, param.CartId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding priced carts").Logger()
	logger.Info().Msg("finding priced carts")
	span.AddEvent("finding priced carts")
	c = logger.WithContext(c)
	carts, err := svc.FindCartsByUserId(c, param.UserId)
	if err != nil {
		err = fmt.Errorf("failed finding priced carts with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	span.AddEvent("found priced carts")
	logger.Info().Msg("found priced carts")

	logger = logger.With().Str(log.KeyProcess, "selecting cart").Logger()
	logger.Trace().Msg("selecting cart")
	var selected *response.Cart
	for i := range carts {
		if carts[i].ID == param.CartId {
			selected = &carts[i]
			break
		}
	}
	if selected == nil {
		err := fmt.Errorf(
			"%w: cartId=%d does not belong to userId=%d",
			inErrors.ErrCartNotFound,
			param.CartId,
			param.UserId,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	amount := AmountInMinorUnits(selected.Total)
	logger = logger.With().
		Str(log.KeyTotal, selected.Total.String()).
		Int64(log.KeyPaymentAmount, amount).
		Logger()
	span.SetAttributes(attribute.Int64(log.KeyPaymentAmount, amount))
	logger.Info().Msg("selected cart")

	logger = logger.With().Str(log.KeyProcess, "creating payment intent").Logger()
	logger.Info().Msg("creating payment intent")
	span.AddEvent("creating payment intent")
	c = logger.WithContext(c)
	intent, err := svc.payments.CreatePaymentIntent(c, payment.IntentParams{
		UserId:   param.UserId,
		CartId:   param.CartId,
		Amount:   amount,
		Currency: payment.CurrencyUSD,
	})
	if err != nil {
		err = fmt.Errorf("failed creating payment intent with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	span.AddEvent("created payment intent")
	logger.Info().Str(log.KeyPaymentIntentID, intent.ID).Msg("created payment intent")

	return response.Checkout{
		Message:         MessageCheckoutSuccess,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentId: intent.ID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
	}, nil
}
