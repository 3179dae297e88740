package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/otel"
)

type Stripe struct {
	api      *client.API
	currency string
}

func NewStripe(cfg config.Payment) *Stripe {
	backendConfig := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BackendURL != "" {
		backendConfig.URL = stripe.String(cfg.BackendURL)
	}

	currency := cfg.Currency
	if currency == "" {
		currency = CurrencyUSD
	}

	return &Stripe{
		api: client.New(cfg.SecretKey, &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
		}),
		currency: currency,
	}
}

func (s *Stripe) CreatePaymentIntent(c context.Context, params IntentParams) (Intent, error) {
	currency := params.Currency
	if currency == "" {
		currency = s.currency
	}

	c, span := otel.Tracer.Start(c, "Stripe CreatePaymentIntent")
	defer span.End()
	span.SetAttributes(
		attribute.Int64(log.KeyPaymentAmount, params.Amount),
		attribute.Int(log.KeyUserID, params.UserId),
		attribute.Int(log.KeyCartID, params.CartId),
	)

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "Stripe CreatePaymentIntent").
		Int64(log.KeyPaymentAmount, params.Amount).
		Int(log.KeyUserID, params.UserId).
		Int(log.KeyCartID, params.CartId).
		Logger()

	intentParams := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(params.Amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{MethodCard}),
	}
	intentParams.Context = c
	intentParams.AddMetadata(log.KeyUserID, strconv.Itoa(params.UserId))
	intentParams.AddMetadata(log.KeyCartID, strconv.Itoa(params.CartId))

	logger = logger.With().Str(log.KeyProcess, "creating payment intent").Logger()
	logger.Info().Msg("creating payment intent")
	span.AddEvent("creating payment intent")
	pi, err := s.api.PaymentIntents.New(intentParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			logger = logger.With().
				Int(log.KeyStatusCode, stripeErr.HTTPStatusCode).
				Str("stripeCode", string(stripeErr.Code)).
				Logger()
		}
		err = fmt.Errorf("%w: failed creating payment intent with error=%w", inErrors.ErrPaymentProvider, err)
		metrics.PaymentIntents.WithLabelValues(metrics.ResultFailed).Inc()
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, err
	}
	metrics.PaymentIntents.WithLabelValues(metrics.ResultSuccess).Inc()
	span.SetAttributes(attribute.String(log.KeyPaymentIntentID, pi.ID))
	span.AddEvent("created payment intent")
	logger.Info().Str(log.KeyPaymentIntentID, pi.ID).Msg("created payment intent")

	return Intent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}
