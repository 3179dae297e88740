package payment

import "context"

const (
	CurrencyUSD = "usd"
	MethodCard  = "card"
)

type IntentParams struct {
	UserId   int
	CartId   int
	Amount   int64
	Currency string
}

type Intent struct {
	ID           string
	Amount       int64
	Currency     string
	ClientSecret string
}

// Provider creates one payment intent per call. Implementations make a single
// attempt and wrap every failure in ErrPaymentProvider.
type Provider interface {
	CreatePaymentIntent(c context.Context, params IntentParams) (Intent, error)
}
