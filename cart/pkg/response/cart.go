package response

import (
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID       int             `json:"id"`
	UserId   int             `json:"userId"`
	Date     string          `json:"date,omitempty"`
	Products []CartItem      `json:"products"`
	Total    decimal.Decimal `json:"total"`
}

type CartItem struct {
	ProductId int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Checkout struct {
	Message         string `json:"message"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentId string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}
