package request

import (
	"github.com/shopspring/decimal"
)

// Cart is the shape checked on POST /carts and PUT /carts/{cartId}. Only the
// structure is validated; the raw body is what reaches the upstream.
type Cart struct {
	ID       int        `validate:"gte=0"            json:"id,omitempty"`
	UserId   int        `validate:"omitempty,gte=1"  json:"userId,omitempty"`
	Date     string     `validate:"omitempty"        json:"date,omitempty"`
	Products []CartItem `validate:"omitempty,dive"   json:"products,omitempty"`
}

type CartItem struct {
	ProductId int              `validate:"required,gte=1"  json:"productId"`
	Quantity  int              `validate:"required,gte=1"  json:"quantity"`
	Price     *decimal.Decimal `validate:"omitempty,price" json:"price,omitempty"`
}

type CheckoutCart struct {
	UserId int `validate:"required,gte=1" json:"userId"`
	CartId int `validate:"required,gte=1" json:"cartId"`
}
