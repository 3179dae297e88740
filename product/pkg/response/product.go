package response

import (
	"github.com/shopspring/decimal"
)

type Rating struct {
	Rate  decimal.Decimal `json:"rate"`
	Count int             `json:"count"`
}

type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	Rating      *Rating         `json:"rating,omitempty"`
}
