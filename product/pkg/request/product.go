package request

import (
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func (o Order) Validate() error {
	switch o {
	case OrderAsc, OrderDesc:
		return nil
	default:
		return fmt.Errorf("%w: order=%q must be asc or desc", inErrors.ErrInvalidArgument, string(o))
	}
}

type FindProducts struct {
	Order Order `validate:"required,oneof=asc desc" json:"order"`
}
