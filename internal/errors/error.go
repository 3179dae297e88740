package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrPriceCacheMissing   = errors.New("products file not found")
	ErrPriceCachePersist   = errors.New("failed persisting products")
	ErrPriceCacheLoad      = errors.New("failed loading products")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrCartNotFound        = errors.New("cart not found")
	ErrPaymentProvider     = errors.New("payment provider error")
)

// UpstreamError is returned for any failed call to the upstream product/cart
// API. StatusCode is zero when no response was received.
type UpstreamError struct {
	Err        error
	Operation  string
	StatusCode int
	Timeout    bool
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned statusCode=%d", ErrUpstreamUnavailable, e.Operation, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed with error=%s", ErrUpstreamUnavailable, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Operation)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

func (e *UpstreamError) Unwrap() error { return e.Err }

type UnknownProductError struct {
	ProductID int
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("%s: productId=%d is not in the products file", ErrUnknownProduct, e.ProductID)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }
