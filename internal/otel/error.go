package otel

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

const (
	keyErrorType          = "error.type"
	keyUpstreamOperation  = "upstream.operation"
	keyUpstreamStatusCode = "upstream.status_code"
	keyUpstreamTimeout    = "upstream.timeout"
)

var errorTypes = []struct {
	err  error
	name string
}{
	{inErrors.ErrInvalidArgument, "invalid_argument"},
	{inErrors.ErrCartNotFound, "cart_not_found"},
	{inErrors.ErrUnknownProduct, "unknown_product"},
	{inErrors.ErrUpstreamUnavailable, "upstream_unavailable"},
	{inErrors.ErrPaymentProvider, "payment_provider"},
	{inErrors.ErrPriceCacheMissing, "price_cache_missing"},
	{inErrors.ErrPriceCacheLoad, "price_cache_load"},
	{inErrors.ErrPriceCachePersist, "price_cache_persist"},
}

func ErrorType(err error) string {
	for _, t := range errorTypes {
		if errors.Is(err, t.err) {
			return t.name
		}
	}
	return "internal"
}

// RecordError marks span as failed and attaches the error kind; upstream
// failures also carry the operation and the status the upstream answered with.
func RecordError(err error, span trace.Span) {
	if err == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(keyErrorType, ErrorType(err))}
	var upstreamErr *inErrors.UpstreamError
	if errors.As(err, &upstreamErr) {
		attrs = append(
			attrs,
			attribute.String(keyUpstreamOperation, upstreamErr.Operation),
			attribute.Int(keyUpstreamStatusCode, upstreamErr.StatusCode),
			attribute.Bool(keyUpstreamTimeout, upstreamErr.Timeout),
		)
	}

	span.SetAttributes(attrs[0])
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err, trace.WithAttributes(attrs...))
}
