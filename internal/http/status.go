package http

import (
	"errors"
	"net/http"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

func StatusCode(err error) int {
	var upstreamErr *inErrors.UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, inErrors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrUnknownProduct):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstreamErr):
		if upstreamErr.Timeout {
			return http.StatusGatewayTimeout
		}
		if upstreamErr.StatusCode >= http.StatusBadRequest {
			return upstreamErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, inErrors.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, inErrors.ErrPaymentProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
