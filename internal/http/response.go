package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// WriteJsonResponse writes the status/statusCode/message envelope; the status is
// taken from body["statusCode"] when present.
func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	statusCode := http.StatusOK
	if v, ok := body["statusCode"].(int); ok {
		statusCode = v
	}
	writeJson(c, w, header, statusCode, body)
}

// WriteJson writes any JSON document, used for bare arrays such as product
// listings and priced carts.
func WriteJson(c context.Context, w http.ResponseWriter, statusCode int, body any) {
	writeJson(c, w, map[string]string{}, statusCode, body)
}

// WriteRawJson passes an upstream body through unmodified.
func WriteRawJson(c context.Context, w http.ResponseWriter, statusCode int, body []byte) {
	_, span := otel.Tracer.Start(c, "WriteRawJson")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteRawJson").Logger()

	w.Header().Set(KeyHeaderContentType, ValueHeaderApplicationJson)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
}

// WriteErrorResponse writes the failed envelope with the status derived from err.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": StatusCode(err),
		"message":    err.Error(),
	})
}

func writeJson(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	statusCode int,
	body any,
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJsonResponse").Logger()

	w.Header().Set(KeyHeaderContentType, ValueHeaderApplicationJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}
