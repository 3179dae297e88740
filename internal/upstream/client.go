package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/otel"
)

// Client talks to the upstream product/cart REST API. Every call is bounded
// by the configured timeout and is never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Upstream) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Response is a 2xx upstream answer passed through to the caller.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// do sends body as is and returns the status and raw body of a 2xx answer.
func (cl *Client) do(
	c context.Context,
	operation string,
	method string,
	path string,
	body []byte,
) (Response, error) {
	url := cl.baseURL + path
	c, span := otel.Tracer.Start(
		c,
		"upstream Client "+operation,
		trace.WithAttributes(
			attribute.String(log.KeyRequestMethod, method),
			attribute.String(log.KeyUpstreamURL, url),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "upstream Client "+operation).
		Str(log.KeyRequestMethod, method).
		Str(log.KeyUpstreamURL, url).
		Logger()

	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	fail := func(err error) (Response, error) {
		metrics.UpstreamRequests.WithLabelValues(operation, metrics.ResultFailed).Inc()
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Response{}, err
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	logger = logger.With().Str(log.KeyProcess, "creating request").Logger()
	req, err := http.NewRequestWithContext(c, method, url, reqBody)
	if err != nil {
		return fail(&inErrors.UpstreamError{Operation: operation, Err: err})
	}
	req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.KeyHeaderRequestID, requestID)
	}

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Info().Msg("sending request")
	span.AddEvent("sending request")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		timeout := errors.Is(err, context.DeadlineExceeded) ||
			(errors.As(err, &netErr) && netErr.Timeout())
		return fail(&inErrors.UpstreamError{Operation: operation, Err: err, Timeout: timeout})
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int(log.KeyStatusCode, resp.StatusCode))
	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()

	logger = logger.With().Str(log.KeyProcess, "reading response body").Logger()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(&inErrors.UpstreamError{
			Operation:  operation,
			Err:        err,
			StatusCode: resp.StatusCode,
		})
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fail(&inErrors.UpstreamError{Operation: operation, StatusCode: resp.StatusCode})
	}

	metrics.UpstreamRequests.WithLabelValues(operation, metrics.ResultSuccess).Inc()
	span.AddEvent("received response")
	logger.Info().Msg("received response")
	return Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func decode[T any](operation string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &inErrors.UpstreamError{
			Operation: operation,
			Err:       fmt.Errorf("failed decoding response body with error=%w", err),
		}
	}
	return out, nil
}
