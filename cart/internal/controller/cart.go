package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/internal/common/validate"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(mux *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	router := mux.PathPrefix("/carts").Subrouter()
	router.HandleFunc("", controller.InsertCart).Methods(http.MethodPost)
	router.HandleFunc("/{userId}", controller.FindCartsByUserId).Methods(http.MethodGet)
	router.HandleFunc("/{cartId}", controller.UpdateCart).Methods(http.MethodPut)
	router.HandleFunc("/{cartId}", controller.RemoveCart).Methods(http.MethodDelete)

	mux.HandleFunc("/checkout", controller.CheckoutCart).Methods(http.MethodGet, http.MethodPost)
}

func parseId(name string, value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive integer", inErrors.ErrInvalidArgument, name, value)
	}
	return id, nil
}

const maxCartBody = 1 << 20

// decodeCart checks the shape of the request body and returns it untouched
// alongside the decoded cart.
func decodeCart(w http.ResponseWriter, r *http.Request) (request.Cart, json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCartBody))
	if err != nil {
		return request.Cart{}, nil, fmt.Errorf(
			"%w: failed reading request body with error=%w",
			inErrors.ErrInvalidArgument,
			err,
		)
	}
	cart := request.Cart{}
	if err := json.Unmarshal(body, &cart); err != nil {
		return request.Cart{}, nil, fmt.Errorf(
			"%w: failed decoding request body with error=%w",
			inErrors.ErrInvalidArgument,
			err,
		)
	}
	if err := validate.New().StructCtx(r.Context(), cart); err != nil {
		return request.Cart{}, nil, fmt.Errorf(
			"%w: failed validating request body with error=%w",
			inErrors.ErrInvalidArgument,
			err,
		)
	}
	return cart, body, nil
}

func (ctrl CartController) FindCartsByUserId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCartsByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController FindCartsByUserId").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating userId").Logger()
	logger.Trace().Msg("validating userId")
	userId, err := parseId("userId", mux.Vars(r)["userId"])
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.SetAttributes(attribute.Int(log.KeyUserID, userId))
	logger = logger.With().Int(log.KeyUserID, userId).Logger()
	logger.Trace().Msg("validated userId")

	logger = logger.With().Str(log.KeyProcess, "finding priced carts").Logger()
	logger.Info().Msg("finding priced carts")
	c = logger.WithContext(c)
	carts, err := ctrl.service.FindCartsByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding priced carts with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCarts, len(carts)).Msg("found priced carts")

	inHttp.WriteJson(c, w, http.StatusOK, carts)
}

func (ctrl CartController) InsertCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController InsertCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController InsertCart").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	cart, raw, err := decodeCart(w, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("decoded request body")
	logger = logger.With().Any(log.KeyCart, cart).Logger()
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "inserting cart").Logger()
	logger.Info().Msg("inserting cart")
	c = logger.WithContext(c)
	resp, err := ctrl.service.InsertCart(c, raw)
	if err != nil {
		err = fmt.Errorf("failed inserting cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("inserted cart")

	inHttp.WriteRawJson(c, w, resp.StatusCode, resp.Body)
}

func (ctrl CartController) UpdateCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController UpdateCart").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating cartId").Logger()
	logger.Trace().Msg("validating cartId")
	cartId, err := parseId("cartId", mux.Vars(r)["cartId"])
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.SetAttributes(attribute.Int(log.KeyCartID, cartId))
	logger = logger.With().Int(log.KeyCartID, cartId).Logger()
	logger.Trace().Msg("validated cartId")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	cart, raw, err := decodeCart(w, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Any(log.KeyCart, cart).Logger()
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating cart").Logger()
	logger.Info().Msg("updating cart")
	c = logger.WithContext(c)
	resp, err := ctrl.service.UpdateCart(c, cartId, raw)
	if err != nil {
		err = fmt.Errorf("failed updating cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("updated cart")

	inHttp.WriteRawJson(c, w, resp.StatusCode, resp.Body)
}

func (ctrl CartController) RemoveCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController RemoveCart").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating cartId").Logger()
	logger.Trace().Msg("validating cartId")
	cartId, err := parseId("cartId", mux.Vars(r)["cartId"])
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.SetAttributes(attribute.Int(log.KeyCartID, cartId))
	logger = logger.With().Int(log.KeyCartID, cartId).Logger()
	logger.Trace().Msg("validated cartId")

	logger = logger.With().Str(log.KeyProcess, "removing cart").Logger()
	logger.Info().Msg("removing cart")
	c = logger.WithContext(c)
	resp, err := ctrl.service.RemoveCart(c, cartId)
	if err != nil {
		err = fmt.Errorf("failed removing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyStatusCode, resp.StatusCode).Msg("removed cart")

	inHttp.WriteRawJson(c, w, resp.StatusCode, resp.Body)
}

// checkoutParam reads userId and cartId from the query string (user_id and
// cart_id are accepted too); a POST without them may send a JSON body.
func checkoutParam(r *http.Request) (request.CheckoutCart, error) {
	query := r.URL.Query()
	userId, cartId := query.Get("userId"), query.Get("cartId")
	if userId == "" {
		userId = query.Get("user_id")
	}
	if cartId == "" {
		cartId = query.Get("cart_id")
	}

	param := request.CheckoutCart{}
	if userId == "" && cartId == "" && r.Method == http.MethodPost {
		err := json.NewDecoder(r.Body).Decode(&param)
		if err != nil && !errors.Is(err, io.EOF) {
			return request.CheckoutCart{}, fmt.Errorf(
				"%w: failed decoding request body with error=%w",
				inErrors.ErrInvalidArgument,
				err,
			)
		}
	} else {
		var err error
		if param.UserId, err = parseId("userId", userId); err != nil {
			return request.CheckoutCart{}, err
		}
		if param.CartId, err = parseId("cartId", cartId); err != nil {
			return request.CheckoutCart{}, err
		}
	}

	if err := validate.New().StructCtx(r.Context(), param); err != nil {
		return request.CheckoutCart{}, fmt.Errorf(
			"%w: failed validating checkout parameters with error=%w",
			inErrors.ErrInvalidArgument,
			err,
		)
	}
	return param, nil
}

func (ctrl CartController) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	requestId := log.RequestIDFromContext(r.Context())
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController CheckoutCart",
		trace.WithAttributes(attribute.String(log.KeyRequestID, requestId)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController CheckoutCart").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating checkout parameters").Logger()
	logger.Trace().Msg("validating checkout parameters")
	span.AddEvent("validating checkout parameters")
	param, err := checkoutParam(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.SetAttributes(
		attribute.Int(log.KeyUserID, param.UserId),
		attribute.Int(log.KeyCartID, param.CartId),
	)
	logger = logger.With().
		Int(log.KeyUserID, param.UserId).
		Int(log.KeyCartID, param.CartId).
		Logger()
	span.AddEvent("validated checkout parameters")
	logger.Trace().Msg("validated checkout parameters")

	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Info().Msg("checking out cart")
	c = logger.WithContext(c)
	checkout, err := ctrl.service.CheckoutCart(c, param)
	if err != nil {
		err = fmt.Errorf("failed checking out cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyPaymentIntentID, checkout.PaymentIntentId).Msg("checked out cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":       "success",
		"statusCode":   http.StatusOK,
		"message":      checkout.Message,
		"clientSecret": checkout.ClientSecret,
		"data": map[string]interface{}{
			"checkout": checkout,
		},
	})
}
